package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trezcool/studman/storage/database"
)

var createDBFunc = database.CreateIfNotExist // mockable

func (cli *commandLine) createDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "createdb",
		Short: "Create the application role and database when missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := createDBFunc(cli.conf); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cli.out, "database %q is ready\n", cli.conf.Database.Name)
			return nil
		},
	}
}
