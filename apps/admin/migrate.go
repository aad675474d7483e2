package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/studman/storage/database"
)

var gooseRunFunc = database.Migrate // mockable

func (cli *commandLine) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "migrate COMMAND [ARGS...]",
		Short:              "Run a goose command (up, up-to, down, down-to, redo, reset, status, version, create, fix)",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Usage()
				return errHelp
			}
			db, err := cli.connect()
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return errors.Wrap(err, "getting sql.DB")
			}
			return gooseRunFunc(cmd.Context(), sqlDB, args[0], args[1:]...)
		},
	}
}
