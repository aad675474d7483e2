package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trezcool/studman/core/user"
)

func (cli *commandLine) createSuperAdminCmd() *cobra.Command {
	var email, pwd string

	cmd := &cobra.Command{
		Use:   "createsuperadmin",
		Short: "Create the super admin account, or reset its password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if pwd == "" {
				pwd = cli.conf.SuperAdminPassword
			}
			if pwd == "" {
				var err error
				if pwd, err = cli.promptPassword(); err != nil {
					return err
				}
			}
			if err := validatePassword(user.User{FullName: "System Owner", Email: email}, pwd); err != nil {
				return err
			}

			usrSvc, err := cli.userService()
			if err != nil {
				return err
			}
			usr, created, err := usrSvc.EnsureSuperAdmin(cmd.Context(), email, pwd)
			if err != nil {
				return err
			}
			if created {
				_, _ = fmt.Fprintf(cli.out, "super admin %s created\n", usr.Email)
			} else {
				_, _ = fmt.Fprintf(cli.out, "super admin %s updated\n", usr.Email)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", cli.conf.SuperAdminEmail, "the super admin's email")
	cmd.Flags().StringVar(&pwd, "password", "", "the super admin's password (prompted when not configured)")
	return cmd
}
