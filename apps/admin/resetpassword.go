package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (cli *commandLine) resetPasswordCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "resetpassword",
		Short: "Reset a user's password; the password is prompted next",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				_ = cmd.Usage()
				return errHelp
			}
			usrSvc, err := cli.userService()
			if err != nil {
				return err
			}
			usr, err := usrSvc.GetByEmail(cmd.Context(), email)
			if err != nil {
				return err
			}

			pwd, err := cli.promptPassword()
			if err != nil {
				return err
			}
			if err := validatePassword(usr, pwd); err != nil {
				return err
			}
			if err := usrSvc.ResetPassword(cmd.Context(), usr, pwd); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cli.out, "password of %s updated\n", usr.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "the user's email")
	return cmd
}
