package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"storefront/internal/app"
	"storefront/internal/models"
)

func newLoginCmd(load configLoader) *cobra.Command {
	var creds models.Credentials
	cmd := &cobra.Command{
		Use:     "login",
		Short:   "Log the admin in and persist the session",
		Example: "  storefront login --email admin@example.com --password secret",
		RunE: withCore(load, func(cmd *cobra.Command, core *app.Core) error {
			user, err := core.Auth.Login(cmd.Context(), creds)
			if err != nil {
				return err
			}
			if email := user.Email(); email != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", email)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Logged in")
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "admin email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "admin password")
	return cmd
}

func newLogoutCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted admin session",
		RunE: withCore(load, func(cmd *cobra.Command, core *app.Core) error {
			if err := core.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		}),
	}
}

func newWhoamiCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Restore the persisted session and print its state",
		RunE: withCore(load, func(cmd *cobra.Command, core *app.Core) error {
			if err := core.Session.Restore(cmd.Context()); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			info := core.Session.Info()
			fmt.Fprintf(out, "state: %s\n", info.State)
			if email := info.User.Email(); email != "" {
				fmt.Fprintf(out, "user: %s\n", email)
			}
			if info.Degraded {
				fmt.Fprintln(out, "backend unreachable, session not verified")
			}
			if info.ExpiresAt != nil {
				fmt.Fprintf(out, "token expires: %s\n", info.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
			}
			return nil
		}),
	}
}
