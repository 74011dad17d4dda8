package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login <login>",
		Short: "Sign in and store the access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.init(); err != nil {
				return err
			}
			password, err := a.readPassword("Password: ")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			u, err := a.session.Login(cmd.Context(), args[0], strings.TrimSpace(string(password)))
			if u == nil {
				return err
			}
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "Warning:", err)
			}
			a.started = true
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s%s\n", u.Login, adminSuffix(u.IsAdmin()))
			return nil
		},
	}
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.init(); err != nil {
				return err
			}
			a.started = false
			if err := a.session.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.resume(cmd.Context()); err != nil {
				return err
			}
			u := a.session.User()
			name := strings.TrimSpace(strings.Join([]string{u.FirstName, u.LastName}, " "))
			if name == "" {
				name = "-"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)%s\n", u.Login, name, adminSuffix(u.IsAdmin()))
			return nil
		},
	}
}

func adminSuffix(admin bool) string {
	if admin {
		return " [admin]"
	}
	return ""
}
