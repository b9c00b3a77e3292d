package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/99minutos/library-catalog/internal/app"
	"github.com/99minutos/library-catalog/internal/core/ports"
)

func (r *runtime) passwordFrom(cmd *cobra.Command, flag string) (string, error) {
	if cmd.Flags().Changed("password") {
		return flag, nil
	}
	return readPassword(r.opts.In, cmd.ErrOrStderr(), "Password: ")
}

func newLoginCommand(rt *runtime) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:     "login",
		Short:   "Log in with email and password",
		GroupID: "account",
		Args:    cobra.NoArgs,
	}
	cmd.RunE = rt.withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
		pw, err := rt.passwordFrom(cmd, password)
		if err != nil {
			return err
		}
		_, err = a.Session.Login(cmd.Context(), email, pw)
		return err
	})
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCommand(rt *runtime) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:     "register",
		Short:   "Create an account and log in",
		GroupID: "account",
		Args:    cobra.NoArgs,
	}
	cmd.RunE = rt.withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
		pw, err := rt.passwordFrom(cmd, password)
		if err != nil {
			return err
		}
		_, err = a.Session.Register(cmd.Context(), ports.RegisterInput{Name: name, Email: email, Password: pw})
		return err
	})
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password, at least 8 characters (prompted when omitted)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "logout",
		Short:   "End the current session",
		GroupID: "account",
		Args:    cobra.NoArgs,
	}
	cmd.RunE = rt.withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
		return a.Session.Logout(cmd.Context())
	})
	return cmd
}

func newWhoamiCommand(rt *runtime) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:     "whoami",
		Short:   "Show the logged-in identity",
		GroupID: "account",
		Args:    cobra.NoArgs,
		PreRunE: func(*cobra.Command, []string) error { return checkOutput(output) },
	}
	cmd.RunE = rt.withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
		user, ok := a.Session.Current()
		if output == outputJSON {
			return writeJSON(cmd.OutOrStdout(), user)
		}
		if !ok {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
			return err
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (%s)\n", user.Name, user.Email, user.Role)
		return err
	})
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")
	return cmd
}

func newStatusCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check that the storage backend and catalog are ready",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = rt.withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
		r := a.Readiness(cmd.Context())
		if err := writeJSON(cmd.OutOrStdout(), r); err != nil {
			return err
		}
		if !r.Ready() {
			return fmt.Errorf("catalog is %s", r.Status)
		}
		return nil
	})
	return cmd
}
