package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// NewSeedAdminCommand creates the seed-admin command.
func NewSeedAdminCommand(rootOpts *RootOptions) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "seed-admin <password>",
		Short: "Create the admin account or replace its credentials",
		Long: `Create the admin account or replace its credentials.

The email defaults to auth.admin_email (ADMIN_EMAIL). Running it again
replaces the stored email and password.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.load()
			if err != nil {
				return err
			}
			if email == "" {
				email = cfg.Auth.AdminEmail
			}
			if email == "" {
				return errors.New("an admin email is required (--email or ADMIN_EMAIL)")
			}

			logger := newLogger(cfg.Log, cfg.Production(), cmd.ErrOrStderr())
			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.auth.SeedAdmin(cmd.Context(), email, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s saved\n", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email address")
	return cmd
}
