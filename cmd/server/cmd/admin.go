package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sportsregistration/internal/domain"
	"sportsregistration/internal/repository/postgres"
)

type createAdminOptions struct {
	email     string
	password  string
	firstName string
	lastName  string
}

func (o createAdminOptions) validate() error {
	var missing []string
	if strings.TrimSpace(o.email) == "" {
		missing = append(missing, "--email")
	}
	if o.password == "" {
		missing = append(missing, "--password (or ADMIN_PASSWORD)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required: %s", strings.Join(missing, ", "))
	}
	return nil
}

func newCreateAdminCommand(flags *globalFlags) *cobra.Command {
	opts := createAdminOptions{}
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		Long: `Create an admin account. Admins cannot sign up over HTTP.

The password may be passed with --password or the ADMIN_PASSWORD environment
variable so it does not end up in shell history.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.password == "" {
				opts.password = os.Getenv("ADMIN_PASSWORD")
			}
			if err := opts.validate(); err != nil {
				return err
			}
			return runCreateAdmin(cmd, flags, opts)
		},
	}
	cmd.Flags().StringVar(&opts.email, "email", "", "admin email address")
	cmd.Flags().StringVar(&opts.password, "password", "", "admin password (min 8 characters)")
	cmd.Flags().StringVar(&opts.firstName, "first-name", "Admin", "admin first name")
	cmd.Flags().StringVar(&opts.lastName, "last-name", "User", "admin last name")
	return cmd
}

func runCreateAdmin(cmd *cobra.Command, flags *globalFlags, opts createAdminOptions) error {
	cfg, logger, err := flags.load()
	if err != nil {
		return err
	}
	db, err := postgres.Connect(cfg.DBUrl, cfg.DBPingTimeout)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	app, err := newApplication(cfg, db, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	user, err := app.authService.CreateAdmin(ctx, domain.SignUpInput{
		FirstName: opts.firstName,
		LastName:  opts.lastName,
		Email:     opts.email,
		Password:  opts.password,
	})
	if errors.Is(err, domain.ErrDuplicateEmail) {
		return fmt.Errorf("an account with email %s already exists", opts.email)
	}
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", user.Email, user.ID)
	return nil
}
