// Package cli implements portalctl, the operator tool for seeding and
// repairing portal accounts directly against the database.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vaughan-dsouza/cloudportal/internal/auth"
	"github.com/vaughan-dsouza/cloudportal/internal/config"
	"github.com/vaughan-dsouza/cloudportal/internal/db"
	"github.com/vaughan-dsouza/cloudportal/internal/logging"
	"github.com/vaughan-dsouza/cloudportal/internal/models"
	"github.com/vaughan-dsouza/cloudportal/internal/store"
)

// Connector opens the database. db.Connect in production.
type Connector func(ctx context.Context, cfg config.Database) (*sqlx.DB, error)

type app struct {
	configPath string
	verbose    bool
	connect    Connector
	out        io.Writer
}

// NewRootCommand builds the portalctl command tree.
func NewRootCommand(connect Connector, out io.Writer) *cobra.Command {
	a := &app{connect: connect, out: out}

	root := &cobra.Command{
		Use:           "portalctl",
		Short:         "Cloud portal administration",
		Long:          `Operator commands for the cloud portal: password hashing, account seeding and schema migrations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(
		a.hashPasswordCmd(),
		a.resetPasswordCmd(),
		a.createUserCmd(),
		a.migrateCmd(),
	)
	return root
}

// Execute runs portalctl against the real database.
func Execute(ctx context.Context, args []string, out io.Writer) error {
	root := NewRootCommand(db.Connect, out)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (a *app) hashPasswordCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash suitable for the users table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0], cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", config.Defaults().BcryptCost, "bcrypt cost")
	return cmd
}

func (a *app) resetPasswordCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Overwrite a user's password",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd.Context(), func(svc *auth.Service, _ *config.Config, _ *sqlx.DB) error {
				if err := svc.SetPassword(cmd.Context(), username, password); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "password updated for %s\n", username)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "account username")
	cmd.Flags().StringVar(&password, "password", "", "new password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) createUserCmd() *cobra.Command {
	var (
		in        auth.NewUser
		role      string
		accountID string
	)
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Insert a new portal user",
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Role = models.Role(role)
			if accountID != "" {
				in.AccountID = &accountID
			}
			return a.withService(cmd.Context(), func(svc *auth.Service, _ *config.Config, _ *sqlx.DB) error {
				u, err := svc.CreateUser(cmd.Context(), in)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "created user %s (id %d, role %s)\n", u.Username, u.ID, u.Role)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Username, "username", "", "account username")
	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&role, "role", string(models.RoleUser), "admin, user, subprovider or partner")
	cmd.Flags().StringVar(&accountID, "account-id", "", "CloudStack account id")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd.Context(), func(_ *auth.Service, cfg *config.Config, conn *sqlx.DB) error {
				if err := db.Migrate(cmd.Context(), conn.DB, cfg.Database.Driver); err != nil {
					return err
				}
				fmt.Fprintln(a.out, "migrations applied")
				return nil
			})
		},
	}
}

func (a *app) withService(ctx context.Context, fn func(*auth.Service, *config.Config, *sqlx.DB) error) error {
	var args []string
	if a.configPath != "" {
		args = []string{"--config", a.configPath}
	}
	cfg, err := config.LoadDatabase(args)
	if err != nil {
		return err
	}

	log := a.logger(cfg)

	conn, err := a.connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer conn.Close()

	svc := auth.NewService(store.NewUserStore(conn), nil, cfg.BcryptCost, log)
	return fn(svc, cfg, conn)
}

func (a *app) logger(cfg *config.Config) logrus.FieldLogger {
	if !a.verbose {
		return logging.Discard()
	}
	log, err := logging.New(cfg.LogLevel, "text", os.Stderr)
	if err != nil {
		return logging.Discard()
	}
	return log.WithField("component", "portalctl")
}
