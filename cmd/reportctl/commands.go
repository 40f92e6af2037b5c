package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"profile-report/internal/shared/auth"
	"profile-report/internal/shared/config"
	"profile-report/internal/shared/storage/db"
	"profile-report/internal/templates"
)

type cli struct {
	cfg config.Config

	openDB        func(ctx context.Context) (*sql.DB, error)
	templatesRepo func(ctx context.Context) (templates.Repo, func(), error)
}

func newCLI(cfg config.Config) *cli {
	c := &cli{cfg: cfg}
	c.openDB = func(ctx context.Context) (*sql.DB, error) {
		if strings.TrimSpace(c.cfg.DatabaseURL) == "" {
			return nil, errors.New("DATABASE_URL is required")
		}
		return db.Connect(ctx, c.cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultCLIOptions()))
	}
	c.templatesRepo = func(ctx context.Context) (templates.Repo, func(), error) {
		sqlDB, err := c.openDB(ctx)
		if err != nil {
			return nil, nil, err
		}
		return &templates.PGRepo{DB: sqlDB}, func() { _ = sqlDB.Close() }, nil
	}
	return c
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:          "reportctl",
		Short:        "Operate the profile report service",
		SilenceUsage: true,
	}
	root.AddCommand(c.migrateCmd(), c.templatesCmd(), c.tokenCmd())
	return root
}

func (c *cli) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}
	run := func(action func(context.Context, *sql.DB) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			sqlDB, err := c.openDB(cmd.Context())
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer sqlDB.Close()
			return action(cmd.Context(), sqlDB)
		}
	}
	cmd.AddCommand(
		&cobra.Command{Use: "up", Short: "Apply pending migrations", Args: cobra.NoArgs, RunE: run(db.RunMigrations)},
		&cobra.Command{Use: "status", Short: "Show migration status", Args: cobra.NoArgs, RunE: run(db.MigrationStatus)},
		&cobra.Command{Use: "down", Short: "Roll back the latest migration", Args: cobra.NoArgs, RunE: run(db.RollbackMigration)},
	)
	return cmd
}

func (c *cli) templatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage report templates",
	}

	var activate bool
	importCmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import a template definition as a new version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			repo, closeRepo, err := c.templatesRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer closeRepo()

			tpl, err := templates.NewService(repo).Import(cmd.Context(), f, activate)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %s v%d (%s) active=%t sections=%d\n",
				tpl.Name, tpl.Version, tpl.ID, tpl.IsActive, len(tpl.Sections))
			return nil
		},
	}
	importCmd.Flags().BoolVar(&activate, "activate", false, "make the imported version the active template")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List template versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, closeRepo, err := c.templatesRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer closeRepo()

			list, err := templates.NewService(repo).List(cmd.Context())
			if err != nil {
				return err
			}
			return writeTemplates(cmd.OutOrStdout(), list)
		},
	}

	cmd.AddCommand(importCmd, listCmd)
	return cmd
}

func (c *cli) tokenCmd() *cobra.Command {
	var (
		userID string
		email  string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for local testing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(c.cfg.JWTSecret) == "" {
				return errors.New("JWT_SECRET is required")
			}
			token, err := auth.Sign([]byte(c.cfg.JWTSecret), userID, email, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "subject user id")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func writeTemplates(w io.Writer, list []templates.Template) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tVERSION\tACTIVE\tSECTIONS\tCREATED")
	for _, t := range list {
		fmt.Fprintf(tw, "%s\t%d\t%t\t%d\t%s\n", t.Name, t.Version, t.IsActive, len(t.Sections), t.CreatedAt.UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}
