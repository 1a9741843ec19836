package main

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/tarotfutura/futura/internal/database"
	"github.com/tarotfutura/futura/internal/migrations"
	"github.com/tarotfutura/futura/internal/server"
)

func dbPathDefault() string {
	if p := os.Getenv("DB_PATH"); p != "" {
		return p
	}
	return "data/futura.db"
}

// openMigrated opens the database at --db and brings its schema up to date.
func openMigrated(cmd *cobra.Command) (*sql.DB, error) {
	path, _ := cmd.Flags().GetString("db")
	db, err := database.Open(cmd.Context(), path)
	if err != nil {
		return nil, err
	}
	if err := migrations.Run(cmd.Context(), db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openMigrated(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			v, err := migrations.Version(cmd.Context(), db)
			if err != nil {
				return err
			}
			accent.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", v)
			return nil
		},
	}
	cmd.Flags().String("db", dbPathDefault(), "SQLite database path")
	return cmd
}

func newAdminCmd() *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Manage operator accounts",
	}

	var email, password string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an operator or reset their password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email = strings.TrimSpace(strings.ToLower(email))
			if email == "" || len(password) < 8 {
				return fmt.Errorf("an email and a password of at least 8 characters are required")
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}

			db, err := openMigrated(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			id, err := server.NewSQLiteStore(db).CreateAdmin(cmd.Context(), email, string(hash))
			if err != nil {
				return fmt.Errorf("creating admin: %w", err)
			}
			accent.Fprintf(cmd.OutOrStdout(), "admin %s (%s) ready\n", email, id)
			return nil
		},
	}
	create.Flags().StringVar(&email, "email", "", "operator email")
	create.Flags().StringVar(&password, "password", "", "operator password")
	create.Flags().String("db", dbPathDefault(), "SQLite database path")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")

	admin.AddCommand(create)
	return admin
}
