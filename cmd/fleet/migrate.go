package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fleetledger/fleetledger/internal/cli"
	"github.com/fleetledger/fleetledger/internal/config"
	"github.com/fleetledger/fleetledger/internal/storage"
)

func migrateCmd() *cobra.Command {
	var statusOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			dbPath := config.DatabasePath(viper.GetString("database.path"))
			store, err := storage.NewSQLiteStorage(dbPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = store.Close() }()

			if statusOnly {
				version, err := store.SchemaVersion(ctx)
				if err != nil {
					return fmt.Errorf("failed to read schema version: %w", err)
				}
				fmt.Printf("Database: %s\n", dbPath)
				fmt.Printf("Schema version: %d (latest %d)\n", version, storage.ExpectedSchemaVersion)
				if version < storage.ExpectedSchemaVersion {
					fmt.Println(cli.FormatWarning("Migrations pending; run 'fleet migrate'"))
				}
				return nil
			}

			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Database schema up to date (version %d)", storage.ExpectedSchemaVersion)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&statusOnly, "status", false, "show the current schema version without migrating")

	return cmd
}
