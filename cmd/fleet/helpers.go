package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/fleetledger/fleetledger/internal/common"
	"github.com/fleetledger/fleetledger/internal/config"
	"github.com/fleetledger/fleetledger/internal/service"
	"github.com/fleetledger/fleetledger/internal/storage"
)

// initStorage opens the database and brings the schema up to date.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := config.DatabasePath(viper.GetString("database.path"))

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("could not open fleet database at %s", dbPath), err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}
