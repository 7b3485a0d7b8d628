// Package factory selects the storage adapter for the configured
// driver.
package factory

import (
	"fmt"

	"github.com/glucolog/glucolog/internal/config"
	"github.com/glucolog/glucolog/internal/storage"
	"github.com/glucolog/glucolog/internal/storage/assetjson"
	"github.com/glucolog/glucolog/internal/storage/postgres"
	"github.com/glucolog/glucolog/internal/storage/sqlite"
)

// NewStore returns the adapter named by cfg.StorageDriver.
func NewStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageDriver {
	case "asset":
		return assetjson.NewStore(cfg.AssetPath)
	case "sqlite":
		return sqlite.NewStore(cfg.SQLitePath)
	case "postgres":
		return postgres.NewStore(cfg.DB)
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER: %s", cfg.StorageDriver)
	}
}
