package prefs

import (
	"fmt"

	"github.com/glucolog/glucolog/internal/config"
)

// New selects a preference store by cfg.Driver.
func New(cfg config.PrefsConfig) (Store, error) {
	switch cfg.Driver {
	case "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(cfg.Path)
	case "redis":
		return NewRedisStore(cfg.RedisHost, cfg.RedisPort)
	default:
		return nil, fmt.Errorf("unknown PREFS_DRIVER: %s", cfg.Driver)
	}
}
