package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/glucolog/glucolog/internal/auth"
	"github.com/glucolog/glucolog/internal/config"
	"github.com/glucolog/glucolog/internal/i18n"
	"github.com/glucolog/glucolog/internal/logger"
	"github.com/glucolog/glucolog/internal/prefs"
	"github.com/glucolog/glucolog/internal/services"
	"github.com/glucolog/glucolog/internal/state"
	"github.com/glucolog/glucolog/internal/storage/factory"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	logger.Info("Configuration loaded", "storage_driver", cfg.StorageDriver, "prefs_driver", cfg.Prefs.Driver)

	store, err := factory.NewStore(cfg)
	if err != nil {
		logger.Fatalf("Failed to open storage backend: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.HealthCheck(ctx); err != nil {
		logger.Fatalf("Storage backend health check failed: %v", err)
	}
	logger.Info("Storage backend ready", "driver", cfg.StorageDriver)

	prefStore, err := prefs.New(cfg.Prefs)
	if err != nil {
		logger.Fatalf("Failed to open preference store: %v", err)
	}

	settings := state.NewSettingsContainer(ctx, prefStore)
	locale := state.NewLocaleContainer(ctx, prefStore)
	settings.Subscribe(func(s state.SettingsState) {
		logger.Debug("Settings changed", "theme", s.Theme, "units", s.Units)
	})
	locale.Subscribe(func(s state.LocaleState) {
		logger.Debug("Locale changed", "language", s.Language, "rtl", s.IsRTL())
	})

	bundle, err := i18n.Load(cfg.LocalesDir)
	if err != nil {
		logger.Warn("Localized strings unavailable", "dir", cfg.LocalesDir, "error", err)
	} else {
		lang := locale.Get().Language
		logger.Info("Localized strings loaded",
			"language", lang,
			"app_title", bundle.T(lang, "app.title"))
	}

	var opts []services.Option
	if cfg.JWTSecret != "" {
		opts = append(opts, services.WithTokenIssuer(auth.NewTokenIssuer(cfg.JWTSecret)))
	}
	dataService := services.NewDataService(store, prefStore, opts...)

	// Pre-login reads degrade to defaults; surfacing them at startup
	// proves the backend wiring end to end.
	dashboard, err := dataService.GetDashboardData(ctx)
	if err != nil {
		logger.Fatalf("Dashboard assembly failed: %v", err)
	}
	logger.Info("Dashboard ready",
		"cards", len(dashboard.HealthCards),
		"pending_reminders", len(dashboard.Reminders),
		"chart_hours", dashboard.Chart.HourLabels)

	if cfg.GeminiAPIKey != "" {
		assistant, err := services.NewAssistantService(ctx, cfg.GeminiAPIKey)
		if err != nil {
			logger.Warn("Assistant unavailable", "error", err)
		} else {
			defer assistant.Close()
			logger.Info("Assistant ready")
		}
	}

	logger.Info("glucolog data core running. Press Ctrl+C to stop.")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("Shutting down")
}
