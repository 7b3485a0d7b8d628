// Command validate-config resolves the environment configuration and
// prints it, failing on combinations the app would refuse at startup.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/glucolog/glucolog/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fatal := false

	switch cfg.StorageDriver {
	case "asset", "sqlite", "postgres":
	default:
		fmt.Printf("FATAL: unknown STORAGE_DRIVER %q (want asset, sqlite or postgres)\n", cfg.StorageDriver)
		fatal = true
	}

	switch cfg.Prefs.Driver {
	case "memory", "file", "redis":
	default:
		fmt.Printf("FATAL: unknown PREFS_DRIVER %q (want memory, file or redis)\n", cfg.Prefs.Driver)
		fatal = true
	}

	if cfg.StorageDriver == "postgres" && cfg.DB.Password == "postgres" {
		fmt.Println("WARN: DB_PASSWORD is the default; set a real one for server deployments")
	}
	if cfg.JWTSecret == "" {
		fmt.Println("WARN: JWT_SECRET not set; sessions will not carry bearer tokens")
	}
	if cfg.GeminiAPIKey == "" {
		fmt.Println("WARN: GEMINI_API_KEY not set; assistant disabled")
	}

	fmt.Printf("storage driver:  %s\n", cfg.StorageDriver)
	switch cfg.StorageDriver {
	case "asset":
		fmt.Printf("asset path:      %s\n", cfg.AssetPath)
	case "sqlite":
		fmt.Printf("sqlite path:     %s\n", cfg.SQLitePath)
	case "postgres":
		fmt.Printf("postgres:        %s@%s:%s/%s\n", cfg.DB.User, cfg.DB.Host, cfg.DB.Port, cfg.DB.DBName)
	}
	fmt.Printf("prefs driver:    %s\n", cfg.Prefs.Driver)
	fmt.Printf("locales dir:     %s\n", cfg.LocalesDir)
	fmt.Printf("log level/format: %v/%s\n", cfg.Logger.Level, cfg.Logger.Format)

	if fatal {
		os.Exit(1)
	}
	fmt.Println("Configuration OK")
}
