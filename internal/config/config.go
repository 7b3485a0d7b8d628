package config

import (
	"os"
	"strings"

	"github.com/glucolog/glucolog/internal/logger"
)

type Config struct {
	StorageDriver string // "asset", "sqlite" or "postgres"
	AssetPath     string
	SQLitePath    string
	DB            DBConfig
	Prefs         PrefsConfig
	JWTSecret     string
	GeminiAPIKey  string
	LocalesDir    string
	Logger        LoggerConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type PrefsConfig struct {
	Driver    string // "memory", "file" or "redis"
	Path      string
	RedisHost string
	RedisPort string
}

type LoggerConfig struct {
	Level      logger.LogLevel
	OutputPath string
	Format     string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.LevelDebug
	case "info":
		return logger.LevelInfo
	case "warn", "warning":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}

func Load() (*Config, error) {
	return &Config{
		StorageDriver: getEnvOrDefault("STORAGE_DRIVER", "sqlite"),
		AssetPath:     getEnvOrDefault("ASSET_PATH", "assets/demo_data.json"),
		SQLitePath:    getEnvOrDefault("SQLITE_PATH", "glucolog.db"),
		DB: DBConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrDefault("DB_NAME", "glucolog"),
		},
		Prefs: PrefsConfig{
			Driver:    getEnvOrDefault("PREFS_DRIVER", "file"),
			Path:      getEnvOrDefault("PREFS_PATH", "glucolog_prefs.json"),
			RedisHost: getEnvOrDefault("REDIS_HOST", "localhost"),
			RedisPort: getEnvOrDefault("REDIS_PORT", "6379"),
		},
		JWTSecret:    os.Getenv("JWT_SECRET"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		LocalesDir:   getEnvOrDefault("LOCALES_DIR", "assets/locales"),
		Logger: LoggerConfig{
			Level:      parseLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
			OutputPath: getEnvOrDefault("LOG_OUTPUT", "logs/app.log"),
			Format:     getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}, nil
}
