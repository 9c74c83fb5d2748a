package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL        string
	Port               string
	IsProduction       bool
	DocumentStorageDir string
	RateLimit          string // ulule/limiter format, e.g. "100-M"
	CORSAllowOrigins   []string
}

// LoadConfig loads configuration from environment variables and a .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("DOCUMENT_STORAGE_DIR", "./storage/documents")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("CORS_ALLOW_ORIGINS", "*")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.DocumentStorageDir = viper.GetString("DOCUMENT_STORAGE_DIR")
	if cfg.DocumentStorageDir == "" {
		cfg.DocumentStorageDir = "./storage/documents"
		log.Printf("Warning: DOCUMENT_STORAGE_DIR not set. Defaulting to %s\n", cfg.DocumentStorageDir)
	}

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.CORSAllowOrigins = viper.GetStringSlice("CORS_ALLOW_ORIGINS")

	return cfg, nil
}
