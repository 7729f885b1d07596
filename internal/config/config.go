package config

import (
	"os"
)

type Config struct {
	GinMode string
	Port    string

	DatabaseURL string

	CORSAllowedOrigins string
}

func Load() Config {
	return Config{
		GinMode: get("GIN_MODE", "debug"),
		Port:    get("PORT", "8000"),

		DatabaseURL: get("DATABASE_URL", ""),

		CORSAllowedOrigins: get("CORS_ALLOWED_ORIGINS", ""),
	}
}

func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
