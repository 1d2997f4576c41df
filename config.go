package main

import (
	"fmt"
	"os"
)

// Config holds all environment variables for the storefront service.
type Config struct {
	Port     string // Service port (default: 8082)
	MongoURI string // MongoDB connection string
	MongoDB  string // Database name (default: storefront)
	RedisURL string // Redis connection URL (default: redis://localhost:6379)
	Env      string // "production" or "development"
}

// LoadConfig loads environment variables into Config and validates them.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:     os.Getenv("PORT"),
		MongoURI: os.Getenv("MONGO_URI"),
		MongoDB:  os.Getenv("MONGO_DB"),
		RedisURL: os.Getenv("REDIS_URL"),
		Env:      os.Getenv("APP_ENV"),
	}

	if cfg.Port == "" {
		cfg.Port = "8082"
	}
	if cfg.MongoDB == "" {
		cfg.MongoDB = "storefront"
	}
	if cfg.RedisURL == "" {
		cfg.RedisURL = "redis://localhost:6379"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is required")
	}

	return cfg, nil
}
