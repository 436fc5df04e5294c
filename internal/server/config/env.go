package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// loadEnv reads cfg.EnvFile into the process environment, without
// overriding variables that are already set, then applies the env tags.
func loadEnv(cfg *Config) error {
	if cfg.EnvFile != "" {
		if err := godotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", cfg.EnvFile, err)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func parseEnv(cfg *Config) {
	if err := loadEnv(cfg); err != nil {
		panic(err)
	}
}
