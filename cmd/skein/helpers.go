package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/harpergrove/skein/internal/config"
	"github.com/harpergrove/skein/internal/storage"
)

// loadConfig resolves the typed pipeline configuration with sane defaults
// for anything the config file leaves out.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Config{}, err
	}
	if cfg.SourceDir == "" {
		cfg.SourceDir = config.ExpandPath("$HOME/Documents/statements")
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = config.ExpandPath("$HOME/.local/share/skein/skein.db")
	}
	return cfg, nil
}

// initStorage opens the run database at the configured path.
func initStorage(cfg config.Config) (*storage.Store, error) {
	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.DatabasePath, err)
	}
	return store, nil
}
