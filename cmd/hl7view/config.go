package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// hl7view config.toml key mapping
type fileConfig struct {
	PersistenceURL string `toml:"persistence_url"`
	RequestTimeout string `toml:"request_timeout"`
}

type viewerConfig struct {
	PersistenceURL string
	RequestTimeout time.Duration
}

func defaultViewerConfig() viewerConfig {
	return viewerConfig{
		RequestTimeout: 10 * time.Second,
	}
}

// loadViewerConfig reads a TOML config file, overlaying defined keys onto
// the defaults
func loadViewerConfig(path string) (viewerConfig, error) {
	cfg := defaultViewerConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return viewerConfig{}, fmt.Errorf("load config: %w", err)
	}
	if meta.IsDefined("persistence_url") {
		cfg.PersistenceURL = strings.TrimSpace(raw.PersistenceURL)
	}
	if meta.IsDefined("request_timeout") {
		timeout, err := time.ParseDuration(strings.TrimSpace(raw.RequestTimeout))
		if err != nil {
			return viewerConfig{}, fmt.Errorf("load config: request_timeout: %w", err)
		}
		cfg.RequestTimeout = timeout
	}
	return cfg, nil
}
