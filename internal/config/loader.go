package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New(ctx))
//  2. file (YAML) if WARDBOARD_CONFIG is set
//  3. env (prefix WARDBOARD_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("WARDBOARD_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: WARDBOARD_ADDR, WARDBOARD_REFRESH_INTERVAL_MS, ...
	// Map env keys like WARDBOARD_REFRESH_INTERVAL_MS -> refresh_interval_ms
	// (flat keys). Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("WARDBOARD_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "wardboard_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Basic validation
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if cfg.UpstreamBaseURL == "" {
		return nil, fmt.Errorf("%w: upstream_base_url must not be empty", ErrInvalidConfig)
	}
	switch cfg.DefaultDensity {
	case "low", "medium", "high":
	default:
		return nil, fmt.Errorf("%w: default_density must be low, medium, or high", ErrInvalidConfig)
	}
	return &cfg, nil
}
