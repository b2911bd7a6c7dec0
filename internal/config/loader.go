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
//  1. defaults (New())
//  2. file (YAML) if SWORD_CONFIG is set
//  3. env (prefix SWORD_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("SWORD_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: SWORD_ADDR, SWORD_DATABASE_PATH, ...
	// Map env keys like SWORD_TOP_N -> top_n (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("SWORD_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "sword_")
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
	switch {
	case cfg.Addr == "":
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.DatabasePath == "":
		return nil, fmt.Errorf("%w: database_path must not be empty", ErrInvalidConfig)
	case cfg.TopN < 1:
		return nil, fmt.Errorf("%w: top_n must be positive", ErrInvalidConfig)
	case cfg.DownloadAttempts < 1:
		return nil, fmt.Errorf("%w: download_attempts must be positive", ErrInvalidConfig)
	case cfg.JobBatchSize < 1:
		return nil, fmt.Errorf("%w: job_batch_size must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
