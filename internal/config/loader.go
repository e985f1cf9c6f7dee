package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables read before the layered keys.
const (
	EnvPrefix  = "PODCLIPS_"
	EnvConfig  = EnvPrefix + "CONFIG"
	EnvEnvFile = EnvPrefix + "ENV_FILE"
	EnvPort    = "PORT"

	defaultEnvFile = ".env"
)

// Load builds a Config by layering defaults, .env, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. .env file (PODCLIPS_ENV_FILE, default ".env"); never overrides real env vars
//  3. file (YAML) if PODCLIPS_CONFIG is set
//  4. PORT, as ":<port>" for addr
//  5. env (prefix PODCLIPS_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if path := os.Getenv(EnvConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	if port := os.Getenv(EnvPort); port != "" {
		if err := k.Set("addr", ":"+port); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// PODCLIPS_VOTE_QUEUE_SIZE -> vote_queue_size (flat keys).
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv loads the .env file into the process environment. A missing
// default file is not an error; a missing explicitly named one is.
func loadDotEnv() error {
	path, explicit := os.LookupEnv(EnvEnvFile)
	if !explicit || path == "" {
		path, explicit = defaultEnvFile, false
	}
	err := godotenv.Load(path)
	switch {
	case err == nil:
		return nil
	case !explicit && errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("%w: env file %s: %w", ErrLoadConfig, path, err)
	}
}
