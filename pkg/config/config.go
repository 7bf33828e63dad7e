// Package config loads ctxcopy settings from TOML files with environment
// overrides. A global file under the user config directory is merged first,
// then a project-local .ctxcopy.toml, then CTXCOPY_* variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
)

// ProjectFileName is the per-project configuration file looked up in the
// base directory.
const ProjectFileName = ".ctxcopy.toml"

// Limits bounds resource usage of one pipeline invocation.
type Limits struct {
	MaxFileSizeKB int `toml:"max_file_size_kb"`
	MaxWorkers    int `toml:"max_workers"`
	ReadTimeoutMS int `toml:"read_timeout_ms"`
}

// Defaults selects output behavior when flags don't override it.
type Defaults struct {
	Format    string   `toml:"format"`
	Exclude   []string `toml:"exclude"`
	Extension string   `toml:"extension"`
}

// Config is the merged ctxcopy configuration.
type Config struct {
	Limits    Limits            `toml:"limits"`
	Defaults  Defaults          `toml:"defaults"`
	Languages map[string]string `toml:"languages"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Limits: Limits{
			MaxFileSizeKB: 1024,
			MaxWorkers:    0, // 0 means one worker per CPU
			ReadTimeoutMS: 10000,
		},
		Defaults: Defaults{
			Format: "markdown",
			Exclude: []string{
				".git/",
				"node_modules/",
				"__pycache__/",
				"*.pyc",
				".DS_Store",
			},
		},
	}
}

// ReadTimeout converts the configured millisecond value.
func (c Config) ReadTimeout() time.Duration {
	return time.Duration(c.Limits.ReadTimeoutMS) * time.Millisecond
}

// Load builds the effective configuration for a base directory. Missing
// files are fine; a file that exists but fails to parse is an error so typos
// don't silently fall back to defaults.
func Load(baseDir string, logger *zap.Logger) (Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := Default()

	var paths []string
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "ctxcopy", "config.toml"))
	}
	paths = append(paths, filepath.Join(baseDir, ProjectFileName))

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		logger.Debug("Loaded config file", zap.String("path", path))
	}

	applyEnv(&cfg, logger)
	return cfg, nil
}

// applyEnv overrides config fields from CTXCOPY_* environment variables.
func applyEnv(cfg *Config, logger *zap.Logger) {
	if v := os.Getenv("CTXCOPY_MAX_FILE_SIZE_KB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Limits.MaxFileSizeKB = n
		} else {
			logger.Warn("Invalid CTXCOPY_MAX_FILE_SIZE_KB", zap.String("value", v))
		}
	}
	if v := os.Getenv("CTXCOPY_MAX_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Limits.MaxWorkers = n
		} else {
			logger.Warn("Invalid CTXCOPY_MAX_WORKERS", zap.String("value", v))
		}
	}
	if v := os.Getenv("CTXCOPY_FORMAT"); v != "" {
		cfg.Defaults.Format = v
	}
}
