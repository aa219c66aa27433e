// Package config loads runtime defaults for the cmd/ tools from a
// .env file in the project root, overridable by environment
// variables.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the defaults used by the command-line tools when a
// flag is not given explicitly.
type Config struct {
	ClientName      string
	AdapterIndex    int
	DiscoveryWindow time.Duration
	HTTPAddr        string
}

var (
	loaded     *Config
	loadedOnce bool
)

func defaults() Config {
	return Config{
		ClientName:      "blemidi",
		AdapterIndex:    0,
		DiscoveryWindow: 400 * time.Millisecond,
		HTTPAddr:        "",
	}
}

// Load reads .env (if present) and environment variable overrides.
// Repeated calls reuse the first result.
func Load() Config {
	if loadedOnce {
		return *loaded
	}

	cfg := defaults()

	projectRoot := findProjectRoot()
	envPath := filepath.Join(projectRoot, ".env")
	if data, err := os.ReadFile(envPath); err == nil {
		parseEnvFile(string(data), &cfg)
	}

	if v := os.Getenv("BLEMIDI_CLIENT_NAME"); v != "" {
		cfg.ClientName = v
	}
	if v := os.Getenv("BLEMIDI_ADAPTER_INDEX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.AdapterIndex = n
		}
	}
	if v := os.Getenv("BLEMIDI_DISCOVERY_WINDOW_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DiscoveryWindow = time.Duration(n) * time.Millisecond
		}
	}
	if v := os.Getenv("BLEMIDI_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}

	loaded = &cfg
	loadedOnce = true
	return cfg
}

func parseEnvFile(content string, cfg *Config) {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "BLEMIDI_CLIENT_NAME":
			cfg.ClientName = value
		case "BLEMIDI_ADAPTER_INDEX":
			if n, err := strconv.Atoi(value); err == nil {
				cfg.AdapterIndex = n
			}
		case "BLEMIDI_DISCOVERY_WINDOW_MS":
			if n, err := strconv.Atoi(value); err == nil {
				cfg.DiscoveryWindow = time.Duration(n) * time.Millisecond
			}
		case "BLEMIDI_HTTP_ADDR":
			cfg.HTTPAddr = value
		}
	}
}

func findProjectRoot() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	if _, err := os.Stat(filepath.Join(cwd, ".env")); err == nil {
		return cwd
	}
	for {
		if _, err := os.Stat(filepath.Join(cwd, "go.mod")); err == nil {
			return cwd
		}
		parent := filepath.Dir(cwd)
		if parent == cwd {
			return cwd
		}
		cwd = parent
	}
}
