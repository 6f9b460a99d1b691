package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Environment variables read by Load.
const (
	EnvBackendURL = "DSUM_BACKEND_URL"
	EnvConfigPath = "DSUM_CONFIG"
)

const defaultBackendURL = "http://localhost:8000"

type Config struct {
	BackendURL     string   `toml:"backend_url"`
	DBPath         string   `toml:"db_path"`
	LogPath        string   `toml:"log_path"`
	LogLevel       string   `toml:"log_level"`
	RequestTimeout Duration `toml:"request_timeout"`
	OAuth          OAuth    `toml:"oauth"`

	// Path is the config file that was read, if any.
	Path string `toml:"-"`
}

// OAuth holds the Google client the backend exchanges codes for.
type OAuth struct {
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	ListenAddr   string   `toml:"listen_addr"`
	Scopes       []string `toml:"scopes"`
}

// Duration decodes TOML strings like "90s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BackendURL:     defaultBackendURL,
		DBPath:         filepath.Join(home, ".config", "dsum", "dsum.db"),
		LogPath:        filepath.Join(home, ".config", "dsum", "dsum.log"),
		LogLevel:       "info",
		RequestTimeout: Duration{2 * time.Minute},
		OAuth: OAuth{
			ListenAddr: "localhost:5173",
		},
	}

	cfgPath := filepath.Join(home, ".config", "dsum", "config.toml")
	if p := os.Getenv(EnvConfigPath); p != "" {
		cfgPath = expandHome(p, home)
	}
	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
		cfg.Path = cfgPath
	}

	if u := os.Getenv(EnvBackendURL); u != "" {
		cfg.BackendURL = u
	}

	// expand ~ in paths
	cfg.DBPath = expandHome(cfg.DBPath, home)
	cfg.LogPath = expandHome(cfg.LogPath, home)

	return cfg, cfg.Validate()
}

// Validate checks the values Load could not default.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid backend_url %q: want http(s)://host[:port]", c.BackendURL)
	}
	if c.RequestTimeout.Duration <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	return nil
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
