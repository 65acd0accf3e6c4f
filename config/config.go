package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Logging LoggingConfig `toml:"logging"`
	Search  SearchConfig  `toml:"search"`
	Store   StoreConfig   `toml:"store"`
	Server  ServerConfig  `toml:"server"`
	Viewer  ViewerConfig  `toml:"viewer"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type SearchConfig struct {
	MaxExpansions int `toml:"max_expansions"` // 0 = unlimited
	CacheSize     int `toml:"cache_size"`     // Route cache entries for server and viewer
}

type StoreConfig struct {
	Driver string `toml:"driver"` // "sqlite" or "pgx"
	DSN    string `toml:"dsn"`
}

type ServerConfig struct {
	BindAddress  string        `toml:"bind_address"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
	MaxCells     int           `toml:"max_cells"` // Largest grid a client may submit
}

type ViewerConfig struct {
	Sound    bool          `toml:"sound"`
	TickRate time.Duration `toml:"tick_rate"`
}

// Load reads a TOML file over the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration
func Default() *Config {
	return defaults()
}

// Validate rejects values no component can run with
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite", "pgx":
	default:
		return fmt.Errorf("%w: store driver %q", ErrInvalid, c.Store.Driver)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: logging format %q", ErrInvalid, c.Logging.Format)
	}
	if c.Search.MaxExpansions < 0 {
		return fmt.Errorf("%w: search max_expansions %d", ErrInvalid, c.Search.MaxExpansions)
	}
	if c.Server.MaxCells <= 0 {
		return fmt.Errorf("%w: server max_cells %d", ErrInvalid, c.Server.MaxCells)
	}
	if c.Viewer.TickRate <= 0 {
		return fmt.Errorf("%w: viewer tick_rate %v", ErrInvalid, c.Viewer.TickRate)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Search: SearchConfig{
			MaxExpansions: 0,
			CacheSize:     256,
		},
		Store: StoreConfig{
			Driver: "sqlite",
			DSN:    "gridpath.db",
		},
		Server: ServerConfig{
			BindAddress:  "127.0.0.1:7070",
			ReadTimeout:  60 * time.Second,
			WriteTimeout: 10 * time.Second,
			MaxCells:     512 * 512,
		},
		Viewer: ViewerConfig{
			Sound:    false,
			TickRate: 50 * time.Millisecond,
		},
	}
}
