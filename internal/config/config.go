// Package config loads settings from defaults, a TOML file, the environment
// and finally command-line flags, each layer overriding the previous one.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the project config file looked up in the working directory.
const FileName = "todo.toml"

// Default values.
const (
	DefaultAddr            = "127.0.0.1:3000"
	DefaultServerURL       = "http://127.0.0.1:3000"
	DefaultClientTimeout   = "10s"
	DefaultShutdownTimeout = "5s"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultTheme           = "classic"
)

// Config holds the full configuration for the server and its clients.
type Config struct {
	Server ServerConfig `toml:"server"`
	Client ClientConfig `toml:"client"`
	Log    LogConfig    `toml:"log"`
	UI     UIConfig     `toml:"ui"`

	// Path of the file the config was read from, empty when none.
	Path string `toml:"-"`
}

// ServerConfig configures `todo serve`.
type ServerConfig struct {
	Addr            string `toml:"addr"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
	// Empty starts the store without the sample tasks.
	Empty bool `toml:"empty"`
}

// ClientConfig configures the commands that talk to a running server.
type ClientConfig struct {
	URL     string `toml:"url"`
	Timeout string `toml:"timeout"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// UIConfig configures terminal rendering.
type UIConfig struct {
	Theme string `toml:"theme"`
}

// Default returns a Config populated with defaults only.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// Load builds a Config. If path is empty, FileName in the working directory
// is used when it exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	file := path
	if file == "" {
		if _, err := os.Stat(FileName); err == nil {
			file = FileName
		}
	}
	if file != "" {
		if _, err := toml.DecodeFile(file, cfg); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("config file %s: %w", file, err)
			}
			return nil, fmt.Errorf("loading config file %s: %w", file, err)
		}
		cfg.Path = file
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Server.Addr = DefaultAddr
	cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	cfg.Client.URL = DefaultServerURL
	cfg.Client.Timeout = DefaultClientTimeout
	cfg.Log.Level = DefaultLogLevel
	cfg.Log.Format = DefaultLogFormat
	cfg.UI.Theme = DefaultTheme
}

// loadFromEnv overrides config from TODO_* environment variables.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TODO_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TODO_SERVER"); v != "" {
		cfg.Client.URL = v
	}
	if v := os.Getenv("TODO_CLIENT_TIMEOUT"); v != "" {
		cfg.Client.Timeout = v
	}
	if v := os.Getenv("TODO_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TODO_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("TODO_THEME"); v != "" {
		cfg.UI.Theme = v
	}
}

// Validate checks values that later stages would otherwise fail on.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server.addr is empty")
	}
	if strings.TrimSpace(c.Client.URL) == "" {
		return errors.New("client.url is empty")
	}
	if _, err := c.ClientTimeout(); err != nil {
		return err
	}
	if _, err := c.ShutdownTimeout(); err != nil {
		return err
	}
	return nil
}

// ClientTimeout parses client.timeout. Zero disables the timeout.
func (c *Config) ClientTimeout() (time.Duration, error) {
	return parseDuration("client.timeout", c.Client.Timeout)
}

// ShutdownTimeout parses server.shutdown_timeout.
func (c *Config) ShutdownTimeout() (time.Duration, error) {
	return parseDuration("server.shutdown_timeout", c.Server.ShutdownTimeout)
}

func parseDuration(field, v string) (time.Duration, error) {
	if strings.TrimSpace(v) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: negative duration %s", field, v)
	}
	return d, nil
}
