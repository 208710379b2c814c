package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds runtime settings for the library client.
//
// Units: RequestTimeout and NotificationDuration are time.Duration values
// (e.g. 10*time.Second).
type Config struct {
	ServerURL            string        `envconfig:"SERVER_URL"`
	StatePath            string        `envconfig:"STATE_PATH"`
	RequestTimeout       time.Duration `envconfig:"REQUEST_TIMEOUT"`
	NotificationDuration time.Duration `envconfig:"NOTIFICATION_DURATION"`
	ExportDir            string        `envconfig:"EXPORT_DIR"`
	StartRoute           string        `envconfig:"START_ROUTE"`
	LogFormat            string        `envconfig:"LOG_FORMAT"`
	LogLevel             string        `envconfig:"LOG_LEVEL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.StatePath = "library-client.db"
	c.RequestTimeout = 10 * time.Second
	c.NotificationDuration = 2 * time.Second
	c.ExportDir = "exports"
	c.StartRoute = "/"
	c.LogFormat = "text"
	c.LogLevel = "info"
}

// Load builds a Config from defaults, the optional config file named in
// args, the environment and finally the flags in args. Later sources take
// precedence over earlier ones. args excludes the program name.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over the process arguments.
func LoadConfig() (*Config, error) {
	cfg, err := Load(os.Args[1:])
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
