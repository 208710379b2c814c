package config

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/libraryclient/internal/flagx"
	"github.com/dmitrijs2005/libraryclient/internal/timex"
	"sigs.k8s.io/yaml"
)

// FileConfig is the on-disk form of Config. Files may be JSON or YAML;
// durations are given either as strings like "3s" or as integer nanoseconds.
type FileConfig struct {
	ServerURL            string         `json:"server_url"`
	StatePath            string         `json:"state_path"`
	RequestTimeout       timex.Duration `json:"request_timeout"`
	NotificationDuration timex.Duration `json:"notification_duration"`
	ExportDir            string         `json:"export_dir"`
	StartRoute           string         `json:"start_route"`
	LogFormat            string         `json:"log_format"`
	LogLevel             string         `json:"log_level"`
}

// parseFile overlays cfg with the file selected by -c/-config in args. Only
// keys present with a non-zero value replace the current settings.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.ServerURL, fc.ServerURL)
	setString(&cfg.StatePath, fc.StatePath)
	setString(&cfg.ExportDir, fc.ExportDir)
	setString(&cfg.StartRoute, fc.StartRoute)
	setString(&cfg.LogFormat, fc.LogFormat)
	setString(&cfg.LogLevel, fc.LogLevel)
	if fc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.NotificationDuration.Duration > 0 {
		cfg.NotificationDuration = fc.NotificationDuration.Duration
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
