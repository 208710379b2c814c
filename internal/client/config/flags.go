package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/libraryclient/internal/flagx"
)

var knownFlags = []string{"-s", "-d", "-t", "-n", "-e", "-r", "-log-format", "-log-level"}

// parseFlags populates Config fields from command-line flags.
//
//	-s string        backend base URL
//	-d string        local state file
//	-t duration      request timeout
//	-n duration      notification display time
//	-e string        export directory
//	-r string        route opened at start
//	-log-format      text, json or zap
//	-log-level       debug, info, warn or error
//
// Arguments that are not listed above are ignored (see flagx.FilterArgs).
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "backend base URL")
	fs.StringVar(&cfg.StatePath, "d", cfg.StatePath, "local state file")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")
	fs.DurationVar(&cfg.NotificationDuration, "n", cfg.NotificationDuration, "notification display time")
	fs.StringVar(&cfg.ExportDir, "e", cfg.ExportDir, "export directory")
	fs.StringVar(&cfg.StartRoute, "r", cfg.StartRoute, "route opened at start")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text, json or zap")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")

	return fs.Parse(flagx.FilterArgs(args, knownFlags))
}
