package config

import "github.com/kelseyhightower/envconfig"

// EnvPrefix prefixes every environment variable read by the client, e.g.
// LIBCLIENT_SERVER_URL.
const EnvPrefix = "LIBCLIENT"

// parseEnv overlays cfg with the LIBCLIENT_* variables that are set. Unset
// variables leave the current value alone.
func parseEnv(cfg *Config) error {
	return envconfig.Process(EnvPrefix, cfg)
}
