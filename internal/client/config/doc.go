// Package config loads runtime configuration for the library client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected via -c or -config. JSON and YAML are
//     both accepted.
//  3. LIBCLIENT_* environment variables.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-s string       backend base URL (default http://127.0.0.1:8000)
//	-d string       local state file (default library-client.db)
//	-t duration     request timeout (default 10s)
//	-n duration     notification display time (default 2s)
//	-e string       export directory (default exports)
//	-r string       route opened at start (default /)
//	-log-format     text, json or zap (default text)
//	-log-level      debug, info, warn or error (default info)
//
// # File schema
//
// Durations use timex.Duration, so values can be strings like "3s" or
// integer nanoseconds:
//
//	server_url: http://library.local/api
//	request_timeout: 5s
//	notification_duration: 3s
//	export_dir: /tmp/exports
//
// # Environment
//
//	LIBCLIENT_SERVER_URL, LIBCLIENT_STATE_PATH, LIBCLIENT_REQUEST_TIMEOUT,
//	LIBCLIENT_NOTIFICATION_DURATION, LIBCLIENT_EXPORT_DIR,
//	LIBCLIENT_START_ROUTE, LIBCLIENT_LOG_FORMAT, LIBCLIENT_LOG_LEVEL
package config
