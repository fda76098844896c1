// Package config loads offerwatch's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/offerwatch/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// # Configuration Fields
//
//	base_url             offer service origin (http://127.0.0.1:8080)
//	session_cookie_name  cookie carrying the server session (JSESSIONID)
//	session_cookie       cookie value; the OS keyring is used when empty
//	poll_interval        safety-net refresh cadence (7s)
//	notice_duration      how long a notice stays visible (2.2s)
//	reconnect_delay      wait between push reconnect attempts (3s)
//	request_timeout      per-request HTTP timeout (5s)
//	log_file             ~/.local/state/offerwatch/offerwatch.log
//	log_level            debug, info, warn or error (info)
//	otlp_endpoint        OTLP/gRPC collector; tracing is off when empty
//	otlp_insecure        disable TLS to the collector
//
// Durations use Go syntax ("7s", "2200ms"). Invalid values are an error,
// not a fallback to the default.
//
// Paths beginning with ~ are expanded to the user's home directory and
// converted to absolute paths.
package config
