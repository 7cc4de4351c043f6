// Package config loads, normalizes, and validates webmfix configuration.
//
// Settings come from a TOML file (by default ~/.config/webmfix/config.toml,
// falling back to ./webmfix.toml) layered over built-in defaults, with the
// WEBMFIX_LOG_LEVEL environment variable taking precedence for the log level.
package config
