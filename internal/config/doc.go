// Package config loads, normalizes, and validates vidstitch configuration.
//
// It supplies repository defaults, expands tilde paths, reads TOML files, and
// honours environment fallbacks such as VIDSTITCH_CACHE_DIR. Always obtain
// settings through this package so downstream code receives sanitized paths
// and clear validation errors.
package config
