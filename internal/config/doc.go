// Package config loads, normalizes, and validates discchapters configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the DISCCHAPTERS_LOG_LEVEL environment override.
// A missing config file is not an error; defaults apply.
package config
