// Package config loads, normalizes, and validates stagehand configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours STAGEHAND_* environment overrides.
// The Config type centralizes the artifact tree location, the catalog path,
// stage suffixes and the optional journal and metrics outputs so every command
// resolves them in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
