// Package config loads, normalizes, and validates earmark configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// LASTFM_API_KEY. The Config type centralizes every knob the CLI needs, from
// Last.fm account settings to matcher thresholds and cache locations.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
