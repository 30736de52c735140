// Package config loads, normalizes, and validates hermes configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and keeps every knob the CLI needs in one
// place: output directory and naming template, encoder binary and preset,
// split concurrency, cuesheet decoding, journaling, and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
