// Package config loads, normalizes, and validates trawl configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// XAI_API_KEY and OPENAI_API_KEY. The Config type centralizes every knob the
// CLI needs, so vault locations, provider credentials, and filter thresholds
// are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical vault folders, and clear validation errors.
package config
