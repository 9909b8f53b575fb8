// Package config loads rugby-fixtures settings.
//
// Settings are layered, later sources winning:
//
//  1. built-in defaults
//  2. config.yaml (--config, ./config.yaml, then ~/.config/rugby-fixtures/config.yaml)
//  3. environment variables, optionally seeded from a .env file
//  4. command-line flags
//
// The merged result is checked with Validate before use.
package config
