// Package config loads and merges logchange configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (LOGCHANGE_PROVIDER, LOGCHANGE_MODEL, OPENAI_MODEL, etc.)
//  3. Config file ($XDG_CONFIG_HOME/logchange/config.yaml)
//  4. Built-in defaults
//
// Environment variables may also come from .env files loaded with
// [LoadEnvFiles] before [Load] runs. Use [Save] to write a config file and
// [SetField] to update a single key.
package config
