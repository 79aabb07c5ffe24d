// Package config loads application configuration from environment variables
// into typed structs.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11:
// the default .env file is loaded once per process (if present), structs are
// parsed via their `env` field tags, and every configuration type is cached
// after the first successful parse so repeated loads are cheap and
// consistent.
package config
