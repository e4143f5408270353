// Package config loads application configuration from environment variables
// and an optional .env file.
//
// Defaults are declared as struct tags and bound into Viper by reflection, so
// every key is overridable through the environment (PATHS_INPUT, LOG_LEVEL,
// DATABASE_DRIVER, ...) without a config file being required.
package config
