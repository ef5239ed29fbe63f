// Package config loads application configuration from defaults, an optional
// YAML file, and TAGHIVE_* environment variables. Environment always wins,
// so container deployments can override a checked-in config file without
// editing it.
package config
