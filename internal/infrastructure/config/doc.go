// Package config provides 12-factor configuration for the ChatRelay agents.
//
// Configuration is loaded from environment variables with defaults. An
// optional YAML file named by CHATRELAY_CONFIG is decoded on top, which is
// convenient for pinning a backend URL per browser profile.
package config
