// Package config loads client configuration from YAML with ${VAR}
// environment expansion and duration parsing.
package config
