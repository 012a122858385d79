// Package config loads gateway configuration.
//
// Values are layered: built-in defaults, then an optional YAML file (with
// ${VAR} and ${VAR:-default} substitution), then environment variables.
// Integration destinations and tokens come from <NAME>_BASE_URL and
// <NAME>_API_KEY; a missing value is not a configuration error, the
// integration is simply not registered.
package config
