package config

import (
	"os"
	"strings"
)

// LookupFunc resolves an environment variable.
type LookupFunc func(key string) (string, bool)

// OSLookup reads from the process environment.
func OSLookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// Gateway-level environment variables.
const (
	EnvListenAddr   = "BFF_LISTEN_ADDR"
	EnvMetricsAddr  = "BFF_METRICS_ADDR"
	EnvLogLevel     = "BFF_LOG_LEVEL"
	EnvLogFormat    = "BFF_LOG_FORMAT"
	EnvStaticDir    = "BFF_STATIC_DIR"
	EnvOTLPEndpoint = "BFF_OTLP_ENDPOINT"
)

// EnvPrefix returns the environment variable prefix for an integration name,
// e.g. "objecttypes" -> "OBJECTTYPES", "record-store" -> "RECORD_STORE".
func EnvPrefix(name string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "-", "_"))
}

// BaseURLKey returns the destination variable for an integration.
func BaseURLKey(name string) string {
	return EnvPrefix(name) + "_BASE_URL"
}

// APIKeyKey returns the token variable for an integration.
func APIKeyKey(name string) string {
	return EnvPrefix(name) + "_API_KEY"
}

// nonBlank returns the trimmed value of key when it is set and not blank.
func nonBlank(lookup LookupFunc, key string) (string, bool) {
	v, ok := lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// applyEnv overlays environment values onto cfg.
func applyEnv(cfg *GatewayConfig, lookup LookupFunc) {
	if v, ok := nonBlank(lookup, EnvListenAddr); ok {
		cfg.Listen.Address = v
	}
	if v, ok := nonBlank(lookup, EnvMetricsAddr); ok {
		cfg.Metrics.Address = v
	}
	if v, ok := nonBlank(lookup, EnvLogLevel); ok {
		cfg.Log.Level = v
	}
	if v, ok := nonBlank(lookup, EnvLogFormat); ok {
		cfg.Log.Format = v
	}
	if v, ok := nonBlank(lookup, EnvStaticDir); ok {
		cfg.StaticDir = v
	}
	if v, ok := nonBlank(lookup, EnvOTLPEndpoint); ok {
		cfg.Tracing.Enabled = true
		cfg.Tracing.OTLPEndpoint = v
	}

	for i := range cfg.Integrations {
		in := &cfg.Integrations[i]
		if v, ok := nonBlank(lookup, BaseURLKey(in.Name)); ok {
			in.BaseURL = v
		}
		// Tokens are passed through as set; blankness is the only check.
		if v, ok := lookup(APIKeyKey(in.Name)); ok && strings.TrimSpace(v) != "" {
			in.APIKey = v
		}
	}
}
