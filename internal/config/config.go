package config

import "time"

// Integration kinds understood by the route package.
const (
	KindTypeCatalog   = "type-catalog"
	KindRecordStorage = "record-storage"
)

// GatewayConfig is the complete gateway configuration.
type GatewayConfig struct {
	Listen       ListenConfig        `yaml:"listen"`
	Metrics      MetricsConfig       `yaml:"metrics"`
	Log          LogConfig           `yaml:"log"`
	StaticDir    string              `yaml:"staticDir"`
	Upstream     UpstreamConfig      `yaml:"upstream"`
	RateLimit    RateLimitConfig     `yaml:"rateLimit"`
	Tracing      TracingConfig       `yaml:"tracing"`
	Integrations []IntegrationConfig `yaml:"integrations"`
}

// ListenConfig configures the public HTTP listener.
type ListenConfig struct {
	Address         string   `yaml:"address"`
	ReadTimeout     Duration `yaml:"readTimeout"`
	WriteTimeout    Duration `yaml:"writeTimeout"`
	IdleTimeout     Duration `yaml:"idleTimeout"`
	ShutdownTimeout Duration `yaml:"shutdownTimeout"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
	Path    string `yaml:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// UpstreamConfig configures connections to the backends.
type UpstreamConfig struct {
	DialTimeout           Duration `yaml:"dialTimeout"`
	ResponseHeaderTimeout Duration `yaml:"responseHeaderTimeout"`
	// BreakerThreshold is the number of consecutive failed round trips that
	// opens a cluster's circuit breaker. Zero disables circuit breaking.
	BreakerThreshold int      `yaml:"breakerThreshold"`
	BreakerTimeout   Duration `yaml:"breakerTimeout"`
}

// RateLimitConfig configures the inbound token bucket shared by all callers.
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
}

// TracingConfig configures OpenTelemetry tracing. Spans are exported over
// OTLP/gRPC only when an endpoint is set.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	ServiceName  string  `yaml:"serviceName"`
	OTLPEndpoint string  `yaml:"otlpEndpoint"`
	Insecure     bool    `yaml:"insecure"`
	SamplingRate float64 `yaml:"samplingRate"`
}

// IntegrationConfig describes one backend integration.
type IntegrationConfig struct {
	Name    string `yaml:"name"`
	Kind    string `yaml:"kind"`
	BaseURL string `yaml:"baseUrl"`
	APIKey  string `yaml:"apiKey"`
}

// DefaultIntegrations returns the integrations the gateway knows about when
// the configuration file does not list any.
func DefaultIntegrations() []IntegrationConfig {
	return []IntegrationConfig{
		{Name: "objecttypes", Kind: KindTypeCatalog},
		{Name: "objects", Kind: KindRecordStorage},
	}
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *GatewayConfig {
	return &GatewayConfig{
		Listen: ListenConfig{
			Address:         ":8080",
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(60 * time.Second),
			IdleTimeout:     Duration(120 * time.Second),
			ShutdownTimeout: Duration(30 * time.Second),
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Address: ":9090",
			Path:    "/metrics",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Upstream: UpstreamConfig{
			DialTimeout:           Duration(10 * time.Second),
			ResponseHeaderTimeout: Duration(30 * time.Second),
			BreakerThreshold:      0,
			BreakerTimeout:        Duration(30 * time.Second),
		},
		RateLimit: RateLimitConfig{
			Enabled:           false,
			RequestsPerSecond: 100,
			Burst:             200,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			ServiceName:  "boombff",
			SamplingRate: 1.0,
		},
		Integrations: DefaultIntegrations(),
	}
}
