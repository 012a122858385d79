package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, e[i].Error())
	}
	return sb.String()
}

// Validate checks gateway-level settings. Missing integration destinations or
// tokens are deliberately not reported here.
func (c *GatewayConfig) Validate() error {
	var errs ValidationErrors
	add := func(path, msg string) {
		errs = append(errs, ValidationError{Path: path, Message: msg})
	}

	if strings.TrimSpace(c.Listen.Address) == "" {
		add("listen.address", "must not be empty")
	}
	if c.Listen.ReadTimeout < 0 {
		add("listen.readTimeout", "must not be negative")
	}
	if c.Listen.WriteTimeout < 0 {
		add("listen.writeTimeout", "must not be negative")
	}
	if c.Listen.ShutdownTimeout <= 0 {
		add("listen.shutdownTimeout", "must be positive")
	}
	if c.Metrics.Enabled {
		if strings.TrimSpace(c.Metrics.Address) == "" {
			add("metrics.address", "must not be empty when metrics are enabled")
		}
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			add("metrics.path", "must start with /")
		}
	}
	if c.Upstream.BreakerThreshold < 0 {
		add("upstream.breakerThreshold", "must not be negative")
	}
	if c.Upstream.BreakerThreshold > 0 && c.Upstream.BreakerTimeout <= 0 {
		add("upstream.breakerTimeout", "must be positive when circuit breaking is enabled")
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerSecond <= 0 {
			add("rateLimit.requestsPerSecond", "must be positive when rate limiting is enabled")
		}
		if c.RateLimit.Burst <= 0 {
			add("rateLimit.burst", "must be positive when rate limiting is enabled")
		}
	}
	if c.Tracing.Enabled && (c.Tracing.SamplingRate < 0 || c.Tracing.SamplingRate > 1) {
		add("tracing.samplingRate", "must be between 0 and 1")
	}

	seen := make(map[string]bool, len(c.Integrations))
	for i, in := range c.Integrations {
		path := fmt.Sprintf("integrations[%d]", i)
		name := strings.TrimSpace(in.Name)
		switch {
		case name == "":
			add(path+".name", "must not be empty")
		case strings.ContainsAny(name, "/{}"):
			add(path+".name", "must not contain '/', '{' or '}'")
		case seen[name]:
			add(path+".name", fmt.Sprintf("duplicate integration %q", name))
		}
		seen[name] = true

		if in.Kind != KindTypeCatalog && in.Kind != KindRecordStorage {
			add(path+".kind", fmt.Sprintf("unknown kind %q", in.Kind))
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
