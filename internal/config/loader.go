package config

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// Load builds the configuration from defaults, the optional YAML file at path
// and the environment. An empty path skips the file.
func Load(path string, lookup LookupFunc) (*GatewayConfig, error) {
	if lookup == nil {
		lookup = OSLookup
	}

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := parseInto(cfg, data, lookup); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg, lookup)

	return cfg, nil
}

// LoadFromReader builds the configuration from defaults, YAML read from r and
// the environment.
func LoadFromReader(r io.Reader, lookup LookupFunc) (*GatewayConfig, error) {
	if lookup == nil {
		lookup = OSLookup
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := parseInto(cfg, data, lookup); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnv(cfg, lookup)

	return cfg, nil
}

func parseInto(cfg *GatewayConfig, data []byte, lookup LookupFunc) error {
	content := substituteEnvVars(string(data), lookup)

	// A sequence in the file replaces the default integrations entirely.
	return yaml.Unmarshal([]byte(content), cfg)
}

// substituteEnvVars replaces ${VAR} and ${VAR:-default} with values from lookup.
// "$$" yields a literal "$".
func substituteEnvVars(content string, lookup LookupFunc) string {
	const escaped = "\x00ESCAPED_DOLLAR\x00"
	content = strings.ReplaceAll(content, "$$", escaped)

	result := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		sub := envVarPattern.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}
		if value, ok := lookup(sub[1]); ok {
			return value
		}
		if len(sub) >= 3 {
			return sub[2]
		}
		return ""
	})

	return strings.ReplaceAll(result, escaped, "$")
}
