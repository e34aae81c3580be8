package pricing

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultConfigYAML []byte

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	cfg, err := ParseConfig(defaultConfigYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded pricing config: %v", err))
	}
	return cfg
}

// ParseConfig decodes a YAML or JSON configuration document and validates it.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Config{}, configError("", "document is empty")
	}

	// JSON object keys are strings, which yaml.v3 will not decode into the
	// integer contract-length keys.
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &cfg); err != nil {
			return Config{}, configError("", "decode json: %v", err)
		}
	} else if err := yaml.Unmarshal(trimmed, &cfg); err != nil {
		return Config{}, configError("", "decode yaml: %v", err)
	}

	if cfg.Discounts.Mode == "" {
		cfg.Discounts.Mode = ModeInterpolated
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses the configuration file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read pricing config: %w", err)
	}
	return ParseConfig(data)
}
