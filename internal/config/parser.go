package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every parse and validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// ParseFile reads and parses a run file.
func ParseFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(content)
}

// ParseFromFS reads and parses a run file from fsys.
func ParseFromFS(fsys fs.FS, path string) (*Config, error) {
	content, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(content)
}

// Parse parses YAML content on top of DefaultConfig. Environment
// references are expanded before decoding. Unknown keys are errors.
func Parse(content []byte) (*Config, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	expandEnvValues(raw)

	cfg := DefaultConfig()
	if err := Decode(raw, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Decode decodes a generic map onto cfg, leaving fields the map does not
// mention untouched. Durations may be given as strings such as "250ms".
func Decode(raw map[string]interface{}, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
