package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the settings file read when WAGDNS_CONFIG is unset.
const DefaultConfigPath = "cf-wagdns.config"

// File formats recognised by LoadFile.
const (
	FormatDotenv = "dotenv"
	FormatYAML   = "yaml"
	FormatTOML   = "toml"
)

// DetectFormat picks the file format from the path's extension. Anything
// that is not YAML or TOML is read as dotenv.
func DetectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatDotenv
	}
}

// envVarPattern matches ${VAR} or ${VAR:-default} syntax.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// InterpolateEnvVars replaces ${VAR} patterns with environment variable values.
// Supports ${VAR:-default} syntax for default values.
func InterpolateEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultValue := ""
		if len(groups) >= 3 {
			defaultValue = groups[2]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}

// LoadFile reads a settings file into a map of upper-case keys to values.
// Dotenv files expand $VAR references the way godotenv does; YAML and TOML
// values get ${VAR} and ${VAR:-default} interpolation.
func LoadFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	format := DetectFormat(path)

	var values map[string]string
	switch format {
	case FormatDotenv:
		values, err = godotenv.Unmarshal(string(data))
		if err != nil {
			return nil, fmt.Errorf("parsing dotenv config: %w", err)
		}
	case FormatYAML:
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing YAML config: %w", err)
		}
		if values, err = flattenScalars(raw); err != nil {
			return nil, fmt.Errorf("parsing YAML config: %w", err)
		}
	case FormatTOML:
		var raw map[string]any
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing TOML config: %w", err)
		}
		if values, err = flattenScalars(raw); err != nil {
			return nil, fmt.Errorf("parsing TOML config: %w", err)
		}
	}

	out := make(map[string]string, len(values))
	for k, v := range values {
		if format != FormatDotenv {
			v = InterpolateEnvVars(v)
		}
		out[strings.ToUpper(strings.TrimSpace(k))] = v
	}

	return out, nil
}

// flattenScalars converts a decoded document into string values. Only a flat
// table of scalars is accepted.
func flattenScalars(raw map[string]any) (map[string]string, error) {
	values := make(map[string]string, len(raw))

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := raw[k].(type) {
		case nil:
			values[k] = ""
		case string:
			values[k] = v
		case bool, int, int64, uint64, float64:
			values[k] = fmt.Sprint(v)
		default:
			return nil, fmt.Errorf("key %q: expected a scalar value, got %T", k, v)
		}
	}

	return values, nil
}
