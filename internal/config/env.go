package config

import (
	"os"
	"regexp"
	"strings"
)

// envVarPattern matches environment variable references in configuration values.
// Supports formats:
//   - ${VAR_NAME} - standard shell-like format
//   - ${VAR_NAME:-default} - with default value if unset or empty
//   - $VAR_NAME - simple format (word characters only)
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([a-zA-Z_][a-zA-Z0-9_]*)`)

// ExpandEnv expands environment variable references in a string.
// Unknown or unset variables without defaults are replaced with empty string.
func ExpandEnv(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if strings.HasPrefix(match, "${") {
			inner := match[2 : len(match)-1]
			if name, def, ok := strings.Cut(inner, ":-"); ok {
				if val := os.Getenv(name); val != "" {
					return val
				}
				return def
			}
			return os.Getenv(inner)
		}
		return os.Getenv(match[1:])
	})
}

// expandEnvValues expands every string in a decoded YAML document.
// Numbers given as "${FPS:-30}" become strings, which the weakly typed
// decoder converts back.
func expandEnvValues(v interface{}) interface{} {
	switch t := v.(type) {
	case string:
		return ExpandEnv(t)
	case map[string]interface{}:
		for k, val := range t {
			t[k] = expandEnvValues(val)
		}
		return t
	case []interface{}:
		for i, val := range t {
			t[i] = expandEnvValues(val)
		}
		return t
	default:
		return v
	}
}
