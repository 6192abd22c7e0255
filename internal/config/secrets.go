package config

import (
	"os"
	"strings"
)

// EnvPrefix is prepended to every setting key to form its environment
// override.
const EnvPrefix = "WAGDNS_"

// getEnv retrieves an environment variable value.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrFile retrieves a value from either a direct environment variable
// or a file path specified by the file key (Docker secrets pattern).
//
// If both are set, the file takes precedence. The file contents are trimmed
// of leading/trailing whitespace.
func getEnvOrFile(directKey, fileKey string) string {
	if filePath := os.Getenv(fileKey); filePath != "" {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
		// Unreadable secret file: fall through to the direct value.
	}

	return os.Getenv(directKey)
}

// getEnvWithFileFallback resolves WAGDNS_<key> with WAGDNS_<key>_FILE
// support.
func getEnvWithFileFallback(key string) string {
	return getEnvOrFile(EnvPrefix+key, EnvPrefix+key+"_FILE")
}

// parseBool parses a boolean string, returning defaultValue on parse failure.
// Accepts: true/false, 1/0, yes/no, on/off (case-insensitive).
func parseBool(s string, defaultValue bool) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}
