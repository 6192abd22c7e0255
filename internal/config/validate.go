package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration error: %s", e.Errors[0])
	}
	return fmt.Sprintf("configuration errors:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// validateConfig performs cross-field validation on the complete
// configuration. Returns a list of validation errors.
func validateConfig(cfg *Config) []string {
	var errs []string

	if cfg.RecordName == "" {
		errs = append(errs, KeyRecordName+": is required")
	}

	if cfg.IPSource == "http" && (cfg.IPDNSName != "" || cfg.IPDNSServer != "") {
		errs = append(errs, fmt.Sprintf("%s/%s: only used with %s=dns", KeyIPDNSName, KeyIPDNSServer, KeyIPSource))
	}

	return errs
}

// Credentials are the secrets and account identifier a run needs, as found
// in the state file.
type Credentials struct {
	Token       string
	BypassToken string
	AccountID   string
}

// CheckCredentials reports missing secrets for the configured run. The DNS
// token is always required; the bypass token and account id only when
// access sync is enabled.
func (c *Config) CheckCredentials(creds Credentials) error {
	var errs []string

	if creds.Token == "" {
		errs = append(errs, "TOKEN: is required")
	}

	if c.UpdateAccess {
		if creds.BypassToken == "" {
			errs = append(errs, fmt.Sprintf("BYPASS_TOKEN: is required when %s=true", KeyUpdateAccess))
		}
		if creds.AccountID == "" {
			errs = append(errs, fmt.Sprintf("ACCOUNT_ID: is required when %s=true", KeyUpdateAccess))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
