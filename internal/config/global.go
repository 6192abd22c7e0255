package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Setting keys, as written in the config file. Each one can be overridden by
// the same key with the WAGDNS_ prefix.
const (
	KeyRecordName   = "RECORD_NAME"
	KeyZoneName     = "ZONE_NAME"
	KeyGroupName    = "GROUP_NAME"
	KeyUpdateAccess = "UPDATE_ACCESS"
	KeyLogFile      = "LOG_FILE"
	KeyLogLevel     = "LOG_LEVEL"
	KeyLogFormat    = "LOG_FORMAT"
	KeyForceUpdate  = "FORCE_UPDATE"
	KeyDryRun       = "DRY_RUN"
	KeyIPSource     = "IP_SOURCE"
	KeyIPEchoURL    = "IP_ECHO_URL"
	KeyIPDNSName    = "IP_DNS_NAME"
	KeyIPDNSServer  = "IP_DNS_SERVER"
	KeyAPIEndpoint  = "API_ENDPOINT"
	KeyHTTPTimeout  = "HTTP_TIMEOUT"
	KeyMetricsFile  = "METRICS_FILE"
)

// Keys lists every setting key in file order.
var Keys = []string{
	KeyRecordName,
	KeyZoneName,
	KeyGroupName,
	KeyUpdateAccess,
	KeyLogFile,
	KeyLogLevel,
	KeyLogFormat,
	KeyForceUpdate,
	KeyDryRun,
	KeyIPSource,
	KeyIPEchoURL,
	KeyIPDNSName,
	KeyIPDNSServer,
	KeyAPIEndpoint,
	KeyHTTPTimeout,
	KeyMetricsFile,
}

// Configuration defaults.
const (
	DefaultLogLevel    = "debug"
	DefaultLogFormat   = "auto"
	DefaultForceUpdate = false
	DefaultDryRun      = false
	DefaultIPSource    = "http"
	DefaultHTTPTimeout = 30 * time.Second
)

// fromValues builds a Config from merged key/value settings, applying
// defaults for absent keys. Returns a list of validation errors (may be
// empty).
func fromValues(values map[string]string) (*Config, []string) {
	var errs []string

	cfg := &Config{
		RecordName:  strings.TrimSpace(values[KeyRecordName]),
		ZoneName:    strings.TrimSpace(values[KeyZoneName]),
		GroupName:   values[KeyGroupName],
		LogFile:     values[KeyLogFile],
		LogLevel:    strings.ToLower(values[KeyLogLevel]),
		LogFormat:   strings.ToLower(values[KeyLogFormat]),
		IPSource:    strings.ToLower(values[KeyIPSource]),
		IPEchoURL:   values[KeyIPEchoURL],
		IPDNSName:   values[KeyIPDNSName],
		IPDNSServer: values[KeyIPDNSServer],
		APIEndpoint: strings.TrimRight(values[KeyAPIEndpoint], "/"),
		MetricsFile: values[KeyMetricsFile],
		ForceUpdate: DefaultForceUpdate,
		DryRun:      DefaultDryRun,
		HTTPTimeout: DefaultHTTPTimeout,
	}

	// Anything other than the exact string "true" leaves access sync off.
	cfg.UpdateAccess = values[KeyUpdateAccess] == "true"

	// Apply defaults for empty values
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = DefaultLogFormat
	}
	if cfg.IPSource == "" {
		cfg.IPSource = DefaultIPSource
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
		// Valid
	default:
		errs = append(errs, fmt.Sprintf("%s: invalid value %q (must be debug, info, warn, or error)", KeyLogLevel, cfg.LogLevel))
	}

	switch cfg.LogFormat {
	case "auto", "json", "text":
		// Valid
	default:
		errs = append(errs, fmt.Sprintf("%s: invalid value %q (must be auto, json, or text)", KeyLogFormat, cfg.LogFormat))
	}

	switch cfg.IPSource {
	case "http", "dns":
		// Valid
	default:
		errs = append(errs, fmt.Sprintf("%s: invalid value %q (must be http or dns)", KeyIPSource, cfg.IPSource))
	}

	if v := values[KeyForceUpdate]; v != "" {
		cfg.ForceUpdate = parseBool(v, DefaultForceUpdate)
	}

	if v := values[KeyDryRun]; v != "" {
		cfg.DryRun = parseBool(v, DefaultDryRun)
	}

	// Parse HTTP_TIMEOUT (Go duration format: 30s, 1m)
	if v := values[KeyHTTPTimeout]; v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: invalid duration %q (use format like 30s, 1m)", KeyHTTPTimeout, v))
		} else if timeout < time.Second {
			errs = append(errs, fmt.Sprintf("%s: must be at least 1s", KeyHTTPTimeout))
		} else {
			cfg.HTTPTimeout = timeout
		}
	}

	errs = append(errs, validateURL(KeyAPIEndpoint, cfg.APIEndpoint)...)
	errs = append(errs, validateURL(KeyIPEchoURL, cfg.IPEchoURL)...)

	return cfg, errs
}

// validateURL checks that an optional URL setting is absolute.
func validateURL(key, raw string) []string {
	if raw == "" {
		return nil
	}
	if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
		return []string{fmt.Sprintf("%s: invalid URL %q", key, raw)}
	}
	return nil
}
