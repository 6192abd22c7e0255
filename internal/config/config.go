// Package config handles loading and validation of cf-wagdns configuration.
//
// Settings come from a config file (dotenv, YAML or TOML) and may be
// overridden by WAGDNS_* environment variables. API tokens and cached
// identifiers live in a separate state file handled by package state.
package config

import "time"

// Config holds the settings for one run.
type Config struct {
	// DNS record
	RecordName string // Record to keep pointed at the current address
	ZoneName   string // Zone holding the record, used when no zone id is cached

	// Access group
	GroupName    string // Access group whose IP rules follow the address
	UpdateAccess bool   // Set only by UPDATE_ACCESS=true exactly

	// Logging
	LogFile   string // Append-only debug log; empty disables it
	LogLevel  string // debug, info, warn, error (applies to LogFile)
	LogFormat string // text, json, auto (console)

	// Behavior
	ForceUpdate bool // Push the address even when it matches the cache
	DryRun      bool // Resolve identifiers but skip PUTs and cache writes

	// Address observation
	IPSource    string // http or dns
	IPEchoURL   string
	IPDNSName   string
	IPDNSServer string

	// Transport
	APIEndpoint string
	HTTPTimeout time.Duration

	// Metrics textfile; empty disables it
	MetricsFile string

	// Token overrides read from WAGDNS_TOKEN(_FILE) and
	// WAGDNS_BYPASS_TOKEN(_FILE). Empty means use the state file.
	Token       string
	BypassToken string

	// Where settings and state were read from
	ConfigPath string
	StatePath  string
}
