package config

import (
	"strings"
	"testing"
	"time"
)

func TestFromValues_Defaults(t *testing.T) {
	cfg, errs := fromValues(map[string]string{KeyRecordName: "home.example.com"})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.LogFormat != DefaultLogFormat {
		t.Errorf("LogFormat = %q, want %q", cfg.LogFormat, DefaultLogFormat)
	}
	if cfg.IPSource != DefaultIPSource {
		t.Errorf("IPSource = %q, want %q", cfg.IPSource, DefaultIPSource)
	}
	if cfg.HTTPTimeout != DefaultHTTPTimeout {
		t.Errorf("HTTPTimeout = %v, want %v", cfg.HTTPTimeout, DefaultHTTPTimeout)
	}
	if cfg.UpdateAccess || cfg.ForceUpdate || cfg.DryRun {
		t.Errorf("expected all switches off, got %+v", cfg)
	}
}

func TestFromValues_UpdateAccessIsStrict(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"TRUE", false},
		{"True", false},
		{"1", false},
		{"yes", false},
		{" true", false},
		{"false", false},
		{"", false},
	}

	for _, tc := range tests {
		cfg, _ := fromValues(map[string]string{KeyRecordName: "r", KeyUpdateAccess: tc.value})
		if cfg.UpdateAccess != tc.want {
			t.Errorf("UPDATE_ACCESS=%q: UpdateAccess = %v, want %v", tc.value, cfg.UpdateAccess, tc.want)
		}
	}
}

func TestFromValues_Parsing(t *testing.T) {
	cfg, errs := fromValues(map[string]string{
		KeyRecordName:  "  home.example.com ",
		KeyLogLevel:    "WARN",
		KeyLogFormat:   "JSON",
		KeyForceUpdate: "yes",
		KeyDryRun:      "1",
		KeyIPSource:    "DNS",
		KeyAPIEndpoint: "http://localhost:8080/client/v4/",
		KeyHTTPTimeout: "45s",
	})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if cfg.RecordName != "home.example.com" {
		t.Errorf("RecordName = %q", cfg.RecordName)
	}
	if cfg.LogLevel != "warn" || cfg.LogFormat != "json" {
		t.Errorf("log settings not normalized: %q %q", cfg.LogLevel, cfg.LogFormat)
	}
	if !cfg.ForceUpdate || !cfg.DryRun {
		t.Errorf("expected ForceUpdate and DryRun, got %v %v", cfg.ForceUpdate, cfg.DryRun)
	}
	if cfg.IPSource != "dns" {
		t.Errorf("IPSource = %q, want dns", cfg.IPSource)
	}
	if cfg.APIEndpoint != "http://localhost:8080/client/v4" {
		t.Errorf("APIEndpoint = %q, trailing slash should be trimmed", cfg.APIEndpoint)
	}
	if cfg.HTTPTimeout != 45*time.Second {
		t.Errorf("HTTPTimeout = %v, want 45s", cfg.HTTPTimeout)
	}
}

func TestFromValues_Errors(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		errMatch string
	}{
		{"bad log level", KeyLogLevel, "verbose", KeyLogLevel},
		{"bad log format", KeyLogFormat, "xml", KeyLogFormat},
		{"bad ip source", KeyIPSource, "stun", KeyIPSource},
		{"bad timeout", KeyHTTPTimeout, "soon", KeyHTTPTimeout},
		{"short timeout", KeyHTTPTimeout, "10ms", "at least 1s"},
		{"relative endpoint", KeyAPIEndpoint, "/client/v4", KeyAPIEndpoint},
		{"bad echo url", KeyIPEchoURL, "icanhazip", KeyIPEchoURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := fromValues(map[string]string{KeyRecordName: "r", tt.key: tt.value})
			if len(errs) != 1 {
				t.Fatalf("expected 1 error, got %v", errs)
			}
			if !strings.Contains(errs[0], tt.errMatch) {
				t.Errorf("error %q should contain %q", errs[0], tt.errMatch)
			}
		})
	}
}
