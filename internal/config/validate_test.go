package config

import (
	"errors"
	"strings"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	single := &ValidationError{Errors: []string{"RECORD_NAME: is required"}}
	if got := single.Error(); got != "configuration error: RECORD_NAME: is required" {
		t.Errorf("single error = %q", got)
	}

	multi := &ValidationError{Errors: []string{"a", "b"}}
	if got := multi.Error(); got != "configuration errors:\n  - a\n  - b" {
		t.Errorf("multi error = %q", got)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		errMatch string
	}{
		{
			name: "valid",
			cfg:  Config{RecordName: "home", IPSource: "http"},
		},
		{
			name:     "missing record name",
			cfg:      Config{IPSource: "http"},
			errMatch: KeyRecordName,
		},
		{
			name:     "dns settings with http source",
			cfg:      Config{RecordName: "home", IPSource: "http", IPDNSServer: "1.1.1.1:53"},
			errMatch: "only used with",
		},
		{
			name: "dns settings with dns source",
			cfg:  Config{RecordName: "home", IPSource: "dns", IPDNSServer: "1.1.1.1:53"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validateConfig(&tt.cfg)
			if tt.errMatch == "" {
				if len(errs) != 0 {
					t.Errorf("unexpected errors: %v", errs)
				}
				return
			}
			if len(errs) != 1 || !strings.Contains(errs[0], tt.errMatch) {
				t.Errorf("expected one error containing %q, got %v", tt.errMatch, errs)
			}
		})
	}
}

func TestCheckCredentials(t *testing.T) {
	tests := []struct {
		name         string
		updateAccess bool
		creds        Credentials
		wantErrs     int
	}{
		{
			name:     "dns only with token",
			creds:    Credentials{Token: "t"},
			wantErrs: 0,
		},
		{
			name:     "dns only without token",
			creds:    Credentials{},
			wantErrs: 1,
		},
		{
			name:         "access without bypass token or account",
			updateAccess: true,
			creds:        Credentials{Token: "t"},
			wantErrs:     2,
		},
		{
			name:         "access fully configured",
			updateAccess: true,
			creds:        Credentials{Token: "t", BypassToken: "b", AccountID: "acc"},
			wantErrs:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{UpdateAccess: tt.updateAccess}
			err := cfg.CheckCredentials(tt.creds)

			if tt.wantErrs == 0 {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if len(verr.Errors) != tt.wantErrs {
				t.Errorf("expected %d errors, got %v", tt.wantErrs, verr.Errors)
			}
		})
	}
}
