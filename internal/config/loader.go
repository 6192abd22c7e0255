package config

import (
	"errors"
	"io/fs"
)

// Environment variables that locate the two input files.
const (
	EnvConfigPath = EnvPrefix + "CONFIG"
	EnvStatePath  = EnvPrefix + "ENV_FILE"
)

// DefaultStatePath is the state file read when WAGDNS_ENV_FILE is unset.
const DefaultStatePath = ".env"

// Load builds the run configuration: defaults, then the config file, then
// WAGDNS_* environment overrides. Every problem found is reported together
// in a single *ValidationError.
func Load() (*Config, error) {
	var errs []string

	path := getEnv(EnvConfigPath)
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	values, fileErrs := loadFromFile(path, explicit)
	errs = append(errs, fileErrs...)

	mergeEnvOverrides(values)

	cfg, cfgErrs := fromValues(values)
	errs = append(errs, cfgErrs...)

	cfg.ConfigPath = path
	cfg.StatePath = getEnv(EnvStatePath)
	if cfg.StatePath == "" {
		cfg.StatePath = DefaultStatePath
	}

	cfg.Token = getEnvWithFileFallback("TOKEN")
	cfg.BypassToken = getEnvWithFileFallback("BYPASS_TOKEN")

	errs = append(errs, validateConfig(cfg)...)

	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	return cfg, nil
}

// loadFromFile reads the settings file. A missing file is only an error
// when its path was given explicitly; otherwise settings come from the
// environment alone.
func loadFromFile(path string, explicit bool) (map[string]string, []string) {
	values, err := LoadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return map[string]string{}, []string{"config file: " + err.Error()}
	}

	return values, nil
}

// mergeEnvOverrides replaces file values with WAGDNS_<KEY> environment
// variables. Environment variables always take precedence over the file.
func mergeEnvOverrides(values map[string]string) {
	for _, key := range Keys {
		if v := getEnv(EnvPrefix + key); v != "" {
			values[key] = v
		}
	}
}
