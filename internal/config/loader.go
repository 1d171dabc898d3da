package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads a YAML file over Defaults(). An empty path returns the defaults.
// Keys absent from the file keep their default value.
func Load(configPath string) (*Config, error) {
	cfg := Defaults()
	if configPath == "" {
		return cfg, validate(cfg)
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path passed to -config", absPath)
	}

	if err := Parse(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", absPath, err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Parse decodes YAML data into cfg after environment interpolation.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func Parse(data []byte, cfg *Config) error {
	interpolated := interpolateEnv(string(data))

	dec := yaml.NewDecoder(strings.NewReader(interpolated))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		// An empty document is a valid "use the defaults" file.
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// LockFile returns the PID lock path, defaulting to a file next to the error dir.
func (c *Config) LockFile() string {
	if c.LockPath != "" {
		return c.LockPath
	}
	return filepath.Join(filepath.Dir(filepath.Clean(c.Output.ErrorDir)), "rotbench-runner.lock")
}

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf.Bytes(), nil
}

func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		// If not found, leave the placeholder (will fail validation)
		return match
	})
}

// validate performs basic validation on the configuration.
func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Binary) == "" {
		return fmt.Errorf("binary is required")
	}
	if cfg.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1 (got %d)", cfg.Parallelism)
	}
	if cfg.ILPThreads < 1 {
		return fmt.Errorf("ilp_threads must be at least 1 (got %d)", cfg.ILPThreads)
	}
	if cfg.Iterations < 1 {
		return fmt.Errorf("iterations must be at least 1 (got %d)", cfg.Iterations)
	}
	if len(cfg.KValues) == 0 {
		return fmt.Errorf("k_values must not be empty")
	}
	seenK := make(map[int]bool, len(cfg.KValues))
	for _, k := range cfg.KValues {
		if seenK[k] {
			return fmt.Errorf("k_values contains %d more than once", k)
		}
		seenK[k] = true
	}

	if len(cfg.Maps) == 0 {
		return fmt.Errorf("maps must not be empty")
	}
	for i, m := range cfg.Maps {
		if m.Map == "" {
			return fmt.Errorf("maps[%d].map is required", i)
		}
		if m.PMap == "" {
			return fmt.Errorf("maps[%d].pmap is required", i)
		}
	}

	dirs := map[string]string{
		"output.csv_dir":      cfg.Output.CSVDir,
		"output.graph_dir":    cfg.Output.GraphDir,
		"output.interval_dir": cfg.Output.IntervalDir,
		"output.error_dir":    cfg.Output.ErrorDir,
	}
	for _, key := range []string{"output.csv_dir", "output.graph_dir", "output.interval_dir", "output.error_dir"} {
		if dirs[key] == "" {
			return fmt.Errorf("%s is required", key)
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("log_level must be one of: debug, info, warn, error (got %q)", cfg.LogLevel)
	}

	for field, value := range map[string]string{
		"binary":    cfg.Binary,
		"lock_path": cfg.LockPath,
	} {
		if m := envVarPattern.FindStringSubmatch(value); len(m) > 1 {
			return fmt.Errorf("%s: environment variable ${%s} is not set", field, m[1])
		}
	}
	for key, value := range dirs {
		if m := envVarPattern.FindStringSubmatch(value); len(m) > 1 {
			return fmt.Errorf("%s: environment variable ${%s} is not set", key, m[1])
		}
	}
	for i, mp := range cfg.Maps {
		for _, v := range []string{mp.Map, mp.PMap} {
			if m := envVarPattern.FindStringSubmatch(v); len(m) > 1 {
				return fmt.Errorf("maps[%d]: environment variable ${%s} is not set", i, m[1])
			}
		}
	}
	return nil
}
