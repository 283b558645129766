// Package config loads emvctl's optional session configuration file.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the optional --config file: reader selection and session
// options that would otherwise have to be repeated on every invocation.
type Config struct {
	Reader  string        `yaml:"reader"`
	Session SessionConfig `yaml:"session"`
}

// SessionConfig mirrors emv.SessionOptions in a form suitable for YAML.
type SessionConfig struct {
	// Class is the interindustry CLA byte SELECT/READ RECORD/VERIFY use.
	// 0 (the YAML-absent default) is the standard first-interindustry CLA.
	Class byte `yaml:"class"`
	// Lenient is copied into emv.SessionOptions.Lenient; no pkg/emv command
	// method reads that flag, so it does not change how card responses parse.
	Lenient bool `yaml:"lenient"`
}

// Load reads and validates a YAML config file at path.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects a config carrying the reserved CLA byte 0xFF.
func (c *Config) Validate() error {
	if c.Session.Class == 0xFF {
		return fmt.Errorf("config.session.class: 0xFF is reserved and cannot be used as a CLA byte")
	}
	return nil
}

// ResolveReader picks the reader name to connect to: an explicit --reader
// flag wins, then the config file's reader, then the empty string (meaning
// "use the first reader the system reports").
func ResolveReader(flagValue string, cfg *Config) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	if cfg != nil {
		return cfg.Reader
	}
	return ""
}
