package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/xmorgan/metaes/eval"
	"github.com/xmorgan/metaes/trace"
)

// Config is the YAML run configuration. Command line flags override it.
type Config struct {
	Trace                bool   `yaml:"trace"`
	Color                string `yaml:"color"`
	Verbose              bool   `yaml:"verbose"`
	LogLevel             string `yaml:"log_level"`
	UndeclaredAssignment string `yaml:"undeclared_assignment"`
	DumpAST              bool   `yaml:"dump_ast"`
}

func defaultConfig() Config {
	return Config{Color: "auto", LogLevel: "info", UndeclaredAssignment: "error"}
}

// loadConfig reads path over the defaults. An empty path yields the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if _, err := trace.ParseColorMode(c.Color); err != nil {
		return err
	}
	if _, err := eval.ParseAssignPolicy(c.UndeclaredAssignment); err != nil {
		return err
	}
	_, err := c.level()
	return err
}

func (c Config) level() (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(strings.ToUpper(c.LogLevel)))
	return l, err
}
