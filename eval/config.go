package eval

import (
	"log/slog"
)

// Config is threaded unchanged through every evaluation step.
//
// A nil *Config is valid and means: default registry, no interceptor, the
// default logger and AssignDefault.
type Config struct {
	// Interceptor observes every enter and exit event.
	Interceptor Interceptor
	// Interpreters overrides the handler registry.
	Interpreters *Registry
	Logger       *slog.Logger
	// UndeclaredAssignment decides what assignment to an unknown name does.
	UndeclaredAssignment AssignPolicy
	// ScriptID identifies the script being evaluated. Stamped by the entry
	// point and copied into every Evaluation.
	ScriptID string
}

// Merge returns a new config with the non-zero fields of over layered on
// top of cfg. Either side may be nil.
func (cfg *Config) Merge(over *Config) *Config {
	merged := Config{}
	if cfg != nil {
		merged = *cfg
	}
	if over == nil {
		return &merged
	}
	if over.Interceptor != nil {
		merged.Interceptor = over.Interceptor
	}
	if over.Interpreters != nil {
		merged.Interpreters = over.Interpreters
	}
	if over.Logger != nil {
		merged.Logger = over.Logger
	}
	if over.UndeclaredAssignment != AssignDefault {
		merged.UndeclaredAssignment = over.UndeclaredAssignment
	}
	if over.ScriptID != "" {
		merged.ScriptID = over.ScriptID
	}
	return &merged
}

// WithScriptID returns a copy of cfg stamped with id.
func (cfg *Config) WithScriptID(id string) *Config {
	return cfg.Merge(&Config{ScriptID: id})
}

func (cfg *Config) registry() *Registry {
	if cfg == nil || cfg.Interpreters == nil {
		return BaseInterpreters()
	}
	return cfg.Interpreters
}

func (cfg *Config) logger() *slog.Logger {
	if cfg == nil || cfg.Logger == nil {
		return slog.Default()
	}
	return cfg.Logger
}

func (cfg *Config) assignPolicy() AssignPolicy {
	if cfg == nil {
		return AssignDefault
	}
	return cfg.UndeclaredAssignment
}

func (cfg *Config) scriptID() string {
	if cfg == nil {
		return ""
	}
	return cfg.ScriptID
}
