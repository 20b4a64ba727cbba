// Package config loads and validates the runtime configuration shared by
// cmd/persuade and any other embedder of this module: which provider
// adapters exist and how to build them, the orchestrator's default retry
// behavior, session persistence, and logging.
package config

import (
	"time"

	"github.com/go-playground/validator/v10"

	"persuader/internal/provider"
)

// AppConfig is the root configuration tree, normally loaded from a single
// YAML file plus environment overrides.
type AppConfig struct {
	Orchestrator OrchestratorConfig       `yaml:"orchestrator" validate:"required"`
	Providers    map[string]ProviderConfig `yaml:"providers" validate:"required,min=1,dive"`
	Session      SessionConfig            `yaml:"session"`
	Logging      LoggingConfig            `yaml:"logging"`
}

// OrchestratorConfig holds orchestrator defaults. DefaultProvider and
// Retries are read by persuader.Build and cmd/persuade; BackoffInitial and
// BackoffMax are loaded and validated but not read by the orchestrator,
// whose retry backoff is fixed at 100ms doubling up to a 5s cap.
type OrchestratorConfig struct {
	DefaultProvider string        `yaml:"default_provider" validate:"required"`
	Retries         int           `yaml:"retries" validate:"gte=0"`
	BackoffInitial  time.Duration `yaml:"backoff_initial" validate:"gte=0"`
	BackoffMax      time.Duration `yaml:"backoff_max" validate:"gte=0"`
}

// ProviderConfig describes one named adapter registration; the remaining
// fields mirror provider.Config. provider.Factory picks the concrete adapter
// from the registration name (claude, openai, cli or memory), not from
// Type: Type is validated here and is not passed to the factory.
type ProviderConfig struct {
	Type        string            `yaml:"type" validate:"required,oneof=claude openai cli memory"`
	APIKey      string            `yaml:"api_key" validate:"required_if=Type claude,required_if=Type openai"`
	Endpoint    string            `yaml:"endpoint"`
	ModelName   string            `yaml:"model_name"`
	Command     string            `yaml:"command" validate:"required_if=Type cli"`
	Args        []string          `yaml:"args"`
	Parameters  map[string]string `yaml:"parameters,omitempty"`
}

// SessionConfig controls the Session Manager's persistence and eviction.
type SessionConfig struct {
	DefaultTTL      time.Duration `yaml:"default_ttl"`
	LRUCapacity     int           `yaml:"lru_capacity" validate:"gte=0"`
	PersistencePath string        `yaml:"persistence_path"` // empty disables disk persistence
}

// LoggingConfig selects the zerolog level plog.New is built with.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// Validate runs go-playground/validator's struct-tag checks over the
// whole tree. Kept as a method (rather than calling validator.New()
// inline at every call site) so the Loader and any test fixture share one
// validation path.
func (c *AppConfig) Validate() error {
	return validator.New().Struct(c)
}

// ToFactoryConfig converts one ProviderConfig into the provider.Config
// shape provider.Factory.RegisterProvider expects.
func (p ProviderConfig) ToFactoryConfig() *provider.Config {
	params := make(map[string]interface{}, len(p.Parameters))
	for k, v := range p.Parameters {
		params[k] = v
	}
	return &provider.Config{
		APIKey:     p.APIKey,
		Endpoint:   p.Endpoint,
		ModelName:  p.ModelName,
		Command:    p.Command,
		Args:       p.Args,
		Parameters: params,
	}
}

// Default returns a minimal, valid configuration using the CLI subprocess
// adapter, so a fresh checkout can run cmd/persuade without an API key.
func Default() *AppConfig {
	return &AppConfig{
		Orchestrator: OrchestratorConfig{
			DefaultProvider: "cli",
			Retries:         3,
			BackoffInitial:  100 * time.Millisecond,
			BackoffMax:      5 * time.Second,
		},
		Providers: map[string]ProviderConfig{
			"cli": {Type: "cli", Command: "claude", Args: []string{}},
		},
		Session: SessionConfig{
			DefaultTTL:  30 * 24 * time.Hour,
			LRUCapacity: 0,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
