package provider

import (
	"fmt"
)

// Config carries the settings needed to construct one named adapter,
// generalized from the teacher's ProviderFactory/ProviderConfig pair to
// cover the CLI adapter's command+args shape alongside the HTTP adapters'
// key+endpoint shape.
type Config struct {
	APIKey     string
	Endpoint   string
	ModelName  string
	Command    string
	Args       []string
	Parameters map[string]interface{}
}

// Factory builds registered Adapters by name, grounded on the teacher's
// ProviderFactory (internal/engine/providers/factory.go).
type Factory struct {
	configs map[string]*Config
}

func NewFactory() *Factory {
	return &Factory{configs: make(map[string]*Config)}
}

// RegisterProvider stores the configuration a later CreateProvider call
// will use to build that named adapter.
func (f *Factory) RegisterProvider(name string, config *Config) error {
	if name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}
	if config == nil {
		return fmt.Errorf("provider config cannot be nil")
	}
	f.configs[name] = config
	return nil
}

// CreateProvider builds the named Adapter from its registered Config.
func (f *Factory) CreateProvider(name string) (Adapter, error) {
	config, exists := f.configs[name]
	if !exists {
		return nil, fmt.Errorf("unregistered provider: %s", name)
	}

	switch name {
	case "claude":
		if config.APIKey == "" {
			return nil, fmt.Errorf("API key is required for provider claude")
		}
		return NewClaudeAdapter(config.APIKey, config.Endpoint, config.ModelName), nil
	case "openai":
		if config.APIKey == "" {
			return nil, fmt.Errorf("API key is required for provider openai")
		}
		return NewOpenAIAdapter(config.APIKey, config.Endpoint, config.ModelName), nil
	case "cli":
		if config.Command == "" {
			return nil, fmt.Errorf("command is required for provider cli")
		}
		return NewCLIAdapter(config.Command, config.Args...), nil
	case "memory":
		// No scripted turns: useful for --dry-run or tests that only
		// exercise wiring, never an actual SendPrompt call.
		return NewMemoryAdapter(name), nil
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", name)
	}
}

// GetSupportedProviders returns the registered provider names.
func (f *Factory) GetSupportedProviders() []string {
	supported := []string{"claude", "openai", "cli", "memory"}
	result := make([]string, 0, len(supported))
	for _, name := range supported {
		if _, ok := f.configs[name]; ok {
			result = append(result, name)
		}
	}
	return result
}

// DefaultConfig returns sane defaults for a provider type, with the API key
// left blank for the caller to fill in from environment or config file.
func DefaultConfig(providerType string) *Config {
	switch providerType {
	case "claude":
		return &Config{
			Endpoint:  "",
			ModelName: "claude-3-5-sonnet-20241022",
			Parameters: map[string]interface{}{
				"max_tokens":  4096,
				"temperature": 0.1,
			},
		}
	case "openai":
		return &Config{
			Endpoint:  "https://api.openai.com/v1/chat/completions",
			ModelName: "gpt-4o",
			Parameters: map[string]interface{}{
				"max_tokens":  4096,
				"temperature": 0.1,
			},
		}
	case "cli":
		return &Config{Command: "claude", Args: []string{}}
	default:
		return nil
	}
}
