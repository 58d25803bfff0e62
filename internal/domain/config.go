package domain

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Mode selects between single-service and multi-service operation.
// The mode is fixed once configuration is loaded and never re-derived.
type Mode int

const (
	// SingleService exposes exactly one implicit service; tool calls may
	// omit serviceId and are routed to that service.
	SingleService Mode = iota
	// MultiService exposes an explicit list of services; tool calls must
	// name the target service via serviceId.
	MultiService
)

// String returns the string representation of Mode.
func (m Mode) String() string {
	switch m {
	case SingleService:
		return "single"
	case MultiService:
		return "multi"
	default:
		return "unknown"
	}
}

// ServiceConfig identifies one microCMS service (tenant). The ID doubles as
// the service domain component of the API host names.
type ServiceConfig struct {
	ID     string `json:"id" yaml:"id"`
	APIKey string `json:"apiKey" yaml:"apiKey"`
}

// AppConfig is the resolved server configuration. Exactly one mode is active;
// the constructors enforce the variant invariants, so an AppConfig obtained
// from them is always well-formed. Immutable after construction.
type AppConfig struct {
	mode     Mode
	services []ServiceConfig
}

// NewSingleServiceConfig builds a single-service configuration.
func NewSingleServiceConfig(serviceID, apiKey string) (*AppConfig, error) {
	if serviceID == "" || apiKey == "" {
		return nil, &ConfigurationError{Reason: "both a service id and an API key are required in single-service mode"}
	}
	return &AppConfig{
		mode:     SingleService,
		services: []ServiceConfig{{ID: serviceID, APIKey: apiKey}},
	}, nil
}

// NewMultiServiceConfig builds a multi-service configuration.
// Duplicate service ids are a hard configuration error.
func NewMultiServiceConfig(services []ServiceConfig) (*AppConfig, error) {
	if len(services) == 0 {
		return nil, &ConfigurationError{Reason: "at least one service must be configured in multi-service mode"}
	}

	seen := make(map[string]bool, len(services))
	for i, svc := range services {
		if svc.ID == "" {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("service at index %d is missing an id", i)}
		}
		if svc.APIKey == "" {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("service %q is missing an apiKey", svc.ID)}
		}
		if seen[svc.ID] {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("duplicate service id %q", svc.ID)}
		}
		seen[svc.ID] = true
	}

	copied := make([]ServiceConfig, len(services))
	copy(copied, services)

	return &AppConfig{
		mode:     MultiService,
		services: copied,
	}, nil
}

// Mode returns the active configuration mode.
func (c *AppConfig) Mode() Mode {
	return c.mode
}

// Services returns the configured services in declaration order.
func (c *AppConfig) Services() []ServiceConfig {
	return c.services
}

// Default returns the fallback service: the single service in single mode,
// or the first declared service otherwise.
func (c *AppConfig) Default() ServiceConfig {
	return c.services[0]
}

// ServiceIDs returns all configured service ids in declaration order.
func (c *AppConfig) ServiceIDs() []string {
	ids := make([]string, len(c.services))
	for i, svc := range c.services {
		ids[i] = svc.ID
	}
	return ids
}

// LoadOptions carries command-line overrides into LoadConfig.
type LoadOptions struct {
	// ConfigPath points to an optional YAML file declaring services.
	ConfigPath string
	// ServiceID and APIKey override the single-service environment variables.
	ServiceID string
	APIKey    string
}

// envSettings mirrors the environment surface of the server.
type envSettings struct {
	ServiceID string `envconfig:"MICROCMS_SERVICE_ID"`
	APIKey    string `envconfig:"MICROCMS_API_KEY"`
	// Services is a JSON array of {id, apiKey} objects enabling multi-service mode.
	Services string `envconfig:"MICROCMS_SERVICES"`
}

// configFile is the YAML shape of the optional --config file.
type configFile struct {
	Services []ServiceConfig `yaml:"services"`
}

// LoadConfig resolves the application configuration. Resolution order:
// an explicit YAML config file, then the MICROCMS_SERVICES environment
// variable (JSON array), then single-service credentials from flags or
// environment. Multi-service configuration takes priority over single
// when both are present.
func LoadConfig(opts LoadOptions) (*AppConfig, error) {
	if opts.ConfigPath != "" {
		return loadConfigFile(opts.ConfigPath)
	}

	var env envSettings
	if err := envconfig.Process("", &env); err != nil {
		return nil, &ConfigurationError{Reason: "failed to read environment", Err: err}
	}

	if env.Services != "" {
		var services []ServiceConfig
		if err := json.Unmarshal([]byte(env.Services), &services); err != nil {
			return nil, &ConfigurationError{Reason: "MICROCMS_SERVICES is not a valid JSON array of {id, apiKey} objects", Err: err}
		}
		return NewMultiServiceConfig(services)
	}

	serviceID := env.ServiceID
	if opts.ServiceID != "" {
		serviceID = opts.ServiceID
	}
	apiKey := env.APIKey
	if opts.APIKey != "" {
		apiKey = opts.APIKey
	}

	if serviceID == "" || apiKey == "" {
		return nil, &ConfigurationError{
			Reason: "microCMS credentials are required: set MICROCMS_SERVICE_ID and MICROCMS_API_KEY " +
				"(or pass -service-id and -api-key), or set MICROCMS_SERVICES for multi-service mode",
		}
	}

	return NewSingleServiceConfig(serviceID, apiKey)
}

// loadConfigFile reads a multi-service YAML configuration file.
func loadConfigFile(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("configuration file not found: %s", path)}
		}
		return nil, &ConfigurationError{Reason: "failed to read configuration file", Err: err}
	}

	var file configFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &ConfigurationError{Reason: "invalid YAML syntax in configuration file", Err: err}
	}

	return NewMultiServiceConfig(file.Services)
}
