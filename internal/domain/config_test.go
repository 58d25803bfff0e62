package domain

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewSingleServiceConfig(t *testing.T) {
	config, err := NewSingleServiceConfig("blog", "key-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Mode() != SingleService {
		t.Errorf("expected single service mode, got %v", config.Mode())
	}
	if config.Default().ID != "blog" {
		t.Errorf("expected default service 'blog', got %q", config.Default().ID)
	}
	if len(config.Services()) != 1 {
		t.Errorf("expected 1 service, got %d", len(config.Services()))
	}
}

func TestNewSingleServiceConfigMissingCredentials(t *testing.T) {
	tests := []struct {
		name      string
		serviceID string
		apiKey    string
	}{
		{"missing service id", "", "key"},
		{"missing api key", "blog", ""},
		{"missing both", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSingleServiceConfig(tt.serviceID, tt.apiKey)
			var confErr *ConfigurationError
			if !errors.As(err, &confErr) {
				t.Errorf("expected ConfigurationError, got %v", err)
			}
		})
	}
}

func TestNewMultiServiceConfig(t *testing.T) {
	config, err := NewMultiServiceConfig([]ServiceConfig{
		{ID: "blog", APIKey: "key-a"},
		{ID: "shop", APIKey: "key-b"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Mode() != MultiService {
		t.Errorf("expected multi service mode, got %v", config.Mode())
	}
	if config.Default().ID != "blog" {
		t.Errorf("expected first service as default, got %q", config.Default().ID)
	}

	ids := config.ServiceIDs()
	if len(ids) != 2 || ids[0] != "blog" || ids[1] != "shop" {
		t.Errorf("unexpected service ids: %v", ids)
	}
}

func TestNewMultiServiceConfigValidation(t *testing.T) {
	tests := []struct {
		name     string
		services []ServiceConfig
	}{
		{"empty list", nil},
		{"missing id", []ServiceConfig{{APIKey: "key"}}},
		{"missing api key", []ServiceConfig{{ID: "blog"}}},
		{"duplicate ids", []ServiceConfig{
			{ID: "blog", APIKey: "key-a"},
			{ID: "blog", APIKey: "key-b"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMultiServiceConfig(tt.services)
			var confErr *ConfigurationError
			if !errors.As(err, &confErr) {
				t.Errorf("expected ConfigurationError, got %v", err)
			}
		})
	}
}

func TestModeString(t *testing.T) {
	if SingleService.String() != "single" {
		t.Errorf("expected 'single', got %q", SingleService.String())
	}
	if MultiService.String() != "multi" {
		t.Errorf("expected 'multi', got %q", MultiService.String())
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("MICROCMS_SERVICE_ID", "env-blog")
	t.Setenv("MICROCMS_API_KEY", "env-key")
	t.Setenv("MICROCMS_SERVICES", "")

	config, err := LoadConfig(LoadOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Mode() != SingleService {
		t.Errorf("expected single service mode, got %v", config.Mode())
	}
	if config.Default().ID != "env-blog" {
		t.Errorf("expected 'env-blog', got %q", config.Default().ID)
	}
}

func TestLoadConfigFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("MICROCMS_SERVICE_ID", "env-blog")
	t.Setenv("MICROCMS_API_KEY", "env-key")
	t.Setenv("MICROCMS_SERVICES", "")

	config, err := LoadConfig(LoadOptions{ServiceID: "flag-blog", APIKey: "flag-key"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Default().ID != "flag-blog" {
		t.Errorf("expected flag value to win, got %q", config.Default().ID)
	}
	if config.Default().APIKey != "flag-key" {
		t.Errorf("expected flag value to win, got %q", config.Default().APIKey)
	}
}

func TestLoadConfigMultiServiceEnvTakesPriority(t *testing.T) {
	t.Setenv("MICROCMS_SERVICE_ID", "env-blog")
	t.Setenv("MICROCMS_API_KEY", "env-key")
	t.Setenv("MICROCMS_SERVICES", `[{"id":"blog","apiKey":"key-a"},{"id":"shop","apiKey":"key-b"}]`)

	config, err := LoadConfig(LoadOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Mode() != MultiService {
		t.Errorf("expected multi service mode, got %v", config.Mode())
	}
	if len(config.Services()) != 2 {
		t.Errorf("expected 2 services, got %d", len(config.Services()))
	}
}

func TestLoadConfigInvalidServicesJSON(t *testing.T) {
	t.Setenv("MICROCMS_SERVICE_ID", "")
	t.Setenv("MICROCMS_API_KEY", "")
	t.Setenv("MICROCMS_SERVICES", "not-json")

	_, err := LoadConfig(LoadOptions{})
	var confErr *ConfigurationError
	if !errors.As(err, &confErr) {
		t.Errorf("expected ConfigurationError, got %v", err)
	}
}

func TestLoadConfigMissingCredentials(t *testing.T) {
	t.Setenv("MICROCMS_SERVICE_ID", "")
	t.Setenv("MICROCMS_API_KEY", "")
	t.Setenv("MICROCMS_SERVICES", "")

	_, err := LoadConfig(LoadOptions{})
	var confErr *ConfigurationError
	if !errors.As(err, &confErr) {
		t.Errorf("expected ConfigurationError, got %v", err)
	}
}

func TestLoadConfigFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `services:
  - id: blog
    apiKey: key-a
  - id: shop
    apiKey: key-b
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	config, err := LoadConfig(LoadOptions{ConfigPath: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Mode() != MultiService {
		t.Errorf("expected multi service mode, got %v", config.Mode())
	}

	ids := config.ServiceIDs()
	if len(ids) != 2 || ids[0] != "blog" || ids[1] != "shop" {
		t.Errorf("unexpected service ids: %v", ids)
	}
}

func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := LoadConfig(LoadOptions{ConfigPath: "/nonexistent/config.yaml"})
	var confErr *ConfigurationError
	if !errors.As(err, &confErr) {
		t.Errorf("expected ConfigurationError, got %v", err)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("services: [broken"), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	_, err := LoadConfig(LoadOptions{ConfigPath: path})
	var confErr *ConfigurationError
	if !errors.As(err, &confErr) {
		t.Errorf("expected ConfigurationError, got %v", err)
	}
}
