package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := defaults()

	if cfg.Server.Port != 4600 {
		t.Errorf("Port = %d, want 4600", cfg.Server.Port)
	}
	if cfg.DocIntel.APIVersion != "2024-11-30" {
		t.Errorf("APIVersion = %q", cfg.DocIntel.APIVersion)
	}
	if cfg.Chat.BaseURL != "https://openrouter.ai/api/v1" {
		t.Errorf("BaseURL = %q", cfg.Chat.BaseURL)
	}
	if cfg.Chat.Model != "openai/gpt-4o-mini" {
		t.Errorf("Model = %q", cfg.Chat.Model)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Level = %q", cfg.Log.Level)
	}
	if cfg.Storage.DataDir == "" {
		t.Error("DataDir is empty")
	}
}

func TestLoadWith_FileBackend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{
		"server.port": 9999,
		"docintel.endpoint": "https://example.cognitiveservices.azure.com",
		"docintel.api_key": "file-key",
		"chat.model": "anthropic/claude-3-haiku"
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfg, err := loadWith(newFileBackend(path))
	if err != nil {
		t.Fatalf("loadWith() error = %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.DocIntel.Endpoint != "https://example.cognitiveservices.azure.com" {
		t.Errorf("Endpoint = %q", cfg.DocIntel.Endpoint)
	}
	if cfg.DocIntel.APIKey != "file-key" {
		t.Errorf("APIKey = %q", cfg.DocIntel.APIKey)
	}
	if cfg.Chat.Model != "anthropic/claude-3-haiku" {
		t.Errorf("Model = %q", cfg.Chat.Model)
	}
	// Untouched keys keep their defaults.
	if cfg.Chat.BaseURL != "https://openrouter.ai/api/v1" {
		t.Errorf("BaseURL = %q, want default", cfg.Chat.BaseURL)
	}
}

func TestLoadWith_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadWith(newFileBackend(filepath.Join(t.TempDir(), "nope.json")))
	if err != nil {
		t.Fatalf("loadWith() error = %v", err)
	}
	if cfg.Server.Port != 4600 {
		t.Errorf("Port = %d, want default", cfg.Server.Port)
	}
}

func TestLoadWith_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	os.WriteFile(path, []byte(`{"server.port": 1234, "chat.api_key": "from-file"}`), 0o644)

	t.Setenv("FINDOC_SERVER_PORT", "5678")
	t.Setenv("FINDOC_CHAT_API_KEY", "from-env")

	cfg, err := loadWith(newFileBackend(path))
	if err != nil {
		t.Fatalf("loadWith() error = %v", err)
	}
	if cfg.Server.Port != 5678 {
		t.Errorf("Port = %d, want env override 5678", cfg.Server.Port)
	}
	if cfg.Chat.APIKey != "from-env" {
		t.Errorf("APIKey = %q, want env override", cfg.Chat.APIKey)
	}
}

func TestLoadWith_BadPortEnvIgnored(t *testing.T) {
	t.Setenv("FINDOC_SERVER_PORT", "not-a-number")

	cfg, err := loadWith(newFileBackend(filepath.Join(t.TempDir(), "nope.json")))
	if err != nil {
		t.Fatalf("loadWith() error = %v", err)
	}
	if cfg.Server.Port != 4600 {
		t.Errorf("Port = %d, want default when env value is invalid", cfg.Server.Port)
	}
}

func TestFileBackend_IntFromJSONNumber(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	os.WriteFile(path, []byte(`{"server.port": 4601.5}`), 0o644)

	if _, err := loadWith(newFileBackend(path)); err == nil {
		t.Error("loadWith() expected error for fractional port value")
	}
}

func TestValidate(t *testing.T) {
	cfg := defaults()
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "endpoint") {
		t.Errorf("Validate() = %v, want endpoint error", err)
	}

	cfg.DocIntel.Endpoint = "https://example.cognitiveservices.azure.com"
	err = cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "API key") {
		t.Errorf("Validate() = %v, want API key error", err)
	}

	cfg.DocIntel.APIKey = "k"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	// Chat credentials are optional.
	if cfg.Chat.APIKey != "" {
		t.Error("chat key should be empty by default")
	}
}
