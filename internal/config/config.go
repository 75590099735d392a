// Package config loads layered application configuration: built-in defaults,
// an optional .env file, a JSON config file, then FINDOC_* environment
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	DocIntel DocIntelConfig
	Chat     ChatConfig
	Storage  StorageConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port int
}

// DocIntelConfig points at the document-understanding service.
type DocIntelConfig struct {
	Endpoint   string
	APIKey     string
	APIVersion string
}

// ChatConfig points at the conversational AI service. The key is optional;
// without it chat degrades to error-text answers instead of failing startup.
type ChatConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4600,
		},
		DocIntel: DocIntelConfig{
			APIVersion: "2024-11-30",
		},
		Chat: ChatConfig{
			BaseURL: "https://openrouter.ai/api/v1",
			Model:   "openai/gpt-4o-mini",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "findoc-data"
		}
	}
	return filepath.Join(dir, "findoc")
}

// Load reads configuration from an optional .env file in the working
// directory, the JSON config file at $XDG_CONFIG_HOME/findoc/config.json,
// and FINDOC_* environment variables, in increasing precedence.
func Load() (Config, error) {
	// A missing .env is the normal case, not an error.
	_ = godotenv.Load()
	return loadWith(newFileBackend(configFilePath()))
}

func loadWith(b backend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)

	return cfg, nil
}

// Validate enforces the settings the server cannot run without.
func (c Config) Validate() error {
	if c.DocIntel.Endpoint == "" {
		return fmt.Errorf("missing required config: document service endpoint (set FINDOC_DOCINTEL_ENDPOINT)")
	}
	if c.DocIntel.APIKey == "" {
		return fmt.Errorf("missing required config: document service API key (set FINDOC_DOCINTEL_API_KEY)")
	}
	return nil
}
