package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

type keySpec struct {
	key   string
	typ   keyType
	env   string
	apply func(cfg *Config, v any)
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "FINDOC_SERVER_PORT",
		apply: func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
	},
	{
		key: "docintel.endpoint", typ: kString, env: "FINDOC_DOCINTEL_ENDPOINT",
		apply: func(cfg *Config, v any) { cfg.DocIntel.Endpoint = v.(string) },
	},
	{
		key: "docintel.api_key", typ: kString, env: "FINDOC_DOCINTEL_API_KEY",
		apply: func(cfg *Config, v any) { cfg.DocIntel.APIKey = v.(string) },
	},
	{
		key: "docintel.api_version", typ: kString, env: "FINDOC_DOCINTEL_API_VERSION",
		apply: func(cfg *Config, v any) { cfg.DocIntel.APIVersion = v.(string) },
	},
	{
		key: "chat.api_key", typ: kString, env: "FINDOC_CHAT_API_KEY",
		apply: func(cfg *Config, v any) { cfg.Chat.APIKey = v.(string) },
	},
	{
		key: "chat.base_url", typ: kString, env: "FINDOC_CHAT_BASE_URL",
		apply: func(cfg *Config, v any) { cfg.Chat.BaseURL = v.(string) },
	},
	{
		key: "chat.model", typ: kString, env: "FINDOC_CHAT_MODEL",
		apply: func(cfg *Config, v any) { cfg.Chat.Model = v.(string) },
	},
	{
		key: "storage.data_dir", typ: kString, env: "FINDOC_STORAGE_DATA_DIR",
		apply: func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
	},
	{
		key: "log.level", typ: kString, env: "FINDOC_LOG_LEVEL",
		apply: func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
	},
}

func applyBackend(cfg *Config, b backend) error {
	for _, spec := range specs {
		switch spec.typ {
		case kString:
			v, ok, err := b.GetString(spec.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", spec.key, err)
			}
			if ok {
				spec.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(spec.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", spec.key, err)
			}
			if ok {
				spec.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, spec := range specs {
		raw := os.Getenv(spec.env)
		if raw == "" {
			continue
		}
		switch spec.typ {
		case kString:
			spec.apply(cfg, raw)
		case kInt:
			if v, err := strconv.Atoi(raw); err == nil {
				spec.apply(cfg, v)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] ignoring %s=%q: not an integer\n", spec.env, raw)
			}
		}
	}
}
