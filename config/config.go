package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix marks environment variables read as configuration,
	// e.g. REQBRICKS_CLIENT_TIMEOUT=5s sets client.timeout.
	EnvPrefix = "REQBRICKS_"

	// DefaultFile is the optional YAML file read by Load.
	DefaultFile = "reqbricks.yaml"
)

// Load loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. reqbricks.yaml in the working directory, when present
// 3. Default values (lowest priority)
func Load() (*Config, error) {
	return load(func(k *koanf.Koanf) error {
		err := k.Load(file.Provider(DefaultFile), yaml.Parser())
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	})
}

// LoadFile is Load with a mandatory YAML file at path.
func LoadFile(path string) (*Config, error) {
	return load(func(k *koanf.Koanf) error {
		return k.Load(file.Provider(path), yaml.Parser())
	})
}

// LoadBytes is Load with YAML content supplied by the caller.
func LoadBytes(data []byte) (*Config, error) {
	return load(func(k *koanf.Koanf) error {
		return k.Load(rawbytes.Provider(data), yaml.Parser())
	})
}

func load(source func(*koanf.Koanf) error) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := source(k); err != nil {
		return nil, fmt.Errorf("failed to load yaml: %w", err)
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKey,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.k = k

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// envKey converts REQBRICKS_CLIENT_TRACE_HEADER to client.trace.header.
func envKey(key, value string) (string, any) {
	key = strings.TrimPrefix(key, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(key), "_", "."), value
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"client.timeout":      "30s",
		"client.useragent":    "reqbricks",
		"client.trace.header": "X-Request-ID",
		"client.trace.w3c":    true,

		"translate.workers":   0,
		"translate.keepblank": false,
		"translate.tag":       "param",

		"log.level":  "info",
		"log.pretty": false,

		"telemetry.enabled":    false,
		"telemetry.service":    "reqbricks",
		"telemetry.endpoint":   "stdout",
		"telemetry.protocol":   "http",
		"telemetry.samplerate": 1.0,
		"telemetry.interval":   "30s",
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}
