package config

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/mitchellh/mapstructure"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "frusal.json"

// Backend types.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendHTTP   = "http"
)

var backendTypes = []string{BackendMemory, BackendFile, BackendRedis, BackendHTTP}

// ErrNotFound is returned when the config file does not exist.
var ErrNotFound = errors.New("config file not found")

// Config is the content of frusal.json, after environment overrides.
type Config struct {
	// Workspace to deploy into. Empty means the deployment is skipped.
	Workspace string `json:"workspace" env:"FRUSAL_WORKSPACE"`

	// Credentials is the path of the credential file. Empty means the per-user default.
	Credentials string `json:"credentials,omitempty" env:"FRUSAL_CREDENTIALS"`

	Backend Backend `json:"backend"`

	Encryption Encryption `json:"encryption,omitempty"`
}

// Encryption enables encryption of workspace entities at rest. Keys are base64 encoded
// 32-byte AES keys; fallback keys are only used to read data written before a rotation.
type Encryption struct {
	Key          string   `json:"key,omitempty" env:"FRUSAL_ENCRYPTION_KEY"`
	FallbackKeys []string `json:"fallback_keys,omitempty" env:"FRUSAL_ENCRYPTION_FALLBACK_KEYS" envSeparator:","`
}

// Enabled reports whether a key is configured.
func (e Encryption) Enabled() bool { return e.Key != "" }

// Keys decodes the active and fallback keys.
func (e Encryption) Keys() (active []byte, fallback [][]byte, err error) {
	if active, err = decodeKey(e.Key); err != nil {
		return nil, nil, fmt.Errorf("encryption key: %w", err)
	}
	for i, k := range e.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("fallback key %d: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("not base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("want 32 bytes, got %d", len(key))
	}
	return key, nil
}

// Backend selects and configures the workspace store.
type Backend struct {
	Type    string         `json:"type" env:"FRUSAL_BACKEND_TYPE"`
	Options map[string]any `json:"options,omitempty"`
}

// FileOptions configures the file backend.
type FileOptions struct {
	Dir string `mapstructure:"dir"`
}

// RedisOptions configures the redis backend.
type RedisOptions struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	Lock     bool          `mapstructure:"lock"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

// HTTPOptions configures the http backend.
type HTTPOptions struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load reads the config file at path, applies environment overrides and validates it.
// A missing or malformed file is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(path, data)
}

// Parse decodes a config document. name is only used in error messages.
func Parse(name string, data []byte) (*Config, error) {
	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("malformed config %s: %w", name, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	if cfg.Backend.Type == "" {
		cfg.Backend.Type = BackendFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", name, err)
	}
	return &cfg, nil
}

// Validate checks the backend selection and its options.
func (c *Config) Validate() error {
	if !slices.Contains(backendTypes, c.Backend.Type) {
		return fmt.Errorf("unknown backend type %q (want one of %v)", c.Backend.Type, backendTypes)
	}
	if c.Encryption.Enabled() {
		if _, _, err := c.Encryption.Keys(); err != nil {
			return err
		}
	}

	switch c.Backend.Type {
	case BackendFile:
		_, err := c.FileOptions()
		return err
	case BackendRedis:
		opts, err := c.RedisOptions()
		if err == nil && opts.Addr == "" {
			err = errors.New("redis backend needs options.addr")
		}
		return err
	case BackendHTTP:
		opts, err := c.HTTPOptions()
		if err == nil && opts.URL == "" {
			err = errors.New("http backend needs options.url")
		}
		return err
	}
	return nil
}

// FileOptions decodes the backend options for the file backend.
func (c *Config) FileOptions() (FileOptions, error) {
	var opts FileOptions
	err := c.decodeOptions(&opts)
	return opts, err
}

// RedisOptions decodes the backend options for the redis backend.
func (c *Config) RedisOptions() (RedisOptions, error) {
	opts := RedisOptions{LockTTL: 30 * time.Second}
	err := c.decodeOptions(&opts)
	return opts, err
}

// HTTPOptions decodes the backend options for the http backend.
func (c *Config) HTTPOptions() (HTTPOptions, error) {
	opts := HTTPOptions{Timeout: 30 * time.Second}
	err := c.decodeOptions(&opts)
	return opts, err
}

func (c *Config) decodeOptions(target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           target,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(c.Backend.Options); err != nil {
		return fmt.Errorf("backend options: %w", err)
	}
	return nil
}
