package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/manmonths/core/allocation"
	"github.com/kilianp07/manmonths/core/history"
	"github.com/kilianp07/manmonths/core/metrics"
	"github.com/kilianp07/manmonths/infra/monitoring"
	"github.com/kilianp07/manmonths/infra/mqtt"
)

// EnvPrefix marks environment variables that override file settings.
// Nested keys are separated by a double underscore, for example
// K_ALLOCATION__MAX_YEARLY_CAPACITY=12.
const EnvPrefix = "K_"

type Config struct {
	Allocation allocation.Config `json:"allocation"`
	Input      InputConfig       `json:"input"`
	Output     OutputConfig      `json:"output"`
	History    history.Config    `json:"history"`
	Metrics    metrics.Config    `json:"metrics"`
	Server     ServerConfig      `json:"server"`
	MQTT       mqtt.Config       `json:"mqtt"`
	Sentry     monitoring.Config `json:"sentry"`
	Logging    LoggingConfig     `json:"logging"`
}

// Load reads the configuration file at path, applies environment
// overrides, fills defaults and validates the result. An empty path loads
// defaults and environment overrides only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a validated configuration without reading any file.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// SetDefaults fills unset fields of every section. MQTT defaults are only
// applied when a broker is configured.
func (c *Config) SetDefaults() {
	c.Allocation.SetDefaults()
	c.Input.SetDefaults()
	c.Output.SetDefaults()
	c.History.SetDefaults()
	c.Server.SetDefaults()
	c.Logging.SetDefaults()
	if c.MQTT.Enabled() {
		c.MQTT.SetDefaults()
	}
}

// Validate checks every section and joins the failures.
func (c Config) Validate() error {
	var errs []error
	if err := c.Allocation.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Input.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Output.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.History.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.MQTT.Enabled() {
		if err := c.MQTT.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
