package config

import (
	"fmt"

	"github.com/kbukum/flowcheck/apiclient"
	"github.com/kbukum/flowcheck/flow"
	"github.com/kbukum/flowcheck/logger"
	"github.com/kbukum/flowcheck/store"
)

// Config is the root flowcheck configuration. Each section is consumed
// by the package of the same name.
type Config struct {
	Base    BaseConfig       `yaml:"base" mapstructure:"base"`
	Logging logger.Config    `yaml:"logging" mapstructure:"logging"`
	Store   store.Config     `yaml:"store" mapstructure:"store"`
	API     apiclient.Config `yaml:"api" mapstructure:"api"`
	Flow    flow.Config      `yaml:"flow" mapstructure:"flow"`
}

// ApplyDefaults applies defaults to every section.
func (c *Config) ApplyDefaults() {
	c.Base.ApplyDefaults()
	c.Logging.ApplyDefaults()
	c.Store.ApplyDefaults()
	c.API.ApplyDefaults()
	c.Flow.ApplyDefaults()
}

// Validate validates every section and reports the first failure.
func (c *Config) Validate() error {
	if err := c.Base.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := c.API.Validate(); err != nil {
		return err
	}
	if err := c.Flow.Validate(); err != nil {
		return fmt.Errorf("flow: %w", err)
	}
	return nil
}

// Load reads flowcheck.yml, .env, and environment variables into a
// Config, applies defaults, and validates the result.
func Load(opts ...LoaderOption) (*Config, error) {
	var cfg Config
	if err := LoadInto(&cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
