package apiclient

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kbukum/flowcheck/resilience"
)

const defaultTimeout = 10 * time.Second

// Config configures the task API client.
type Config struct {
	// BaseURL is the base URL prepended to all request paths.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout is the per-request timeout. Defaults to 10s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// AuthToken is sent as a bearer token when non-empty.
	AuthToken string `yaml:"auth_token" mapstructure:"auth_token"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// Retry configures retry behavior for transport failures. Nil disables
	// retry. Responses are never retried, whatever their status code.
	Retry *resilience.RetryConfig `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("apiclient: base_url is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("apiclient: invalid base_url %q: %w", c.BaseURL, err)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("apiclient: timeout must be positive")
	}
	return nil
}

// DefaultRetryConfig returns a retry config suitable for API probes.
// Only retryable AppErrors are retried, which for this client means
// transport failures.
func DefaultRetryConfig() *resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.RetryIf = resilience.RetryIfRetryable
	return &cfg
}
