package flow

import (
	"time"

	"github.com/kbukum/flowcheck/validation"
)

// Flow scopes.
const (
	// ScopeFull schedules the whole check suite.
	ScopeFull = "full"
	// ScopeQuick schedules the core integrity checks only.
	ScopeQuick = "quick"
)

const (
	defaultWorkers            = 4
	defaultCheckTimeout       = 30 * time.Second
	defaultReportDir          = "reports"
	defaultMaxRecommendations = 10
)

// Config controls which checks are scheduled and how the engine runs
// them.
type Config struct {
	// Scope selects the check suite: "full" or "quick".
	Scope string `yaml:"scope" mapstructure:"scope" validate:"oneof=full quick"`

	// IncludePerformance schedules the latency check. Ignored in quick
	// scope, which never runs it.
	IncludePerformance bool `yaml:"include_performance" mapstructure:"include_performance"`

	// Parallel runs independent nodes of a layer concurrently. When
	// false every layer executes with a single worker.
	Parallel bool `yaml:"parallel" mapstructure:"parallel"`

	// Workers bounds concurrent checks within a layer. Defaults to 4.
	Workers int `yaml:"workers" mapstructure:"workers" validate:"gte=1"`

	// CheckTimeout bounds one check's execution. A check exceeding it
	// faults with a timeout error. Defaults to 30s.
	CheckTimeout time.Duration `yaml:"check_timeout" mapstructure:"check_timeout" validate:"gte=0"`

	// RunTimeout bounds the whole flow. Nodes still pending when it
	// expires end blocked. Zero disables the bound.
	RunTimeout time.Duration `yaml:"run_timeout" mapstructure:"run_timeout" validate:"gte=0"`

	// AbortOnFailure stops scheduling further layers once a layer ends
	// with a fault or a critical outcome. Remaining nodes end blocked.
	AbortOnFailure bool `yaml:"abort_on_failure" mapstructure:"abort_on_failure"`

	// ReportDir is where flow report artifacts are written.
	ReportDir string `yaml:"report_dir" mapstructure:"report_dir" validate:"required"`

	// MaxRecommendations caps the ranked recommendations in a report.
	// Defaults to 10.
	MaxRecommendations int `yaml:"max_recommendations" mapstructure:"max_recommendations" validate:"gte=1"`
}

// DefaultConfig returns the configuration for a full parallel run.
func DefaultConfig() Config {
	cfg := Config{Parallel: true}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero-valued fields with sensible defaults.
// Booleans are left alone; their zero values are meaningful.
func (c *Config) ApplyDefaults() {
	if c.Scope == "" {
		c.Scope = ScopeFull
	}
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.CheckTimeout <= 0 {
		c.CheckTimeout = defaultCheckTimeout
	}
	if c.ReportDir == "" {
		c.ReportDir = defaultReportDir
	}
	if c.MaxRecommendations <= 0 {
		c.MaxRecommendations = defaultMaxRecommendations
	}
}

// Validate checks the configuration via struct tags.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
