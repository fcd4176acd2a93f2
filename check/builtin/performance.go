package builtin

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/kbukum/flowcheck/check"
	"github.com/kbukum/flowcheck/errors"
)

const (
	defaultSamples       = 5
	defaultSoftThreshold = 300 * time.Millisecond
	defaultHardThreshold = time.Second
)

// PerformanceConfig tunes the latency probes.
type PerformanceConfig struct {
	// Samples is how many requests each probe issues. Defaults to 5.
	Samples int `yaml:"samples" mapstructure:"samples"`

	// SoftThreshold is the p95 latency above which a probe degrades to a
	// warning. Defaults to 300ms.
	SoftThreshold time.Duration `yaml:"soft_threshold" mapstructure:"soft_threshold"`

	// HardThreshold is the p95 latency above which a probe fails. Defaults
	// to 1s.
	HardThreshold time.Duration `yaml:"hard_threshold" mapstructure:"hard_threshold"`
}

// ApplyDefaults fills unset fields with defaults.
func (c *PerformanceConfig) ApplyDefaults() {
	if c.Samples <= 0 {
		c.Samples = defaultSamples
	}
	if c.SoftThreshold <= 0 {
		c.SoftThreshold = defaultSoftThreshold
	}
	if c.HardThreshold <= 0 {
		c.HardThreshold = defaultHardThreshold
	}
}

// Validate checks the configuration for consistency.
func (c *PerformanceConfig) Validate() error {
	if c.HardThreshold < c.SoftThreshold {
		return errors.InvalidInput("hard_threshold", "must be >= soft_threshold")
	}
	return nil
}

// Performance samples list and read latency against the API and grades the
// p95 of each probe against the configured thresholds.
type Performance struct {
	cfg PerformanceConfig
}

// NewPerformance creates the performance check. Zero config fields fall
// back to defaults.
func NewPerformance(cfg PerformanceConfig) *Performance {
	cfg.ApplyDefaults()
	return &Performance{cfg: cfg}
}

// Name returns the check identifier.
func (*Performance) Name() string { return NamePerformance }

// Validate runs the list and read latency probes. A non-2xx response during
// sampling is a critical finding for that probe; a transport failure is a
// fault.
func (p *Performance) Validate(ctx context.Context, target check.Target) (*check.Outcome, error) {
	r := check.NewRecorder(NamePerformance)

	if finding, err := p.sampleList(ctx, target); err != nil {
		return nil, err
	} else if finding != nil {
		r.Record(*finding)
	} else {
		r.Record()
	}

	if finding, err := p.sampleRead(ctx, target); err != nil {
		return nil, err
	} else if finding != nil {
		r.Record(*finding)
	} else {
		r.Record()
	}

	return r.Outcome(), nil
}

func (p *Performance) sampleList(ctx context.Context, target check.Target) (*check.Finding, error) {
	durations := make([]time.Duration, 0, p.cfg.Samples)
	for i := 0; i < p.cfg.Samples; i++ {
		start := time.Now()
		res, err := target.API.ListTasks(ctx, nil)
		if err != nil {
			return nil, err
		}
		if res.StatusCode != http.StatusOK {
			return &check.Finding{
				Category:    check.CategoryPerformance,
				Severity:    check.SeverityCritical,
				Table:       "tasks",
				Field:       "list_latency",
				Description: fmt.Sprintf("list returned status %d during latency sampling", res.StatusCode),
			}, nil
		}
		durations = append(durations, time.Since(start))
	}
	return p.grade("list_latency", durations), nil
}

func (p *Performance) sampleRead(ctx context.Context, target check.Target) (*check.Finding, error) {
	tasks, err := target.Store.Tasks(ctx, target.Filter)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return &check.Finding{
			Category:    check.CategoryPerformance,
			Severity:    check.SeverityWarning,
			Table:       "tasks",
			Field:       "read_latency",
			Description: "no task available to sample read latency",
		}, nil
	}
	id := tasks[0].ID.String()

	durations := make([]time.Duration, 0, p.cfg.Samples)
	for i := 0; i < p.cfg.Samples; i++ {
		start := time.Now()
		res, err := target.API.GetTask(ctx, id)
		if err != nil {
			return nil, err
		}
		if res.StatusCode != http.StatusOK {
			return &check.Finding{
				Category:    check.CategoryPerformance,
				Severity:    check.SeverityCritical,
				Table:       "tasks",
				Field:       "read_latency",
				RecordID:    id,
				Description: fmt.Sprintf("read returned status %d during latency sampling", res.StatusCode),
			}, nil
		}
		durations = append(durations, time.Since(start))
	}
	return p.grade("read_latency", durations), nil
}

// grade classifies the p95 of the sampled durations. It returns nil when
// the probe is within the soft threshold.
func (p *Performance) grade(field string, durations []time.Duration) *check.Finding {
	p95 := percentile95(durations)
	severity := ""
	switch {
	case p95 > p.cfg.HardThreshold:
		severity = check.SeverityCritical
	case p95 > p.cfg.SoftThreshold:
		severity = check.SeverityWarning
	default:
		return nil
	}
	return &check.Finding{
		Category: check.CategoryPerformance,
		Severity: severity,
		Table:    "tasks",
		Field:    field,
		Description: fmt.Sprintf("p95 latency %s over %d samples exceeds %s",
			p95.Round(time.Millisecond), len(durations), p.threshold(severity).Round(time.Millisecond)),
	}
}

func (p *Performance) threshold(severity string) time.Duration {
	if severity == check.SeverityCritical {
		return p.cfg.HardThreshold
	}
	return p.cfg.SoftThreshold
}

// percentile95 returns the 95th percentile using the nearest-rank method.
func percentile95(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	rank := int(math.Ceil(0.95*float64(len(sorted)))) - 1
	return sorted[rank]
}
