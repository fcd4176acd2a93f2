package check

import (
	"context"
	"testing"
)

func TestRecorderAllPassed(t *testing.T) {
	r := NewRecorder("integrity")
	r.Record()
	r.Record()
	r.Record()

	out := r.Outcome()
	if out.Status != StatusPassed {
		t.Errorf("expected PASSED, got %s", out.Status)
	}
	if out.TotalChecks != 3 || out.Passed != 3 {
		t.Errorf("expected 3/3 passed, got total=%d passed=%d", out.TotalChecks, out.Passed)
	}
	if out.CriticalCount != 0 {
		t.Errorf("expected 0 critical, got %d", out.CriticalCount)
	}
	if len(out.Findings) != 0 {
		t.Errorf("expected no findings, got %d", len(out.Findings))
	}
}

func TestRecorderCriticalFinding(t *testing.T) {
	r := NewRecorder("integrity")
	r.Record()
	r.Record(
		Finding{Category: CategoryForeignKey, Severity: SeverityCritical, Table: "tasks", RecordID: "t1", Description: "task references missing project"},
		Finding{Category: CategoryForeignKey, Severity: SeverityCritical, Table: "tasks", RecordID: "t2", Description: "task references missing project"},
	)

	out := r.Outcome()
	if out.Status != StatusFailed {
		t.Errorf("expected FAILED, got %s", out.Status)
	}
	if out.TotalChecks != 2 {
		t.Errorf("expected 2 probes, got %d", out.TotalChecks)
	}
	if out.Passed != 1 || out.Failed != 1 {
		t.Errorf("expected 1 passed 1 failed, got passed=%d failed=%d", out.Passed, out.Failed)
	}
	if out.CriticalCount != 2 {
		t.Errorf("expected 2 critical findings, got %d", out.CriticalCount)
	}
	if !out.IsCriticalFailure() {
		t.Error("expected critical failure")
	}
}

func TestRecorderWarningsOnly(t *testing.T) {
	r := NewRecorder("integrity")
	r.Record()
	r.Record(Finding{Category: CategoryTimestamp, Severity: SeverityWarning, Description: "done task missing completion timestamp"})

	out := r.Outcome()
	if out.Status != StatusPassedWithWarnings {
		t.Errorf("expected PASSED_WITH_WARNINGS, got %s", out.Status)
	}
	if out.Warnings != 1 || out.Passed != 1 {
		t.Errorf("expected 1 warning 1 passed, got warnings=%d passed=%d", out.Warnings, out.Passed)
	}
	if out.IsCriticalFailure() {
		t.Error("warnings must not be a critical failure")
	}
}

func TestRecorderMixedProbeCountsAsFailed(t *testing.T) {
	r := NewRecorder("integrity")
	r.Record(
		Finding{Severity: SeverityWarning, Description: "minor"},
		Finding{Severity: SeverityCritical, Description: "major"},
	)

	out := r.Outcome()
	if out.Failed != 1 || out.Warnings != 0 {
		t.Errorf("a probe with any critical finding counts as failed, got failed=%d warnings=%d", out.Failed, out.Warnings)
	}
	if out.CriticalCount != 1 {
		t.Errorf("expected 1 critical finding, got %d", out.CriticalCount)
	}
}

func TestRecorderFillsCheckName(t *testing.T) {
	r := NewRecorder("relationships")
	r.Record(Finding{Severity: SeverityWarning, Description: "sprint window inverted"})

	out := r.Outcome()
	if out.Findings[0].CheckName != "relationships" {
		t.Errorf("expected check name to be filled, got %q", out.Findings[0].CheckName)
	}
}

func TestRecorderEmptyOutcome(t *testing.T) {
	out := NewRecorder("noop").Outcome()
	if out.Status != StatusPassed {
		t.Errorf("a check with no probes passes vacuously, got %s", out.Status)
	}
	if out.TotalChecks != 0 {
		t.Errorf("expected 0 probes, got %d", out.TotalChecks)
	}
}

func TestOutcomeIsCriticalFailureNil(t *testing.T) {
	var out *Outcome
	if out.IsCriticalFailure() {
		t.Error("nil outcome is not a critical failure")
	}
}

type namedCheck string

func (n namedCheck) Name() string { return string(n) }

func (n namedCheck) Validate(_ context.Context, _ Target) (*Outcome, error) {
	return NewRecorder(string(n)).Outcome(), nil
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register(namedCheck("relationships"))
	reg.Register(namedCheck("data_integrity"))
	reg.Register(namedCheck("performance"))

	if _, ok := reg.Get("data_integrity"); !ok {
		t.Error("expected data_integrity to be registered")
	}
	if _, ok := reg.Get("unknown"); ok {
		t.Error("unexpected check for unknown name")
	}

	names := reg.List()
	want := []string{"data_integrity", "performance", "relationships"}
	if len(names) != len(want) {
		t.Fatalf("expected %d names, got %d", len(want), len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("List()[%d] = %s, want %s (sorted)", i, names[i], want[i])
		}
	}
}
