package check

// Outcome statuses.
const (
	StatusPassed             = "PASSED"
	StatusFailed             = "FAILED"
	StatusPassedWithWarnings = "PASSED_WITH_WARNINGS"
)

// Outcome is the result of one check: probe counters and the findings the
// probes produced. TotalChecks counts probes, not findings; one probe can
// produce several findings.
type Outcome struct {
	// TotalChecks is the number of probes the check performed.
	TotalChecks int `json:"total_checks"`
	// Passed counts probes that produced no findings.
	Passed int `json:"passed"`
	// Failed counts probes that produced at least one critical finding.
	Failed int `json:"failed"`
	// Warnings counts probes that produced only warning findings.
	Warnings int `json:"warnings"`
	// CriticalCount is the total number of critical findings.
	CriticalCount int `json:"critical_count"`
	// Findings lists every finding in probe order.
	Findings []Finding `json:"findings,omitempty"`
	// Status is PASSED, FAILED, or PASSED_WITH_WARNINGS.
	Status string `json:"status"`
}

// IsCriticalFailure returns true when the outcome carries at least one
// critical finding. Such outcomes block dependent nodes.
func (o *Outcome) IsCriticalFailure() bool {
	return o != nil && o.CriticalCount > 0
}

// Recorder accumulates probe results for one check and derives the final
// Outcome.
type Recorder struct {
	checkName string
	findings  []Finding
	passed    int
	failed    int
	warnings  int
}

// NewRecorder creates a Recorder for the named check.
func NewRecorder(checkName string) *Recorder {
	return &Recorder{checkName: checkName}
}

// Record registers one probe and the findings it produced. No findings
// counts the probe as passed; any critical finding counts it as failed;
// warning-only findings count it as a warning. The check name is filled
// into findings that omit it.
func (r *Recorder) Record(findings ...Finding) {
	critical := false
	for i := range findings {
		if findings[i].CheckName == "" {
			findings[i].CheckName = r.checkName
		}
		if findings[i].IsCritical() {
			critical = true
		}
	}
	r.findings = append(r.findings, findings...)

	switch {
	case len(findings) == 0:
		r.passed++
	case critical:
		r.failed++
	default:
		r.warnings++
	}
}

// Outcome derives the check outcome from the recorded probes.
func (r *Recorder) Outcome() *Outcome {
	criticalCount := 0
	for _, f := range r.findings {
		if f.IsCritical() {
			criticalCount++
		}
	}

	out := &Outcome{
		TotalChecks:   r.passed + r.failed + r.warnings,
		Passed:        r.passed,
		Failed:        r.failed,
		Warnings:      r.warnings,
		CriticalCount: criticalCount,
		Findings:      r.findings,
	}

	switch {
	case criticalCount > 0:
		out.Status = StatusFailed
	case len(r.findings) == 0:
		out.Status = StatusPassed
	default:
		out.Status = StatusPassedWithWarnings
	}
	return out
}
