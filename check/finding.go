package check

// Finding severities. Critical findings gate downstream execution;
// warnings never do.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
)

// Finding categories.
const (
	CategoryForeignKey         = "foreign_key_violation"
	CategoryMalformedStructure = "malformed_structure"
	CategoryTimestamp          = "timestamp_inconsistency"
	CategoryDuplicateKey       = "duplicate_key"
	CategorySoftDelete         = "stale_soft_delete"
	CategoryRelationship       = "relationship"
	CategoryBehavior           = "behavior"
	CategoryStateTransition    = "state_transition"
	CategoryAuditTrail         = "audit_trail"
	CategoryPerformance        = "performance"
)

// Finding is one concrete issue discovered by a check. Findings are pure
// observations; they never mutate the inspected store.
type Finding struct {
	// CheckName is the name of the check that produced the finding.
	CheckName string `json:"check_name"`
	// Category classifies the kind of issue.
	Category string `json:"category"`
	// Severity is critical or warning.
	Severity string `json:"severity"`
	// Table is the store table involved, when applicable.
	Table string `json:"table,omitempty"`
	// Field is the column or attribute involved, when applicable.
	Field string `json:"field,omitempty"`
	// RecordID identifies the offending record, when applicable.
	RecordID string `json:"record_id,omitempty"`
	// Description is a human-readable explanation of the issue.
	Description string `json:"description"`
}

// IsCritical returns true for critical-severity findings.
func (f Finding) IsCritical() bool {
	return f.Severity == SeverityCritical
}
