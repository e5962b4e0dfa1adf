package model

// Severity grades how serious a violation is.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// SeverityFromWeight maps a configured rule weight in [0,1] to a
// severity grade.
func SeverityFromWeight(w float64) Severity {
	switch {
	case w >= 0.8:
		return SeverityCritical
	case w >= 0.4:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// Violation is one concrete stylistic failure, produced only by the
// counterexample extractor and never mutated afterwards.
type Violation struct {
	Rule        string   `json:"rule"`
	Location    Location `json:"location"`
	Where       string   `json:"where"` // human-readable location descriptor
	Severity    Severity `json:"severity"`
	Weight      float64  `json:"weight"`
	Explanation string   `json:"explanation"`
}

// Warning records a location a rule could not evaluate. Warned
// locations are skipped and excluded from the conformance denominator.
type Warning struct {
	Rule     string   `json:"rule"`
	Location Location `json:"location"`
	Reason   string   `json:"reason"`
}

// Status is the overall outcome of one verification run.
type Status string

const (
	StatusConformant Status = "conformant"
	StatusViolations Status = "violations"
	// StatusUnknown means the solver timed out or gave up. Never
	// coerced to conformant or violating.
	StatusUnknown Status = "unknown"
)

// ConstraintStats summarizes the compiled constraint system.
type ConstraintStats struct {
	TotalConstraints    int `json:"total_constraints"`
	ViolatedConstraints int `json:"violated_constraints"`
	EvaluatedLocations  int `json:"evaluated_locations"`
	SkippedLocations    int `json:"skipped_locations"`
}

// VerificationResult is the immutable outcome of verifying one score
// against one rule configuration.
type VerificationResult struct {
	Status      Status          `json:"status"`
	Satisfied   bool            `json:"satisfied"`
	Conformance float64         `json:"conformance"` // in [0,1]
	Violations  []Violation     `json:"violations"`
	Warnings    []Warning       `json:"warnings,omitempty"`
	Stats       ConstraintStats `json:"stats"`
}
