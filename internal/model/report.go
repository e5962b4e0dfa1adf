package model

import "time"

// Report is the complete record of one verification run, as written to
// the report file.
type Report struct {
	Subject    string    `json:"subject"`
	SourceFile string    `json:"source_file,omitempty"`
	VerifiedAt time.Time `json:"verified_at"`

	KeySignature  string `json:"key_signature,omitempty"`
	TimeSignature string `json:"time_signature,omitempty"`
	Measures      int    `json:"measures"`
	Voices        int    `json:"voices"`

	RulesApplied []string   `json:"rules_applied"`
	Solver       SolverMeta `json:"solver"`

	Result VerificationResult `json:"result"`
}

// SolverMeta records which engine answered and how.
type SolverMeta struct {
	Engine   string        `json:"engine"`
	Timeout  time.Duration `json:"timeout"`
	CoreMode string        `json:"core_mode"` // "unsat_core" or "relaxation"
	Calls    int           `json:"calls"`
}

// BatchReport aggregates a corpus run. UnknownFiles counts files whose
// solver verdict was unknown; they are neither conformant nor
// violating.
type BatchReport struct {
	Timestamp           time.Time      `json:"timestamp"`
	TotalFiles          int            `json:"total_files"`
	ConformantFiles     int            `json:"conformant_files"`
	FilesWithViolations int            `json:"files_with_violations"`
	UnknownFiles        int            `json:"unknown_files"`
	FailedFiles         int            `json:"failed_files"`
	Analyses            []FileAnalysis `json:"analyses"`
}

// FileAnalysis is one corpus entry of a batch report.
type FileAnalysis struct {
	Filename      string      `json:"filename"`
	KeySignature  string      `json:"key_signature,omitempty"`
	TimeSignature string      `json:"time_signature,omitempty"`
	Measures      int         `json:"measures"`
	Status        Status      `json:"status,omitempty"`
	Conformant    bool        `json:"conformant"`
	Conformance   float64     `json:"conformance"`
	Violations    []Violation `json:"violations,omitempty"`
	Error         string      `json:"error,omitempty"`
}
