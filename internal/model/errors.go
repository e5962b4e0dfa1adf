package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrViolations marks a completed verification that found violations.
// The CLI maps it to exit code 1.
var ErrViolations = errors.New("stylistic violations found")

// MalformedScoreError reports a structural invariant violated in the
// input score. Fatal: the run aborts. Voice is -1 when the problem is
// not voice-specific.
type MalformedScoreError struct {
	Measure int
	Voice   VoiceID
	Reason  string
}

func (e *MalformedScoreError) Error() string {
	if e.Voice < 0 {
		return fmt.Sprintf("malformed score: measure %d: %s", e.Measure+1, e.Reason)
	}
	return fmt.Sprintf("malformed score: measure %d, voice %d: %s", e.Measure+1, e.Voice, e.Reason)
}

// RuleConfigError reports an unknown or out-of-range rule
// configuration option. Fatal at configuration load.
type RuleConfigError struct {
	Option string
	Reason string
}

func (e *RuleConfigError) Error() string {
	if e.Option == "" {
		return fmt.Sprintf("rule configuration: %s", e.Reason)
	}
	return fmt.Sprintf("rule configuration: option %q: %s", e.Option, e.Reason)
}

// SolverTimeoutError reports that the solver gave up within the
// configured budget. Surfaced as a result with StatusUnknown, not as a
// fatal failure; callers decide whether to retry.
type SolverTimeoutError struct {
	Timeout time.Duration
}

func (e *SolverTimeoutError) Error() string {
	return fmt.Sprintf("solver gave no answer within %v", e.Timeout)
}
