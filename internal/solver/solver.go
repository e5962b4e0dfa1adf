// Package solver is the capability boundary to an external
// satisfiability engine. The core depends only on the request/response
// contract (constraints in, SAT/UNSAT/UNKNOWN plus supporting data
// out), never on a particular engine's API.
package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/cantuslabs/cantus/internal/compile"
	"github.com/cantuslabs/cantus/internal/model"
)

// Status is the engine's answer for one call.
type Status int

const (
	StatusUnknown Status = iota
	StatusSat
	StatusUnsat
)

func (s Status) String() string {
	switch s {
	case StatusSat:
		return "sat"
	case StatusUnsat:
		return "unsat"
	default:
		return "unknown"
	}
}

// Result is one engine answer. Core carries the failed constraint tags
// when the engine supports core extraction and the status is UNSAT.
type Result struct {
	Status Status
	Core   []int
}

// Engine is the black-box satisfiability capability.
type Engine interface {
	// Name identifies the engine for reports.
	Name() string

	// SupportsCore reports whether Solve returns an unsatisfiable
	// core. Engines without it are driven through incremental
	// relaxation instead.
	SupportsCore() bool

	// Solve checks whether the system's facts and the assumed
	// constraint tags are jointly satisfiable within the timeout.
	Solve(ctx context.Context, sys *compile.System, assume []int, timeout time.Duration) (Result, error)
}

// Answer is the adapter's aggregate verdict for a whole verification:
// every violated constraint tag, found through repeated core
// extraction or relaxation.
type Answer struct {
	Satisfied bool
	Unknown   bool
	Violated  []int
	Calls     int
	CoreMode  string
	Err       error // set when Unknown, e.g. *model.SolverTimeoutError
}

// Adapter drives an Engine to a complete violation set. At most one
// solver call runs at a time per verification; the relaxation path
// issues multiple sequential calls.
type Adapter struct {
	engine  Engine
	timeout time.Duration
}

// NewAdapter wraps an engine with a per-call timeout.
func NewAdapter(engine Engine, timeout time.Duration) *Adapter {
	return &Adapter{engine: engine, timeout: timeout}
}

// EngineName returns the wrapped engine's name.
func (a *Adapter) EngineName() string { return a.engine.Name() }

// Timeout returns the per-call timeout.
func (a *Adapter) Timeout() time.Duration { return a.timeout }

// Violations finds every violated constraint tag of the system.
// UNKNOWN (timeout or engine limitation) is surfaced in the answer,
// never treated as SAT or UNSAT. Cancellation is checked before each
// engine call.
func (a *Adapter) Violations(ctx context.Context, sys *compile.System) (*Answer, error) {
	if a.engine.SupportsCore() {
		return a.byCores(ctx, sys)
	}
	return a.byRelaxation(ctx, sys)
}

// byCores repeatedly solves, retracting each returned unsatisfiable
// core, until the remainder is satisfiable. The accumulated cores are
// the complete violation set.
func (a *Adapter) byCores(ctx context.Context, sys *compile.System) (*Answer, error) {
	ans := &Answer{CoreMode: "unsat_core"}

	active := make([]int, len(sys.Constraints))
	for i := range active {
		active[i] = i
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := a.engine.Solve(ctx, sys, active, a.timeout)
		ans.Calls++
		if err != nil {
			return nil, fmt.Errorf("solver: %w", err)
		}

		switch res.Status {
		case StatusSat:
			ans.Satisfied = len(ans.Violated) == 0
			return ans, nil
		case StatusUnknown:
			ans.Unknown = true
			ans.Err = &model.SolverTimeoutError{Timeout: a.timeout}
			return ans, nil
		case StatusUnsat:
			if len(res.Core) == 0 {
				return nil, fmt.Errorf("solver: unsat with empty core")
			}
			ans.Violated = append(ans.Violated, res.Core...)
			active = subtract(active, res.Core)
		}
	}
}

// byRelaxation is the fallback for engines without core extraction:
// after an overall UNSAT, each constraint is tested in isolation and
// the ones that fail on their own form the approximate violation set.
func (a *Adapter) byRelaxation(ctx context.Context, sys *compile.System) (*Answer, error) {
	ans := &Answer{CoreMode: "relaxation"}

	active := make([]int, len(sys.Constraints))
	for i := range active {
		active[i] = i
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := a.engine.Solve(ctx, sys, active, a.timeout)
	ans.Calls++
	if err != nil {
		return nil, fmt.Errorf("solver: %w", err)
	}
	switch res.Status {
	case StatusSat:
		ans.Satisfied = true
		return ans, nil
	case StatusUnknown:
		ans.Unknown = true
		ans.Err = &model.SolverTimeoutError{Timeout: a.timeout}
		return ans, nil
	}

	for tag := range sys.Constraints {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := a.engine.Solve(ctx, sys, []int{tag}, a.timeout)
		ans.Calls++
		if err != nil {
			return nil, fmt.Errorf("solver: %w", err)
		}
		switch res.Status {
		case StatusUnsat:
			ans.Violated = append(ans.Violated, tag)
		case StatusUnknown:
			ans.Unknown = true
			ans.Err = &model.SolverTimeoutError{Timeout: a.timeout}
			return ans, nil
		}
	}
	return ans, nil
}

func subtract(active, drop []int) []int {
	dropSet := make(map[int]bool, len(drop))
	for _, t := range drop {
		dropSet[t] = true
	}
	out := active[:0]
	for _, t := range active {
		if !dropSet[t] {
			out = append(out, t)
		}
	}
	return out
}
