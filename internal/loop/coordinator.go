// Package loop closes the verify → report → regenerate cycle around an
// external generator. The exchange is formalized as a finite state
// machine with bounded iterations and immutable per-iteration
// artifacts, so every run is auditable and replayable.
package loop

import (
	"context"
	"fmt"
	"os"

	"github.com/cantuslabs/cantus/internal/model"
	"github.com/cantuslabs/cantus/internal/pipeline"
	"github.com/cantuslabs/cantus/internal/worker"
)

// State is a coordinator state.
type State string

const (
	StateIdle                 State = "idle"
	StateVerifying            State = "verifying"
	StateAwaitingRegeneration State = "awaiting_regeneration"
	StateConverged            State = "converged"
	StateExhausted            State = "exhausted"
)

// Generator is the external collaborator that produces a new candidate
// score from the previous candidate and its violations. Plain
// request/response: the violation list is the sole payload.
type Generator interface {
	// Name identifies the generator, also used as its rate-limit key.
	Name() string

	// Regenerate returns a new candidate score.
	Regenerate(ctx context.Context, score *model.Score, violations []model.Violation) (*model.Score, error)
}

// Iteration is the immutable record of one verify cycle.
type Iteration struct {
	Number           int                      `json:"number"`
	ScoreFingerprint string                   `json:"score_fingerprint"`
	Result           model.VerificationResult `json:"result"`
	StateAfter       State                    `json:"state_after"`
}

// Outcome is the terminal record of a loop run, carrying the full
// iteration history.
type Outcome struct {
	Final      State       `json:"final"`
	Converged  bool        `json:"converged"`
	Iterations []Iteration `json:"iterations"`

	// FinalScore is the last candidate verified. Not serialized; use
	// the fingerprint trail for identity.
	FinalScore *model.Score `json:"-"`
}

// Coordinator drives the feedback loop. Strictly sequential between
// iterations; independent runs for independent candidates may execute
// in parallel.
type Coordinator struct {
	verifier  *pipeline.Verifier
	generator Generator
	maxIter   int
	threshold float64
	limiter   *worker.Limiter
	verbose   bool
}

// NewCoordinator builds a coordinator. The generator may be nil, in
// which case a non-converged first verification ends the run
// immediately as Exhausted.
func NewCoordinator(v *pipeline.Verifier, g Generator, cfg model.LoopConfig, rpm float64, verbose bool) *Coordinator {
	maxIter := cfg.MaxIterations
	if maxIter < 1 {
		maxIter = 1
	}
	if rpm <= 0 {
		rpm = 20
	}
	return &Coordinator{
		verifier:  v,
		generator: g,
		maxIter:   maxIter,
		threshold: cfg.Threshold,
		limiter:   worker.NewLimiter(rpm/60.0, 1),
		verbose:   verbose,
	}
}

// Run executes the loop for one initial candidate. Exhausted is a
// normal terminal outcome, not an error. Cancellation is honored at
// iteration boundaries.
func (c *Coordinator) Run(ctx context.Context, score *model.Score) (*Outcome, error) {
	outcome := &Outcome{Final: StateIdle}

	for iter := 1; iter <= c.maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, _, err := c.verifier.Verify(ctx, score)
		if err != nil {
			return nil, fmt.Errorf("iteration %d: %w", iter, err)
		}

		record := Iteration{
			Number:           iter,
			ScoreFingerprint: score.Fingerprint(),
			Result:           result,
		}

		converged := result.Status != model.StatusUnknown && result.Conformance >= c.threshold
		switch {
		case converged:
			record.StateAfter = StateConverged
		case iter == c.maxIter:
			record.StateAfter = StateExhausted
		default:
			record.StateAfter = StateAwaitingRegeneration
		}
		outcome.Iterations = append(outcome.Iterations, record)
		outcome.FinalScore = score
		outcome.Final = record.StateAfter
		outcome.Converged = record.StateAfter == StateConverged

		if c.verbose {
			fmt.Fprintf(os.Stderr, "iteration %d/%d: conformance %.3f, %d violation(s) -> %s\n",
				iter, c.maxIter, result.Conformance, len(result.Violations), record.StateAfter)
		}

		if record.StateAfter != StateAwaitingRegeneration {
			return outcome, nil
		}

		if c.generator == nil {
			outcome.Final = StateExhausted
			outcome.Iterations[len(outcome.Iterations)-1].StateAfter = StateExhausted
			return outcome, nil
		}

		if err := c.limiter.Wait(ctx, c.generator.Name()); err != nil {
			return nil, err
		}
		next, err := c.generator.Regenerate(ctx, score, result.Violations)
		if err != nil {
			return nil, fmt.Errorf("iteration %d: regenerate: %w", iter, err)
		}
		score = next
	}

	outcome.Final = StateExhausted
	return outcome, nil
}
