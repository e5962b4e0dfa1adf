package solver

import (
	"context"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/cantuslabs/cantus/internal/compile"
)

// GiniEngine backs the solver boundary with the gini SAT solver.
//
// Encoding: atom i of the system is solver variable i+1, fixed by a
// unit clause to its ground truth. Constraint tag t gets a selector
// variable; each of the constraint's clauses is guarded by the
// selector's negation, and the selectors of the assumed tags are
// passed as assumptions. After UNSAT, the failed assumptions are
// exactly the violated constraint tags.
type GiniEngine struct{}

// NewGiniEngine creates the default engine.
func NewGiniEngine() *GiniEngine { return &GiniEngine{} }

func (e *GiniEngine) Name() string { return "gini" }

// SupportsCore is true: gini reports failed assumptions via Why.
func (e *GiniEngine) SupportsCore() bool { return true }

// Solve builds a fresh solver instance per call, so one engine value
// may serve independent verification runs concurrently.
func (e *GiniEngine) Solve(ctx context.Context, sys *compile.System, assume []int, timeout time.Duration) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	g := gini.New()
	nAtoms := sys.NumAtoms()

	selector := func(tag int) z.Lit {
		return z.Var(nAtoms + 1 + tag).Pos()
	}

	// Ground facts as unit clauses.
	for i, a := range sys.Atoms() {
		lit := z.Var(i + 1).Pos()
		if !a.Value {
			lit = lit.Not()
		}
		g.Add(lit)
		g.Add(z.LitNull)
	}

	// Guarded constraint clauses.
	for _, con := range sys.Constraints {
		sel := selector(con.Tag)
		for _, cl := range con.Clauses {
			g.Add(sel.Not())
			for _, l := range cl {
				lit := z.Var(sys.AtomVar(l.Atom.Name)).Pos()
				if l.Neg {
					lit = lit.Not()
				}
				g.Add(lit)
			}
			g.Add(z.LitNull)
		}
	}

	sels := make([]z.Lit, len(assume))
	for i, tag := range assume {
		sels[i] = selector(tag)
	}
	g.Assume(sels...)

	var verdict int
	if timeout > 0 {
		verdict = g.GoSolve().Try(timeout)
	} else {
		verdict = g.Solve()
	}

	switch verdict {
	case 1:
		return Result{Status: StatusSat}, nil
	case -1:
		why := g.Why(nil)
		core := make([]int, 0, len(why))
		for _, m := range why {
			v := int(m.Var())
			if v > nAtoms {
				core = append(core, v-nAtoms-1)
			}
		}
		return Result{Status: StatusUnsat, Core: core}, nil
	default:
		return Result{Status: StatusUnknown}, nil
	}
}
