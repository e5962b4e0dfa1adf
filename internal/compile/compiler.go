// Package compile walks a score under the active rule set and
// assembles one global constraint system with provenance tags.
// Compilation is pure and deterministic: the same (score, rule set)
// always yields the same constraints, tags and order.
package compile

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/cantuslabs/cantus/internal/logic"
	"github.com/cantuslabs/cantus/internal/model"
	"github.com/cantuslabs/cantus/internal/rules"
	"github.com/cantuslabs/cantus/internal/worker"
)

// Tagged is a compiled constraint with its stable integer tag. Tags
// are assigned after sorting on (rule id, location key, sub-index), so
// they never depend on which worker finished first.
type Tagged struct {
	Tag int
	logic.Constraint
}

// System is the assembled constraint system for one verification run.
type System struct {
	Constraints []Tagged // indexed by tag
	Warnings    []model.Warning

	// EvaluatedLocations counts distinct (rule, location) pairs that
	// produced constraints; SkippedLocations counts pairs a rule could
	// not evaluate. Only evaluated locations enter the conformance
	// denominator.
	EvaluatedLocations int
	SkippedLocations   int

	RuleIDs []string

	atoms     []logic.Atom
	atomIndex map[string]int   // atom name -> 1-based solver variable
	tagIndex  map[string][]int // rule + location key -> tags
	fp        string
}

// Provenance returns the originating rule and location of a tag.
func (s *System) Provenance(tag int) (rule string, loc model.Location, ok bool) {
	if tag < 0 || tag >= len(s.Constraints) {
		return "", model.Location{}, false
	}
	c := s.Constraints[tag]
	return c.Rule, c.Loc, true
}

// TagsAt is the reverse of Provenance: the tags compiled for one
// (rule, location) pair, in sub-index order. Nil when the pair
// produced no constraints.
func (s *System) TagsAt(rule string, loc model.Location) []int {
	return s.tagIndex[rule+"|"+loc.Key()]
}

// NumAtoms returns how many distinct ground atoms the system mentions.
func (s *System) NumAtoms() int { return len(s.atoms) }

// Atoms returns the interned atoms; the atom at position i is solver
// variable i+1.
func (s *System) Atoms() []logic.Atom { return s.atoms }

// AtomVar returns the 1-based solver variable of an atom name.
func (s *System) AtomVar(name string) int { return s.atomIndex[name] }

// Fingerprint is a stable content hash of the system, combined with
// the score fingerprint to key verification memoization.
func (s *System) Fingerprint() string { return s.fp }

// Compiler compiles rule scopes in parallel and merges the results
// deterministically.
type Compiler struct {
	pool *worker.Pool
}

// NewCompiler creates a compiler with the given worker count.
func NewCompiler(workers int) *Compiler {
	return &Compiler{pool: worker.NewPool(workers)}
}

// job is one (rule, location) unit of compilation.
type job struct {
	rule rules.Rule
	loc  model.Location
}

type jobResult struct {
	constraints []logic.Constraint
	warnings    []model.Warning
}

// Compile assembles the constraint system for a score under the given
// rule set. Constraints for different (rule, location) pairs share no
// mutable state and are compiled concurrently.
func (c *Compiler) Compile(ctx context.Context, score *model.Score, ruleSet []rules.Rule) (*System, error) {
	var jobs []job
	ruleIDs := make([]string, 0, len(ruleSet))
	for _, r := range ruleSet {
		ruleIDs = append(ruleIDs, r.ID())
		for _, loc := range r.Scope(score) {
			jobs = append(jobs, job{rule: r, loc: loc})
		}
	}

	results := make([]jobResult, len(jobs))
	err := c.pool.Run(ctx, len(jobs), func(ctx context.Context, i int) {
		cs, ws := jobs[i].rule.Compile(score, jobs[i].loc)
		for k := range cs {
			cs[k].Sub = k
		}
		results[i] = jobResult{constraints: cs, warnings: ws}
	})
	if err != nil {
		return nil, fmt.Errorf("compile cancelled: %w", err)
	}

	sys := &System{RuleIDs: ruleIDs}
	var all []logic.Constraint
	for _, res := range results {
		if len(res.constraints) == 0 && len(res.warnings) > 0 {
			sys.SkippedLocations++
		}
		if len(res.constraints) > 0 {
			sys.EvaluatedLocations++
		}
		all = append(all, res.constraints...)
		sys.Warnings = append(sys.Warnings, res.warnings...)
	}

	// Deterministic merge: completion order must not leak into tags.
	sort.Slice(all, func(a, b int) bool {
		if all[a].Rule != all[b].Rule {
			return all[a].Rule < all[b].Rule
		}
		ka, kb := all[a].Loc.Key(), all[b].Loc.Key()
		if ka != kb {
			return ka < kb
		}
		return all[a].Sub < all[b].Sub
	})
	sort.Slice(sys.Warnings, func(a, b int) bool {
		if sys.Warnings[a].Rule != sys.Warnings[b].Rule {
			return sys.Warnings[a].Rule < sys.Warnings[b].Rule
		}
		return sys.Warnings[a].Location.Key() < sys.Warnings[b].Location.Key()
	})

	sys.Constraints = make([]Tagged, len(all))
	sys.tagIndex = make(map[string][]int)
	for i, con := range all {
		sys.Constraints[i] = Tagged{Tag: i, Constraint: con}
		key := con.Rule + "|" + con.Loc.Key()
		sys.tagIndex[key] = append(sys.tagIndex[key], i)
	}

	sys.internAtoms()
	sys.fp = sys.hash()
	return sys, nil
}

func (s *System) internAtoms() {
	s.atomIndex = make(map[string]int)
	for _, con := range s.Constraints {
		for _, a := range con.Atoms() {
			if _, ok := s.atomIndex[a.Name]; !ok {
				s.atoms = append(s.atoms, a)
				s.atomIndex[a.Name] = len(s.atoms) // 1-based
			}
		}
	}
}

func (s *System) hash() string {
	h := sha256.New()
	for _, con := range s.Constraints {
		fmt.Fprintf(h, "%d|%s|%s|%d|", con.Tag, con.Rule, con.Loc.Key(), con.Sub)
		for _, cl := range con.Clauses {
			for _, l := range cl {
				fmt.Fprintf(h, "%s=%t,neg=%t;", l.Atom.Name, l.Atom.Value, l.Neg)
			}
			fmt.Fprint(h, "|")
		}
		fmt.Fprint(h, "\n")
	}
	return hex.EncodeToString(h.Sum(nil))
}
