// Package logic holds the propositional vocabulary rules compile into.
// Verification is a decision problem over a fixed score: every atom is
// a ground fact whose truth the score already determines, and a
// constraint asserts a formula over those facts. The solver decides
// whether the asserted formulas and the facts are jointly satisfiable.
package logic

import (
	"sort"

	"github.com/cantuslabs/cantus/internal/model"
)

// Atom is a named ground fact with a known truth value. Atom names are
// globally unique within one compiled system; two constraints that
// mention the same name share the same solver variable.
type Atom struct {
	Name  string
	Value bool
}

// Fact builds an atom.
func Fact(name string, value bool) Atom {
	return Atom{Name: name, Value: value}
}

// Lit is an atom or its negation.
type Lit struct {
	Atom Atom
	Neg  bool
}

// Pos returns the positive literal of an atom.
func Pos(a Atom) Lit { return Lit{Atom: a} }

// Not returns the negated literal of an atom.
func Not(a Atom) Lit { return Lit{Atom: a, Neg: true} }

// Holds evaluates the literal against its atom's ground truth.
func (l Lit) Holds() bool { return l.Atom.Value != l.Neg }

// Clause is a disjunction of literals.
type Clause []Lit

// Holds reports whether at least one literal is true.
func (c Clause) Holds() bool {
	for _, l := range c {
		if l.Holds() {
			return true
		}
	}
	return false
}

// Constraint is a conjunction of clauses produced by one rule at one
// location. Immutable once compiled. Sub disambiguates multiple
// constraints emitted for the same (rule, location).
type Constraint struct {
	Rule    string
	Loc     model.Location
	Sub     int
	Clauses []Clause

	// Explain is the rule's explanation template already filled with
	// the concrete note values at the location.
	Explain string
}

// Holds reports whether every clause of the constraint is satisfied by
// the ground facts. This is the semantic ground truth the solver's
// answer must agree with.
func (c Constraint) Holds() bool {
	for _, cl := range c.Clauses {
		if !cl.Holds() {
			return false
		}
	}
	return true
}

// Atoms returns the distinct atoms mentioned by the constraint, sorted
// by name.
func (c Constraint) Atoms() []Atom {
	seen := map[string]Atom{}
	for _, cl := range c.Clauses {
		for _, l := range cl {
			seen[l.Atom.Name] = l.Atom
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]Atom, len(names))
	for i, n := range names {
		out[i] = seen[n]
	}
	return out
}
