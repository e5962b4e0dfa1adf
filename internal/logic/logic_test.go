package logic

import (
	"testing"

	"github.com/cantuslabs/cantus/internal/model"
)

func TestLit_Holds(t *testing.T) {
	tr := Fact("a", true)
	fa := Fact("b", false)

	if !Pos(tr).Holds() {
		t.Error("Expected Pos(true atom) to hold")
	}
	if Pos(fa).Holds() {
		t.Error("Expected Pos(false atom) not to hold")
	}
	if Not(tr).Holds() {
		t.Error("Expected Not(true atom) not to hold")
	}
	if !Not(fa).Holds() {
		t.Error("Expected Not(false atom) to hold")
	}
}

func TestClause_Holds(t *testing.T) {
	tr := Fact("a", true)
	fa := Fact("b", false)

	if !(Clause{Pos(fa), Pos(tr)}).Holds() {
		t.Error("Expected clause with one true literal to hold")
	}
	if (Clause{Pos(fa), Not(tr)}).Holds() {
		t.Error("Expected clause with no true literal not to hold")
	}
	if (Clause{}).Holds() {
		t.Error("Expected empty clause not to hold")
	}
}

func TestConstraint_Holds(t *testing.T) {
	tr := Fact("a", true)
	fa := Fact("b", false)

	sat := Constraint{
		Rule: "r",
		Loc:  model.NoteLocation(0, 0, 0),
		Clauses: []Clause{
			{Pos(tr)},
			{Not(fa)},
		},
	}
	if !sat.Holds() {
		t.Error("Expected constraint with all clauses satisfied to hold")
	}

	unsat := Constraint{
		Rule: "r",
		Loc:  model.NoteLocation(0, 0, 0),
		Clauses: []Clause{
			{Pos(tr)},
			{Pos(fa)},
		},
	}
	if unsat.Holds() {
		t.Error("Expected constraint with a falsified clause not to hold")
	}
}

func TestConstraint_Atoms(t *testing.T) {
	a := Fact("x/2", true)
	b := Fact("x/1", false)

	c := Constraint{
		Clauses: []Clause{
			{Pos(a), Pos(b)},
			{Not(a)},
		},
	}

	atoms := c.Atoms()
	if len(atoms) != 2 {
		t.Fatalf("Expected 2 distinct atoms, got %d", len(atoms))
	}
	if atoms[0].Name != "x/1" || atoms[1].Name != "x/2" {
		t.Errorf("Expected atoms sorted by name, got %v", atoms)
	}
}
