// Package dataflow is a small fixpoint engine: named analyses register on
// a Solver, which then sweeps the program until none of them reports a
// state change. The engine knows nothing about the lattices involved;
// each Analysis owns its own state.
package dataflow

import (
	"fmt"

	"strata/internal/ir"
)

// Analysis is one participant in the fixpoint computation.
type Analysis interface {
	// Name identifies the analysis for registration and lookup.
	Name() string
	// Prepare resets the analysis state for a module.
	Prepare(m ir.ModuleOp)
	// Visit transfers state across one operation. It returns true when
	// the analysis state changed, which schedules another sweep.
	Visit(op ir.Operation) bool
}

// Solver runs registered analyses to a fixpoint. Constructible empty;
// passes register the analyses they need before calling Run.
type Solver struct {
	analyses []Analysis
	byName   map[string]Analysis
}

func NewSolver() *Solver {
	return &Solver{byName: make(map[string]Analysis, 4)}
}

// Register adds an analysis. Registering two analyses under one name is a
// programming error and fails.
func (s *Solver) Register(a Analysis) error {
	if _, dup := s.byName[a.Name()]; dup {
		return fmt.Errorf("dataflow: analysis %q already registered", a.Name())
	}
	s.byName[a.Name()] = a
	s.analyses = append(s.analyses, a)
	return nil
}

// Lookup returns a registered analysis by name.
func (s *Solver) Lookup(name string) (Analysis, bool) {
	a, ok := s.byName[name]
	return a, ok
}

// Names returns the registered analysis names in registration order.
func (s *Solver) Names() []string {
	out := make([]string, len(s.analyses))
	for i, a := range s.analyses {
		out[i] = a.Name()
	}
	return out
}

// Run sweeps the module until no analysis reports a change. Lattices are
// finite and transfer functions monotone, so the loop terminates.
func (s *Solver) Run(m ir.ModuleOp) {
	for _, a := range s.analyses {
		a.Prepare(m)
	}
	for changed := true; changed; {
		changed = false
		m.Walk(func(op ir.Operation) {
			for _, a := range s.analyses {
				if a.Visit(op) {
					changed = true
				}
			}
		})
	}
}
