package dataflow

import "strata/internal/ir"

// ConstLattice is the three-point lattice of sparse constant propagation.
type ConstLattice uint8

const (
	// ConstUnknown: no fact yet.
	ConstUnknown ConstLattice = iota
	// ConstValue: proven to be a single integer constant.
	ConstValue
	// ConstOverdefined: proven to vary.
	ConstOverdefined
)

type constFact struct {
	lattice ConstLattice
	value   int64
}

// ConstantPropagation marks every value that is provably a compile-time
// integer constant. Constants originate at constant operations; any value
// produced by another operation is overdefined.
type ConstantPropagation struct {
	facts map[ir.Value]constFact
}

func NewConstantPropagation() *ConstantPropagation {
	return &ConstantPropagation{}
}

func (a *ConstantPropagation) Name() string { return "constant-propagation" }

func (a *ConstantPropagation) Prepare(ir.ModuleOp) {
	a.facts = make(map[ir.Value]constFact, 64)
}

func (a *ConstantPropagation) Visit(op ir.Operation) bool {
	changed := false
	if op.Name() == ir.OpConstant {
		v, ok := op.IntAttr(ir.AttrValue)
		if ok {
			for _, res := range op.Results() {
				changed = a.update(res, constFact{lattice: ConstValue, value: v}) || changed
			}
			return changed
		}
	}
	for _, res := range op.Results() {
		changed = a.update(res, constFact{lattice: ConstOverdefined}) || changed
	}
	return changed
}

// Constant returns the proven constant for v, if any.
func (a *ConstantPropagation) Constant(v ir.Value) (int64, bool) {
	fact, ok := a.facts[v]
	if !ok || fact.lattice != ConstValue {
		return 0, false
	}
	return fact.value, true
}

func (a *ConstantPropagation) update(v ir.Value, fact constFact) bool {
	old, ok := a.facts[v]
	if ok && old == fact {
		return false
	}
	// facts only move down the lattice; a constant never un-proves itself
	if ok && old.lattice == ConstOverdefined {
		return false
	}
	a.facts[v] = fact
	return true
}
