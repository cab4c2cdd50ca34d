package analysis

import (
	"strata/internal/dataflow"
	"strata/internal/ir"
)

// Filter decides whether slice traversal may include and expand an
// operation. A nil Filter includes everything reachable.
type Filter func(ir.Operation) bool

// MultiRootTopologicalSort reorders toSort so that for every dependency
// edge between two operations both present in the set, the producer comes
// before its consumer. Membership is preserved exactly.
//
// The traversal is a depth-first walk from each unvisited member,
// restricted to edges whose endpoints are both in the set. A global
// visited set prunes re-exploration of shared ancestors, so each node is
// expanded exactly once even on graphs with heavy fan-in.
func MultiRootTopologicalSort(toSort *ir.OpSet) *ir.OpSet {
	sorted := ir.NewOpSet()
	visited := make(map[ir.Operation]struct{}, toSort.Len())

	type frame struct {
		op       ir.Operation
		operands []ir.Value
		next     int // index of the next operand to explore
	}

	// operands are fetched once per node, on push; the visited set
	// guarantees every node is pushed at most once
	push := func(stack []frame, op ir.Operation) []frame {
		visited[op] = struct{}{}
		return append(stack, frame{op: op, operands: op.Operands()})
	}

	for _, root := range toSort.Ops() {
		if _, seen := visited[root]; seen {
			continue
		}
		stack := push(nil, root)
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			pushed := false
			for top.next < len(top.operands) {
				def := top.operands[top.next].DefiningOp()
				top.next++
				if def == nil || !toSort.Contains(def) {
					continue
				}
				if _, seen := visited[def]; seen {
					continue
				}
				stack = push(stack, def)
				pushed = true
				break
			}
			if pushed {
				continue
			}
			// all dependencies emitted, post-order position reached
			sorted.Insert(top.op)
			stack = stack[:len(stack)-1]
		}
	}
	return sorted
}

// MultiRootGetSlice returns the transitive slice of anchor: every producer
// reachable backward through operand edges, every consumer reachable
// forward through result uses, and anchor itself, topologically sorted.
//
// A filter that rejects an operation excludes it and stops traversal
// there; operations reachable only through a rejected one are not
// included.
func MultiRootGetSlice(anchor ir.Operation, backward, forward Filter) *ir.OpSet {
	slice := ir.NewOpSet(anchor)

	collect := func(start ir.Operation, filter Filter, expand func(ir.Operation) []ir.Operation) {
		worklist := []ir.Operation{start}
		for len(worklist) > 0 {
			op := worklist[len(worklist)-1]
			worklist = worklist[:len(worklist)-1]
			for _, next := range expand(op) {
				if next == nil || slice.Contains(next) {
					continue
				}
				if filter != nil && !filter(next) {
					continue
				}
				slice.Insert(next)
				worklist = append(worklist, next)
			}
		}
	}

	collect(anchor, backward, func(op ir.Operation) []ir.Operation {
		var defs []ir.Operation
		for _, v := range op.Operands() {
			if def := v.DefiningOp(); def != nil {
				defs = append(defs, def)
			}
		}
		return defs
	})
	collect(anchor, forward, func(op ir.Operation) []ir.Operation {
		var users []ir.Operation
		for _, v := range op.Results() {
			users = append(users, v.Uses()...)
		}
		return users
	})

	return MultiRootTopologicalSort(slice)
}

// NewDataFlowSolver returns a fresh fixpoint engine with the two baseline
// analyses registered: sparse constant propagation and liveness. Passes
// needing richer analyses register them before running the solver.
func NewDataFlowSolver() *dataflow.Solver {
	s := dataflow.NewSolver()
	// Both names are fresh; registration cannot collide.
	_ = s.Register(dataflow.NewConstantPropagation())
	_ = s.Register(dataflow.NewLiveness())
	return s
}
