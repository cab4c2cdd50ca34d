package dataflow

import "strata/internal/ir"

// Liveness marks operations whose results can reach an effectful
// operation. Everything else is dead code: its removal cannot change the
// program's observable behavior.
type Liveness struct {
	live map[ir.Operation]struct{}
}

func NewLiveness() *Liveness {
	return &Liveness{}
}

func (a *Liveness) Name() string { return "liveness" }

func (a *Liveness) Prepare(ir.ModuleOp) {
	a.live = make(map[ir.Operation]struct{}, 64)
}

func (a *Liveness) Visit(op ir.Operation) bool {
	if _, done := a.live[op]; done {
		return false
	}
	if !hasSideEffects(op) && !a.anyUserLive(op) {
		return false
	}
	a.live[op] = struct{}{}
	// liveness flows backward through operands; producers of a live
	// operation's inputs become live on a later sweep via anyUserLive
	return true
}

// IsLive reports whether op reached the live set. Valid after Run.
func (a *Liveness) IsLive(op ir.Operation) bool {
	_, ok := a.live[op]
	return ok
}

func (a *Liveness) anyUserLive(op ir.Operation) bool {
	for _, res := range op.Results() {
		for _, user := range res.Uses() {
			if _, ok := a.live[user]; ok {
				return true
			}
		}
	}
	return false
}

func hasSideEffects(op ir.Operation) bool {
	switch op.Name() {
	case ir.OpReturn, ir.OpCall, ir.OpStore, ir.OpInsertSliceAsync:
		return true
	}
	return false
}
