// Package analysis answers the recurring questions of the lowering passes:
// how to partition a reduction across the execution hierarchy, what order a
// set of operations can be processed in, and what the program's call
// structure looks like. Everything here is single-threaded, synchronous
// static analysis over a read-only program graph.
package analysis

import (
	"strata/internal/ir"
	"strata/internal/layout"
	"strata/internal/numeric"
)

// IsSharedEncoding reports whether a value is staged in shared memory.
func IsSharedEncoding(v ir.Value) bool {
	if v == nil {
		return false
	}
	_, ok := v.Encoding().(*layout.SharedEncoding)
	return ok
}

// MaybeSharedAllocationOp reports whether op may allocate a shared-memory
// buffer for one of its results. The scratch allocator treats these as
// allocation points.
func MaybeSharedAllocationOp(op ir.Operation) bool {
	switch op.Name() {
	case ir.OpConvertLayout, ir.OpAllocTensor, ir.OpInsertSliceAsync, ir.OpReduce:
		return true
	}
	return false
}

// MaybeAliasOp reports whether op's result may alias one of its operands
// rather than owning fresh storage.
func MaybeAliasOp(op ir.Operation) bool {
	switch op.Name() {
	case ir.OpExtractSlice, ir.OpTranspose, ir.OpInsertSliceAsync:
		return true
	}
	return false
}

// IsSingleValue reports whether a value holds exactly one element.
func IsSingleValue(v ir.Value) bool {
	if v == nil {
		return false
	}
	return numeric.Product(v.Shape()) == 1
}

// ElementType returns the element type of a value. Present for symmetry
// with the host-IR accessors; tensors and scalars both answer through it.
func ElementType(v ir.Value) ir.Type {
	return v.Type()
}
