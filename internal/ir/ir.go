// Package ir defines the capability interfaces the analyses are written
// against. Any in-memory program graph that satisfies them can be analyzed;
// the concrete tensor IR lives in internal/tir.
//
// Handles have reference identity: two Operation values are the same node
// iff they compare equal. Analyses borrow handles and never mutate the
// graph; callers must keep the graph immutable while an analysis is alive.
package ir

import "strata/internal/layout"

// Well-known operation names. The analyses only ever match on names, so a
// host IR with a different vocabulary can still be analyzed by mapping its
// names onto these.
const (
	OpConstant         = "arith.constant"
	OpCall             = "func.call"
	OpReturn           = "func.return"
	OpReduce           = "reduce"
	OpConvertLayout    = "convert_layout"
	OpAllocTensor      = "alloc_tensor"
	OpInsertSliceAsync = "insert_slice_async"
	OpExtractSlice     = "extract_slice"
	OpTranspose        = "transpose"
	OpStore            = "store"
)

// Well-known attribute names.
const (
	AttrAxis   = "axis"
	AttrCallee = "callee"
	AttrValue  = "value"
)

// Operation is an opaque handle to one node of the program graph.
type Operation interface {
	// Name is the operation's mnemonic, e.g. "reduce".
	Name() string
	Operands() []Value
	Results() []Value
	// ParentFunc returns the enclosing function, or nil for a top-level
	// operation.
	ParentFunc() FuncOp
	IntAttr(name string) (int64, bool)
	StrAttr(name string) (string, bool)
}

// Value is typed data produced by exactly one operation (or a function
// argument, in which case DefiningOp returns nil).
type Value interface {
	Type() Type
	// Shape returns the dimension extents, nil for scalar values.
	Shape() []int64
	// Encoding returns the distribution attribute, nil when the value has
	// none (scalars, values with no layout assigned yet).
	Encoding() layout.Encoding
	DefiningOp() Operation
	// Uses returns every operation consuming this value, in program order.
	Uses() []Operation
}

// FuncOp is a function node: a named operation subtree.
type FuncOp interface {
	FuncName() string
	// Ops returns the body operations in program order.
	Ops() []Operation
}

// ModuleOp is the root of one compilation unit. It also carries the host's
// call-resolution capability: ResolveCall maps a call-site operation to the
// callee defined in this module, reporting false for non-call operations
// and for external or indirect targets.
type ModuleOp interface {
	ModuleName() string
	Funcs() []FuncOp
	LookupFunc(name string) (FuncOp, bool)
	ResolveCall(call Operation) (FuncOp, bool)
	// Walk visits every operation of every function in program order.
	Walk(fn func(Operation))
}
