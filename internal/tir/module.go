// Package tir is the in-memory tensor IR used by the driver, the CLI and
// the tests. It is one concrete implementation of the capability
// interfaces in internal/ir; the analyses never depend on it directly.
package tir

import (
	"strata/internal/ir"
	"strata/internal/layout"
)

// Module is the root of one compilation unit.
type Module struct {
	name    string
	funcs   []*Func
	byName  map[string]*Func
	nextOp  uint32
	nextVal uint32
}

// Func is a function: a named, ordered list of operations.
type Func struct {
	module *Module
	name   string
	args   []*Value
	ops    []*Op
}

// Op is one operation node. Identity is pointer identity.
type Op struct {
	fn       *Func
	id       uint32
	name     string
	operands []*Value
	results  []*Value
	intAttrs map[string]int64
	strAttrs map[string]string
}

// Value is typed data produced by an operation or a function argument.
type Value struct {
	id    uint32
	def   *Op // nil for function arguments
	typ   ir.Type
	shape []int64
	enc   layout.Encoding
	uses  []*Op
}

func (m *Module) ModuleName() string { return m.name }

func (m *Module) Funcs() []ir.FuncOp {
	out := make([]ir.FuncOp, len(m.funcs))
	for i, f := range m.funcs {
		out[i] = f
	}
	return out
}

func (m *Module) LookupFunc(name string) (ir.FuncOp, bool) {
	f, ok := m.byName[name]
	if !ok {
		return nil, false
	}
	return f, true
}

// ResolveCall implements the call-resolution capability: a call operation
// with a callee attribute naming a function defined in this module resolves
// to that function. Anything else (non-call ops, external targets) does not.
func (m *Module) ResolveCall(call ir.Operation) (ir.FuncOp, bool) {
	if call == nil || call.Name() != ir.OpCall {
		return nil, false
	}
	callee, ok := call.StrAttr(ir.AttrCallee)
	if !ok {
		return nil, false
	}
	return m.LookupFunc(callee)
}

// Walk visits every operation of every function in program order.
func (m *Module) Walk(fn func(ir.Operation)) {
	for _, f := range m.funcs {
		for _, op := range f.ops {
			fn(op)
		}
	}
}

func (f *Func) FuncName() string { return f.name }

func (f *Func) Ops() []ir.Operation {
	out := make([]ir.Operation, len(f.ops))
	for i, op := range f.ops {
		out[i] = op
	}
	return out
}

// Args returns the function's argument values.
func (f *Func) Args() []*Value { return f.args }

func (o *Op) Name() string { return o.name }

// ID is a module-unique operation number, stable across a snapshot
// round-trip. The CLI uses it to address operations from the command line.
func (o *Op) ID() uint32 { return o.id }

func (o *Op) Operands() []ir.Value {
	out := make([]ir.Value, len(o.operands))
	for i, v := range o.operands {
		out[i] = v
	}
	return out
}

func (o *Op) Results() []ir.Value {
	out := make([]ir.Value, len(o.results))
	for i, v := range o.results {
		out[i] = v
	}
	return out
}

func (o *Op) ParentFunc() ir.FuncOp {
	if o.fn == nil {
		return nil
	}
	return o.fn
}

func (o *Op) IntAttr(name string) (int64, bool) {
	v, ok := o.intAttrs[name]
	return v, ok
}

func (o *Op) StrAttr(name string) (string, bool) {
	v, ok := o.strAttrs[name]
	return v, ok
}

func (v *Value) Type() ir.Type { return v.typ }

func (v *Value) Shape() []int64 { return v.shape }

func (v *Value) Encoding() layout.Encoding { return v.enc }

func (v *Value) DefiningOp() ir.Operation {
	if v.def == nil {
		return nil
	}
	return v.def
}

func (v *Value) Uses() []ir.Operation {
	out := make([]ir.Operation, len(v.uses))
	for i, op := range v.uses {
		out[i] = op
	}
	return out
}
