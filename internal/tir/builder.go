package tir

import (
	"fmt"

	"strata/internal/ir"
	"strata/internal/layout"
)

// Builder constructs a Module incrementally. It is not safe for concurrent
// use; build the module first, then hand it to the analyses.
type Builder struct {
	m *Module
}

func NewBuilder(name string) *Builder {
	return &Builder{m: &Module{
		name:   name,
		byName: make(map[string]*Func, 4),
	}}
}

// Module returns the module under construction. The builder stays usable
// afterwards, but callers must not keep building while an analysis runs.
func (b *Builder) Module() *Module { return b.m }

// AddFunc appends a function. Duplicate names panic: the builder is only
// driven by our own loader and tests, where a duplicate is a programming
// error, not an input error.
func (b *Builder) AddFunc(name string) *Func {
	if _, dup := b.m.byName[name]; dup {
		panic(fmt.Sprintf("tir: duplicate function %q", name))
	}
	f := &Func{module: b.m, name: name}
	b.m.funcs = append(b.m.funcs, f)
	b.m.byName[name] = f
	return f
}

// ValueSpec declares the type of a new value.
type ValueSpec struct {
	Type     ir.Type
	Shape    []int64
	Encoding layout.Encoding
}

// AddArg appends a function argument value.
func (f *Func) AddArg(spec ValueSpec) *Value {
	v := f.module.newValue(nil, spec)
	f.args = append(f.args, v)
	return v
}

// AddOp appends an operation with the given operands, producing one result
// per ValueSpec. Use wiring is updated on the operands.
func (f *Func) AddOp(name string, operands []*Value, results ...ValueSpec) *Op {
	op := &Op{
		fn:       f,
		id:       f.module.nextOp,
		name:     name,
		operands: operands,
	}
	f.module.nextOp++
	for _, v := range operands {
		v.uses = append(v.uses, op)
	}
	for _, spec := range results {
		op.results = append(op.results, f.module.newValue(op, spec))
	}
	f.ops = append(f.ops, op)
	return op
}

// SetIntAttr sets an integer attribute, returning the op for chaining.
func (o *Op) SetIntAttr(name string, v int64) *Op {
	if o.intAttrs == nil {
		o.intAttrs = make(map[string]int64, 2)
	}
	o.intAttrs[name] = v
	return o
}

// SetStrAttr sets a string attribute, returning the op for chaining.
func (o *Op) SetStrAttr(name, v string) *Op {
	if o.strAttrs == nil {
		o.strAttrs = make(map[string]string, 2)
	}
	o.strAttrs[name] = v
	return o
}

func (m *Module) newValue(def *Op, spec ValueSpec) *Value {
	v := &Value{
		id:    m.nextVal,
		def:   def,
		typ:   spec.Type,
		shape: spec.Shape,
		enc:   spec.Encoding,
	}
	m.nextVal++
	return v
}

// FindOp returns the operation with the given module-unique ID.
func (m *Module) FindOp(id uint32) (*Op, bool) {
	for _, f := range m.funcs {
		for _, op := range f.ops {
			if op.id == id {
				return op, true
			}
		}
	}
	return nil, false
}
