package tir

import (
	"fmt"
	"sort"
	"strings"
)

// String renders an operation in the dump syntax, e.g.
//
//	%3 = reduce(%1) {axis=1} : 128xf32
func (o *Op) String() string {
	var b strings.Builder
	for i, v := range o.results {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%%%d", v.id)
	}
	if len(o.results) > 0 {
		b.WriteString(" = ")
	}
	b.WriteString(o.name)
	b.WriteString("(")
	for i, v := range o.operands {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%%%d", v.id)
	}
	b.WriteString(")")
	if attrs := o.attrString(); attrs != "" {
		b.WriteString(" {")
		b.WriteString(attrs)
		b.WriteString("}")
	}
	for i, v := range o.results {
		if i == 0 {
			b.WriteString(" : ")
		} else {
			b.WriteString(", ")
		}
		b.WriteString(v.typeString())
	}
	return b.String()
}

func (o *Op) attrString() string {
	parts := make([]string, 0, len(o.intAttrs)+len(o.strAttrs))
	for k, v := range o.intAttrs {
		parts = append(parts, fmt.Sprintf("%s=%d", k, v))
	}
	for k, v := range o.strAttrs {
		parts = append(parts, fmt.Sprintf("%s=%q", k, v))
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

func (v *Value) typeString() string {
	if len(v.shape) == 0 {
		return v.typ.String()
	}
	var b strings.Builder
	for _, d := range v.shape {
		fmt.Fprintf(&b, "%dx", d)
	}
	b.WriteString(v.typ.String())
	return b.String()
}

// Dump renders the whole module, one function per block.
func Dump(m *Module) string {
	var b strings.Builder
	fmt.Fprintf(&b, "module %s {\n", m.name)
	for _, f := range m.funcs {
		fmt.Fprintf(&b, "  func %s(", f.name)
		for i, arg := range f.args {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%%%d: %s", arg.id, arg.typeString())
		}
		b.WriteString(") {\n")
		for _, op := range f.ops {
			fmt.Fprintf(&b, "    #%d: %s\n", op.id, op.String())
		}
		b.WriteString("  }\n")
	}
	b.WriteString("}\n")
	return b.String()
}
