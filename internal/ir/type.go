package ir

import "fmt"

// TypeKind enumerates element type families.
type TypeKind uint8

const (
	// KindInt is a signed or signless integer.
	KindInt TypeKind = iota
	// KindFloat is an IEEE float.
	KindFloat
)

// Type is a tensor element type: a kind plus a bit width.
type Type struct {
	Kind TypeKind
	Bits int
}

// ByteWidth returns the storage width in bytes. Sub-byte types report 0,
// matching the bit-width/8 convention of the element size math downstream.
func (t Type) ByteWidth() int { return t.Bits / 8 }

func (t Type) String() string {
	switch t.Kind {
	case KindInt:
		return fmt.Sprintf("i%d", t.Bits)
	case KindFloat:
		return fmt.Sprintf("f%d", t.Bits)
	}
	return fmt.Sprintf("type(kind=%d, bits=%d)", t.Kind, t.Bits)
}

// Common element types.
var (
	I8  = Type{Kind: KindInt, Bits: 8}
	I16 = Type{Kind: KindInt, Bits: 16}
	I32 = Type{Kind: KindInt, Bits: 32}
	I64 = Type{Kind: KindInt, Bits: 64}
	F16 = Type{Kind: KindFloat, Bits: 16}
	F32 = Type{Kind: KindFloat, Bits: 32}
	F64 = Type{Kind: KindFloat, Bits: 64}
)
