// Package layout models tensor distribution encodings: per-dimension
// assignments of elements to threads, warps and blocks. Encodings are
// immutable attribute values compared by structure, not identity.
package layout

import (
	"fmt"
	"slices"
	"strings"
)

// Encoding describes how a tensor's elements map onto parallel execution
// units across each dimension.
type Encoding interface {
	// Rank is the number of tensor dimensions the encoding covers.
	Rank() int
	// Equal is structural equality. Two values interoperate in one
	// operation only if their encodings are Equal.
	Equal(other Encoding) bool
	String() string
}

// BlockedEncoding distributes a tensor across a block of warps: each thread
// owns SizePerThread[d] contiguous elements per dimension, ThreadsPerWarp[d]
// threads and WarpsPerCTA[d] warps tile the rest. Order lists dimensions
// fastest-varying first.
type BlockedEncoding struct {
	SizePerThread  []int
	ThreadsPerWarp []int
	WarpsPerCTA    []int
	Order          []int
}

func (e *BlockedEncoding) Rank() int { return len(e.ThreadsPerWarp) }

func (e *BlockedEncoding) Equal(other Encoding) bool {
	o, ok := other.(*BlockedEncoding)
	if !ok {
		return false
	}
	return slices.Equal(e.SizePerThread, o.SizePerThread) &&
		slices.Equal(e.ThreadsPerWarp, o.ThreadsPerWarp) &&
		slices.Equal(e.WarpsPerCTA, o.WarpsPerCTA) &&
		slices.Equal(e.Order, o.Order)
}

func (e *BlockedEncoding) String() string {
	return fmt.Sprintf("blocked<sizePerThread=%v, threadsPerWarp=%v, warpsPerCTA=%v, order=%v>",
		e.SizePerThread, e.ThreadsPerWarp, e.WarpsPerCTA, e.Order)
}

// FastestDim returns the fastest-varying dimension index.
func (e *BlockedEncoding) FastestDim() int {
	if len(e.Order) == 0 {
		return 0
	}
	return e.Order[0]
}

// SharedEncoding marks a value as staged in shared memory, with the
// swizzling parameters used to avoid bank conflicts.
type SharedEncoding struct {
	Vec      int
	PerPhase int
	MaxPhase int
	Order    []int
}

func (e *SharedEncoding) Rank() int { return len(e.Order) }

func (e *SharedEncoding) Equal(other Encoding) bool {
	o, ok := other.(*SharedEncoding)
	if !ok {
		return false
	}
	return e.Vec == o.Vec && e.PerPhase == o.PerPhase && e.MaxPhase == o.MaxPhase &&
		slices.Equal(e.Order, o.Order)
}

func (e *SharedEncoding) String() string {
	return fmt.Sprintf("shared<vec=%d, perPhase=%d, maxPhase=%d, order=%v>",
		e.Vec, e.PerPhase, e.MaxPhase, e.Order)
}

// SliceEncoding is the encoding of a rank-reduced view of a parent
// encoding, with dimension Dim squeezed out. Reductions produce values
// with this encoding.
type SliceEncoding struct {
	Dim    int
	Parent Encoding
}

func (e *SliceEncoding) Rank() int {
	if e.Parent == nil {
		return 0
	}
	return e.Parent.Rank() - 1
}

func (e *SliceEncoding) Equal(other Encoding) bool {
	o, ok := other.(*SliceEncoding)
	if !ok {
		return false
	}
	if e.Dim != o.Dim {
		return false
	}
	if e.Parent == nil || o.Parent == nil {
		return e.Parent == o.Parent
	}
	return e.Parent.Equal(o.Parent)
}

func (e *SliceEncoding) String() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("slice<dim=%d, parent=", e.Dim))
	if e.Parent != nil {
		b.WriteString(e.Parent.String())
	} else {
		b.WriteString("nil")
	}
	b.WriteString(">")
	return b.String()
}
