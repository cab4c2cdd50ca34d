package analysis

import (
	"fmt"

	"fortio.org/safecast"

	"strata/internal/diag"
	"strata/internal/ir"
	"strata/internal/layout"
	"strata/internal/numeric"
)

// ReduceOpHelper computes the partition strategy and scratch-memory
// requirements of one reduction operation. It borrows the operation for
// the duration of a pass; the graph must stay immutable while it is alive.
//
// Callers must check IsSupportedLayout before relying on the size and
// partition queries; their results are unspecified for layouts the helper
// does not understand.
type ReduceOpHelper struct {
	op           ir.Operation
	target       layout.Target
	axis         int
	srcShape     []int64
	srcEncoding  layout.Encoding
	srcElemTypes []ir.Type
}

// NewReduceOpHelper captures the first operand's shape and encoding as the
// reference and validates every other operand against it. Mismatches are
// reported through r and do not abort construction: analysis proceeds on
// the reference shape/encoding and downstream correctness is the caller's
// responsibility once the diagnostic has been surfaced.
func NewReduceOpHelper(op ir.Operation, target layout.Target, r diag.Reporter) *ReduceOpHelper {
	h := &ReduceOpHelper{op: op, target: target}

	operands := op.Operands()
	if len(operands) == 0 {
		return h
	}
	first := operands[0]
	h.srcShape = first.Shape()
	h.srcEncoding = first.Encoding()
	for _, res := range op.Results() {
		h.srcElemTypes = append(h.srcElemTypes, res.Type())
	}

	for i, v := range operands[1:] {
		if !shapeEqual(v.Shape(), h.srcShape) {
			diag.ReportError(r, diag.AnaShapeMismatch, op,
				fmt.Sprintf("reduce operand #%d shape %v differs from reference %v", i+1, v.Shape(), h.srcShape)).
				Emit()
		}
		if !encodingEqual(v.Encoding(), h.srcEncoding) {
			diag.ReportError(r, diag.AnaEncodingMismatch, op,
				fmt.Sprintf("reduce operand #%d encoding differs from reference", i+1)).
				Emit()
		}
	}

	axis, ok := op.IntAttr(ir.AttrAxis)
	if !ok {
		diag.ReportError(r, diag.AnaMissingAxis, op, "reduce operation without axis attribute").Emit()
		return h
	}
	h.axis = int(axis)
	if h.axis < 0 || h.axis >= len(h.srcShape) {
		diag.ReportError(r, diag.AnaAxisOutOfRange, op,
			fmt.Sprintf("reduction axis %d out of range for rank %d", h.axis, len(h.srcShape))).
			Emit()
		h.axis = 0
	}
	return h
}

// SrcShape returns the reference operand shape.
func (h *ReduceOpHelper) SrcShape() []int64 { return h.srcShape }

// SrcLayout returns the reference operand encoding.
func (h *ReduceOpHelper) SrcLayout() layout.Encoding { return h.srcEncoding }

// Axis returns the reduction axis.
func (h *ReduceOpHelper) Axis() int { return h.axis }

// IsSupportedLayout reports whether the helper knows how to partition the
// reference encoding: block-distributed layouts with per-dimension thread
// and warp counts along the reduction axis.
func (h *ReduceOpHelper) IsSupportedLayout() bool {
	e, ok := h.srcEncoding.(*layout.BlockedEncoding)
	return ok && h.axis < e.Rank()
}

// IsFastReduction reports whether all lanes sharing the reduction axis sit
// contiguously within one warp, so the reduction completes with in-register
// cross-lane exchange. False selects the basic path, which always stages
// through scratch memory.
func (h *ReduceOpHelper) IsFastReduction() bool {
	e, ok := h.srcEncoding.(*layout.BlockedEncoding)
	if !ok {
		return false
	}
	return h.axis == e.FastestDim()
}

// IntraWarpSize returns the number of lanes participating in the reduction
// within one warp. Lanes actually used are bounded by the axis extent;
// extra layout capacity along the axis stays idle.
func (h *ReduceOpHelper) IntraWarpSize() int {
	e, ok := h.srcEncoding.(*layout.BlockedEncoding)
	if !ok || h.axis >= e.Rank() {
		return 1
	}
	return max(1, min(h.axisExtent(), e.ThreadsPerWarp[h.axis]))
}

// InterWarpSize returns the number of warps that must additionally combine
// partial results across warp boundaries.
func (h *ReduceOpHelper) InterWarpSize() int {
	e, ok := h.srcEncoding.(*layout.BlockedEncoding)
	if !ok || h.axis >= e.Rank() {
		return 1
	}
	warpsNeeded := numeric.Ceil(h.axisExtent(), h.IntraWarpSize())
	return max(1, min(warpsNeeded, e.WarpsPerCTA[h.axis]))
}

// ThreadsReductionAxis returns the total number of lanes assigned to the
// reduction axis.
func (h *ReduceOpHelper) ThreadsReductionAxis() int {
	return h.IntraWarpSize() * h.InterWarpSize()
}

// ScratchConfigBasic returns the buffer shape for the fully
// shared-memory-mediated path: one slot per combination of non-reduced
// coordinate and reduction group, so every partial result is written once
// and read back once.
func (h *ReduceOpHelper) ScratchConfigBasic() []int {
	shape := numeric.Convert[int](h.srcShape)
	if h.axis < len(shape) {
		shape[h.axis] = min(shape[h.axis], h.ThreadsReductionAxis())
	}
	return shape
}

// ScratchConfigsFast returns one buffer shape per staging step of the fast
// path. Stages exist only when partial results cross warp boundaries: with
// a single participating warp the result never leaves registers and the
// sequence is empty.
func (h *ReduceOpHelper) ScratchConfigsFast() [][]int {
	inter := h.InterWarpSize()
	if inter == 1 {
		return nil
	}
	// Stage 1: each warp parks its partial, one slot per (non-reduced
	// coordinate, warp).
	stage1 := numeric.Convert[int](h.srcShape)
	if h.axis < len(stage1) {
		stage1[h.axis] = inter
	}
	// Stage 2: the final warp gathers all partials through a flat exchange
	// buffer.
	stage2 := []int{inter * h.target.WarpSize}
	return [][]int{stage1, stage2}
}

// ScratchSizeInBytes returns the total byte size of the relevant scratch
// configuration (fast if IsFastReduction, basic otherwise), summed across
// all result element types.
func (h *ReduceOpHelper) ScratchSizeInBytes() int {
	var elems int
	if h.IsFastReduction() {
		for _, shape := range h.ScratchConfigsFast() {
			elems = max(elems, numeric.Product(shape))
		}
	} else {
		elems = numeric.Product(h.ScratchConfigBasic())
	}

	bytes := 0
	for _, t := range h.srcElemTypes {
		bytes += elems * t.ByteWidth()
	}
	return bytes
}

func (h *ReduceOpHelper) axisExtent() int {
	if h.axis >= len(h.srcShape) {
		return 1
	}
	extent, err := safecast.Conv[int](h.srcShape[h.axis])
	if err != nil {
		panic(fmt.Errorf("axis extent overflow: %w", err))
	}
	return extent
}

func shapeEqual(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func encodingEqual(a, b layout.Encoding) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(b)
}
