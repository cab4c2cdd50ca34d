// Package numeric holds small integer helpers shared by the layout and
// analysis packages. Everything here is pure arithmetic over slices.
package numeric

import "unsafe"

// Integer constrains the helpers to built-in integer types.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Product returns the product of all elements. An empty slice yields 1,
// matching the convention for the element count of a rank-0 tensor.
func Product[T Integer](vals []T) T {
	out := T(1)
	for _, v := range vals {
		out *= v
	}
	return out
}

// Ceil returns m divided by n, rounded up. n must be positive.
func Ceil[T Integer](m, n T) T {
	return (m + n - 1) / n
}

// HighestPowOf2Divisor returns the largest power of two dividing n.
// For n == 0 it returns 1 << (bits-2), the largest power of two that is
// safely representable in a signed value of T's width.
func HighestPowOf2Divisor[T Integer](n T) T {
	if n == 0 {
		return T(1) << (8*unsafe.Sizeof(n) - 2)
	}
	return n & (^(n - 1))
}

// Reorder permutes input so that out[i] = input[order[i]].
// len(order) must equal len(input).
func Reorder[T any](input []T, order []int) []T {
	out := make([]T, len(order))
	for i, src := range order {
		out[i] = input[src]
	}
	return out
}

// Convert widens or narrows a slice element-wise between integer types.
// Conversions follow Go's usual truncation rules; callers that need
// checked narrowing should go through safecast at the call site.
func Convert[TOut, TIn Integer](in []TIn) []TOut {
	out := make([]TOut, len(in))
	for i, v := range in {
		out[i] = TOut(v)
	}
	return out
}
