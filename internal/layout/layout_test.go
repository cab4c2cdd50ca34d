package layout

import "testing"

func TestBlockedEncodingEqual(t *testing.T) {
	a := &BlockedEncoding{
		SizePerThread:  []int{1, 1},
		ThreadsPerWarp: []int{4, 8},
		WarpsPerCTA:    []int{2, 2},
		Order:          []int{1, 0},
	}
	b := &BlockedEncoding{
		SizePerThread:  []int{1, 1},
		ThreadsPerWarp: []int{4, 8},
		WarpsPerCTA:    []int{2, 2},
		Order:          []int{1, 0},
	}
	if !a.Equal(b) {
		t.Fatalf("identical blocked encodings should be Equal")
	}
	b.WarpsPerCTA = []int{4, 1}
	if a.Equal(b) {
		t.Fatalf("encodings with different warpsPerCTA should differ")
	}
	if a.Equal(&SharedEncoding{Order: []int{1, 0}}) {
		t.Fatalf("blocked and shared encodings should never be Equal")
	}
}

func TestBlockedEncodingFastestDim(t *testing.T) {
	e := &BlockedEncoding{
		SizePerThread:  []int{1, 1},
		ThreadsPerWarp: []int{4, 8},
		WarpsPerCTA:    []int{1, 1},
		Order:          []int{1, 0},
	}
	if got := e.FastestDim(); got != 1 {
		t.Fatalf("FastestDim = %d, want 1", got)
	}
	if got := e.Rank(); got != 2 {
		t.Fatalf("Rank = %d, want 2", got)
	}
}

func TestSliceEncodingEqual(t *testing.T) {
	parent := &BlockedEncoding{
		SizePerThread:  []int{1, 1},
		ThreadsPerWarp: []int{4, 8},
		WarpsPerCTA:    []int{1, 1},
		Order:          []int{1, 0},
	}
	a := &SliceEncoding{Dim: 1, Parent: parent}
	b := &SliceEncoding{Dim: 1, Parent: parent}
	if !a.Equal(b) {
		t.Fatalf("slice encodings with same dim and parent should be Equal")
	}
	if a.Rank() != 1 {
		t.Fatalf("slice of rank-2 parent should have rank 1, got %d", a.Rank())
	}
	c := &SliceEncoding{Dim: 0, Parent: parent}
	if a.Equal(c) {
		t.Fatalf("slice encodings with different dims should differ")
	}
}
