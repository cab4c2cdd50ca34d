package analysis

import (
	"errors"
	"fmt"
	"testing"

	"strata/internal/ir"
	"strata/internal/tir"
)

// buildProgram assembles a module from func -> callees wiring. Call order
// within a function follows the callee list.
func buildProgram(funcs []string, calls map[string][]string) *tir.Module {
	b := tir.NewBuilder("prog")
	for _, name := range funcs {
		b.AddFunc(name)
	}
	m := b.Module()
	for _, name := range funcs {
		fn, _ := m.LookupFunc(name)
		for _, callee := range calls[name] {
			fn.(*tir.Func).AddOp(ir.OpCall, nil).SetStrAttr(ir.AttrCallee, callee)
		}
	}
	return m
}

func names(funcs []ir.FuncOp) []string {
	out := make([]string, len(funcs))
	for i, fn := range funcs {
		out[i] = fn.FuncName()
	}
	return out
}

func indexOf(t *testing.T, order []string, name string) int {
	t.Helper()
	for i, got := range order {
		if got == name {
			return i
		}
	}
	t.Fatalf("function %q missing from order %v", name, order)
	return -1
}

func TestCallGraphSingleFunction(t *testing.T) {
	m := buildProgram([]string{"main"}, nil)
	g := NewCallGraph[int](m)

	if len(g.Roots()) != 1 {
		t.Fatalf("got %d roots, want 1", len(g.Roots()))
	}
	if edges := g.Edges(g.Roots()[0]); len(edges) != 0 {
		t.Fatalf("got %d edges, want 0", len(edges))
	}
	sorted, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("TopologicalSort: %v", err)
	}
	if got := names(sorted); len(got) != 1 || got[0] != "main" {
		t.Fatalf("TopologicalSort = %v, want [main]", got)
	}
}

func TestCallGraphDiamondTopologicalSort(t *testing.T) {
	m := buildProgram([]string{"main", "f", "g", "h"}, map[string][]string{
		"main": {"f", "g"},
		"f":    {"h"},
		"g":    {"h"},
	})
	g := NewCallGraph[int](m)

	sorted, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("TopologicalSort: %v", err)
	}
	order := names(sorted)
	if len(order) != 4 {
		t.Fatalf("TopologicalSort = %v, want 4 unique functions", order)
	}
	h := indexOf(t, order, "h")
	if h > indexOf(t, order, "f") || h > indexOf(t, order, "g") || h > indexOf(t, order, "main") {
		t.Fatalf("h must precede its callers in %v", order)
	}
	if indexOf(t, order, "main") != len(order)-1 {
		t.Fatalf("main has no callers and must come last in %v", order)
	}
}

func TestCallGraphCycleIsFatal(t *testing.T) {
	m := buildProgram([]string{"A", "B"}, map[string][]string{
		"A": {"B"},
		"B": {"A"},
	})
	g := NewCallGraph[int](m)

	if _, err := g.TopologicalSort(); err == nil {
		t.Fatalf("cyclic call graph must not produce an ordering")
	} else {
		var cycle *CycleError
		if !errors.As(err, &cycle) {
			t.Fatalf("want *CycleError, got %T: %v", err, err)
		}
		if cycle.Callee == nil || cycle.Call == nil {
			t.Fatalf("cycle error must name the call site and callee")
		}
	}

	err := g.Walk(PreOrder, PreOrder, nil, nil)
	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("Walk on cyclic graph: want *CycleError, got %v", err)
	}
}

func TestCallGraphWalkVisitsDiamondPerPath(t *testing.T) {
	m := buildProgram([]string{"main", "f", "g", "h"}, map[string][]string{
		"main": {"f", "g"},
		"f":    {"h"},
		"g":    {"h"},
	})
	g := NewCallGraph[int](m)

	nodeVisits := map[string]int{}
	edgeVisits := 0
	err := g.Walk(PreOrder, PreOrder,
		func(call ir.Operation, callee ir.FuncOp) { edgeVisits++ },
		func(fn ir.FuncOp, data map[ir.FuncOp]int) {
			nodeVisits[fn.FuncName()]++
			data[fn] = data[fn] + 1
		})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	// each traversed edge fires its visitor exactly once; the graph walks
	// f,g,h from main and then f,g,h again from the f and g roots
	wantEdges := 4 + 1 + 1
	if edgeVisits != wantEdges {
		t.Fatalf("edge visitor fired %d times, want %d", edgeVisits, wantEdges)
	}
	// h is shared by sibling paths: revisited once per reaching path
	if nodeVisits["h"] != 4 {
		t.Fatalf("h visited %d times, want 4 (per reaching path, incl. f/g roots)", nodeVisits["h"])
	}
	if count, ok := g.FuncData(mustFunc(t, m, "h")); !ok || count != 4 {
		t.Fatalf("annotation for h = %d,%v, want 4,true", count, ok)
	}
}

func TestCallGraphWalkOrders(t *testing.T) {
	m := buildProgram([]string{"main", "f"}, map[string][]string{
		"main": {"f"},
	})

	walkTrace := func(edgeOrder, nodeOrder WalkOrder) []string {
		g := NewCallGraph[struct{}](m)
		var trace []string
		err := g.Walk(edgeOrder, nodeOrder,
			func(call ir.Operation, callee ir.FuncOp) {
				trace = append(trace, "edge:"+callee.FuncName())
			},
			func(fn ir.FuncOp, _ map[ir.FuncOp]struct{}) {
				trace = append(trace, "node:"+fn.FuncName())
			})
		if err != nil {
			t.Fatalf("Walk: %v", err)
		}
		return trace
	}

	cases := []struct {
		edgeOrder, nodeOrder WalkOrder
		want                 []string
	}{
		{PreOrder, PreOrder, []string{"node:main", "edge:f", "node:f", "node:f"}},
		{PreOrder, PostOrder, []string{"edge:f", "node:f", "node:main", "node:f"}},
		{PostOrder, PreOrder, []string{"node:main", "node:f", "edge:f", "node:f"}},
		{PostOrder, PostOrder, []string{"node:f", "edge:f", "node:main", "node:f"}},
	}
	for _, tc := range cases {
		got := walkTrace(tc.edgeOrder, tc.nodeOrder)
		if fmt.Sprint(got) != fmt.Sprint(tc.want) {
			t.Fatalf("walk(%d,%d) trace = %v, want %v", tc.edgeOrder, tc.nodeOrder, got, tc.want)
		}
	}
}

func TestCallGraphWalkOnce(t *testing.T) {
	m := buildProgram([]string{"main", "f", "g", "h"}, map[string][]string{
		"main": {"f", "g"},
		"f":    {"h"},
		"g":    {"h"},
	})
	g := NewCallGraph[struct{}](m)

	visits := map[string]int{}
	if err := g.WalkOnce(func(fn ir.FuncOp, _ map[ir.FuncOp]struct{}) {
		visits[fn.FuncName()]++
	}); err != nil {
		t.Fatalf("WalkOnce: %v", err)
	}
	for name, count := range visits {
		if count != 1 {
			t.Fatalf("WalkOnce visited %s %d times, want 1", name, count)
		}
	}
	if len(visits) != 4 {
		t.Fatalf("WalkOnce reached %d functions, want 4", len(visits))
	}
}

func TestCallGraphUnresolvedCallIgnored(t *testing.T) {
	b := tir.NewBuilder("prog")
	fn := b.AddFunc("main")
	fn.AddOp(ir.OpCall, nil).SetStrAttr(ir.AttrCallee, "extern_fn")
	fn.AddOp(ir.OpCall, nil) // indirect call, no callee attribute
	g := NewCallGraph[struct{}](b.Module())

	if edges := g.Edges(mustFunc(t, b.Module(), "main")); len(edges) != 0 {
		t.Fatalf("unresolved calls must not create edges, got %d", len(edges))
	}
}

func mustFunc(t *testing.T, m *tir.Module, name string) ir.FuncOp {
	t.Helper()
	fn, ok := m.LookupFunc(name)
	if !ok {
		t.Fatalf("function %q not found", name)
	}
	return fn
}
