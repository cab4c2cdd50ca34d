package analysis

import (
	"fmt"

	"strata/internal/ir"
)

// WalkOrder selects whether a visitor fires before or after recursion.
type WalkOrder uint8

const (
	PreOrder WalkOrder = iota
	PostOrder
)

// CallEdge connects a call-site operation to the callee it resolves to.
type CallEdge struct {
	Call   ir.Operation
	Callee ir.FuncOp
}

// CycleError reports a recursive call structure. The target execution
// model cannot lower recursion, so the compilation unit must be rejected;
// the error names the call site completing the cycle so the host can point
// at it.
type CycleError struct {
	Call   ir.Operation
	Callee ir.FuncOp
}

func (e *CycleError) Error() string {
	callee := "<unknown>"
	if e.Callee != nil {
		callee = e.Callee.FuncName()
	}
	caller := "<unknown>"
	if e.Call != nil {
		if fn := e.Call.ParentFunc(); fn != nil {
			caller = fn.FuncName()
		}
	}
	return fmt.Sprintf("cycle in call graph: call from %q re-enters %q", caller, callee)
}

// NodeVisitor observes a function during a walk, together with the
// annotation map it may populate. A function shared by sibling call paths
// is visited once per reaching path, so visitors must be idempotent when
// that matters.
type NodeVisitor[T any] func(fn ir.FuncOp, data map[ir.FuncOp]T)

// EdgeVisitor observes one traversed call edge.
type EdgeVisitor func(call ir.Operation, callee ir.FuncOp)

// CallGraph records which functions call which, annotated with
// caller-supplied per-function data of type T. Construction performs a
// single traversal of the module; the graph then borrows the module
// read-only for its whole lifetime.
type CallGraph[T any] struct {
	module ir.ModuleOp
	edges  map[ir.FuncOp][]CallEdge
	data   map[ir.FuncOp]T
	roots  []ir.FuncOp
}

// NewCallGraph builds the call graph of module. Call sites whose target is
// external or otherwise unresolved are simply not recorded; every function
// defined at the top level is a root.
func NewCallGraph[T any](module ir.ModuleOp) *CallGraph[T] {
	g := &CallGraph[T]{
		module: module,
		edges:  make(map[ir.FuncOp][]CallEdge),
		data:   make(map[ir.FuncOp]T),
	}
	module.Walk(func(op ir.Operation) {
		callee, ok := module.ResolveCall(op)
		if !ok {
			return
		}
		caller := op.ParentFunc()
		if caller == nil {
			return
		}
		g.edges[caller] = append(g.edges[caller], CallEdge{Call: op, Callee: callee})
	})
	g.roots = module.Funcs()
	return g
}

// Module returns the module the graph was built from.
func (g *CallGraph[T]) Module() ir.ModuleOp { return g.module }

// Roots returns the root functions in module order.
func (g *CallGraph[T]) Roots() []ir.FuncOp { return g.roots }

// Edges returns the outgoing call edges of fn in call-site order.
func (g *CallGraph[T]) Edges(fn ir.FuncOp) []CallEdge { return g.edges[fn] }

// FuncData returns the annotation for fn, present iff a node visitor has
// populated it.
func (g *CallGraph[T]) FuncData(fn ir.FuncOp) (T, bool) {
	v, ok := g.data[fn]
	return v, ok
}

// SetFuncData stores an annotation for fn outside a walk.
func (g *CallGraph[T]) SetFuncData(fn ir.FuncOp, v T) {
	g.data[fn] = v
}

type walkFrame struct {
	fn   ir.FuncOp
	via  CallEdge // edge taken to reach fn; zero for roots
	root bool
	next int
}

// Walk traverses the graph depth-first from every root. nodeOrder selects
// whether nodeFn fires before or after the function's outgoing edges are
// visited; edgeOrder selects whether edgeFn fires before or after
// recursing into the callee. Each traversed edge fires its visitor exactly
// once.
//
// The walk keeps an explicit stack and an explicit on-active-path set, so
// deep call chains cannot exhaust the host stack. A callee reached while
// already on the active path is a cycle and aborts the walk with a
// *CycleError; a callee reached again after backtracking (a diamond) is
// legitimately retraversed, once per reaching path.
func (g *CallGraph[T]) Walk(edgeOrder, nodeOrder WalkOrder, edgeFn EdgeVisitor, nodeFn NodeVisitor[T]) error {
	for _, root := range g.roots {
		if err := g.walkFrom(root, edgeOrder, nodeOrder, edgeFn, nodeFn); err != nil {
			return err
		}
	}
	return nil
}

func (g *CallGraph[T]) walkFrom(root ir.FuncOp, edgeOrder, nodeOrder WalkOrder, edgeFn EdgeVisitor, nodeFn NodeVisitor[T]) error {
	onPath := make(map[ir.FuncOp]struct{})

	enter := func(fn ir.FuncOp) {
		onPath[fn] = struct{}{}
		if nodeOrder == PreOrder && nodeFn != nil {
			nodeFn(fn, g.data)
		}
	}

	enter(root)
	stack := []walkFrame{{fn: root, root: true}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		edges := g.edges[top.fn]
		if top.next < len(edges) {
			edge := edges[top.next]
			top.next++
			if _, active := onPath[edge.Callee]; active {
				return &CycleError{Call: edge.Call, Callee: edge.Callee}
			}
			if edgeOrder == PreOrder && edgeFn != nil {
				edgeFn(edge.Call, edge.Callee)
			}
			enter(edge.Callee)
			stack = append(stack, walkFrame{fn: edge.Callee, via: edge})
			continue
		}
		if nodeOrder == PostOrder && nodeFn != nil {
			nodeFn(top.fn, g.data)
		}
		delete(onPath, top.fn)
		done := *top
		stack = stack[:len(stack)-1]
		if !done.root && edgeOrder == PostOrder && edgeFn != nil {
			edgeFn(done.via.Call, done.via.Callee)
		}
	}
	return nil
}

// WalkOnce is the memoized variant of Walk: a global visited set replaces
// the path-local one, so every reachable function is visited exactly once
// in depth-first preorder. Cycle detection is unchanged.
func (g *CallGraph[T]) WalkOnce(nodeFn NodeVisitor[T]) error {
	visited := make(map[ir.FuncOp]struct{}, len(g.roots))
	for _, root := range g.roots {
		order, err := g.collect(root, visited)
		if err != nil {
			return err
		}
		for _, fn := range order {
			if nodeFn != nil {
				nodeFn(fn, g.data)
			}
		}
	}
	return nil
}

// TopologicalSort returns the functions ordered callees-first: every
// function is ordered before all of its callers and appears exactly once.
// Cyclic call structures yield a *CycleError and no ordering.
//
// The collection is a preorder traversal that allows duplicates when a
// function is reached via several paths; reversing it and keeping only the
// first occurrence of each function yields the callees-before-callers
// order.
func (g *CallGraph[T]) TopologicalSort() ([]ir.FuncOp, error) {
	var funcs []ir.FuncOp
	for _, root := range g.roots {
		order, err := g.collect(root, nil)
		if err != nil {
			return nil, err
		}
		funcs = append(funcs, order...)
	}

	seen := make(map[ir.FuncOp]struct{}, len(funcs))
	sorted := make([]ir.FuncOp, 0, len(funcs))
	for i := len(funcs) - 1; i >= 0; i-- {
		fn := funcs[i]
		if _, dup := seen[fn]; dup {
			continue
		}
		seen[fn] = struct{}{}
		sorted = append(sorted, fn)
	}
	return sorted, nil
}

// collect gathers functions in preorder from root. With a nil visited set
// diamonds produce duplicates (the TopologicalSort contract); with a
// non-nil one each function is collected at most once. Active-path
// revisits fail with a *CycleError either way.
func (g *CallGraph[T]) collect(root ir.FuncOp, visited map[ir.FuncOp]struct{}) ([]ir.FuncOp, error) {
	if visited != nil {
		if _, seen := visited[root]; seen {
			return nil, nil
		}
		visited[root] = struct{}{}
	}
	onPath := map[ir.FuncOp]struct{}{root: {}}
	order := []ir.FuncOp{root}
	stack := []walkFrame{{fn: root, root: true}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		edges := g.edges[top.fn]
		if top.next >= len(edges) {
			delete(onPath, top.fn)
			stack = stack[:len(stack)-1]
			continue
		}
		edge := edges[top.next]
		top.next++
		if _, active := onPath[edge.Callee]; active {
			return nil, &CycleError{Call: edge.Call, Callee: edge.Callee}
		}
		if visited != nil {
			if _, seen := visited[edge.Callee]; seen {
				continue
			}
			visited[edge.Callee] = struct{}{}
		}
		onPath[edge.Callee] = struct{}{}
		order = append(order, edge.Callee)
		stack = append(stack, walkFrame{fn: edge.Callee, via: edge})
	}
	return order, nil
}
