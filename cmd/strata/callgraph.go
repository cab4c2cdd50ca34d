package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"strata/internal/analysis"
	"strata/internal/ir"
	"strata/internal/tir"
)

var callgraphFormat string

func init() {
	callgraphCmd.Flags().StringVar(&callgraphFormat, "format", "list", "output format (list|topo|dot)")
}

var callgraphCmd = &cobra.Command{
	Use:   "callgraph [flags] module.str",
	Short: "Show the call structure of a module",
	Long:  `Callgraph builds the module's call graph and prints it as an edge list, a callees-first topological order, or Graphviz DOT.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCallgraph,
}

func runCallgraph(cmd *cobra.Command, args []string) error {
	m, err := tir.Load(args[0])
	if err != nil {
		return err
	}
	g := analysis.NewCallGraph[struct{}](m)
	out := cmd.OutOrStdout()

	switch strings.ToLower(callgraphFormat) {
	case "list":
		return renderCallgraphList(out, g)
	case "topo":
		return renderCallgraphTopo(out, g)
	case "dot":
		return renderCallgraphDOT(out, g)
	}
	return fmt.Errorf("unsupported format %q (must be list, topo or dot)", callgraphFormat)
}

func renderCallgraphList(out io.Writer, g *analysis.CallGraph[struct{}]) error {
	for _, root := range g.Roots() {
		fmt.Fprintf(out, "%s\n", root.FuncName())
		for _, edge := range g.Edges(root) {
			fmt.Fprintf(out, "  -> %s\n", edge.Callee.FuncName())
		}
	}
	return nil
}

func renderCallgraphTopo(out io.Writer, g *analysis.CallGraph[struct{}]) error {
	sorted, err := g.TopologicalSort()
	if err != nil {
		var cycle *analysis.CycleError
		if errors.As(err, &cycle) {
			return fmt.Errorf("module is not lowerable: %w", err)
		}
		return err
	}
	for i, fn := range sorted {
		fmt.Fprintf(out, "%d. %s\n", i+1, fn.FuncName())
	}
	return nil
}

// renderCallgraphDOT emits a Graphviz digraph, one edge per call site.
func renderCallgraphDOT(out io.Writer, g *analysis.CallGraph[struct{}]) error {
	var b strings.Builder
	b.WriteString("digraph callgraph {\n")
	b.WriteString("  rankdir=TB;\n")
	b.WriteString("  node [fontname=\"monospace\", shape=box, style=rounded];\n\n")
	for _, root := range g.Roots() {
		fmt.Fprintf(&b, "  %q;\n", root.FuncName())
	}
	seen := make(map[ir.FuncOp]bool, len(g.Roots()))
	for _, root := range g.Roots() {
		emitDOTEdges(&b, g, root, seen)
	}
	b.WriteString("}\n")
	_, err := io.WriteString(out, b.String())
	return err
}

func emitDOTEdges(b *strings.Builder, g *analysis.CallGraph[struct{}], fn ir.FuncOp, seen map[ir.FuncOp]bool) {
	if seen[fn] {
		return
	}
	seen[fn] = true
	for _, edge := range g.Edges(fn) {
		fmt.Fprintf(b, "  %q -> %q;\n", fn.FuncName(), edge.Callee.FuncName())
		emitDOTEdges(b, g, edge.Callee, seen)
	}
}
