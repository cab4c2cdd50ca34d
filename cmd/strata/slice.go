package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"strata/internal/analysis"
	"strata/internal/tir"
)

var sliceOpID uint32

func init() {
	sliceCmd.Flags().Uint32Var(&sliceOpID, "op", 0, "anchor operation id (see dump output)")
	_ = sliceCmd.MarkFlagRequired("op")
}

var sliceCmd = &cobra.Command{
	Use:   "slice [flags] module.str",
	Short: "Extract the transitive slice of an operation",
	Long:  `Slice prints every operation the anchor transitively depends on or feeds, in a dependency-safe processing order.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSlice,
}

func runSlice(cmd *cobra.Command, args []string) error {
	m, err := tir.Load(args[0])
	if err != nil {
		return err
	}
	anchor, ok := m.FindOp(sliceOpID)
	if !ok {
		return fmt.Errorf("%s: no operation #%d", args[0], sliceOpID)
	}

	sorted := analysis.MultiRootGetSlice(anchor, nil, nil)
	out := cmd.OutOrStdout()
	for _, op := range sorted.Ops() {
		top, ok := op.(*tir.Op)
		if !ok {
			continue
		}
		marker := " "
		if top == anchor {
			marker = "*"
		}
		fmt.Fprintf(out, "%s #%d: %s\n", marker, top.ID(), top.String())
	}
	return nil
}

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] module.str",
	Short: "Print a module snapshot in dump syntax",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := tir.Load(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), tir.Dump(m))
		return nil
	},
}
