package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"strata/internal/driver"
	"strata/internal/layout"
	"strata/internal/observ"
	"strata/internal/project"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] module.str...",
	Short: "Report reduction partitioning and scratch sizing for modules",
	Long:  `Analyze loads module snapshots and reports, per reduction operation, the partition across the execution hierarchy and the scratch memory it needs.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnalyze,
}

var (
	reportHeaderStyle = lipgloss.NewStyle().Bold(true)
	reportPathStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	reportFastStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	reportBasicStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	reportBadStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func runAnalyze(cmd *cobra.Command, args []string) error {
	configureColor(cmd)
	logger := loggerFor(cmd, os.Stderr)
	timer := observ.NewTimer()

	opts, err := driverOptions(cmd)
	if err != nil {
		return err
	}

	phase := timer.Begin("analyze")
	results, err := driver.AnalyzeFiles(cmd.Context(), args, opts)
	timer.End(phase, fmt.Sprintf("%d files", len(args)))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, res := range results {
		fmt.Fprintln(out, reportPathStyle.Render(res.Path))
		if len(res.Reduces) == 0 {
			fmt.Fprintln(out, "  no reduction operations")
		} else {
			renderReduceTable(cmd, res)
		}
		printDiagnostics(res.Bag)
		fmt.Fprintln(out)
	}

	if timings, _ := cmd.Root().PersistentFlags().GetBool("timings"); timings {
		logger.Info(timer.Summary())
	}
	return nil
}

func renderReduceTable(cmd *cobra.Command, res driver.FileResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  %s\n", reportHeaderStyle.Render(
		fmt.Sprintf("%-6s %-6s %-6s %8s %8s %8s %12s", "op", "axis", "path", "intra", "inter", "threads", "scratch")))
	for _, sum := range res.Reduces {
		if !sum.Supported {
			fmt.Fprintf(out, "  %-6s %-6d %s\n", fmt.Sprintf("#%d", sum.OpID), sum.Axis,
				reportBadStyle.Render("unsupported layout"))
			continue
		}
		path := reportBasicStyle.Render("basic")
		if sum.Fast {
			path = reportFastStyle.Render("fast")
		}
		scratch := fmt.Sprintf("%d B", sum.ScratchBytes)
		if sum.OverBudget {
			scratch = reportBadStyle.Render(scratch + " (over budget)")
		}
		fmt.Fprintf(out, "  %-6s %-6d %-6s %8d %8d %8d %12s\n",
			fmt.Sprintf("#%d", sum.OpID), sum.Axis, path,
			sum.IntraWarp, sum.InterWarp, sum.Threads, scratch)
	}
}

// driverOptions assembles the analysis options from the global flags and,
// when present, the strata.toml manifest.
func driverOptions(cmd *cobra.Command) (driver.Options, error) {
	jobs, _ := cmd.Root().PersistentFlags().GetInt("jobs")
	maxDiag, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")

	target := layout.DefaultTarget()
	manifest, ok, err := project.Load(".")
	if err != nil {
		return driver.Options{}, err
	}
	if ok {
		target = manifest.Config.Target()
		if maxDiag == 100 {
			maxDiag = manifest.Config.MaxDiagnostics()
		}
	}
	return driver.Options{
		Target:         target,
		Jobs:           jobs,
		MaxDiagnostics: maxDiag,
	}, nil
}
