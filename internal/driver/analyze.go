// Package driver loads module snapshots and runs the analyses over them.
// Files are processed concurrently, but each analysis stays single-threaded
// over its own module; results come back in input order.
package driver

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"strata/internal/analysis"
	"strata/internal/diag"
	"strata/internal/ir"
	"strata/internal/layout"
	"strata/internal/tir"
)

// ReduceSummary is the analysis outcome for one reduction operation.
type ReduceSummary struct {
	OpID         uint32
	Op           string
	Axis         int
	Supported    bool
	Fast         bool
	IntraWarp    int
	InterWarp    int
	Threads      int
	ScratchBytes int
	OverBudget   bool
}

// FileResult holds everything the analyses produced for one snapshot file.
type FileResult struct {
	Path    string
	Module  *tir.Module
	Bag     *diag.Bag
	Reduces []ReduceSummary
}

// Options configures an analysis run.
type Options struct {
	Target         layout.Target
	Jobs           int
	MaxDiagnostics int
}

func (o Options) jobs() int {
	if o.Jobs > 0 {
		return o.Jobs
	}
	return runtime.NumCPU()
}

func (o Options) maxDiagnostics() int {
	if o.MaxDiagnostics > 0 {
		return o.MaxDiagnostics
	}
	return 100
}

// AnalyzeFiles loads every snapshot and summarizes each reduction operation
// it contains. The result slice is indexed like paths regardless of
// completion order.
func AnalyzeFiles(ctx context.Context, paths []string, opts Options) ([]FileResult, error) {
	results := make([]FileResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := AnalyzeFile(path, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// AnalyzeFile loads one snapshot and summarizes its reductions.
func AnalyzeFile(path string, opts Options) (FileResult, error) {
	m, err := tir.Load(path)
	if err != nil {
		return FileResult{}, err
	}
	res := AnalyzeModule(m, opts)
	res.Path = path
	return res, nil
}

// AnalyzeModule runs the reduction-layout analysis over every reduce
// operation of an already-loaded module.
func AnalyzeModule(m *tir.Module, opts Options) FileResult {
	bag := diag.NewBag(opts.maxDiagnostics())
	reporter := diag.BagReporter{Bag: bag}
	res := FileResult{Module: m, Bag: bag}

	m.Walk(func(op ir.Operation) {
		if op.Name() != ir.OpReduce {
			return
		}
		h := analysis.NewReduceOpHelper(op, opts.Target, reporter)
		sum := ReduceSummary{
			Op:        op.Name(),
			Axis:      h.Axis(),
			Supported: h.IsSupportedLayout(),
		}
		if top, ok := op.(*tir.Op); ok {
			sum.Op = top.String()
			sum.OpID = top.ID()
		}
		if sum.Supported {
			sum.Fast = h.IsFastReduction()
			sum.IntraWarp = h.IntraWarpSize()
			sum.InterWarp = h.InterWarpSize()
			sum.Threads = h.ThreadsReductionAxis()
			sum.ScratchBytes = h.ScratchSizeInBytes()
			if opts.Target.SharedMemoryBytes > 0 && sum.ScratchBytes > opts.Target.SharedMemoryBytes {
				sum.OverBudget = true
				diag.ReportWarning(reporter, diag.AnaScratchOverBudget, op,
					fmt.Sprintf("reduction needs %d scratch bytes, target provides %d",
						sum.ScratchBytes, opts.Target.SharedMemoryBytes)).
					Emit()
			}
		} else {
			diag.ReportWarning(reporter, diag.AnaUnsupportedLayout, op,
				"reduction layout is not supported; partition queries skipped").
				Emit()
		}
		res.Reduces = append(res.Reduces, sum)
	})
	return res
}
