// Package engine executes planned batches: parallel batches fan out over a
// worker pool and collect every outcome, sequential batches fail fast, and
// the run stops after the first failed batch.
package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/appforge/cli/internal/blueprint"
	"github.com/appforge/cli/internal/marketplace"
	"github.com/appforge/cli/internal/modifier"
	"github.com/appforge/cli/internal/output"
	"github.com/appforge/cli/internal/plan"
	"github.com/appforge/cli/internal/recipe"
	"github.com/appforge/cli/internal/template"
)

// DefaultParallelism caps concurrent module executions per batch when the
// config does not say otherwise.
const DefaultParallelism = 4

// Options wires an engine to one project run.
type Options struct {
	// Registry resolves each module's marketplace.
	Registry *marketplace.Registry

	// Manifests holds the loaded manifest for every planned module.
	Manifests map[string]*marketplace.Manifest

	// Project is the genome's project block, exposed to templates.
	Project template.ProjectData

	// Root is the project directory modules flush into.
	Root string

	// Parallelism caps concurrent modules in a parallel batch.
	Parallelism int

	// DryRun stages every file action but flushes nothing and runs no
	// commands.
	DryRun bool
}

// Engine executes batches for one project.
type Engine struct {
	registry    *marketplace.Registry
	manifests   map[string]*marketplace.Manifest
	dispatcher  *blueprint.Dispatcher
	modifiers   *modifier.Registry
	project     template.ProjectData
	root        string
	parallelism int
	dryRun      bool
	flushes     *FlushRegistry
}

// New creates an engine. Parallelism below one falls back to the default.
func New(opts Options) *Engine {
	parallelism := opts.Parallelism
	if parallelism < 1 {
		parallelism = DefaultParallelism
	}
	return &Engine{
		registry:    opts.Registry,
		manifests:   opts.Manifests,
		dispatcher:  blueprint.NewDispatcher(),
		modifiers:   modifier.NewRegistry(),
		project:     opts.Project,
		root:        opts.Root,
		parallelism: parallelism,
		dryRun:      opts.DryRun,
		flushes:     NewFlushRegistry(),
	}
}

// RunResult aggregates a whole run.
type RunResult struct {
	// Success is true when every executed module succeeded.
	Success bool

	// BatchResults holds per-batch outcomes for every attempted batch.
	BatchResults []BatchResult

	// TotalExecuted counts modules that ran, including failures. Modules
	// skipped by fail-fast or a stopped run are not counted.
	TotalExecuted int

	// TotalFailed counts failed modules.
	TotalFailed int

	// Errors collects every module failure.
	Errors []error

	// Warnings collects non-fatal notes from all modules.
	Warnings []string

	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

// BatchResult is one batch's outcome.
type BatchResult struct {
	Batch    int
	Parallel bool
	Results  []ModuleResult
	Failed   int
}

// Run executes the batches in order. After any batch with a failure, the
// remaining batches are never attempted.
func (e *Engine) Run(ctx context.Context, batches []plan.Batch) *RunResult {
	start := time.Now()
	run := &RunResult{Success: true}

	for _, b := range batches {
		parallel := b.CanExecuteInParallel && len(b.Modules) > 1

		output.Debug("executing batch",
			"batch", b.Number,
			"modules", len(b.Modules),
			"parallel", parallel,
		)

		var results []ModuleResult
		if parallel {
			results = e.runParallelBatch(ctx, b)
		} else {
			results = e.runSequentialBatch(ctx, b)
		}

		br := BatchResult{Batch: b.Number, Parallel: parallel, Results: results}
		for _, r := range results {
			run.TotalExecuted++
			run.Warnings = append(run.Warnings, r.Warnings...)
			if r.Error != nil {
				br.Failed++
				run.TotalFailed++
				run.Errors = append(run.Errors, r.Error)
			}
		}
		run.BatchResults = append(run.BatchResults, br)

		if br.Failed > 0 {
			run.Success = false
			output.Debug("batch failed, stopping run", "batch", b.Number, "failed", br.Failed)
			break
		}
	}

	run.Duration = time.Since(start)
	return run
}

// runParallelBatch fans the batch out over a bounded worker pool and waits
// for every module. Failures do not short-circuit the batch.
func (e *Engine) runParallelBatch(ctx context.Context, b plan.Batch) []ModuleResult {
	jobs := make(chan *recipe.Module, len(b.Modules))
	resultCh := make(chan ModuleResult, len(b.Modules))

	workers := e.parallelism
	if workers > len(b.Modules) {
		workers = len(b.Modules)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for m := range jobs {
				select {
				case <-ctx.Done():
					resultCh <- ModuleResult{ModuleID: m.ID, Error: ctx.Err()}
					return
				default:
					resultCh <- e.executeModule(ctx, m)
				}
			}
		}()
	}

	for _, m := range b.Modules {
		jobs <- m
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]ModuleResult, 0, len(b.Modules))
	for r := range resultCh {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].ModuleID < results[j].ModuleID
	})
	return results
}

// runSequentialBatch executes modules in order, stopping at the first
// failure.
func (e *Engine) runSequentialBatch(ctx context.Context, b plan.Batch) []ModuleResult {
	results := make([]ModuleResult, 0, len(b.Modules))
	for _, m := range b.Modules {
		r := e.executeModule(ctx, m)
		results = append(results, r)
		if r.Error != nil {
			break
		}
	}
	return results
}
