package cmdutil

import (
	"strconv"
	"strings"

	"github.com/appforge/cli/internal/lockfile"
	"github.com/appforge/cli/internal/output"
	"github.com/appforge/cli/internal/plan"
)

// ShowResolution logs the resolved module set and surfaces warnings. Verbose
// mode logs each module's pinned version and source.
func ShowResolution(result *Result, verbose bool) {
	output.Debug("genome resolved",
		"modules", len(result.Resolution.Modules),
		"batches", len(result.Batches),
	)

	if verbose {
		for _, m := range result.Resolution.Modules {
			output.Debug("resolved module",
				"module", m.ID,
				"version", m.Version,
				"source", m.Source,
			)
		}
	}

	for _, c := range result.Capabilities {
		output.Debug("capability binding",
			"capability", c.Capability,
			"provider", c.Provider,
			"package", c.Package,
			"version", c.Version,
		)
	}

	for _, w := range result.Warnings {
		output.Warn(w)
	}
}

// RenderPlanTable renders the execution plan as a bordered table.
func RenderPlanTable(batches []plan.Batch) string {
	tbl := output.NewTable("BATCH", "MODE", "MODULES")
	for _, b := range batches {
		mode := "sequential"
		if b.CanExecuteInParallel {
			mode = "parallel"
		}
		tbl.Row(strconv.Itoa(b.Number), mode, strings.Join(b.IDs(), ", "))
	}
	return tbl.String()
}

// PlanView is the serializable form of the execution plan, mirroring the
// lock file's layout: a flat executionPlan id list plus the batch grouping.
type PlanView struct {
	Project string           `json:"project"`
	Modules int              `json:"modules"`
	Plan    []string         `json:"executionPlan"`
	Batches []lockfile.Batch `json:"batches"`
}

// NewPlanView builds the serializable plan from a pipeline result.
func NewPlanView(result *Result) PlanView {
	order := make([]string, 0, plan.TotalModules(result.Batches))
	batches := make([]lockfile.Batch, 0, len(result.Batches))
	for _, b := range result.Batches {
		order = append(order, b.IDs()...)
		batches = append(batches, lockfile.Batch{
			Batch:    b.Number,
			Modules:  b.IDs(),
			Parallel: b.CanExecuteInParallel,
		})
	}
	return PlanView{
		Project: result.Genome.Project.Name,
		Modules: plan.TotalModules(result.Batches),
		Plan:    order,
		Batches: batches,
	}
}
