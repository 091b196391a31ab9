package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/appforge/cli/internal/blueprint"
	"github.com/appforge/cli/internal/errors"
	"github.com/appforge/cli/internal/marketplace"
	"github.com/appforge/cli/internal/output"
	"github.com/appforge/cli/internal/recipe"
	"github.com/appforge/cli/internal/runner"
	"github.com/appforge/cli/internal/template"
	"github.com/appforge/cli/internal/vfs"
)

// ModuleResult is the outcome of one module execution.
type ModuleResult struct {
	ModuleID string

	// Error is nil when the module succeeded.
	Error error

	// Files lists everything flushed to disk. Empty on dry runs.
	Files []vfs.FlushedFile

	// Staged holds the staged files of a dry run, keyed by relative path.
	Staged map[string]vfs.StagedFile

	// Conflicts records every resolved file conflict.
	Conflicts []vfs.Conflict

	// Commands holds the results of RUN_COMMAND actions.
	Commands []*runner.Result

	// Warnings collects non-fatal notes, such as cross-module overwrites.
	Warnings []string

	Duration time.Duration
}

// executeModule runs every action of one module against a fresh staging
// area. Nothing touches disk until all actions succeed; a panic inside an
// action is converted into a failure result.
func (e *Engine) executeModule(ctx context.Context, m *recipe.Module) (res ModuleResult) {
	start := time.Now()
	res.ModuleID = m.ID
	defer func() {
		if r := recover(); r != nil {
			res.Error = errors.NewExecutionError(
				fmt.Sprintf("module %s panicked: %v", m.ID, r), nil, "")
		}
		res.Duration = time.Since(start)
	}()

	manifest, ok := e.manifests[m.ID]
	if !ok {
		res.Error = errors.NewNotFoundError(
			fmt.Sprintf("no manifest loaded for module %q", m.ID), "", "")
		return res
	}

	adapter, err := e.registry.Get(m.Source)
	if err != nil {
		res.Error = err
		return res
	}

	fs := vfs.New(e.root)
	renderer := template.NewRenderer(template.Data{
		Project: e.project,
		Module:  template.ModuleData{ID: m.ID, Version: m.Version},
		Params:  m.Parameters,
	})

	hctx := &blueprint.Context{
		FS:        fs,
		Renderer:  renderer,
		Modifiers: e.modifiers,
		Templates: marketplace.TemplatesFor(adapter, m.ID),
		Runner:    runner.New(e.root, nil),
		DryRun:    e.dryRun,
	}

	output.Debug("executing module", "module", m.ID, "actions", len(manifest.Actions))

	for i, action := range manifest.Actions {
		if err := e.dispatcher.Dispatch(ctx, hctx, action); err != nil {
			fs.Discard()
			res.Error = fmt.Errorf("module %s: action %d (%s): %w", m.ID, i+1, action.Kind, err)
			return res
		}
	}

	res.Conflicts = fs.Conflicts()
	res.Commands = hctx.CommandResults()

	if e.dryRun {
		res.Staged = fs.Files()
		fs.Discard()
		return res
	}

	flushed, err := fs.Flush()
	if err != nil {
		fs.Discard()
		res.Error = fmt.Errorf("module %s: flushing staged files: %w", m.ID, err)
		return res
	}
	res.Files = flushed
	res.Warnings = append(res.Warnings, e.flushes.Record(m.ID, flushed)...)
	return res
}
