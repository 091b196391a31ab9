package blueprint

import (
	"context"
	"fmt"

	"github.com/appforge/cli/internal/errors"
	"github.com/appforge/cli/internal/modifier"
	"github.com/appforge/cli/internal/output"
	"github.com/appforge/cli/internal/vfs"
)

// resolveContent renders an action's payload: a named template from the
// module's marketplace, or inline content. Setting both is a declaration
// error.
func resolveContent(ctx context.Context, hctx *Context, action Action) (string, error) {
	if action.Template != "" && action.Content != "" {
		return "", errors.NewValidationError(
			"action sets both content and template",
			action.Path,
			"content",
			"Declare inline content or a template file, not both.",
		)
	}

	if action.Template != "" {
		raw, err := hctx.Templates.LoadTemplate(ctx, action.Template)
		if err != nil {
			return "", err
		}
		return hctx.Renderer.Render(action.Template, raw)
	}

	return hctx.Renderer.RenderString(action.Content)
}

// createFile handles CREATE_FILE, applying the action's conflict strategy
// when the target already exists.
type createFile struct{}

func (createFile) Kind() Kind { return KindCreateFile }

func (createFile) Handle(ctx context.Context, hctx *Context, action Action) error {
	if action.Path == "" {
		return errors.NewValidationError("CREATE_FILE requires a path", "", "path", "")
	}

	content, err := resolveContent(ctx, hctx, action)
	if err != nil {
		return err
	}

	if !hctx.FS.FileExists(action.Path) {
		return hctx.FS.CreateFile(action.Path, content)
	}

	strategy := vfs.StrategyError
	var merge *MergeInstructions
	if action.Conflict != nil {
		if action.Conflict.Strategy != "" {
			if !action.Conflict.Strategy.IsValid() {
				return errors.NewValidationError(
					fmt.Sprintf("unknown conflict strategy %q", action.Conflict.Strategy),
					action.Path,
					"conflict.strategy",
					"Use skip, replace, merge, or error.",
				)
			}
			strategy = action.Conflict.Strategy
		}
		merge = action.Conflict.Merge
	}

	switch strategy {
	case vfs.StrategySkip:
		output.Debug("create skipped, file exists", "path", action.Path)
		hctx.FS.RecordConflict(vfs.Conflict{
			Path:       action.Path,
			Strategy:   strategy,
			Resolution: "skipped",
		})
		return nil

	case vfs.StrategyReplace:
		if err := hctx.FS.WriteFile(action.Path, content); err != nil {
			return err
		}
		hctx.FS.RecordConflict(vfs.Conflict{
			Path:       action.Path,
			Strategy:   strategy,
			Resolution: "replaced",
		})
		return nil

	case vfs.StrategyMerge:
		if merge == nil || merge.Modifier == "" {
			return errors.NewValidationError(
				"merge strategy requires merge instructions with a modifier",
				action.Path,
				"conflict.merge",
				"",
			)
		}
		enhance := Action{
			Kind:     KindEnhanceFile,
			Path:     action.Path,
			Content:  content,
			Modifier: merge.Modifier,
			Fragment: merge.Fragment,
		}
		if err := (enhanceFile{}).Handle(ctx, hctx, enhance); err != nil {
			return err
		}
		hctx.FS.RecordConflict(vfs.Conflict{
			Path:       action.Path,
			Strategy:   strategy,
			Resolution: "merged",
		})
		return nil

	default:
		return errors.NewConflictError(
			fmt.Sprintf("file %s already exists", action.Path),
			map[string]string{"Path": action.Path},
			"Set conflict.strategy to skip, replace, or merge on the action.",
		)
	}
}

// enhanceFile handles ENHANCE_FILE by delegating to a named modifier.
type enhanceFile struct{}

func (enhanceFile) Kind() Kind { return KindEnhanceFile }

func (enhanceFile) Handle(ctx context.Context, hctx *Context, action Action) error {
	if action.Path == "" {
		return errors.NewValidationError("ENHANCE_FILE requires a path", "", "path", "")
	}
	if action.Modifier == "" {
		return errors.NewValidationError("ENHANCE_FILE requires a modifier", action.Path, "modifier", "")
	}

	mod, err := hctx.Modifiers.Get(action.Modifier)
	if err != nil {
		return err
	}

	content := ""
	if action.Content != "" || action.Template != "" {
		content, err = resolveContent(ctx, hctx, action)
		if err != nil {
			return err
		}
	}

	return mod.Apply(hctx.FS, action.Path, modifier.Input{
		Content:  content,
		Fragment: action.Fragment,
	})
}
