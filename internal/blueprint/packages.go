package blueprint

import (
	"context"

	"github.com/appforge/cli/internal/errors"
	"github.com/appforge/cli/internal/modifier"
	"github.com/appforge/cli/internal/output"
)

// applyManifestFragment routes a fragment through the package-manifest
// modifier against the context's manifest path.
func applyManifestFragment(hctx *Context, fragment map[string]any) error {
	mod, err := hctx.Modifiers.Get("package-manifest")
	if err != nil {
		return err
	}
	return mod.Apply(hctx.FS, hctx.manifestPath(), modifier.Input{Fragment: fragment})
}

// installPackages handles INSTALL_PACKAGES by staging dependency entries in
// the package manifest. Nothing is fetched; installation is the scaffolded
// project's own concern.
type installPackages struct{}

func (installPackages) Kind() Kind { return KindInstallPackages }

func (installPackages) Handle(_ context.Context, hctx *Context, action Action) error {
	if len(action.Packages) == 0 {
		return errors.NewValidationError("INSTALL_PACKAGES requires at least one package", "", "packages", "")
	}

	deps := make(map[string]any)
	devDeps := make(map[string]any)
	for _, p := range action.Packages {
		if p.Name == "" {
			return errors.NewValidationError("package entry has no name", hctx.manifestPath(), "packages", "")
		}
		version := p.Version
		if version == "" {
			version = "latest"
		}
		if p.Dev {
			devDeps[p.Name] = version
		} else {
			deps[p.Name] = version
		}
	}

	fragment := make(map[string]any, 2)
	if len(deps) > 0 {
		fragment["dependencies"] = deps
	}
	if len(devDeps) > 0 {
		fragment["devDependencies"] = devDeps
	}

	return applyManifestFragment(hctx, fragment)
}

// addDependency handles ADD_DEPENDENCY, the single-entry form of
// INSTALL_PACKAGES.
type addDependency struct{}

func (addDependency) Kind() Kind { return KindAddDependency }

func (addDependency) Handle(_ context.Context, hctx *Context, action Action) error {
	if action.Name == "" {
		return errors.NewValidationError("ADD_DEPENDENCY requires a name", "", "name", "")
	}

	version := action.Version
	if version == "" {
		version = "latest"
	}

	section := "dependencies"
	if action.Dev {
		section = "devDependencies"
	}

	return applyManifestFragment(hctx, map[string]any{
		section: map[string]any{action.Name: version},
	})
}

// addScript handles ADD_SCRIPT by staging a scripts entry in the manifest.
type addScript struct{}

func (addScript) Kind() Kind { return KindAddScript }

func (addScript) Handle(_ context.Context, hctx *Context, action Action) error {
	if action.Name == "" {
		return errors.NewValidationError("ADD_SCRIPT requires a name", "", "name", "")
	}
	if action.Command == "" {
		return errors.NewValidationError("ADD_SCRIPT requires a command", "", "command", "")
	}

	return applyManifestFragment(hctx, map[string]any{
		"scripts": map[string]any{action.Name: action.Command},
	})
}

// addEnvVar handles ADD_ENV_VAR by staging the variable in the env file.
// Values are staged literally.
type addEnvVar struct{}

func (addEnvVar) Kind() Kind { return KindAddEnvVar }

func (addEnvVar) Handle(_ context.Context, hctx *Context, action Action) error {
	if action.Key == "" {
		return errors.NewValidationError("ADD_ENV_VAR requires a key", "", "key", "")
	}

	path := action.Path
	if path == "" {
		path = hctx.envPath()
	}

	mod, err := hctx.Modifiers.Get("env-file")
	if err != nil {
		return err
	}
	return mod.Apply(hctx.FS, path, modifier.Input{
		Fragment: map[string]any{action.Key: action.Value},
	})
}

// runCommand handles RUN_COMMAND. Dry runs log and skip.
type runCommand struct{}

func (runCommand) Kind() Kind { return KindRunCommand }

func (runCommand) Handle(ctx context.Context, hctx *Context, action Action) error {
	if action.Command == "" {
		return errors.NewValidationError("RUN_COMMAND requires a command", "", "command", "")
	}

	if hctx.DryRun {
		output.Debug("dry run, skipping command", "command", action.Command)
		return nil
	}

	res, err := hctx.Runner.Run(ctx, action.Command)
	if res != nil {
		hctx.recordCommand(res)
	}
	return err
}
