// Package blueprint defines module actions and the dispatcher that executes
// them against a staged virtual file system.
package blueprint

import (
	"github.com/appforge/cli/internal/vfs"
)

// Kind identifies an action type.
type Kind string

const (
	// KindCreateFile stages a new file from inline content or a template.
	KindCreateFile Kind = "CREATE_FILE"

	// KindEnhanceFile rewrites an existing staged file through a modifier.
	KindEnhanceFile Kind = "ENHANCE_FILE"

	// KindInstallPackages stages dependency entries in the package manifest.
	KindInstallPackages Kind = "INSTALL_PACKAGES"

	// KindRunCommand runs a shell command in the project directory.
	KindRunCommand Kind = "RUN_COMMAND"

	// KindAddEnvVar stages a variable in the project env file.
	KindAddEnvVar Kind = "ADD_ENV_VAR"

	// KindAddDependency stages a single manifest dependency.
	KindAddDependency Kind = "ADD_DEPENDENCY"

	// KindAddScript stages a script entry in the package manifest.
	KindAddScript Kind = "ADD_SCRIPT"
)

// Kinds returns every action kind with a built-in handler.
func Kinds() []Kind {
	return []Kind{
		KindCreateFile,
		KindEnhanceFile,
		KindInstallPackages,
		KindRunCommand,
		KindAddEnvVar,
		KindAddDependency,
		KindAddScript,
	}
}

// Action is one declarative step in a module's blueprint. The populated
// fields depend on Kind; handlers validate what they need.
type Action struct {
	Kind Kind `json:"type" yaml:"type"`

	// Path targets a project-relative file for file actions.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Content is inline template content, rendered before staging.
	Content string `json:"content,omitempty" yaml:"content,omitempty"`

	// Template names a file under the module's templates directory.
	// Mutually exclusive with Content.
	Template string `json:"template,omitempty" yaml:"template,omitempty"`

	// Conflict controls CREATE_FILE behavior when the path already exists.
	Conflict *ConflictResolution `json:"conflict,omitempty" yaml:"conflict,omitempty"`

	// Modifier names the enhancement applied by ENHANCE_FILE.
	Modifier string `json:"modifier,omitempty" yaml:"modifier,omitempty"`

	// Fragment is the structured payload for fragment-based modifiers.
	Fragment map[string]any `json:"fragment,omitempty" yaml:"fragment,omitempty"`

	// Packages lists the entries for INSTALL_PACKAGES.
	Packages []PackageSpec `json:"packages,omitempty" yaml:"packages,omitempty"`

	// Name is the dependency or script name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Key and Value are the env var entry for ADD_ENV_VAR.
	Key   string `json:"key,omitempty" yaml:"key,omitempty"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`

	// Version is the dependency constraint for ADD_DEPENDENCY.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Dev marks a dev dependency.
	Dev bool `json:"dev,omitempty" yaml:"dev,omitempty"`

	// Command is the shell command for RUN_COMMAND or the script body for
	// ADD_SCRIPT.
	Command string `json:"command,omitempty" yaml:"command,omitempty"`
}

// PackageSpec is one dependency entry in an INSTALL_PACKAGES action.
type PackageSpec struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Dev     bool   `json:"dev,omitempty" yaml:"dev,omitempty"`
}

// ConflictResolution declares how CREATE_FILE handles an existing path.
type ConflictResolution struct {
	Strategy vfs.Strategy `json:"strategy" yaml:"strategy"`

	// Merge carries the enhancement to apply when Strategy is merge.
	Merge *MergeInstructions `json:"merge,omitempty" yaml:"merge,omitempty"`
}

// MergeInstructions re-targets a conflicting CREATE_FILE as an enhancement.
type MergeInstructions struct {
	Modifier string         `json:"modifier" yaml:"modifier"`
	Fragment map[string]any `json:"fragment,omitempty" yaml:"fragment,omitempty"`
}
