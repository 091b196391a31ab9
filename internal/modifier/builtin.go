package modifier

import (
	"fmt"
	"sort"
	"strings"

	"github.com/appforge/cli/internal/errors"
	"github.com/appforge/cli/internal/output"
	"github.com/appforge/cli/internal/vfs"
)

// jsonMerge deep-merges a fragment into a JSON document.
type jsonMerge struct{}

func (jsonMerge) Name() string { return "json-merge" }

func (jsonMerge) Apply(fs *vfs.VFS, path string, in Input) error {
	if in.Fragment == nil {
		return errors.NewValidationError(
			"json-merge requires a fragment payload",
			path,
			"fragment",
			"",
		)
	}
	return fs.MergeJSON(path, in.Fragment)
}

// packageManifest merges dependency and script sections into a package
// manifest. It only ever touches the dependencies, devDependencies, and
// scripts keys so unrelated manifest fields survive untouched.
type packageManifest struct{}

func (packageManifest) Name() string { return "package-manifest" }

func (packageManifest) Apply(fs *vfs.VFS, path string, in Input) error {
	if in.Fragment == nil {
		return errors.NewValidationError(
			"package-manifest requires a fragment payload",
			path,
			"fragment",
			"",
		)
	}

	fragment := make(map[string]any, len(in.Fragment))
	for _, section := range []string{"dependencies", "devDependencies", "scripts"} {
		if val, ok := in.Fragment[section]; ok {
			fragment[section] = val
		}
	}
	if len(fragment) == 0 {
		return errors.NewValidationError(
			"package-manifest fragment has no dependencies, devDependencies, or scripts section",
			path,
			"fragment",
			"",
		)
	}

	return fs.MergeJSON(path, fragment)
}

// envFile appends KEY=value lines, creating the file when absent. Keys
// already present keep their original value.
type envFile struct{}

func (envFile) Name() string { return "env-file" }

func (envFile) Apply(fs *vfs.VFS, path string, in Input) error {
	if len(in.Fragment) == 0 {
		return errors.NewValidationError(
			"env-file requires a fragment of variable names to values",
			path,
			"fragment",
			"",
		)
	}

	current := ""
	if fs.FileExists(path) {
		content, err := fs.ReadFile(path)
		if err != nil {
			return err
		}
		current = content
	}

	existing := existingEnvKeys(current)

	keys := make([]string, 0, len(in.Fragment))
	for key := range in.Fragment {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var added []string
	for _, key := range keys {
		if existing[key] {
			output.Debug("env var already present, keeping original", "path", path, "key", key)
			continue
		}
		added = append(added, fmt.Sprintf("%s=%v", key, in.Fragment[key]))
	}
	if len(added) == 0 {
		return nil
	}

	next := current
	if next != "" && !strings.HasSuffix(next, "\n") {
		next += "\n"
	}
	next += strings.Join(added, "\n") + "\n"

	return fs.WriteFile(path, next)
}

// existingEnvKeys parses KEY=... lines, tolerating comments and blanks.
func existingEnvKeys(content string) map[string]bool {
	keys := make(map[string]bool)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if idx := strings.Index(line, "="); idx > 0 {
			keys[strings.TrimSpace(line[:idx])] = true
		}
	}
	return keys
}

// textAppend appends content to an existing file.
type textAppend struct{}

func (textAppend) Name() string { return "text-append" }

func (textAppend) Apply(fs *vfs.VFS, path string, in Input) error {
	return fs.Append(path, in.Content)
}

// textPrepend prepends content to an existing file.
type textPrepend struct{}

func (textPrepend) Name() string { return "text-prepend" }

func (textPrepend) Apply(fs *vfs.VFS, path string, in Input) error {
	return fs.Prepend(path, in.Content)
}
