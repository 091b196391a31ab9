// Package vfs implements the staged virtual file system scoped to one
// module's blueprint run. Nothing touches the real project tree until Flush.
package vfs

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/appforge/cli/internal/errors"
)

// State describes how a staged file relates to the real project tree.
type State string

const (
	// StateCreated marks a file that does not exist on disk yet.
	StateCreated State = "created"

	// StateModified marks a file that exists on disk and was staged with
	// new content.
	StateModified State = "modified"
)

// Strategy is a conflict resolution policy for CREATE_FILE actions.
type Strategy string

const (
	// StrategySkip keeps the existing content and reports success.
	StrategySkip Strategy = "skip"

	// StrategyReplace overwrites unconditionally.
	StrategyReplace Strategy = "replace"

	// StrategyMerge re-dispatches as an enhancement using the action's
	// merge instructions.
	StrategyMerge Strategy = "merge"

	// StrategyError fails the action. This is the default.
	StrategyError Strategy = "error"
)

// IsValid reports whether the strategy is one of the known policies.
func (s Strategy) IsValid() bool {
	switch s {
	case StrategySkip, StrategyReplace, StrategyMerge, StrategyError:
		return true
	default:
		return false
	}
}

// StagedFile is one staged path's content and state.
type StagedFile struct {
	Content string
	State   State
}

// Conflict records how a staging collision on one path was resolved.
type Conflict struct {
	Path       string
	Strategy   Strategy
	Resolution string
}

// FlushedFile describes one file written to disk by Flush.
type FlushedFile struct {
	// Path is the project-relative path, forward slashes.
	Path string

	// AbsPath is the real location the file was written to.
	AbsPath string

	// State is the staged state at flush time.
	State State

	// Content is the written content.
	Content string
}

// VFS holds one module's staged file set. It is not safe for concurrent use;
// every module execution gets its own instance.
type VFS struct {
	root      string
	files     map[string]*StagedFile
	conflicts []Conflict
}

// New creates an empty VFS rooted at the real project directory.
func New(root string) *VFS {
	return &VFS{
		root:  root,
		files: make(map[string]*StagedFile),
	}
}

// Root returns the real project directory the VFS flushes into.
func (v *VFS) Root() string {
	return v.root
}

// normalize cleans a path into the staged-key form: forward slashes,
// relative, no leading "./".
func normalize(p string) string {
	p = filepath.ToSlash(p)
	p = path.Clean(p)
	return strings.TrimPrefix(p, "./")
}

// validateKey rejects normalized keys that would land outside the project
// root: absolute paths and keys climbing out through "..".
func validateKey(key string) error {
	if key == "" || key == "." || path.IsAbs(key) || filepath.IsAbs(filepath.FromSlash(key)) ||
		key == ".." || strings.HasPrefix(key, "../") {
		return errors.NewValidationError(
			fmt.Sprintf("path %q escapes the project root", key),
			key,
			"path",
			"Blueprint paths must stay relative to the project directory.",
		)
	}
	return nil
}

// realPath maps a staged key onto the disk location under the root.
func (v *VFS) realPath(key string) string {
	return filepath.Join(v.root, filepath.FromSlash(key))
}

// FileExists reports whether the path is staged or already on disk.
func (v *VFS) FileExists(p string) bool {
	key := normalize(p)
	if _, ok := v.files[key]; ok {
		return true
	}
	info, err := os.Stat(v.realPath(key))
	return err == nil && !info.IsDir()
}

// StagedExists reports whether the path is staged, ignoring the disk.
func (v *VFS) StagedExists(p string) bool {
	_, ok := v.files[normalize(p)]
	return ok
}

// ReadFile returns the staged content, falling back to the real file under
// the root when the path is not staged.
func (v *VFS) ReadFile(p string) (string, error) {
	key := normalize(p)
	if err := validateKey(key); err != nil {
		return "", err
	}
	if f, ok := v.files[key]; ok {
		return f.Content, nil
	}

	data, err := os.ReadFile(v.realPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewNotFoundError(
				fmt.Sprintf("file %s is neither staged nor on disk", key),
				key,
				"",
			)
		}
		return "", fmt.Errorf("reading %s: %w", key, err)
	}
	return string(data), nil
}

// CreateFile stages a new file. It fails when the path already exists,
// staged or on disk; conflict policies are applied by the caller before
// reaching for WriteFile instead.
func (v *VFS) CreateFile(p, content string) error {
	key := normalize(p)
	if err := validateKey(key); err != nil {
		return err
	}
	if v.FileExists(key) {
		return errors.NewConflictError(
			fmt.Sprintf("file %s already exists", key),
			map[string]string{"Path": key},
			"Set a conflict strategy (skip, replace, merge) on the action.",
		)
	}

	v.files[key] = &StagedFile{Content: content, State: StateCreated}
	return nil
}

// WriteFile stages content unconditionally. A path already staged keeps its
// original state; an unstaged path becomes modified when the file exists on
// disk and created otherwise.
func (v *VFS) WriteFile(p, content string) error {
	key := normalize(p)
	if err := validateKey(key); err != nil {
		return err
	}
	if f, ok := v.files[key]; ok {
		f.Content = content
		return nil
	}

	state := StateCreated
	if info, err := os.Stat(v.realPath(key)); err == nil && !info.IsDir() {
		state = StateModified
	}
	v.files[key] = &StagedFile{Content: content, State: state}
	return nil
}

// Append stages the file's current content with the suffix added. The file
// must exist staged or on disk.
func (v *VFS) Append(p, content string) error {
	current, err := v.ReadFile(p)
	if err != nil {
		return err
	}
	return v.WriteFile(p, current+content)
}

// Prepend stages the file's current content with the prefix added.
func (v *VFS) Prepend(p, content string) error {
	current, err := v.ReadFile(p)
	if err != nil {
		return err
	}
	return v.WriteFile(p, content+current)
}

// RecordConflict appends to the conflict log.
func (v *VFS) RecordConflict(c Conflict) {
	v.conflicts = append(v.conflicts, c)
}

// Conflicts returns the conflict log.
func (v *VFS) Conflicts() []Conflict {
	out := make([]Conflict, len(v.conflicts))
	copy(out, v.conflicts)
	return out
}

// Len returns the number of staged files.
func (v *VFS) Len() int {
	return len(v.files)
}

// Files returns a copy of the staged set keyed by project-relative path.
func (v *VFS) Files() map[string]StagedFile {
	out := make(map[string]StagedFile, len(v.files))
	for key, f := range v.files {
		out[key] = *f
	}
	return out
}

// Paths returns the staged paths in sorted order.
func (v *VFS) Paths() []string {
	paths := make([]string, 0, len(v.files))
	for key := range v.files {
		paths = append(paths, key)
	}
	sort.Strings(paths)
	return paths
}

// Flush writes the entire staged set to disk, creating parent directories as
// needed, and clears the staging area. Callers must not flush after a failed
// action sequence; they call Discard instead.
//
// A write failure rolls back the files this flush already touched — created
// files are removed, overwritten files get their prior content back — so a
// failing module leaves no partial output behind. The staged set is kept so
// the caller can still inspect or discard it.
func (v *VFS) Flush() ([]FlushedFile, error) {
	flushed := make([]FlushedFile, 0, len(v.files))
	undo := make([]undoEntry, 0, len(v.files))

	fail := func(err error) ([]FlushedFile, error) {
		for i := len(undo) - 1; i >= 0; i-- {
			u := undo[i]
			var undoErr error
			if u.prev == nil {
				undoErr = os.Remove(u.target)
			} else {
				undoErr = os.WriteFile(u.target, u.prev, 0o644)
			}
			if undoErr != nil {
				err = fmt.Errorf("%w (rolling back %s: %v)", err, u.target, undoErr)
			}
		}
		return nil, err
	}

	for _, key := range v.Paths() {
		f := v.files[key]
		target := v.realPath(key)

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fail(fmt.Errorf("creating directory for %s: %w", key, err))
		}
		prev, err := os.ReadFile(target)
		if err != nil && !os.IsNotExist(err) {
			return fail(fmt.Errorf("reading %s before overwrite: %w", key, err))
		}
		if err := os.WriteFile(target, []byte(f.Content), 0o644); err != nil {
			return fail(fmt.Errorf("writing %s: %w", key, err))
		}
		undo = append(undo, undoEntry{target: target, prev: prev})

		flushed = append(flushed, FlushedFile{
			Path:    key,
			AbsPath: target,
			State:   f.State,
			Content: f.Content,
		})
	}

	v.files = make(map[string]*StagedFile)
	return flushed, nil
}

// undoEntry remembers one written file's prior on-disk content; nil prev
// means the file did not exist before the flush.
type undoEntry struct {
	target string
	prev   []byte
}

// Discard drops the staged set without touching the disk.
func (v *VFS) Discard() {
	v.files = make(map[string]*StagedFile)
	v.conflicts = nil
}
