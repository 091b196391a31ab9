package blueprint

import (
	"context"
	"fmt"

	"github.com/appforge/cli/internal/errors"
	"github.com/appforge/cli/internal/modifier"
	"github.com/appforge/cli/internal/runner"
	"github.com/appforge/cli/internal/template"
	"github.com/appforge/cli/internal/vfs"
)

// CodeHandlerNotFound is the stable error code for dispatching an action
// kind with no registered handler.
const CodeHandlerNotFound = "ACTION_HANDLER_NOT_FOUND"

// Default staging targets for the package-level actions.
const (
	defaultManifestPath = "package.json"
	defaultEnvPath      = ".env"
)

// HandlerNotFoundError reports an action kind the dispatcher cannot route.
type HandlerNotFoundError struct {
	Kind Kind
}

func (e *HandlerNotFoundError) Error() string {
	return fmt.Sprintf("%s: no handler registered for action kind %q", CodeHandlerNotFound, e.Kind)
}

// Unwrap lets callers match with errors.Is against the not-found sentinel.
func (e *HandlerNotFoundError) Unwrap() error {
	return errors.ErrNotFound
}

// TemplateLoader fetches a named template from the module's marketplace.
type TemplateLoader interface {
	LoadTemplate(ctx context.Context, name string) (string, error)
}

// CommandRunner runs a shell command and reports its captured result.
type CommandRunner interface {
	Run(ctx context.Context, command string) (*runner.Result, error)
}

// Context carries the per-module execution environment handlers operate on.
type Context struct {
	// FS is the module's staging area.
	FS *vfs.VFS

	// Renderer renders inline content and loaded templates.
	Renderer *template.Renderer

	// Modifiers resolves named enhancements.
	Modifiers *modifier.Registry

	// Templates loads the module's template files.
	Templates TemplateLoader

	// Runner executes RUN_COMMAND actions. Unused in dry runs.
	Runner CommandRunner

	// ManifestPath overrides the package manifest target. Defaults to
	// package.json.
	ManifestPath string

	// EnvPath overrides the env file target. Defaults to .env.
	EnvPath string

	// DryRun skips RUN_COMMAND execution; staging actions still apply.
	DryRun bool

	commands []*runner.Result
}

func (c *Context) manifestPath() string {
	if c.ManifestPath != "" {
		return c.ManifestPath
	}
	return defaultManifestPath
}

func (c *Context) envPath() string {
	if c.EnvPath != "" {
		return c.EnvPath
	}
	return defaultEnvPath
}

func (c *Context) recordCommand(res *runner.Result) {
	c.commands = append(c.commands, res)
}

// CommandResults returns the results of every command run through this
// context, in execution order.
func (c *Context) CommandResults() []*runner.Result {
	out := make([]*runner.Result, len(c.commands))
	copy(out, c.commands)
	return out
}

// Handler executes one action kind.
type Handler interface {
	Kind() Kind
	Handle(ctx context.Context, hctx *Context, action Action) error
}

// Dispatcher routes actions to their kind's handler.
type Dispatcher struct {
	handlers map[Kind]Handler
}

// NewDispatcher returns a dispatcher with every built-in handler registered.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{handlers: make(map[Kind]Handler)}
	for _, h := range []Handler{
		createFile{},
		enhanceFile{},
		installPackages{},
		runCommand{},
		addEnvVar{},
		addDependency{},
		addScript{},
	} {
		d.handlers[h.Kind()] = h
	}
	return d
}

// Register adds a handler. Registering a kind twice is a conflict.
func (d *Dispatcher) Register(h Handler) error {
	if _, ok := d.handlers[h.Kind()]; ok {
		return errors.NewConflictError(
			fmt.Sprintf("handler for action kind %q is already registered", h.Kind()),
			nil,
			"",
		)
	}
	d.handlers[h.Kind()] = h
	return nil
}

// Dispatch routes one action to its handler.
func (d *Dispatcher) Dispatch(ctx context.Context, hctx *Context, action Action) error {
	if action.Kind == "" {
		return errors.NewValidationError("action has no kind", "", "kind", "")
	}

	h, ok := d.handlers[action.Kind]
	if !ok {
		return &HandlerNotFoundError{Kind: action.Kind}
	}

	return h.Handle(ctx, hctx, action)
}
