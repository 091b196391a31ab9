// Package runner executes RUN_COMMAND actions through the system shell with
// captured output.
package runner

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/appforge/cli/internal/errors"
	"github.com/appforge/cli/internal/output"
)

// Result captures one command invocation.
type Result struct {
	Command  string
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner runs shell commands inside the project directory.
type Runner struct {
	dir string
	env map[string]string
}

// New creates a runner rooted at dir. Extra env entries overlay the process
// environment.
func New(dir string, env map[string]string) *Runner {
	return &Runner{dir: dir, env: env}
}

// Run executes the command through `sh -c`, capturing stdout and stderr. A
// non-zero exit returns the result alongside an execution error.
func (r *Runner) Run(ctx context.Context, command string) (*Result, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = r.dir
	cmd.Env = mergeEnv(os.Environ(), r.env)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	output.Debug("running command", "dir", r.dir, "command", command)

	start := time.Now()
	err := cmd.Run()
	res := &Result{
		Command:  command,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err == nil {
		return res, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		res.ExitCode = -1
		return res, fmt.Errorf("command interrupted: %w", ctxErr)
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
	} else {
		res.ExitCode = -1
	}

	return res, errors.NewExecutionError(
		fmt.Sprintf("command failed with exit code %d", res.ExitCode),
		map[string]string{
			"Command": command,
			"Stderr":  tail(res.Stderr, 400),
		},
		"Re-run with --verbose to see the full command output.",
	)
}

// mergeEnv overlays extra entries on the base KEY=value list.
func mergeEnv(base []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return base
	}

	envMap := make(map[string]string, len(base)+len(extra))
	order := make([]string, 0, len(base)+len(extra))
	for _, entry := range base {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, seen := envMap[k]; !seen {
			order = append(order, k)
		}
		envMap[k] = v
	}
	for k, v := range extra {
		if _, seen := envMap[k]; !seen {
			order = append(order, k)
		}
		envMap[k] = v
	}

	merged := make([]string, 0, len(order))
	for _, k := range order {
		merged = append(merged, k+"="+envMap[k])
	}
	return merged
}

// tail returns at most n trailing bytes of s, trimmed of whitespace.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
