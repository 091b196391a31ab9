package runner

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appforge/cli/internal/errors"
)

func TestRun(t *testing.T) {
	t.Run("captures stdout", func(t *testing.T) {
		r := New(t.TempDir(), nil)

		res, err := r.Run(context.Background(), "echo hello")
		require.NoError(t, err)
		assert.Equal(t, "hello\n", res.Stdout)
		assert.Equal(t, 0, res.ExitCode)
	})

	t.Run("runs in the project directory", func(t *testing.T) {
		dir := t.TempDir()
		r := New(dir, nil)

		res, err := r.Run(context.Background(), "pwd")
		require.NoError(t, err)
		assert.Contains(t, res.Stdout, dir)
	})

	t.Run("overlays extra environment", func(t *testing.T) {
		r := New(t.TempDir(), map[string]string{"FORGE_TEST_VALUE": "42"})

		res, err := r.Run(context.Background(), "echo $FORGE_TEST_VALUE")
		require.NoError(t, err)
		assert.Equal(t, "42\n", res.Stdout)
	})

	t.Run("non-zero exit returns result and execution error", func(t *testing.T) {
		r := New(t.TempDir(), nil)

		res, err := r.Run(context.Background(), "echo oops >&2; exit 3")
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrExecution)
		require.NotNil(t, res)
		assert.Equal(t, 3, res.ExitCode)
		assert.Contains(t, res.Stderr, "oops")
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		r := New(t.TempDir(), nil)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := r.Run(ctx, "sleep 5")
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestMergeEnv(t *testing.T) {
	base := []string{"PATH=/usr/bin", "HOME=/home/dev"}

	merged := mergeEnv(base, map[string]string{"HOME": "/tmp/other", "EXTRA": "1"})

	assert.Contains(t, merged, "PATH=/usr/bin")
	assert.Contains(t, merged, "HOME=/tmp/other")
	assert.Contains(t, merged, "EXTRA=1")
	assert.NotContains(t, merged, "HOME=/home/dev")
}

func TestTail(t *testing.T) {
	assert.Equal(t, "short", tail("  short \n", 400))

	long := tail("aaaa"+strings.Repeat("b", 500), 10)
	assert.Equal(t, "..."+strings.Repeat("b", 10), long)
}
