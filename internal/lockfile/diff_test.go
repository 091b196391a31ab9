package lockfile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lockWith(hash string, modules ...Module) *LockFile {
	return &LockFile{
		Version:    SchemaVersion,
		GenomeHash: hash,
		ResolvedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Modules:    modules,
	}
}

func pinned(id, version string) Module {
	return Module{
		ID:        id,
		Version:   version,
		Source:    "core",
		Integrity: ModuleIntegrity(id, version, "core"),
	}
}

func TestDiff(t *testing.T) {
	t.Run("identical locks have no drift", func(t *testing.T) {
		stored := lockWith("sha256:aa", pinned("framework/nextjs", "15.0.0"))
		fresh := lockWith("sha256:aa", pinned("framework/nextjs", "15.0.0"))

		drift, err := Diff(stored, fresh, false)
		require.NoError(t, err)
		assert.True(t, drift.IsEmpty())
		assert.Equal(t, "No changes", drift.Summary())
	})

	t.Run("reports added and removed modules", func(t *testing.T) {
		stored := lockWith("sha256:aa",
			pinned("framework/nextjs", "15.0.0"),
			pinned("auth/lucia", "3.0.0"),
		)
		fresh := lockWith("sha256:bb",
			pinned("framework/nextjs", "15.0.0"),
			pinned("auth/better-auth", "1.4.2"),
		)

		drift, err := Diff(stored, fresh, false)
		require.NoError(t, err)
		assert.True(t, drift.HashChanged)
		assert.Equal(t, []string{"auth/better-auth"}, drift.Added)
		assert.Equal(t, []string{"auth/lucia"}, drift.Removed)
		assert.Contains(t, drift.Summary(), "1 added")
		assert.Contains(t, drift.Summary(), "1 removed")
	})

	t.Run("renders a dyff report for version bumps", func(t *testing.T) {
		stored := lockWith("sha256:aa", pinned("auth/better-auth", "1.4.2"))
		fresh := lockWith("sha256:bb", pinned("auth/better-auth", "1.5.0"))

		drift, err := Diff(stored, fresh, false)
		require.NoError(t, err)
		require.Len(t, drift.Modified, 1)
		assert.Equal(t, "auth/better-auth", drift.Modified[0].ID)
		assert.Contains(t, drift.Modified[0].Diff, "1.4.2")
		assert.Contains(t, drift.Modified[0].Diff, "1.5.0")
	})

	t.Run("nil locks are rejected", func(t *testing.T) {
		_, err := Diff(nil, lockWith("sha256:aa"), false)
		require.Error(t, err)
	})
}
