package cmd

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/appforge/cli/internal/errors"
	"github.com/appforge/cli/internal/lockfile"
	"github.com/appforge/cli/internal/testutil"
)

// cmdGenomeWithPayments is cmdGenome plus a package no app depends on,
// used to drift an existing lock.
const cmdGenomeWithPayments = cmdGenome + `  payments:
    from: core
`

func TestNewLockCmd(t *testing.T) {
	cmd := NewLockCmd()

	assert.Equal(t, "lock [path]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	for _, name := range []string{"genome", "force", "diff"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag %s", name)
	}
}

func TestLock_WritesLockFile(t *testing.T) {
	dir := writeProjectFixture(t)

	err := executeRoot(t, "lock", dir)
	require.NoError(t, err)

	lock := lockfile.Read(filepath.Join(dir, lockfile.FileName))
	require.NotNil(t, lock)
	assert.Equal(t, lockfile.SchemaVersion, lock.Version)
	assert.NotEmpty(t, lock.GenomeHash)
	assert.Len(t, lock.Modules, 3)
	assert.Len(t, lock.Plan, 3)
	assert.Contains(t, lock.Marketplaces, "core")
}

func TestLock_UpToDateSkipsWrite(t *testing.T) {
	dir := writeProjectFixture(t)
	lockPath := filepath.Join(dir, lockfile.FileName)

	require.NoError(t, executeRoot(t, "lock", dir))

	// Backdate the stored lock. A current lock is left alone, so the
	// timestamp survives the second run; --force rewrites it.
	stored := lockfile.Read(lockPath)
	require.NotNil(t, stored)
	stored.ResolvedAt = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, stored.Write(lockPath))

	require.NoError(t, executeRoot(t, "lock", dir))
	kept := lockfile.Read(lockPath)
	require.NotNil(t, kept)
	assert.Equal(t, 2020, kept.ResolvedAt.Year())

	require.NoError(t, executeRoot(t, "lock", dir, "--force"))
	forced := lockfile.Read(lockPath)
	require.NotNil(t, forced)
	assert.NotEqual(t, 2020, forced.ResolvedAt.Year())
}

func TestLock_DiffReportsDrift(t *testing.T) {
	dir := writeProjectFixture(t)

	require.NoError(t, executeRoot(t, "lock", dir))

	// In sync right after locking.
	require.NoError(t, executeRoot(t, "lock", dir, "--diff"))

	// Growing the genome drifts the stored lock.
	testutil.WriteGenome(t, dir, cmdGenomeWithPayments)

	err := executeRoot(t, "lock", dir, "--diff")
	require.Error(t, err)

	var exitErr *oerrors.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, oerrors.ExitGeneralError, exitErr.Code)
	assert.True(t, exitErr.Printed)
	assert.Contains(t, err.Error(), "lock file drift")

	// --diff never writes: the stored lock still pins three modules.
	lock := lockfile.Read(filepath.Join(dir, lockfile.FileName))
	require.NotNil(t, lock)
	assert.Len(t, lock.Modules, 3)
}

func TestLock_DiffWithoutLockFile(t *testing.T) {
	dir := writeProjectFixture(t)

	err := executeRoot(t, "lock", dir, "--diff")
	require.Error(t, err)
	assert.ErrorIs(t, err, oerrors.ErrNotFound)
}
