package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appforge/cli/internal/vfs"
)

func TestFlushRegistry(t *testing.T) {
	reg := NewFlushRegistry()

	warnings := reg.Record("auth/better-auth", []vfs.FlushedFile{
		{Path: ".env", Content: "AUTH_SECRET=x\n"},
		{Path: "src/auth.ts", Content: "export {}\n"},
	})
	assert.Empty(t, warnings)
	assert.Equal(t, 2, reg.Len())

	// Identical rewrite stays silent.
	warnings = reg.Record("connectors/drizzle-auth", []vfs.FlushedFile{
		{Path: ".env", Content: "AUTH_SECRET=x\n"},
	})
	assert.Empty(t, warnings)

	// Divergent rewrite names both modules.
	warnings = reg.Record("database/drizzle", []vfs.FlushedFile{
		{Path: ".env", Content: "DATABASE_URL=postgres://\n"},
	})
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], ".env")
	assert.Contains(t, warnings[0], "database/drizzle")
	assert.Contains(t, warnings[0], "connectors/drizzle-auth")

	// A module rewriting its own file stays silent.
	warnings = reg.Record("database/drizzle", []vfs.FlushedFile{
		{Path: ".env", Content: "DATABASE_URL=mysql://\n"},
	})
	assert.Empty(t, warnings)
	assert.Equal(t, 2, reg.Len())
}
