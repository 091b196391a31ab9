package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderDiff(t *testing.T) {
	styles := NoColorStyles()

	t.Run("no changes", func(t *testing.T) {
		result := RenderDiff(nil, nil, nil, styles)
		assert.Equal(t, "No changes detected.", result)
	})

	t.Run("all sections", func(t *testing.T) {
		result := RenderDiff(
			[]string{"auth/jwt"},
			[]string{"cache/redis"},
			[]ModifiedItem{{Name: "database/postgres", Diff: "version changed"}},
			styles,
		)

		assert.Contains(t, result, "Added:")
		assert.Contains(t, result, "+ auth/jwt")
		assert.Contains(t, result, "Removed:")
		assert.Contains(t, result, "- cache/redis")
		assert.Contains(t, result, "Modified:")
		assert.Contains(t, result, "~ database/postgres")
		assert.Contains(t, result, "version changed")
	})
}

func TestIndentDiff(t *testing.T) {
	assert.Equal(t, "", IndentDiff("", "  "))
	assert.Equal(t, "  a\n  b\n", IndentDiff("a\nb", "  "))
}
