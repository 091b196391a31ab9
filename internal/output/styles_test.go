package output

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestStatusStyle(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		wantBold bool
		wantFG   lipgloss.Color
		wantDim  bool
	}{
		{
			name:   "created returns green",
			status: StatusCreated,
			wantFG: ColorGreen,
		},
		{
			name:   "done returns green",
			status: StatusDone,
			wantFG: ColorGreen,
		},
		{
			name:   "modified returns yellow",
			status: StatusModified,
			wantFG: ColorYellow,
		},
		{
			name:   "merged returns yellow",
			status: StatusMerged,
			wantFG: ColorYellow,
		},
		{
			name:    "skipped returns faint",
			status:  StatusSkipped,
			wantDim: true,
		},
		{
			name:   "replaced returns red",
			status: StatusReplaced,
			wantFG: ColorRed,
		},
		{
			name:     "failed returns bold red",
			status:   StatusFailed,
			wantBold: true,
			wantFG:   ColorBoldRed,
		},
		{
			name:   "unknown returns default unstyled",
			status: "unknown-value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			style := StatusStyle(tt.status)
			if tt.wantBold {
				assert.True(t, style.GetBold(), "expected bold")
			}
			if tt.wantFG != "" {
				assert.Equal(t, tt.wantFG, style.GetForeground(), "foreground color mismatch")
			}
			if tt.wantDim {
				assert.True(t, style.GetFaint(), "expected faint")
			}
		})
	}
}

func TestFormatModuleLine(t *testing.T) {
	tests := []struct {
		name     string
		moduleID string
		status   string
	}{
		{
			name:     "short id",
			moduleID: "auth/jwt",
			status:   StatusDone,
		},
		{
			name:     "full id",
			moduleID: "backend/database/postgres",
			status:   StatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatModuleLine(tt.moduleID, tt.status)

			assert.Contains(t, result, tt.moduleID, "should contain module id")
			assert.Contains(t, result, tt.status, "should contain status text")
			assert.True(t, strings.HasPrefix(stripAnsi(result), "m:"), "should start with m: prefix")
		})
	}

	t.Run("alignment consistency", func(t *testing.T) {
		// Two lines with different id lengths should have status starting
		// at the same position (both ids shorter than min column width).
		line1 := FormatModuleLine("auth/jwt", StatusDone)
		line2 := FormatModuleLine("database/postgres", StatusDone)

		stripped1 := stripAnsi(line1)
		stripped2 := stripAnsi(line2)

		idx1 := strings.Index(stripped1, StatusDone)
		idx2 := strings.Index(stripped2, StatusDone)

		assert.Equal(t, idx1, idx2, "status words should align to same column")
	})
}

func TestFormatFileLine(t *testing.T) {
	result := FormatFileLine("src/middleware/auth.ts", StatusCreated)

	stripped := stripAnsi(result)
	assert.True(t, strings.HasPrefix(stripped, "f:"), "should start with f: prefix")
	assert.Contains(t, stripped, "src/middleware/auth.ts")
	assert.Contains(t, stripped, StatusCreated)
}

func TestFormatCheckmark(t *testing.T) {
	result := FormatCheckmark("Project created")
	assert.Contains(t, result, "✔", "should contain checkmark")
	assert.Contains(t, result, "Project created", "should contain message")
}

func TestFormatWarning(t *testing.T) {
	result := FormatWarning("auto-include pass limit reached")
	assert.Contains(t, result, "⚠", "should contain warning marker")
	assert.Contains(t, result, "auto-include pass limit reached", "should contain message")
}

// stripAnsi removes ANSI escape sequences for content assertions.
func stripAnsi(s string) string {
	var result strings.Builder
	inEscape := false
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' {
			inEscape = true
			continue
		}
		if inEscape {
			if s[i] == 'm' {
				inEscape = false
			}
			continue
		}
		result.WriteByte(s[i])
	}
	return result.String()
}
