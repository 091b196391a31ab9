package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette — named constants for all ANSI 256 colors used in the CLI.
// These are the single source of truth; never use inline lipgloss.Color literals.
var (
	// ColorCyan is used for identifiable nouns: module ids, file paths, recipe names.
	ColorCyan = lipgloss.Color("14")

	// ColorGreen is used for the "created" file state (bright, high-visibility).
	ColorGreen = lipgloss.Color("82")

	// ColorYellow is used for the "modified" file state (medium visibility).
	ColorYellow = lipgloss.Color("220")

	// ColorRed is used for the "replaced" conflict resolution.
	ColorRed = lipgloss.Color("196")

	// ColorBoldRed is used for the "failed" module status (matches ERROR level).
	ColorBoldRed = lipgloss.Color("204")

	// ColorGreenCheck is used for the completion checkmark (✔).
	ColorGreenCheck = lipgloss.Color("10")

	// ColorDimGray is used for borders and other structural chrome.
	ColorDimGray = lipgloss.Color("240")
)

// Semantic styles — map domain concepts to visual presentation.
var (
	// StyleNoun styles identifiable nouns (module ids, file paths, recipe names).
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleAction styles action verbs (expanding, staging, flushing, running).
	StyleAction = lipgloss.NewStyle().Bold(true)

	// StyleDim styles structural chrome (batch prefixes, separators, timestamps).
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles completion and summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)
)

// Module and file status constants.
const (
	StatusCreated  = "created"
	StatusModified = "modified"
	StatusSkipped  = "skipped"
	StatusMerged   = "merged"
	StatusReplaced = "replaced"
	StatusDone     = "done"
	StatusFailed   = "failed"
)

// StatusStyle returns the lipgloss style for a given status string.
// Unknown statuses return an unstyled default.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case StatusCreated, StatusDone:
		return lipgloss.NewStyle().Foreground(ColorGreen)
	case StatusModified, StatusMerged:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	case StatusSkipped:
		return lipgloss.NewStyle().Faint(true)
	case StatusReplaced:
		return lipgloss.NewStyle().Foreground(ColorRed)
	case StatusFailed:
		return lipgloss.NewStyle().Bold(true).Foreground(ColorBoldRed)
	default:
		return lipgloss.NewStyle()
	}
}

// minModuleColumnWidth is the minimum width for the module id column
// before the status suffix. This ensures status words align consistently.
const minModuleColumnWidth = 48

// FormatModuleLine renders a module id with a right-aligned, color-coded
// status suffix.
//
// Format: m:<module-id>  <status>
//
// The "m:" prefix is dim, the id is cyan, and the status uses StatusStyle.
func FormatModuleLine(moduleID, status string) string {
	padding := minModuleColumnWidth - len(moduleID)
	if padding < 2 {
		padding = 2
	}

	prefix := StyleDim.Render("m:")
	styledID := StyleNoun.Render(moduleID)
	styledStatus := StatusStyle(status).Render(status)

	return prefix + styledID + strings.Repeat(" ", padding) + styledStatus
}

// FormatFileLine renders a staged file path with a right-aligned state suffix.
//
// Format: f:<path>  <state>
func FormatFileLine(path, state string) string {
	padding := minModuleColumnWidth - len(path)
	if padding < 2 {
		padding = 2
	}

	prefix := StyleDim.Render("f:")
	styledPath := StyleNoun.Render(path)
	styledState := StatusStyle(state).Render(state)

	return prefix + styledPath + strings.Repeat(" ", padding) + styledState
}

// FormatCheckmark renders a green checkmark with a message for stdout output.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(ColorGreenCheck).Render("✔")
	return check + " " + msg
}

// FormatWarning renders a warning marker with a message for stdout output.
func FormatWarning(msg string) string {
	mark := lipgloss.NewStyle().Foreground(ColorYellow).Render("⚠")
	return mark + " " + msg
}

// Styles groups the reusable render styles handed to tree and diff renderers.
type Styles struct {
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Noun    lipgloss.Style
}

// GetStyles returns the default style set.
func GetStyles() *Styles {
	return &Styles{
		Bold:    lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Faint(true),
		Success: lipgloss.NewStyle().Foreground(ColorGreen),
		Error:   lipgloss.NewStyle().Foreground(ColorBoldRed),
		Warning: lipgloss.NewStyle().Foreground(ColorYellow),
		Noun:    lipgloss.NewStyle().Foreground(ColorCyan),
	}
}

// NoColorStyles returns a style set with all styling disabled, for tests
// and non-TTY output.
func NoColorStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Bold:    plain,
		Muted:   plain,
		Success: plain,
		Error:   plain,
		Warning: plain,
		Noun:    plain,
	}
}
