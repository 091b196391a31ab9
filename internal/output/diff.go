package output

import (
	"strings"
)

// ModifiedItem pairs a module id with the rendered diff of its lock entry.
type ModifiedItem struct {
	Name string
	Diff string
}

// RenderDiff renders a lock drift result. It takes raw data rather than a
// lockfile type to avoid an import cycle with the lockfile package.
func RenderDiff(added, removed []string, modified []ModifiedItem, styles *Styles) string {
	if len(added) == 0 && len(removed) == 0 && len(modified) == 0 {
		return "No changes detected."
	}

	var sb strings.Builder

	if len(added) > 0 {
		sb.WriteString(styles.Success.Render("Added:"))
		sb.WriteString("\n")
		for _, name := range added {
			sb.WriteString("  + ")
			sb.WriteString(styles.Success.Render(name))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if len(removed) > 0 {
		sb.WriteString(styles.Error.Render("Removed:"))
		sb.WriteString("\n")
		for _, name := range removed {
			sb.WriteString("  - ")
			sb.WriteString(styles.Error.Render(name))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if len(modified) > 0 {
		sb.WriteString(styles.Warning.Render("Modified:"))
		sb.WriteString("\n")
		for _, item := range modified {
			sb.WriteString("  ~ ")
			sb.WriteString(styles.Warning.Render(item.Name))
			sb.WriteString("\n")
			if item.Diff != "" {
				sb.WriteString(IndentDiff(item.Diff, "      "))
			}
		}
	}

	return sb.String()
}

// IndentDiff indents a diff string for display under a module id.
func IndentDiff(diff string, indent string) string {
	if diff == "" {
		return ""
	}

	var sb strings.Builder
	lines := strings.Split(diff, "\n")
	for _, line := range lines {
		if line != "" {
			sb.WriteString(indent)
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
