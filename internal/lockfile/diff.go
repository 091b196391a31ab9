package lockfile

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gonvenience/ytbx"
	"github.com/homeport/dyff/pkg/dyff"
	"sigs.k8s.io/yaml"
)

// Drift describes how a stored lock diverges from a fresh resolution.
type Drift struct {
	// HashChanged is set when the genome hash itself moved.
	HashChanged bool

	// Added lists module ids pinned by the fresh lock only.
	Added []string

	// Removed lists module ids pinned by the stored lock only.
	Removed []string

	// Modified holds per-module YAML diffs for ids present in both.
	Modified []ModifiedModule
}

// ModifiedModule is one drifted module and its rendered diff.
type ModifiedModule struct {
	ID   string
	Diff string
}

// IsEmpty reports whether the two locks pin the same state.
func (d *Drift) IsEmpty() bool {
	return !d.HashChanged && len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Modified) == 0
}

// Summary renders a one-line change count.
func (d *Drift) Summary() string {
	if d.IsEmpty() {
		return "No changes"
	}

	parts := make([]string, 0, 4)
	if d.HashChanged {
		parts = append(parts, "genome changed")
	}
	if len(d.Added) > 0 {
		parts = append(parts, fmt.Sprintf("%d added", len(d.Added)))
	}
	if len(d.Removed) > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", len(d.Removed)))
	}
	if len(d.Modified) > 0 {
		parts = append(parts, fmt.Sprintf("%d modified", len(d.Modified)))
	}
	return strings.Join(parts, ", ")
}

// Diff compares a stored lock against a freshly built one, module by module.
func Diff(stored, fresh *LockFile, useColor bool) (*Drift, error) {
	drift := &Drift{}
	if stored == nil || fresh == nil {
		return nil, fmt.Errorf("both lock files are required for a diff")
	}

	drift.HashChanged = stored.GenomeHash != fresh.GenomeHash

	storedByID := make(map[string]Module, len(stored.Modules))
	for _, m := range stored.Modules {
		storedByID[m.ID] = m
	}
	freshByID := make(map[string]Module, len(fresh.Modules))
	for _, m := range fresh.Modules {
		freshByID[m.ID] = m
	}

	for _, m := range fresh.Modules {
		old, ok := storedByID[m.ID]
		if !ok {
			drift.Added = append(drift.Added, m.ID)
			continue
		}
		diff, err := compareModules(old, m, useColor)
		if err != nil {
			return nil, fmt.Errorf("comparing module %s: %w", m.ID, err)
		}
		if diff != "" {
			drift.Modified = append(drift.Modified, ModifiedModule{ID: m.ID, Diff: diff})
		}
	}

	for _, m := range stored.Modules {
		if _, ok := freshByID[m.ID]; !ok {
			drift.Removed = append(drift.Removed, m.ID)
		}
	}

	return drift, nil
}

// compareModules renders a YAML-aware diff between two pinned modules.
// Returns empty when they match.
func compareModules(stored, fresh Module, useColor bool) (string, error) {
	storedYAML, err := yaml.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("serializing stored module: %w", err)
	}
	freshYAML, err := yaml.Marshal(fresh)
	if err != nil {
		return "", fmt.Errorf("serializing fresh module: %w", err)
	}
	if bytes.Equal(storedYAML, freshYAML) {
		return "", nil
	}

	storedInput, err := parseYAMLInput("locked", storedYAML)
	if err != nil {
		return "", fmt.Errorf("parsing stored module: %w", err)
	}
	freshInput, err := parseYAMLInput("resolved", freshYAML)
	if err != nil {
		return "", fmt.Errorf("parsing fresh module: %w", err)
	}

	report, err := dyff.CompareInputFiles(storedInput, freshInput)
	if err != nil {
		return "", fmt.Errorf("comparing modules: %w", err)
	}
	if len(report.Diffs) == 0 {
		return "", nil
	}

	return renderDyffReport(report, useColor)
}

// parseYAMLInput parses YAML bytes into a dyff input file.
func parseYAMLInput(name string, data []byte) (ytbx.InputFile, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ytbx.InputFile{Location: name}, nil
	}

	docs, err := ytbx.LoadYAMLDocuments(data)
	if err != nil {
		return ytbx.InputFile{}, err
	}
	return ytbx.InputFile{Location: name, Documents: docs}, nil
}

// renderDyffReport renders a dyff report to a trimmed string.
func renderDyffReport(report dyff.Report, useColor bool) (string, error) {
	var buf bytes.Buffer

	reportWriter := &dyff.HumanReport{
		Report:            report,
		DoNotInspectCerts: true,
		NoTableStyle:      !useColor,
		OmitHeader:        true,
	}
	if err := reportWriter.WriteReport(io.Writer(&buf)); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	lines := strings.Split(buf.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}
