// Package template renders module templates with project and parameter data.
package template

import (
	"bytes"
	"fmt"
	"text/template"
)

// ProjectData exposes the target project to templates.
type ProjectData struct {
	Name        string
	Version     string
	Description string
}

// ModuleData exposes the running module to templates.
type ModuleData struct {
	ID      string
	Version string
}

// Data holds everything a template can reference.
type Data struct {
	Project ProjectData
	Module  ModuleData

	// Params carries the module's resolved parameters, genome values merged
	// over recipe defaults.
	Params map[string]any
}

// Renderer renders template content with a fixed data set.
type Renderer struct {
	data Data
}

// NewRenderer creates a renderer bound to the given data.
func NewRenderer(data Data) *Renderer {
	return &Renderer{data: data}
}

// Render parses and executes one template. The name only labels parse and
// execution errors.
func (r *Renderer) Render(name, content string) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=zero").Parse(content)
	if err != nil {
		return "", fmt.Errorf("parsing template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, r.data); err != nil {
		return "", fmt.Errorf("executing template %s: %w", name, err)
	}

	return buf.String(), nil
}

// RenderString renders inline content that has no useful name.
func (r *Renderer) RenderString(content string) (string, error) {
	return r.Render("inline", content)
}
