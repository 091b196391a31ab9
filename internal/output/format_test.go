package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  OutputFormat
	}{
		{name: "yaml", input: "yaml", want: FormatYAML},
		{name: "yml alias", input: "yml", want: FormatYAML},
		{name: "json", input: "json", want: FormatJSON},
		{name: "table", input: "table", want: FormatTable},
		{name: "uppercase", input: "JSON", want: FormatJSON},
		{name: "empty defaults to table", input: "", want: FormatTable},
		{name: "unknown defaults to table", input: "xml", want: FormatTable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseOutputFormat(tt.input))
		})
	}
}

func TestOutputFormatIsValid(t *testing.T) {
	assert.True(t, FormatYAML.IsValid())
	assert.True(t, FormatJSON.IsValid())
	assert.True(t, FormatTable.IsValid())
	assert.False(t, OutputFormat("xml").IsValid())
}

func TestValidFormats(t *testing.T) {
	formats := ValidFormats()
	assert.Contains(t, formats, "table")
	assert.Contains(t, formats, "yaml")
	assert.Contains(t, formats, "json")
}
