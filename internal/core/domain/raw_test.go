package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArtifact_FormatTag(t *testing.T) {
	tests := []struct {
		name     string
		artifact Artifact
		expected string
	}{
		{"inferred from name", Artifact{Name: "report.PDF"}, "pdf"},
		{"inferred from path", Artifact{Name: "/tmp/up/slides.pptx"}, "pptx"},
		{"declared wins", Artifact{Name: "upload.bin", Format: "csv"}, "csv"},
		{"declared with dot", Artifact{Name: "x", Format: ".TXT"}, "txt"},
		{"no extension", Artifact{Name: "README"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.artifact.FormatTag())
		})
	}
}

func TestFormatFromName(t *testing.T) {
	assert.Equal(t, "xlsx", FormatFromName("Budget 2024.XLSX"))
	assert.Equal(t, "", FormatFromName("noext"))
}
