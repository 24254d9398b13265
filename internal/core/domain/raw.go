package domain

import (
	"path/filepath"
	"strings"
)

// Artifact represents opaque bytes handed to the core for ingestion.
// It is the input of normalisation.
type Artifact struct {
	// Name is the source label: the original file name or URL.
	Name string

	// Format is the declared format tag (e.g., "pdf").
	// When empty the tag is inferred from the extension of Name.
	Format string

	// Content is the raw bytes.
	Content []byte
}

// FormatTag returns the declared format, or the lower-cased extension of Name
// without its leading dot.
func (a *Artifact) FormatTag() string {
	if a.Format != "" {
		return strings.ToLower(strings.TrimPrefix(a.Format, "."))
	}
	return FormatFromName(a.Name)
}

// FormatFromName infers a format tag from a file name or path.
func FormatFromName(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// TextDoc is already-extracted text with its source label, as produced by the
// web fetch adapter.
type TextDoc struct {
	// Source is the URL or label the text came from.
	Source string

	// Text is the extracted text.
	Text string
}
