package normalisers

import (
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/docx"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/pdf"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/plaintext"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/pptx"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/tabular"
)

// SupportedFormats is the fixed set of upload formats.
var SupportedFormats = []string{"csv", "docx", "pdf", "pptx", "txt", "xlsx"}

// NewDefaultRegistry returns a registry with every supported format registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(pptx.New())
	r.Register(tabular.New())
	r.Register(plaintext.New())
	return r
}

// IsSupported reports whether a file name has a supported extension.
// Callers use it to reject uploads before reading them.
func IsSupported(name string) bool {
	format := domain.FormatFromName(name)
	for _, f := range SupportedFormats {
		if f == format {
			return true
		}
	}
	return false
}
