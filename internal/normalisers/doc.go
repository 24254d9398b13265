// Package normalisers turns uploaded artifacts into cleaned plain text.
//
// Each supported format has its own sub-package implementing
// driven.Normaliser. The Registry dispatches artifacts by format tag and
// applies Clean to every result, so chunk sizes are never skewed by
// formatting artifacts such as non-breaking spaces or runs of blank lines.
//
// The supported set is fixed: pdf, docx, pptx, csv, xlsx and txt.
package normalisers
