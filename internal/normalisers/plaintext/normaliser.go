// Package plaintext reads text files, discarding undecodable bytes.
package plaintext

import (
	"context"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Formats returns the format tags this normaliser handles.
func (n *Normaliser) Formats() []string {
	return []string{"txt"}
}

// Normalise decodes the artifact as text.
func (n *Normaliser) Normalise(_ context.Context, artifact *domain.Artifact) (string, error) {
	if artifact == nil {
		return "", domain.ErrInvalidInput
	}
	return Decode(artifact.Content), nil
}

// Decode converts bytes to valid UTF-8.
// A byte order mark selects UTF-16 decoding and is dropped; otherwise the
// input is read as UTF-8 and ill-formed sequences are discarded. A U+FFFD
// that is present in the input is kept.
func Decode(content []byte) string {
	t := transform.Chain(
		unicode.BOMOverride(encoding.Nop.NewDecoder()),
		dropIllFormed{},
	)
	out, _, err := transform.Bytes(t, content)
	if err != nil {
		return ""
	}
	return string(out)
}

// dropIllFormed removes bytes that do not belong to a valid UTF-8 sequence.
type dropIllFormed struct{ transform.NopResetter }

func (dropIllFormed) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		r, size := utf8.DecodeRune(src[nSrc:])
		if r == utf8.RuneError && size <= 1 {
			if !atEOF && !utf8.FullRune(src[nSrc:]) {
				return nDst, nSrc, transform.ErrShortSrc
			}
			nSrc++
			continue
		}
		if nDst+size > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += copy(dst[nDst:], src[nSrc:nSrc+size])
		nSrc += size
	}
	return nDst, nSrc, nil
}
