// Package chunker splits document text into bounded, overlapping passages.
package chunker

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// DefaultChunkSize is the default target passage length in characters.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of characters carried between passages.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// Separators in the order blocks are broken down when oversized.
const (
	paragraphSeparator = "\n\n"
	lineSeparator      = "\n"
	sentenceSeparator  = ". "
)

// Processor splits document content into passages.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the target passage size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between passages in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	p.overlap = clampOverlap(p.chunkSize, p.overlap)

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured target size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Process splits the document content into passages.
// Input passages are ignored; this processor creates passages from document content.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []string) ([]string, error) {
	passages := Split(doc.Content, p.chunkSize, p.overlap)
	logger.Debug("chunker: %d passages from %d characters (size=%d overlap=%d)",
		len(passages), utf8.RuneCountInString(doc.Content), p.chunkSize, p.overlap)
	return passages, nil
}

// Split breaks text into passages of at most size characters.
//
// Text is split on blank lines. Blocks longer than 2*size are split on
// newlines, and lines still longer than 2*size after each ". ". Segments are then
// packed greedily, joined by a single space. A segment is never cut, so a
// single segment longer than size becomes its own passage.
//
// When overlap > 0 every passage after the first is prefixed with the last
// overlap characters of the previous passage as it was before its own
// prefix was added. Empty text yields nil.
func Split(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	overlap = clampOverlap(size, overlap)

	passages := pack(segments(text, size), size)
	if overlap == 0 || len(passages) < 2 {
		return passages
	}

	out := make([]string, len(passages))
	out[0] = passages[0]
	for i := 1; i < len(passages); i++ {
		out[i] = strings.TrimSpace(tail(passages[i-1], overlap) + " " + passages[i])
	}
	return out
}

// segments produces the atomic units that pack arranges into passages.
func segments(text string, size int) []string {
	limit := 2 * size
	var segs []string
	for _, block := range splitTrim(text, paragraphSeparator) {
		if length(block) <= limit {
			segs = append(segs, block)
			continue
		}
		for _, line := range splitTrim(block, lineSeparator) {
			if length(line) <= limit {
				segs = append(segs, line)
				continue
			}
			segs = append(segs, splitSentences(line)...)
		}
	}
	return segs
}

func pack(segs []string, size int) []string {
	var passages []string
	var cur strings.Builder
	curLen := 0

	for _, seg := range segs {
		segLen := length(seg)
		if curLen+segLen+1 <= size {
			if curLen > 0 {
				cur.WriteByte(' ')
				curLen++
			}
			cur.WriteString(seg)
			curLen += segLen
			continue
		}
		if curLen > 0 {
			passages = append(passages, cur.String())
		}
		cur.Reset()
		cur.WriteString(seg)
		curLen = segLen
	}
	if curLen > 0 {
		passages = append(passages, cur.String())
	}
	return passages
}

// splitTrim splits on sep, trims each part and drops empty parts.
func splitTrim(s, sep string) []string {
	var parts []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// splitSentences splits on ". " keeping each period with its sentence.
func splitSentences(s string) []string {
	var parts []string
	for _, part := range strings.SplitAfter(s, sentenceSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// tail returns the last n characters of s.
func tail(s string, n int) string {
	count := 0
	for i := len(s); i > 0; {
		_, w := utf8.DecodeLastRuneInString(s[:i])
		i -= w
		count++
		if count == n {
			return s[i:]
		}
	}
	return s
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}

// clampOverlap keeps overlap in [0, size).
func clampOverlap(size, overlap int) int {
	if overlap < 0 {
		return 0
	}
	if overlap >= size {
		return size - 1
	}
	return overlap
}
