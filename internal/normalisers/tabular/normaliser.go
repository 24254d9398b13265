// Package tabular serialises CSV files and Excel workbooks as CSV text.
package tabular

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// DefaultMaxRows is the number of data rows kept per file or sheet.
// The header row is not counted.
const DefaultMaxRows = 2000

// Normaliser handles CSV and XLSX documents.
type Normaliser struct {
	maxRows int
}

// Option configures the normaliser.
type Option func(*Normaliser)

// WithMaxRows sets the row cap.
func WithMaxRows(n int) Option {
	return func(t *Normaliser) {
		if n > 0 {
			t.maxRows = n
		}
	}
}

// New creates a new tabular normaliser.
func New(opts ...Option) *Normaliser {
	n := &Normaliser{maxRows: DefaultMaxRows}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Formats returns the format tags this normaliser handles.
func (n *Normaliser) Formats() []string {
	return []string{"csv", "xlsx"}
}

// Normalise serialises the table as CSV.
// Rows beyond the cap are dropped silently.
func (n *Normaliser) Normalise(_ context.Context, artifact *domain.Artifact) (string, error) {
	if artifact == nil {
		return "", domain.ErrInvalidInput
	}

	switch artifact.FormatTag() {
	case "csv":
		return n.fromCSV(artifact.Content)
	case "xlsx":
		return n.fromWorkbook(artifact.Content)
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, artifact.FormatTag())
	}
}

func (n *Normaliser) fromCSV(content []byte) (string, error) {
	r := csv.NewReader(strings.NewReader(plaintext.Decode(content)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for len(rows) <= n.maxRows {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: csv: %v", domain.ErrExtractionFailure, err)
		}
		rows = append(rows, record)
	}
	return writeCSV(rows)
}

func (n *Normaliser) fromWorkbook(content []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("%w: xlsx: %v", domain.ErrExtractionFailure, err)
	}
	defer f.Close()

	var parts []string
	for _, sheet := range f.GetSheetList() {
		rows, err := n.sheetRows(f, sheet)
		if err != nil {
			return "", fmt.Errorf("%w: sheet %q: %v", domain.ErrExtractionFailure, sheet, err)
		}
		text, err := writeCSV(rows)
		if err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf("[Sheet: %s]", sheet), text)
	}
	return strings.Join(parts, "\n\n"), nil
}

// sheetRows streams at most maxRows+1 rows so huge sheets are never loaded whole.
func (n *Normaliser) sheetRows(f *excelize.File, sheet string) ([][]string, error) {
	it, err := f.Rows(sheet)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var rows [][]string
	for it.Next() {
		if len(rows) > n.maxRows {
			logger.Debug("tabular: sheet %q truncated at %d rows", sheet, n.maxRows)
			break
		}
		cols, err := it.Columns()
		if err != nil {
			return nil, err
		}
		rows = append(rows, cols)
	}
	return rows, it.Error()
}

func writeCSV(rows [][]string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("%w: write csv: %v", domain.ErrExtractionFailure, err)
	}
	return buf.String(), nil
}
