// Package docx extracts paragraph and table text from Word documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// CellSeparator joins the cells of a table row.
const CellSeparator = " | "

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Formats returns the format tags this normaliser handles.
func (n *Normaliser) Formats() []string {
	return []string{"docx"}
}

// Normalise returns body paragraphs one per line, followed by every table
// row rendered as pipe-delimited cells.
func (n *Normaliser) Normalise(_ context.Context, artifact *domain.Artifact) (string, error) {
	if artifact == nil {
		return "", domain.ErrInvalidInput
	}

	// Open as ZIP archive
	reader, err := zip.NewReader(bytes.NewReader(artifact.Content), int64(len(artifact.Content)))
	if err != nil {
		return "", fmt.Errorf("%w: not a docx archive: %v", domain.ErrExtractionFailure, err)
	}

	content, err := readEntry(reader, "word/document.xml")
	if err != nil {
		return "", err
	}

	return parseDocumentXML(content)
}

// readEntry returns the bytes of one archive member.
func readEntry(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", domain.ErrExtractionFailure, name, err)
		}
		defer rc.Close()

		content, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", domain.ErrExtractionFailure, name, err)
		}
		return content, nil
	}
	return nil, fmt.Errorf("%w: missing %s", domain.ErrExtractionFailure, name)
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
		Tables     []table     `xml:"tbl"`
	} `xml:"body"`
}

// paragraph holds the text of one w:p, including runs nested in
// hyperlinks, tracked insertions, smart tags and content controls.
type paragraph struct {
	text string
}

// UnmarshalXML collects every w:t under the paragraph. w:tab becomes a tab
// and w:br or w:cr a newline. Property blocks are skipped since they hold
// tab stop definitions, not tabs.
func (p *paragraph) UnmarshalXML(d *xml.Decoder, _ xml.StartElement) error {
	var b strings.Builder
	inText := false
	depth := 0

	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pPr", "rPr":
				if err := d.Skip(); err != nil {
					return err
				}
				continue
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			}
			depth++
		case xml.EndElement:
			if depth == 0 {
				p.text = b.String()
				return nil
			}
			depth--
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
}

type table struct {
	Rows []struct {
		Cells []struct {
			Paragraphs []paragraph `xml:"p"`
		} `xml:"tc"`
	} `xml:"tr"`
}

// parseDocumentXML extracts text content from the document XML.
func parseDocumentXML(content []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("%w: parse document.xml: %v", domain.ErrExtractionFailure, err)
	}

	lines := make([]string, 0, len(doc.Body.Paragraphs))
	for _, para := range doc.Body.Paragraphs {
		lines = append(lines, para.text)
	}

	for _, tbl := range doc.Body.Tables {
		for _, row := range tbl.Rows {
			cells := make([]string, 0, len(row.Cells))
			for _, cell := range row.Cells {
				parts := make([]string, 0, len(cell.Paragraphs))
				for _, para := range cell.Paragraphs {
					parts = append(parts, para.text)
				}
				cells = append(cells, strings.Join(parts, "\n"))
			}
			lines = append(lines, strings.Join(cells, CellSeparator))
		}
	}

	return strings.Join(lines, "\n"), nil
}
