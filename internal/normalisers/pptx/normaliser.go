// Package pptx extracts slide text from PowerPoint presentations.
package pptx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var slideEntry = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// Normaliser handles PPTX documents.
type Normaliser struct{}

// New creates a new PPTX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Formats returns the format tags this normaliser handles.
func (n *Normaliser) Formats() []string {
	return []string{"pptx"}
}

// Normalise emits one block per slide, labelled "[Slide N]" and followed by
// the text of each text-bearing shape in document order.
func (n *Normaliser) Normalise(_ context.Context, artifact *domain.Artifact) (string, error) {
	if artifact == nil {
		return "", domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(artifact.Content), int64(len(artifact.Content)))
	if err != nil {
		return "", fmt.Errorf("%w: not a pptx archive: %v", domain.ErrExtractionFailure, err)
	}

	slides, err := orderedSlides(reader)
	if err != nil {
		return "", err
	}
	if len(slides) == 0 {
		return "", fmt.Errorf("%w: no slides", domain.ErrExtractionFailure)
	}

	blocks := make([]string, 0, len(slides))
	for i, file := range slides {
		texts, err := slideTexts(file)
		if err != nil {
			return "", err
		}
		blocks = append(blocks, fmt.Sprintf("[Slide %d]\n%s", i+1, strings.Join(texts, "\n")))
	}

	return strings.Join(blocks, "\n\n"), nil
}

// orderedSlides returns the slides in presentation order. Decks without a
// slide list or its relationships fall back to slide file number order.
func orderedSlides(reader *zip.Reader) ([]*zip.File, error) {
	files, err := presentationOrder(reader)
	if err != nil || len(files) > 0 {
		return files, err
	}
	return numberedSlides(reader), nil
}

// presentationOrder resolves p:sldIdLst in ppt/presentation.xml through
// ppt/_rels/presentation.xml.rels. It returns nil when either part is absent.
func presentationOrder(reader *zip.Reader) ([]*zip.File, error) {
	pres, rels := entry(reader, presentationPart), entry(reader, presentationRels)
	if pres == nil || rels == nil {
		return nil, nil
	}

	ids, err := slideRelIDs(pres)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	targets, err := relTargets(rels)
	if err != nil {
		return nil, err
	}

	files := make([]*zip.File, 0, len(ids))
	for _, id := range ids {
		if f := entry(reader, targets[id]); f != nil {
			files = append(files, f)
		}
	}
	return files, nil
}

const (
	presentationPart = "ppt/presentation.xml"
	presentationRels = "ppt/_rels/presentation.xml.rels"
)

func entry(reader *zip.Reader, name string) *zip.File {
	if name == "" {
		return nil
	}
	for _, f := range reader.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// slideRelIDs returns the r:id of each p:sldId in document order.
func slideRelIDs(file *zip.File) ([]string, error) {
	var ids []string
	err := walk(file, func(el xml.StartElement) {
		if el.Name.Local != "sldId" {
			return
		}
		for _, attr := range el.Attr {
			if attr.Name.Local == "id" && attr.Name.Space != "" {
				ids = append(ids, attr.Value)
			}
		}
	})
	return ids, err
}

// relTargets maps relationship ids to archive paths. Targets are relative
// to ppt/ unless they start with a slash.
func relTargets(file *zip.File) (map[string]string, error) {
	targets := make(map[string]string)
	err := walk(file, func(el xml.StartElement) {
		if el.Name.Local != "Relationship" {
			return
		}
		var id, target string
		for _, attr := range el.Attr {
			switch attr.Name.Local {
			case "Id":
				id = attr.Value
			case "Target":
				target = attr.Value
			}
		}
		if strings.HasPrefix(target, "/") {
			targets[id] = strings.TrimPrefix(target, "/")
		} else {
			targets[id] = path.Join("ppt", target)
		}
	})
	return targets, err
}

// walk calls fn for every start element in file.
func walk(file *zip.File, fn func(xml.StartElement)) error {
	rc, err := file.Open()
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", domain.ErrExtractionFailure, file.Name, err)
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: parse %s: %v", domain.ErrExtractionFailure, file.Name, err)
		}
		if el, ok := tok.(xml.StartElement); ok {
			fn(el)
		}
	}
}

// numberedSlides returns slide entries sorted by the number in their name.
func numberedSlides(reader *zip.Reader) []*zip.File {
	type numbered struct {
		n    int
		file *zip.File
	}
	var found []numbered
	for _, file := range reader.File {
		m := slideEntry.FindStringSubmatch(file.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		found = append(found, numbered{n: n, file: file})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].n < found[j].n })

	files := make([]*zip.File, len(found))
	for i, f := range found {
		files[i] = f.file
	}
	return files
}

// slideTexts returns the text of each text body on the slide.
// Paragraphs within one body are joined by newlines.
func slideTexts(file *zip.File) ([]string, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrExtractionFailure, file.Name, err)
	}
	defer rc.Close()

	var (
		texts      []string
		paragraphs []string
		para       strings.Builder
		inBody     bool
		inText     bool
	)

	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrExtractionFailure, file.Name, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "txBody":
				inBody = true
				paragraphs = paragraphs[:0]
			case "p":
				para.Reset()
			case "t":
				inText = inBody
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inBody {
					paragraphs = append(paragraphs, para.String())
				}
			case "txBody":
				inBody = false
				texts = append(texts, strings.Join(paragraphs, "\n"))
			}
		}
	}
	return texts, nil
}
