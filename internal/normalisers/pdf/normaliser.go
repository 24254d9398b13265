// Package pdf extracts text from PDF documents.
//
// Extraction tries an ordered list of extractors and returns the first
// non-empty result:
//
//  1. layout: pdftotext -layout (poppler), which keeps table columns aligned
//  2. raw: page text read directly with github.com/ledongthuc/pdf
//
// The layout tier is more accurate but needs an external binary and fails on
// some malformed files. The raw tier always runs in-process.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

const pdftotext = "pdftotext"

// CommandRunner runs an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, ErrPDFToolNotFound
	}
	return exec.CommandContext(ctx, name, args...).Output()
}

// Extractor is one extraction strategy.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, content []byte) (string, error)
}

// Normaliser handles PDF documents.
type Normaliser struct {
	extractors []Extractor
}

// New creates a PDF normaliser that shells out to pdftotext.
func New() *Normaliser {
	return NewWithRunner(execRunner{})
}

// NewWithRunner creates a PDF normaliser with a custom command runner.
func NewWithRunner(runner CommandRunner) *Normaliser {
	return &Normaliser{
		extractors: []Extractor{
			&layoutExtractor{runner: runner},
			rawExtractor{},
		},
	}
}

// Formats returns the format tags this normaliser handles.
func (n *Normaliser) Formats() []string {
	return []string{"pdf"}
}

// Normalise returns the text of the first extractor that succeeds with
// non-empty output.
func (n *Normaliser) Normalise(ctx context.Context, artifact *domain.Artifact) (string, error) {
	if artifact == nil {
		return "", domain.ErrInvalidInput
	}

	var errs []error
	for _, e := range n.extractors {
		text, err := e.Extract(ctx, artifact.Content)
		if err == nil && strings.TrimSpace(text) != "" {
			logger.Debug("pdf: %s extracted by %s", artifact.Name, e.Name())
			return text, nil
		}
		if err == nil {
			err = errors.New("empty text")
		}
		logger.Debug("pdf: %s extractor failed for %s: %v", e.Name(), artifact.Name, err)
		errs = append(errs, fmt.Errorf("%s: %w", e.Name(), err))
	}

	return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailure, errors.Join(errs...))
}

// layoutExtractor runs pdftotext -layout on a temporary copy of the file.
type layoutExtractor struct {
	runner CommandRunner
}

func (l *layoutExtractor) Name() string { return "layout" }

func (l *layoutExtractor) Extract(ctx context.Context, content []byte) (string, error) {
	tmp, err := os.CreateTemp("", "sercha-rag-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	out, err := l.runner.Run(ctx, pdftotext, "-layout", "-enc", "UTF-8", tmp.Name(), "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}
	// pdftotext separates pages with form feeds.
	return strings.ReplaceAll(string(out), "\f", "\n\n"), nil
}

// rawExtractor reads page text in-process.
type rawExtractor struct{}

func (rawExtractor) Name() string { return "raw" }

func (rawExtractor) Extract(_ context.Context, content []byte) (text string, err error) {
	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, pageText)
	}
	return strings.Join(pages, "\n\n"), nil
}

// CheckAvailable returns ErrPDFToolNotFound if pdftotext is not installed.
func CheckAvailable() error {
	if _, err := exec.LookPath(pdftotext); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions explains how to install pdftotext.
func InstallInstructions() string {
	return `pdftotext improves PDF table extraction. Install poppler:
  macOS:         brew install poppler
  Debian/Ubuntu: apt install poppler-utils
  Fedora:        dnf install poppler-utils
Without it, PDFs are read with the built-in page text extractor.`
}
