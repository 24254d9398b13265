package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/normalisers"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/pdf"
)

var ingestKey string

// pdfToolCheck reports whether pdftotext is installed.
var pdfToolCheck = pdf.CheckAvailable

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Ingest files into a dataset",
	Long: `Extracts the text of each file, splits it into passages and stores them in
the dataset. Supported formats: txt, pdf, docx, pptx, csv, xlsx.

Each file is stored under a document key, its base name by default.
Ingesting a file again replaces the passages stored under its key.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

var ingestURLCmd = &cobra.Command{
	Use:   "ingest-url [url]",
	Short: "Fetch a web page and ingest its text",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngestURL,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestKey, "key", "k", "", "document key (single file only)")
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(ingestURLCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	coll, err := collection()
	if err != nil {
		return err
	}
	if ingestKey != "" && len(args) > 1 {
		return errors.New("--key can only be used with a single file")
	}

	hasPDF := false
	for _, path := range args {
		if !normalisers.IsSupported(path) {
			return fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, path)
		}
		hasPDF = hasPDF || domain.FormatFromName(path) == "pdf"
	}
	if hasPDF && pdfToolCheck() != nil {
		cmd.PrintErrln(pdf.InstallInstructions())
	}

	total := 0
	for _, path := range args {
		key := ingestKey
		if key == "" {
			key = filepath.Base(path)
		}
		n, err := ingestService.IngestDocument(cmd.Context(), coll, path, key)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", path, err)
		}
		cmd.Printf("Ingested %s: %d passages\n", path, n)
		total += n
	}

	if len(args) > 1 {
		cmd.Printf("Stored %d passages from %d files\n", total, len(args))
	}
	return nil
}

func runIngestURL(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	id, err := dataset()
	if err != nil {
		return err
	}

	n, err := ingestService.IngestURL(cmd.Context(), id, args[0])
	if errors.Is(err, domain.ErrNoDocuments) {
		cmd.Println("No documents found.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("ingest %s: %w", args[0], err)
	}

	cmd.Printf("Ingested %s: %d passages\n", args[0], n)
	return nil
}
