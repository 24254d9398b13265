package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/connectors/filesystem"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/normalisers"
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Keep a dataset in sync with a directory",
	Long: `Ingests every supported file under the directory, then watches it.
Created and modified files are ingested again, and deleted files have
their passages removed. Files are keyed by their path relative to the
directory. Hidden files and directories are skipped.

Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	coll, err := collection()
	if err != nil {
		return err
	}

	root := args[0]
	conn := filesystem.New(root, normalisers.IsSupported)
	defer conn.Close()

	ctx := cmd.Context()
	files, err := conn.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan %s: %w", root, err)
	}
	for _, path := range files {
		applyChange(ctx, cmd, coll, root, filesystem.Change{Type: filesystem.ChangeCreated, Path: path})
	}
	cmd.Printf("Indexed %d files. Watching %s for changes...\n", len(files), root)

	changes, err := conn.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	for change := range changes {
		applyChange(ctx, cmd, coll, root, change)
	}
	return nil
}

// applyChange mirrors one file change into the collection. Failures are
// reported and do not stop the watch.
func applyChange(ctx context.Context, cmd *cobra.Command, coll, root string, change filesystem.Change) {
	key := watchKey(root, change.Path)

	if change.Type == filesystem.ChangeDeleted {
		if err := ingestService.RemoveDocument(ctx, coll, key); err != nil {
			logger.Warn("Remove %s: %v", key, err)
			return
		}
		cmd.Printf("Removed %s\n", key)
		return
	}

	n, err := ingestService.IngestDocument(ctx, coll, change.Path, key)
	if err != nil {
		logger.Warn("Ingest %s: %v", change.Path, err)
		return
	}
	cmd.Printf("Ingested %s: %d passages\n", key, n)
}

// watchKey returns the slash-separated path of file relative to root.
func watchKey(root, file string) string {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return filepath.ToSlash(file)
	}
	return filepath.ToSlash(rel)
}
