// Package cli implements the sercha-rag command line.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	ingestService   driving.IngestService
	answerService   driving.AnswerService
	searchService   driving.SearchService
	datasetService  driving.DatasetService
	settingsService driving.SettingsService
)

var (
	verbose   bool
	datasetID string
)

// errDatasetRequired is returned by commands that work on one dataset.
var errDatasetRequired = errors.New("dataset is required (use --dataset)")

var rootCmd = &cobra.Command{
	Use:           "sercha-rag",
	Short:         "Ingest documents and ask questions grounded in them",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `sercha-rag splits documents into passages, indexes them per dataset and
answers questions using only the passages it retrieves.

Every dataset is isolated: search and ask only ever see the passages
ingested into the dataset named with --dataset.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&datasetID, "dataset", "d", "", "dataset id")
}

// Services holds the core services the commands call.
type Services struct {
	Ingest   driving.IngestService
	Answer   driving.AnswerService
	Search   driving.SearchService
	Dataset  driving.DatasetService
	Settings driving.SettingsService
}

// SetServices wires the core services into the commands.
func SetServices(s Services) {
	ingestService = s.Ingest
	answerService = s.Answer
	searchService = s.Search
	datasetService = s.Dataset
	settingsService = s.Settings
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// dataset returns the validated --dataset flag.
func dataset() (string, error) {
	if datasetID == "" {
		return "", errDatasetRequired
	}
	if err := domain.ValidateDatasetID(datasetID); err != nil {
		return "", err
	}
	return datasetID, nil
}

// collection returns the collection of the --dataset flag.
func collection() (string, error) {
	id, err := dataset()
	if err != nil {
		return "", err
	}
	return domain.CollectionName(id), nil
}
