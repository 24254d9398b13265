// Command sercha-rag ingests documents into isolated datasets and answers
// questions grounded in the passages retrieved from them.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/lock"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/web"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/normalisers"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = ""

// appDirName holds config, data and lock files under the home directory.
const appDirName = ".sercha-rag"

func main() {
	cli.SetVersion(version)

	var res resources
	err := run(&res)
	if err == nil {
		err = cli.Execute()
	}
	res.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// resources are closed in reverse order of opening once the command returns.
type resources []io.Closer

func (r *resources) add(c io.Closer) {
	*r = append(*r, c)
}

// Close closes every resource, logging failures.
func (r resources) Close() {
	for i := len(r) - 1; i >= 0; i-- {
		if err := r[i].Close(); err != nil {
			logger.Warn("close: %v", err)
		}
	}
}

// run wires the services and registers what it opens in res. Settings
// commands stay usable when the AI services cannot be built, so those
// failures are printed, not returned.
func run(res *resources) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("getting home directory: %w", err)
	}
	appDir := filepath.Join(home, appDirName)

	cwd, _ := os.Getwd() //nolint:errcheck // an empty dir is skipped
	if _, err := file.LoadEnvFiles(cwd, appDir); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}

	var configStore driven.ConfigStore
	fileStore, err := file.NewConfigStore(appDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Warning: config file unavailable, settings will not be saved:", err)
		configStore = memory.NewConfigStore()
	} else {
		configStore = fileStore
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	cli.SetServices(cli.Services{Settings: settingsService})

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if err := settingsService.Validate(); err != nil {
		warn(err)
		return nil
	}

	caps, err := ai.NewCapabilities(settings)
	if err != nil {
		warn(err)
		return nil
	}
	res.add(caps)
	for _, w := range caps.Warnings {
		fmt.Fprintln(os.Stderr, "Warning:", w)
	}

	dataDir := settings.Storage.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(appDir, "data")
	}
	store, locker, err := openStorage(settings.Storage.Backend, dataDir)
	if err != nil {
		return err
	}
	res.add(store)

	pipeline, err := postprocessors.NewDefaultPipeline(settings.Chunking)
	if err != nil {
		return fmt.Errorf("building chunker: %w", err)
	}

	index := services.NewIndexManager(store, caps.Embedder)
	fetcher := web.New(web.ConfigFromSettings(settings.Fetch), nil)

	cli.SetServices(cli.Services{
		Ingest: services.NewIngestService(normalisers.NewDefaultRegistry(), pipeline, index, fetcher, locker),
		Answer: services.NewAnswerService(index, caps.Generators,
			services.WithRetrieval(settings.Retrieval),
			services.WithCaptioner(caps.Captioner),
		),
		Search:   services.NewSearchService(index),
		Dataset:  services.NewDatasetService(index),
		Settings: settingsService,
	})
	return nil
}

// openStorage returns the vector store and the matching collection locker.
// Persistent stores are shared between processes, so they get file locks.
func openStorage(backend domain.StorageBackend, dataDir string) (driven.VectorStore, driven.CollectionLocker, error) {
	if backend == domain.StorageMemory {
		return memory.NewVectorStore(), lock.NewMemory(), nil
	}

	store, err := sqlite.NewVectorStore(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening vector store: %w", err)
	}
	locker, err := lock.NewFile(filepath.Join(dataDir, "locks"))
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return store, locker, nil
}

func warn(err error) {
	fmt.Fprintln(os.Stderr, "Warning:", err)
	fmt.Fprintln(os.Stderr, "Only 'settings' and 'version' are available until this is fixed.")
}
