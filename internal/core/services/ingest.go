package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService runs artifacts through normalisation, chunking and indexing.
// Writers to one collection are serialised by the locker; different
// collections proceed independently.
type IngestService struct {
	normalisers driven.NormaliserRegistry
	pipeline    driven.PostProcessorPipeline
	index       *IndexManager
	fetcher     driven.WebFetcher
	locker      driven.CollectionLocker
}

// NewIngestService creates an ingest service.
// fetcher may be nil when URL ingestion is not needed.
func NewIngestService(
	normalisers driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	index *IndexManager,
	fetcher driven.WebFetcher,
	locker driven.CollectionLocker,
) *IngestService {
	return &IngestService{
		normalisers: normalisers,
		pipeline:    pipeline,
		index:       index,
		fetcher:     fetcher,
		locker:      locker,
	}
}

// IngestDocument reads the file at path and stores its passages under docKey.
// The extension is checked before the file is read.
func (s *IngestService) IngestDocument(ctx context.Context, collection, path, docKey string) (int, error) {
	name := filepath.Base(path)
	format := domain.FormatFromName(name)
	if !slices.Contains(s.normalisers.SupportedFormats(), format) {
		return 0, fmt.Errorf("%w: %q (%s)", domain.ErrUnsupportedFormat, format, name)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}

	return s.IngestArtifact(ctx, collection, &domain.Artifact{Name: name, Content: content}, docKey)
}

// IngestArtifact normalises and chunks an in-memory artifact and stores its passages.
func (s *IngestService) IngestArtifact(
	ctx context.Context, collection string, artifact *domain.Artifact, docKey string,
) (int, error) {
	if artifact == nil || docKey == "" || collection == "" {
		return 0, fmt.Errorf("%w: artifact, collection and document key are required", domain.ErrInvalidInput)
	}

	defer logger.Section("Ingest")()
	logger.Info("Ingesting %s into %s as %s", artifact.Name, collection, docKey)

	text, err := s.normalisers.Normalise(ctx, artifact)
	if err != nil {
		return 0, err
	}
	if strings.TrimSpace(text) == "" {
		return 0, fmt.Errorf("%w: %s", domain.ErrExtractionFailure, artifact.Name)
	}

	datasetID, _ := domain.DatasetIDFromCollection(collection)
	doc := &domain.Document{
		ID:        uuid.NewString(),
		Key:       docKey,
		DatasetID: datasetID,
		Source:    artifact.Name,
		Format:    artifact.FormatTag(),
		Content:   text,
		CreatedAt: time.Now(),
	}

	unlock, err := s.locker.Lock(ctx, collection)
	if err != nil {
		return 0, fmt.Errorf("lock %s: %w", collection, err)
	}
	defer unlock()

	return s.store(ctx, collection, doc)
}

// IngestTextDocs stores already-extracted texts. Document i is keyed
// "{datasetID}-{i}"; documents that produce no passages are skipped.
func (s *IngestService) IngestTextDocs(ctx context.Context, datasetID string, docs []domain.TextDoc) (int, error) {
	keys := make([]string, len(docs))
	for i := range docs {
		keys[i] = fmt.Sprintf("%s-%d", datasetID, i)
	}
	return s.ingestText(ctx, datasetID, docs, keys)
}

// IngestURL fetches one page and stores its text. The page is keyed by its
// URL so ingesting different pages never overwrites earlier ones.
func (s *IngestService) IngestURL(ctx context.Context, datasetID, url string) (int, error) {
	if s.fetcher == nil {
		return 0, fmt.Errorf("%w: no web fetcher configured", domain.ErrFetchRejected)
	}

	defer logger.Section("Fetch")()
	text, ok := s.fetcher.FetchOne(ctx, url)
	if !ok {
		logger.Warn("No documents found at %s", url)
		return 0, fmt.Errorf("%w: %s", domain.ErrNoDocuments, url)
	}

	key := datasetID + "-" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(url)).String()
	return s.ingestText(ctx, datasetID, []domain.TextDoc{{Source: url, Text: text}}, []string{key})
}

func (s *IngestService) ingestText(
	ctx context.Context, datasetID string, docs []domain.TextDoc, keys []string,
) (int, error) {
	if err := domain.ValidateDatasetID(datasetID); err != nil {
		return 0, err
	}
	collection := domain.CollectionName(datasetID)

	defer logger.Section("Ingest")()
	logger.Info("Ingesting %d text documents into %s", len(docs), collection)

	unlock, err := s.locker.Lock(ctx, collection)
	if err != nil {
		return 0, fmt.Errorf("lock %s: %w", collection, err)
	}
	defer unlock()

	total := 0
	for i, d := range docs {
		doc := &domain.Document{
			ID:        uuid.NewString(),
			Key:       keys[i],
			DatasetID: datasetID,
			Source:    d.Source,
			Content:   d.Text,
			CreatedAt: time.Now(),
		}
		n, err := s.store(ctx, collection, doc)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// RemoveDocument deletes every passage stored under docKey. Removing an
// unknown key is not an error.
func (s *IngestService) RemoveDocument(ctx context.Context, collection, docKey string) error {
	if collection == "" || docKey == "" {
		return fmt.Errorf("%w: collection and document key are required", domain.ErrInvalidInput)
	}

	unlock, err := s.locker.Lock(ctx, collection)
	if err != nil {
		return fmt.Errorf("lock %s: %w", collection, err)
	}
	defer unlock()

	if err := s.index.Upsert(ctx, collection, docKey, nil, nil); err != nil {
		return err
	}
	logger.Info("Removed %s from %s", docKey, collection)
	return nil
}

// store chunks doc and upserts its passages. The caller holds the collection lock.
func (s *IngestService) store(ctx context.Context, collection string, doc *domain.Document) (int, error) {
	passages, err := s.pipeline.Process(ctx, doc)
	if err != nil {
		return 0, fmt.Errorf("chunk %s: %w", doc.Source, err)
	}
	if len(passages) == 0 {
		logger.Debug("No passages for %s, skipping", doc.Source)
		return 0, nil
	}

	metas := make([]domain.PassageMetadata, len(passages))
	for i := range passages {
		metas[i] = domain.PassageMetadata{
			DocumentKey: doc.Key,
			Source:      doc.Source,
			Ordinal:     i,
			DatasetID:   doc.DatasetID,
		}
	}

	if err := s.index.Upsert(ctx, collection, doc.Key, passages, metas); err != nil {
		return 0, err
	}

	logger.Info("Stored %d passages for %s", len(passages), doc.Source)
	return len(passages), nil
}
