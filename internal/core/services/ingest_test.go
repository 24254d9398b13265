package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/local"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/lock"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/normalisers"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors"
)

const capitals = "Paris is the capital of France.\n\nBerlin is the capital of Germany."

func newIngest(t *testing.T, chunking domain.ChunkSettings, fetcher driven.WebFetcher) (*IngestService, *IndexManager) {
	t.Helper()
	pipeline, err := postprocessors.NewDefaultPipeline(chunking)
	require.NoError(t, err)
	index := NewIndexManager(memory.NewVectorStore(), local.NewEmbeddingService(256))
	return NewIngestService(normalisers.NewDefaultRegistry(), pipeline, index, fetcher, lock.NewMemory()), index
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestIngestDocument_SplitsWithOverlap(t *testing.T) {
	ctx := context.Background()
	svc, index := newIngest(t, domain.ChunkSettings{Size: 40, Overlap: 5}, nil)
	collection := domain.CollectionName("geo")

	n, err := svc.IngestDocument(ctx, collection, writeFile(t, "capitals.txt", capitals), "capitals")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	results, err := index.Search(ctx, collection, "capital of Germany", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "ance. Berlin is the capital of Germany.", results[0].Text)
	assert.Equal(t, domain.PassageMetadata{
		DocumentKey: "capitals",
		Source:      "capitals.txt",
		Ordinal:     1,
		DatasetID:   "geo",
	}, results[0].Metadata)
}

func TestIngestDocument_UnsupportedFormat(t *testing.T) {
	svc, _ := newIngest(t, domain.ChunkSettings{Size: 700, Overlap: 100}, nil)

	// The file does not exist: the extension is rejected before reading.
	_, err := svc.IngestDocument(context.Background(), "ds_a", "/nowhere/image.exe", "k")

	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestIngestDocument_MissingFile(t *testing.T) {
	svc, _ := newIngest(t, domain.ChunkSettings{Size: 700, Overlap: 100}, nil)

	_, err := svc.IngestDocument(context.Background(), "ds_a", filepath.Join(t.TempDir(), "gone.txt"), "k")

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIngestArtifact(t *testing.T) {
	tests := []struct {
		name     string
		artifact *domain.Artifact
		docKey   string
		wantErr  error
		want     int
	}{
		{"text", &domain.Artifact{Name: "a.txt", Content: []byte("hello world")}, "a", nil, 1},
		{"nil artifact", nil, "a", domain.ErrInvalidInput, 0},
		{"missing key", &domain.Artifact{Name: "a.txt", Content: []byte("x")}, "", domain.ErrInvalidInput, 0},
		{"blank text", &domain.Artifact{Name: "a.txt", Content: []byte(" \n\t ")}, "a", domain.ErrExtractionFailure, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newIngest(t, domain.ChunkSettings{Size: 700, Overlap: 100}, nil)

			n, err := svc.IngestArtifact(context.Background(), "ds_a", tt.artifact, tt.docKey)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestIngestArtifact_ReplacesByKey(t *testing.T) {
	ctx := context.Background()
	svc, index := newIngest(t, domain.ChunkSettings{Size: 700, Overlap: 100}, nil)

	_, err := svc.IngestArtifact(ctx, "ds_a", &domain.Artifact{Name: "v1.txt", Content: []byte("old text")}, "doc")
	require.NoError(t, err)
	_, err = svc.IngestArtifact(ctx, "ds_a", &domain.Artifact{Name: "v2.txt", Content: []byte("new text")}, "doc")
	require.NoError(t, err)

	results, err := index.Search(ctx, "ds_a", "text", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"new text"}, domain.Texts(results))
}

func TestIngestTextDocs(t *testing.T) {
	ctx := context.Background()
	svc, index := newIngest(t, domain.ChunkSettings{Size: 700, Overlap: 100}, nil)
	docs := []domain.TextDoc{
		{Source: "https://a.example", Text: "alpha page"},
		{Source: "https://b.example", Text: "   "},
		{Source: "https://c.example", Text: "gamma page"},
	}

	n, err := svc.IngestTextDocs(ctx, "web", docs)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	results, err := index.Search(ctx, domain.CollectionName("web"), "page", 10)
	require.NoError(t, err)
	keys := make([]string, 0, len(results))
	for _, r := range results {
		keys = append(keys, r.Metadata.DocumentKey)
	}
	assert.ElementsMatch(t, []string{"web-0", "web-2"}, keys)
}

func TestIngestTextDocs_RejectsDatasetID(t *testing.T) {
	for _, id := range []string{"", "../../etc", "a/b", "web page"} {
		t.Run(id, func(t *testing.T) {
			svc, index := newIngest(t, domain.ChunkSettings{Size: 700, Overlap: 100}, nil)

			_, err := svc.IngestTextDocs(context.Background(), id, []domain.TextDoc{{Text: "x"}})

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			infos, err := index.ListCollections(context.Background())
			require.NoError(t, err)
			assert.Empty(t, infos)
		})
	}
}

func TestIngestURL(t *testing.T) {
	ctx := context.Background()
	fetcher := &mockFetcher{pages: map[string]string{
		"https://a.example/": "The harbour opens at dawn.",
		"https://b.example/": "The museum closes at six.",
	}}
	svc, index := newIngest(t, domain.ChunkSettings{Size: 700, Overlap: 100}, fetcher)

	n, err := svc.IngestURL(ctx, "web", "https://a.example/")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, err = svc.IngestURL(ctx, "web", "https://b.example/")
	require.NoError(t, err)

	results, err := index.Search(ctx, domain.CollectionName("web"), "when does it open", 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, []string{"https://a.example/", "https://b.example/"}, fetcher.calls)
}

func TestIngestURL_NothingFetched(t *testing.T) {
	svc, _ := newIngest(t, domain.ChunkSettings{Size: 700, Overlap: 100}, &mockFetcher{})

	n, err := svc.IngestURL(context.Background(), "web", "https://empty.example/")

	assert.ErrorIs(t, err, domain.ErrNoDocuments)
	assert.Zero(t, n)
}

func TestIngestURL_NoFetcher(t *testing.T) {
	svc, _ := newIngest(t, domain.ChunkSettings{Size: 700, Overlap: 100}, nil)

	_, err := svc.IngestURL(context.Background(), "web", "https://a.example/")

	assert.ErrorIs(t, err, domain.ErrFetchRejected)
}

func TestIngest_CancelledWhileLocked(t *testing.T) {
	pipeline, err := postprocessors.NewDefaultPipeline(domain.ChunkSettings{Size: 700, Overlap: 100})
	require.NoError(t, err)
	locker := lock.NewMemory()
	index := NewIndexManager(memory.NewVectorStore(), local.NewEmbeddingService(32))
	svc := NewIngestService(normalisers.NewDefaultRegistry(), pipeline, index, nil, locker)

	unlock, err := locker.Lock(context.Background(), "ds_a")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.IngestArtifact(ctx, "ds_a", &domain.Artifact{Name: "a.txt", Content: []byte("x")}, "k")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRemoveDocument(t *testing.T) {
	ctx := context.Background()
	svc, index := newIngest(t, domain.ChunkSettings{Size: 700, Overlap: 100}, nil)

	_, err := svc.IngestArtifact(ctx, "ds_a", &domain.Artifact{Name: "a.txt", Content: []byte("alpha text")}, "a")
	require.NoError(t, err)
	_, err = svc.IngestArtifact(ctx, "ds_a", &domain.Artifact{Name: "b.txt", Content: []byte("beta text")}, "b")
	require.NoError(t, err)

	require.NoError(t, svc.RemoveDocument(ctx, "ds_a", "a"))
	require.NoError(t, svc.RemoveDocument(ctx, "ds_a", "a"))
	require.NoError(t, svc.RemoveDocument(ctx, "ds_unknown", "a"))

	results, err := index.Search(ctx, "ds_a", "text", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"beta text"}, domain.Texts(results))

	assert.ErrorIs(t, svc.RemoveDocument(ctx, "ds_a", ""), domain.ErrInvalidInput)
}
