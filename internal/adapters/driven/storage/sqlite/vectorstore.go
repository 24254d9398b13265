package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/similarity"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore persists collections in a SQLite database.
type VectorStore struct {
	db   *sql.DB
	path string
}

// NewVectorStore opens or creates the vector database in dataDir.
// If dataDir is empty, defaults to ~/.sercha-rag/data.
func NewVectorStore(dataDir string) (*VectorStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".sercha-rag", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "vectors.db")

	// WAL lets readers proceed while an ingest holds the write lock.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &VectorStore{db: db, path: dbPath}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *VectorStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *VectorStore) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *VectorStore) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// EnsureCollection creates the collection if it does not exist.
func (s *VectorStore) EnsureCollection(ctx context.Context, name, model string, dimensions int) error {
	return ensure(ctx, s.db, name, model, dimensions)
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func ensure(ctx context.Context, q execQuerier, name, model string, dimensions int) error {
	if _, err := q.ExecContext(ctx,
		"INSERT INTO collections (name, model, dimensions) VALUES (?, ?, ?) ON CONFLICT(name) DO NOTHING",
		name, model, dimensions); err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	var (
		stored      int
		storedModel string
	)
	if err := q.QueryRowContext(ctx, "SELECT dimensions, model FROM collections WHERE name = ?", name).
		Scan(&stored, &storedModel); err != nil {
		return fmt.Errorf("reading collection: %w", err)
	}
	if stored != dimensions {
		return fmt.Errorf("%w: collection %s holds %d-dimension vectors, got %d",
			domain.ErrInvalidInput, name, stored, dimensions)
	}

	switch {
	case model == "" || storedModel == model:
	case storedModel == "":
		if _, err := q.ExecContext(ctx,
			"UPDATE collections SET model = ? WHERE name = ? AND model = ''", model, name); err != nil {
			return fmt.Errorf("recording collection model: %w", err)
		}
	default:
		return fmt.Errorf("%w: collection %s was embedded with %s, got %s",
			domain.ErrInvalidInput, name, storedModel, model)
	}
	return nil
}

// CollectionModel returns the embedding model recorded for a collection.
func (s *VectorStore) CollectionModel(ctx context.Context, name string) (string, error) {
	var model string
	err := s.db.QueryRowContext(ctx, "SELECT model FROM collections WHERE name = ?", name).Scan(&model)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading collection: %w", err)
	}
	return model, nil
}

// ReplaceDocument stores passages for a document key and removes any
// stored passage for the key that the new set does not contain.
// The whole replacement runs in one transaction.
func (s *VectorStore) ReplaceDocument(ctx context.Context, name, documentKey string, passages []domain.Passage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	dimensions, err := collectionDimensions(ctx, tx, name)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		if len(passages) == 0 {
			return nil
		}
		dimensions = len(passages[0].Embedding)
		if err := ensure(ctx, tx, name, "", dimensions); err != nil {
			return err
		}
	case err != nil:
		return err
	}

	ids := make([]any, 0, len(passages)+2)
	ids = append(ids, name, documentKey)

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO passages (collection, id, doc_key, source, ordinal, dataset_id, content, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			doc_key = excluded.doc_key,
			source = excluded.source,
			ordinal = excluded.ordinal,
			dataset_id = excluded.dataset_id,
			content = excluded.content,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range passages {
		if len(p.Embedding) != dimensions {
			return fmt.Errorf("%w: passage %s has %d dimensions, collection %s has %d",
				domain.ErrInvalidInput, p.ID, len(p.Embedding), name, dimensions)
		}
		if _, err := stmt.ExecContext(ctx, name, p.ID, p.Metadata.DocumentKey, p.Metadata.Source,
			p.Metadata.Ordinal, p.Metadata.DatasetID, p.Content, float32SliceToBytes(p.Embedding)); err != nil {
			return fmt.Errorf("saving passage: %w", err)
		}
		ids = append(ids, p.ID)
	}

	stale := "DELETE FROM passages WHERE collection = ? AND doc_key = ?"
	if len(passages) > 0 {
		stale += " AND id NOT IN (" + strings.TrimSuffix(strings.Repeat("?,", len(passages)), ",") + ")"
	}
	if _, err := tx.ExecContext(ctx, stale, ids...); err != nil {
		return fmt.Errorf("removing stale passages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func collectionDimensions(ctx context.Context, q execQuerier, name string) (int, error) {
	var dimensions int
	err := q.QueryRowContext(ctx, "SELECT dimensions FROM collections WHERE name = ?", name).Scan(&dimensions)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("reading collection: %w", err)
	}
	return dimensions, nil
}

// Search returns up to k passages ranked by cosine similarity.
func (s *VectorStore) Search(ctx context.Context, name string, query []float32, k int) ([]domain.RetrievalResult, error) {
	if k <= 0 {
		return []domain.RetrievalResult{}, nil
	}

	dimensions, err := collectionDimensions(ctx, s.db, name)
	if errors.Is(err, domain.ErrNotFound) {
		return []domain.RetrievalResult{}, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT doc_key, source, ordinal, dataset_id, content, embedding
		FROM passages WHERE collection = ?
	`, name)
	if err != nil {
		return nil, fmt.Errorf("querying passages: %w", err)
	}
	defer rows.Close()

	results := []domain.RetrievalResult{}
	for rows.Next() {
		var (
			r    domain.RetrievalResult
			blob []byte
		)
		if err := rows.Scan(&r.Metadata.DocumentKey, &r.Metadata.Source, &r.Metadata.Ordinal,
			&r.Metadata.DatasetID, &r.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning passage: %w", err)
		}
		r.Score = similarity.Cosine(query, bytesToFloat32Slice(blob))
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating passages: %w", err)
	}

	if len(results) > 0 && len(query) != dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, collection %s has %d",
			domain.ErrInvalidInput, len(query), name, dimensions)
	}
	return similarity.TopK(results, k), nil
}

// DeleteCollection removes a collection and its passages.
// Absent collections are ignored.
func (s *VectorStore) DeleteCollection(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM passages WHERE collection = ?", name); err != nil {
		return fmt.Errorf("deleting passages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM collections WHERE name = ?", name); err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListCollections summarises stored collections, sorted by name.
func (s *VectorStore) ListCollections(ctx context.Context) ([]domain.CollectionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.name, c.model, COUNT(p.id), COUNT(DISTINCT p.doc_key)
		FROM collections c LEFT JOIN passages p ON p.collection = c.name
		GROUP BY c.name, c.model
		ORDER BY c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	defer rows.Close()

	infos := []domain.CollectionInfo{}
	for rows.Next() {
		var info domain.CollectionInfo
		if err := rows.Scan(&info.Name, &info.Model, &info.Passages, &info.Documents); err != nil {
			return nil, fmt.Errorf("scanning collection: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
