package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ramonbnuezjr/project-rag-neocortex/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/ramonbnuezjr/project-rag-neocortex/internal/core/domain"
	"github.com/ramonbnuezjr/project-rag-neocortex/internal/core/ports/driven"
	"github.com/ramonbnuezjr/project-rag-neocortex/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.IndexStore = (*Store)(nil)

// Store is a SQLite-backed similarity index.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens the index database under the specified data directory,
// creating the directory and schema on first use. If dataDir is empty,
// defaults to ~/.neocortex/data/index.db. An unusable path or corrupt
// database surfaces as domain.ErrIndexUnavailable.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("%w: getting home directory: %v", domain.ErrIndexUnavailable, err)
		}
		dataDir = filepath.Join(home, ".neocortex", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("%w: creating data directory: %v", domain.ErrIndexUnavailable, err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", domain.ErrIndexUnavailable, err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: running migrations: %v", domain.ErrIndexUnavailable, err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Upsert writes the batch in a single transaction. A conflicting id
// replaces body, metadata, and embedding but keeps the original seq, so
// re-ingested entries retain their insertion position.
func (s *Store) Upsert(ctx context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (id, seq, body, metadata, embedding)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM entries), ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			body = excluded.body,
			metadata = excluded.metadata,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, entry := range entries {
		metadataJSON, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata: %w", err)
		}

		embeddingBlob := float32SliceToBytes(entry.Embedding)

		if _, err := stmt.ExecContext(ctx, entry.ID, entry.Body,
			string(metadataJSON), embeddingBlob); err != nil {
			return fmt.Errorf("saving entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// TopK scans every stored embedding and returns the k entries with
// highest cosine similarity to the query, descending by score, ties
// broken by insertion order. A k larger than the stored count returns
// everything.
func (s *Store) TopK(ctx context.Context, query []float32, k int) ([]domain.ScoredEntry, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, body, metadata, embedding
		FROM entries
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var scored []domain.ScoredEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		scored = append(scored, domain.ScoredEntry{
			Entry: *entry,
			Score: cosineSimilarity(query, entry.Embedding),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	// Rows arrive in seq order, so a stable sort by score keeps
	// insertion order for ties.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// Get retrieves a single entry by unit ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.IndexEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, body, metadata, embedding
		FROM entries WHERE id = ?
	`, id)

	var entry domain.IndexEntry
	var metadataJSON string
	var embeddingBlob []byte
	if err := row.Scan(&entry.ID, &entry.Body, &metadataJSON, &embeddingBlob); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning entry: %w", err)
	}

	if err := json.Unmarshal([]byte(metadataJSON), &entry.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshaling metadata: %w", err)
	}
	entry.Embedding = bytesToFloat32Slice(embeddingBlob)

	return &entry, nil
}

// Count returns the number of persisted entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return count, nil
}

// RecordRun persists the outcome of an ingestion run.
func (s *Store) RecordRun(ctx context.Context, run domain.IngestRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ingest_runs (id, started_at, finished_at, units, skipped)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt.UTC(), run.FinishedAt.UTC(), run.Units, run.Skipped)

	if err != nil {
		return fmt.Errorf("recording ingest run: %w", err)
	}
	return nil
}

// LastRun returns the most recent ingestion run.
func (s *Store) LastRun(ctx context.Context) (*domain.IngestRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, units, skipped
		FROM ingest_runs
		ORDER BY finished_at DESC, rowid DESC
		LIMIT 1
	`)

	var run domain.IngestRun
	if err := row.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Units, &run.Skipped); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning ingest run: %w", err)
	}

	return &run, nil
}

// ==================== Helper Functions ====================

// scanEntry scans an entry from *sql.Rows.
func scanEntry(rows *sql.Rows) (*domain.IndexEntry, error) {
	var entry domain.IndexEntry
	var metadataJSON string
	var embeddingBlob []byte

	if err := rows.Scan(&entry.ID, &entry.Body, &metadataJSON, &embeddingBlob); err != nil {
		return nil, fmt.Errorf("scanning entry: %w", err)
	}

	if err := json.Unmarshal([]byte(metadataJSON), &entry.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshaling metadata: %w", err)
	}
	entry.Embedding = bytesToFloat32Slice(embeddingBlob)

	return &entry, nil
}

// cosineSimilarity computes the cosine of the angle between two
// vectors. A length mismatch means the stored embedding came from a
// different model configuration than the query; it scores 0 and is
// logged so the misconfiguration surfaces instead of quietly degrading
// retrieval. A zero vector also scores 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		logger.Warn("Embedding length mismatch: query %d vs stored %d dimensions", len(a), len(b))
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
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
