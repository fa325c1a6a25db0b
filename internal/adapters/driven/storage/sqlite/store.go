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

	"github.com/custodia-labs/folio/internal/adapters/driven/storage/scan"
	"github.com/custodia-labs/folio/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// DBName is the database file created inside the store directory.
const DBName = "folio.db"

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is a SQLite-backed vector store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens or creates the database in dataDir.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("%w: store directory is empty", domain.ErrInvalidInput)
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBName)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One connection serialises writers; upsert transactions read then write.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
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

// Collection returns the named collection, creating it if absent.
func (s *Store) Collection(ctx context.Context, name string) (driven.Collection, error) {
	if err := scan.ValidateName(name); err != nil {
		return nil, err
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO collections (name) VALUES (?) ON CONFLICT(name) DO NOTHING", name)
	if err != nil {
		return nil, s.wrap("creating collection", err)
	}

	var id int64
	row := s.db.QueryRowContext(ctx, "SELECT id FROM collections WHERE name = ?", name)
	if err := row.Scan(&id); err != nil {
		return nil, s.wrap("loading collection", err)
	}
	return &collection{store: s, id: id, name: name}, nil
}

// wrap maps use-after-close onto the domain error.
func (s *Store) wrap(op string, err error) error {
	if strings.Contains(err.Error(), "database is closed") {
		return fmt.Errorf("%s: %w", op, domain.ErrStoreClosed)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
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
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_vectors.up.sql" -> 1
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
	}

	return nil
}

// Ensure collection implements the interface.
var _ driven.Collection = (*collection)(nil)

type collection struct {
	store *Store
	id    int64
	name  string
}

// Name returns the collection name.
func (c *collection) Name() string {
	return c.name
}

// Upsert inserts the entry or replaces the entry with the same ID.
// The first upsert fixes the collection's dimension.
func (c *collection) Upsert(ctx context.Context, entry domain.CorpusEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("%w: entry id is empty", domain.ErrInvalidInput)
	}
	if len(entry.Embedding) == 0 {
		return domain.ErrEmptyEmbedding
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return c.store.wrap("beginning upsert", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var dimension int
	if err := tx.QueryRowContext(ctx,
		"SELECT dimension FROM collections WHERE id = ?", c.id).Scan(&dimension); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("collection %q: %w", c.name, domain.ErrNotFound)
		}
		return fmt.Errorf("reading dimension: %w", err)
	}

	switch {
	case dimension == 0:
		if _, err := tx.ExecContext(ctx,
			"UPDATE collections SET dimension = ? WHERE id = ?", len(entry.Embedding), c.id); err != nil {
			return fmt.Errorf("setting dimension: %w", err)
		}
	case dimension != len(entry.Embedding):
		return fmt.Errorf("%w: collection %q holds %d dimensions, got %d",
			domain.ErrDimensionMismatch, c.name, dimension, len(entry.Embedding))
	}

	m := entry.Metadata
	_, err = tx.ExecContext(ctx, `
		INSERT INTO corpus_entries
			(collection_id, id, embedding, contents, unique_id, source, authors,
			 publisher, date_published, page, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(collection_id, id) DO UPDATE SET
			embedding = excluded.embedding,
			contents = excluded.contents,
			unique_id = excluded.unique_id,
			source = excluded.source,
			authors = excluded.authors,
			publisher = excluded.publisher,
			date_published = excluded.date_published,
			page = excluded.page,
			updated_at = excluded.updated_at
	`, c.id, entry.ID, float32SliceToBytes(entry.Embedding), entry.Contents,
		m.UniqueID, m.Source, m.Authors, m.Publisher, m.DatePublished, m.Page)
	if err != nil {
		return fmt.Errorf("saving entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing upsert: %w", err)
	}
	return nil
}

// Query scans the collection in insertion order and ranks by cosine distance.
func (c *collection) Query(ctx context.Context, req driven.QueryRequest) (driven.QueryResult, error) {
	return scan.Query(req, func(add func(domain.CorpusEntry) error) error {
		rows, err := c.store.db.QueryContext(ctx, `
			SELECT id, embedding, contents, unique_id, source, authors,
				publisher, date_published, page
			FROM corpus_entries WHERE collection_id = ? ORDER BY rowid
		`, c.id)
		if err != nil {
			return c.store.wrap("querying entries", err)
		}
		defer rows.Close()

		for rows.Next() {
			entry, err := scanEntry(rows)
			if err != nil {
				return err
			}
			if err := add(entry); err != nil {
				return err
			}
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterating entries: %w", err)
		}
		return nil
	})
}

// Count returns the number of entries in the collection.
func (c *collection) Count(ctx context.Context) (int, error) {
	var n int
	err := c.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM corpus_entries WHERE collection_id = ?", c.id).Scan(&n)
	if err != nil {
		return 0, c.store.wrap("counting entries", err)
	}
	return n, nil
}

// scanEntry scans a single corpus entry row.
func scanEntry(rows *sql.Rows) (domain.CorpusEntry, error) {
	var (
		entry domain.CorpusEntry
		blob  []byte
		m     = &entry.Metadata
	)
	if err := rows.Scan(&entry.ID, &blob, &entry.Contents, &m.UniqueID, &m.Source,
		&m.Authors, &m.Publisher, &m.DatePublished, &m.Page); err != nil {
		return entry, fmt.Errorf("scanning entry: %w", err)
	}
	entry.Embedding = bytesToFloat32Slice(blob)
	return entry, nil
}

// float32SliceToBytes encodes a vector as little-endian float32s.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice decodes a vector written by float32SliceToBytes.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
