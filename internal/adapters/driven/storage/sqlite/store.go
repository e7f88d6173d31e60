package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docmerge/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docmerge/internal/core/domain"
	"github.com/custodia-labs/docmerge/internal/core/ports/driven"
)

// Store is a SQLite database holding one authoring session.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.docmerge/data/session.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docmerge", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "session.db")

	// WAL lets the TUI read while an ingest writes
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
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

// VectorIndex returns a VectorIndex backed by this store.
// Closing it closes the store.
func (s *Store) VectorIndex() driven.VectorIndex {
	return &vectorIndex{store: s}
}

// DestinationStore returns a DestinationStore backed by this store.
func (s *Store) DestinationStore() driven.DestinationStore {
	return &destinationStore{store: s}
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
	}

	return nil
}

// ==================== Vector Index ====================

// vectorIndex implements driven.VectorIndex.
type vectorIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// Insert adds a new item.
func (v *vectorIndex) Insert(ctx context.Context, item domain.IndexItem) error {
	metadataJSON, err := json.Marshal(item.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	res, err := v.store.db.ExecContext(ctx, `
		INSERT INTO index_items (id, content_type, source_id, vector, metadata)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, item.ID, string(item.Metadata.ContentType), item.Metadata.SourceID,
		float32SliceToBytes(item.Vector), string(metadataJSON))
	if err != nil {
		return fmt.Errorf("inserting item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("item %s: %w", item.ID, domain.ErrAlreadyExists)
	}
	return nil
}

// Upsert adds or replaces an item. A replaced item keeps its position.
func (v *vectorIndex) Upsert(ctx context.Context, item domain.IndexItem) error {
	metadataJSON, err := json.Marshal(item.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	_, err = v.store.db.ExecContext(ctx, `
		INSERT INTO index_items (id, content_type, source_id, vector, metadata)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content_type = excluded.content_type,
			source_id = excluded.source_id,
			vector = excluded.vector,
			metadata = excluded.metadata
	`, item.ID, string(item.Metadata.ContentType), item.Metadata.SourceID,
		float32SliceToBytes(item.Vector), string(metadataJSON))
	if err != nil {
		return fmt.Errorf("upserting item: %w", err)
	}
	return nil
}

// Query scores every item of contentType against vector and returns the topK best.
func (v *vectorIndex) Query(
	ctx context.Context,
	vector []float32,
	topK int,
	contentType domain.ContentType,
) ([]driven.VectorHit, error) {
	if topK <= 0 {
		return nil, nil
	}

	rows, err := v.store.db.QueryContext(ctx, `
		SELECT id, vector, metadata FROM index_items
		WHERE ? = '' OR content_type = ?
		ORDER BY seq
	`, string(contentType), string(contentType))
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return nil, err
	}

	hits := make([]driven.VectorHit, len(items))
	for i, item := range items {
		hits[i] = driven.VectorHit{Item: item, Score: domain.CosineSimilarity(vector, item.Vector)}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Get retrieves an item by ID.
func (v *vectorIndex) Get(ctx context.Context, id string) (*domain.IndexItem, error) {
	row := v.store.db.QueryRowContext(ctx, `
		SELECT id, vector, metadata FROM index_items WHERE id = ?
	`, id)
	return scanItem(row)
}

// UpdateMetadata applies a partial metadata update inside a transaction.
func (v *vectorIndex) UpdateMetadata(ctx context.Context, id string, patch domain.MetadataPatch) error {
	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var metadataJSON string
	err = tx.QueryRowContext(ctx, `SELECT metadata FROM index_items WHERE id = ?`, id).Scan(&metadataJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading metadata: %w", err)
	}

	var metadata domain.ItemMetadata
	if err := json.Unmarshal([]byte(metadataJSON), &metadata); err != nil {
		return fmt.Errorf("unmarshalling metadata: %w", err)
	}
	updated, err := json.Marshal(patch.Apply(metadata))
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE index_items SET metadata = ? WHERE id = ?`, string(updated), id); err != nil {
		return fmt.Errorf("updating metadata: %w", err)
	}
	return tx.Commit()
}

// ListAll returns every item in insertion order.
func (v *vectorIndex) ListAll(ctx context.Context) ([]domain.IndexItem, error) {
	rows, err := v.store.db.QueryContext(ctx, `
		SELECT id, vector, metadata FROM index_items ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

// Delete removes an item.
func (v *vectorIndex) Delete(ctx context.Context, id string) error {
	if _, err := v.store.db.ExecContext(ctx, `DELETE FROM index_items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// Reset removes every item.
func (v *vectorIndex) Reset(ctx context.Context) error {
	if _, err := v.store.db.ExecContext(ctx, `DELETE FROM index_items`); err != nil {
		return fmt.Errorf("resetting index: %w", err)
	}
	return nil
}

// Close closes the underlying store.
func (v *vectorIndex) Close() error {
	return v.store.Close()
}

// ==================== Destination Store ====================

// destinationStore implements driven.DestinationStore.
type destinationStore struct {
	store *Store
}

var _ driven.DestinationStore = (*destinationStore)(nil)

// Save creates or replaces a document.
func (d *destinationStore) Save(ctx context.Context, doc domain.DestinationDocument) error {
	treeJSON, err := json.Marshal(doc.Tree)
	if err != nil {
		return fmt.Errorf("marshalling tree: %w", err)
	}

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = now
	}

	_, err = d.store.db.ExecContext(ctx, `
		INSERT INTO destinations (uri, title, unsaved, tree, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(uri) DO UPDATE SET
			title = excluded.title,
			unsaved = excluded.unsaved,
			tree = excluded.tree,
			updated_at = excluded.updated_at
	`, doc.URI, doc.Title, doc.Unsaved, string(treeJSON), doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving destination: %w", err)
	}
	return nil
}

// Get retrieves a document by URI.
func (d *destinationStore) Get(ctx context.Context, uri string) (*domain.DestinationDocument, error) {
	row := d.store.db.QueryRowContext(ctx, `
		SELECT uri, title, unsaved, tree, created_at, updated_at
		FROM destinations WHERE uri = ?
	`, uri)
	doc, err := scanDestination(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return doc, err
}

// List returns every document ordered by URI.
func (d *destinationStore) List(ctx context.Context) ([]domain.DestinationDocument, error) {
	rows, err := d.store.db.QueryContext(ctx, `
		SELECT uri, title, unsaved, tree, created_at, updated_at
		FROM destinations ORDER BY uri
	`)
	if err != nil {
		return nil, fmt.Errorf("listing destinations: %w", err)
	}
	defer rows.Close()

	var docs []domain.DestinationDocument
	for rows.Next() {
		doc, err := scanDestination(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// Delete removes a document.
func (d *destinationStore) Delete(ctx context.Context, uri string) error {
	if _, err := d.store.db.ExecContext(ctx, `DELETE FROM destinations WHERE uri = ?`, uri); err != nil {
		return fmt.Errorf("deleting destination: %w", err)
	}
	return nil
}

// Reset removes every document.
func (d *destinationStore) Reset(ctx context.Context) error {
	if _, err := d.store.db.ExecContext(ctx, `DELETE FROM destinations`); err != nil {
		return fmt.Errorf("resetting destinations: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanItem scans a single index item row.
func scanItem(row scanner) (*domain.IndexItem, error) {
	var item domain.IndexItem
	var vector []byte
	var metadataJSON string
	if err := row.Scan(&item.ID, &vector, &metadataJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning item: %w", err)
	}
	item.Vector = bytesToFloat32Slice(vector)
	if err := json.Unmarshal([]byte(metadataJSON), &item.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshalling metadata: %w", err)
	}
	return &item, nil
}

// scanItems scans every row into index items.
func scanItems(rows *sql.Rows) ([]domain.IndexItem, error) {
	var items []domain.IndexItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// scanDestination scans a single destination row.
func scanDestination(row scanner) (*domain.DestinationDocument, error) {
	var doc domain.DestinationDocument
	var treeJSON string
	if err := row.Scan(&doc.URI, &doc.Title, &doc.Unsaved, &treeJSON, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning destination: %w", err)
	}
	if err := json.Unmarshal([]byte(treeJSON), &doc.Tree); err != nil {
		return nil, fmt.Errorf("unmarshalling tree: %w", err)
	}
	return &doc, nil
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
