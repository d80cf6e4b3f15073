// Package sqlite implements the Repository port on an embedded SQLite
// database. All writes are natural-key upserts, making document
// re-processing idempotent at the storage layer.
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

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/domain"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.Repository = (*Store)(nil)

// Store is the SQLite-backed Repository.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the knowledge base at dataDir.
// If dataDir is empty, defaults to ~/.manual2vector/data/manuals.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".manual2vector", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "manuals.db")

	// WAL mode for concurrent readers during long processing runs.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: dbPath}
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

// migrate runs all pending up migrations in version order.
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
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
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

// SaveDocument stores or updates the document record, preserving the
// original created_at on re-processing.
func (s *Store) SaveDocument(ctx context.Context, doc *domain.Document) error {
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	now := time.Now().UTC()
	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, path, filename, manufacturer, manufacturer_score, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path = excluded.path,
			filename = excluded.filename,
			manufacturer = excluded.manufacturer,
			manufacturer_score = excluded.manufacturer_score,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Path, doc.Filename, doc.Manufacturer, doc.ManufacturerScore,
		string(metadataJSON), createdAt, now)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// SaveChunks upserts chunks keyed by (document, fingerprint) inside one
// transaction.
func (s *Store) SaveChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, idx, page_start, page_end, text, fingerprint, type, embedding, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id, fingerprint) DO UPDATE SET
			idx = excluded.idx,
			page_start = excluded.page_start,
			page_end = excluded.page_end,
			text = excluded.text,
			type = excluded.type,
			embedding = excluded.embedding,
			metadata = excluded.metadata
	`)
	if err != nil {
		return fmt.Errorf("preparing chunk upsert: %w", err)
	}
	defer stmt.Close()

	for _, ch := range chunks {
		metadataJSON, err := json.Marshal(ch.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling chunk metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, ch.ID, ch.DocumentID, ch.Index, ch.PageStart, ch.PageEnd,
			ch.Text, ch.Fingerprint, string(ch.Type), float32SliceToBytes(ch.Embedding), string(metadataJSON)); err != nil {
			return fmt.Errorf("saving chunk %d: %w", ch.Index, err)
		}
	}
	return tx.Commit()
}

// SaveErrorCodes upserts error codes keyed by (code, manufacturer, document).
func (s *Store) SaveErrorCodes(ctx context.Context, codes []domain.ErrorCode) error {
	for _, c := range codes {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO error_codes (code, manufacturer, document_id, chunk_id, page, description, solution, severity, category, method, context, confidence)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(code, manufacturer, document_id) DO UPDATE SET
				chunk_id = excluded.chunk_id,
				page = excluded.page,
				description = excluded.description,
				solution = excluded.solution,
				severity = excluded.severity,
				category = excluded.category,
				method = excluded.method,
				context = excluded.context,
				confidence = excluded.confidence
		`, c.Code, c.Manufacturer, c.DocumentID, c.ChunkID, c.Page,
			c.Description, c.Solution, c.Severity, c.Category, c.Method, c.Context, c.Confidence)
		if err != nil {
			return fmt.Errorf("saving error code %s: %w", c.Code, err)
		}
	}
	return nil
}

// SaveParts upserts parts keyed by (number, document).
func (s *Store) SaveParts(ctx context.Context, parts []domain.Part) error {
	for _, p := range parts {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO parts (number, document_id, manufacturer, description, page, method, context, confidence)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(number, document_id) DO UPDATE SET
				manufacturer = excluded.manufacturer,
				description = excluded.description,
				page = excluded.page,
				method = excluded.method,
				context = excluded.context,
				confidence = excluded.confidence
		`, p.Number, p.DocumentID, p.Manufacturer, p.Description, p.Page, p.Method, p.Context, p.Confidence)
		if err != nil {
			return fmt.Errorf("saving part %s: %w", p.Number, err)
		}
	}
	return nil
}

// SaveProducts upserts products keyed by (model, document).
func (s *Store) SaveProducts(ctx context.Context, products []domain.ProductModel) error {
	for _, p := range products {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO products (model, document_id, series, manufacturer, page, method, context, confidence)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(model, document_id) DO UPDATE SET
				series = excluded.series,
				manufacturer = excluded.manufacturer,
				page = excluded.page,
				method = excluded.method,
				context = excluded.context,
				confidence = excluded.confidence
		`, p.Model, p.DocumentID, p.Series, p.Manufacturer, p.Page, p.Method, p.Context, p.Confidence)
		if err != nil {
			return fmt.Errorf("saving product %s: %w", p.Model, err)
		}
	}
	return nil
}

// SaveVersions upserts versions keyed by (label, value, document).
func (s *Store) SaveVersions(ctx context.Context, versions []domain.Version) error {
	for _, v := range versions {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO versions (label, value, document_id, page, method, context, confidence)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(label, value, document_id) DO UPDATE SET
				page = excluded.page,
				method = excluded.method,
				context = excluded.context,
				confidence = excluded.confidence
		`, v.Label, v.Value, v.DocumentID, v.Page, v.Method, v.Context, v.Confidence)
		if err != nil {
			return fmt.Errorf("saving version %s %s: %w", v.Label, v.Value, err)
		}
	}
	return nil
}

// SaveImages upserts images keyed by (document, hash).
func (s *Store) SaveImages(ctx context.Context, images []domain.Image) error {
	for _, img := range images {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO images (document_id, hash, page, format, storage_key, description)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(document_id, hash) DO UPDATE SET
				page = excluded.page,
				format = excluded.format,
				storage_key = excluded.storage_key,
				description = excluded.description
		`, img.DocumentID, img.Hash, img.Page, img.Format, img.StorageKey, img.Description)
		if err != nil {
			return fmt.Errorf("saving image %s: %w", img.Hash, err)
		}
	}
	return nil
}

// SaveLinks upserts links keyed by (document, url).
func (s *Store) SaveLinks(ctx context.Context, links []domain.Link) error {
	for _, l := range links {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO links (document_id, url, page, video_id, title, duration, thumbnail)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(document_id, url) DO UPDATE SET
				page = excluded.page,
				video_id = excluded.video_id,
				title = excluded.title,
				duration = excluded.duration,
				thumbnail = excluded.thumbnail
		`, l.DocumentID, l.URL, l.Page, l.VideoID, l.Title, l.Duration, l.Thumbnail)
		if err != nil {
			return fmt.Errorf("saving link %s: %w", l.URL, err)
		}
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, path, filename, manufacturer, manufacturer_score, metadata, created_at, updated_at
		FROM documents WHERE id = ?
	`, id)

	var doc domain.Document
	var metadataJSON string
	if err := row.Scan(&doc.ID, &doc.Path, &doc.Filename, &doc.Manufacturer,
		&doc.ManufacturerScore, &metadataJSON, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	if err := json.Unmarshal([]byte(metadataJSON), &doc.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshalling metadata: %w", err)
	}
	return &doc, nil
}

// GetChunks retrieves all chunks for a document ordered by index.
func (s *Store) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, idx, page_start, page_end, text, fingerprint, type, embedding, metadata
		FROM chunks WHERE document_id = ? ORDER BY idx
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var ch domain.Chunk
		var chunkType, metadataJSON string
		var embedding []byte
		if err := rows.Scan(&ch.ID, &ch.DocumentID, &ch.Index, &ch.PageStart, &ch.PageEnd,
			&ch.Text, &ch.Fingerprint, &chunkType, &embedding, &metadataJSON); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		ch.Type = domain.ChunkType(chunkType)
		ch.Embedding = bytesToFloat32Slice(embedding)
		if metadataJSON != "" && metadataJSON != "null" {
			if err := json.Unmarshal([]byte(metadataJSON), &ch.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshalling chunk metadata: %w", err)
			}
		}
		chunks = append(chunks, ch)
	}
	return chunks, rows.Err()
}

// GetErrorCodes retrieves all error codes for a document.
func (s *Store) GetErrorCodes(ctx context.Context, documentID string) ([]domain.ErrorCode, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, manufacturer, document_id, chunk_id, page, description, solution, severity, category, method, context, confidence
		FROM error_codes WHERE document_id = ? ORDER BY page, code
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying error codes: %w", err)
	}
	defer rows.Close()

	var codes []domain.ErrorCode
	for rows.Next() {
		var c domain.ErrorCode
		if err := rows.Scan(&c.Code, &c.Manufacturer, &c.DocumentID, &c.ChunkID, &c.Page,
			&c.Description, &c.Solution, &c.Severity, &c.Category, &c.Method, &c.Context, &c.Confidence); err != nil {
			return nil, fmt.Errorf("scanning error code: %w", err)
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

// float32SliceToBytes packs an embedding for BLOB storage.
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
