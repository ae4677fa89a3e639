// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus keeps a local document collection in SQLite with an FTS5
// index, and serves it as a retrieval backend for the document pipeline.
// Builds need the sqlite_fts5 tag (see magefiles).
package corpus

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

const (
	dbFile            = "corpus.db"
	defaultMaxResults = 3
)

// Store manages the corpus SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the corpus database at cfg.Dir/corpus.db and
// creates the schema if it does not exist.
func NewStore(cfg types.CorpusConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating corpus directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Name returns the retrieval backend identifier.
func (s *Store) Name() string { return "corpus" }

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			url TEXT,
			added_at TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='documents_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		return nil
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE documents_fts USING fts5(title, body, content=documents, content_rowid=rowid)`,
		`CREATE TRIGGER documents_ai AFTER INSERT ON documents BEGIN
			INSERT INTO documents_fts(rowid, title, body) VALUES (new.rowid, new.title, new.body);
		END`,
		`CREATE TRIGGER documents_ad AFTER DELETE ON documents BEGIN
			INSERT INTO documents_fts(documents_fts, rowid, title, body) VALUES('delete', old.rowid, old.title, old.body);
		END`,
		`CREATE TRIGGER documents_au AFTER UPDATE ON documents BEGIN
			INSERT INTO documents_fts(documents_fts, rowid, title, body) VALUES('delete', old.rowid, old.title, old.body);
			INSERT INTO documents_fts(rowid, title, body) VALUES (new.rowid, new.title, new.body);
		END`,
	}
	for _, stmt := range ftsStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	return nil
}

// Add inserts or replaces a document and returns its stable ID. Documents
// with the same title and body share an ID, so re-adding is idempotent.
func (s *Store) Add(ctx context.Context, doc types.Document) (string, error) {
	title := strings.TrimSpace(doc.Title)
	if title == "" {
		return "", fmt.Errorf("document title is empty")
	}
	if strings.TrimSpace(doc.Body) == "" {
		return "", fmt.Errorf("document %q has an empty body", title)
	}

	id := stableID(title, doc.Body)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, title, body, url, added_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET url=excluded.url`,
		id, title, doc.Body, doc.URL, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("inserting document %q: %w", title, err)
	}
	return id, nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

// Retrieve returns up to the configured number of documents matching any
// term of query, best match first.
func (s *Store) Retrieve(ctx context.Context, query string) ([]types.Document, error) {
	return s.Search(ctx, query, s.maxResults)
}

// Search is Retrieve with an explicit result cap.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]types.Document, error) {
	match := matchExpression(query)
	if match == "" {
		return nil, fmt.Errorf("query %q has no searchable terms", query)
	}
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT d.title, d.body, d.url
		 FROM documents_fts
		 JOIN documents d ON d.rowid = documents_fts.rowid
		 WHERE documents_fts MATCH ?
		 ORDER BY documents_fts.rank
		 LIMIT ?`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("querying corpus: %w", err)
	}
	defer rows.Close()

	var docs []types.Document
	for rows.Next() {
		var (
			d   types.Document
			url sql.NullString
		)
		if err := rows.Scan(&d.Title, &d.Body, &url); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		d.URL = url.String
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// matchExpression quotes each word of a free-text query and ORs them, so
// planner output containing FTS5 operators or punctuation cannot break the
// MATCH syntax.
func matchExpression(query string) string {
	words := strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool)
	var terms []string
	for _, w := range words {
		w = strings.ToLower(w)
		if seen[w] {
			continue
		}
		seen[w] = true
		terms = append(terms, `"`+w+`"`)
	}
	return strings.Join(terms, " OR ")
}

// stableID is the first 12 hex characters of SHA-256(title + body).
func stableID(title, body string) string {
	h := sha256.New()
	h.Write([]byte(title))
	h.Write([]byte(body))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}
