package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
)

// SQLiteStorage implements the Catalog interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite catalog
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// withTx runs fn inside a transaction, committing when it returns nil
func (s *SQLiteStorage) withTx(ctx context.Context, fn func(q querier) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Document operations

// ReplaceDocument stores doc and replaces all of its symbol rows
func (s *SQLiteStorage) ReplaceDocument(ctx context.Context, doc *Document, symbols []*Symbol) error {
	return s.withTx(ctx, func(q querier) error {
		doc.SymbolCount = len(symbols)
		if err := upsertDocument(ctx, q, doc); err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM symbols WHERE document_id = ?`, doc.ID); err != nil {
			return fmt.Errorf("failed to delete symbols: %w", err)
		}
		for _, sym := range symbols {
			sym.DocumentID = doc.ID
			sym.URI = doc.URI
			if err := insertSymbol(ctx, q, sym); err != nil {
				return err
			}
		}
		return nil
	})
}

// upsertDocument inserts or updates a document row, setting doc.ID
func upsertDocument(ctx context.Context, q querier, doc *Document) error {
	query := `
		INSERT INTO documents (uri, version, content_hash, symbol_count, parse_errors, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(uri) DO UPDATE SET
			version = excluded.version,
			content_hash = excluded.content_hash,
			symbol_count = excluded.symbol_count,
			parse_errors = excluded.parse_errors,
			indexed_at = excluded.indexed_at
		RETURNING id
	`
	now := time.Now()
	err := q.QueryRowContext(ctx, query,
		doc.URI, doc.Version, doc.ContentHash[:], doc.SymbolCount, doc.ParseErrors, now).Scan(&doc.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	doc.IndexedAt = now
	return nil
}

func insertSymbol(ctx context.Context, q querier, sym *Symbol) error {
	query := `
		INSERT INTO symbols (
			document_id, name, short_name, kind, scope, modifiers, type, signature, doc_comment,
			start_line, start_col, end_line, end_col
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	err := q.QueryRowContext(ctx, query,
		sym.DocumentID, sym.Name, sym.ShortName, sym.Kind, sym.Scope, sym.Modifiers, sym.Type,
		sym.Signature, sym.DocComment, sym.StartLine, sym.StartCol, sym.EndLine, sym.EndCol,
	).Scan(&sym.ID)
	if err != nil {
		return fmt.Errorf("failed to insert symbol: %w", err)
	}
	return nil
}

const documentColumns = `id, uri, version, content_hash, symbol_count, parse_errors, indexed_at`

func scanDocument(scan func(dest ...interface{}) error) (*Document, error) {
	var doc Document
	var hash []byte
	var indexedAt sql.NullTime
	if err := scan(&doc.ID, &doc.URI, &doc.Version, &hash, &doc.SymbolCount, &doc.ParseErrors, &indexedAt); err != nil {
		return nil, err
	}
	copy(doc.ContentHash[:], hash)
	if indexedAt.Valid {
		doc.IndexedAt = indexedAt.Time
	}
	return &doc, nil
}

// GetDocument returns the document stored for uri
func (s *SQLiteStorage) GetDocument(ctx context.Context, uri string) (*Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE uri = ?`, uri)
	doc, err := scanDocument(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// DeleteDocument removes a document and its symbols
func (s *SQLiteStorage) DeleteDocument(ctx context.Context, uri string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE uri = ?`, uri)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListDocuments returns every document ordered by uri
func (s *SQLiteStorage) ListDocuments(ctx context.Context) ([]*Document, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+documentColumns+` FROM documents ORDER BY uri`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	docs := make([]*Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Symbol operations

const symbolColumns = `
	s.id, s.document_id, d.uri, s.name, s.short_name, s.kind, s.scope, s.modifiers, s.type,
	s.signature, s.doc_comment, s.start_line, s.start_col, s.end_line, s.end_col`

func scanSymbols(rows *sql.Rows) ([]*Symbol, error) {
	defer func() { _ = rows.Close() }()

	symbols := make([]*Symbol, 0)
	for rows.Next() {
		var sym Symbol
		var scope, modifiers, typ, signature, doc sql.NullString
		err := rows.Scan(
			&sym.ID, &sym.DocumentID, &sym.URI, &sym.Name, &sym.ShortName, &sym.Kind,
			&scope, &modifiers, &typ, &signature, &doc,
			&sym.StartLine, &sym.StartCol, &sym.EndLine, &sym.EndCol,
		)
		if err != nil {
			return nil, err
		}
		sym.Scope, sym.Modifiers, sym.Type = scope.String, modifiers.String, typ.String
		sym.Signature, sym.DocComment = signature.String, doc.String
		symbols = append(symbols, &sym)
	}
	return symbols, rows.Err()
}

// ListSymbolsByDocument returns the symbols of a document in source order
func (s *SQLiteStorage) ListSymbolsByDocument(ctx context.Context, documentID int64) ([]*Symbol, error) {
	query := `SELECT ` + symbolColumns + `
		FROM symbols s
		JOIN documents d ON s.document_id = d.id
		WHERE s.document_id = ?
		ORDER BY s.id
	`
	rows, err := s.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	return scanSymbols(rows)
}

// escapeLike escapes LIKE wildcards in a user supplied pattern
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// SearchSymbols returns symbols whose name contains query, case
// insensitively. Exact short name matches rank first, then shorter names.
func (s *SQLiteStorage) SearchSymbols(ctx context.Context, query string, limit int, filters *SearchFilters) ([]*Symbol, error) {
	if limit <= 0 {
		limit = 50
	}

	var where []string
	var args []interface{}
	pattern := "%" + escapeLike(query) + "%"
	where = append(where, `(s.name LIKE ? ESCAPE '\' OR s.short_name LIKE ? ESCAPE '\')`)
	args = append(args, pattern, pattern)

	if filters != nil {
		if len(filters.Kinds) > 0 {
			marks := strings.TrimSuffix(strings.Repeat("?,", len(filters.Kinds)), ",")
			where = append(where, "s.kind IN ("+marks+")")
			for _, k := range filters.Kinds {
				args = append(args, k)
			}
		}
		if filters.Scope != "" {
			where = append(where, "s.scope = ?")
			args = append(args, filters.Scope)
		}
	}

	sqlQuery := `SELECT ` + symbolColumns + `
		FROM symbols s
		JOIN documents d ON s.document_id = d.id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY (LOWER(s.short_name) = LOWER(?)) DESC, LENGTH(s.short_name), s.name, s.id
		LIMIT ?
	`
	args = append(args, query, limit)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search symbols: %w", err)
	}
	return scanSymbols(rows)
}

// Status operations

// GetStatus returns catalog statistics
func (s *SQLiteStorage) GetStatus(ctx context.Context) (*Status, error) {
	version, err := SchemaVersion(ctx, s.db)
	if err != nil {
		return nil, err
	}
	status := &Status{SchemaVersion: version, BuildMode: BuildMode}

	var lastIndexed sql.NullString
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(parse_errors), 0), MAX(indexed_at) FROM documents
	`).Scan(&status.DocumentsCount, &status.ParseErrors, &lastIndexed)
	if err != nil {
		return nil, err
	}
	if lastIndexed.Valid {
		status.LastIndexedAt = parseTimestamp(lastIndexed.String)
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM symbols").Scan(&status.SymbolsCount); err != nil {
		return nil, err
	}

	// Calculate database size
	var pageCount, pageSize int
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		_ = s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		status.SizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	return status, nil
}

// parseTimestamp reads MAX(indexed_at), which drivers return as text
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
