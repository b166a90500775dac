package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
	table_name TEXT NOT NULL,
	record_key TEXT NOT NULL,
	doc        TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
	PRIMARY KEY (table_name, record_key)
);
CREATE INDEX IF NOT EXISTS idx_records_patient
	ON records (table_name, json_extract(doc, '$.patientId'), json_extract(doc, '$.createdAt'));
`

// SQLite is the embedded single-file backend.
type SQLite struct {
	db       *sql.DB
	pageSize int
	logger   zerolog.Logger
}

// OpenSQLite opens (or creates) the database file and applies the schema.
func OpenSQLite(path string, pageSize int, logger zerolog.Logger) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &SQLite{db: db, pageSize: pageSize, logger: logger}, nil
}

func jsonPath(field string) string {
	return `$."` + strings.ReplaceAll(field, `"`, `\"`) + `"`
}

func (s *SQLite) Get(ctx context.Context, table, key string, out any) error {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM records WHERE table_name = ? AND record_key = ?`, table, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s/%s: %w", table, key, err)
	}
	return json.Unmarshal([]byte(raw), out)
}

func (s *SQLite) Put(ctx context.Context, table, key string, item any) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", table, key, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (table_name, record_key, doc) VALUES (?, ?, ?)
		ON CONFLICT (table_name, record_key) DO UPDATE SET
			doc = excluded.doc,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`, table, key, string(raw))
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", table, key, err)
	}
	return nil
}

func (s *SQLite) Update(ctx context.Context, table, key string, fields map[string]any) (Document, error) {
	patch, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode update %s/%s: %w", table, key, err)
	}
	var raw string
	err = s.db.QueryRowContext(ctx, `
		UPDATE records SET doc = json_patch(doc, ?), updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		WHERE table_name = ? AND record_key = ?
		RETURNING doc`, string(patch), table, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", table, key, err)
	}
	return Document(raw), nil
}

func (s *SQLite) Delete(ctx context.Context, table, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE table_name = ? AND record_key = ?`, table, key)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", table, key, err)
	}
	return nil
}

func (s *SQLite) Scan(ctx context.Context, table string, filters ...Filter) ([]Document, error) {
	args := []any{table}
	where := []string{"table_name = ?"}
	for _, f := range filters {
		switch f.Op {
		case OpExists:
			where = append(where, "json_type(doc, ?) IS NOT NULL")
			args = append(args, jsonPath(f.Field))
		case OpNotExists:
			where = append(where, "json_type(doc, ?) IS NULL")
			args = append(args, jsonPath(f.Field))
		case OpEquals:
			where = append(where, "json_extract(doc, ?) = ?")
			args = append(args, jsonPath(f.Field), f.Value)
		}
	}
	args = append(args, s.pageSize)
	query := `SELECT doc FROM records WHERE ` + strings.Join(where, " AND ") + ` ORDER BY record_key LIMIT ?`

	docs, err := s.collect(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", table, err)
	}
	if len(docs) == s.pageSize {
		s.logger.Warn().Str("table", table).Int("page_size", s.pageSize).Msg("scan page full, results may be truncated")
	}
	return docs, nil
}

func (s *SQLite) Query(ctx context.Context, table string, idx Index, value string, descending bool) ([]Document, error) {
	order := "ASC"
	if descending {
		order = "DESC"
	}
	query := `
		SELECT doc FROM records
		WHERE table_name = ? AND json_extract(doc, ?) = ?
		ORDER BY json_extract(doc, ?) ` + order + `, record_key
		LIMIT ?`

	docs, err := s.collect(ctx, query, table, jsonPath(idx.PartitionKey), value, jsonPath(idx.SortKey), s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("query %s.%s: %w", table, idx.Name, err)
	}
	if len(docs) == s.pageSize {
		s.logger.Warn().Str("table", table).Str("index", idx.Name).Int("page_size", s.pageSize).Msg("query page full, results may be truncated")
	}
	return docs, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) collect(ctx context.Context, query string, args ...any) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		docs = append(docs, Document(raw))
	}
	return docs, rows.Err()
}
