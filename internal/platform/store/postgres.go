package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/lib/pq"
)

// Postgres stores documents as JSONB rows in the records table.
type Postgres struct {
	db       *sql.DB
	pageSize int
	logger   zerolog.Logger
}

// OpenPostgres connects with a few retries so the service can start alongside
// its database container.
func OpenPostgres(ctx context.Context, dsn string, pageSize int, logger zerolog.Logger) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	for i := 1; i <= 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		logger.Warn().Err(err).Int("attempt", i).Msg("waiting for database")
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgres(db, pageSize, logger), nil
}

func NewPostgres(db *sql.DB, pageSize int, logger zerolog.Logger) *Postgres {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Postgres{db: db, pageSize: pageSize, logger: logger}
}

func (p *Postgres) Get(ctx context.Context, table, key string, out any) error {
	var raw []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT doc FROM records WHERE table_name = $1 AND record_key = $2`, table, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s/%s: %w", table, key, err)
	}
	return json.Unmarshal(raw, out)
}

func (p *Postgres) Put(ctx context.Context, table, key string, item any) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", table, key, err)
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO records (table_name, record_key, doc, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (table_name, record_key) DO UPDATE SET
			doc = EXCLUDED.doc,
			updated_at = now()`, table, key, raw)
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", table, key, err)
	}
	return nil
}

func (p *Postgres) Update(ctx context.Context, table, key string, fields map[string]any) (Document, error) {
	patch, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode update %s/%s: %w", table, key, err)
	}
	var raw []byte
	err = p.db.QueryRowContext(ctx, `
		UPDATE records SET doc = doc || $3::jsonb, updated_at = now()
		WHERE table_name = $1 AND record_key = $2
		RETURNING doc`, table, key, patch).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", table, key, err)
	}
	return Document(raw), nil
}

func (p *Postgres) Delete(ctx context.Context, table, key string) error {
	_, err := p.db.ExecContext(ctx,
		`DELETE FROM records WHERE table_name = $1 AND record_key = $2`, table, key)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", table, key, err)
	}
	return nil
}

func (p *Postgres) Scan(ctx context.Context, table string, filters ...Filter) ([]Document, error) {
	args := []any{table}
	where := []string{"table_name = $1"}
	for _, f := range filters {
		args = append(args, f.Field)
		n := len(args)
		switch f.Op {
		case OpExists:
			where = append(where, fmt.Sprintf("doc ? $%d", n))
		case OpNotExists:
			where = append(where, fmt.Sprintf("NOT (doc ? $%d)", n))
		case OpEquals:
			args = append(args, f.Value)
			where = append(where, fmt.Sprintf("doc->>$%d = $%d", n, n+1))
		}
	}
	args = append(args, p.pageSize)
	query := fmt.Sprintf(`SELECT doc FROM records WHERE %s ORDER BY record_key LIMIT $%d`,
		strings.Join(where, " AND "), len(args))

	docs, err := p.collect(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", table, err)
	}
	if len(docs) == p.pageSize {
		p.logger.Warn().Str("table", table).Int("page_size", p.pageSize).Msg("scan page full, results may be truncated")
	}
	return docs, nil
}

func (p *Postgres) Query(ctx context.Context, table string, idx Index, value string, descending bool) ([]Document, error) {
	order := "ASC"
	if descending {
		order = "DESC"
	}
	query := fmt.Sprintf(`
		SELECT doc FROM records
		WHERE table_name = $1 AND doc->>$2 = $3
		ORDER BY doc->>$4 %s, record_key
		LIMIT $5`, order)

	docs, err := p.collect(ctx, query, table, idx.PartitionKey, value, idx.SortKey, p.pageSize)
	if err != nil {
		return nil, fmt.Errorf("query %s.%s: %w", table, idx.Name, err)
	}
	if len(docs) == p.pageSize {
		p.logger.Warn().Str("table", table).Str("index", idx.Name).Int("page_size", p.pageSize).Msg("query page full, results may be truncated")
	}
	return docs, nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) collect(ctx context.Context, query string, args ...any) ([]Document, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		docs = append(docs, Document(raw))
	}
	return docs, rows.Err()
}
