// Package history persists a log of served quotes. It is an observability
// trail, not a cache: the in-memory quote cache remains the only source the
// gateway reads quotes back from.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Entry records one served (or failed) quote request.
type Entry struct {
	TraceID      string
	Provider     string
	QuoteID      string
	Author       string
	Tag          string
	ErrorMessage string
	CreatedAt    time.Time
}

// Query filters and pages List results.
type Query struct {
	Limit    int
	Offset   int
	Provider string
	Tag      string
}

// Result is a page of history entries plus the unpaged total.
type Result struct {
	Total int
	Data  []Entry
}

// MaintenanceQuery selects entries for deletion.
type MaintenanceQuery struct {
	Before *time.Time
}

// Writer persists history entries.
type Writer interface {
	Write(ctx context.Context, entry Entry) error
}

// NoopWriter ignores all history writes.
type NoopWriter struct{}

func (NoopWriter) Write(_ context.Context, _ Entry) error { return nil }

// SQLWriter persists entries to SQLite/Postgres.
type SQLWriter struct {
	db      *sql.DB
	dialect string
}

func NewSQLiteWriter(dsn string) (*SQLWriter, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = "quotegw-history.db"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history writer: %w", err)
	}
	w := &SQLWriter{db: db, dialect: "sqlite"}
	if err := w.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

func NewPostgresWriter(dsn string) (*SQLWriter, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres history writer: %w", err)
	}
	w := &SQLWriter{db: db, dialect: "postgres"}
	if err := w.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

func (w *SQLWriter) init() error {
	if err := w.db.Ping(); err != nil {
		return fmt.Errorf("ping %s history writer: %w", w.dialect, err)
	}

	ddl := `
CREATE TABLE IF NOT EXISTS quote_history (
	id INTEGER PRIMARY KEY,
	trace_id TEXT,
	provider TEXT NOT NULL,
	quote_id TEXT,
	author TEXT,
	tag TEXT,
	error_message TEXT,
	created_at TIMESTAMP NOT NULL
);`

	if w.dialect == "postgres" {
		ddl = `
CREATE TABLE IF NOT EXISTS quote_history (
	id BIGSERIAL PRIMARY KEY,
	trace_id TEXT,
	provider TEXT NOT NULL,
	quote_id TEXT,
	author TEXT,
	tag TEXT,
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL
);`
	}

	if _, err := w.db.Exec(ddl); err != nil {
		return fmt.Errorf("initialize history schema: %w", err)
	}
	return nil
}

func (w *SQLWriter) Write(ctx context.Context, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO quote_history(trace_id, provider, quote_id, author, tag, error_message, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?)`
	if w.dialect == "postgres" {
		query = `INSERT INTO quote_history(trace_id, provider, quote_id, author, tag, error_message, created_at)
		VALUES($1, $2, $3, $4, $5, $6, $7)`
	}

	_, err := w.db.ExecContext(ctx, query,
		entry.TraceID,
		entry.Provider,
		entry.QuoteID,
		entry.Author,
		entry.Tag,
		entry.ErrorMessage,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("write history entry: %w", err)
	}
	return nil
}

// List returns a page of entries, newest first, with optional provider/tag filters.
func (w *SQLWriter) List(ctx context.Context, q Query) (Result, error) {
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	var (
		where []string
		args  []any
	)
	if q.Provider != "" {
		where = append(where, w.placeholder(len(args)+1, "provider"))
		args = append(args, q.Provider)
	}
	if q.Tag != "" {
		where = append(where, w.placeholder(len(args)+1, "tag"))
		args = append(args, q.Tag)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM quote_history" + clause
	if err := w.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return Result{}, fmt.Errorf("count history entries: %w", err)
	}

	limitArgs := append(args, q.Limit, q.Offset)
	listQuery := fmt.Sprintf(
		"SELECT trace_id, provider, quote_id, author, tag, error_message, created_at FROM quote_history%s ORDER BY created_at DESC %s",
		clause, w.limitClause(len(args)+1),
	)
	rows, err := w.db.QueryContext(ctx, listQuery, limitArgs...)
	if err != nil {
		return Result{}, fmt.Errorf("list history entries: %w", err)
	}
	defer rows.Close()

	result := Result{Total: total}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.TraceID, &e.Provider, &e.QuoteID, &e.Author, &e.Tag, &e.ErrorMessage, &e.CreatedAt); err != nil {
			return Result{}, fmt.Errorf("scan history entry: %w", err)
		}
		result.Data = append(result.Data, e)
	}
	if err := rows.Err(); err != nil {
		return Result{}, fmt.Errorf("iterate history entries: %w", err)
	}
	return result, nil
}

// Delete removes entries matching the maintenance query and reports how many
// rows were removed.
func (w *SQLWriter) Delete(ctx context.Context, q MaintenanceQuery) (int64, error) {
	if q.Before == nil {
		return 0, fmt.Errorf("maintenance query requires a cutoff time")
	}

	query := "DELETE FROM quote_history WHERE created_at < ?"
	if w.dialect == "postgres" {
		query = "DELETE FROM quote_history WHERE created_at < $1"
	}
	res, err := w.db.ExecContext(ctx, query, *q.Before)
	if err != nil {
		return 0, fmt.Errorf("delete history entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted history entries: %w", err)
	}
	return n, nil
}

func (w *SQLWriter) Close() error {
	if w == nil || w.db == nil {
		return nil
	}
	return w.db.Close()
}

func (w *SQLWriter) placeholder(n int, column string) string {
	if w.dialect == "postgres" {
		return fmt.Sprintf("%s = $%d", column, n)
	}
	return column + " = ?"
}

func (w *SQLWriter) limitClause(n int) string {
	if w.dialect == "postgres" {
		return fmt.Sprintf("LIMIT $%d OFFSET $%d", n, n+1)
	}
	return "LIMIT ? OFFSET ?"
}
