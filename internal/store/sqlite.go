package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const defaultListLimit = 50

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	insertReloadStmt  *sql.Stmt
	insertRenderStmt  *sql.Stmt
	listReloadsStmt   *sql.Stmt
	listRendersStmt   *sql.Stmt
	rendersByNameStmt *sql.Stmt
	renderCountsStmt  *sql.Stmt
}

// NewSQLiteStore opens or creates a SQLite store at the given path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store: empty sqlite path")
	}
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("store: create sqlite dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise open its own empty
		// in-memory database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(2)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping sqlite: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	st := &SQLiteStore{db: db}
	if err := st.prepareStatements(); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`PRAGMA journal_mode = WAL`,
		`CREATE TABLE IF NOT EXISTS reloads (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			total_files INTEGER NOT NULL,
			succeeded INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			error_count INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS renders (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at INTEGER NOT NULL,
			prompt_name TEXT NOT NULL,
			ok INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			error_count INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_renders_prompt ON renders(prompt_name)`,
		`CREATE INDEX IF NOT EXISTS idx_renders_created_at ON renders(created_at)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("store: init schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	prepare := func(dst **sql.Stmt, query string) {
		if err != nil {
			return
		}
		*dst, err = s.db.Prepare(query)
	}

	prepare(&s.insertReloadStmt, `INSERT INTO reloads
		(started_at, duration_ms, total_files, succeeded, failed, error_count)
		VALUES (?, ?, ?, ?, ?, ?)`)
	prepare(&s.insertRenderStmt, `INSERT INTO renders
		(created_at, prompt_name, ok, duration_ms, error_count)
		VALUES (?, ?, ?, ?, ?)`)
	prepare(&s.listReloadsStmt, `SELECT id, started_at, duration_ms, total_files, succeeded, failed, error_count
		FROM reloads ORDER BY started_at DESC, id DESC LIMIT ?`)
	prepare(&s.listRendersStmt, `SELECT id, created_at, prompt_name, ok, duration_ms, error_count
		FROM renders ORDER BY created_at DESC, id DESC LIMIT ?`)
	prepare(&s.rendersByNameStmt, `SELECT id, created_at, prompt_name, ok, duration_ms, error_count
		FROM renders WHERE prompt_name = ? ORDER BY created_at DESC, id DESC LIMIT ?`)
	prepare(&s.renderCountsStmt, `SELECT prompt_name, COUNT(*) FROM renders GROUP BY prompt_name`)

	if err != nil {
		return fmt.Errorf("store: prepare statements: %w", err)
	}
	return nil
}

// RecordReload persists a reload summary.
func (s *SQLiteStore) RecordReload(ctx context.Context, rec *ReloadRecord) error {
	if rec == nil {
		return errors.New("store: nil reload record")
	}
	startedAt := rec.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	res, err := s.insertReloadStmt.ExecContext(ctx,
		startedAt.UnixMilli(), rec.DurationMs, rec.TotalFiles, rec.Succeeded, rec.Failed, rec.ErrorCount)
	if err != nil {
		return fmt.Errorf("store: record reload: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		rec.ID = id
	}
	return nil
}

// RecordRender persists a render outcome. Only metadata is stored; the
// rendered text itself never reaches the database.
func (s *SQLiteStore) RecordRender(ctx context.Context, rec *RenderRecord) error {
	if rec == nil {
		return errors.New("store: nil render record")
	}
	if strings.TrimSpace(rec.PromptName) == "" {
		return errors.New("store: render record missing prompt name")
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ok := 0
	if rec.OK {
		ok = 1
	}
	res, err := s.insertRenderStmt.ExecContext(ctx,
		createdAt.UnixMilli(), rec.PromptName, ok, rec.DurationMs, rec.ErrorCount)
	if err != nil {
		return fmt.Errorf("store: record render: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		rec.ID = id
	}
	return nil
}

// ListReloads returns the most recent reload records, newest first.
func (s *SQLiteStore) ListReloads(ctx context.Context, limit int) ([]*ReloadRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.listReloadsStmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list reloads: %w", err)
	}
	defer rows.Close()

	var out []*ReloadRecord
	for rows.Next() {
		rec := &ReloadRecord{}
		var startedAt int64
		if err := rows.Scan(&rec.ID, &startedAt, &rec.DurationMs, &rec.TotalFiles, &rec.Succeeded, &rec.Failed, &rec.ErrorCount); err != nil {
			return nil, fmt.Errorf("store: scan reload: %w", err)
		}
		rec.StartedAt = time.UnixMilli(startedAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListRenders returns recent render records, optionally filtered by prompt
// name, newest first.
func (s *SQLiteStore) ListRenders(ctx context.Context, promptName string, limit int) ([]*RenderRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	var rows *sql.Rows
	var err error
	if strings.TrimSpace(promptName) == "" {
		rows, err = s.listRendersStmt.QueryContext(ctx, limit)
	} else {
		rows, err = s.rendersByNameStmt.QueryContext(ctx, promptName, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("store: list renders: %w", err)
	}
	defer rows.Close()

	var out []*RenderRecord
	for rows.Next() {
		rec := &RenderRecord{}
		var createdAt int64
		var ok int
		if err := rows.Scan(&rec.ID, &createdAt, &rec.PromptName, &ok, &rec.DurationMs, &rec.ErrorCount); err != nil {
			return nil, fmt.Errorf("store: scan render: %w", err)
		}
		rec.CreatedAt = time.UnixMilli(createdAt)
		rec.OK = ok != 0
		out = append(out, rec)
	}
	return out, rows.Err()
}

// RenderCounts returns the number of recorded renders per prompt name.
func (s *SQLiteStore) RenderCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.renderCountsStmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: render counts: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("store: scan count: %w", err)
		}
		out[name] = n
	}
	return out, rows.Err()
}

// Close releases prepared statements and the underlying database handle.
func (s *SQLiteStore) Close() error {
	if s == nil {
		return nil
	}
	for _, stmt := range []*sql.Stmt{
		s.insertReloadStmt, s.insertRenderStmt, s.listReloadsStmt,
		s.listRendersStmt, s.rendersByNameStmt, s.renderCountsStmt,
	} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
