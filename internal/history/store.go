// Package history keeps an optional SQLite journal of optimization runs.
package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Run is one recorded invocation.
type Run struct {
	ID            int64
	StartedAt     time.Time
	FinishedAt    time.Time
	Cwd           string
	Chain         string
	Succeeded     int
	Failed        int
	OriginalBytes int64
	SavedBytes    int64
	Items         []Item
}

// Item is the recorded outcome of one image. Error is empty on success.
type Item struct {
	Path          string
	Destination   string
	OriginalSize  int64
	OptimizedSize int64
	Error         string
}

type runRow struct {
	ID            int64  `db:"id"`
	StartedAt     int64  `db:"started_at"`
	FinishedAt    int64  `db:"finished_at"`
	Cwd           string `db:"cwd"`
	Chain         string `db:"chain"`
	Succeeded     int    `db:"succeeded"`
	Failed        int    `db:"failed"`
	OriginalBytes int64  `db:"original_bytes"`
	SavedBytes    int64  `db:"saved_bytes"`
}

type itemRow struct {
	ID            int64          `db:"id"`
	RunID         int64          `db:"run_id"`
	Path          string         `db:"path"`
	Destination   sql.NullString `db:"destination"`
	OriginalSize  int64          `db:"original_size"`
	OptimizedSize int64          `db:"optimized_size"`
	ErrorMessage  sql.NullString `db:"error_message"`
}

// Store is an open journal.
type Store struct {
	db *sqlx.DB
}

// Open opens or creates the journal at path and applies pending migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	if err := runMigrations(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db := sqlx.NewDb(sqlDB, "sqlite3")
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores run and its items in one transaction and returns the new
// run ID.
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.NamedExecContext(ctx, `
		INSERT INTO runs (started_at, finished_at, cwd, chain, succeeded, failed, original_bytes, saved_bytes)
		VALUES (:started_at, :finished_at, :cwd, :chain, :succeeded, :failed, :original_bytes, :saved_bytes)
	`, runRow{
		StartedAt:     run.StartedAt.Unix(),
		FinishedAt:    run.FinishedAt.Unix(),
		Cwd:           run.Cwd,
		Chain:         run.Chain,
		Succeeded:     run.Succeeded,
		Failed:        run.Failed,
		OriginalBytes: run.OriginalBytes,
		SavedBytes:    run.SavedBytes,
	})
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}

	for _, item := range run.Items {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO items (run_id, path, destination, original_size, optimized_size, error_message)
			VALUES (:run_id, :path, :destination, :original_size, :optimized_size, :error_message)
		`, itemRow{
			RunID:         id,
			Path:          item.Path,
			Destination:   nullString(item.Destination),
			OriginalSize:  item.OriginalSize,
			OptimizedSize: item.OptimizedSize,
			ErrorMessage:  nullString(item.Error),
		})
		if err != nil {
			return 0, fmt.Errorf("insert item %s: %w", item.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// Recent returns up to limit runs, newest first, without their items.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	var rows []runRow
	query := `SELECT * FROM runs ORDER BY id DESC LIMIT ?`
	if err := s.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("get recent runs: %w", err)
	}

	runs := make([]Run, 0, len(rows))
	for _, row := range rows {
		runs = append(runs, Run{
			ID:            row.ID,
			StartedAt:     time.Unix(row.StartedAt, 0),
			FinishedAt:    time.Unix(row.FinishedAt, 0),
			Cwd:           row.Cwd,
			Chain:         row.Chain,
			Succeeded:     row.Succeeded,
			Failed:        row.Failed,
			OriginalBytes: row.OriginalBytes,
			SavedBytes:    row.SavedBytes,
		})
	}
	return runs, nil
}

// Items returns the recorded items of one run in insertion order.
func (s *Store) Items(ctx context.Context, runID int64) ([]Item, error) {
	var rows []itemRow
	query := `SELECT * FROM items WHERE run_id = ? ORDER BY id ASC`
	if err := s.db.SelectContext(ctx, &rows, query, runID); err != nil {
		return nil, fmt.Errorf("get items of run %d: %w", runID, err)
	}

	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, Item{
			Path:          row.Path,
			Destination:   row.Destination.String,
			OriginalSize:  row.OriginalSize,
			OptimizedSize: row.OptimizedSize,
			Error:         row.ErrorMessage.String,
		})
	}
	return items, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
