package cdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mycok/coursesync/course"
	"github.com/mycok/coursesync/ledger"
)

const queryTimeout = 5 * time.Second

var (
	createTableQuery = `
					CREATE TABLE IF NOT EXISTS ledger (
						id            UUID PRIMARY KEY,
						seq           BIGSERIAL,
						kind          TEXT NOT NULL,
						url           TEXT NOT NULL,
						name          TEXT NOT NULL,
						path          TEXT NOT NULL,
						download_path TEXT NOT NULL DEFAULT '',
						appended_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
					)
					`

	allFilesQuery = "SELECT kind, url, name, path, download_path FROM ledger ORDER BY seq"
)

// Static and compile-time check to ensure CockroachDBLedger implements
// Ledger interface.
var _ ledger.Ledger = (*CockroachDBLedger)(nil)

// CockroachDBLedger keeps the ledger in a CockroachDB or PostgreSQL
// table, which lets several machines share one download history.
type CockroachDBLedger struct {
	db *sql.DB
}

// NewCockroachDBLedger connects to dsn and creates the ledger table when
// it does not exist yet.
func NewCockroachDBLedger(dsn string) (*CockroachDBLedger, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()

		return nil, err
	}

	if _, err := db.ExecContext(ctx, createTableQuery); err != nil {
		db.Close()

		return nil, fmt.Errorf("create ledger table: %w", err)
	}

	return &CockroachDBLedger{db: db}, nil
}

// Close terminates the connection to the database.
func (l *CockroachDBLedger) Close() error {
	return l.db.Close()
}

// Append copies files into the ledger table within a single transaction.
func (l *CockroachDBLedger) Append(files ...*course.File) error {
	if err := ledger.Validate(files...); err != nil {
		return fmt.Errorf("append: %w", err)
	}

	if len(files) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append: %w", err)
	}

	if err := copyFiles(ctx, tx, files); err != nil {
		_ = tx.Rollback()

		return fmt.Errorf("append: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append: %w", err)
	}

	return nil
}

func copyFiles(ctx context.Context, tx *sql.Tx, files []*course.File) error {
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(
		"ledger", "id", "kind", "url", "name", "path", "download_path",
	))
	if err != nil {
		return err
	}

	for _, file := range files {
		_, err := stmt.ExecContext(ctx,
			uuid.New(), string(file.Kind), file.URL, file.Name, file.Path, file.DownloadPath,
		)
		if err != nil {
			stmt.Close()

			return err
		}
	}

	// An argument-less Exec flushes the buffered rows.
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()

		return err
	}

	return stmt.Close()
}

// All returns every recorded file in append order.
func (l *CockroachDBLedger) All() ([]*course.File, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	rows, err := l.db.QueryContext(ctx, allFilesQuery)
	if err != nil {
		return nil, fmt.Errorf("all: %w", err)
	}
	defer rows.Close()

	files := make([]*course.File, 0)
	for rows.Next() {
		var (
			kind string
			file course.File
		)

		if err := rows.Scan(&kind, &file.URL, &file.Name, &file.Path, &file.DownloadPath); err != nil {
			return nil, fmt.Errorf("all: %w", err)
		}

		file.Kind = course.Kind(kind)
		if err := ledger.Validate(&file); err != nil {
			return nil, fmt.Errorf("all: %w: %w", ledger.ErrCorrupted, err)
		}

		files = append(files, &file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("all: %w", err)
	}

	return files, nil
}
