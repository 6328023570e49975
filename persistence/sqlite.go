package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// SQLiteBackend keeps documents in an embedded SQLite file.
type SQLiteBackend struct {
	db   *sql.DB
	path string
}

func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	if path == "" {
		path = "cabinet.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection serializes writers and avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		payload BLOB NOT NULL,
		PRIMARY KEY (collection, id)
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	return &SQLiteBackend{db: db, path: path}, nil
}

func (s *SQLiteBackend) ReadAll(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, payload FROM documents WHERE collection = ? ORDER BY id`, collection)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", collection, err)
	}
	defer func() { _ = rows.Close() }()
	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Data); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *SQLiteBackend) Write(ctx context.Context, collection, id string, data []byte) error {
	_, err := s.db.ExecContext(ctx, upsertSQL, collection, id, data)
	return err
}

func (s *SQLiteBackend) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	return err
}

func (s *SQLiteBackend) Apply(ctx context.Context, ops []Op) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, op := range ops {
		switch op.Kind {
		case OpWrite:
			_, err = tx.ExecContext(ctx, upsertSQL, op.Collection, op.ID, op.Data)
		case OpDelete:
			_, err = tx.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, op.Collection, op.ID)
		}
		if err != nil {
			return fmt.Errorf("%s %s/%s: %w", op.Kind, op.Collection, op.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteBackend) Path() string { return s.path }

func (s *SQLiteBackend) Close() error { return s.db.Close() }

const upsertSQL = `INSERT INTO documents (collection, id, payload) VALUES (?, ?, ?)
	ON CONFLICT(collection, id) DO UPDATE SET payload = excluded.payload`
