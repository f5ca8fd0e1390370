package books

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS books (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL DEFAULT '',
			author TEXT NOT NULL DEFAULT ''
		);
	`)
	return err
}

func (s *SQLiteStore) Save(ctx context.Context, d *Data) error {
	if d.ID == 0 {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO books (title, author) VALUES (?, ?)`, d.Title, d.Author)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		d.ID = id
		return nil
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO books (id, title, author) VALUES (?, ?, ?)`,
		d.ID, d.Title, d.Author)
	return err
}

func (s *SQLiteStore) Load(ctx context.Context, id int64) (*Data, error) {
	d := &Data{ID: id}
	err := s.db.QueryRowContext(ctx,
		`SELECT title, author FROM books WHERE id = ?`, id).Scan(&d.Title, &d.Author)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) List(ctx context.Context) ([]*Data, error) {
	return listBooks(ctx, s.db)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func listBooks(ctx context.Context, db *sql.DB) ([]*Data, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, title, author FROM books ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Data
	for rows.Next() {
		d := &Data{}
		if err := rows.Scan(&d.ID, &d.Title, &d.Author); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
