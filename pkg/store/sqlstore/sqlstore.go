// Package sqlstore keeps documents in a single SQL table. It works with
// Postgres (lib/pq) and SQLite (modernc.org/sqlite).
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/JorgeHRP/renato-bi/pkg/store"
)

const schema = `CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	body TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (collection, id)
)`

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

type document struct {
	Collection string    `db:"collection"`
	ID         string    `db:"id"`
	Body       string    `db:"body"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type Store struct {
	db *sqlx.DB
}

// Open connects with driver ("postgres" or "sqlite") and creates the table
// if needed.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// an in-memory database only lives on its own connection
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", driver, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var body string
	query := s.db.Rebind(`SELECT body FROM documents WHERE collection = ? AND id = ?`)
	err := s.db.GetContext(ctx, &body, query, collection, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return []byte(body), nil
}

func (s *Store) Put(ctx context.Context, collection, id string, doc []byte) error {
	if err := store.ValidateID(id); err != nil {
		return err
	}
	query := `INSERT INTO documents (collection, id, body, updated_at)
		VALUES (:collection, :id, :body, :updated_at)
		ON CONFLICT (collection, id) DO UPDATE
		SET body = excluded.body, updated_at = excluded.updated_at`

	_, err := s.db.NamedExecContext(ctx, query, document{
		Collection: collection,
		ID:         id,
		Body:       string(doc),
		UpdatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to put document: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	query := s.db.Rebind(`DELETE FROM documents WHERE collection = ? AND id = ?`)
	if _, err := s.db.ExecContext(ctx, query, collection, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, collection string) ([][]byte, error) {
	var bodies []string
	query := s.db.Rebind(`SELECT body FROM documents WHERE collection = ? ORDER BY id`)
	if err := s.db.SelectContext(ctx, &bodies, query, collection); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	out := make([][]byte, len(bodies))
	for i, b := range bodies {
		out[i] = []byte(b)
	}
	return out, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

var _ store.Documents = (*Store)(nil)
