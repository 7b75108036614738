// Package bunstore provides a SQLite-backed Storage for the session
// store, so CLI and headless consumers keep their session across runs in
// a single database file instead of loose JSON files.
package bunstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	memberhub "github.com/memberhub/go-memberhub"
)

type record struct {
	bun.BaseModel `bun:"table:client_state"`

	Key       string    `bun:"key,pk"`
	Value     []byte    `bun:"value"`
	UpdatedAt time.Time `bun:"updated_at"`
}

// Store is a key-value Storage over a bun-managed SQLite database.
type Store struct {
	db  *bun.DB
	now func() time.Time
}

// Option customizes the store.
type Option func(*Store)

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.now = clock
		}
	}
}

// Open opens (creating when missing) the database at path and ensures
// the backing table exists. Use ":memory:" for an ephemeral store.
func Open(path string, opts ...Option) (*Store, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	s := &Store{
		db:  db,
		now: time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if _, err := db.NewCreateTable().
		Model((*record)(nil)).
		IfNotExists().
		Exec(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Read returns the stored value and whether the key was present.
func (s *Store) Read(key string) ([]byte, bool, error) {
	rec := &record{}
	err := s.db.NewSelect().
		Model(rec).
		Where("key = ?", key).
		Scan(context.Background())
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return rec.Value, true, nil
}

// Write upserts the value under key.
func (s *Store) Write(key string, value []byte) error {
	rec := &record{
		Key:       key,
		Value:     value,
		UpdatedAt: s.now(),
	}
	_, err := s.db.NewInsert().
		Model(rec).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(context.Background())
	return err
}

// Delete removes the key; deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	_, err := s.db.NewDelete().
		Model((*record)(nil)).
		Where("key = ?", key).
		Exec(context.Background())
	return err
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ memberhub.Storage = (*Store)(nil)
