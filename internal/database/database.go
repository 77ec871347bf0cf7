package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// DB is the SQLite-backed store for users, venues and bookings.
type DB struct {
	pool   *Pool
	logger *zerolog.Logger
}

func NewDB(pool *Pool, logger *zerolog.Logger) *DB {
	return &DB{pool: pool, logger: logger}
}

func (db *DB) Pool() *Pool {
	return db.pool
}

func (db *DB) conn(ctx context.Context) (*sql.DB, error) {
	return db.pool.Get(ctx)
}

// withTx runs fn in one immediate transaction. Everything inside fn must go
// through tx: the pool holds a single connection.
func (db *DB) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	conn, err := db.conn(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return classify(op+": begin", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return classify(op+": commit", err)
	}
	return nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            email TEXT NOT NULL UNIQUE,
            name TEXT NOT NULL,
            username TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            student_number TEXT NOT NULL DEFAULT '',
            role TEXT NOT NULL DEFAULT 'student',
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_student_number
            ON users(student_number) WHERE student_number <> ''`,

		`CREATE TABLE IF NOT EXISTS profiles (
            user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
            full_name TEXT NOT NULL,
            student_number TEXT NOT NULL DEFAULT '',
            year TEXT NOT NULL DEFAULT '',
            course TEXT NOT NULL DEFAULT '',
            email TEXT NOT NULL,
            role TEXT NOT NULL,
            phone_number TEXT NOT NULL DEFAULT '',
            profile_image TEXT NOT NULL DEFAULT '',
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )`,

		`CREATE TABLE IF NOT EXISTS venues (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL UNIQUE,
            type TEXT NOT NULL,
            capacity INTEGER NOT NULL,
            status TEXT NOT NULL DEFAULT 'Available',
            equipment TEXT NOT NULL DEFAULT '[]',
            image TEXT NOT NULL DEFAULT '',
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_venues_status ON venues(status, created_at)`,

		`CREATE TABLE IF NOT EXISTS bookings (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            venue_id TEXT NOT NULL,
            venue_ref_kind TEXT NOT NULL DEFAULT 'inline',
            venue_name TEXT NOT NULL DEFAULT '',
            date TEXT NOT NULL,
            start_minute INTEGER NOT NULL,
            end_minute INTEGER NOT NULL,
            participants INTEGER NOT NULL,
            needs_equipment BOOLEAN NOT NULL DEFAULT 0,
            notes TEXT NOT NULL DEFAULT '',
            full_name TEXT NOT NULL DEFAULT '',
            student_number TEXT NOT NULL DEFAULT '',
            year TEXT NOT NULL DEFAULT '',
            course TEXT NOT NULL DEFAULT '',
            email TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL,
            CHECK (start_minute < end_minute)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_slot ON bookings(venue_id, date, status)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings(user_id, date, start_minute)`,
	}

	for _, query := range queries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}
