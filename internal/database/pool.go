package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// Pool owns the single SQLite handle. It opens on first use and is reused
// afterwards; a failed open is not remembered so the next caller retries.
type Pool struct {
	path        string
	busyTimeout time.Duration
	logger      *zerolog.Logger

	mu     sync.Mutex
	db     *sql.DB
	closed bool
}

func NewPool(path string, busyTimeout time.Duration, logger *zerolog.Logger) *Pool {
	if busyTimeout <= 0 {
		busyTimeout = 5 * time.Second
	}
	return &Pool{path: path, busyTimeout: busyTimeout, logger: logger}
}

func (p *Pool) Path() string {
	return p.path
}

// Get returns the open handle, opening and migrating it when needed.
func (p *Pool) Get(ctx context.Context) (*sql.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, fmt.Errorf("get connection: %w: pool closed", ErrUnavailable)
	}
	if p.db != nil {
		return p.db, nil
	}

	db, err := p.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %w", p.path, ErrUnavailable, err)
	}
	p.db = db
	p.logger.Info().Str("path", p.path).Msg("Database initialized")
	return db, nil
}

func (p *Pool) open(ctx context.Context) (*sql.DB, error) {
	if p.path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_txlock=immediate&_foreign_keys=on",
		p.path, p.busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// one connection serialises writers so the overlap check and the insert
	// cannot interleave with another booking
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Ping opens the pool if needed and checks the handle.
func (p *Pool) Ping(ctx context.Context) error {
	db, err := p.Get(ctx)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w: %w", ErrUnavailable, err)
	}
	return nil
}

func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}
