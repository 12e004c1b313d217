/*
Package sqlite provides the SQLite-backed implementation of the record
repositories.

PURPOSE:
  Owns the schema of the three record tables and executes the statements
  produced by the generic builders. One generic Table type serves every
  entity; it is parameterized by a crm descriptor.

KEY TABLES:
  parties:       clients
  opportunities: deals, client_id -> parties.id (weak)
  action_items:  tasks, client_id -> parties.id, deal_id -> opportunities.id (weak)

WEAK REFERENCES:
  The foreign keys are declared for documentation and tooling, but the
  connection runs with foreign_keys OFF. Writes never check that the
  referenced row exists and deletes never cascade.

CONCURRENCY:
  No locking in this package. Every call borrows a pooled connection and
  returns it before the call ends. The engine serializes writers; when it
  stays locked past busy_timeout the statement fails with generic.ErrBusy
  and the caller decides whether to retry.

DRIVERS:
  config.DriverMattn:   github.com/mattn/go-sqlite3 (cgo, default)
  config.DriverModernc: modernc.org/sqlite (no cgo calls at query time;
                        both drivers are linked, so the binary still needs cgo)
  Both register the casefold SQL function used by the search filter.

USAGE:
  store, err := sqlite.Open(ctx, cfg.Database)
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  book := store.Book()
  id, err := book.Parties.Create(ctx, crm.PartyFields{Name: generic.Some("Anna")})

SEE ALSO:
  - table.go: Generic repository
  - driver.go: Driver registration and DSNs
  - generic/query.go: Statement builders
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/warp/records-engine/config"
	"github.com/warp/records-engine/crm"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store owns the database handle and the schema.
type Store struct {
	db  *sql.DB
	cfg config.Database
	now func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock replaces the clock used to stamp created_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open opens the database described by cfg and ensures the schema exists.
// The parent directory of the file is created if missing.
func Open(ctx context.Context, cfg config.Database, opts ...Option) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("database path is empty")
	}
	if cfg.Path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	driverName, dsn, err := dataSource(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.Path == MemoryPath {
		// Every new connection would get its own empty in-memory database.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &Store{db: db, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(store)
	}

	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return store, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying handle for direct queries in tools and tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the configured database location.
func (s *Store) Path() string {
	return s.cfg.Path
}

// Book returns the three record repositories backed by this store.
func (s *Store) Book() *crm.Book {
	return &crm.Book{
		Parties:       NewTable(s, crm.PartyDescriptor),
		Opportunities: NewTable(s, crm.OpportunityDescriptor),
		ActionItems:   NewTable(s, crm.ActionItemDescriptor),
	}
}

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
	CREATE TABLE IF NOT EXISTS parties (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		company TEXT,
		status TEXT NOT NULL DEFAULT 'active',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_parties_status
		ON parties(status);

	-- amount holds the exact decimal as text
	CREATE TABLE IF NOT EXISTS opportunities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		amount TEXT NOT NULL DEFAULT '0',
		currency TEXT NOT NULL DEFAULT 'RUB',
		status TEXT NOT NULL DEFAULT 'new',
		client_id INTEGER,
		close_date TEXT,
		created_at TEXT NOT NULL,
		FOREIGN KEY (client_id) REFERENCES parties(id)
	);

	CREATE INDEX IF NOT EXISTS idx_opportunities_status
		ON opportunities(status);
	CREATE INDEX IF NOT EXISTS idx_opportunities_client
		ON opportunities(client_id) WHERE client_id IS NOT NULL;

	CREATE TABLE IF NOT EXISTS action_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT,
		due_date TEXT,
		is_done INTEGER NOT NULL DEFAULT 0,
		client_id INTEGER,
		deal_id INTEGER,
		created_at TEXT NOT NULL,
		FOREIGN KEY (client_id) REFERENCES parties(id),
		FOREIGN KEY (deal_id) REFERENCES opportunities(id)
	);

	CREATE INDEX IF NOT EXISTS idx_action_items_client
		ON action_items(client_id) WHERE client_id IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_action_items_deal
		ON action_items(deal_id) WHERE deal_id IS NOT NULL;
`

// EnsureSchema creates the tables and indexes that do not exist yet.
// It never drops or alters anything, so it is safe on every startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return classify("ensure schema", "", err)
	}
	return nil
}
