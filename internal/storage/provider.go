package storage

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - no schema
// 1 - objects + links
// 2 - generation column on objects
const currentSchemaVersion = 2

// Provider owns the cache database and its persistence contexts.
type Provider struct {
	db     *sql.DB
	clock  *Clock
	ids    IDGenerator
	logger *slog.Logger

	view   *View
	writer *Context

	mu       sync.Mutex
	contexts []*Context
	closed   bool
}

// Option configures a Provider.
type Option func(*Provider)

// WithIDGenerator replaces the UUIDv7 object ID generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(p *Provider) { p.ids = g }
}

// WithLogger sets the provider's logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) { p.logger = l }
}

// Open creates or opens the cache database at path and starts the view and
// writer contexts.
//
// The database is configured with WAL mode, NORMAL synchronous mode, a
// 5-second busy timeout and foreign key enforcement. Open is idempotent.
func Open(path string, opts ...Option) (*Provider, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	p := &Provider{
		db:     db,
		clock:  NewClock(),
		ids:    UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.view = &View{ctx: p.newContext("view", true)}
	p.writer = p.newContext("writer", false)
	return p, nil
}

// View returns the read-only view context.
func (p *Provider) View() *View {
	return p.view
}

// Writer returns the shared derived context stores write through.
func (p *Provider) Writer() *Context {
	return p.writer
}

// NewDerivedContext starts an additional derived context. Close it when
// done.
func (p *Provider) NewDerivedContext(name string) *Context {
	return p.newContext(name, false)
}

// DB returns the underlying database for direct queries.
func (p *Provider) DB() *sql.DB {
	return p.db
}

// Close stops every context, waiting for queued work, then closes the
// database.
func (p *Provider) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	contexts := append([]*Context(nil), p.contexts...)
	p.mu.Unlock()

	for _, c := range contexts {
		c.Close()
	}
	return p.db.Close()
}

func (p *Provider) newContext(name string, readOnly bool) *Context {
	c := newContext(p, name, readOnly)

	p.mu.Lock()
	p.contexts = append(p.contexts, c)
	p.mu.Unlock()

	go c.run()
	return c
}

func (p *Provider) removeContext(c *Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, other := range p.contexts {
		if other == c {
			p.contexts = append(p.contexts[:i], p.contexts[i+1:]...)
			return
		}
	}
}

// publish delivers a committed change set. The view merges synchronously
// and its observers run on the calling goroutine; other derived contexts
// merge asynchronously on their own workers.
func (p *Provider) publish(from *Context, cs ChangeSet) {
	p.mu.Lock()
	targets := make([]*Context, 0, len(p.contexts))
	for _, c := range p.contexts {
		if c != from && c != p.view.ctx {
			targets = append(targets, c)
		}
	}
	p.mu.Unlock()

	for _, c := range targets {
		if err := c.PerformAsync(func(c *Context) error { return c.merge(cs) }); err != nil {
			p.logger.Debug("skip merge into closed context", "context", c.name, "seq", cs.Seq)
		}
	}

	if err := p.view.ctx.Perform(func(c *Context) error { return c.merge(cs) }); err != nil {
		p.logger.Warn("view merge failed", "seq", cs.Seq, "error", err)
		return
	}

	p.logger.Debug("published change set",
		"context", from.name,
		"seq", cs.Seq,
		"inserted", len(cs.Inserted),
		"updated", len(cs.Updated),
		"deleted", len(cs.Deleted),
	)
	p.view.notify(cs)
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	return nil
}

func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version == 1 {
		if err := migrateToV2(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV2 adds the generation counter to databases created before it
// existed.
func migrateToV2(db *sql.DB) error {
	_, err := db.Exec(`ALTER TABLE objects ADD COLUMN generation INTEGER NOT NULL DEFAULT 1`)
	if err != nil {
		return fmt.Errorf("migrate to v2: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (p *Provider) verifyPragma(name, expected string) error {
	var value string
	if err := p.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
