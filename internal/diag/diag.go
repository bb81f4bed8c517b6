// Package diag archives fetched portal pages in a local SQLite database so
// layout changes can be diagnosed after the fact. The engine state itself is
// never persisted; only page snapshots are.
package diag

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Snapshot is one archived page body.
type Snapshot struct {
	ID        string
	Name      string // logical page name, e.g. absensi_page.html
	Content   string
	CreatedAt time.Time
}

// Store persists page snapshots using modernc.org/sqlite (pure Go, no CGO).
type Store struct {
	db   *sql.DB
	keep int
}

// NewStore opens (or creates) the snapshot database at the given path,
// keeping at most keep snapshots per page name.
func NewStore(dbPath string, keep int) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one concurrent writer; a single connection
	// serializes access through Go's pool and avoids "database is locked".
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if keep <= 0 {
		keep = 20
	}
	return &Store{db: db, keep: keep}, nil
}

// Shared monotonic entropy keeps IDs ordered even within one millisecond;
// Save's pruning sorts on them.
var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// newULID generates a new ULID string.
func newULID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Migrate runs all embedded SQL migration files in order.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()

		var count int
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}

	return nil
}

// Save stores a snapshot and prunes older ones past the keep limit for the
// same page name.
func (s *Store) Save(ctx context.Context, name, content string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO snapshots (id, name, content, created_at) VALUES (?, ?, ?, ?)",
		newULID(), name, content, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE name = ? AND id NOT IN (
		SELECT id FROM snapshots WHERE name = ? ORDER BY id DESC LIMIT ?
	)`, name, name, s.keep)
	if err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}

	return nil
}

// Recent returns up to limit most recent snapshots for a page name, newest
// first. Content is included.
func (s *Store) Recent(ctx context.Context, name string, limit int) ([]*Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, content, created_at FROM snapshots WHERE name = ? ORDER BY id DESC LIMIT ?",
		name, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []*Snapshot
	for rows.Next() {
		var snap Snapshot
		var created string
		if err := rows.Scan(&snap.ID, &snap.Name, &snap.Content, &created); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			snap.CreatedAt = t
		}
		out = append(out, &snap)
	}
	return out, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
