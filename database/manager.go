// sbbs/database/manager.go
package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"sbbs/models"
	"sbbs/utils"

	_ "github.com/mattn/go-sqlite3"
)

const dsnOptions = "?_journal_mode=WAL&_foreign_keys=on"

// Manager maps a logical target ("system" or a board slug) to a ready
// SQLite connection. Connections are opened lazily, migrated on first use,
// and cached for the lifetime of the manager. The cache is mutex-guarded so
// a single manager instance can be shared across request goroutines.
type Manager struct {
	root   string
	logger *slog.Logger

	mu     sync.Mutex
	system *sql.DB
	boards map[string]*sql.DB
}

// NewManager prepares the storage root. The system and board databases are
// not touched until first use.
func NewManager(root string, logger *slog.Logger) (*Manager, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, models.Storage("could not create storage directory "+root, err)
	}
	return &Manager{
		root:   root,
		logger: logger,
		boards: make(map[string]*sql.DB),
	}, nil
}

// Root returns the storage root directory.
func (m *Manager) Root() string { return m.root }

// System returns the cached system connection, creating the file and
// applying the system schema on the first call.
func (m *Manager) System() (*sql.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.system != nil {
		return m.system, nil
	}

	path := filepath.Join(m.root, "system.db")
	db, err := openDatabase(path)
	if err != nil {
		return nil, models.Storage("could not open system database", err)
	}
	if _, err := db.Exec(systemSchema); err != nil {
		db.Close()
		return nil, models.Storage("failed to execute system schema", err)
	}
	if err := migrateSystemSchema(db); err != nil {
		db.Close()
		return nil, models.Storage("system schema migration failed", err)
	}
	if _, err := db.Exec(systemIndexes); err != nil {
		db.Close()
		return nil, models.Storage("failed to create system indexes", err)
	}

	m.logger.Info("System database ready", "path", path)
	m.system = db
	return db, nil
}

// Board returns the cached connection for a board's database, creating the
// boards/ directory, the file, and the board schema on first use. The slug
// is normalized first; an empty result is a validation failure.
func (m *Manager) Board(slug string) (*sql.DB, error) {
	slug = utils.NormalizeSlug(slug)
	if slug == "" {
		return nil, models.Validation("a board slug is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if db, ok := m.boards[slug]; ok {
		return db, nil
	}

	path, err := m.boardPathLocked(slug)
	if err != nil {
		return nil, err
	}
	db, err := openDatabase(path)
	if err != nil {
		return nil, models.Storage("could not open board database "+slug, err)
	}
	if _, err := db.Exec(boardSchema); err != nil {
		db.Close()
		return nil, models.Storage("failed to execute board schema for "+slug, err)
	}
	if err := migrateBoardSchema(db); err != nil {
		db.Close()
		return nil, models.Storage("board schema migration failed for "+slug, err)
	}
	if _, err := db.Exec(boardIndexes); err != nil {
		db.Close()
		return nil, models.Storage("failed to create board indexes for "+slug, err)
	}

	m.boards[slug] = db
	return db, nil
}

// EnsureBoardDatabase pre-provisions a board's backing store without
// issuing a query against it.
func (m *Manager) EnsureBoardDatabase(slug string) error {
	_, err := m.Board(slug)
	return err
}

// BoardDatabasePath returns the on-disk location for a board's database,
// creating the boards/ directory if it does not exist yet.
func (m *Manager) BoardDatabasePath(slug string) (string, error) {
	slug = utils.NormalizeSlug(slug)
	if slug == "" {
		return "", models.Validation("a board slug is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.boardPathLocked(slug)
}

// RemoveBoardDatabase closes and evicts the board's cached connection, then
// unlinks its database file. Deletion of the file and its WAL sidecars is
// best-effort; the caller has already dropped the system row.
func (m *Manager) RemoveBoardDatabase(slug string) error {
	path, err := m.BoardDatabasePath(slug)
	if err != nil {
		return err
	}
	slug = utils.NormalizeSlug(slug)

	m.mu.Lock()
	if db, ok := m.boards[slug]; ok {
		if err := db.Close(); err != nil {
			m.logger.Error("Failed to close board database before removal", "slug", slug, "error", err)
		}
		delete(m.boards, slug)
	}
	m.mu.Unlock()

	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			m.logger.Warn("Failed to remove board database file", "path", p, "error", err)
		}
	}
	return nil
}

// Close shuts down every cached connection.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	if m.system != nil {
		if err := m.system.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		m.system = nil
	}
	for slug, db := range m.boards {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(m.boards, slug)
	}
	return firstErr
}

// boardPathLocked must be called with m.mu held.
func (m *Manager) boardPathLocked(slug string) (string, error) {
	boardsDir := filepath.Join(m.root, "boards")
	if err := os.MkdirAll(boardsDir, 0755); err != nil {
		return "", models.Storage("could not create boards directory", err)
	}
	return filepath.Join(boardsDir, slug+".db"), nil
}

func openDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+dsnOptions)
	if err != nil {
		return nil, err
	}
	// Probe the connection so a bad file surfaces here, not on first query.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	return db, nil
}
