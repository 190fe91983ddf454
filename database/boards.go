// sbbs/database/boards.go
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"sbbs/models"

	"github.com/mattn/go-sqlite3"
)

// BoardStore provides CRUD over the system database's boards table.
type BoardStore struct {
	manager *Manager
	logger  *slog.Logger
}

func NewBoardStore(manager *Manager, logger *slog.Logger) *BoardStore {
	return &BoardStore{manager: manager, logger: logger}
}

// List returns every board, most recently active first.
func (s *BoardStore) List() ([]models.Board, error) {
	db, err := s.manager.System()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query("SELECT slug, title, description, created_at, updated_at FROM boards ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("db error listing boards: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Error("Failed to close rows in List", "error", err)
		}
	}()

	var boards []models.Board
	for rows.Next() {
		var b models.Board
		if err := rows.Scan(&b.Slug, &b.Title, &b.Description, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan board row: %w", err)
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

// Find fetches one board by its (already normalized) slug.
func (s *BoardStore) Find(slug string) (*models.Board, error) {
	db, err := s.manager.System()
	if err != nil {
		return nil, err
	}

	var b models.Board
	err = db.QueryRow("SELECT slug, title, description, created_at, updated_at FROM boards WHERE slug = ?", slug).
		Scan(&b.Slug, &b.Title, &b.Description, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NotFound(fmt.Sprintf("board '%s' not found", slug))
		}
		return nil, fmt.Errorf("db error getting board '%s': %w", slug, err)
	}
	return &b, nil
}

// Insert adds the system row for a new board with created_at == updated_at.
func (s *BoardStore) Insert(slug, title string, description sql.NullString, now time.Time) error {
	db, err := s.manager.System()
	if err != nil {
		return err
	}

	_, err = db.Exec(
		"INSERT INTO boards (slug, title, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		slug, title, description, now, now,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) &&
			(sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique) {
			return models.Conflict(fmt.Sprintf("a board with slug '%s' already exists", slug))
		}
		return fmt.Errorf("failed to insert board '%s': %w", slug, err)
	}
	return nil
}

// Update rewrites a board's title and description. The slug is immutable.
func (s *BoardStore) Update(slug, title string, description sql.NullString, now time.Time) error {
	db, err := s.manager.System()
	if err != nil {
		return err
	}

	res, err := db.Exec(
		"UPDATE boards SET title = ?, description = ?, updated_at = ? WHERE slug = ?",
		title, description, now, slug,
	)
	if err != nil {
		return fmt.Errorf("failed to update board '%s': %w", slug, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.NotFound(fmt.Sprintf("board '%s' not found", slug))
	}
	return nil
}

// Touch advances a board's updated_at so it sorts to the top of the catalog.
func (s *BoardStore) Touch(slug string, now time.Time) error {
	db, err := s.manager.System()
	if err != nil {
		return err
	}
	if _, err := db.Exec("UPDATE boards SET updated_at = ? WHERE slug = ?", now, slug); err != nil {
		return fmt.Errorf("failed to touch board '%s': %w", slug, err)
	}
	return nil
}

// Delete removes a board's system row. The board's database file is handled
// separately by the manager.
func (s *BoardStore) Delete(slug string) error {
	db, err := s.manager.System()
	if err != nil {
		return err
	}

	res, err := db.Exec("DELETE FROM boards WHERE slug = ?", slug)
	if err != nil {
		return fmt.Errorf("failed to delete board '%s': %w", slug, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.NotFound(fmt.Sprintf("board '%s' not found", slug))
	}
	return nil
}
