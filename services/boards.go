// sbbs/services/boards.go
package services

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"sbbs/database"
	"sbbs/models"
	"sbbs/utils"
)

// BoardService owns the board lifecycle rules: title validation, slug
// derivation, collision checks, and keeping every board's backing store
// provisioned.
type BoardService struct {
	manager *database.Manager
	boards  *database.BoardStore
	logger  *slog.Logger
}

func NewBoardService(manager *database.Manager, boards *database.BoardStore, logger *slog.Logger) *BoardService {
	return &BoardService{manager: manager, boards: boards, logger: logger}
}

// ListBoards returns the full catalog, most recently active first.
func (s *BoardService) ListBoards() ([]models.Board, error) {
	return s.boards.List()
}

// GetBoard looks a board up by slug. As a side effect it re-provisions the
// board's database file if it has gone missing, so boards survive a crash
// between catalog insert and file creation.
func (s *BoardService) GetBoard(slug string) (*models.Board, error) {
	slug = utils.NormalizeSlug(slug)
	if slug == "" {
		return nil, models.Validation("a board is required")
	}

	board, err := s.boards.Find(slug)
	if err != nil {
		return nil, err
	}

	if err := s.manager.EnsureBoardDatabase(board.Slug); err != nil {
		return nil, err
	}
	return board, nil
}

// CreateBoard validates the title, derives the slug (from the explicit slug
// when given, the title otherwise), rejects collisions, inserts the catalog
// row, and provisions the board's database. The row insert and the file
// creation cannot share a transaction; if provisioning fails the board row
// stays and GetBoard's self-healing is the recovery path.
func (s *BoardService) CreateBoard(title, slug, description string) (*models.Board, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, models.Validation("a board title is required")
	}

	base := strings.TrimSpace(slug)
	if base == "" {
		base = title
	}
	effective := utils.NormalizeSlug(base)
	if effective == "" {
		return nil, models.Validation("could not derive a valid slug from the given title")
	}

	if _, err := s.boards.Find(effective); err == nil {
		return nil, models.Conflict(fmt.Sprintf("a board with slug '%s' already exists", effective))
	} else if !models.IsNotFound(err) {
		return nil, err
	}

	now := utils.GetSQLTime()
	if err := s.boards.Insert(effective, title, nullableText(description), now); err != nil {
		return nil, err
	}
	if err := s.manager.EnsureBoardDatabase(effective); err != nil {
		s.logger.Error("Board created but backing store provisioning failed", "slug", effective, "error", err)
		return nil, err
	}

	return s.boards.Find(effective)
}

// UpdateBoard rewrites title and description. The slug never changes.
func (s *BoardService) UpdateBoard(slug, title, description string) (*models.Board, error) {
	slug = utils.NormalizeSlug(slug)
	if slug == "" {
		return nil, models.Validation("a board is required")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, models.Validation("a board title is required")
	}

	if err := s.boards.Update(slug, title, nullableText(description), utils.GetSQLTime()); err != nil {
		return nil, err
	}
	return s.boards.Find(slug)
}

// DeleteBoard drops the catalog row and then unlinks the board's database
// file. The file removal is best-effort cleanup; a leftover file is
// harmless and gets recreated empty if the slug is ever reused.
func (s *BoardService) DeleteBoard(slug string) error {
	slug = utils.NormalizeSlug(slug)
	if slug == "" {
		return models.Validation("a board is required")
	}

	if err := s.boards.Delete(slug); err != nil {
		return err
	}
	if err := s.manager.RemoveBoardDatabase(slug); err != nil {
		s.logger.Warn("Failed to remove board database after delete", "slug", slug, "error", err)
	}
	return nil
}

func nullableText(s string) sql.NullString {
	s = strings.TrimSpace(s)
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
