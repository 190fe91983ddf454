// sbbs/services/threads.go
package services

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"sbbs/config"
	"sbbs/database"
	"sbbs/models"
	"sbbs/utils"
)

// ThreadService enforces the posting rules on top of the thread store:
// required fields, length limits, login gating, and anonymous-author
// substitution. After each successful write it touches the board's
// updated_at in the system database. That touch happens outside the board
// database's transaction — the two files cannot share one — so a crash in
// between leaves the catalog ordering stale but never corrupts posts.
type ThreadService struct {
	cfg     *config.Config
	boards  *BoardService
	threads *database.ThreadStore
	catalog *database.BoardStore
	logger  *slog.Logger
}

func NewThreadService(cfg *config.Config, boards *BoardService, threads *database.ThreadStore, catalog *database.BoardStore, logger *slog.Logger) *ThreadService {
	return &ThreadService{cfg: cfg, boards: boards, threads: threads, catalog: catalog, logger: logger}
}

// ListThreads returns a board's threads with post counts, most recently
// active first.
func (s *ThreadService) ListThreads(boardSlug string) ([]models.Thread, error) {
	board, err := s.boards.GetBoard(boardSlug)
	if err != nil {
		return nil, err
	}
	return s.threads.ListByBoard(board.Slug)
}

// GetThread returns one thread with all of its posts, oldest first.
func (s *ThreadService) GetThread(boardSlug string, threadID int64) (*models.Thread, error) {
	board, err := s.boards.GetBoard(boardSlug)
	if err != nil {
		return nil, err
	}
	return s.threads.Find(board.Slug, threadID)
}

// CreateThread opens a thread with its first post and returns the new
// thread id.
func (s *ThreadService) CreateThread(actor *models.Identity, boardSlug, title, authorName, body string) (int64, error) {
	board, err := s.boards.GetBoard(boardSlug)
	if err != nil {
		return 0, err
	}
	if err := s.checkLogin(actor); err != nil {
		return 0, err
	}

	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if title == "" {
		return 0, models.Validation("a thread title is required")
	}
	if body == "" {
		return 0, models.Validation("a post body is required")
	}
	if err := checkLengths(title, body); err != nil {
		return 0, err
	}

	author, err := s.resolveAuthor(authorName, actor)
	if err != nil {
		return 0, err
	}

	now := utils.GetSQLTime()
	threadID, err := s.threads.CreateThread(board.Slug, title, author, body, now)
	if err != nil {
		return 0, err
	}

	s.touchBoard(board.Slug, now)
	return threadID, nil
}

// AddPost appends a reply to an existing thread.
func (s *ThreadService) AddPost(actor *models.Identity, boardSlug string, threadID int64, authorName, body string) error {
	board, err := s.boards.GetBoard(boardSlug)
	if err != nil {
		return err
	}
	if err := s.checkLogin(actor); err != nil {
		return err
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return models.Validation("a post body is required")
	}
	if err := checkLengths("", body); err != nil {
		return err
	}

	author, err := s.resolveAuthor(authorName, actor)
	if err != nil {
		return err
	}

	now := utils.GetSQLTime()
	if err := s.threads.AddPost(board.Slug, threadID, author, body, now); err != nil {
		return err
	}

	s.touchBoard(board.Slug, now)
	return nil
}

// UpdatePost edits a post in place. The post's creation time is preserved;
// the parent thread's updated_at advances.
func (s *ThreadService) UpdatePost(actor *models.Identity, boardSlug string, threadID, postID int64, authorName, body string) error {
	board, err := s.boards.GetBoard(boardSlug)
	if err != nil {
		return err
	}
	if err := s.checkLogin(actor); err != nil {
		return err
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return models.Validation("a post body is required")
	}
	if err := checkLengths("", body); err != nil {
		return err
	}

	author, err := s.resolveAuthor(authorName, actor)
	if err != nil {
		return err
	}

	now := utils.GetSQLTime()
	if err := s.threads.UpdatePost(board.Slug, threadID, postID, author, body, now); err != nil {
		return err
	}

	s.touchBoard(board.Slug, now)
	return nil
}

func (s *ThreadService) checkLogin(actor *models.Identity) error {
	if s.cfg.RequireLogin && actor == nil {
		return models.Validation("you must be logged in to post")
	}
	return nil
}

// resolveAuthor fills in a blank author name: the anonymous placeholder
// when the configuration allows it, otherwise the logged-in user's name,
// otherwise the write is rejected before it reaches the store.
func (s *ThreadService) resolveAuthor(authorName string, actor *models.Identity) (string, error) {
	name := strings.TrimSpace(authorName)
	if name != "" {
		if len(name) > config.MaxAuthorLen {
			return "", models.Validation(fmt.Sprintf("author name exceeds %d characters", config.MaxAuthorLen))
		}
		return name, nil
	}
	if s.cfg.AllowAnonymousPosting {
		return config.AnonymousName, nil
	}
	if actor != nil && actor.Name != "" {
		return actor.Name, nil
	}
	return "", models.Validation("an author name is required")
}

// touchBoard advances the catalog's updated_at after a write committed in
// the board's own database. Best-effort: a failure here only leaves the
// board ordering stale, so it is logged and swallowed.
func (s *ThreadService) touchBoard(slug string, now time.Time) {
	if err := s.catalog.Touch(slug, now); err != nil {
		s.logger.Warn("Failed to touch board after write", "slug", slug, "error", err)
	}
}

func checkLengths(title, body string) error {
	if len(title) > config.MaxTitleLen {
		return models.Validation(fmt.Sprintf("title exceeds %d characters", config.MaxTitleLen))
	}
	if len(body) > config.MaxBodyLen {
		return models.Validation(fmt.Sprintf("body exceeds %d characters", config.MaxBodyLen))
	}
	return nil
}
