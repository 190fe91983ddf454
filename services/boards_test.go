// sbbs/services/boards_test.go
package services

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"sbbs/config"
	"sbbs/database"
	"sbbs/models"
)

type testEnv struct {
	cfg     *config.Config
	manager *database.Manager
	boards  *BoardService
	threads *ThreadService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	dir, err := os.MkdirTemp("", "sbbs_test_services")
	if err != nil {
		t.Fatalf("Failed to create temp storage dir: %v", err)
	}

	manager, err := database.NewManager(dir, logger)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	t.Cleanup(func() {
		manager.Close()
		os.RemoveAll(dir)
	})

	cfg := &config.Config{
		StoragePath:           dir,
		RequireLogin:          false,
		AllowAnonymousPosting: true,
		AllowUserBoardCreate:  true,
	}
	boardStore := database.NewBoardStore(manager, logger)
	threadStore := database.NewThreadStore(manager, logger)
	boards := NewBoardService(manager, boardStore, logger)
	threads := NewThreadService(cfg, boards, threadStore, boardStore, logger)

	return &testEnv{cfg: cfg, manager: manager, boards: boards, threads: threads}
}

func TestCreateBoardDerivesSlugFromTitle(t *testing.T) {
	env := newTestEnv(t)

	board, err := env.boards.CreateBoard("What's New?!", "", "site announcements")
	if err != nil {
		t.Fatalf("CreateBoard failed: %v", err)
	}
	if board.Slug != "what-s-new" {
		t.Errorf("Expected slug 'what-s-new', got %q", board.Slug)
	}
	if !board.Description.Valid || board.Description.String != "site announcements" {
		t.Errorf("Unexpected description: %+v", board.Description)
	}

	if _, err := os.Stat(filepath.Join(env.manager.Root(), "boards", "what-s-new.db")); err != nil {
		t.Errorf("Expected the board database on disk: %v", err)
	}
}

func TestCreateBoardExplicitSlugWins(t *testing.T) {
	env := newTestEnv(t)

	board, err := env.boards.CreateBoard("Announcements", "News", "")
	if err != nil {
		t.Fatalf("CreateBoard failed: %v", err)
	}
	if board.Slug != "news" {
		t.Errorf("Expected slug 'news', got %q", board.Slug)
	}
	if board.Description.Valid {
		t.Errorf("Expected a NULL description for blank input, got %+v", board.Description)
	}
}

func TestCreateBoardRejections(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.boards.CreateBoard("   ", "", ""); !models.IsValidation(err) {
		t.Errorf("Expected a validation error for a blank title, got %v", err)
	}
	if _, err := env.boards.CreateBoard("!!!", "", ""); !models.IsValidation(err) {
		t.Errorf("Expected a validation error for an unsluggable title, got %v", err)
	}

	if _, err := env.boards.CreateBoard("Tech Talk", "", ""); err != nil {
		t.Fatalf("CreateBoard failed: %v", err)
	}
	// Different spelling, same normalized slug.
	if _, err := env.boards.CreateBoard("tech talk", "", ""); !models.IsConflict(err) {
		t.Errorf("Expected a conflict for a colliding slug, got %v", err)
	}
}

func TestGetBoardReprovisionsMissingDatabase(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.boards.CreateBoard("General", "", ""); err != nil {
		t.Fatalf("CreateBoard failed: %v", err)
	}

	// Simulate the file vanishing out from under the catalog.
	if err := env.manager.RemoveBoardDatabase("general"); err != nil {
		t.Fatalf("RemoveBoardDatabase failed: %v", err)
	}
	path := filepath.Join(env.manager.Root(), "boards", "general.db")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("Expected the board file to be gone, stat returned %v", err)
	}

	if _, err := env.boards.GetBoard("general"); err != nil {
		t.Fatalf("GetBoard failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected GetBoard to re-provision the file: %v", err)
	}
}

func TestDeleteBoard(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.boards.CreateBoard("Doomed", "", ""); err != nil {
		t.Fatalf("CreateBoard failed: %v", err)
	}
	if err := env.boards.DeleteBoard("doomed"); err != nil {
		t.Fatalf("DeleteBoard failed: %v", err)
	}

	if _, err := env.boards.GetBoard("doomed"); !models.IsNotFound(err) {
		t.Errorf("Expected a not-found error after delete, got %v", err)
	}
	path := filepath.Join(env.manager.Root(), "boards", "doomed.db")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected the board file removed, stat returned %v", err)
	}

	if err := env.boards.DeleteBoard("doomed"); !models.IsNotFound(err) {
		t.Errorf("Expected a not-found error for a double delete, got %v", err)
	}
}

func TestUpdateBoardKeepsSlug(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.boards.CreateBoard("Old Title", "", ""); err != nil {
		t.Fatalf("CreateBoard failed: %v", err)
	}
	board, err := env.boards.UpdateBoard("old-title", "New Title", "refreshed")
	if err != nil {
		t.Fatalf("UpdateBoard failed: %v", err)
	}
	if board.Slug != "old-title" {
		t.Errorf("Expected the slug to stay 'old-title', got %q", board.Slug)
	}
	if board.Title != "New Title" {
		t.Errorf("Expected the new title, got %q", board.Title)
	}
}
