// sbbs/handlers/handlers_test.go
package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sbbs/auth"
	"sbbs/config"
	"sbbs/database"
	"sbbs/models"
	"sbbs/services"
	"sbbs/utils"
)

type testApp struct {
	logger      *slog.Logger
	cfg         *config.Config
	boards      *services.BoardService
	threads     *services.ThreadService
	authManager *auth.Manager
	sessions    *auth.SessionStore
	password    *services.PasswordAuthService
	rateLimiter *models.RateLimiter
	backups     *database.BackupService
	backupDir   string
}

func (a *testApp) Logger() *slog.Logger                    { return a.logger }
func (a *testApp) Config() *config.Config                  { return a.cfg }
func (a *testApp) Boards() *services.BoardService          { return a.boards }
func (a *testApp) Threads() *services.ThreadService        { return a.threads }
func (a *testApp) Auth() *auth.Manager                     { return a.authManager }
func (a *testApp) Sessions() *auth.SessionStore            { return a.sessions }
func (a *testApp) Password() *services.PasswordAuthService { return a.password }
func (a *testApp) RateLimiter() *models.RateLimiter        { return a.rateLimiter }
func (a *testApp) Backups() *database.BackupService        { return a.backups }

func newTestApp(t *testing.T, burst int) *testApp {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	dir, err := os.MkdirTemp("", "sbbs_test_handlers")
	if err != nil {
		t.Fatalf("Failed to create temp storage dir: %v", err)
	}
	manager, err := database.NewManager(filepath.Join(dir, "storage"), logger)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	t.Cleanup(func() {
		manager.Close()
		os.RemoveAll(dir)
	})

	backupDir := filepath.Join(dir, "backups")
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		t.Fatalf("Failed to create backup dir: %v", err)
	}

	cfg := &config.Config{
		StoragePath:           filepath.Join(dir, "storage"),
		AllowAnonymousPosting: true,
		AllowUserBoardCreate:  true,
	}
	boardStore := database.NewBoardStore(manager, logger)
	threadStore := database.NewThreadStore(manager, logger)
	boards := services.NewBoardService(manager, boardStore, logger)
	threads := services.NewThreadService(cfg, boards, threadStore, boardStore, logger)

	return &testApp{
		logger:      logger,
		cfg:         cfg,
		boards:      boards,
		threads:     threads,
		authManager: auth.NewManager(auth.NewGuestAuthenticator()),
		sessions:    auth.NewSessionStore(time.Hour, 24*time.Hour),
		rateLimiter: models.NewRateLimiter(time.Minute, burst, time.Hour, 24*time.Hour),
		backups:     database.NewBackupService(manager, &utils.LocalBackupTarget{Dir: backupDir}, logger),
		backupDir:   backupDir,
	}
}

func postForm(t *testing.T, mux http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func get(t *testing.T, mux http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(into); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
}

func TestBoardAndThreadFlow(t *testing.T) {
	app := newTestApp(t, 100)
	mux := SetupRouter(app)

	w := postForm(t, mux, "/api/boards", url.Values{
		"title":       {"General Discussion"},
		"description": {"anything goes"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Create board: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var board boardJSON
	decode(t, w, &board)
	if board.Slug != "general-discussion" {
		t.Fatalf("Expected slug 'general-discussion', got %q", board.Slug)
	}

	w = get(t, mux, "/api/boards")
	if w.Code != http.StatusOK {
		t.Fatalf("List boards: expected 200, got %d", w.Code)
	}
	var boards []boardJSON
	decode(t, w, &boards)
	if len(boards) != 1 {
		t.Fatalf("Expected one board, got %d", len(boards))
	}

	w = postForm(t, mux, "/api/boards/general-discussion/threads", url.Values{
		"title": {"Hello world"},
		"body":  {"first post"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Create thread: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		ThreadID int64 `json:"thread_id"`
	}
	decode(t, w, &created)
	if created.ThreadID <= 0 {
		t.Fatalf("Expected a thread id, got %d", created.ThreadID)
	}

	threadPath := "/api/boards/general-discussion/threads/1"
	w = postForm(t, mux, threadPath+"/posts", url.Values{
		"author_name": {"alice"},
		"body":        {"a reply"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Add post: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = get(t, mux, threadPath)
	if w.Code != http.StatusOK {
		t.Fatalf("Get thread: expected 200, got %d", w.Code)
	}
	var thread threadJSON
	decode(t, w, &thread)
	if thread.PostCount != 2 {
		t.Errorf("Expected two posts, got %d", thread.PostCount)
	}
	if thread.Posts[0].AuthorName != config.AnonymousName {
		t.Errorf("Expected the first post anonymous, got %q", thread.Posts[0].AuthorName)
	}
	if thread.Posts[1].AuthorName != "alice" {
		t.Errorf("Expected the reply author, got %q", thread.Posts[1].AuthorName)
	}

	// Edit the reply in place.
	req := httptest.NewRequest("PUT", threadPath+"/posts/2", strings.NewReader(url.Values{
		"author_name": {"alice"},
		"body":        {"a better reply"},
	}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Update post: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestErrorStatusMapping(t *testing.T) {
	app := newTestApp(t, 100)
	mux := SetupRouter(app)

	if w := get(t, mux, "/api/boards/no-such-board"); w.Code != http.StatusNotFound {
		t.Errorf("Missing board: expected 404, got %d", w.Code)
	}

	if w := postForm(t, mux, "/api/boards", url.Values{"title": {""}}); w.Code != http.StatusBadRequest {
		t.Errorf("Blank title: expected 400, got %d", w.Code)
	}

	if w := postForm(t, mux, "/api/boards", url.Values{"title": {"Dupes"}}); w.Code != http.StatusCreated {
		t.Fatalf("Create board: expected 201, got %d", w.Code)
	}
	if w := postForm(t, mux, "/api/boards", url.Values{"title": {"Dupes"}}); w.Code != http.StatusConflict {
		t.Errorf("Duplicate board: expected 409, got %d", w.Code)
	}

	// chi matches {threadID} but the id fails to parse.
	if w := get(t, mux, "/api/boards/dupes/threads/abc"); w.Code != http.StatusBadRequest {
		t.Errorf("Bad thread id: expected 400, got %d", w.Code)
	}
}

func TestStorageErrorsAreMasked(t *testing.T) {
	app := newTestApp(t, 100)

	w := httptest.NewRecorder()
	respondError(w, models.Storage("could not open board database", os.ErrPermission), app)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500 for a storage error, got %d", w.Code)
	}
	var body map[string]string
	decode(t, w, &body)
	if body["error"] != "internal server error" {
		t.Errorf("Expected the cause masked, got %q", body["error"])
	}
}

func TestRateLimitOnWrites(t *testing.T) {
	app := newTestApp(t, 1)
	mux := SetupRouter(app)

	if w := postForm(t, mux, "/api/boards", url.Values{"title": {"One"}}); w.Code != http.StatusCreated {
		t.Fatalf("First write: expected 201, got %d", w.Code)
	}
	if w := postForm(t, mux, "/api/boards", url.Values{"title": {"Two"}}); w.Code != http.StatusTooManyRequests {
		t.Errorf("Second write: expected 429, got %d", w.Code)
	}

	// Reads stay unthrottled.
	if w := get(t, mux, "/api/boards"); w.Code != http.StatusOK {
		t.Errorf("Read during throttle: expected 200, got %d", w.Code)
	}
}

func TestBoardCreationCanBeDisabled(t *testing.T) {
	app := newTestApp(t, 100)
	app.cfg.AllowUserBoardCreate = false
	mux := SetupRouter(app)

	if w := postForm(t, mux, "/api/boards", url.Values{"title": {"Nope"}}); w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 with board creation disabled, got %d", w.Code)
	}
}

func TestAdminEndpointsAreLANOnly(t *testing.T) {
	app := newTestApp(t, 100)
	mux := SetupRouter(app)

	if w := postForm(t, mux, "/api/boards", url.Values{"title": {"Managed"}}); w.Code != http.StatusCreated {
		t.Fatalf("Create board: expected 201, got %d", w.Code)
	}

	// httptest requests come from 192.0.2.x, which is not LAN.
	req := httptest.NewRequest("DELETE", "/admin/boards/managed", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("Public admin call: expected 403, got %d", w.Code)
	}

	req = httptest.NewRequest("DELETE", "/admin/boards/managed", nil)
	req.RemoteAddr = "127.0.0.1:54321"
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Loopback admin call: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if w := get(t, mux, "/api/boards/managed"); w.Code != http.StatusNotFound {
		t.Errorf("Expected the board gone after admin delete, got %d", w.Code)
	}
}

func TestAdminBackup(t *testing.T) {
	app := newTestApp(t, 100)
	mux := SetupRouter(app)

	if w := postForm(t, mux, "/api/boards", url.Values{"title": {"Archive Me"}}); w.Code != http.StatusCreated {
		t.Fatalf("Create board: expected 201, got %d", w.Code)
	}

	req := httptest.NewRequest("POST", "/admin/backup", nil)
	req.RemoteAddr = "127.0.0.1:54321"
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Backup: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var out struct {
		Stored []string `json:"stored"`
	}
	decode(t, w, &out)
	// One snapshot for the system database, one per board.
	if len(out.Stored) != 2 {
		t.Fatalf("Expected two snapshots, got %v", out.Stored)
	}
	entries, err := os.ReadDir(app.backupDir)
	if err != nil {
		t.Fatalf("Failed to read backup dir: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected two files in the backup dir, got %d", len(entries))
	}
}
