// sbbs/database/threads.go
package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"sbbs/models"
)

// ThreadStore provides CRUD over a board database's threads and posts
// tables. Every method resolves the board connection through the manager,
// so the backing store is provisioned on first touch.
type ThreadStore struct {
	manager *Manager
	logger  *slog.Logger
}

func NewThreadStore(manager *Manager, logger *slog.Logger) *ThreadStore {
	return &ThreadStore{manager: manager, logger: logger}
}

// ListByBoard returns every thread on a board with its post count, most
// recently active first. Threads with no posts report a count of zero.
func (s *ThreadStore) ListByBoard(boardSlug string) ([]models.Thread, error) {
	db, err := s.manager.Board(boardSlug)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT t.id, t.title, t.created_at, t.updated_at, COUNT(p.id) AS post_count
		FROM threads t
		LEFT JOIN posts p ON p.thread_id = t.id
		GROUP BY t.id
		ORDER BY t.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("db error listing threads for '%s': %w", boardSlug, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Error("Failed to close rows in ListByBoard", "error", err)
		}
	}()

	var threads []models.Thread
	for rows.Next() {
		var t models.Thread
		if err := rows.Scan(&t.ID, &t.Title, &t.CreatedAt, &t.UpdatedAt, &t.PostCount); err != nil {
			return nil, fmt.Errorf("failed to scan thread row: %w", err)
		}
		threads = append(threads, t)
	}
	return threads, rows.Err()
}

// Find fetches a thread and all of its posts, oldest post first.
func (s *ThreadStore) Find(boardSlug string, threadID int64) (*models.Thread, error) {
	db, err := s.manager.Board(boardSlug)
	if err != nil {
		return nil, err
	}

	var t models.Thread
	err = db.QueryRow("SELECT id, title, created_at, updated_at FROM threads WHERE id = ?", threadID).
		Scan(&t.ID, &t.Title, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NotFound(fmt.Sprintf("thread %d not found", threadID))
		}
		return nil, fmt.Errorf("db error getting thread %d: %w", threadID, err)
	}

	rows, err := db.Query(
		"SELECT id, thread_id, author_name, body, created_at FROM posts WHERE thread_id = ? ORDER BY id ASC",
		threadID,
	)
	if err != nil {
		return nil, fmt.Errorf("db error getting posts for thread %d: %w", threadID, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Error("Failed to close rows in Find", "error", err)
		}
	}()

	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.ThreadID, &p.AuthorName, &p.Body, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		t.Posts = append(t.Posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	t.PostCount = len(t.Posts)
	return &t, nil
}

// CreateThread inserts a thread and its first post in one transaction and
// returns the new thread id. Both rows carry the same timestamp.
func (s *ThreadStore) CreateThread(boardSlug, title, authorName, body string, now time.Time) (int64, error) {
	db, err := s.manager.Board(boardSlug)
	if err != nil {
		return 0, err
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() {
		if rerr := tx.Rollback(); rerr != nil && rerr != sql.ErrTxDone {
			s.logger.Error("Failed to rollback transaction in CreateThread", "error", rerr)
		}
	}()

	res, err := tx.Exec(
		"INSERT INTO threads (title, created_at, updated_at) VALUES (?, ?, ?)",
		title, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert thread: %w", err)
	}
	threadID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read new thread id: %w", err)
	}

	if _, err := tx.Exec(
		"INSERT INTO posts (thread_id, author_name, body, created_at) VALUES (?, ?, ?, ?)",
		threadID, authorName, body, now,
	); err != nil {
		return 0, fmt.Errorf("failed to insert first post: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit thread creation: %w", err)
	}
	return threadID, nil
}

// AddPost appends a post to an existing thread and advances the thread's
// updated_at, all in one transaction. Fails with a not-found error when the
// thread does not exist; nothing is written in that case.
func (s *ThreadStore) AddPost(boardSlug string, threadID int64, authorName, body string, now time.Time) error {
	db, err := s.manager.Board(boardSlug)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() {
		if rerr := tx.Rollback(); rerr != nil && rerr != sql.ErrTxDone {
			s.logger.Error("Failed to rollback transaction in AddPost", "error", rerr)
		}
	}()

	if err := threadExists(tx, threadID); err != nil {
		return err
	}

	if _, err := tx.Exec(
		"INSERT INTO posts (thread_id, author_name, body, created_at) VALUES (?, ?, ?, ?)",
		threadID, authorName, body, now,
	); err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	if _, err := tx.Exec("UPDATE threads SET updated_at = ? WHERE id = ?", now, threadID); err != nil {
		return fmt.Errorf("failed to touch thread %d: %w", threadID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit post: %w", err)
	}
	return nil
}

// UpdatePost edits a post's author and body in place. The post must belong
// to the given thread; the check prevents edits reaching across threads.
// created_at is never changed, but the thread's updated_at advances.
func (s *ThreadStore) UpdatePost(boardSlug string, threadID, postID int64, authorName, body string, now time.Time) error {
	db, err := s.manager.Board(boardSlug)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() {
		if rerr := tx.Rollback(); rerr != nil && rerr != sql.ErrTxDone {
			s.logger.Error("Failed to rollback transaction in UpdatePost", "error", rerr)
		}
	}()

	if err := threadExists(tx, threadID); err != nil {
		return err
	}

	var owner int64
	err = tx.QueryRow("SELECT thread_id FROM posts WHERE id = ?", postID).Scan(&owner)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.NotFound(fmt.Sprintf("post %d not found", postID))
		}
		return fmt.Errorf("db error getting post %d: %w", postID, err)
	}
	if owner != threadID {
		return models.NotFound(fmt.Sprintf("post %d not found in thread %d", postID, threadID))
	}

	if _, err := tx.Exec(
		"UPDATE posts SET author_name = ?, body = ? WHERE id = ?",
		authorName, body, postID,
	); err != nil {
		return fmt.Errorf("failed to update post %d: %w", postID, err)
	}
	if _, err := tx.Exec("UPDATE threads SET updated_at = ? WHERE id = ?", now, threadID); err != nil {
		return fmt.Errorf("failed to touch thread %d: %w", threadID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit post update: %w", err)
	}
	return nil
}

func threadExists(tx *sql.Tx, threadID int64) error {
	var id int64
	err := tx.QueryRow("SELECT id FROM threads WHERE id = ?", threadID).Scan(&id)
	if err == sql.ErrNoRows {
		return models.NotFound(fmt.Sprintf("thread %d not found", threadID))
	}
	if err != nil {
		return fmt.Errorf("db error checking thread %d: %w", threadID, err)
	}
	return nil
}
