// sbbs/database/users.go
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

// UserStore provides CRUD over the system database's users and
// password_resets tables.
type UserStore struct {
	manager *Manager
	logger  *slog.Logger
}

func NewUserStore(manager *Manager, logger *slog.Logger) *UserStore {
	return &UserStore{manager: manager, logger: logger}
}

const userColumns = "id, name, email, password_hash, password_set_at, created_at, updated_at"

// FindByEmail looks a user up by email. The email column is case
// insensitive, so callers only need to trim.
func (s *UserStore) FindByEmail(email string) (*models.User, error) {
	db, err := s.manager.System()
	if err != nil {
		return nil, err
	}
	return scanUser(db.QueryRow("SELECT "+userColumns+" FROM users WHERE email = ?", email))
}

func (s *UserStore) FindByID(id int64) (*models.User, error) {
	db, err := s.manager.System()
	if err != nil {
		return nil, err
	}
	return scanUser(db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

// Create inserts a user without a password and returns the new id. A taken
// email surfaces as a conflict error.
func (s *UserStore) Create(name, email string, now time.Time) (int64, error) {
	db, err := s.manager.System()
	if err != nil {
		return 0, err
	}

	res, err := db.Exec(
		"INSERT INTO users (name, email, created_at, updated_at) VALUES (?, ?, ?, ?)",
		name, email, now, now,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return 0, models.Conflict(fmt.Sprintf("an account with email '%s' already exists", email))
		}
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	return res.LastInsertId()
}

func (s *UserStore) UpdateName(id int64, name string, now time.Time) error {
	db, err := s.manager.System()
	if err != nil {
		return err
	}
	if _, err := db.Exec("UPDATE users SET name = ?, updated_at = ? WHERE id = ?", name, now, id); err != nil {
		return fmt.Errorf("failed to update user %d: %w", id, err)
	}
	return nil
}

// UpdatePassword stores a new password hash and records when it was set.
func (s *UserStore) UpdatePassword(id int64, hash string, now time.Time) error {
	db, err := s.manager.System()
	if err != nil {
		return err
	}
	if _, err := db.Exec(
		"UPDATE users SET password_hash = ?, password_set_at = ?, updated_at = ? WHERE id = ?",
		hash, now, now, id,
	); err != nil {
		return fmt.Errorf("failed to update password for user %d: %w", id, err)
	}
	return nil
}

// ReplaceResetToken deletes any prior reset rows for the user and stores a
// fresh one, keeping at most one live invite per user.
func (s *UserStore) ReplaceResetToken(userID int64, token string, expiresAt, now time.Time) error {
	db, err := s.manager.System()
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() {
		if rerr := tx.Rollback(); rerr != nil && rerr != sql.ErrTxDone {
			s.logger.Error("Failed to rollback transaction in ReplaceResetToken", "error", rerr)
		}
	}()

	if _, err := tx.Exec("DELETE FROM password_resets WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to clear prior reset tokens: %w", err)
	}
	if _, err := tx.Exec(
		"INSERT INTO password_resets (user_id, token, expires_at, created_at) VALUES (?, ?, ?, ?)",
		userID, token, expiresAt, now,
	); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	return tx.Commit()
}

func (s *UserStore) FindResetByToken(token string) (*models.PasswordReset, error) {
	db, err := s.manager.System()
	if err != nil {
		return nil, err
	}

	var pr models.PasswordReset
	err = db.QueryRow(
		"SELECT user_id, token, expires_at, created_at FROM password_resets WHERE token = ?",
		token,
	).Scan(&pr.UserID, &pr.Token, &pr.ExpiresAt, &pr.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NotFound("password setup token not found")
		}
		return nil, fmt.Errorf("db error getting reset token: %w", err)
	}
	return &pr, nil
}

func (s *UserStore) DeleteResetsForUser(userID int64) error {
	db, err := s.manager.System()
	if err != nil {
		return err
	}
	if _, err := db.Exec("DELETE FROM password_resets WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete reset tokens for user %d: %w", userID, err)
	}
	return nil
}

func (s *UserStore) DeleteResetByToken(token string) error {
	db, err := s.manager.System()
	if err != nil {
		return err
	}
	if _, err := db.Exec("DELETE FROM password_resets WHERE token = ?", token); err != nil {
		return fmt.Errorf("failed to delete reset token: %w", err)
	}
	return nil
}

// PurgeExpiredResets drops every token past its expiry. Called lazily on
// token lookup rather than from a background sweep.
func (s *UserStore) PurgeExpiredResets(now time.Time) error {
	db, err := s.manager.System()
	if err != nil {
		return err
	}
	if _, err := db.Exec("DELETE FROM password_resets WHERE expires_at <= ?", now); err != nil {
		return fmt.Errorf("failed to purge expired reset tokens: %w", err)
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.PasswordSetAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.NotFound("user not found")
		}
		return nil, fmt.Errorf("db error getting user: %w", err)
	}
	return &u, nil
}
