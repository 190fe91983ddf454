// sbbs/models/models.go
package models

import (
	"database/sql"
	"time"
)

// --- Core Data Models ---

// Board is one row of the system database's board catalog. Each board owns
// a dedicated database file holding its threads and posts.
type Board struct {
	Slug        string
	Title       string
	Description sql.NullString
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Thread lives in its board's database; the board association is implicit
// in which file the row is stored in.
type Thread struct {
	ID        int64
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
	PostCount int
	Posts     []Post
}

type Post struct {
	ID         int64
	ThreadID   int64
	AuthorName string
	Body       string
	CreatedAt  time.Time
}

// --- Account Models ---

type User struct {
	ID            int64
	Name          string
	Email         string
	PasswordHash  sql.NullString
	PasswordSetAt sql.NullTime
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasPassword reports whether the user has completed password setup.
func (u *User) HasPassword() bool {
	return u.PasswordHash.Valid && u.PasswordHash.String != ""
}

type PasswordReset struct {
	UserID    int64
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Identity is a resolved authenticated principal, independent of whether it
// came from the local users table or an external provider.
type Identity struct {
	ID        string
	Name      string
	Email     string
	AvatarURL string
}
