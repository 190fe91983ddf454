// sbbs/services/password.go
package services

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"strings"

	"sbbs/auth"
	"sbbs/config"
	"sbbs/database"
	"sbbs/models"
	"sbbs/utils"

	"golang.org/x/crypto/bcrypt"
)

// Mailer delivers a password setup link. Delivery mechanics are an external
// collaborator; the service only hands over name, address, and URL.
type Mailer interface {
	Send(recipientName, recipientEmail, url string) error
}

// LogMailer is the default Mailer: it writes the link to the log instead of
// sending anything. Useful for development and embedding hosts that wire
// their own delivery.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) Send(recipientName, recipientEmail, url string) error {
	m.Logger.Info("Password setup link issued", "name", recipientName, "email", recipientEmail, "url", url)
	return nil
}

// PasswordAuthService implements the password login and password setup
// flows on top of the user store. All lookups fail closed: a missing user,
// missing hash, or mismatched password all yield false with no detail.
type PasswordAuthService struct {
	users   *database.UserStore
	session *auth.SessionAuthenticator
	mailer  Mailer
	logger  *slog.Logger
}

func NewPasswordAuthService(users *database.UserStore, session *auth.SessionAuthenticator, mailer Mailer, logger *slog.Logger) *PasswordAuthService {
	return &PasswordAuthService{users: users, session: session, mailer: mailer, logger: logger}
}

// AttemptLogin verifies the password against the stored hash and, on
// success, records the user id in the session.
func (s *PasswordAuthService) AttemptLogin(sess auth.Session, email, password string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return false
	}

	user, err := s.users.FindByEmail(email)
	if err != nil {
		if !models.IsNotFound(err) {
			s.logger.Error("Login lookup failed", "error", err)
		}
		return false
	}
	if !user.HasPassword() {
		return false
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash.String), []byte(password)) != nil {
		return false
	}

	s.session.LoginUserID(sess, user.ID)
	return true
}

// RequestPasswordSetup creates or updates the user record, replaces any
// prior reset tokens with a fresh one, and hands the setup URL to the
// mailer. buildURL maps the raw token to the link the recipient will click.
func (s *PasswordAuthService) RequestPasswordSetup(name, email string, buildURL func(token string) string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if email == "" {
		return models.Validation("an email address is required")
	}

	now := utils.GetSQLTime()

	user, err := s.users.FindByEmail(email)
	if models.IsNotFound(err) {
		id, cerr := s.users.Create(name, email, now)
		if cerr != nil {
			return cerr
		}
		if user, err = s.users.FindByID(id); err != nil {
			return err
		}
	} else if err != nil {
		return err
	} else if name != "" && name != user.Name {
		if err := s.users.UpdateName(user.ID, name, now); err != nil {
			return err
		}
		user.Name = name
	}

	token, err := newSetupToken()
	if err != nil {
		return models.Storage("could not generate setup token", err)
	}
	expiresAt := now.Add(config.PasswordResetTTL)
	if err := s.users.ReplaceResetToken(user.ID, token, expiresAt, now); err != nil {
		return err
	}

	if err := s.mailer.Send(user.Name, user.Email, buildURL(token)); err != nil {
		s.logger.Error("Failed to deliver password setup link", "email", user.Email, "error", err)
		return err
	}
	return nil
}

// FindPasswordToken validates a setup token and returns its user. Expired
// rows are purged lazily here; a token whose user has vanished is deleted.
func (s *PasswordAuthService) FindPasswordToken(token string) (*models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, models.NotFound("password setup token not found")
	}

	now := utils.GetSQLTime()
	if err := s.users.PurgeExpiredResets(now); err != nil {
		s.logger.Warn("Failed to purge expired reset tokens", "error", err)
	}

	reset, err := s.users.FindResetByToken(token)
	if err != nil {
		return nil, err
	}
	if !reset.ExpiresAt.After(now) {
		if derr := s.users.DeleteResetByToken(token); derr != nil {
			s.logger.Warn("Failed to delete expired reset token", "error", derr)
		}
		return nil, models.NotFound("password setup token has expired")
	}

	user, err := s.users.FindByID(reset.UserID)
	if err != nil {
		if models.IsNotFound(err) {
			if derr := s.users.DeleteResetByToken(token); derr != nil {
				s.logger.Warn("Failed to delete orphaned reset token", "error", derr)
			}
		}
		return nil, err
	}
	return user, nil
}

// CompletePasswordSetup re-validates the token, stores the new password
// hash, burns every reset token for the user, and logs the user in.
// Returns false without mutating anything when the token is invalid.
func (s *PasswordAuthService) CompletePasswordSetup(sess auth.Session, token, password string) bool {
	if password == "" {
		return false
	}

	user, err := s.FindPasswordToken(token)
	if err != nil {
		return false
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Failed to hash password", "error", err)
		return false
	}

	now := utils.GetSQLTime()
	if err := s.users.UpdatePassword(user.ID, string(hash), now); err != nil {
		s.logger.Error("Failed to store password", "user_id", user.ID, "error", err)
		return false
	}
	if err := s.users.DeleteResetsForUser(user.ID); err != nil {
		s.logger.Warn("Failed to burn reset tokens", "user_id", user.ID, "error", err)
	}

	s.session.LoginUserID(sess, user.ID)
	return true
}

func newSetupToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}
