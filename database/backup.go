// sbbs/database/backup.go
package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"sbbs/utils"
)

// BackupService snapshots live databases with VACUUM INTO and hands the
// result to a BackupTarget (local directory or S3).
type BackupService struct {
	manager *Manager
	target  utils.BackupTarget
	logger  *slog.Logger
}

func NewBackupService(manager *Manager, target utils.BackupTarget, logger *slog.Logger) *BackupService {
	return &BackupService{manager: manager, target: target, logger: logger}
}

// BackupSystem snapshots the system database and returns the stored location.
func (b *BackupService) BackupSystem() (string, error) {
	db, err := b.manager.System()
	if err != nil {
		return "", err
	}
	return b.snapshot(db, "system")
}

// BackupBoard snapshots one board's database.
func (b *BackupService) BackupBoard(slug string) (string, error) {
	db, err := b.manager.Board(slug)
	if err != nil {
		return "", err
	}
	return b.snapshot(db, "board_"+utils.NormalizeSlug(slug))
}

// BackupAll snapshots the system database and every cataloged board.
func (b *BackupService) BackupAll() ([]string, error) {
	sys, err := b.manager.System()
	if err != nil {
		return nil, err
	}

	stored := make([]string, 0, 1)
	loc, err := b.BackupSystem()
	if err != nil {
		return stored, err
	}
	stored = append(stored, loc)

	rows, err := sys.Query("SELECT slug FROM boards ORDER BY slug")
	if err != nil {
		return stored, fmt.Errorf("db error listing boards for backup: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return stored, fmt.Errorf("failed to scan board slug: %w", err)
		}
		slugs = append(slugs, slug)
	}
	if err := rows.Err(); err != nil {
		return stored, err
	}

	for _, slug := range slugs {
		loc, err := b.BackupBoard(slug)
		if err != nil {
			return stored, err
		}
		stored = append(stored, loc)
	}
	return stored, nil
}

// snapshot runs an online VACUUM INTO a scratch file, ships the bytes to
// the target, and removes the scratch file.
func (b *BackupService) snapshot(db *sql.DB, label string) (string, error) {
	scratchDir, err := os.MkdirTemp("", "sbbs_backup_*")
	if err != nil {
		return "", fmt.Errorf("could not create scratch directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(scratchDir); err != nil {
			b.logger.Warn("Failed to remove backup scratch directory", "path", scratchDir, "error", err)
		}
	}()

	timestamp := time.Now().UTC().Format("2006-01-02_15-04-05")
	name := fmt.Sprintf("sbbs_%s_%s.db", label, timestamp)
	scratchPath := filepath.Join(scratchDir, name)

	b.logger.Info("Starting database backup", "label", label, "scratch", scratchPath)

	if _, err := db.Exec("VACUUM INTO ?", scratchPath); err != nil {
		return "", fmt.Errorf("VACUUM INTO command failed for %s: %w", label, err)
	}

	data, err := os.ReadFile(scratchPath)
	if err != nil {
		return "", fmt.Errorf("could not read backup snapshot: %w", err)
	}

	location, err := b.target.Store(name, data)
	if err != nil {
		return "", fmt.Errorf("could not store backup %s: %w", name, err)
	}
	return location, nil
}
