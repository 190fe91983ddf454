// sbbs/database/migrations.go
package database

import (
	"database/sql"
	"fmt"
	"strings"
)

// ensureColumnExists retrofits a column onto databases created before the
// column was part of the base schema. Returns true when the column was
// already present. Never destroys data.
func ensureColumnExists(db *sql.DB, table, column, definition string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return false, fmt.Errorf("could not inspect table %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			dfltValue  sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dfltValue, &primaryKey); err != nil {
			return false, fmt.Errorf("could not scan table info for %s: %w", table, err)
		}
		if strings.EqualFold(name, column) {
			return true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return false, err
	}

	if _, err := db.Exec(fmt.Sprintf("ALTER TABLE %q ADD COLUMN %q %s", table, column, definition)); err != nil {
		return false, fmt.Errorf("could not add column %s.%s: %w", table, column, err)
	}
	return false, nil
}

// migrateSystemSchema brings an already-created system database up to date.
// Older layouts lacked boards.updated_at; the value is backfilled from
// created_at so ordering by activity keeps working.
func migrateSystemSchema(db *sql.DB) error {
	if _, err := ensureColumnExists(db, "boards", "updated_at", "DATETIME"); err != nil {
		return err
	}
	if _, err := db.Exec("UPDATE boards SET updated_at = created_at WHERE updated_at IS NULL OR updated_at = ''"); err != nil {
		return fmt.Errorf("could not backfill boards.updated_at: %w", err)
	}
	return nil
}

// migrateBoardSchema does the same for a board database's threads table.
func migrateBoardSchema(db *sql.DB) error {
	if _, err := ensureColumnExists(db, "threads", "updated_at", "DATETIME"); err != nil {
		return err
	}
	if _, err := db.Exec("UPDATE threads SET updated_at = created_at WHERE updated_at IS NULL OR updated_at = ''"); err != nil {
		return fmt.Errorf("could not backfill threads.updated_at: %w", err)
	}
	return nil
}
