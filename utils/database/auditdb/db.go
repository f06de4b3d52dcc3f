package auditdb

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Init initializes the audit database and ensures all necessary tables are created.
func Init(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to audit database: %w", err)
	}

	punishmentsSchema := `CREATE TABLE IF NOT EXISTS punishments (
	          punishment_id TEXT PRIMARY KEY,
	          kind TEXT NOT NULL,
	          user_id TEXT NOT NULL,
	          user_username TEXT NOT NULL,
	          admin_id TEXT NOT NULL,
	          reason TEXT NOT NULL,
	          source_guild_id TEXT NOT NULL,
	          evidence TEXT,
	          duration_sec INTEGER DEFAULT 0,
	          expires_at INTEGER DEFAULT 0,
	          status TEXT DEFAULT 'active',
	          timestamp INTEGER NOT NULL
	      );`
	if _, err := db.Exec(punishmentsSchema); err != nil {
		return nil, fmt.Errorf("failed to create punishments table: %w", err)
	}

	resolutionsSchema := `CREATE TABLE IF NOT EXISTS punishment_resolutions (
	          id INTEGER PRIMARY KEY AUTOINCREMENT,
	          punishment_id TEXT NOT NULL,
	          target_guild_id TEXT NOT NULL,
	          event TEXT NOT NULL,
	          actor_id TEXT NOT NULL,
	          detail TEXT DEFAULT '',
	          timestamp INTEGER NOT NULL
	      );`
	if _, err := db.Exec(resolutionsSchema); err != nil {
		return nil, fmt.Errorf("failed to create punishment_resolutions table: %w", err)
	}

	confirmationsSchema := `CREATE TABLE IF NOT EXISTS pending_confirmations (
	          punishment_id TEXT NOT NULL,
	          target_guild_id TEXT NOT NULL,
	          state TEXT NOT NULL DEFAULT 'pending',
	          requested_at INTEGER NOT NULL,
	          expires_at INTEGER NOT NULL,
	          responded_by TEXT DEFAULT '',
	          PRIMARY KEY (punishment_id, target_guild_id)
	      );`
	if _, err := db.Exec(confirmationsSchema); err != nil {
		return nil, fmt.Errorf("failed to create pending_confirmations table: %w", err)
	}

	return db, nil
}
