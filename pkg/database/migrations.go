package database

import (
	"database/sql"
	"fmt"
)

// Migration represents a single schema migration step
// ARCHITECTURAL DISCOVERY: Migrations are embedded in the binary rather than
// loaded from a directory so a bare `cloudchat` binary can bootstrap its own
// database; the schema_migrations table still tracks applied versions
type Migration struct {
	Version     string
	Description string
	SQL         string
}

// migrations is the ordered list of schema steps applied at startup
var migrations = []Migration{
	{
		Version:     "001",
		Description: "initial_schema",
		SQL: `
			CREATE TABLE IF NOT EXISTS users (
				id         TEXT PRIMARY KEY,
				email      TEXT NOT NULL UNIQUE,
				password   TEXT NOT NULL,
				name       TEXT NOT NULL DEFAULT '',
				image      TEXT NOT NULL DEFAULT '',
				color      INTEGER NOT NULL DEFAULT 0,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);

			CREATE TABLE IF NOT EXISTS channels (
				id         TEXT PRIMARY KEY,
				name       TEXT NOT NULL,
				admin      TEXT NOT NULL,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);

			CREATE TABLE IF NOT EXISTS channel_members (
				channel_id TEXT NOT NULL REFERENCES channels(id),
				user_id    TEXT NOT NULL,
				PRIMARY KEY (channel_id, user_id)
			);

			CREATE TABLE IF NOT EXISTS messages (
				id            TEXT PRIMARY KEY,
				sender        TEXT NOT NULL,
				recipient     TEXT,
				channel_id    TEXT,
				message_type  TEXT NOT NULL CHECK (message_type IN ('text','file','location','post')),
				content       TEXT NOT NULL DEFAULT '',
				file_url      TEXT NOT NULL DEFAULT '',
				location_lat  REAL,
				location_long REAL,
				post          TEXT,
				timestamp     DATETIME NOT NULL
			);

			CREATE TABLE IF NOT EXISTS channel_messages (
				channel_id TEXT NOT NULL REFERENCES channels(id),
				message_id TEXT NOT NULL REFERENCES messages(id),
				position   INTEGER PRIMARY KEY AUTOINCREMENT
			);

			CREATE INDEX IF NOT EXISTS idx_messages_pair_time ON messages(sender, recipient, timestamp);
			CREATE INDEX IF NOT EXISTS idx_messages_recipient ON messages(recipient);
			CREATE INDEX IF NOT EXISTS idx_channel_messages_channel ON channel_messages(channel_id, position);
			CREATE INDEX IF NOT EXISTS idx_channel_members_user ON channel_members(user_id);
		`,
	},
}

// MigrationManager applies embedded migrations against a database
type MigrationManager struct {
	db *sql.DB
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(db *sql.DB) *MigrationManager {
	return &MigrationManager{db: db}
}

// ApplyMigrations applies all pending migrations in order
// FUNCTIONAL DISCOVERY: Each migration runs in its own transaction so a
// failed step leaves the schema at the previous version, never half-applied
func (m *MigrationManager) ApplyMigrations() error {
	if err := m.createMigrationTable(); err != nil {
		return fmt.Errorf("failed to create migration table: %w", err)
	}

	applied, err := m.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, migration := range migrations {
		if contains(applied, migration.Version) {
			continue
		}
		if err := m.applyMigration(migration); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
		}
	}

	return nil
}

// ValidateSchema ensures the database matches the expected structure
func (m *MigrationManager) ValidateSchema() error {
	requiredTables := []string{"users", "messages", "channels", "channel_members", "channel_messages"}
	for _, table := range requiredTables {
		exists, err := m.tableExists(table)
		if err != nil {
			return fmt.Errorf("failed to check table %s: %w", table, err)
		}
		if !exists {
			return fmt.Errorf("required table %s does not exist", table)
		}
	}
	return nil
}

func (m *MigrationManager) createMigrationTable() error {
	_, err := m.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func (m *MigrationManager) getAppliedMigrations() ([]string, error) {
	rows, err := m.db.Query("SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var versions []string
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		versions = append(versions, version)
	}

	return versions, rows.Err()
}

func (m *MigrationManager) applyMigration(migration Migration) error {
	tx, err := m.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(migration.SQL); err != nil {
		return err
	}

	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", migration.Version); err != nil {
		return err
	}

	return tx.Commit()
}

func (m *MigrationManager) tableExists(tableName string) (bool, error) {
	var count int
	err := m.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?",
		tableName,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
