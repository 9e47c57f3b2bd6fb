package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	// ARCHITECTURAL DISCOVERY: Import SQLite driver but only reference in connection string
	_ "github.com/mattn/go-sqlite3"

	dbconfig "github.com/Muthu-kesavan/Cloud-Chat-v2/pkg/database"
	"github.com/Muthu-kesavan/Cloud-Chat-v2/pkg/interfaces"
	"github.com/Muthu-kesavan/Cloud-Chat-v2/pkg/types"
)

// Manager implements the interfaces.Store interface over SQLite
type Manager struct {
	db           *sql.DB
	config       *dbconfig.Config
	writeChannel chan writeOperation // TECHNICAL: Single-writer pattern for SQLite
	shutdown     chan struct{}
	wg           sync.WaitGroup
	closed       bool
	mu           sync.RWMutex // TECHNICAL: Protect closed status
}

// writeOperation represents a queued database write
type writeOperation struct {
	operation func(*sql.DB) error
	result    chan error
}

// NewManager opens the database, applies migrations and starts the writer loop
func NewManager(config *dbconfig.Config) (*Manager, error) {
	db, err := sql.Open("sqlite3", config.DatabasePath+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// FUNCTIONAL DISCOVERY: Connection pool configuration critical for concurrent reads
	db.SetMaxOpenConns(config.MaxConnections)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	if err := applySQLiteOptimizations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply SQLite optimizations: %w", err)
	}

	if err := dbconfig.NewMigrationManager(db).ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	manager := &Manager{
		db:           db,
		config:       config,
		writeChannel: make(chan writeOperation, 100),
		shutdown:     make(chan struct{}),
	}

	// ARCHITECTURAL DISCOVERY: Single-writer goroutine prevents SQLite write contention
	manager.wg.Add(1)
	go manager.writeLoop()

	return manager, nil
}

// writeLoop processes all write operations in a single goroutine
func (m *Manager) writeLoop() {
	defer m.wg.Done()

	for {
		select {
		case op := <-m.writeChannel:
			// FUNCTIONAL DISCOVERY: Retry exactly once after a short backoff -
			// transient SQLITE_BUSY errors clear quickly under WAL
			err := op.operation(m.db)
			if err != nil {
				log.Printf("Database write failed, retrying: %v", err)
				time.Sleep(250 * time.Millisecond)
				err = op.operation(m.db)
				if err != nil {
					log.Printf("Database write failed after retry: %v", err)
				}
			}
			op.result <- err

		case <-m.shutdown:
			return
		}
	}
}

// executeWrite queues a write operation and waits for completion
func (m *Manager) executeWrite(operation func(*sql.DB) error) error {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return fmt.Errorf("database manager is closed")
	}
	m.mu.RUnlock()

	result := make(chan error, 1)

	select {
	case m.writeChannel <- writeOperation{operation: operation, result: result}:
		return <-result
	case <-time.After(30 * time.Second):
		return fmt.Errorf("write operation timeout")
	case <-m.shutdown:
		return fmt.Errorf("database manager is shutting down")
	}
}

// CreateUser persists a new account
func (m *Manager) CreateUser(ctx context.Context, user *types.User) error {
	return m.executeWrite(func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO users (id, email, password, name, image, color, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, user.ID, user.Email, user.Password, user.Name, user.Image, user.Color, user.Created)
		if err != nil {
			// TECHNICAL DISCOVERY: go-sqlite3 reports unique violations in the
			// error text; surface the typed sentinel for the API layer
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return interfaces.ErrDuplicateEmail
			}
			return fmt.Errorf("failed to insert user: %w", err)
		}
		return nil
	})
}

// GetUserByEmail retrieves an account for login
func (m *Manager) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	return m.scanUser(m.db.QueryRowContext(ctx, `
		SELECT id, email, password, name, image, color, created_at
		FROM users WHERE email = ?
	`, email))
}

// GetUserByID retrieves an account by id
func (m *Manager) GetUserByID(ctx context.Context, userID string) (*types.User, error) {
	return m.scanUser(m.db.QueryRowContext(ctx, `
		SELECT id, email, password, name, image, color, created_at
		FROM users WHERE id = ?
	`, userID))
}

func (m *Manager) scanUser(row *sql.Row) (*types.User, error) {
	var user types.User
	err := row.Scan(&user.ID, &user.Email, &user.Password, &user.Name, &user.Image, &user.Color, &user.Created)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, interfaces.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

// CreateMessage persists a message record
// FUNCTIONAL DISCOVERY: Exactly-one-payload is validated by the fanout engine
// before this call; storage maps the populated payload onto its columns
func (m *Manager) CreateMessage(ctx context.Context, message *types.Message) error {
	return m.executeWrite(func(db *sql.DB) error {
		var lat, long sql.NullFloat64
		if message.Location != nil {
			lat = sql.NullFloat64{Float64: message.Location.Lat, Valid: true}
			long = sql.NullFloat64{Float64: message.Location.Long, Valid: true}
		}

		var post sql.NullString
		if message.Post != nil {
			// TECHNICAL DISCOVERY: Post summary serialized as JSON keeps the
			// embedded-post shape flexible without extra columns
			data, err := json.Marshal(message.Post)
			if err != nil {
				return fmt.Errorf("failed to marshal post payload: %w", err)
			}
			post = sql.NullString{String: string(data), Valid: true}
		}

		_, err := db.ExecContext(ctx, `
			INSERT INTO messages (id, sender, recipient, channel_id, message_type,
				content, file_url, location_lat, location_long, post, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, message.ID, message.SenderID, message.RecipientID, message.ChannelID,
			message.Kind, message.Content, message.FileURL, lat, long, post, message.Timestamp)
		if err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
		return nil
	})
}

// GetMessage retrieves the raw persisted record
func (m *Manager) GetMessage(ctx context.Context, messageID string) (*types.Message, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT id, sender, recipient, channel_id, message_type,
			content, file_url, location_lat, location_long, post, timestamp
		FROM messages WHERE id = ?
	`, messageID)

	message, err := scanMessage(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, interfaces.ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to query message: %w", err)
	}
	return message, nil
}

// GetMessageData retrieves a message joined with sender/recipient display
// fields. The denormalized join happens here, at fanout time, because the
// live push needs display-ready data immediately.
func (m *Manager) GetMessageData(ctx context.Context, messageID string) (*types.MessageData, error) {
	row := m.db.QueryRowContext(ctx, messageDataSelect+" WHERE m.id = ?", messageID)

	data, err := scanMessageData(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, interfaces.ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to query message data: %w", err)
	}
	return data, nil
}

// DeleteMessage removes a message and returns the deleted record
func (m *Manager) DeleteMessage(ctx context.Context, messageID string) (*types.Message, error) {
	var deleted *types.Message
	err := m.executeWrite(func(db *sql.DB) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		row := tx.QueryRowContext(ctx, `
			SELECT id, sender, recipient, channel_id, message_type,
				content, file_url, location_lat, location_long, post, timestamp
			FROM messages WHERE id = ?
		`, messageID)

		message, err := scanMessage(row)
		if err != nil {
			if err == sql.ErrNoRows {
				return interfaces.ErrMessageNotFound
			}
			return fmt.Errorf("failed to query message: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM channel_messages WHERE message_id = ?", messageID); err != nil {
			return fmt.Errorf("failed to unlink channel message: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE id = ?", messageID); err != nil {
			return fmt.Errorf("failed to delete message: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit message deletion: %w", err)
		}

		deleted = message
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// GetMessagesBetween returns the DM history between two users, oldest first
func (m *Manager) GetMessagesBetween(ctx context.Context, userA, userB string) ([]*types.MessageData, error) {
	rows, err := m.db.QueryContext(ctx, messageDataSelect+`
		WHERE (m.sender = ? AND m.recipient = ?) OR (m.sender = ? AND m.recipient = ?)
		ORDER BY m.timestamp ASC
	`, userA, userB, userB, userA)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectMessageData(rows)
}

// CreateChannel persists a channel, its admin and member list atomically
func (m *Manager) CreateChannel(ctx context.Context, channel *types.Channel) error {
	return m.executeWrite(func(db *sql.DB) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		_, err = tx.ExecContext(ctx, `
			INSERT INTO channels (id, name, admin, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
		`, channel.ID, channel.Name, channel.AdminID, channel.CreatedAt, channel.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert channel: %w", err)
		}

		for _, memberID := range channel.MemberIDs {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO channel_members (channel_id, user_id) VALUES (?, ?)
			`, channel.ID, memberID)
			if err != nil {
				return fmt.Errorf("failed to insert channel member: %w", err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit channel creation: %w", err)
		}
		return nil
	})
}

// GetChannel retrieves a channel with its full member list
func (m *Manager) GetChannel(ctx context.Context, channelID string) (*types.Channel, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT id, name, admin, created_at, updated_at
		FROM channels WHERE id = ?
	`, channelID)

	var channel types.Channel
	err := row.Scan(&channel.ID, &channel.Name, &channel.AdminID, &channel.CreatedAt, &channel.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, interfaces.ErrChannelNotFound
		}
		return nil, fmt.Errorf("failed to query channel: %w", err)
	}

	rows, err := m.db.QueryContext(ctx, `
		SELECT user_id FROM channel_members WHERE channel_id = ?
	`, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to query channel members: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var memberID string
		if err := rows.Scan(&memberID); err != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", err)
		}
		channel.MemberIDs = append(channel.MemberIDs, memberID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member rows: %w", err)
	}

	return &channel, nil
}

// AppendChannelMessage appends a message id to the channel's ordered list
// FUNCTIONAL DISCOVERY: Channel existence checked inside the same transaction
// so a missing channel surfaces as ErrChannelNotFound, not a dangling link row
func (m *Manager) AppendChannelMessage(ctx context.Context, channelID, messageID string) error {
	return m.executeWrite(func(db *sql.DB) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		var count int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM channels WHERE id = ?", channelID).Scan(&count); err != nil {
			return fmt.Errorf("failed to check channel: %w", err)
		}
		if count == 0 {
			return interfaces.ErrChannelNotFound
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO channel_messages (channel_id, message_id) VALUES (?, ?)
		`, channelID, messageID); err != nil {
			return fmt.Errorf("failed to append channel message: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE channels SET updated_at = ? WHERE id = ?
		`, time.Now().UTC(), channelID); err != nil {
			return fmt.Errorf("failed to touch channel: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit channel append: %w", err)
		}
		return nil
	})
}

// GetUserChannels returns channels the user administers or belongs to
func (m *Manager) GetUserChannels(ctx context.Context, userID string) ([]*types.Channel, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT DISTINCT c.id, c.name, c.admin, c.created_at, c.updated_at
		FROM channels c
		LEFT JOIN channel_members cm ON cm.channel_id = c.id
		WHERE c.admin = ? OR cm.user_id = ?
		ORDER BY c.updated_at DESC
	`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user channels: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var channels []*types.Channel
	for rows.Next() {
		var channel types.Channel
		if err := rows.Scan(&channel.ID, &channel.Name, &channel.AdminID, &channel.CreatedAt, &channel.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan channel row: %w", err)
		}
		channels = append(channels, &channel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating channel rows: %w", err)
	}

	return channels, nil
}

// GetChannelMessages returns the channel's messages in append order
func (m *Manager) GetChannelMessages(ctx context.Context, channelID string) ([]*types.MessageData, error) {
	rows, err := m.db.QueryContext(ctx, messageDataSelect+`
		JOIN channel_messages cm ON cm.message_id = m.id
		WHERE cm.channel_id = ?
		ORDER BY cm.position ASC
	`, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to query channel messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectMessageData(rows)
}

// HealthCheck validates database connectivity
func (m *Manager) HealthCheck(ctx context.Context) error {
	if err := m.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if _, err := m.db.QueryContext(ctx, "SELECT COUNT(*) FROM users LIMIT 1"); err != nil {
		return fmt.Errorf("database read test failed: %w", err)
	}

	return nil
}

// GetDB returns the underlying database connection
func (m *Manager) GetDB() *sql.DB {
	return m.db
}

// Close shuts down the database manager
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil // Already closed
	}
	m.closed = true
	m.mu.Unlock()

	// ARCHITECTURAL DISCOVERY: Graceful shutdown requires careful goroutine coordination
	close(m.shutdown)
	m.wg.Wait()

	if err := m.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// applySQLiteOptimizations applies performance pragmas
func applySQLiteOptimizations(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",   // Write-Ahead Logging for concurrency
		"PRAGMA synchronous = NORMAL", // Balance safety and performance
		"PRAGMA temp_store = MEMORY",  // Use memory for temporary tables
		"PRAGMA foreign_keys = ON",    // Ensure referential integrity
		"PRAGMA busy_timeout = 5000",  // Write coordination timeout
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute pragma %s: %w", pragma, err)
		}
	}

	return nil
}
