// Package store persists guild → (channel, model) bindings in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"lexol/internal/domain"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements domain.BindingStore using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	// Set connection pool (single connection for SQLite)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db, logger: logger}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS bindings (
		guild_id    TEXT PRIMARY KEY,
		channel_id  TEXT NOT NULL,
		model       TEXT NOT NULL,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_bindings_channel ON bindings(channel_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Get(ctx context.Context, guildID string) (*domain.Binding, error) {
	var b domain.Binding
	var model string
	err := s.db.QueryRowContext(ctx,
		`SELECT guild_id, channel_id, model, created_at FROM bindings WHERE guild_id = ?`, guildID,
	).Scan(&b.GuildID, &b.ChannelID, &model, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b.Model = domain.Model(model)
	return &b, nil
}

// Create inserts the binding. INSERT OR IGNORE plus a RowsAffected check
// makes the existence test and the insert one atomic statement, so two
// concurrent setups cannot both succeed.
func (s *SQLiteStore) Create(ctx context.Context, b domain.Binding) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO bindings (guild_id, channel_id, model, created_at) VALUES (?, ?, ?, ?)`,
		b.GuildID, b.ChannelID, string(b.Model), b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert binding: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert binding: %w", err)
	}
	if n == 0 {
		return domain.ErrAlreadyBound
	}
	s.logger.Info("binding created", "guild", b.GuildID, "channel", b.ChannelID, "model", b.Model)
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, guildID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM bindings WHERE guild_id = ?`, guildID)
	if err != nil {
		return fmt.Errorf("delete binding: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
