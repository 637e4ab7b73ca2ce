package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/comment-watcher/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode so manual inspection can read alongside the watcher.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// ExistsComment reports whether a comment with the given ID is stored.
func (s *SQLiteStore) ExistsComment(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM comments WHERE id = ?)", id,
	)
	if err != nil {
		return false, fmt.Errorf("checking comment %s: %w", id, err)
	}
	return exists, nil
}

// InsertComment records a comment. The INSERT OR IGNORE makes re-insertion
// of an existing ID a no-op, so the same comment observed twice within or
// across runs is stored exactly once and never rewritten.
func (s *SQLiteStore) InsertComment(ctx context.Context, c model.Comment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO comments (
			id, account_id, claim_id, claim_name,
			commenter_id, commenter_name, commenter_url,
			comment, is_hidden, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.AccountID, c.ClaimID, c.ClaimName,
		c.CommenterID, c.CommenterName, c.CommenterURL,
		c.Body, boolToInt(c.IsHidden), c.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting comment %s: %w", c.ID, err)
	}
	return nil
}

// GetCommentByID retrieves a single stored comment by its ID.
func (s *SQLiteStore) GetCommentByID(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	err := s.db.GetContext(ctx, &c, "SELECT * FROM comments WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("comment %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting comment %s: %w", id, err)
	}
	return &c, nil
}

// CountComments returns the total number of stored comments.
func (s *SQLiteStore) CountComments(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM comments")
	if err != nil {
		return 0, fmt.Errorf("counting comments: %w", err)
	}
	return count, nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
