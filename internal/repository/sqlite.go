package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mr1hm/go-biodiversity-dashboard/internal/models"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// Every connection to ":memory:" is its own database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			series BLOB NOT NULL,
			range_from INTEGER NOT NULL,
			range_to INTEGER NOT NULL,
			target REAL NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

func (s *SQLiteDB) Add(ctx context.Context, sess *models.Session) error {
	series, err := json.Marshal(sess.Series)
	if err != nil {
		return fmt.Errorf("error encoding series: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, seed, series, range_from, range_to, target, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Seed, series,
		sess.Controls.From, sess.Controls.To, sess.Controls.Target,
		sess.CreatedAt.UnixNano(), sess.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("error inserting session %s: %w", sess.ID, err)
	}
	return nil
}

// GetByID returns nil, nil when no session has the given id.
func (s *SQLiteDB) GetByID(ctx context.Context, id string) (*models.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seed, series, range_from, range_to, target, created_at, updated_at
		FROM sessions WHERE id = ?`, id)

	var (
		sess             models.Session
		series           []byte
		created, updated int64
	)
	err := row.Scan(&sess.ID, &sess.Seed, &series,
		&sess.Controls.From, &sess.Controls.To, &sess.Controls.Target,
		&created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning session %s: %w", id, err)
	}

	if err := json.Unmarshal(series, &sess.Series); err != nil {
		return nil, fmt.Errorf("error decoding series for session %s: %w", id, err)
	}
	sess.CreatedAt = time.Unix(0, created)
	sess.UpdatedAt = time.Unix(0, updated)

	return &sess, nil
}

func (s *SQLiteDB) Update(ctx context.Context, sess *models.Session) error {
	series, err := json.Marshal(sess.Series)
	if err != nil {
		return fmt.Errorf("error encoding series: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions
		SET seed = ?, series = ?, range_from = ?, range_to = ?, target = ?, updated_at = ?
		WHERE id = ?`,
		sess.Seed, series, sess.Controls.From, sess.Controls.To, sess.Controls.Target,
		sess.UpdatedAt.UnixNano(), sess.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating session %s: %w", sess.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("session %s: %w", sess.ID, ErrNotFound)
	}
	return nil
}

func (s *SQLiteDB) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

// DeleteIdleSince removes sessions not updated since cutoff.
func (s *SQLiteDB) DeleteIdleSince(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("error deleting idle sessions: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteDB) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
