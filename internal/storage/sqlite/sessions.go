package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mmynk/invoicer/internal/models"
)

// LoadSession returns the saved session, or nil when signed out.
func (s *SQLiteStore) LoadSession(ctx context.Context) (*models.Session, error) {
	var (
		token     string
		userJSON  string
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT token, user_json, created_at FROM sessions WHERE id = 1",
	).Scan(&token, &userJSON, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	sess := &models.Session{Token: token, CreatedAt: time.Unix(createdAt, 0).UTC()}
	if err := json.Unmarshal([]byte(userJSON), &sess.User); err != nil {
		return nil, fmt.Errorf("failed to decode session user: %w", err)
	}
	return sess, nil
}

// SaveSession replaces the saved session.
func (s *SQLiteStore) SaveSession(ctx context.Context, sess *models.Session) error {
	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("failed to encode session user: %w", err)
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = s.now().UTC().Truncate(time.Second)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, token, user_json, created_at) VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET token = excluded.token, user_json = excluded.user_json, created_at = excluded.created_at`,
		sess.Token, string(userJSON), sess.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// ClearSession removes the saved session.
func (s *SQLiteStore) ClearSession(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions"); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
