// Package session persists the signed-in user's token between launches and
// hands it to the transport client.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/auth"
	"github.com/mmynk/invoicer/internal/models"
)

// Store defines durable storage for the single active session.
type Store interface {
	// LoadSession returns the saved session, or nil and no error when there is none.
	LoadSession(ctx context.Context) (*models.Session, error)

	// SaveSession replaces the saved session.
	SaveSession(ctx context.Context, s *models.Session) error

	// ClearSession removes the saved session. Clearing an empty store is not an error.
	ClearSession(ctx context.Context) error
}

// TokenSource adapts a Store to the transport client's token lookup.
type TokenSource struct {
	store Store
	now   func() time.Time
}

// NewTokenSource creates a TokenSource reading from store.
func NewTokenSource(store Store) *TokenSource {
	return &TokenSource{store: store, now: time.Now}
}

// Token returns the bearer token to send. It returns apperr.ErrUnauthenticated
// when there is no session, the token is empty, or the token has visibly expired.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	s, err := ts.store.LoadSession(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	if s == nil || s.Token == "" {
		return "", apperr.ErrUnauthenticated
	}
	if auth.TokenExpired(s.Token, ts.now()) {
		return "", fmt.Errorf("session token expired: %w", apperr.ErrUnauthenticated)
	}
	return s.Token, nil
}

// Memory is an in-process Store. Nothing survives a restart.
type Memory struct {
	mu      sync.Mutex
	session *models.Session
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) LoadSession(_ context.Context) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, nil
	}
	cp := *m.session
	return &cp, nil
}

func (m *Memory) SaveSession(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.session = &cp
	return nil
}

func (m *Memory) ClearSession(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}
