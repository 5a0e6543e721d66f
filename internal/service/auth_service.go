package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/client"
	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/internal/session"
)

// AuthTransport is the part of the transport client the sign-in flow uses.
type AuthTransport interface {
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
	Me(ctx context.Context) (*models.User, error)
}

var _ AuthTransport = (*client.Client)(nil)

// AuthService signs the user in and out and keeps the session store current.
type AuthService struct {
	transport AuthTransport
	sessions  session.Store
	logger    *slog.Logger
	now       func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(transport AuthTransport, sessions session.Store, logger *slog.Logger) *AuthService {
	return &AuthService{
		transport: transport,
		sessions:  sessions,
		logger:    logger,
		now:       time.Now,
	}
}

// Login checks the credentials locally, exchanges them for a token and saves
// the resulting session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	if err := models.Validate(models.LoginInput{Email: email, Password: password}); err != nil {
		return nil, err
	}

	s.logger.Info("Login request", "email", email)
	result, err := s.transport.Login(ctx, email, password)
	if err != nil {
		s.logger.Warn("Login failed", "email", email, "error", err)
		return nil, fmt.Errorf("failed to log in: %w", err)
	}

	sess := &models.Session{
		Token:     result.Token,
		User:      result.User,
		CreatedAt: s.now(),
	}
	if err := s.sessions.SaveSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.Info("User logged in successfully", "user_id", sess.User.ID, "email", sess.User.Email)
	return sess, nil
}

// Logout discards the saved session. Tokens are stateless, so nothing is sent
// to the server.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.sessions.ClearSession(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.logger.Info("Logged out")
	return nil
}

// CurrentUser returns the cached profile of the signed-in user.
func (s *AuthService) CurrentUser(ctx context.Context) (*models.User, error) {
	sess, err := s.sessions.LoadSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if sess == nil || sess.Token == "" {
		return nil, apperr.ErrUnauthenticated
	}
	user := sess.User
	return &user, nil
}

// Verify asks the server who the token belongs to and refreshes the cached
// profile. An expired or revoked token yields apperr.ErrUnauthenticated.
func (s *AuthService) Verify(ctx context.Context) (*models.User, error) {
	sess, err := s.sessions.LoadSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if sess == nil {
		return nil, apperr.ErrUnauthenticated
	}

	user, err := s.transport.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to verify session: %w", err)
	}

	sess.User = *user
	if err := s.sessions.SaveSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return user, nil
}
