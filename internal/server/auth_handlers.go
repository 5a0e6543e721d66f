package server

import (
	"fmt"
	"net/http"

	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/middleware"
	"github.com/mmynk/invoicer/internal/models"
)

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var input models.LoginInput
	if err := decode(w, r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := models.Validate(input); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.authenticator.Authenticate(r.Context(), input.Email, input.Password)
	if err != nil {
		s.logger.Warn("Login failed", "email", input.Email, "error", err)
		s.writeError(w, r, err)
		return
	}

	s.issueToken(w, r, http.StatusOK, user, "Login successful")
	s.logger.Info("User logged in successfully", "user_id", user.ID, "email", user.Email)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var input models.RegisterInput
	if err := decode(w, r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := models.Validate(input); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.authenticator.Register(r.Context(), input.Email, input.Name, input.Phone, input.Password)
	if err != nil {
		s.logger.Warn("Registration failed", "email", input.Email, "error", err)
		s.writeError(w, r, err)
		return
	}

	s.issueToken(w, r, http.StatusCreated, user, "Registration successful")
	s.logger.Info("User registered successfully", "user_id", user.ID, "email", user.Email)
}

func (s *Server) issueToken(w http.ResponseWriter, r *http.Request, status int, user *models.User, msg string) {
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("failed to generate token: %w", err))
		return
	}
	s.writeJSON(w, status, envelope{Success: true, Message: msg, Token: token, User: user})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	user, err := s.store.GetUserByID(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if user == nil {
		s.writeError(w, r, fmt.Errorf("user %s: %w", userID, apperr.ErrNotFound))
		return
	}
	s.writeData(w, http.StatusOK, user)
}

// creator is the reference stamped on records created by the caller.
func creator(r *http.Request) models.CreatorRef {
	return models.CreatorRef{
		ID:   middleware.GetUserID(r.Context()),
		Name: middleware.GetName(r.Context()),
	}
}
