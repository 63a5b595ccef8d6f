package services

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService guards the admin dashboard with a single configured password.
// There is no user table; session state carries the admin flag.
type AuthService struct {
	log          *slog.Logger
	passwordHash string
}

func NewAuthService(log *slog.Logger, passwordHash string) *AuthService {
	return &AuthService{log: log, passwordHash: passwordHash}
}

// Login checks the dashboard password against the configured bcrypt hash.
func (s *AuthService) Login(_ context.Context, password string) error {
	const op = "auth_service.Login"

	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		s.log.Warn("admin login rejected", slog.String("op", op))
		return ErrInvalidCredentials
	}

	s.log.Info("admin logged in", slog.String("op", op))
	return nil
}
