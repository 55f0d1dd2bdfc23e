// Package auth verifies operator credentials and issues session tokens.
package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/thirukguru/check42/service/repository"
)

// NewService creates a new auth service.
func NewService(settings repository.Settings) Service {
	return &service{settings: settings, newToken: uuid.NewString}
}

// HashPassword returns the hex sha256 digest stored in the settings record.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func (s *service) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", errors.New("username and password are required")
	}
	settings, ok, err := s.settings.Get(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNoSettings
	}

	userOK := equal(settings.Subscriber, username)
	passOK := settings.Password != "" && equal(settings.Password, HashPassword(password))
	if !userOK || !passOK {
		log.Ctx(ctx).Info().Msg("login attempt failed")
		return "", ErrInvalidCredentials
	}

	token := s.newToken()
	if err := s.settings.SetSessionToken(ctx, settings.ID, token); err != nil {
		return "", fmt.Errorf("failed to store session token: %w", err)
	}
	return token, nil
}

func (s *service) Authorize(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	settings, ok, err := s.settings.Get(ctx)
	if err != nil || !ok {
		return false, err
	}
	return settings.SessionToken != "" && equal(settings.SessionToken, token), nil
}

func (s *service) SetPassword(ctx context.Context, password string) error {
	if password == "" {
		return errors.New("password must not be empty")
	}
	settings, ok, err := s.settings.Get(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoSettings
	}
	if err := s.settings.SetPassword(ctx, settings.ID, HashPassword(password)); err != nil {
		return fmt.Errorf("failed to store password: %w", err)
	}
	return nil
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
