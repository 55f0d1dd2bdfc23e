package auth

import (
	"context"
	"errors"

	"github.com/thirukguru/check42/service/repository"
)

var (
	// ErrInvalidCredentials is returned when the username or password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoSettings is returned when the installation has no settings record.
	ErrNoSettings = errors.New("no settings configured")
)

type service struct {
	settings repository.Settings
	newToken func() string
}

// Service authenticates the operator against the settings record.
type Service interface {
	Login(ctx context.Context, username, password string) (string, error)
	Authorize(ctx context.Context, token string) (bool, error)
	SetPassword(ctx context.Context, password string) error
}
