package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thirukguru/check42/model"
)

type fakeSettings struct {
	s     model.AccountSettings
	found bool
	err   error
}

func (f *fakeSettings) Get(context.Context) (model.AccountSettings, bool, error) {
	return f.s, f.found, f.err
}

func (f *fakeSettings) Put(_ context.Context, s model.AccountSettings) error {
	f.s, f.found = s, true
	return nil
}

func (f *fakeSettings) SetSessionToken(_ context.Context, id, token string) error {
	if id != f.s.ID {
		return errors.New("wrong id")
	}
	f.s.SessionToken = token
	return nil
}

func (f *fakeSettings) SetPassword(_ context.Context, id, hash string) error {
	if id != f.s.ID {
		return errors.New("wrong id")
	}
	f.s.Password = hash
	return nil
}

func newStore() *fakeSettings {
	return &fakeSettings{found: true, s: model.AccountSettings{
		ID:         "0b7f3a52-9d51-4c1e-8f3a-2a6c1f0e9d11",
		Subscriber: "ops@example.com",
		Password:   HashPassword("s3cret"),
	}}
}

func TestHashPassword(t *testing.T) {
	assert.Equal(t, "2bb80d537b1da3e38bd30361aa855686bde0eacd7162fef6a25fe97bf527a25b", HashPassword("secret"))
}

func TestLogin(t *testing.T) {
	store := newStore()
	svc := &service{settings: store, newToken: func() string { return "token-1" }}

	token, err := svc.Login(context.Background(), "ops@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)
	assert.Equal(t, "token-1", store.s.SessionToken)

	ok, err := svc.Authorize(context.Background(), "token-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Authorize(context.Background(), "token-2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoginRejects(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{name: "wrong password", username: "ops@example.com", password: "nope", want: ErrInvalidCredentials},
		{name: "wrong user", username: "admin@example.com", password: "s3cret", want: ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore()
			_, err := NewService(store).Login(context.Background(), tt.username, tt.password)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, store.s.SessionToken)
		})
	}

	_, err := NewService(newStore()).Login(context.Background(), "", "")
	assert.Error(t, err)

	_, err = NewService(&fakeSettings{}).Login(context.Background(), "ops@example.com", "s3cret")
	assert.ErrorIs(t, err, ErrNoSettings)
}

func TestSetPassword(t *testing.T) {
	store := newStore()
	svc := NewService(store)
	require.NoError(t, svc.SetPassword(context.Background(), "rotated"))
	assert.Equal(t, HashPassword("rotated"), store.s.Password)

	_, err := svc.Login(context.Background(), "ops@example.com", "rotated")
	assert.NoError(t, err)

	assert.Error(t, svc.SetPassword(context.Background(), ""))
	assert.ErrorIs(t, NewService(&fakeSettings{}).SetPassword(context.Background(), "x"), ErrNoSettings)
}

func TestAuthorizeWithoutToken(t *testing.T) {
	ok, err := NewService(newStore()).Authorize(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
}
