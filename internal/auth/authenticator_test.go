package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/todo-gate/internal/config"
)

type countingSource struct {
	creds config.CredentialsConfig
	err   error
	calls int
}

func (s *countingSource) Credentials() (config.CredentialsConfig, error) {
	s.calls++
	return s.creds, s.err
}

func TestAuthenticateMissingFieldsNeverConsultsSource(t *testing.T) {
	src := &countingSource{creds: config.CredentialsConfig{Username: "admin", Password: "secret"}}
	a := NewAuthenticator(src)

	for _, tc := range []struct{ user, pass string }{{"", ""}, {"x", ""}, {"", "secret"}} {
		err := a.Authenticate(tc.user, tc.pass)
		require.ErrorIs(t, err, ErrMissingCredentials)
	}
	assert.Zero(t, src.calls)
}

func TestAuthenticatePlaintext(t *testing.T) {
	src := &countingSource{creds: config.CredentialsConfig{Username: "admin", Password: "secret"}}
	a := NewAuthenticator(src)

	require.NoError(t, a.Authenticate("admin", "secret"))

	cases := []struct{ user, pass string }{
		{"admin", "wrong"},
		{"Admin", "secret"},
		{"other", "secret"},
		{"admin", "SECRET"},
		{"admin", "secret "},
	}
	for _, tc := range cases {
		err := a.Authenticate(tc.user, tc.pass)
		require.ErrorIs(t, err, ErrInvalidCredentials, "%q/%q", tc.user, tc.pass)
		assert.Equal(t, ErrInvalidCredentials.Message, messageFor(err))
	}
}

func TestAuthenticateBcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	src := &countingSource{creds: config.CredentialsConfig{Username: "admin", Password: "ignored", PasswordHash: string(hash)}}
	a := NewAuthenticator(src)

	require.NoError(t, a.Authenticate("admin", "secret"))
	require.ErrorIs(t, a.Authenticate("admin", "ignored"), ErrInvalidCredentials)
}

func TestAuthenticateNotConfigured(t *testing.T) {
	src := &countingSource{err: config.ErrCredentialsNotConfigured}
	a := NewAuthenticator(src)

	err := a.Authenticate("admin", "secret")
	require.ErrorIs(t, err, ErrNotConfigured)
	assert.True(t, errors.Is(err, config.ErrCredentialsNotConfigured))
	assert.Equal(t, 1, src.calls)
}
