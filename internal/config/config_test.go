package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.GinMode)
	assert.Equal(t, "TodoAuth", cfg.Session.CookieName)
	assert.Equal(t, time.Hour, cfg.Session.Lifetime)
	assert.Equal(t, 5, cfg.Security.Login.MaxAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Security.Login.Window)
	assert.Equal(t, 10*time.Minute, cfg.Security.Login.LockDuration)
	assert.NotEmpty(t, cfg.Session.Secret, "debug mode should fill a random secret")
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TODO_AUTHENTICATION_DEFAULT_CREDENTIALS_USERNAME", "admin")
	t.Setenv("TODO_AUTHENTICATION_DEFAULT_CREDENTIALS_PASSWORD", "secret")
	t.Setenv("TODO_SESSION_LIFETIME", "30m")
	t.Setenv("PORT", "9090")

	cfg, err := Load("")
	require.NoError(t, err)

	creds, err := cfg.Credentials()
	require.NoError(t, err)
	assert.Equal(t, "admin", creds.Username)
	assert.Equal(t, "secret", creds.Password)
	assert.Equal(t, 30*time.Minute, cfg.Session.Lifetime)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
authentication:
  default_credentials:
    username: alice
    password: wonderland
session:
  secret: file-secret
cors:
  allowed_origins: "http://a.example, http://b.example"
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "alice", cfg.Authentication.DefaultCredentials.Username)
	assert.Equal(t, "file-secret", cfg.Session.Secret)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.AllowedOrigins())
}

func TestValidateReleaseRequiresSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.Server.GinMode = "release"
	cfg.Session.Secret = ""
	require.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Server.GinMode = "release"
	cfg.Authentication.DefaultCredentials = CredentialsConfig{}
	require.ErrorIs(t, cfg.Validate(), ErrCredentialsNotConfigured)

	cfg = validConfig()
	cfg.Server.GinMode = "release"
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "loud"
	require.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Session.Lifetime = 0
	require.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Server.GinMode = "production"
	require.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Server.Port = "70000"
	require.Error(t, cfg.Validate())
}

func TestValidateGeneratesSecretOutsideRelease(t *testing.T) {
	cfg := validConfig()
	cfg.Session.Secret = ""

	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Session.Secret, 64)
	assert.True(t, cfg.Session.SecretGenerated)
}

func TestCredentialsAcceptsHashOnly(t *testing.T) {
	cfg := validConfig()
	cfg.Authentication.DefaultCredentials.Password = ""
	cfg.Authentication.DefaultCredentials.PasswordHash = "$2a$10$abcdefghijklmnopqrstuv"

	creds, err := cfg.Credentials()
	require.NoError(t, err)
	assert.Equal(t, "admin", creds.Username)
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", GinMode: "debug"},
		Authentication: AuthenticationConfig{
			DefaultCredentials: CredentialsConfig{Username: "admin", Password: "secret"},
		},
		Session: SessionConfig{Secret: "s", CookieName: "TodoAuth", Lifetime: time.Hour},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}
