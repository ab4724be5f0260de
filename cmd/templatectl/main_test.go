package main

import (
	"bytes"
	"strings"
	"testing"

	"template-backend/infrastructure/config"
	"template-backend/pkg/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		AppName:            "template",
		DataDir:            t.TempDir(),
		BuildVariant:       config.BuildVariantDebug,
		DatabaseURL:        "postgres://localhost/main",
		PreferencesBackend: config.PreferencesBackendFile,
		AWSRegion:          "us-west-2",
		LogLevel:           "error",
		JWTSecret:          "s3cret",
		JWTIssuer:          "template-backend",
	}
}

func run(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	c := &cli{out: out, loadConfig: func() (*config.Config, error) { return cfg, nil }}
	root := newRootCmd(c)
	root.SetArgs(args)
	root.SetErr(&bytes.Buffer{})
	err := root.Execute()
	return out.String(), err
}

func TestPrefsCommands(t *testing.T) {
	cfg := testConfig(t)

	_, err := run(t, cfg, "prefs", "set", "theme", "dark")
	require.NoError(t, err)
	_, err = run(t, cfg, "prefs", "set", "locale", "en")
	require.NoError(t, err)

	out, err := run(t, cfg, "prefs", "get", "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark\n", out)

	out, err = run(t, cfg, "prefs", "list")
	require.NoError(t, err)
	assert.Equal(t, "locale=en\ntheme=dark\n", out)

	_, err = run(t, cfg, "prefs", "get", "missing")
	assert.Error(t, err)
}

func TestTokenCommand(t *testing.T) {
	cfg := testConfig(t)

	out, err := run(t, cfg, "token", "user-1", "--role", "admin")
	require.NoError(t, err)

	validator, err := auth.NewJWTValidator(auth.JWTConfig{SecretKey: cfg.JWTSecret, Issuer: cfg.JWTIssuer})
	require.NoError(t, err)
	claims, err := validator.ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, []string{"admin"}, claims.Roles)

	cfg.JWTSecret = ""
	_, err = run(t, cfg, "token", "user-1")
	assert.Error(t, err)
}
