package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unset clears key for the duration of the test.
func unset(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoad(t *testing.T) {
	for _, key := range []string{"STORE_BACKEND", "JWT_SECRET", "SMTP_PORT"} {
		unset(t, key)
	}
	cfg := Load()

	assert.NotNil(t, cfg)
	assert.NotEmpty(t, cfg.ListenAddr)
	assert.Equal(t, BackendSQLite, cfg.StoreBackend)
	assert.Equal(t, DevJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.NoError(t, cfg.Validate())
}

func TestLoadCustomValues(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("STORE_BACKEND", "bolt")
	t.Setenv("BOLT_PATH", "/custom/lf.bolt")
	t.Setenv("AUTO_VERIFY_DOMAIN", "campus.edu")
	t.Setenv("SMTP_PORT", "2525")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, BackendBolt, cfg.StoreBackend)
	assert.Equal(t, "/custom/lf.bolt", cfg.BoltPath)
	assert.Equal(t, "campus.edu", cfg.AutoVerifyDomain)
	assert.Equal(t, 2525, cfg.SMTPPort)
}

func TestLoadInvalidPortFallsBack(t *testing.T) {
	t.Setenv("SMTP_PORT", "smtp")
	assert.Equal(t, 587, Load().SMTPPort)
}

func TestValidate(t *testing.T) {
	cfg := Load()
	cfg.StoreBackend = "postgres"
	assert.ErrorContains(t, cfg.Validate(), "STORE_BACKEND")

	cfg = Load()
	cfg.StoreBackend = BackendMemory
	cfg.JWTSecret = ""
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")

	cfg = Load()
	cfg.StoreBackend = BackendMemory
	cfg.SMTPHost = "smtp.university.test"
	cfg.MailFrom = ""
	assert.ErrorContains(t, cfg.Validate(), "MAIL_FROM")
}

func TestLoadDotEnv(t *testing.T) {
	unset(t, "UNIVERSITY_API_URL")
	t.Setenv("LISTEN_ADDR", ":7000")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("UNIVERSITY_API_URL=https://sis.university.test/verify\nLISTEN_ADDR=:1234\n"), 0600))
	t.Cleanup(func() { _ = os.Unsetenv("UNIVERSITY_API_URL") })

	require.NoError(t, LoadDotEnv(path))
	cfg := Load()

	assert.Equal(t, "https://sis.university.test/verify", cfg.UniversityAPIURL)
	assert.Equal(t, ":7000", cfg.ListenAddr, "existing variables are not overridden")
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}
