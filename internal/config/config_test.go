package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, 7*24*time.Hour, cfg.JWTTTL)
	require.Equal(t, 4000, cfg.MaxMessageLength)
	require.Equal(t, "admin", cfg.AdminUsername)
	require.Equal(t, float64(20), cfg.WSEventsPerSecond)
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("PORT", "3000")
	t.Setenv("JWT_TTL", "1h")
	t.Setenv("MAX_MESSAGE_LENGTH", "120")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "3000", cfg.Port)
	require.Equal(t, time.Hour, cfg.JWTTTL)
	require.Equal(t, 120, cfg.MaxMessageLength)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestOrigins(t *testing.T) {
	cfg := &Config{AllowedOrigins: " http://a.lan , ,http://b.lan"}
	require.Equal(t, []string{"http://a.lan", "http://b.lan"}, cfg.Origins())

	require.Nil(t, (&Config{}).Origins())
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "chat", DBPort: "5432", DBSSLMode: "disable"}
	require.Equal(t, "host=db user=u password=p dbname=chat port=5432 sslmode=disable", cfg.DSN())
}
