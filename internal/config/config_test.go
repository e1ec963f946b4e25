package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "GIN_MODE", "SESSION_SECRET", "SESSION_MAX_AGE_SECONDS", "BCRYPT_COST",
		"SEED_DEMO_USERS", "ADMIN_USERNAME", "ADMIN_EMAIL", "ADMIN_PASSWORD_HASH",
		"CORS_ALLOWED_ORIGINS", "LOG_LEVEL", "PPROF_ADDR", "METRICS_ENABLED",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "debug", cfg.GinMode)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, defaultSessionMaxAge, cfg.SessionMaxAgeSeconds)
	assert.True(t, cfg.SeedDemoUsers)
	assert.True(t, cfg.MetricsEnabled)
	assert.False(t, cfg.HasAdmin())
	assert.Empty(t, cfg.AllowedOrigins())
}

func TestLoadReleaseRequiresSecret(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestLoadReleaseDisablesDemoUsers(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("SEED_DEMO_USERS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.SeedDemoUsers)
}

func TestValidate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("admin-password"), bcrypt.MinCost)
	require.NoError(t, err)

	valid := func() *Config {
		return &Config{
			Port:                 "3000",
			GinMode:              "debug",
			SessionMaxAgeSeconds: 60,
			BcryptCost:           bcrypt.MinCost,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{
			name:    "cost too low",
			mutate:  func(c *Config) { c.BcryptCost = 1 },
			wantErr: "BCRYPT_COST",
		},
		{
			name:    "cost too high",
			mutate:  func(c *Config) { c.BcryptCost = bcrypt.MaxCost + 1 },
			wantErr: "BCRYPT_COST",
		},
		{
			name:    "non positive max age",
			mutate:  func(c *Config) { c.SessionMaxAgeSeconds = 0 },
			wantErr: "SESSION_MAX_AGE_SECONDS",
		},
		{
			name:    "partial admin",
			mutate:  func(c *Config) { c.AdminEmail = "root@example.com" },
			wantErr: "must be set together",
		},
		{
			name: "malformed admin hash",
			mutate: func(c *Config) {
				c.AdminUsername = "Root"
				c.AdminEmail = "root@example.com"
				c.AdminPasswordHash = "not-a-hash"
			},
			wantErr: "ADMIN_PASSWORD_HASH",
		},
		{
			name: "complete admin",
			mutate: func(c *Config) {
				c.AdminUsername = "Root"
				c.AdminEmail = "root@example.com"
				c.AdminPasswordHash = string(hash)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: " http://a.example , ,http://b.example"}
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.AllowedOrigins())
}
