package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_FileWithEnvOverride(t *testing.T) {
	path := writeConfig(t, `
postgres:
  dsn: postgres://file
nats:
  url: nats://file:4222
http:
  addr: ":9000"
points:
  leaderboard_page_size: 25
observability:
  log_level: debug
`)
	t.Setenv("NATS_URL", "nats://env:4222")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://file", cfg.Postgres.DSN)
	assert.Equal(t, "nats://env:4222", cfg.NATS.URL)
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, 25, cfg.Points.LeaderboardPageSize)
	assert.Equal(t, 20, cfg.Points.ArchivePageSize)
	assert.Equal(t, "global_attendance", cfg.Points.DefaultDecayStrategy)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
	assert.Equal(t, "poker-points", cfg.Observability.ServiceName)
}

func TestLoadConfig_EnvOnly(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("HTTP_RATE_BURST", "5")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "postgres://env", cfg.Postgres.DSN)
	assert.Empty(t, cfg.NATS.URL)
	assert.Equal(t, 5, cfg.HTTP.RateBurst)
	assert.Equal(t, 50, cfg.Points.LeaderboardPageSize)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing dsn",
			body:    "http:\n  addr: \":1\"\n",
			wantErr: "postgres dsn not set",
		},
		{
			name:    "unknown decay",
			body:    "postgres:\n  dsn: x\npoints:\n  default_decay_strategy: halving\n",
			wantErr: `unknown decay strategy "halving"`,
		},
		{
			name:    "bad yaml",
			body:    "postgres: [",
			wantErr: "failed to unmarshal config",
		},
		{
			name:    "bad env value",
			body:    "postgres:\n  dsn: x\n",
			env:     map[string]string{"HTTP_RATE_BURST": "lots"},
			wantErr: "parse env:",
		},
		{
			name:    "rate limit without burst",
			body:    "postgres:\n  dsn: x\nhttp:\n  rate_limit: 5\n  rate_burst: 0\n",
			wantErr: "http rate burst must be at least 1",
		},
		{
			name:    "sample rate out of range",
			body:    "postgres:\n  dsn: x\nobservability:\n  sample_rate: 2\n",
			wantErr: "sample rate must be between 0 and 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
