package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "tendergate", cfg.Redis.KeyPrefix)
	assert.Equal(t, "info", cfg.Log.Level)

	assert.Equal(t, 0.85, cfg.Engine.ProbabilityFrequentWinner)
	assert.Equal(t, 0.60, cfg.Engine.ProbabilityFrequentBidder)
	assert.Equal(t, 0.50, cfg.Engine.ProbabilityCategoryActive)
	assert.Equal(t, 0.25, cfg.Engine.ProbabilityBaseline)
	assert.Equal(t, float64(7), cfg.Engine.HighCompetitionBidders)
	assert.Equal(t, float64(4), cfg.Engine.MediumCompetitionBidders)
	assert.Equal(t, 18, cfg.Engine.ActiveWindowMonths)
	assert.Equal(t, 24, cfg.Engine.HistoryWindowMonths)
	assert.Equal(t, 5, cfg.Engine.MaxPartnerSuggestions)
	assert.Equal(t, 500*time.Millisecond, cfg.Engine.BatchItemDelay)
}

func TestApplyDefaultsPreservesSetValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9000
	cfg.Engine.ActiveWindowMonths = 6
	cfg.ApplyDefaults()

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 6, cfg.Engine.ActiveWindowMonths)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server.port",
		},
		{
			name:    "missing db host",
			mutate:  func(c *Config) { c.Database.Host = "" },
			wantErr: "database.host",
		},
		{
			name:    "jitter out of range",
			mutate:  func(c *Config) { c.Redis.TTLJitter = 1.5 },
			wantErr: "ttl_jitter",
		},
		{
			name: "kafka enabled without brokers",
			mutate: func(c *Config) {
				c.Kafka.Enabled = true
				c.Kafka.Brokers = nil
			},
			wantErr: "kafka.brokers",
		},
		{
			name:    "probability out of range",
			mutate:  func(c *Config) { c.Engine.ProbabilityBaseline = 1.2 },
			wantErr: "probability_baseline",
		},
		{
			name: "inverted competition thresholds",
			mutate: func(c *Config) {
				c.Engine.HighCompetitionBidders = 3
				c.Engine.MediumCompetitionBidders = 4
			},
			wantErr: "high_competition_bidders",
		},
		{
			name:    "negative batch delay",
			mutate:  func(c *Config) { c.Engine.BatchItemDelay = -time.Second },
			wantErr: "batch_item_delay",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
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

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
database:
  host: db.internal
  name: tenders
engine:
  active_window_months: 12
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "tenders", cfg.Database.Name)
	assert.Equal(t, 12, cfg.Engine.ActiveWindowMonths)
	// untouched fields fall back to defaults
	assert.Equal(t, 0.85, cfg.Engine.ProbabilityFrequentWinner)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	require.Error(t, err)
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := validConfig()
	cfg.Database.User = "app"
	cfg.Database.Password = "secret"
	cfg.Database.Host = "pg"
	cfg.Database.Port = 5433
	cfg.Database.Name = "tenders"
	cfg.Database.SSLMode = "require"

	assert.Equal(t, "postgres://app:secret@pg:5433/tenders?sslmode=require", cfg.Database.DSN())
}

func TestServerAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 8081
	assert.Equal(t, "127.0.0.1:8081", cfg.Server.Addr())
}
