// Package config defines the application configuration model and its loading
// logic.  Configuration is sourced from YAML files and environment variables
// (prefix TENDERGATE_) via viper, with validation before use.
package config

import (
	"fmt"
	"time"

	"github.com/tendergate/tendergate/internal/infrastructure/monitoring/logging"
)

// Config is the root configuration object for all tendergate binaries.
type Config struct {
	Server   ServerConfig      `mapstructure:"server"`
	Database DatabaseConfig    `mapstructure:"database"`
	Redis    RedisConfig       `mapstructure:"redis"`
	Kafka    KafkaConfig       `mapstructure:"kafka"`
	Log      logging.LogConfig `mapstructure:"log"`
	Engine   EngineConfig      `mapstructure:"engine"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// DSN builds a PostgreSQL connection string from the configuration.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// RedisConfig holds Redis connection and caching parameters.
type RedisConfig struct {
	Addr       string        `mapstructure:"addr"`
	Password   string        `mapstructure:"password"`
	DB         int           `mapstructure:"db"`
	KeyPrefix  string        `mapstructure:"key_prefix"`
	DefaultTTL time.Duration `mapstructure:"default_ttl"`
	// TTLJitter widens each expiry by a random fraction of the TTL to avoid
	// synchronized mass expiry.  0.1 means up to +10%.
	TTLJitter float64 `mapstructure:"ttl_jitter"`
}

// KafkaConfig holds Kafka producer parameters.
type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	ClientID     string        `mapstructure:"client_id"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	RequiredAcks int           `mapstructure:"required_acks"`
	// Enabled gates event publishing entirely; when false the application
	// uses a no-op producer.
	Enabled bool `mapstructure:"enabled"`
}

// EngineConfig holds the tunable heuristics of the evaluation engine.  The
// defaults reflect calibration against historical tender outcomes; override
// only with data to back the change.
type EngineConfig struct {
	// Competitor participation probability ladder, evaluated first match
	// wins against each candidate's historical activity.
	ProbabilityFrequentWinner float64 `mapstructure:"probability_frequent_winner"`
	ProbabilityFrequentBidder float64 `mapstructure:"probability_frequent_bidder"`
	ProbabilityCategoryActive float64 `mapstructure:"probability_category_active"`
	ProbabilityBaseline       float64 `mapstructure:"probability_baseline"`

	// Competition level thresholds on average bidder count over the
	// analysis window.
	HighCompetitionBidders   float64 `mapstructure:"high_competition_bidders"`
	MediumCompetitionBidders float64 `mapstructure:"medium_competition_bidders"`

	// ActiveWindowMonths bounds how far back a competitor's last activity
	// may be while still counting as an active market participant.
	ActiveWindowMonths int `mapstructure:"active_window_months"`

	// HistoryWindowMonths bounds the tender-result history considered in
	// competition analysis.
	HistoryWindowMonths int `mapstructure:"history_window_months"`

	// MaxPartnerSuggestions caps the partner list returned per gap.
	MaxPartnerSuggestions int `mapstructure:"max_partner_suggestions"`

	// BatchItemDelay is the pause inserted between consecutive items of a
	// batch run to avoid saturating downstream dependencies.
	BatchItemDelay time.Duration `mapstructure:"batch_item_delay"`

	// MaxPredictedCompetitors caps the competitor prediction list.
	MaxPredictedCompetitors int `mapstructure:"max_predicted_competitors"`
}

// Validate checks the configuration for values that would prevent correct
// operation.  It returns the first problem found.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("config: database.name is required")
	}
	if c.Redis.TTLJitter < 0 || c.Redis.TTLJitter > 1 {
		return fmt.Errorf("config: redis.ttl_jitter %v must be in [0,1]", c.Redis.TTLJitter)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers required when kafka.enabled")
	}
	return c.Engine.validate()
}

func (e EngineConfig) validate() error {
	probs := []struct {
		name string
		v    float64
	}{
		{"probability_frequent_winner", e.ProbabilityFrequentWinner},
		{"probability_frequent_bidder", e.ProbabilityFrequentBidder},
		{"probability_category_active", e.ProbabilityCategoryActive},
		{"probability_baseline", e.ProbabilityBaseline},
	}
	for _, p := range probs {
		if p.v < 0 || p.v > 1 {
			return fmt.Errorf("config: engine.%s %v must be in [0,1]", p.name, p.v)
		}
	}
	if e.HighCompetitionBidders <= e.MediumCompetitionBidders {
		return fmt.Errorf("config: engine.high_competition_bidders must exceed medium_competition_bidders")
	}
	if e.ActiveWindowMonths <= 0 {
		return fmt.Errorf("config: engine.active_window_months must be positive")
	}
	if e.HistoryWindowMonths <= 0 {
		return fmt.Errorf("config: engine.history_window_months must be positive")
	}
	if e.MaxPartnerSuggestions <= 0 {
		return fmt.Errorf("config: engine.max_partner_suggestions must be positive")
	}
	if e.BatchItemDelay < 0 {
		return fmt.Errorf("config: engine.batch_item_delay must not be negative")
	}
	return nil
}
