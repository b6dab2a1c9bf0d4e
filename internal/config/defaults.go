package config

import "time"

// ApplyDefaults fills unset configuration fields with production-safe
// defaults.  Called after unmarshalling and before validation.
func (c *Config) ApplyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}

	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.User == "" {
		c.Database.User = "tendergate"
	}
	if c.Database.Name == "" {
		c.Database.Name = "tendergate"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 30 * time.Minute
	}
	if c.Database.MigrationsPath == "" {
		c.Database.MigrationsPath = "migrations"
	}

	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "tendergate"
	}
	if c.Redis.DefaultTTL == 0 {
		c.Redis.DefaultTTL = 10 * time.Minute
	}
	if c.Redis.TTLJitter == 0 {
		c.Redis.TTLJitter = 0.1
	}

	if c.Kafka.ClientID == "" {
		c.Kafka.ClientID = "tendergate"
	}
	if c.Kafka.WriteTimeout == 0 {
		c.Kafka.WriteTimeout = 10 * time.Second
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}

	c.Engine.applyDefaults()
}

func (e *EngineConfig) applyDefaults() {
	if e.ProbabilityFrequentWinner == 0 {
		e.ProbabilityFrequentWinner = 0.85
	}
	if e.ProbabilityFrequentBidder == 0 {
		e.ProbabilityFrequentBidder = 0.60
	}
	if e.ProbabilityCategoryActive == 0 {
		e.ProbabilityCategoryActive = 0.50
	}
	if e.ProbabilityBaseline == 0 {
		e.ProbabilityBaseline = 0.25
	}
	if e.HighCompetitionBidders == 0 {
		e.HighCompetitionBidders = 7
	}
	if e.MediumCompetitionBidders == 0 {
		e.MediumCompetitionBidders = 4
	}
	if e.ActiveWindowMonths == 0 {
		e.ActiveWindowMonths = 18
	}
	if e.HistoryWindowMonths == 0 {
		e.HistoryWindowMonths = 24
	}
	if e.MaxPartnerSuggestions == 0 {
		e.MaxPartnerSuggestions = 5
	}
	if e.BatchItemDelay == 0 {
		e.BatchItemDelay = 500 * time.Millisecond
	}
	if e.MaxPredictedCompetitors == 0 {
		e.MaxPredictedCompetitors = 20
	}
}
