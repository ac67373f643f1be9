package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all configuration for the switch worker
type Config struct {
	// Worker configuration
	WorkerID string `env:"WORKER_ID" envDefault:"switch-1"`

	// Redis configuration
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASS" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Stream configuration
	StreamKey     string        `env:"STREAM_KEY" envDefault:"switch.work"`
	ConsumerGroup string        `env:"CONSUMER_GROUP" envDefault:"switch-workers"`
	ResultStream  string        `env:"RESULT_STREAM" envDefault:"switch.routed"`
	BlockTime     time.Duration `env:"BLOCK_TIME" envDefault:"1s"`

	// Routing configuration
	LaneCount         int    `env:"LANE_COUNT" envDefault:"4"`
	ExpressionDialect string `env:"EXPRESSION_DIALECT" envDefault:"cel"`

	// State configuration
	StateTTL time.Duration `env:"STATE_TTL" envDefault:"24h"`

	// HTTP API configuration
	HTTPPort int `env:"HTTP_PORT" envDefault:"8082"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// MaxLaneCount bounds LANE_COUNT
const MaxLaneCount = 64

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.WorkerID == "" {
		return fmt.Errorf("WORKER_ID is required")
	}

	if c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}

	if c.StreamKey == "" {
		return fmt.Errorf("STREAM_KEY is required")
	}

	if c.ConsumerGroup == "" {
		return fmt.Errorf("CONSUMER_GROUP is required")
	}

	if c.ResultStream == "" {
		return fmt.Errorf("RESULT_STREAM is required")
	}

	if c.BlockTime <= 0 {
		return fmt.Errorf("BLOCK_TIME must be positive")
	}

	if c.LaneCount < 1 || c.LaneCount > MaxLaneCount {
		return fmt.Errorf("LANE_COUNT must be between 1 and %d", MaxLaneCount)
	}

	if c.ExpressionDialect != "cel" && c.ExpressionDialect != "expr" {
		return fmt.Errorf("EXPRESSION_DIALECT must be one of: cel, expr")
	}

	if c.StateTTL < 0 {
		return fmt.Errorf("STATE_TTL must be non-negative")
	}

	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}

	if !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error")
	}

	return nil
}

// isValidLogLevel checks if the log level is valid
func isValidLogLevel(level string) bool {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	return validLevels[level]
}

// String returns a string representation of the config (without sensitive data)
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{WorkerID=%s, RedisAddr=%s, RedisDB=%d, StreamKey=%s, ConsumerGroup=%s, "+
			"ResultStream=%s, LaneCount=%d, ExpressionDialect=%s, StateTTL=%s, HTTPPort=%d, LogLevel=%s}",
		c.WorkerID,
		c.RedisAddr,
		c.RedisDB,
		c.StreamKey,
		c.ConsumerGroup,
		c.ResultStream,
		c.LaneCount,
		c.ExpressionDialect,
		c.StateTTL,
		c.HTTPPort,
		c.LogLevel,
	)
}
