package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres PostgresConfig `yaml:"postgres"`
	NATS     NATSConfig     `yaml:"nats"`
	HTTP     HTTPConfig     `yaml:"http"`
	JWT      JWTConfig      `yaml:"jwt"`
	Ladder   LadderConfig   `yaml:"ladder"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// HTTPConfig holds the API listener configuration.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// MetricsConfig holds the Prometheus endpoint configuration.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables metrics
}

// LadderConfig holds the league rules that gate challenges and drive
// settlement. ChallengeRange is the maximum rank gap between challenger and
// target; product has not pinned the final band, so it stays configurable.
type LadderConfig struct {
	ChallengeRange    int           `yaml:"challenge_range"`
	CooldownDuration  time.Duration `yaml:"cooldown_duration"`
	ChallengeDeadline time.Duration `yaml:"challenge_deadline"`
	MinGamesToWin     int           `yaml:"min_games_to_win"`
	MaxGamesToWin     int           `yaml:"max_games_to_win"`
	PointsCreated     int           `yaml:"points_created"`
	PointsPlayed      int           `yaml:"points_played"`
	PointsWonBonus    int           `yaml:"points_won_bonus"`
	ExpirySweepEvery  time.Duration `yaml:"expiry_sweep_every"`
}

// DefaultLadderConfig returns the observed product defaults.
func DefaultLadderConfig() LadderConfig {
	return LadderConfig{
		ChallengeRange:    2,
		CooldownDuration:  24 * time.Hour,
		ChallengeDeadline: 14 * 24 * time.Hour,
		MinGamesToWin:     3,
		MaxGamesToWin:     13,
		PointsCreated:     1,
		PointsPlayed:      2,
		PointsWonBonus:    3,
		ExpirySweepEvery:  5 * time.Minute,
	}
}

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	// Try reading configuration from the file first
	data, err := os.ReadFile(filename)
	if err != nil {
		// If the file is not found, try loading from environment variables
		return loadConfigFromEnv()
	}

	cfg := Config{Ladder: DefaultLadderConfig()}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// --- OVERRIDE WITH ENV VARS IF PRESENT ---
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("JWT_DEFAULT_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.JWT.DefaultTTL = d
		}
	}
	if v := os.Getenv("LADDER_CHALLENGE_RANGE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Ladder.ChallengeRange = n
		}
	}
	if v := os.Getenv("LADDER_COOLDOWN"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Ladder.CooldownDuration = d
		}
	}
	if v := os.Getenv("LADDER_CHALLENGE_DEADLINE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Ladder.ChallengeDeadline = d
		}
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	cfg := Config{Ladder: DefaultLadderConfig()}

	cfg.Postgres.DSN = os.Getenv("DATABASE_URL")
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	cfg.NATS.URL = os.Getenv("NATS_URL")
	if cfg.NATS.URL == "" {
		return nil, fmt.Errorf("NATS_URL environment variable not set")
	}

	cfg.HTTP.Addr = os.Getenv("HTTP_ADDR")
	cfg.Metrics.Addr = os.Getenv("METRICS_ADDR") // optional; empty disables metrics

	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	jwtDefaultTTL := os.Getenv("JWT_DEFAULT_TTL")
	if jwtDefaultTTL == "" {
		cfg.JWT.DefaultTTL = 24 * time.Hour
	} else {
		var err error
		cfg.JWT.DefaultTTL, err = time.ParseDuration(jwtDefaultTTL)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_DEFAULT_TTL value: %v", err)
		}
	}

	if v := os.Getenv("LADDER_CHALLENGE_RANGE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LADDER_CHALLENGE_RANGE value: %v", err)
		}
		cfg.Ladder.ChallengeRange = n
	}
	if v := os.Getenv("LADDER_COOLDOWN"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LADDER_COOLDOWN value: %v", err)
		}
		cfg.Ladder.CooldownDuration = d
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.JWT.DefaultTTL == 0 {
		cfg.JWT.DefaultTTL = 24 * time.Hour
	}
	def := DefaultLadderConfig()
	if cfg.Ladder.ChallengeRange == 0 {
		cfg.Ladder.ChallengeRange = def.ChallengeRange
	}
	if cfg.Ladder.CooldownDuration == 0 {
		cfg.Ladder.CooldownDuration = def.CooldownDuration
	}
	if cfg.Ladder.ChallengeDeadline == 0 {
		cfg.Ladder.ChallengeDeadline = def.ChallengeDeadline
	}
	if cfg.Ladder.MinGamesToWin == 0 {
		cfg.Ladder.MinGamesToWin = def.MinGamesToWin
	}
	if cfg.Ladder.MaxGamesToWin == 0 {
		cfg.Ladder.MaxGamesToWin = def.MaxGamesToWin
	}
	if cfg.Ladder.ExpirySweepEvery == 0 {
		cfg.Ladder.ExpirySweepEvery = def.ExpirySweepEvery
	}
	if cfg.Ladder.PointsCreated == 0 {
		cfg.Ladder.PointsCreated = def.PointsCreated
	}
	if cfg.Ladder.PointsPlayed == 0 {
		cfg.Ladder.PointsPlayed = def.PointsPlayed
	}
	if cfg.Ladder.PointsWonBonus == 0 {
		cfg.Ladder.PointsWonBonus = def.PointsWonBonus
	}
}
