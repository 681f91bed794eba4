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
	Postgres    PostgresConfig    `yaml:"postgres"`
	HTTP        HTTPConfig        `yaml:"http"`
	Submission  SubmissionConfig  `yaml:"submission"`
	Scoring     ScoringConfig     `yaml:"scoring"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// HTTPConfig holds the API listener configuration.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// SubmissionConfig bounds the intake pipeline.
type SubmissionConfig struct {
	MaxArtifactBytes int64   `yaml:"max_artifact_bytes"`
	RatePerSecond    float64 `yaml:"rate_per_second"`
	RateBurst        int     `yaml:"rate_burst"`
}

// ScoringConfig points at the external scorer and bounds calls into it.
type ScoringConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"-"`
}

// UnmarshalYAML accepts the timeout in Go duration syntax ("30s", "1m").
func (s *ScoringConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Endpoint string `yaml:"endpoint"`
		Timeout  string `yaml:"timeout"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	s.Endpoint = raw.Endpoint
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("invalid scoring timeout %q: %w", raw.Timeout, err)
		}
		s.Timeout = d
	}
	return nil
}

// LeaderboardConfig selects the global aggregation policy: "sum" adds each
// participant's per-challenge scores, "best" keeps the single highest.
type LeaderboardConfig struct {
	GlobalPolicy string `yaml:"global_policy"`
}

// MetricsConfig holds the Prometheus listener configuration.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

const (
	defaultHTTPAddr         = ":8080"
	defaultMetricsAddr      = ":9090"
	defaultMaxArtifactBytes = 100 << 20 // 100 MB upload limit
	defaultScoringTimeout   = 30 * time.Second
	defaultRatePerSecond    = 5.0
	defaultRateBurst        = 10
	defaultGlobalPolicy     = "sum"
)

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	// Try reading configuration from the file first
	data, err := os.ReadFile(filename)
	if err != nil {
		// If the file is not found, try loading from environment variables
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// --- OVERRIDE WITH ENV VARS IF PRESENT ---
	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config

	cfg.Postgres.DSN = os.Getenv("DATABASE_URL")
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("MAX_ARTIFACT_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Submission.MaxArtifactBytes = n
		}
	}
	if v := os.Getenv("SCORING_ENDPOINT"); v != "" {
		cfg.Scoring.Endpoint = v
	}
	if v := os.Getenv("SCORING_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Scoring.Timeout = d
		}
	}
	if v := os.Getenv("LEADERBOARD_GLOBAL_POLICY"); v != "" {
		cfg.Leaderboard.GlobalPolicy = v
	}
	if v := os.Getenv("SUBMIT_RATE_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Submission.RatePerSecond = f
		}
	}
	if v := os.Getenv("SUBMIT_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Submission.RateBurst = n
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = defaultHTTPAddr
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = defaultMetricsAddr
	}
	if cfg.Submission.MaxArtifactBytes == 0 {
		cfg.Submission.MaxArtifactBytes = defaultMaxArtifactBytes
	}
	if cfg.Submission.RatePerSecond == 0 {
		cfg.Submission.RatePerSecond = defaultRatePerSecond
	}
	if cfg.Submission.RateBurst == 0 {
		cfg.Submission.RateBurst = defaultRateBurst
	}
	if cfg.Scoring.Timeout == 0 {
		cfg.Scoring.Timeout = defaultScoringTimeout
	}
	if cfg.Leaderboard.GlobalPolicy == "" {
		cfg.Leaderboard.GlobalPolicy = defaultGlobalPolicy
	}
}

func (c *Config) validate() error {
	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres DSN is required")
	}
	if c.Leaderboard.GlobalPolicy != "sum" && c.Leaderboard.GlobalPolicy != "best" {
		return fmt.Errorf("invalid leaderboard global_policy %q (want sum or best)", c.Leaderboard.GlobalPolicy)
	}
	return nil
}
