package common

import (
	"cmp"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Watch    WatchConfig
	Export   ExportConfig
	Tuning   TuningConfig
	Log      LogConfig
}

// DatabaseConfig holds database-related configuration. An empty DSN disables persistence.
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds daemon-related configuration
type ServerConfig struct {
	GRPCAddr        string
	Workers         int
	QueueSize       int
	DocumentTimeout time.Duration
}

// WatchConfig holds directory-watch configuration
type WatchConfig struct {
	Dirs       []string
	Extensions []string
	SkipHidden bool
	Debounce   time.Duration
}

// ExportConfig holds output-related configuration
type ExportConfig struct {
	OutputDir string
	XLSX      bool
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string
}

// StrategyWeights is the weight table of the four row-classification strategies.
type StrategyWeights struct {
	Semantic      float64 `yaml:"semantic"`
	BusinessLogic float64 `yaml:"business_logic"`
	Density       float64 `yaml:"density"`
	Position      float64 `yaml:"position"`
}

// TuningConfig holds the empirical thresholds of the normalization pipeline.
type TuningConfig struct {
	HeaderSimilarityThreshold  float64         `yaml:"header_similarity_threshold"`
	DataHeaderRatio            float64         `yaml:"data_header_ratio"`
	DisableRejoin              bool            `yaml:"disable_rejoin"`
	SummaryConfidenceThreshold float64         `yaml:"summary_confidence_threshold"`
	MinimumStrategiesAgreement int             `yaml:"minimum_strategies_agreement"`
	MaxRemovableFraction       float64         `yaml:"max_removable_fraction"`
	MinimumRemainingRows       int             `yaml:"minimum_remaining_rows"`
	QualityAcceptanceThreshold float64         `yaml:"quality_acceptance_threshold"`
	Weights                    StrategyWeights `yaml:"weights"`
}

// DefaultTuning returns the stock thresholds.
func DefaultTuning() TuningConfig {
	return TuningConfig{
		HeaderSimilarityThreshold:  0.7,
		DataHeaderRatio:            0.5,
		SummaryConfidenceThreshold: 0.75,
		MinimumStrategiesAgreement: 2,
		MaxRemovableFraction:       0.35,
		MinimumRemainingRows:       3,
		QualityAcceptanceThreshold: 0.6,
		Weights: StrategyWeights{
			Semantic:      0.45,
			BusinessLogic: 0.35,
			Density:       0.15,
			Position:      0.05,
		},
	}
}

// LoadConfig loads configuration from environment variables. When TUNING_FILE is set the
// YAML file is applied on top of the defaults and env tuning variables win over both.
func LoadConfig() (*Config, error) {
	return LoadConfigWithTuningFile("")
}

// LoadConfigWithTuningFile is LoadConfig with an explicit tuning file that takes the place
// of TUNING_FILE. An empty path falls back to TUNING_FILE. Env tuning variables still win.
func LoadConfigWithTuningFile(tuningFile string) (*Config, error) {
	tuning := DefaultTuning()
	if path := cmp.Or(tuningFile, getEnv("TUNING_FILE", "")); path != "" {
		var err error
		if tuning, err = LoadTuningFile(path, tuning); err != nil {
			return nil, err
		}
	}
	tuning = tuningFromEnv(tuning)

	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			GRPCAddr:        getEnv("GRPC_ADDR", ":8080"),
			Workers:         getEnvAsInt("WORKERS", 4),
			QueueSize:       getEnvAsInt("QUEUE_SIZE", 128),
			DocumentTimeout: getEnvAsDuration("DOCUMENT_TIMEOUT", 30*time.Second),
		},
		Watch: WatchConfig{
			Dirs:       getEnvAsList("WATCH_DIRS", nil),
			Extensions: getEnvAsList("WATCH_EXTENSIONS", []string{"json"}),
			SkipHidden: getEnvAsBool("WATCH_SKIP_HIDDEN", true),
			Debounce:   getEnvAsDuration("WATCH_DEBOUNCE", 500*time.Millisecond),
		},
		Export: ExportConfig{
			OutputDir: getEnv("OUTPUT_DIR", ""),
			XLSX:      getEnvAsBool("EXPORT_XLSX", false),
		},
		Tuning: tuning,
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}, nil
}

// LoadTuningFile decodes a YAML tuning file over base. Keys absent from the file keep base values.
func LoadTuningFile(path string, base TuningConfig) (TuningConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return base, NewAppError("CONFIG_ERROR", "read tuning file", err)
	}
	out := base
	if err := yaml.Unmarshal(b, &out); err != nil {
		return base, NewAppError("CONFIG_ERROR", fmt.Sprintf("parse tuning file %s", path), err)
	}
	return out, nil
}

func tuningFromEnv(t TuningConfig) TuningConfig {
	t.HeaderSimilarityThreshold = getEnvAsFloat("HEADER_SIMILARITY_THRESHOLD", t.HeaderSimilarityThreshold)
	t.DataHeaderRatio = getEnvAsFloat("DATA_HEADER_RATIO", t.DataHeaderRatio)
	t.DisableRejoin = getEnvAsBool("DISABLE_REJOIN", t.DisableRejoin)
	t.SummaryConfidenceThreshold = getEnvAsFloat("SUMMARY_CONFIDENCE_THRESHOLD", t.SummaryConfidenceThreshold)
	t.MinimumStrategiesAgreement = getEnvAsInt("MIN_STRATEGIES_AGREEMENT", t.MinimumStrategiesAgreement)
	t.MaxRemovableFraction = getEnvAsFloat("MAX_REMOVABLE_FRACTION", t.MaxRemovableFraction)
	t.MinimumRemainingRows = getEnvAsInt("MIN_REMAINING_ROWS", t.MinimumRemainingRows)
	t.QualityAcceptanceThreshold = getEnvAsFloat("QUALITY_ACCEPTANCE_THRESHOLD", t.QualityAcceptanceThreshold)
	return t
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping empty items.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate validates the tuning section, which every binary needs.
func (c *Config) Validate() error {
	return c.Tuning.Validate()
}

// ValidateDaemon additionally requires the daemon's watch and server settings.
func (c *Config) ValidateDaemon() error {
	v := NewValidator()
	v.Field("GRPC_ADDR", c.Server.GRPCAddr, Required)
	v.Field("WATCH_DIRS", strings.Join(c.Watch.Dirs, ","), Required)
	v.Field("WORKERS", float64(c.Server.Workers), AtLeast(1))
	v.Field("QUEUE_SIZE", float64(c.Server.QueueSize), AtLeast(1))
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	return c.Validate()
}

// Validate checks every threshold against its legal range.
func (t TuningConfig) Validate() error {
	v := NewValidator()
	v.Field("header_similarity_threshold", t.HeaderSimilarityThreshold, InRange(0, 1))
	v.Field("data_header_ratio", t.DataHeaderRatio, InRange(0, 1))
	v.Field("summary_confidence_threshold", t.SummaryConfidenceThreshold, InRange(0, 1))
	v.Field("minimum_strategies_agreement", float64(t.MinimumStrategiesAgreement), InRange(1, 4))
	v.Field("max_removable_fraction", t.MaxRemovableFraction, InRange(0, 1))
	v.Field("minimum_remaining_rows", float64(t.MinimumRemainingRows), AtLeast(1))
	v.Field("quality_acceptance_threshold", t.QualityAcceptanceThreshold, InRange(0, 1))
	w := t.Weights
	v.Field("weights.semantic", w.Semantic, InRange(0, 1))
	v.Field("weights.business_logic", w.BusinessLogic, InRange(0, 1))
	v.Field("weights.density", w.Density, InRange(0, 1))
	v.Field("weights.position", w.Position, InRange(0, 1))
	v.Field("weights", w.Semantic+w.BusinessLogic+w.Density+w.Position, InRange(0.999, 1.001))
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrValidation)
	}
	return nil
}
