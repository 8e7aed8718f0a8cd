package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/jmontanero23-design/signalengine/internal/regime"
	"github.com/jmontanero23-design/signalengine/internal/signal"
)

// Config holds all engine configuration.
type Config struct {
	LogLevel  string
	Timeframe string

	ConsensusEnabled bool
	WeightsFile      string

	ScoreLongThreshold  float64
	ScoreShortThreshold float64

	HMMStates  int
	HMMMaxIter int
	HMMSeed    int64

	TransitionRiskThreshold float64

	BacktestWindow int
}

// Load initializes configuration from environment variables, reading a
// .env file first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, relying on actual environment variables")
	}

	cfg := &Config{
		LogLevel:                getEnvWithDefault("LOG_LEVEL", "info"),
		Timeframe:               getEnvWithDefault("TIMEFRAME", "5min"),
		ConsensusEnabled:        getEnvBoolWithDefault("CONSENSUS_ENABLED", false),
		WeightsFile:             os.Getenv("WEIGHTS_FILE"),
		ScoreLongThreshold:      getEnvFloatWithDefault("SCORE_LONG_THRESHOLD", 65),
		ScoreShortThreshold:     getEnvFloatWithDefault("SCORE_SHORT_THRESHOLD", 35),
		HMMStates:               getEnvIntWithDefault("HMM_STATES", 3),
		HMMMaxIter:              getEnvIntWithDefault("HMM_MAX_ITER", 50),
		HMMSeed:                 int64(getEnvIntWithDefault("HMM_SEED", 42)),
		TransitionRiskThreshold: getEnvFloatWithDefault("TRANSITION_RISK_THRESHOLD", 0.7),
		BacktestWindow:          getEnvIntWithDefault("BACKTEST_WINDOW", 100),
	}
	return cfg, nil
}

// SignalConfig builds the score-aggregator configuration, applying the
// optional YAML weights file on top of the defaults.
func (c *Config) SignalConfig() (signal.Config, error) {
	cfg := signal.DefaultConfig()
	if c.WeightsFile == "" {
		return cfg, nil
	}
	weights, err := LoadWeights(c.WeightsFile)
	if err != nil {
		return cfg, err
	}
	cfg.Weights = weights
	return cfg, nil
}

// MonitorOptions builds the regime-monitor configuration.
func (c *Config) MonitorOptions() regime.MonitorOptions {
	opts := regime.DefaultMonitorOptions()
	opts.Advanced.HMMStates = c.HMMStates
	opts.Advanced.HMMMaxIter = c.HMMMaxIter
	opts.Advanced.HMMSeed = c.HMMSeed
	opts.TransitionRiskThreshold = c.TransitionRiskThreshold
	return opts
}

// weightsFile is the on-disk shape of the score-weight overrides.
type weightsFile struct {
	Weights signal.Weights `yaml:"weights"`
}

// LoadWeights reads per-indicator score weights from a YAML file.
func LoadWeights(path string) (signal.Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return signal.Weights{}, fmt.Errorf("reading weights file: %w", err)
	}
	var f weightsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return signal.Weights{}, fmt.Errorf("parsing weights file: %w", err)
	}
	return f.Weights, nil
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
