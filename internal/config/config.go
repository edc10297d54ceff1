// Package config provides configuration management functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/aristath/qnoise/internal/modules/channels"
	"github.com/aristath/qnoise/internal/modules/solver"
	"github.com/aristath/qnoise/pkg/logger"
	"github.com/joho/godotenv"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds application configuration
type Config struct {
	LogLevel  string
	LogPretty bool
	// DefaultChannels is the single-qubit channel list fitted when a caller
	// does not name one.
	DefaultChannels []channels.Symbol
	Solver          *SolverConfig
}

// SolverConfig holds parameter solver settings
type SolverConfig struct {
	MaxIter int
	MaxFev  int    // 0 = 200·(n+1) for n parameters
	Seed    uint64 // 0 = time-derived
	Workers int
}

// ToSolverConfig converts SolverConfig to solver.Config, keeping the
// solver's default tolerances.
func (c *SolverConfig) ToSolverConfig() solver.Config {
	cfg := solver.DefaultConfig()
	cfg.MaxIter = c.MaxIter
	cfg.MaxFev = c.MaxFev
	cfg.Workers = c.Workers
	return cfg
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	defaults, err := channels.ParseSymbolList(getEnv("QNOISE_DEFAULT_CHANNELS", channels.Depolarization1Q.String()))
	if err != nil {
		return nil, fmt.Errorf("%w: QNOISE_DEFAULT_CHANNELS: %w", ErrInvalid, err)
	}

	cfg := &Config{
		LogLevel:        getEnv("QNOISE_LOG_LEVEL", "info"),
		LogPretty:       getEnvAsBool("QNOISE_LOG_PRETTY", false),
		DefaultChannels: defaults,
		Solver: &SolverConfig{
			MaxIter: getEnvAsInt("QNOISE_SOLVER_MAX_ITER", 50),
			MaxFev:  getEnvAsInt("QNOISE_SOLVER_MAXFEV", 0),
			Seed:    getEnvAsUint64("QNOISE_SOLVER_SEED", 0),
			Workers: getEnvAsInt("QNOISE_SOLVER_WORKERS", 4),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that every setting is usable
func (c *Config) Validate() error {
	if !logger.IsValidLevel(c.LogLevel) {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalid, c.LogLevel)
	}
	for _, s := range c.DefaultChannels {
		if s.QubitCount() != 1 {
			return fmt.Errorf("%w: default channel %s is not a single-qubit channel", ErrInvalid, s)
		}
	}
	if c.Solver == nil {
		return fmt.Errorf("%w: missing solver settings", ErrInvalid)
	}
	if c.Solver.MaxIter < 1 {
		return fmt.Errorf("%w: QNOISE_SOLVER_MAX_ITER must be at least 1, got %d", ErrInvalid, c.Solver.MaxIter)
	}
	if c.Solver.MaxFev < 0 {
		return fmt.Errorf("%w: QNOISE_SOLVER_MAXFEV must not be negative, got %d", ErrInvalid, c.Solver.MaxFev)
	}
	if c.Solver.Workers < 1 {
		return fmt.Errorf("%w: QNOISE_SOLVER_WORKERS must be at least 1, got %d", ErrInvalid, c.Solver.Workers)
	}
	return nil
}

// Helper functions
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

func getEnvAsUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
