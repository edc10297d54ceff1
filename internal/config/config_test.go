package config

import (
	"testing"

	"github.com/aristath/qnoise/internal/modules/channels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"QNOISE_LOG_LEVEL", "QNOISE_LOG_PRETTY", "QNOISE_DEFAULT_CHANNELS",
		"QNOISE_SOLVER_MAX_ITER", "QNOISE_SOLVER_MAXFEV", "QNOISE_SOLVER_SEED", "QNOISE_SOLVER_WORKERS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogPretty)
	assert.Equal(t, []channels.Symbol{channels.Depolarization1Q}, cfg.DefaultChannels)
	assert.Equal(t, 50, cfg.Solver.MaxIter)
	assert.Equal(t, 0, cfg.Solver.MaxFev)
	assert.Equal(t, uint64(0), cfg.Solver.Seed)
	assert.Equal(t, 4, cfg.Solver.Workers)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("QNOISE_LOG_LEVEL", "debug")
	t.Setenv("QNOISE_LOG_PRETTY", "true")
	t.Setenv("QNOISE_DEFAULT_CHANNELS", "amplitude_damping, phase_damping")
	t.Setenv("QNOISE_SOLVER_MAX_ITER", "12")
	t.Setenv("QNOISE_SOLVER_MAXFEV", "900")
	t.Setenv("QNOISE_SOLVER_SEED", "1234")
	t.Setenv("QNOISE_SOLVER_WORKERS", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, []channels.Symbol{channels.AmplitudeDamping, channels.PhaseDamping}, cfg.DefaultChannels)
	assert.Equal(t, 12, cfg.Solver.MaxIter)
	assert.Equal(t, 900, cfg.Solver.MaxFev)
	assert.Equal(t, uint64(1234), cfg.Solver.Seed)
	assert.Equal(t, 8, cfg.Solver.Workers)

	sc := cfg.Solver.ToSolverConfig()
	assert.Equal(t, 12, sc.MaxIter)
	assert.Equal(t, 900, sc.MaxFev)
	assert.Equal(t, 8, sc.Workers)
	assert.Greater(t, sc.Xtol, 0.0)
}

func TestLoad_MalformedNumbersFallBackToDefaults(t *testing.T) {
	t.Setenv("QNOISE_SOLVER_MAX_ITER", "lots")
	t.Setenv("QNOISE_SOLVER_SEED", "-1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Solver.MaxIter)
	assert.Equal(t, uint64(0), cfg.Solver.Seed)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown log level", "QNOISE_LOG_LEVEL", "verbose"},
		{"unknown channel", "QNOISE_DEFAULT_CHANNELS", "bit_flip"},
		{"two-qubit default channel", "QNOISE_DEFAULT_CHANNELS", "depolarization_2qubit"},
		{"zero attempts", "QNOISE_SOLVER_MAX_ITER", "0"},
		{"negative evaluations", "QNOISE_SOLVER_MAXFEV", "-5"},
		{"no workers", "QNOISE_SOLVER_WORKERS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			assert.Nil(t, cfg)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestValidate_MissingSolver(t *testing.T) {
	cfg := &Config{LogLevel: "info"}
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
}
