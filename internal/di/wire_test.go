package di

import (
	"sync"
	"testing"

	"github.com/aristath/qnoise/internal/config"
	"github.com/aristath/qnoise/internal/modules/channels"
	"github.com/aristath/qnoise/internal/modules/interpolation"
	"github.com/aristath/qnoise/internal/modules/synthesis"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(seed uint64) *config.Config {
	return &config.Config{
		LogLevel:        "info",
		DefaultChannels: []channels.Symbol{channels.Depolarization1Q, channels.AmplitudeDamping},
		Solver: &config.SolverConfig{
			MaxIter: 5,
			Seed:    seed,
			Workers: 2,
		},
	}
}

func TestWire(t *testing.T) {
	container, err := Wire(testConfig(42), zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, container)

	assert.Equal(t, 5, container.SolverConfig.MaxIter)
	assert.Equal(t, 2, container.SolverConfig.Workers)
	assert.Greater(t, container.SolverConfig.Ftol, 0.0)
	assert.NotNil(t, container.NewSolver())

	defaults := container.DefaultChannels()
	defaults[0] = channels.PhaseDamping
	assert.Equal(t, channels.Depolarization1Q, container.DefaultChannels()[0])
}

func TestWire_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(1)
	cfg.Solver.Workers = 0

	container, err := Wire(cfg, zerolog.Nop())
	assert.Nil(t, container)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestNewSolver_SeededContainersAreReproducible(t *testing.T) {
	angle := synthesis.U3Angle{Theta: 0.5}
	symbols := []channels.Symbol{channels.AmplitudeDamping}
	target := synthesis.NoisySingleQubitProcess(angle, symbols, []float64{0.04})

	a, err := Wire(testConfig(7), zerolog.Nop())
	require.NoError(t, err)
	b, err := Wire(testConfig(7), zerolog.Nop())
	require.NoError(t, err)

	ra := a.NewSolver().Fit1Q(target, angle, symbols, nil)
	rb := b.NewSolver().Fit1Q(target, angle, symbols, nil)

	assert.Equal(t, ra.Params, rb.Params)
	assert.True(t, ra.Converged)
}

func TestNewSolver_ConcurrentUse(t *testing.T) {
	container, err := Wire(testConfig(3), zerolog.Nop())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NotNil(t, container.NewSolver())
		}()
	}
	wg.Wait()
}

func TestNewInterpolator(t *testing.T) {
	container, err := Wire(testConfig(1), zerolog.Nop())
	require.NoError(t, err)

	angles := []synthesis.U3Angle{{Theta: 0}, {Theta: 1}}
	ip, err := container.NewInterpolator([][]float64{{0.01}, {0.03}}, angles, []interpolation.Model{{Kind: interpolation.Linear}})
	require.NoError(t, err)

	assert.InDelta(t, 0.02, ip.Interpolate(synthesis.U3Angle{Theta: 0.5})[0], 1e-12)
}

func TestNewLogger(t *testing.T) {
	log := NewLogger(&config.Config{LogLevel: "warn"})
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
}
