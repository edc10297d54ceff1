package solver

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/aristath/qnoise/internal/modules/channels"
	"github.com/aristath/qnoise/internal/modules/synthesis"
	"github.com/aristath/qnoise/pkg/cmat"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSolver(cfg Config, seed uint64) *Solver {
	return New(cfg, rand.NewPCG(seed, seed+1), zerolog.Nop())
}

func assertRecovered(t *testing.T, want, got []float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, 0, (got[i]-want[i])/want[i], 1e-3, "param %d: want %g got %g", i, want[i], got[i])
	}
}

func TestFit1Q_RecoversParameters(t *testing.T) {
	tests := []struct {
		name    string
		angle   synthesis.U3Angle
		symbols []channels.Symbol
		params  []float64
	}{
		{
			name:    "depolarizing then amplitude damping",
			angle:   synthesis.U3Angle{Theta: 0.7, Phi: 0.3, Lambda: -0.2},
			symbols: []channels.Symbol{channels.Depolarization1Q, channels.AmplitudeDamping},
			params:  []float64{0.02, 0.05},
		},
		{
			name:    "generalized phase amplitude damping",
			angle:   synthesis.U3Angle{Theta: 1.4, Phi: -0.5, Lambda: 0.9},
			symbols: []channels.Symbol{channels.GeneralizedPhaseAmplitudeDamping},
			params:  []float64{0.04, 0.02},
		},
		{
			name:    "phase damping",
			angle:   synthesis.U3Angle{Theta: math.Pi / 2},
			symbols: []channels.Symbol{channels.PhaseDamping},
			params:  []float64{0.07},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := synthesis.NoisySingleQubitProcess(tt.angle, tt.symbols, tt.params)

			res := newTestSolver(DefaultConfig(), 7).Fit1Q(target, tt.angle, tt.symbols, nil)

			require.True(t, res.Converged, "residual %g summed %g status %s", res.ResidualNorm, res.SummedResidual, res.Status)
			assertRecovered(t, tt.params, res.Params)
			rebuilt := synthesis.NoisySingleQubitProcess(tt.angle, tt.symbols, res.Params)
			assert.LessOrEqual(t, cmat.MaxAbsDiff(target, rebuilt), 1e-6)
			assert.NotEqual(t, uuid.Nil, res.RunID)
		})
	}
}

func TestFit1Q_UsesGuessFirst(t *testing.T) {
	angle := synthesis.U3Angle{Theta: 0.4}
	symbols := []channels.Symbol{channels.AmplitudeDamping}
	target := synthesis.NoisySingleQubitProcess(angle, symbols, []float64{0.03})

	res := newTestSolver(DefaultConfig(), 1).Fit1Q(target, angle, symbols, []float64{0.031})

	assert.True(t, res.Converged)
	assert.Equal(t, 1, res.Attempts)
	assertRecovered(t, []float64{0.03}, res.Params)

	assert.PanicsWithValue(t, channels.ErrParamCount, func() {
		newTestSolver(DefaultConfig(), 1).Fit1Q(target, angle, symbols, []float64{0.1, 0.2})
	})
}

func TestFit1Q_IsDeterministicForASeed(t *testing.T) {
	angle := synthesis.U3Angle{Theta: 0.9, Lambda: 0.4}
	symbols := []channels.Symbol{channels.Depolarization1Q, channels.PhaseDamping}
	target := synthesis.NoisySingleQubitProcess(angle, symbols, []float64{0.01, 0.03})

	a := newTestSolver(DefaultConfig(), 99).Fit1Q(target, angle, symbols, nil)
	b := newTestSolver(DefaultConfig(), 99).Fit1Q(target, angle, symbols, nil)

	assert.Equal(t, a.Params, b.Params)
	assert.Equal(t, a.Attempts, b.Attempts)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestFit1Q_ReturnsBestEffortWithoutConverging(t *testing.T) {
	// Amplitude damping alone cannot produce the off-diagonal structure of a
	// different rotation.
	target := synthesis.IdealU3Process(synthesis.U3Angle{Theta: math.Pi})
	cfg := DefaultConfig()
	cfg.MaxIter = 3

	res := newTestSolver(cfg, 5).Fit1Q(target, synthesis.U3Angle{}, []channels.Symbol{channels.AmplitudeDamping}, nil)

	assert.False(t, res.Converged)
	assert.Equal(t, 2*cfg.MaxIter, res.Attempts)
	assert.Len(t, res.Params, 1)
	assert.Greater(t, res.ResidualNorm, MaxResidualNorm)
}

func TestFit1Q_NoChannels(t *testing.T) {
	angle := synthesis.U3Angle{Theta: 0.2}
	res := newTestSolver(DefaultConfig(), 3).Fit1Q(synthesis.IdealU3Process(angle), angle, nil, nil)

	assert.True(t, res.Converged)
	assert.Empty(t, res.Params)
	assert.Equal(t, 0, res.Attempts)
}

func TestResult_Accepted(t *testing.T) {
	tests := []struct {
		name string
		r    Result
		want bool
	}{
		{"accepted", Result{Params: []float64{0.01}, ResidualNorm: 1e-9, SummedResidual: 1e-8, Status: StatusXtol}, true},
		{"residual norm", Result{Params: []float64{0.01}, ResidualNorm: 2e-4, SummedResidual: 1e-8, Status: StatusXtol}, false},
		{"summed residual", Result{Params: []float64{0.01}, ResidualNorm: 1e-9, SummedResidual: 1e-5, Status: StatusXtol}, false},
		{"status", Result{Params: []float64{0.01}, ResidualNorm: 1e-9, SummedResidual: 1e-8, Status: StatusNoReduction}, false},
		{"below precision floor", Result{Params: []float64{0.01, 1e-9}, ResidualNorm: 1e-9, SummedResidual: 1e-8, Status: StatusFtol}, false},
		{"negative", Result{Params: []float64{-0.01}, ResidualNorm: 1e-9, SummedResidual: 1e-8, Status: StatusFtol}, false},
		{"nan", Result{Params: []float64{math.NaN()}, ResidualNorm: 1e-9, SummedResidual: 1e-8, Status: StatusFtol}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.Accepted())
		})
	}
}

func TestPerturb(t *testing.T) {
	s := newTestSolver(DefaultConfig(), 11)
	ranges := []seedRange{{1e-8, 1e-1}, {1e-8, 1e-1}, {1e-8, 1e-1}}

	for i := 0; i < 100; i++ {
		out := s.perturb([]float64{-0.02, 1e-12, 0.05}, ranges)

		assert.InDelta(t, 0.02, out[0], 0.002+1e-15)
		assert.Greater(t, out[1], 0.0)
		assert.LessOrEqual(t, out[1], 0.1*1.1)
		assert.InDelta(t, 0.05, out[2], 0.005+1e-15)
	}
}

func TestFitNQ_RecoversParameters(t *testing.T) {
	angles := []synthesis.U3Angle{{Theta: 0.6, Phi: 0.2}, {Theta: 1.1, Lambda: -0.4}}
	layout := synthesis.Layout{
		{Qubits: []int{1}, Channels: []channels.Symbol{channels.AmplitudeDamping}},
		{Qubits: []int{0, 1}, Channels: []channels.Symbol{channels.Depolarization2Q}},
		{Qubits: []int{0}, Channels: []channels.Symbol{channels.Depolarization1Q}},
	}
	// Canonical order: qubit 0, pair (0,1), qubit 1.
	params := []float64{0.03, 0.02, 0.04}
	target := synthesis.NoisyNQubitProcess(2, angles, layout, params)

	cfg := DefaultConfig()
	cfg.MaxIter = 10
	cfg.Workers = 2
	res, err := newTestSolver(cfg, 21).FitNQ(context.Background(), target, 2, angles, layout, nil)

	require.NoError(t, err)
	require.True(t, res.Converged, "residual %g summed %g status %s", res.ResidualNorm, res.SummedResidual, res.Status)
	assertRecovered(t, params, res.Params)
	rebuilt := synthesis.NoisyNQubitProcess(2, angles, layout, res.Params)
	assert.LessOrEqual(t, cmat.MaxAbsDiff(target, rebuilt), 1e-6)
}

func TestFitNQ_WithGuessSkipsWarmStart(t *testing.T) {
	angles := []synthesis.U3Angle{{Theta: 0.3}, {Phi: 0.8}}
	layout := synthesis.Layout{{Qubits: []int{0, 1}, Channels: []channels.Symbol{channels.Depolarization2Q}}}
	target := synthesis.NoisyNQubitProcess(2, angles, layout, []float64{0.05})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := newTestSolver(DefaultConfig(), 4).FitNQ(ctx, target, 2, angles, layout, []float64{0.049})

	require.NoError(t, err)
	assert.True(t, res.Converged)
	assertRecovered(t, []float64{0.05}, res.Params)
}

func TestFitNQ_CancelledWarmStart(t *testing.T) {
	angles := []synthesis.U3Angle{{}, {}}
	layout := synthesis.Layout{{Qubits: []int{0}, Channels: []channels.Symbol{channels.PhaseDamping}}}
	target := synthesis.NoisyNQubitProcess(2, angles, layout, []float64{0.05})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestSolver(DefaultConfig(), 4).FitNQ(ctx, target, 2, angles, layout, nil)

	assert.ErrorIs(t, err, context.Canceled)
}
