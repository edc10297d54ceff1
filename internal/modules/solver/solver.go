// Package solver recovers noise-channel parameters from an observed process
// matrix by nonlinear least squares.
//
// A fit seeds a parameter vector, minimizes the residual between the
// synthesized and target process matrices with Levenberg–Marquardt, and
// retries from fresh random seeds until the acceptance criteria hold or the
// attempt budget runs out. An unconverged fit is not an error: the best
// vector found is returned together with its residuals.
package solver

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/aristath/qnoise/internal/modules/channels"
	"github.com/aristath/qnoise/internal/modules/synthesis"
	"github.com/aristath/qnoise/internal/utils"
	"github.com/aristath/qnoise/pkg/cmat"
	"github.com/aristath/qnoise/pkg/logger"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Acceptance thresholds.
const (
	MaxResidualNorm   = 1e-4
	MaxSummedResidual = 1e-6
	PrecisionFloor    = 1e-8
)

const (
	jitterFraction = 0.1
	// minpackTol is MINPACK's default ftol and xtol, √ε.
	minpackTol = 1.49012e-8
)

// Config bounds a fit.
type Config struct {
	// MaxIter is the number of seeded attempts, and separately the number of
	// refinement rounds.
	MaxIter int
	// MaxFev caps function evaluations per minimizer run; 0 means 200·(n+1)
	// for n parameters.
	MaxFev int
	Ftol   float64
	Xtol   float64
	Gtol   float64
	// Workers bounds the concurrent per-qubit warm-start fits of FitNQ.
	Workers int
}

// DefaultConfig returns MINPACK tolerances and 50 attempts.
func DefaultConfig() Config {
	return Config{
		MaxIter: 50,
		Ftol:    minpackTol,
		Xtol:    minpackTol,
		Gtol:    0,
		Workers: 4,
	}
}

// Result is the outcome of a fit.
type Result struct {
	RunID          uuid.UUID
	Params         []float64
	ResidualNorm   float64
	SummedResidual float64
	Status         Status
	Attempts       int
	Converged      bool
	Duration       time.Duration
}

// Accepted reports whether r meets every acceptance criterion.
func (r Result) Accepted() bool {
	if r.ResidualNorm >= MaxResidualNorm || r.SummedResidual >= MaxSummedResidual || r.Status > StatusMaxFev {
		return false
	}
	for _, p := range r.Params {
		if !(p > PrecisionFloor) {
			return false
		}
	}
	return true
}

// Solver runs fits. It owns its random generator and is not safe for
// concurrent use; give each goroutine its own Solver.
type Solver struct {
	cfg Config
	rng *rand.Rand
	src rand.Source
	log zerolog.Logger
}

// New creates a solver drawing seeds from src. A nil src uses a
// time-derived PCG source.
func New(cfg Config, src rand.Source, log zerolog.Logger) *Solver {
	if src == nil {
		now := uint64(time.Now().UnixNano())
		src = rand.NewPCG(now, now>>1|1)
	}
	if cfg.MaxIter < 1 {
		cfg.MaxIter = 1
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Solver{
		cfg: cfg,
		rng: rand.New(src),
		src: src,
		log: logger.Component(log, "solver"),
	}
}

// seedRange is the interval one parameter's random seeds are drawn from.
type seedRange struct {
	lo, hi float64
}

func rangesFor(symbols []channels.Symbol) []seedRange {
	var out []seedRange
	for _, s := range symbols {
		lo, hi := s.SeedRange()
		for i := 0; i < s.ParamCount(); i++ {
			out = append(out, seedRange{lo, hi})
		}
	}
	return out
}

func (s *Solver) draw(r seedRange) float64 {
	return distuv.Uniform{Min: r.lo, Max: r.hi, Src: s.src}.Rand()
}

func (s *Solver) drawAll(ranges []seedRange) []float64 {
	out := make([]float64, len(ranges))
	for i, r := range ranges {
		out[i] = s.draw(r)
	}
	return out
}

// perturb negates negative entries, redraws entries at or below the
// precision floor and scales everything by a factor in [0.9, 1.1].
func (s *Solver) perturb(x []float64, ranges []seedRange) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		if v < 0 {
			v = -v
		}
		if v <= PrecisionFloor {
			v = s.draw(ranges[i])
		}
		out[i] = v * (1 + jitterFraction*(2*s.rng.Float64()-1))
	}
	return out
}

// Fit1Q fits the parameters of symbols, applied after the rotation angle,
// to a single-qubit target process matrix. guess seeds the first attempt
// when non-nil.
func (s *Solver) Fit1Q(target *cmat.Matrix, angle synthesis.U3Angle, symbols []channels.Symbol, guess []float64) Result {
	model := func(params []float64) *cmat.Matrix {
		return synthesis.NoisySingleQubitProcess(angle, symbols, params)
	}
	return s.fit(target, model, rangesFor(symbols), guess)
}

// fit runs the seed, minimize and refine loops for one model.
func (s *Solver) fit(target *cmat.Matrix, model func([]float64) *cmat.Matrix, ranges []seedRange, guess []float64) Result {
	if guess != nil && len(guess) != len(ranges) {
		panic(channels.ErrParamCount)
	}

	runID := uuid.New()
	log := s.log.With().Str("run_id", runID.String()).Int("params", len(ranges)).Logger()
	timer := utils.NewTimer("solver.fit", log)
	metrics := utils.Metrics{OperationName: "solver.minimize"}

	finish := func(best Result, attempts int) Result {
		best.RunID = runID
		best.Attempts = attempts
		best.Converged = best.Accepted()
		metrics.LogMetrics(log)
		best.Duration = timer.StopWithFields(map[string]interface{}{
			"attempts":  attempts,
			"converged": best.Converged,
		})
		if best.Converged {
			log.Info().
				Int("attempts", attempts).
				Float64("residual_norm", best.ResidualNorm).
				Float64("summed_residual", best.SummedResidual).
				Msg("Fit converged")
		} else {
			log.Warn().
				Int("attempts", attempts).
				Float64("residual_norm", best.ResidualNorm).
				Float64("summed_residual", best.SummedResidual).
				Msg("Fit did not converge, returning best effort")
		}
		return best
	}

	if len(ranges) == 0 {
		norm, sum := residuals(target, model(nil))
		return finish(Result{Params: []float64{}, ResidualNorm: norm, SummedResidual: sum, Status: StatusFtol}, 0)
	}

	settings := lmSettings{Ftol: s.cfg.Ftol, Xtol: s.cfg.Xtol, Gtol: s.cfg.Gtol, MaxFev: s.cfg.MaxFev}
	if settings.MaxFev <= 0 {
		settings.MaxFev = 200 * (len(ranges) + 1)
	}
	run := func(x0 []float64) Result {
		start := time.Now()
		r := s.minimize(target, model, x0, settings)
		metrics.Record(time.Since(start))
		return r
	}

	var best Result
	attempts := 0
	for i := 0; i < s.cfg.MaxIter; i++ {
		x0 := guess
		if i > 0 || guess == nil {
			x0 = s.drawAll(ranges)
		}
		r := run(x0)
		attempts++
		log.Debug().
			Int("attempt", attempts).
			Str("status", r.Status.String()).
			Float64("residual_norm", r.ResidualNorm).
			Float64("summed_residual", r.SummedResidual).
			Msg("Minimizer attempt")

		if i == 0 || r.SummedResidual < best.SummedResidual {
			best = r
		}
		if r.Accepted() {
			return finish(r, attempts)
		}
	}

	for i := 0; i < s.cfg.MaxIter; i++ {
		r := run(s.perturb(best.Params, ranges))
		attempts++
		log.Debug().
			Int("attempt", attempts).
			Str("status", r.Status.String()).
			Float64("summed_residual", r.SummedResidual).
			Msg("Refinement attempt")

		if r.SummedResidual < best.SummedResidual {
			best = r
		}
		if r.Accepted() {
			return finish(r, attempts)
		}
	}

	return finish(best, attempts)
}

func (s *Solver) minimize(target *cmat.Matrix, model func([]float64) *cmat.Matrix, x0 []float64, settings lmSettings) Result {
	dim := target.Size()
	want := target.RawData()
	p := problem{
		m: 2 * dim * dim,
		f: func(dst, x []float64) {
			flattenResidual(dst, model(x).RawData(), want)
		},
	}

	lm := levenbergMarquardt(p, x0, settings)
	norm, sum := math.Inf(1), math.Inf(1)
	if lm.F != nil {
		norm, sum = floats.Norm(lm.F, 2), floats.Norm(lm.F, 1)
		if math.IsNaN(norm) {
			norm, sum = math.Inf(1), math.Inf(1)
		}
	}
	return Result{Params: lm.X, ResidualNorm: norm, SummedResidual: sum, Status: lm.Status}
}

// flattenResidual writes the real parts of got − want followed by the
// imaginary parts, both in row-major order.
func flattenResidual(dst []float64, got, want []complex128) {
	n := len(want)
	if len(got) != n {
		panic(cmat.ErrShape)
	}
	for i := range want {
		d := got[i] - want[i]
		dst[i] = real(d)
		dst[n+i] = imag(d)
	}
}

func residuals(target, got *cmat.Matrix) (norm, sum float64) {
	r := make([]float64, 2*len(target.RawData()))
	flattenResidual(r, got.RawData(), target.RawData())
	return floats.Norm(r, 2), floats.Norm(r, 1)
}
