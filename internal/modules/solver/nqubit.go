package solver

import (
	"context"
	"math/rand/v2"

	"github.com/aristath/qnoise/internal/modules/synthesis"
	"github.com/aristath/qnoise/pkg/cmat"
	"golang.org/x/sync/errgroup"
)

// FitNQ fits the parameters of an n-qubit layout to target. Parameters are
// ordered as synthesis.NoisyNQubitProcess consumes them: canonical layout
// order, channel order within an assignment.
//
// Without a guess, every qubit with single-qubit channels is first fitted on
// its own against the partial trace of target; those fits run concurrently
// on Config.Workers goroutines, each with a generator seeded from s. Two-qubit
// parameters are seeded at random. The combined vector seeds the full fit.
//
// The only error is ctx's, when it is cancelled during the warm start.
func (s *Solver) FitNQ(ctx context.Context, target *cmat.Matrix, n int, angles []synthesis.U3Angle, layout synthesis.Layout, guess []float64) (Result, error) {
	canonical := layout.Canonical(n)
	var ranges []seedRange
	for _, a := range canonical {
		ranges = append(ranges, rangesFor(a.Channels)...)
	}

	if guess == nil && len(ranges) > 0 {
		warm, err := s.warmStart(ctx, target, n, angles, canonical)
		if err != nil {
			return Result{}, err
		}
		guess = warm
	}

	model := func(params []float64) *cmat.Matrix {
		return synthesis.NoisyNQubitProcess(n, angles, canonical, params)
	}
	return s.fit(target, model, ranges, guess), nil
}

// warmStart assembles a seed vector in canonical parameter order.
func (s *Solver) warmStart(ctx context.Context, target *cmat.Matrix, n int, angles []synthesis.U3Angle, canonical synthesis.Layout) ([]float64, error) {
	if len(angles) != n {
		panic(synthesis.ErrQubits)
	}

	type job struct {
		assignment synthesis.Assignment
		src        rand.Source
	}
	jobs := make([]job, len(canonical))
	for i, a := range canonical {
		jobs[i].assignment = a
		if len(a.Qubits) == 1 && len(a.Channels) > 0 {
			// Child seeds are drawn sequentially before any goroutine starts.
			jobs[i].src = rand.NewPCG(s.rng.Uint64(), s.rng.Uint64())
		}
	}

	local := make([][]float64, len(canonical))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, j := range jobs {
		if j.src == nil {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			q := j.assignment.Qubits[0]
			child := &Solver{
				cfg: s.cfg,
				rng: rand.New(j.src),
				src: j.src,
				log: s.log.With().Int("warm_start_qubit", q).Logger(),
			}
			reduced := synthesis.PartialTraceKeep(target, []int{q})
			local[i] = child.Fit1Q(reduced, angles[q], j.assignment.Channels, nil).Params
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []float64
	for i, a := range canonical {
		if local[i] != nil {
			out = append(out, local[i]...)
			continue
		}
		for _, r := range rangesFor(a.Channels) {
			out = append(out, s.draw(r))
		}
	}
	s.log.Debug().Floats64("warm_start", out).Msg("Warm start assembled")
	return out, nil
}
