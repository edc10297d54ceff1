// Package di provides dependency injection wiring and initialization.
package di

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/aristath/qnoise/internal/config"
	"github.com/aristath/qnoise/internal/modules/channels"
	"github.com/aristath/qnoise/internal/modules/interpolation"
	"github.com/aristath/qnoise/internal/modules/solver"
	"github.com/aristath/qnoise/internal/modules/synthesis"
	"github.com/aristath/qnoise/pkg/logger"
	"github.com/rs/zerolog"
)

// Wire validates cfg and returns a fully configured container
// This is the main entry point for dependency injection
func Wire(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to wire container: %w", err)
	}

	seed := cfg.Solver.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	container := &Container{
		Config:       cfg,
		Log:          log,
		SolverConfig: cfg.Solver.ToSolverConfig(),
		seeds:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}

	log.Info().
		Int("max_iter", container.SolverConfig.MaxIter).
		Int("maxfev", container.SolverConfig.MaxFev).
		Int("workers", container.SolverConfig.Workers).
		Bool("seeded", cfg.Solver.Seed != 0).
		Msg("Container wired")

	return container, nil
}

// NewLogger builds the process logger described by cfg.
func NewLogger(cfg *config.Config) zerolog.Logger {
	return logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
}

// NewSolver returns a solver with its own generator. With a configured seed
// the n-th solver of a container is the same on every run.
func (c *Container) NewSolver() *solver.Solver {
	c.mu.Lock()
	src := rand.NewPCG(c.seeds.Uint64(), c.seeds.Uint64())
	c.mu.Unlock()
	return solver.New(c.SolverConfig, src, c.Log)
}

// NewInterpolator fits an interpolator with the container's logger.
func (c *Container) NewInterpolator(params [][]float64, angles []synthesis.U3Angle, models []interpolation.Model) (*interpolation.Interpolator, error) {
	return interpolation.New(params, angles, models, c.Log)
}

// DefaultChannels returns a copy of the configured default channel list.
func (c *Container) DefaultChannels() []channels.Symbol {
	return append([]channels.Symbol(nil), c.Config.DefaultChannels...)
}
