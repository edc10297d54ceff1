/**
 * Package di provides dependency injection type definitions.
 *
 * This package defines the Container type which holds the configured logger
 * and the factories for solvers and interpolators. The Container is the single
 * source of truth for how those components are built.
 */
package di

import (
	"math/rand/v2"
	"sync"

	"github.com/aristath/qnoise/internal/config"
	"github.com/aristath/qnoise/internal/modules/solver"
	"github.com/rs/zerolog"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Log          zerolog.Logger
	SolverConfig solver.Config

	// seeds derives one independent source per solver. Guarded by mu so a
	// shared container can hand out solvers from several goroutines.
	mu    sync.Mutex
	seeds *rand.Rand
}
