package solver

import (
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Status reports why the minimizer stopped. The numbering follows MINPACK's
// lmdif info codes.
type Status int

const (
	// StatusImproperInput means the problem could not be started.
	StatusImproperInput Status = iota
	// StatusFtol means the relative reduction in the sum of squares is below Ftol.
	StatusFtol
	// StatusXtol means the relative step is below Xtol.
	StatusXtol
	// StatusFtolXtol means both StatusFtol and StatusXtol hold.
	StatusFtolXtol
	// StatusGtol means the gradient's infinity norm is below Gtol.
	StatusGtol
	// StatusMaxFev means the function evaluation budget is exhausted.
	StatusMaxFev
	// StatusNoReduction means no step could reduce the sum of squares.
	StatusNoReduction
)

func (s Status) String() string {
	switch s {
	case StatusImproperInput:
		return "improper_input"
	case StatusFtol:
		return "ftol"
	case StatusXtol:
		return "xtol"
	case StatusFtolXtol:
		return "ftol_xtol"
	case StatusGtol:
		return "gtol"
	case StatusMaxFev:
		return "maxfev"
	case StatusNoReduction:
		return "no_reduction"
	default:
		return "unknown"
	}
}

const (
	// jacobianStep is an absolute forward-difference step; probes stay
	// positive for every parameter above the precision floor.
	jacobianStep     = 1e-8
	initialDamping   = 1e-3
	maxDampingGrowth = 1e16
)

// problem is a nonlinear least-squares objective: minimize ‖f(x)‖² with
// f: ℝⁿ → ℝᵐ writing into dst.
type problem struct {
	f func(dst, x []float64)
	m int
}

type lmSettings struct {
	Ftol   float64
	Xtol   float64
	Gtol   float64
	MaxFev int
}

type lmResult struct {
	X           []float64
	F           []float64
	Status      Status
	Evaluations int
}

// levenbergMarquardt minimizes ‖f(x)‖² from x0 with a forward-difference
// Jacobian and Nielsen's damping update.
func levenbergMarquardt(p problem, x0 []float64, s lmSettings) lmResult {
	n := len(x0)
	if n == 0 || p.m < n || s.MaxFev <= 0 || s.Ftol < 0 || s.Xtol < 0 || s.Gtol < 0 {
		return lmResult{X: append([]float64(nil), x0...), Status: StatusImproperInput}
	}

	x := append([]float64(nil), x0...)
	f := make([]float64, p.m)
	p.f(f, x)
	nfev := 1
	cost := floats.Dot(f, f)
	if math.IsNaN(cost) || math.IsInf(cost, 0) {
		return lmResult{X: x, F: f, Status: StatusImproperInput, Evaluations: nfev}
	}

	jac := mat.NewDense(p.m, n, nil)
	var (
		jtj  mat.SymDense
		grad = mat.NewVecDense(n, nil)
		step = mat.NewVecDense(n, nil)
		xNew = make([]float64, n)
		fNew = make([]float64, p.m)
		mu   float64
		nu   = 2.0
	)

	result := func(status Status) lmResult {
		return lmResult{X: x, F: f, Status: status, Evaluations: nfev}
	}

	for first := true; ; first = false {
		if cost == 0 {
			return result(StatusFtol)
		}
		if nfev+n > s.MaxFev {
			return result(StatusMaxFev)
		}
		fd.Jacobian(jac, p.f, x, &fd.JacobianSettings{
			Formula:     fd.Forward,
			OriginValue: f,
			Step:        jacobianStep,
		})
		nfev += n

		jtj.SymOuterK(1, jac.T())
		grad.MulVec(jac.T(), mat.NewVecDense(p.m, f))
		if mat.Norm(grad, math.Inf(1)) <= s.Gtol {
			return result(StatusGtol)
		}

		if first {
			maxDiag := 0.0
			for i := 0; i < n; i++ {
				maxDiag = math.Max(maxDiag, jtj.At(i, i))
			}
			mu = initialDamping * maxDiag
			if mu == 0 {
				mu = initialDamping
			}
		}

		// Inner loop: raise the damping until a step reduces the cost.
		for {
			if !solveDamped(step, &jtj, grad, mu) {
				mu *= nu
				nu *= 2
				if nu > maxDampingGrowth {
					return result(StatusNoReduction)
				}
				continue
			}

			stepNorm := mat.Norm(step, 2)
			xtolHit := stepNorm <= s.Xtol*(floats.Norm(x, 2)+s.Xtol)

			if nfev >= s.MaxFev {
				return result(StatusMaxFev)
			}
			for i := range xNew {
				xNew[i] = x[i] + step.AtVec(i)
			}
			p.f(fNew, xNew)
			nfev++
			newCost := floats.Dot(fNew, fNew)

			// Predicted reduction of the linear model: hᵀ(μh − g).
			predicted := 0.0
			for i := 0; i < n; i++ {
				predicted += step.AtVec(i) * (mu*step.AtVec(i) - grad.AtVec(i))
			}
			actual := cost - newCost

			if actual > 0 && predicted > 0 && !math.IsNaN(newCost) {
				rho := actual / predicted
				ftolHit := actual <= s.Ftol*cost && predicted <= s.Ftol*cost

				copy(x, xNew)
				copy(f, fNew)
				cost = newCost
				mu *= math.Max(1.0/3, 1-math.Pow(2*rho-1, 3))
				nu = 2

				switch {
				case ftolHit && xtolHit:
					return result(StatusFtolXtol)
				case ftolHit:
					return result(StatusFtol)
				case xtolHit:
					return result(StatusXtol)
				}
				break
			}

			if xtolHit {
				return result(StatusXtol)
			}
			mu *= nu
			nu *= 2
			if nu > maxDampingGrowth {
				return result(StatusNoReduction)
			}
		}
	}
}

// solveDamped solves (JᵀJ + μI)·h = −g into dst. It reports false when the
// damped matrix is not numerically positive definite.
func solveDamped(dst *mat.VecDense, jtj *mat.SymDense, grad *mat.VecDense, mu float64) bool {
	n := jtj.SymmetricDim()
	damped := mat.NewSymDense(n, nil)
	damped.CopySym(jtj)
	for i := 0; i < n; i++ {
		damped.SetSym(i, i, damped.At(i, i)+mu)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(damped); !ok {
		return false
	}
	if err := chol.SolveVecTo(dst, grad); err != nil {
		return false
	}
	dst.ScaleVec(-1, dst)
	return true
}
