package interpolation

import (
	"fmt"
	"math"

	"github.com/aristath/qnoise/internal/modules/synthesis"
	"gonum.org/v1/gonum/floats"
)

// ModelKind selects the regression used for one parameter.
type ModelKind int

const (
	// Average stores the mean of the samples.
	Average ModelKind = iota
	// Linear fits c₀ + c₁θ + c₂φ + c₃λ.
	Linear
	// Polynomial fits every monomial θʲφᵏλˡ with j+k+l ≤ Degree.
	Polynomial
	// Exponential fits exp(c₀ + c₁θ + c₂φ + c₃λ) to strictly positive samples.
	Exponential
)

func (k ModelKind) String() string {
	switch k {
	case Average:
		return "average"
	case Linear:
		return "linear"
	case Polynomial:
		return "polynomial"
	case Exponential:
		return "exponential"
	default:
		return "unknown"
	}
}

// Model describes how to fit one parameter. Degree is only read for
// Polynomial.
type Model struct {
	Kind   ModelKind
	Degree int
}

// degree is the polynomial degree the model fits in log or linear space.
func (m Model) degree() (int, error) {
	switch m.Kind {
	case Average:
		return 0, nil
	case Linear, Exponential:
		return 1, nil
	case Polynomial:
		if m.Degree < 0 {
			return 0, fmt.Errorf("%w: negative polynomial degree %d", ErrUnknownModel, m.Degree)
		}
		return m.Degree, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownModel, int(m.Kind))
	}
}

// FittedModel is a fitted per-parameter model. For Linear, Polynomial and
// Exponential, Coefficients are ordered like monomials(Degree).
type FittedModel struct {
	Kind         ModelKind `msgpack:"kind"`
	Degree       int       `msgpack:"degree"`
	Coefficients []float64 `msgpack:"coefficients"`
}

// Evaluate returns the model's value at a.
func (f FittedModel) Evaluate(a synthesis.U3Angle) float64 {
	switch f.Kind {
	case Average:
		return f.Coefficients[0]
	case Linear, Polynomial:
		return floats.Dot(f.Coefficients, monomialRow(a, f.Degree))
	case Exponential:
		return math.Exp(floats.Dot(f.Coefficients, monomialRow(a, 1)))
	default:
		panic(ErrUnknownModel)
	}
}

func (f FittedModel) validate() error {
	d, err := Model{Kind: f.Kind, Degree: f.Degree}.degree()
	if err != nil {
		return err
	}
	want := 1
	if f.Kind != Average {
		want = len(monomials(d))
	}
	if len(f.Coefficients) != want {
		return fmt.Errorf("%w: %s model has %d coefficients, want %d", ErrShape, f.Kind, len(f.Coefficients), want)
	}
	return nil
}

// exponent holds the powers of θ, φ and λ in one monomial.
type exponent [3]int

// monomials lists every exponent with total degree ≤ d, by ascending total
// degree and then descending power of θ, then of φ.
func monomials(d int) []exponent {
	var out []exponent
	for total := 0; total <= d; total++ {
		for j := total; j >= 0; j-- {
			for k := total - j; k >= 0; k-- {
				out = append(out, exponent{j, k, total - j - k})
			}
		}
	}
	return out
}

func monomialRow(a synthesis.U3Angle, d int) []float64 {
	exps := monomials(d)
	row := make([]float64, len(exps))
	for i, e := range exps {
		row[i] = ipow(a.Theta, e[0]) * ipow(a.Phi, e[1]) * ipow(a.Lambda, e[2])
	}
	return row
}

func ipow(x float64, n int) float64 {
	out := 1.0
	for i := 0; i < n; i++ {
		out *= x
	}
	return out
}
