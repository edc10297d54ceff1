// Package representation converts quantum channels between their Kraus-list,
// Choi, superoperator and Pauli process-matrix forms.
//
// Conventions:
//   - Choi: C = Σᵢ (I⊗Kᵢ)·Ω·(I⊗Kᵢ)† with Ω = e·e†, e = Σ|i,i⟩, unnormalized.
//   - Superoperator: acts on the column-stacked vec(ρ), index col·d + row.
//   - Process: χ with C = T†·χ·T for T = basis.ComputationalToPauli(n).
//   - Kraus from Choi eigenvectors: column-major reshape, K[a,i] = √λ·v[i·d+a].
//
// Every function is pure. Malformed input (non-4^n dimension, empty Kraus
// list, mismatched shapes) is a programming error and panics.
package representation

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/aristath/qnoise/internal/modules/basis"
	"github.com/aristath/qnoise/pkg/cmat"
)

// EigenDropTol is the eigenvalue modulus at or below which ChoiToKraus omits
// the corresponding Kraus operator.
const EigenDropTol = 1e-14

// ErrEmptyKraus is the panic value for an empty Kraus list.
var ErrEmptyKraus = errors.New("representation: empty Kraus list")

// hilbertDim returns d for a d²×d² representation matrix.
func hilbertDim(m *cmat.Matrix) (d, n int) {
	n = basis.QubitsForPauliDim(m.Size())
	return 1 << n, n
}

// ProcessToChoi returns T†·P·T.
func ProcessToChoi(p *cmat.Matrix) *cmat.Matrix {
	_, n := hilbertDim(p)
	t := basis.ComputationalToPauli(n)
	return cmat.MulChain(t.Adjoint(), p, t)
}

// ChoiToProcess returns (1/4^n)·T·C·T†.
func ChoiToProcess(c *cmat.Matrix) *cmat.Matrix {
	_, n := hilbertDim(c)
	t := basis.ComputationalToPauli(n)
	return cmat.Scale(complex(1/float64(c.Size()), 0), cmat.MulChain(t, c, t.Adjoint()))
}

// ChoiToSuperoperator reshuffles C into S with
// S[(c mod d)·d + (r mod d), (c div d)·d + (r div d)] = C[r, c].
func ChoiToSuperoperator(c *cmat.Matrix) *cmat.Matrix {
	d, _ := hilbertDim(c)
	dim := c.Size()
	s := cmat.New(dim, dim, nil)
	for r := 0; r < dim; r++ {
		for col := 0; col < dim; col++ {
			s.Set((col%d)*d+r%d, (col/d)*d+r/d, c.At(r, col))
		}
	}
	return s
}

// SuperoperatorToChoi is the exact inverse of ChoiToSuperoperator.
func SuperoperatorToChoi(s *cmat.Matrix) *cmat.Matrix {
	d, _ := hilbertDim(s)
	dim := s.Size()
	c := cmat.New(dim, dim, nil)
	for r := 0; r < dim; r++ {
		for col := 0; col < dim; col++ {
			c.Set(r, col, s.At((col%d)*d+r%d, (col/d)*d+r/d))
		}
	}
	return c
}

// ChoiToKraus eigendecomposes C and emits √λ·reshape(v) for every eigenpair
// with |λ| > EigenDropTol, largest eigenvalue first. Degenerate channels yield
// fewer than 4^n operators.
func ChoiToKraus(c *cmat.Matrix) []*cmat.Matrix {
	d, _ := hilbertDim(c)
	var out []*cmat.Matrix
	for _, pair := range cmat.HermitianEigen(c) {
		if math.Abs(pair.Value) <= EigenDropTol {
			continue
		}
		w := cmplx.Sqrt(complex(pair.Value, 0))
		k := cmat.New(d, d, nil)
		for i := 0; i < d; i++ {
			for a := 0; a < d; a++ {
				k.Set(a, i, w*pair.Vector[i*d+a])
			}
		}
		out = append(out, k)
	}
	return out
}

// KrausToChoi sums (I⊗Kᵢ)·Ω·(I⊗Kᵢ)† over the Kraus list.
func KrausToChoi(kraus []*cmat.Matrix) *cmat.Matrix {
	if len(kraus) == 0 {
		panic(ErrEmptyKraus)
	}
	d := kraus[0].Size()
	basis.QubitsForHilbertDim(d)

	e := cmat.New(d*d, 1, nil)
	for i := 0; i < d; i++ {
		e.Set(i*d+i, 0, 1)
	}
	omega := cmat.Mul(e, e.Adjoint())
	id := cmat.Identity(d)

	choi := cmat.New(d*d, d*d, nil)
	for _, k := range kraus {
		lifted := cmat.Kron(id, k)
		choi.AddScaled(1, cmat.MulChain(lifted, omega, lifted.Adjoint()))
	}
	return choi
}

// ProcessToSuperoperator chains ProcessToChoi and ChoiToSuperoperator.
func ProcessToSuperoperator(p *cmat.Matrix) *cmat.Matrix {
	return ChoiToSuperoperator(ProcessToChoi(p))
}

// SuperoperatorToProcess chains SuperoperatorToChoi and ChoiToProcess.
func SuperoperatorToProcess(s *cmat.Matrix) *cmat.Matrix {
	return ChoiToProcess(SuperoperatorToChoi(s))
}

// ProcessToKraus chains ProcessToChoi and ChoiToKraus.
func ProcessToKraus(p *cmat.Matrix) []*cmat.Matrix {
	return ChoiToKraus(ProcessToChoi(p))
}

// KrausToProcess chains KrausToChoi and ChoiToProcess.
func KrausToProcess(kraus []*cmat.Matrix) *cmat.Matrix {
	return ChoiToProcess(KrausToChoi(kraus))
}

// SuperoperatorToKraus chains SuperoperatorToChoi and ChoiToKraus.
func SuperoperatorToKraus(s *cmat.Matrix) []*cmat.Matrix {
	return ChoiToKraus(SuperoperatorToChoi(s))
}

// KrausToSuperoperator chains KrausToChoi and ChoiToSuperoperator.
func KrausToSuperoperator(kraus []*cmat.Matrix) *cmat.Matrix {
	return ChoiToSuperoperator(KrausToChoi(kraus))
}

// IdentityProcess returns the process matrix of the n-qubit identity channel:
// a single 1 at the all-identity Pauli entry.
func IdentityProcess(n int) *cmat.Matrix {
	dim := 1 << (2 * n)
	p := cmat.New(dim, dim, nil)
	p.Set(0, 0, 1)
	return p
}

// IdentityChoi returns Ω for the n-qubit identity channel.
func IdentityChoi(n int) *cmat.Matrix {
	return KrausToChoi([]*cmat.Matrix{cmat.Identity(1 << n)})
}
