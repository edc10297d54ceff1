package representation

import (
	"github.com/aristath/qnoise/internal/modules/basis"
	"github.com/aristath/qnoise/pkg/cmat"
)

// ApplyKraus returns Σ Kᵢ·ρ·Kᵢ†.
func ApplyKraus(kraus []*cmat.Matrix, rho *cmat.Matrix) *cmat.Matrix {
	if len(kraus) == 0 {
		panic(ErrEmptyKraus)
	}
	d := rho.Size()
	out := cmat.New(d, d, nil)
	for _, k := range kraus {
		out.AddScaled(1, cmat.MulChain(k, rho, k.Adjoint()))
	}
	return out
}

// ApplyChoi returns E(ρ) with E(ρ)[a,b] = Σᵢⱼ ρ[i,j]·C[i·d+a, j·d+b].
func ApplyChoi(c, rho *cmat.Matrix) *cmat.Matrix {
	d, _ := hilbertDim(c)
	if rho.Size() != d {
		panic(cmat.ErrShape)
	}
	out := cmat.New(d, d, nil)
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			rij := rho.At(i, j)
			if rij == 0 {
				continue
			}
			for a := 0; a < d; a++ {
				for b := 0; b < d; b++ {
					out.Set(a, b, out.At(a, b)+rij*c.At(i*d+a, j*d+b))
				}
			}
		}
	}
	return out
}

// ApplySuperoperator returns unvec(S·vec(ρ)) with column-stacked vectorization.
func ApplySuperoperator(s, rho *cmat.Matrix) *cmat.Matrix {
	d, _ := hilbertDim(s)
	if rho.Size() != d {
		panic(cmat.ErrShape)
	}
	vec := cmat.New(d*d, 1, nil)
	for row := 0; row < d; row++ {
		for col := 0; col < d; col++ {
			vec.Set(col*d+row, 0, rho.At(row, col))
		}
	}
	res := cmat.Mul(s, vec)
	out := cmat.New(d, d, nil)
	for row := 0; row < d; row++ {
		for col := 0; col < d; col++ {
			out.Set(row, col, res.At(col*d+row, 0))
		}
	}
	return out
}

// ApplyProcess returns Σᵢⱼ χ[i,j]·Pᵢ·ρ·Pⱼ† over the n-qubit Pauli strings.
func ApplyProcess(p, rho *cmat.Matrix) *cmat.Matrix {
	d, n := hilbertDim(p)
	if rho.Size() != d {
		panic(cmat.ErrShape)
	}
	dim := p.Size()
	paulis := make([]*cmat.Matrix, dim)
	left := make([]*cmat.Matrix, dim)
	for i := range paulis {
		paulis[i] = basis.PauliString(basis.Digits(i, n))
		left[i] = cmat.Mul(paulis[i], rho)
	}

	out := cmat.New(d, d, nil)
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			chi := p.At(i, j)
			if chi == 0 {
				continue
			}
			out.AddScaled(chi, cmat.Mul(left[i], paulis[j].Adjoint()))
		}
	}
	return out
}
