package cmat

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrNoConvergence is the panic value when a gonum factorization fails.
var ErrNoConvergence = errors.New("cmat: factorization did not converge")

// pivotFloor is the smallest residual accepted while extracting complex
// eigenvectors from the real embedding. Valid candidates stay above 1/sqrt(k)
// for a k-fold degenerate eigenspace.
const pivotFloor = 1e-6

// Eigenpair is one eigenvalue of a Hermitian matrix with a unit eigenvector.
type Eigenpair struct {
	Value  float64
	Vector []complex128
}

// HermitianEigen decomposes the Hermitian matrix m. Pairs are returned in
// descending eigenvalue order and the vectors are orthonormal.
//
// m is symmetrized as (m + m†)/2 before factorization, so small
// anti-Hermitian noise is ignored.
func HermitianEigen(m *Matrix) []Eigenpair {
	n := m.Size()
	embed := mat.NewSymDense(2*n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			re := (real(m.At(i, j)) + real(m.At(j, i))) / 2
			im := (imag(m.At(i, j)) - imag(m.At(j, i))) / 2
			if j >= i {
				embed.SetSym(i, j, re)
				embed.SetSym(n+i, n+j, re)
			}
			embed.SetSym(i, n+j, -im)
		}
	}

	var es mat.EigenSym
	if ok := es.Factorize(embed, true); !ok {
		panic(ErrNoConvergence)
	}
	values := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	// Every eigenvalue of m appears twice in the embedding, with real
	// eigenvectors [x; y] and [-y; x] that map to the same complex line
	// x + iy. Pivoted Gram-Schmidt keeps one complex vector per line.
	candidates := make([][]complex128, 2*n)
	for k := range candidates {
		z := make([]complex128, n)
		for i := 0; i < n; i++ {
			z[i] = complex(vecs.At(i, k), vecs.At(n+i, k))
		}
		candidates[k] = z
	}
	remaining := make([]int, 2*n)
	for k := range remaining {
		remaining[k] = k
	}

	pairs := make([]Eigenpair, 0, n)
	for len(pairs) < n && len(remaining) > 0 {
		best, bestNorm := -1, 0.0
		for idx, k := range remaining {
			if nrm := vecNorm(candidates[k]); nrm > bestNorm {
				best, bestNorm = idx, nrm
			}
		}
		if bestNorm < pivotFloor {
			break
		}
		k := remaining[best]
		remaining = append(remaining[:best], remaining[best+1:]...)

		q := candidates[k]
		for i := range q {
			q[i] /= complex(bestNorm, 0)
		}
		pairs = append(pairs, Eigenpair{Value: values[k], Vector: q})

		for _, r := range remaining {
			proj := innerProduct(q, candidates[r])
			for i := range candidates[r] {
				candidates[r][i] -= proj * q[i]
			}
		}
	}

	sort.SliceStable(pairs, func(a, b int) bool {
		return pairs[a].Value > pairs[b].Value
	})
	return pairs
}

// SqrtPSD returns the principal square root of a Hermitian positive
// semi-definite matrix. Negative eigenvalues from round-off are clamped to 0.
func SqrtPSD(m *Matrix) *Matrix {
	n := m.Size()
	out := New(n, n, nil)
	for _, p := range HermitianEigen(m) {
		if p.Value <= 0 {
			continue
		}
		out.AddScaled(complex(math.Sqrt(p.Value), 0), Outer(p.Vector, p.Vector))
	}
	return out
}

// SingularValues returns the singular values of m in descending order.
func SingularValues(m *Matrix) []float64 {
	r, c := m.Dims()
	embed := mat.NewDense(2*r, 2*c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			embed.Set(i, j, real(v))
			embed.Set(r+i, c+j, real(v))
			embed.Set(i, c+j, -imag(v))
			embed.Set(r+i, j, imag(v))
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(embed, mat.SVDNone); !ok {
		panic(ErrNoConvergence)
	}
	doubled := svd.Values(nil)

	// The embedding duplicates every singular value.
	k := r
	if c < k {
		k = c
	}
	out := make([]float64, k)
	for i := range out {
		out[i] = doubled[2*i]
	}
	return out
}

// NuclearNorm returns the sum of singular values (trace norm).
func NuclearNorm(m *Matrix) float64 {
	return floats.Sum(SingularValues(m))
}

// innerProduct returns u†·v.
func innerProduct(u, v []complex128) complex128 {
	return cblas128.Dotc(vector(u), vector(v))
}

func vecNorm(v []complex128) float64 {
	return cblas128.Nrm2(vector(v))
}

func vector(v []complex128) cblas128.Vector {
	return cblas128.Vector{N: len(v), Inc: 1, Data: v}
}
