// Package basis builds the fixed change of basis between the computational
// operator basis and the n-qubit tensor-product Pauli basis.
//
// Pauli indices are base-4 digit strings of length n with the most
// significant digit first; digit q selects the Pauli acting on qubit q
// (0=I, 1=X, 2=Y, 3=Z), so qubit 0 is the left-most Kronecker factor.
package basis

import (
	"errors"
	"math/bits"

	"github.com/aristath/qnoise/pkg/cmat"
)

// ErrDimension is the panic value for a dimension that is not 4^n (or 2^n
// where a Hilbert-space dimension is expected).
var ErrDimension = errors.New("basis: dimension is not a power of the qubit base")

// Pauli matrix indices.
const (
	I = iota
	X
	Y
	Z
)

// Pauli returns the single-qubit Pauli matrix with index k.
func Pauli(k int) *cmat.Matrix {
	switch k {
	case I:
		return cmat.Identity(2)
	case X:
		return cmat.New(2, 2, []complex128{0, 1, 1, 0})
	case Y:
		return cmat.New(2, 2, []complex128{0, -1i, 1i, 0})
	case Z:
		return cmat.New(2, 2, []complex128{1, 0, 0, -1})
	default:
		panic(ErrDimension)
	}
}

// PauliString returns the tensor product of the Paulis named by digits.
func PauliString(digits []int) *cmat.Matrix {
	out := Pauli(digits[0])
	for _, d := range digits[1:] {
		out = cmat.Kron(out, Pauli(d))
	}
	return out
}

// Digits decomposes index into n base-4 digits, most significant first.
func Digits(index, n int) []int {
	digits := make([]int, n)
	for q := n - 1; q >= 0; q-- {
		digits[q] = index % 4
		index /= 4
	}
	return digits
}

// Index is the inverse of Digits.
func Index(digits []int) int {
	index := 0
	for _, d := range digits {
		index = index*4 + d
	}
	return index
}

// Place returns the weight of qubit q's digit in an n-qubit Pauli index.
func Place(q, n int) int {
	return 1 << (2 * (n - 1 - q))
}

// QubitsForPauliDim returns n for a 4^n-dimensional operator space.
func QubitsForPauliDim(dim int) int {
	if dim <= 0 || dim&(dim-1) != 0 || bits.TrailingZeros(uint(dim))%2 != 0 {
		panic(ErrDimension)
	}
	return bits.TrailingZeros(uint(dim)) / 2
}

// QubitsForHilbertDim returns n for a 2^n-dimensional state space.
func QubitsForHilbertDim(dim int) int {
	if dim <= 0 || dim&(dim-1) != 0 {
		panic(ErrDimension)
	}
	return bits.TrailingZeros(uint(dim))
}

// ComputationalToPauli returns the 4^n×4^n matrix T whose i-th row is the
// row-major flattening of the i-th n-qubit Pauli string. T·T† = 2^n·I.
func ComputationalToPauli(n int) *cmat.Matrix {
	if n <= 0 {
		panic(ErrDimension)
	}
	dim := 1 << (2 * n)
	t := cmat.New(dim, dim, nil)
	for i := 0; i < dim; i++ {
		copy(t.RawData()[i*dim:(i+1)*dim], PauliString(Digits(i, n)).RawData())
	}
	return t
}
