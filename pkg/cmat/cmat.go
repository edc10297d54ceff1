// Package cmat provides dense complex matrices for quantum channel arithmetic.
//
// Storage is row-major throughout. Products are delegated to gonum's cblas128
// implementation; the spectral routines in spectral.go work on the real
// 2n×2n embedding [[Re, -Im], [Im, Re]] so that gonum/mat can factorize them.
//
// Shape violations are programming errors and panic with ErrShape, the same
// way gonum/mat panics with mat.ErrShape.
package cmat

import (
	"errors"
	"math/cmplx"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
)

var (
	// ErrShape is the panic value for mismatched or invalid dimensions.
	ErrShape = errors.New("cmat: dimension mismatch")
	// ErrSquare is the panic value when a square matrix is required.
	ErrSquare = errors.New("cmat: matrix is not square")
)

// Matrix is a dense row-major complex matrix.
type Matrix struct {
	rows, cols int
	data       []complex128
}

// New creates a rows×cols matrix backed by data. A nil data slice allocates a
// zero matrix; otherwise len(data) must equal rows*cols and the slice is used
// without copying.
func New(rows, cols int, data []complex128) *Matrix {
	if rows <= 0 || cols <= 0 {
		panic(ErrShape)
	}
	if data == nil {
		data = make([]complex128, rows*cols)
	} else if len(data) != rows*cols {
		panic(ErrShape)
	}
	return &Matrix{rows: rows, cols: cols, data: data}
}

// Identity returns the n×n identity matrix.
func Identity(n int) *Matrix {
	m := New(n, n, nil)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m
}

// Dims returns the number of rows and columns.
func (m *Matrix) Dims() (int, int) {
	return m.rows, m.cols
}

// Size returns the dimension of a square matrix and panics otherwise.
func (m *Matrix) Size() int {
	if m.rows != m.cols {
		panic(ErrSquare)
	}
	return m.rows
}

// At returns element (i, j).
func (m *Matrix) At(i, j int) complex128 {
	return m.data[i*m.cols+j]
}

// Set sets element (i, j).
func (m *Matrix) Set(i, j int, v complex128) {
	m.data[i*m.cols+j] = v
}

// RawData returns the row-major backing slice. Mutating it mutates m.
func (m *Matrix) RawData() []complex128 {
	return m.data
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	data := make([]complex128, len(m.data))
	copy(data, m.data)
	return &Matrix{rows: m.rows, cols: m.cols, data: data}
}

func (m *Matrix) general() cblas128.General {
	return cblas128.General{Rows: m.rows, Cols: m.cols, Stride: m.cols, Data: m.data}
}

// Mul returns the product a·b.
func Mul(a, b *Matrix) *Matrix {
	if a.cols != b.rows {
		panic(ErrShape)
	}
	c := New(a.rows, b.cols, nil)
	cblas128.Gemm(blas.NoTrans, blas.NoTrans, 1, a.general(), b.general(), 0, c.general())
	return c
}

// MulChain returns the left-to-right product of ms.
func MulChain(ms ...*Matrix) *Matrix {
	if len(ms) == 0 {
		panic(ErrShape)
	}
	out := ms[0]
	for _, m := range ms[1:] {
		out = Mul(out, m)
	}
	return out
}

// Adjoint returns the conjugate transpose.
func (m *Matrix) Adjoint() *Matrix {
	out := New(m.cols, m.rows, nil)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out.data[j*m.rows+i] = cmplx.Conj(m.data[i*m.cols+j])
		}
	}
	return out
}

// Transpose returns the plain transpose.
func (m *Matrix) Transpose() *Matrix {
	out := New(m.cols, m.rows, nil)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out.data[j*m.rows+i] = m.data[i*m.cols+j]
		}
	}
	return out
}

// Add returns a + b.
func Add(a, b *Matrix) *Matrix {
	sameShape(a, b)
	out := a.Clone()
	for i, v := range b.data {
		out.data[i] += v
	}
	return out
}

// Sub returns a − b.
func Sub(a, b *Matrix) *Matrix {
	sameShape(a, b)
	out := a.Clone()
	for i, v := range b.data {
		out.data[i] -= v
	}
	return out
}

// Scale returns alpha·m.
func Scale(alpha complex128, m *Matrix) *Matrix {
	out := m.Clone()
	for i := range out.data {
		out.data[i] *= alpha
	}
	return out
}

// AddScaled accumulates alpha·b into m in place.
func (m *Matrix) AddScaled(alpha complex128, b *Matrix) {
	sameShape(m, b)
	for i, v := range b.data {
		m.data[i] += alpha * v
	}
}

// Kron returns the Kronecker product a⊗b.
func Kron(a, b *Matrix) *Matrix {
	out := New(a.rows*b.rows, a.cols*b.cols, nil)
	for i := 0; i < a.rows; i++ {
		for j := 0; j < a.cols; j++ {
			aij := a.data[i*a.cols+j]
			if aij == 0 {
				continue
			}
			for k := 0; k < b.rows; k++ {
				row := (i*b.rows + k) * out.cols
				for l := 0; l < b.cols; l++ {
					out.data[row+j*b.cols+l] = aij * b.data[k*b.cols+l]
				}
			}
		}
	}
	return out
}

// KronAll returns the left-to-right Kronecker product of ms.
func KronAll(ms ...*Matrix) *Matrix {
	if len(ms) == 0 {
		panic(ErrShape)
	}
	out := ms[0]
	for _, m := range ms[1:] {
		out = Kron(out, m)
	}
	return out
}

// Outer returns u·v†.
func Outer(u, v []complex128) *Matrix {
	out := New(len(u), len(v), nil)
	for i, ui := range u {
		for j, vj := range v {
			out.data[i*len(v)+j] = ui * cmplx.Conj(vj)
		}
	}
	return out
}

// Trace returns the sum of the diagonal.
func (m *Matrix) Trace() complex128 {
	n := m.Size()
	var tr complex128
	for i := 0; i < n; i++ {
		tr += m.data[i*n+i]
	}
	return tr
}

// MaxAbs returns the largest element modulus.
func (m *Matrix) MaxAbs() float64 {
	var max float64
	for _, v := range m.data {
		if a := cmplx.Abs(v); a > max {
			max = a
		}
	}
	return max
}

// IsZero reports whether every element has modulus at most tol.
func (m *Matrix) IsZero(tol float64) bool {
	return m.MaxAbs() <= tol
}

// IsHermitian reports whether m equals its adjoint element-wise within tol.
func (m *Matrix) IsHermitian(tol float64) bool {
	if m.rows != m.cols {
		return false
	}
	n := m.rows
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if cmplx.Abs(m.data[i*n+j]-cmplx.Conj(m.data[j*n+i])) > tol {
				return false
			}
		}
	}
	return true
}

// MaxAbsDiff returns max |a_ij − b_ij|.
func MaxAbsDiff(a, b *Matrix) float64 {
	sameShape(a, b)
	var max float64
	for i, v := range a.data {
		if d := cmplx.Abs(v - b.data[i]); d > max {
			max = d
		}
	}
	return max
}

// EqualApprox reports whether a and b have the same shape and agree element-wise within tol.
func EqualApprox(a, b *Matrix, tol float64) bool {
	if a.rows != b.rows || a.cols != b.cols {
		return false
	}
	return MaxAbsDiff(a, b) <= tol
}

func sameShape(a, b *Matrix) {
	if a.rows != b.rows || a.cols != b.cols {
		panic(ErrShape)
	}
}
