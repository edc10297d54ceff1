package cmat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_PanicsOnBadShape(t *testing.T) {
	assert.PanicsWithValue(t, ErrShape, func() { New(0, 2, nil) })
	assert.PanicsWithValue(t, ErrShape, func() { New(2, 2, make([]complex128, 3)) })
}

func TestMul(t *testing.T) {
	a := New(2, 2, []complex128{1, 1i, 0, 2})
	b := New(2, 2, []complex128{1, 0, 1i, 1})

	got := Mul(a, b)

	want := New(2, 2, []complex128{0, 1i, 2i, 2})
	assert.True(t, EqualApprox(want, got, 1e-15), "got %v", got.RawData())
}

func TestMul_ShapeMismatch(t *testing.T) {
	assert.PanicsWithValue(t, ErrShape, func() {
		Mul(New(2, 3, nil), New(2, 3, nil))
	})
}

func TestAdjointAndTranspose(t *testing.T) {
	m := New(2, 3, []complex128{1, 2i, 3, 4, 5, 6 - 1i})

	adj := m.Adjoint()
	r, c := adj.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, complex(0, -2), adj.At(1, 0))
	assert.Equal(t, complex(6, 1), adj.At(2, 1))

	tr := m.Transpose()
	assert.Equal(t, complex(0, 2), tr.At(1, 0))
}

func TestKron(t *testing.T) {
	x := New(2, 2, []complex128{0, 1, 1, 0})
	id := Identity(2)

	got := Kron(x, id)

	want := New(4, 4, []complex128{
		0, 0, 1, 0,
		0, 0, 0, 1,
		1, 0, 0, 0,
		0, 1, 0, 0,
	})
	assert.True(t, EqualApprox(want, got, 0))
	assert.True(t, EqualApprox(Kron(Kron(x, id), x), KronAll(x, id, x), 0))
}

func TestTraceAndHermitian(t *testing.T) {
	m := New(2, 2, []complex128{1, 1 - 1i, 1 + 1i, 3})
	assert.Equal(t, complex(4, 0), m.Trace())
	assert.True(t, m.IsHermitian(1e-15))

	m.Set(0, 1, 1+1i)
	assert.False(t, m.IsHermitian(1e-15))
	assert.False(t, New(2, 3, nil).IsHermitian(1))
}

func TestOuter(t *testing.T) {
	u := []complex128{1, 1i}
	got := Outer(u, u)
	want := New(2, 2, []complex128{1, -1i, 1i, 1})
	assert.True(t, EqualApprox(want, got, 0))
}

func reconstruct(n int, pairs []Eigenpair) *Matrix {
	out := New(n, n, nil)
	for _, p := range pairs {
		out.AddScaled(complex(p.Value, 0), Outer(p.Vector, p.Vector))
	}
	return out
}

func TestHermitianEigen(t *testing.T) {
	tests := []struct {
		name   string
		m      *Matrix
		values []float64
	}{
		{
			name:   "pauli y",
			m:      New(2, 2, []complex128{0, -1i, 1i, 0}),
			values: []float64{1, -1},
		},
		{
			name:   "identity is fully degenerate",
			m:      Identity(4),
			values: []float64{1, 1, 1, 1},
		},
		{
			name: "bell projector",
			m: Outer(
				[]complex128{complex(1/math.Sqrt2, 0), 0, 0, complex(0, 1/math.Sqrt2)},
				[]complex128{complex(1/math.Sqrt2, 0), 0, 0, complex(0, 1/math.Sqrt2)},
			),
			values: []float64{1, 0, 0, 0},
		},
		{
			name:   "general hermitian",
			m:      New(3, 3, []complex128{2, 1 - 1i, 0.5i, 1 + 1i, 3, 0, -0.5i, 0, 1}),
			values: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := tt.m.Size()
			pairs := HermitianEigen(tt.m)
			require.Len(t, pairs, n)

			for i := 1; i < len(pairs); i++ {
				assert.GreaterOrEqual(t, pairs[i-1].Value, pairs[i].Value)
			}
			if tt.values != nil {
				for i, v := range tt.values {
					assert.InDelta(t, v, pairs[i].Value, 1e-12)
				}
			}
			for i := range pairs {
				for j := range pairs {
					want := complex128(0)
					if i == j {
						want = 1
					}
					got := innerProduct(pairs[i].Vector, pairs[j].Vector)
					assert.InDelta(t, real(want), real(got), 1e-12)
					assert.InDelta(t, imag(want), imag(got), 1e-12)
				}
			}
			assert.LessOrEqual(t, MaxAbsDiff(tt.m, reconstruct(n, pairs)), 1e-12)
		})
	}
}

func TestSqrtPSD(t *testing.T) {
	m := New(2, 2, []complex128{2, 1i, -1i, 2})

	root := SqrtPSD(m)

	assert.True(t, root.IsHermitian(1e-12))
	assert.LessOrEqual(t, MaxAbsDiff(m, Mul(root, root)), 1e-12)
}

func TestSingularValues(t *testing.T) {
	m := New(2, 3, []complex128{3i, 0, 0, 0, -2, 0})

	sv := SingularValues(m)

	require.Len(t, sv, 2)
	assert.InDelta(t, 3, sv[0], 1e-12)
	assert.InDelta(t, 2, sv[1], 1e-12)
	assert.InDelta(t, 5, NuclearNorm(m), 1e-12)
}

func TestInnerProductAndNorm(t *testing.T) {
	u := []complex128{1i, 2}
	v := []complex128{3, 1 - 1i}

	// u†·v conjugates the left operand.
	assert.Equal(t, complex(2, -5), innerProduct(u, v))
	assert.InDelta(t, math.Sqrt(5), vecNorm(u), 1e-15)
	assert.Equal(t, 0.0, vecNorm([]complex128{0, 0}))
}
