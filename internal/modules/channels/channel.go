// Package channels defines the Kraus-list data model for noise channels and the
// catalog of canonical noise models built from scalar parameters.
package channels

import (
	"errors"

	"github.com/aristath/qnoise/pkg/cmat"
)

var (
	// ErrEmptyChannel is the panic value for a channel without Kraus operators.
	ErrEmptyChannel = errors.New("channels: channel has no Kraus operators")
	// ErrParamCount is the panic value when a parameter slice does not match a symbol.
	ErrParamCount = errors.New("channels: wrong number of parameters")
	// ErrQubitCount is the panic value when a qubit list does not match a symbol.
	ErrQubitCount = errors.New("channels: wrong number of qubits")
)

// KrausOperator is one term of a Kraus decomposition. Prob is the
// informational weight Tr(K†K)/d; it is already folded into Matrix.
type KrausOperator struct {
	Matrix *cmat.Matrix
	Qubits []int
	Prob   float64
}

// NoiseChannel is an ordered Kraus list acting on a single qubit set.
type NoiseChannel struct {
	Operators []KrausOperator
}

// NewNoiseChannel wraps bare Kraus matrices acting on qubits.
func NewNoiseChannel(qubits []int, matrices ...*cmat.Matrix) NoiseChannel {
	if len(matrices) == 0 {
		panic(ErrEmptyChannel)
	}
	ops := make([]KrausOperator, len(matrices))
	for i, m := range matrices {
		ops[i] = newOperator(qubits, m)
	}
	return NoiseChannel{Operators: ops}
}

// Qubits returns the qubit set shared by the operators.
func (c NoiseChannel) Qubits() []int {
	if len(c.Operators) == 0 {
		panic(ErrEmptyChannel)
	}
	return append([]int(nil), c.Operators[0].Qubits...)
}

// Matrices returns the Kraus matrices in order.
func (c NoiseChannel) Matrices() []*cmat.Matrix {
	out := make([]*cmat.Matrix, len(c.Operators))
	for i, op := range c.Operators {
		out[i] = op.Matrix
	}
	return out
}

// CompletenessError returns max |(Σ Kᵢ†Kᵢ − I)_jk|.
func (c NoiseChannel) CompletenessError() float64 {
	if len(c.Operators) == 0 {
		panic(ErrEmptyChannel)
	}
	d := c.Operators[0].Matrix.Size()
	sum := cmat.New(d, d, nil)
	for _, op := range c.Operators {
		sum.AddScaled(1, cmat.Mul(op.Matrix.Adjoint(), op.Matrix))
	}
	return cmat.MaxAbsDiff(sum, cmat.Identity(d))
}

// IsTracePreserving reports whether the completeness relation holds within tol.
func (c NoiseChannel) IsTracePreserving(tol float64) bool {
	return c.CompletenessError() <= tol
}
