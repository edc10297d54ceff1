package channels

import (
	"math/cmplx"

	"github.com/aristath/qnoise/internal/modules/basis"
	"github.com/aristath/qnoise/pkg/cmat"
)

// ZeroKrausTol is the modulus below which a candidate Kraus matrix is treated
// as all-zero and omitted.
const ZeroKrausTol = 1e-12

// depolarizing2QMaxParam is 4^2/(4^2-1): the two-qubit identity weight is
// 1 - p/depolarizing2QMaxParam, unlike the single-qubit 1 - p.
const depolarizing2QMaxParam = 16.0 / 15.0

// csqrt is the principal complex square root of a real number. Out-of-range
// parameters therefore give imaginary weights instead of NaN, which keeps the
// solver's model function total.
func csqrt(x float64) complex128 {
	return cmplx.Sqrt(complex(x, 0))
}

// newOperator derives the informational probability Tr(K†K)/d.
func newOperator(qubits []int, m *cmat.Matrix) KrausOperator {
	d := m.Size()
	p := real(cmat.Mul(m.Adjoint(), m).Trace()) / float64(d)
	return KrausOperator{Matrix: m, Qubits: append([]int(nil), qubits...), Prob: p}
}

// DepolarizingChannel returns the single-qubit depolarizing channel: identity
// weight √(1−p) and each of X, Y, Z weight √(p/3).
func DepolarizingChannel(qubit int, p float64) NoiseChannel {
	qubits := []int{qubit}
	ops := []KrausOperator{newOperator(qubits, cmat.Scale(csqrt(1-p), basis.Pauli(basis.I)))}
	for _, k := range []int{basis.X, basis.Y, basis.Z} {
		ops = append(ops, newOperator(qubits, cmat.Scale(csqrt(p/3), basis.Pauli(k))))
	}
	return NoiseChannel{Operators: ops}
}

// Depolarizing2QChannel returns the two-qubit depolarizing channel on
// (q0, q1): identity weight √(1 − 15p/16) and each of the 15 non-identity
// Pauli pairs weight √(p/16).
func Depolarizing2QChannel(q0, q1 int, p float64) NoiseChannel {
	qubits := []int{q0, q1}
	ops := make([]KrausOperator, 0, 16)
	for k := 0; k < 16; k++ {
		w := csqrt(p / 16)
		if k == 0 {
			w = csqrt(1 - p/depolarizing2QMaxParam)
		}
		ops = append(ops, newOperator(qubits, cmat.Scale(w, basis.PauliString(basis.Digits(k, 2)))))
	}
	return NoiseChannel{Operators: ops}
}

// AmplitudeDampingChannel returns relaxation to |0⟩ with rate γ.
func AmplitudeDampingChannel(qubit int, gamma float64) NoiseChannel {
	qubits := []int{qubit}
	return NoiseChannel{Operators: []KrausOperator{
		newOperator(qubits, cmat.New(2, 2, []complex128{1, 0, 0, csqrt(1 - gamma)})),
		newOperator(qubits, cmat.New(2, 2, []complex128{0, csqrt(gamma), 0, 0})),
	}}
}

// PhaseDampingChannel returns pure dephasing with rate γ.
func PhaseDampingChannel(qubit int, gamma float64) NoiseChannel {
	qubits := []int{qubit}
	return NoiseChannel{Operators: []KrausOperator{
		newOperator(qubits, cmat.New(2, 2, []complex128{1, 0, 0, csqrt(1 - gamma)})),
		newOperator(qubits, cmat.New(2, 2, []complex128{0, 0, 0, csqrt(gamma)})),
	}}
}

// GeneralizedPhaseAmplitudeDampingChannel combines amplitude damping (amp) and
// phase damping (phase) for a qubit whose steady state has excited population
// pe. Three terms relax towards |0⟩ with weight √(1−pe) and three towards |1⟩
// with weight √pe; all-zero terms are dropped, so the result has between one
// and six operators.
func GeneralizedPhaseAmplitudeDampingChannel(qubit int, pe, amp, phase float64) NoiseChannel {
	qubits := []int{qubit}
	w0, w1 := csqrt(1-pe), csqrt(pe)
	keep := csqrt(1 - amp - phase)
	a, b := csqrt(amp), csqrt(phase)

	candidates := []*cmat.Matrix{
		cmat.Scale(w0, cmat.New(2, 2, []complex128{1, 0, 0, keep})),
		cmat.Scale(w0, cmat.New(2, 2, []complex128{0, a, 0, 0})),
		cmat.Scale(w0, cmat.New(2, 2, []complex128{0, 0, 0, b})),
		cmat.Scale(w1, cmat.New(2, 2, []complex128{keep, 0, 0, 1})),
		cmat.Scale(w1, cmat.New(2, 2, []complex128{0, 0, a, 0})),
		cmat.Scale(w1, cmat.New(2, 2, []complex128{b, 0, 0, 0})),
	}

	ops := make([]KrausOperator, 0, len(candidates))
	for _, m := range candidates {
		if m.IsZero(ZeroKrausTol) {
			continue
		}
		ops = append(ops, newOperator(qubits, m))
	}
	return NoiseChannel{Operators: ops}
}

// GeneralizedAmplitudeDampingChannel is GeneralizedPhaseAmplitudeDampingChannel
// with the phase rate fixed at 0.
func GeneralizedAmplitudeDampingChannel(qubit int, pe, amp float64) NoiseChannel {
	return GeneralizedPhaseAmplitudeDampingChannel(qubit, pe, amp, 0)
}
