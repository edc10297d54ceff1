// Package synthesis composes ideal single-qubit rotations with catalog noise
// channels into noisy process matrices, and moves process matrices between
// local qubit registers and a larger n-qubit register.
//
// Channels are composed in superoperator form (S_total = S_k ⋯ S_1 · S_ideal)
// and converted back to the Pauli process matrix at the end.
package synthesis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/aristath/qnoise/internal/modules/basis"
	"github.com/aristath/qnoise/internal/modules/channels"
	"github.com/aristath/qnoise/internal/modules/representation"
	"github.com/aristath/qnoise/pkg/cmat"
)

var (
	// ErrQubits is the panic value for invalid or repeated qubit indices.
	ErrQubits = errors.New("synthesis: invalid qubit indices")
	// ErrUnsupported is the panic value for a channel placed on a qubit set it cannot act on.
	ErrUnsupported = errors.New("synthesis: channel not supported on this qubit set")
)

// U3Angle parameterizes a single-qubit rotation.
type U3Angle struct {
	Theta  float64 `msgpack:"theta" json:"theta"`
	Phi    float64 `msgpack:"phi" json:"phi"`
	Lambda float64 `msgpack:"lambda" json:"lambda"`
}

// U3Unitary returns [[c, −e^{iλ}s], [e^{iφ}s, e^{i(φ+λ)}c]] with c, s the
// cosine and sine of θ/2.
func U3Unitary(a U3Angle) *cmat.Matrix {
	c, s := math.Cos(a.Theta/2), math.Sin(a.Theta/2)
	return cmat.New(2, 2, []complex128{
		complex(c, 0), -cmplx.Exp(complex(0, a.Lambda)) * complex(s, 0),
		cmplx.Exp(complex(0, a.Phi)) * complex(s, 0), cmplx.Exp(complex(0, a.Phi+a.Lambda)) * complex(c, 0),
	})
}

// IdealU3Process returns the process matrix Uᵢ·conj(Uⱼ) of the ideal rotation,
// where U = Σ Uᵢ·Pᵢ over I, X, Y, Z.
func IdealU3Process(a U3Angle) *cmat.Matrix {
	c, s := math.Cos(a.Theta/2), math.Sin(a.Theta/2)
	eL := cmplx.Exp(complex(0, a.Lambda))
	eP := cmplx.Exp(complex(0, a.Phi))
	ePL := cmplx.Exp(complex(0, a.Phi+a.Lambda))
	cc, ss := complex(c, 0), complex(s, 0)

	amps := []complex128{
		(cc + ePL*cc) / 2,
		(eP*ss - eL*ss) / 2,
		1i * (-eL*ss - eP*ss) / 2,
		(cc - ePL*cc) / 2,
	}
	return cmat.Outer(amps, amps)
}

// NoisySingleQubitSuperoperator returns S_k ⋯ S_1 · S_ideal for the listed
// single-qubit channels, consuming params in list order.
func NoisySingleQubitSuperoperator(a U3Angle, symbols []channels.Symbol, params []float64) *cmat.Matrix {
	if len(params) != channels.TotalParams(symbols) {
		panic(channels.ErrParamCount)
	}
	s := representation.ProcessToSuperoperator(IdealU3Process(a))
	offset := 0
	for _, sym := range symbols {
		if sym.QubitCount() != 1 {
			panic(ErrUnsupported)
		}
		count := sym.ParamCount()
		ch := channels.Build(sym, []int{0}, params[offset:offset+count])
		offset += count
		s = cmat.Mul(representation.KrausToSuperoperator(ch.Matrices()), s)
	}
	return s
}

// NoisySingleQubitProcess is NoisySingleQubitSuperoperator in process form.
func NoisySingleQubitProcess(a U3Angle, symbols []channels.Symbol, params []float64) *cmat.Matrix {
	return representation.SuperoperatorToProcess(NoisySingleQubitSuperoperator(a, symbols, params))
}

// Depolarizing2QProcess returns the n-qubit process matrix of two-qubit
// depolarization on pair in closed form. The diagonal carries the squared
// Kraus weights of channels.Depolarizing2QChannel: 1 − 15p/16 at the
// all-identity entry and p/16 at the 15 entries where the pair carries a
// non-identity Pauli and every other qubit carries I. These are probabilities,
// not amplitudes, so a p fitted here is not comparable with one fitted against
// a diagonal of √(1 − 15p/16) and √(p/16).
func Depolarizing2QProcess(pair [2]int, n int, p float64) *cmat.Matrix {
	lo, hi := pair[0], pair[1]
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == hi || lo < 0 || hi >= n {
		panic(ErrQubits)
	}
	// Gaps count identity qubits between and to the right of the pair.
	midGap := hi - lo - 1
	rightGap := n - hi - 1
	placeHi := 1 << (2 * rightGap)
	placeLo := 1 << (2 * (rightGap + midGap + 1))

	dim := 1 << (2 * n)
	out := cmat.New(dim, dim, nil)
	out.Set(0, 0, complex(1-15*p/16, 0))
	for k := 1; k < 16; k++ {
		digits := basis.Digits(k, 2)
		idx := digits[0]*placeLo + digits[1]*placeHi
		out.Set(idx, idx, complex(p/16, 0))
	}
	return out
}

func validateQubits(qubits []int, n int) {
	if len(qubits) == 0 || len(qubits) > n {
		panic(ErrQubits)
	}
	seen := make(map[int]bool, len(qubits))
	for _, q := range qubits {
		if q < 0 || q >= n || seen[q] {
			panic(ErrQubits)
		}
		seen[q] = true
	}
}

func contiguous(qubits []int) bool {
	for i := 1; i < len(qubits); i++ {
		if qubits[i] != qubits[0]+i {
			return false
		}
	}
	return true
}

// ExpandProcess embeds a local process matrix acting on qubits into an
// n-qubit register, with the identity channel on every other qubit. The
// local matrix's digit t belongs to qubits[t].
func ExpandProcess(qubits []int, n int, local *cmat.Matrix) *cmat.Matrix {
	validateQubits(qubits, n)
	if basis.QubitsForPauliDim(local.Size()) != len(qubits) {
		panic(cmat.ErrShape)
	}
	if !contiguous(qubits) {
		return expandByDigits(qubits, n, local)
	}

	out := local
	if below := qubits[0]; below > 0 {
		out = cmat.Kron(representation.IdentityProcess(below), out)
	}
	if above := n - qubits[0] - len(qubits); above > 0 {
		out = cmat.Kron(out, representation.IdentityProcess(above))
	}
	return out
}

// expandByDigits places local[i,j] at the n-qubit indices whose digits on
// qubits match i and j and are I everywhere else.
func expandByDigits(qubits []int, n int, local *cmat.Matrix) *cmat.Matrix {
	dimL := local.Size()
	index := digitIndex(qubits, n)

	dim := 1 << (2 * n)
	out := cmat.New(dim, dim, nil)
	for i := 0; i < dimL; i++ {
		for j := 0; j < dimL; j++ {
			out.Set(index[i], index[j], local.At(i, j))
		}
	}
	return out
}

// ExpandSuperoperator converts a local superoperator to a process matrix,
// expands it onto the n-qubit register and converts back.
func ExpandSuperoperator(qubits []int, n int, local *cmat.Matrix) *cmat.Matrix {
	p := representation.SuperoperatorToProcess(local)
	return representation.ProcessToSuperoperator(ExpandProcess(qubits, n, p))
}
