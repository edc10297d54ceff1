package synthesis

import (
	"slices"

	"github.com/aristath/qnoise/internal/modules/channels"
	"github.com/aristath/qnoise/internal/modules/representation"
	"github.com/aristath/qnoise/pkg/cmat"
)

// Assignment places an ordered list of channels on one qubit or a qubit pair.
type Assignment struct {
	Qubits   []int             `msgpack:"qubits" json:"qubits"`
	Channels []channels.Symbol `msgpack:"channels" json:"channels"`
}

// Layout maps qubit sets to the channels acting on them.
type Layout []Assignment

// Canonical returns a copy of l with two-qubit keys in ascending order,
// assignments sorted lexicographically by qubit list, and an empty
// single-qubit assignment added for every qubit in [0, n) without one.
// It panics on keys that are out of range, repeated, larger than two qubits,
// or that carry channels of the wrong arity.
func (l Layout) Canonical(n int) Layout {
	out := make(Layout, 0, len(l)+n)
	seen := make(map[[2]int]bool, len(l))
	single := make([]bool, n)

	for _, a := range l {
		qubits := slices.Clone(a.Qubits)
		slices.Sort(qubits)
		if len(qubits) < 1 || len(qubits) > 2 {
			panic(ErrQubits)
		}
		validateQubits(qubits, n)
		for _, sym := range a.Channels {
			if sym.QubitCount() != len(qubits) {
				panic(ErrUnsupported)
			}
		}

		key := [2]int{qubits[0], -1}
		if len(qubits) == 2 {
			key[1] = qubits[1]
		} else {
			single[qubits[0]] = true
		}
		if seen[key] {
			panic(ErrQubits)
		}
		seen[key] = true
		out = append(out, Assignment{Qubits: qubits, Channels: slices.Clone(a.Channels)})
	}

	for q, ok := range single {
		if !ok {
			out = append(out, Assignment{Qubits: []int{q}})
		}
	}

	slices.SortFunc(out, func(a, b Assignment) int {
		return slices.Compare(a.Qubits, b.Qubits)
	})
	return out
}

// ParamCount is the number of real parameters the layout consumes.
func (l Layout) ParamCount() int {
	total := 0
	for _, a := range l {
		total += channels.TotalParams(a.Channels)
	}
	return total
}

// NoisyNQubitSuperoperator composes the noisy n-qubit gate in superoperator
// form. Every qubit gets its U3 rotation followed by its single-qubit
// channels; two-qubit channels follow in canonical layout order. params are
// consumed assignment by assignment in canonical order, and channel by
// channel within an assignment.
func NoisyNQubitSuperoperator(n int, angles []U3Angle, layout Layout, params []float64) *cmat.Matrix {
	if n < 1 || len(angles) != n {
		panic(ErrQubits)
	}
	canonical := layout.Canonical(n)
	if len(params) != canonical.ParamCount() {
		panic(channels.ErrParamCount)
	}

	s := cmat.Identity(1 << (2 * n))
	offset := 0
	for _, a := range canonical {
		count := channels.TotalParams(a.Channels)
		local := params[offset : offset+count]
		offset += count

		switch len(a.Qubits) {
		case 1:
			q := a.Qubits[0]
			p := NoisySingleQubitProcess(angles[q], a.Channels, local)
			s = cmat.Mul(representation.ProcessToSuperoperator(ExpandProcess(a.Qubits, n, p)), s)
		case 2:
			pair := [2]int{a.Qubits[0], a.Qubits[1]}
			for i := range a.Channels {
				p := Depolarizing2QProcess(pair, n, local[i])
				s = cmat.Mul(representation.ProcessToSuperoperator(p), s)
			}
		}
	}
	return s
}

// NoisyNQubitProcess is NoisyNQubitSuperoperator in process form.
func NoisyNQubitProcess(n int, angles []U3Angle, layout Layout, params []float64) *cmat.Matrix {
	return representation.SuperoperatorToProcess(NoisyNQubitSuperoperator(n, angles, layout, params))
}
