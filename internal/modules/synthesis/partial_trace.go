package synthesis

import (
	"slices"

	"github.com/aristath/qnoise/internal/modules/basis"
	"github.com/aristath/qnoise/pkg/cmat"
)

// PartialTraceKeep reduces an n-qubit process matrix to the qubits in keep,
// summing χ[(i,t),(j,t)] over every Pauli string t on the traced qubits. The
// result's digit k belongs to keep[k].
func PartialTraceKeep(p *cmat.Matrix, keep []int) *cmat.Matrix {
	n := basis.QubitsForPauliDim(p.Size())
	validateQubits(keep, n)

	traced := make([]int, 0, n-len(keep))
	for q := 0; q < n; q++ {
		if !slices.Contains(keep, q) {
			traced = append(traced, q)
		}
	}

	keptIndex := digitIndex(keep, n)
	tracedIndex := []int{0}
	if len(traced) > 0 {
		tracedIndex = digitIndex(traced, n)
	}

	dimK := len(keptIndex)
	out := cmat.New(dimK, dimK, nil)
	for i := 0; i < dimK; i++ {
		for j := 0; j < dimK; j++ {
			var sum complex128
			for _, t := range tracedIndex {
				sum += p.At(keptIndex[i]+t, keptIndex[j]+t)
			}
			out.Set(i, j, sum)
		}
	}
	return out
}

// PartialTraceRemove traces out the qubits in remove and keeps the rest in
// ascending order.
func PartialTraceRemove(p *cmat.Matrix, remove []int) *cmat.Matrix {
	n := basis.QubitsForPauliDim(p.Size())
	validateQubits(remove, n)

	keep := make([]int, 0, n-len(remove))
	for q := 0; q < n; q++ {
		if !slices.Contains(remove, q) {
			keep = append(keep, q)
		}
	}
	if len(keep) == 0 {
		panic(ErrQubits)
	}
	return PartialTraceKeep(p, keep)
}

// digitIndex maps every local Pauli string on qubits to its n-qubit index
// with I on all other qubits.
func digitIndex(qubits []int, n int) []int {
	k := len(qubits)
	out := make([]int, 1<<(2*k))
	for i := range out {
		for t, d := range basis.Digits(i, k) {
			out[i] += d * basis.Place(qubits[t], n)
		}
	}
	return out
}
