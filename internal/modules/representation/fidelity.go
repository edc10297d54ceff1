package representation

import (
	"github.com/aristath/qnoise/pkg/cmat"
)

// ProcessFidelity returns the fidelity between the channel with Choi matrix
// choi and the identity channel: (‖√A·√B‖₁)² with A and B the two Choi
// matrices normalized by the input dimension. 1 means noiseless.
func ProcessFidelity(choi *cmat.Matrix) float64 {
	d, n := hilbertDim(choi)
	norm := complex(1/float64(d), 0)

	a := cmat.SqrtPSD(cmat.Scale(norm, choi))
	b := cmat.SqrtPSD(cmat.Scale(norm, IdentityChoi(n)))

	f := cmat.NuclearNorm(cmat.Mul(a, b))
	f *= f
	if f > 1 {
		return 1
	}
	return f
}

// ProcessFidelityFromKraus scores a Kraus list.
func ProcessFidelityFromKraus(kraus []*cmat.Matrix) float64 {
	return ProcessFidelity(KrausToChoi(kraus))
}

// ProcessFidelityFromProcess scores a Pauli process matrix.
func ProcessFidelityFromProcess(p *cmat.Matrix) float64 {
	return ProcessFidelity(ProcessToChoi(p))
}
