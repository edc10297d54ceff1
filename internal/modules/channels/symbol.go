package channels

import (
	"errors"
	"fmt"

	"github.com/aristath/qnoise/internal/utils"
)

// ErrUnknownSymbol is returned (or used as a panic value) for a symbol outside
// the catalog.
var ErrUnknownSymbol = errors.New("channels: unknown noise channel symbol")

// Symbol names a noise model in the catalog.
type Symbol int

const (
	// Depolarization1Q is the single-qubit depolarizing channel (p).
	Depolarization1Q Symbol = iota
	// Depolarization2Q is the two-qubit depolarizing channel (p).
	Depolarization2Q
	// GeneralizedPhaseAmplitudeDamping combines amplitude and phase damping (amp, phase).
	GeneralizedPhaseAmplitudeDamping
	// GeneralizedAmplitudeDamping is phase-amplitude damping with no phase term (amp).
	GeneralizedAmplitudeDamping
	// AmplitudeDamping is energy relaxation towards |0⟩ (γ).
	AmplitudeDamping
	// PhaseDamping is pure dephasing (γ).
	PhaseDamping
)

// Symbols lists every catalog symbol.
var Symbols = []Symbol{
	Depolarization1Q,
	Depolarization2Q,
	GeneralizedPhaseAmplitudeDamping,
	GeneralizedAmplitudeDamping,
	AmplitudeDamping,
	PhaseDamping,
}

// String returns the catalog name of the symbol.
func (s Symbol) String() string {
	switch s {
	case Depolarization1Q:
		return "depolarization_1qubit"
	case Depolarization2Q:
		return "depolarization_2qubit"
	case GeneralizedPhaseAmplitudeDamping:
		return "generalized_phase_amplitude_damping"
	case GeneralizedAmplitudeDamping:
		return "generalized_amplitude_damping"
	case AmplitudeDamping:
		return "amplitude_damping"
	case PhaseDamping:
		return "phase_damping"
	default:
		return "unknown"
	}
}

// ParseSymbol is the inverse of String.
func ParseSymbol(name string) (Symbol, error) {
	for _, s := range Symbols {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSymbol, name)
}

// ParseSymbolList parses a comma-separated list of channel names such as
// "depolarization_1qubit, amplitude_damping".
func ParseSymbolList(csv string) ([]Symbol, error) {
	names := utils.ParseCSV(csv)
	out := make([]Symbol, 0, len(names))
	for _, name := range names {
		s, err := ParseSymbol(name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// ParamCount returns the number of scalar parameters the symbol consumes.
func (s Symbol) ParamCount() int {
	switch s {
	case Depolarization1Q, Depolarization2Q, GeneralizedAmplitudeDamping, AmplitudeDamping, PhaseDamping:
		return 1
	case GeneralizedPhaseAmplitudeDamping:
		return 2
	default:
		panic(ErrUnknownSymbol)
	}
}

// QubitCount returns the number of qubits the channel acts on.
func (s Symbol) QubitCount() int {
	switch s {
	case Depolarization2Q:
		return 2
	case Depolarization1Q, GeneralizedPhaseAmplitudeDamping, GeneralizedAmplitudeDamping, AmplitudeDamping, PhaseDamping:
		return 1
	default:
		panic(ErrUnknownSymbol)
	}
}

// SeedRange returns the interval random solver seeds are drawn from for each
// parameter of the symbol.
func (s Symbol) SeedRange() (lo, hi float64) {
	switch s {
	case Depolarization1Q:
		return 1e-8, 1e-1
	case Depolarization2Q:
		return 1e-8, 5e-2
	case GeneralizedPhaseAmplitudeDamping:
		return 1e-8, 5e-2
	case GeneralizedAmplitudeDamping, AmplitudeDamping, PhaseDamping:
		return 1e-8, 1e-1
	default:
		panic(ErrUnknownSymbol)
	}
}

// TotalParams sums ParamCount over symbols.
func TotalParams(symbols []Symbol) int {
	n := 0
	for _, s := range symbols {
		n += s.ParamCount()
	}
	return n
}

// Build constructs the channel named by s on qubits from params. The excited
// state population of the generalized damping models is 0.
func Build(s Symbol, qubits []int, params []float64) NoiseChannel {
	if len(params) != s.ParamCount() {
		panic(ErrParamCount)
	}
	if len(qubits) != s.QubitCount() {
		panic(ErrQubitCount)
	}

	switch s {
	case Depolarization1Q:
		return DepolarizingChannel(qubits[0], params[0])
	case Depolarization2Q:
		return Depolarizing2QChannel(qubits[0], qubits[1], params[0])
	case GeneralizedPhaseAmplitudeDamping:
		return GeneralizedPhaseAmplitudeDampingChannel(qubits[0], 0, params[0], params[1])
	case GeneralizedAmplitudeDamping:
		return GeneralizedAmplitudeDampingChannel(qubits[0], 0, params[0])
	case AmplitudeDamping:
		return AmplitudeDampingChannel(qubits[0], params[0])
	case PhaseDamping:
		return PhaseDampingChannel(qubits[0], params[0])
	default:
		panic(ErrUnknownSymbol)
	}
}
