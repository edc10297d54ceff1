// Package interpolation fits per-parameter regression models over U3 angle
// control points so that channel parameters can be predicted for angles that
// were never characterized.
package interpolation

import (
	"errors"
	"fmt"
	"math"

	"github.com/aristath/qnoise/internal/modules/synthesis"
	"github.com/aristath/qnoise/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrShape is returned when control points, parameter vectors and models
	// do not line up.
	ErrShape = errors.New("interpolation: mismatched input shapes")
	// ErrNonPositiveSample is returned when an Exponential model sees a
	// sample ≤ 0.
	ErrNonPositiveSample = errors.New("interpolation: exponential model requires strictly positive samples")
	// ErrUnknownModel is returned for a model kind outside the catalog.
	ErrUnknownModel = errors.New("interpolation: unknown model")
)

// pinvRcond is the relative singular-value cutoff of the least-squares
// pseudo-inverse.
const pinvRcond = 1e-15

const snapshotVersion = 1

// Interpolator predicts a parameter vector for a U3 angle. It is immutable
// after construction and safe for concurrent use.
type Interpolator struct {
	models []FittedModel
	log    zerolog.Logger
}

// New fits models[i] to component i of params over the control points
// angles. params[p] is the parameter vector observed at angles[p].
func New(params [][]float64, angles []synthesis.U3Angle, models []Model, log zerolog.Logger) (*Interpolator, error) {
	if len(params) == 0 || len(params) != len(angles) {
		return nil, fmt.Errorf("%w: %d parameter vectors for %d control points", ErrShape, len(params), len(angles))
	}
	width := len(params[0])
	for p, v := range params {
		if len(v) != width {
			return nil, fmt.Errorf("%w: parameter vector %d has %d entries, want %d", ErrShape, p, len(v), width)
		}
	}
	if len(models) != width {
		return nil, fmt.Errorf("%w: %d models for %d parameters", ErrShape, len(models), width)
	}

	ip := &Interpolator{
		models: make([]FittedModel, width),
		log:    logger.Component(log, "interpolator"),
	}
	samples := make([]float64, len(params))
	for i, m := range models {
		for p := range params {
			samples[p] = params[p][i]
		}
		fitted, err := fit(m, angles, samples)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
		ip.models[i] = fitted
		ip.log.Debug().
			Int("parameter", i).
			Str("kind", fitted.Kind.String()).
			Int("degree", fitted.Degree).
			Floats64("coefficients", fitted.Coefficients).
			Msg("Fitted interpolation model")
	}
	return ip, nil
}

func fit(m Model, angles []synthesis.U3Angle, samples []float64) (FittedModel, error) {
	d, err := m.degree()
	if err != nil {
		return FittedModel{}, err
	}

	switch m.Kind {
	case Average:
		return FittedModel{Kind: Average, Coefficients: []float64{stat.Mean(samples, nil)}}, nil
	case Exponential:
		logs := make([]float64, len(samples))
		for p, v := range samples {
			if !(v > 0) {
				return FittedModel{}, fmt.Errorf("%w: sample %d is %g", ErrNonPositiveSample, p, v)
			}
			logs[p] = math.Log(v)
		}
		coef, err := leastSquares(angles, logs, 1)
		if err != nil {
			return FittedModel{}, err
		}
		return FittedModel{Kind: Exponential, Degree: 1, Coefficients: coef}, nil
	default:
		coef, err := leastSquares(angles, samples, d)
		if err != nil {
			return FittedModel{}, err
		}
		return FittedModel{Kind: m.Kind, Degree: d, Coefficients: coef}, nil
	}
}

// leastSquares returns the minimum-norm coefficients of the degree-d
// monomial design, tolerating rank-deficient designs.
func leastSquares(angles []synthesis.U3Angle, y []float64, d int) ([]float64, error) {
	cols := len(monomials(d))
	design := mat.NewDense(len(angles), cols, nil)
	for p, a := range angles {
		design.SetRow(p, monomialRow(a, d))
	}

	var svd mat.SVD
	if ok := svd.Factorize(design, mat.SVDThin); !ok {
		return nil, errors.New("interpolation: singular value decomposition failed")
	}
	rank := svd.Rank(pinvRcond)
	coef := mat.NewVecDense(cols, nil)
	if rank > 0 {
		svd.SolveVecTo(coef, mat.NewVecDense(len(y), y), rank)
	}
	return coef.RawVector().Data, nil
}

// Interpolate evaluates every fitted model at a.
func (ip *Interpolator) Interpolate(a synthesis.U3Angle) []float64 {
	out := make([]float64, len(ip.models))
	for i, m := range ip.models {
		out[i] = m.Evaluate(a)
	}
	return out
}

// Models returns a copy of the fitted models.
func (ip *Interpolator) Models() []FittedModel {
	out := make([]FittedModel, len(ip.models))
	for i, m := range ip.models {
		out[i] = FittedModel{Kind: m.Kind, Degree: m.Degree, Coefficients: append([]float64(nil), m.Coefficients...)}
	}
	return out
}

type snapshot struct {
	Version int           `msgpack:"version"`
	Models  []FittedModel `msgpack:"models"`
}

// Encode serializes the fitted models with msgpack.
func (ip *Interpolator) Encode() ([]byte, error) {
	data, err := msgpack.Marshal(snapshot{Version: snapshotVersion, Models: ip.models})
	if err != nil {
		return nil, fmt.Errorf("failed to encode interpolator: %w", err)
	}
	return data, nil
}

// Decode restores an interpolator written by Encode.
func Decode(data []byte, log zerolog.Logger) (*Interpolator, error) {
	var snap snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode interpolator: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported interpolator snapshot version %d", snap.Version)
	}
	for i, m := range snap.Models {
		if err := m.validate(); err != nil {
			return nil, fmt.Errorf("model %d: %w", i, err)
		}
	}
	return &Interpolator{
		models: snap.Models,
		log:    logger.Component(log, "interpolator"),
	}, nil
}
