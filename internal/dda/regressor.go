package dda

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Regressor is a multi-output ridge regression over standardized features.
// Row 0 of Weights holds the intercepts; row j+1 the weights of feature j.
type Regressor struct {
	Weights [NumFeatures + 1]Targets `json:"weights"`
}

// FitRegressor solves (XᵀX + λI)W = XᵀY. The intercept is not penalized.
func FitRegressor(x []Features, y []Targets, lambda float64) (reg Regressor, err error) {
	if len(x) == 0 || len(x) != len(y) {
		return Regressor{}, fmt.Errorf("%w: %d rows, %d labels", ErrDimension, len(x), len(y))
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dda: regressor fit panicked: %v", r)
		}
	}()

	const cols = NumFeatures + 1
	design := mat.NewDense(len(x), cols, nil)
	labels := mat.NewDense(len(y), NumTargets, nil)
	for i := range x {
		design.Set(i, 0, 1)
		for j, v := range x[i] {
			design.Set(i, j+1, v)
		}
		for k, v := range y[i] {
			labels.Set(i, k, v)
		}
	}

	var gram mat.Dense
	gram.Mul(design.T(), design)
	for j := 1; j < cols; j++ {
		gram.Set(j, j, gram.At(j, j)+lambda)
	}

	var rhs mat.Dense
	rhs.Mul(design.T(), labels)

	var w mat.Dense
	if err := w.Solve(&gram, &rhs); err != nil {
		return Regressor{}, fmt.Errorf("dda: cannot solve normal equations: %w", err)
	}

	for j := 0; j < cols; j++ {
		for k := 0; k < NumTargets; k++ {
			v := w.At(j, k)
			if !finite(v) {
				return Regressor{}, ErrNonFinite
			}
			reg.Weights[j][k] = v
		}
	}
	return reg, nil
}

// Predict evaluates the model on standardized features.
func (r Regressor) Predict(f Features) (Targets, error) {
	var out Targets
	for k := 0; k < NumTargets; k++ {
		v := r.Weights[0][k]
		for j, x := range f {
			v += r.Weights[j+1][k] * x
		}
		if !finite(v) {
			return Targets{}, ErrNonFinite
		}
		out[k] = v
	}
	return out, nil
}
