package dda

import "errors"

var (
	// ErrUntrained is returned when the regressor has never been fitted.
	ErrUntrained = errors.New("dda: model not trained")
	// ErrNotEnoughExamples is returned when a fit is requested on too little data.
	ErrNotEnoughExamples = errors.New("dda: not enough training examples")
	// ErrNonFinite is returned when a fit or prediction produces NaN or Inf.
	ErrNonFinite = errors.New("dda: non-finite value")
	// ErrDimension is returned when persisted state has the wrong shape.
	ErrDimension = errors.New("dda: dimension mismatch")
)
