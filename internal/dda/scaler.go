package dda

import (
	"gonum.org/v1/gonum/stat"
)

// Scaler standardizes features to zero mean and unit variance.
type Scaler struct {
	Mean  Features `json:"mean"`
	Scale Features `json:"scale"`
}

// FitScaler computes per-feature population mean and standard deviation.
// Constant features get a scale of 1.
func FitScaler(rows []Features) (Scaler, error) {
	if len(rows) == 0 {
		return Scaler{}, ErrNotEnoughExamples
	}

	var sc Scaler
	col := make([]float64, len(rows))
	for j := 0; j < NumFeatures; j++ {
		for i, r := range rows {
			col[i] = r[j]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		if !finite(mean) || !finite(std) {
			return Scaler{}, ErrNonFinite
		}
		if std == 0 {
			std = 1
		}
		sc.Mean[j] = mean
		sc.Scale[j] = std
	}
	return sc, nil
}

// Transform returns f standardized with the fitted statistics.
func (sc Scaler) Transform(f Features) Features {
	var out Features
	for j := 0; j < NumFeatures; j++ {
		scale := sc.Scale[j]
		if scale == 0 {
			scale = 1
		}
		out[j] = (f[j] - sc.Mean[j]) / scale
	}
	return out
}
