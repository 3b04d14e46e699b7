// Package cleaning removes invalid and outlying samples from measurement
// series and reduces them to stable statistics.
package cleaning

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

// DefaultMaxStdDevs is the outlier threshold used unless configured otherwise.
const DefaultMaxStdDevs = 3.0

// ErrInsufficientData is returned when a series has no samples left to
// compute a statistic from. It is distinct from a zero mean.
var ErrInsufficientData = errors.New("insufficient data")

// FilterInvalid drops entries below zero. Negative values are sentinels
// for runs that produced no measurement.
func FilterInvalid(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v >= 0 {
			out = append(out, v)
		}
	}
	return out
}

// FilterOutliers drops entries whose absolute deviation from the mean
// exceeds maxStdDevs population standard deviations. Entries exactly at
// the threshold are kept. A non-positive maxStdDevs disables the filter.
func FilterOutliers(values []float64, maxStdDevs float64) []float64 {
	out := make([]float64, 0, len(values))
	if len(values) == 0 || maxStdDevs <= 0 {
		return append(out, values...)
	}

	mean, std := stat.PopMeanStdDev(values, nil)
	limit := maxStdDevs * std
	for _, v := range values {
		if math.Abs(v-mean) <= limit {
			out = append(out, v)
		}
	}
	return out
}

// FilterSeries removes sentinels first and outliers second, so sentinels
// never distort the mean and deviation used for outlier detection.
func FilterSeries(values []float64, maxStdDevs float64) []float64 {
	return FilterOutliers(FilterInvalid(values), maxStdDevs)
}

// Mean returns the arithmetic mean, or ErrInsufficientData for an empty
// series.
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return math.NaN(), ErrInsufficientData
	}
	return stat.Mean(values, nil), nil
}

// StdDev returns the population standard deviation, or ErrInsufficientData
// for an empty series.
func StdDev(values []float64) (float64, error) {
	if len(values) == 0 {
		return math.NaN(), ErrInsufficientData
	}
	return stat.PopStdDev(values, nil), nil
}
