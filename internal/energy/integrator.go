// Package energy aligns event windows with a power trace and integrates the
// energy consumed inside them.
package energy

import (
	"math"

	"gonum.org/v1/gonum/integrate"

	"github.com/haskel/phasepower/internal/trace"
)

// Method records which path produced an estimate.
type Method int

const (
	// MethodIntegrated is regular trapezoidal integration over two or more samples.
	MethodIntegrated Method = iota
	// MethodApproximated is the sub-sampling-period estimate from the bracketing samples.
	MethodApproximated
	// MethodEdge is a single-boundary window with no bracketing sample (trace edge).
	MethodEdge
	// MethodZeroDuration is a window whose start and end coincide.
	MethodZeroDuration
	// MethodUnresolvable is a window whose end resolves before its start.
	MethodUnresolvable
)

// String returns string representation of the method.
func (m Method) String() string {
	switch m {
	case MethodIntegrated:
		return "integrated"
	case MethodApproximated:
		return "approximated"
	case MethodEdge:
		return "edge"
	case MethodZeroDuration:
		return "zero_duration"
	case MethodUnresolvable:
		return "unresolvable"
	default:
		return "unknown"
	}
}

// Config holds integrator parameters.
type Config struct {
	// SamplingPeriod of the power trace in milliseconds. Zero falls back to
	// the spacing of the bracketing samples.
	SamplingPeriod float64

	// NearZeroThreshold flags estimates at or below this value as suspect.
	NearZeroThreshold float64

	// InvalidSentinel marks "no valid measurement". It must be negative so
	// cleaning drops it.
	InvalidSentinel float64

	// LoadtimeTolerance is how far (ms) an observed loadtime may differ from
	// the window duration before an approximated energy is rescaled.
	LoadtimeTolerance float64
}

// DefaultConfig returns the parameters used for 100ms powmon traces.
func DefaultConfig() Config {
	return Config{
		SamplingPeriod:    100,
		NearZeroThreshold: 0.01,
		InvalidSentinel:   -100,
		LoadtimeTolerance: 0.5,
	}
}

// Warner receives data-quality warnings. *slog.Logger satisfies it.
type Warner interface {
	Warn(msg string, args ...any)
}

// Estimate is the energy attributed to one window. Energy is in mJ (W x ms).
type Estimate struct {
	Energy   float64 `json:"energy"`
	Method   Method  `json:"method"`
	StartIdx int     `json:"start_idx"`
	EndIdx   int     `json:"end_idx"`
	Duration float64 `json:"duration"`

	// AvgPower is the interpolated power used by the approximation path.
	AvgPower float64 `json:"avg_power,omitempty"`

	NearZero   bool `json:"near_zero,omitempty"`
	Reconciled bool `json:"reconciled,omitempty"`
}

// Valid reports whether Energy is a measurement rather than the sentinel.
func (e Estimate) Valid() bool {
	return e.Method == MethodIntegrated || e.Method == MethodApproximated
}

// Resolved reports whether the window produced an observation at all.
// Unresolvable windows leave the cell at its default.
func (e Estimate) Resolved() bool {
	return e.Method != MethodUnresolvable
}

// Integrator computes window energies from a power trace.
type Integrator struct {
	cfg  Config
	warn Warner
}

// New creates an integrator. warn may be nil.
func New(cfg Config, warn Warner) *Integrator {
	return &Integrator{cfg: cfg, warn: warn}
}

// Config returns the integrator parameters.
func (in *Integrator) Config() Config {
	return in.cfg
}

// Integrate sums, over all channels, the trapezoidal integral of power over
// the samples in [start, end). end is clamped to the trace length; fewer
// than two samples integrate to zero. The trace must be valid.
func (in *Integrator) Integrate(tr *trace.PowerTrace, start, end int) float64 {
	if start < 0 {
		start = 0
	}
	if end > tr.Len() {
		end = tr.Len()
	}
	if end-start < 2 {
		return 0
	}

	times := tr.Times[start:end]
	var total float64
	for _, ch := range tr.Channels {
		total += integrate.Trapezoidal(times, ch.Watts[start:end])
	}
	return total
}

// Estimate resolves [startTs, endTs] against the trace and picks the
// integration path:
//
//   - equal timestamps short-circuit to the sentinel (MethodZeroDuration)
//   - reversed or unresolvable windows return MethodUnresolvable
//   - a window straddling a single sample boundary is approximated from the
//     bracketing samples when both exist, otherwise it is MethodEdge
//   - anything covering two or more samples is integrated
func (in *Integrator) Estimate(tr *trace.PowerTrace, startTs, endTs float64) Estimate {
	est := Estimate{
		StartIdx: -1,
		EndIdx:   -1,
		Duration: endTs - startTs,
		Energy:   in.cfg.InvalidSentinel,
	}

	if startTs == endTs {
		est.Method = MethodZeroDuration
		return est
	}
	if endTs < startTs {
		est.Method = MethodUnresolvable
		return est
	}

	start, end := trace.Interval(startTs, endTs, tr.Times)
	est.StartIdx, est.EndIdx = start, end
	if trace.Unresolved(start, end) {
		est.Method = MethodUnresolvable
		return est
	}

	n := tr.Len()
	if end == start+1 {
		if start < 1 || start >= n {
			est.Method = MethodEdge
			return est
		}
		in.approximate(tr, &est)
		in.checkNearZero(&est)
		return est
	}

	if end > n {
		end = n
	}
	if end-start < 2 {
		est.Method = MethodEdge
		return est
	}

	est.Method = MethodIntegrated
	est.Energy = in.Integrate(tr, start, end)
	in.checkNearZero(&est)
	return est
}

// Measure estimates a window and reconciles an approximated estimate with
// the observed loadtime, so that energy stays average power times the
// actual duration.
func (in *Integrator) Measure(tr *trace.PowerTrace, startTs, endTs, loadtime float64) Estimate {
	est := in.Estimate(tr, startTs, endTs)
	if est.Method != MethodApproximated || est.Duration <= 0 {
		return est
	}
	if math.Abs(loadtime-est.Duration) > in.cfg.LoadtimeTolerance {
		est.Energy *= loadtime / est.Duration
		est.Reconciled = true
	}
	return est
}

// approximate estimates a window lying between samples start-1 and start.
// Each channel's power is linearly interpolated between the bracketing
// pair, taken at the middle of the sampling period, and the full-period
// energy is scaled by duration/period.
func (in *Integrator) approximate(tr *trace.PowerTrace, est *Estimate) {
	lo, hi := est.StartIdx-1, est.StartIdx

	period := in.cfg.SamplingPeriod
	if period <= 0 {
		period = tr.Times[hi] - tr.Times[lo]
	}
	if period <= 0 {
		est.Method = MethodEdge
		return
	}
	scale := est.Duration / period

	var energy, power float64
	for _, ch := range tr.Channels {
		minP := math.Min(ch.Watts[lo], ch.Watts[hi])
		maxP := math.Max(ch.Watts[lo], ch.Watts[hi])
		mid := minP + 0.5*(maxP-minP)

		power += mid
		energy += mid * period * scale
	}

	est.Method = MethodApproximated
	est.AvgPower = power
	est.Energy = energy
}

func (in *Integrator) checkNearZero(est *Estimate) {
	if !est.Valid() || est.Energy > in.cfg.NearZeroThreshold {
		return
	}
	est.NearZero = true
	if in.warn != nil {
		in.warn.Warn("near-zero energy",
			"method", est.Method.String(),
			"energy", est.Energy,
			"start_idx", est.StartIdx,
			"end_idx", est.EndIdx,
			"duration_ms", est.Duration,
		)
	}
}
