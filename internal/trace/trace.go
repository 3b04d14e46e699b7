package trace

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrEmptyTrace       = errors.New("trace has no samples")
	ErrNoChannels       = errors.New("trace has no power channels")
	ErrLengthMismatch   = errors.New("channel length does not match timestamps")
	ErrTimeNotMonotonic = errors.New("timestamps decrease")
)

// Channel is one power reading column, in watts.
type Channel struct {
	Name  string    `json:"name"`
	Watts []float64 `json:"watts"`
}

// PowerTrace is a periodically sampled power trace. Timestamps are in
// milliseconds since the same epoch as the workload events.
//
// A trace is treated as immutable once loaded; readers and the integrator
// never modify the slices.
type PowerTrace struct {
	Times    []float64 `json:"times"`
	Channels []Channel `json:"channels"`
}

// New builds a trace from parallel arrays and validates it.
func New(times []float64, channels ...Channel) (*PowerTrace, error) {
	tr := &PowerTrace{Times: times, Channels: channels}
	if err := tr.Validate(); err != nil {
		return nil, err
	}
	return tr, nil
}

// Len returns the number of samples.
func (t *PowerTrace) Len() int {
	return len(t.Times)
}

// Channel returns the channel with the given name.
func (t *PowerTrace) Channel(name string) (Channel, bool) {
	for _, ch := range t.Channels {
		if ch.Name == name {
			return ch, true
		}
	}
	return Channel{}, false
}

// Validate checks the structural invariants of the trace: at least one
// sample and one channel, equal lengths, and non-decreasing timestamps.
func (t *PowerTrace) Validate() error {
	if len(t.Times) == 0 {
		return ErrEmptyTrace
	}
	if len(t.Channels) == 0 {
		return ErrNoChannels
	}

	var errs []error
	for _, ch := range t.Channels {
		if len(ch.Watts) != len(t.Times) {
			errs = append(errs, fmt.Errorf("%w: %s has %d samples, want %d",
				ErrLengthMismatch, ch.Name, len(ch.Watts), len(t.Times)))
		}
	}
	for i := 1; i < len(t.Times); i++ {
		if t.Times[i] < t.Times[i-1] {
			errs = append(errs, fmt.Errorf("%w at sample %d (%.0f after %.0f)",
				ErrTimeNotMonotonic, i, t.Times[i], t.Times[i-1]))
			break
		}
	}
	return errors.Join(errs...)
}

// Start returns the first timestamp.
func (t *PowerTrace) Start() float64 {
	if len(t.Times) == 0 {
		return 0
	}
	return t.Times[0]
}

// End returns the last timestamp.
func (t *PowerTrace) End() float64 {
	if len(t.Times) == 0 {
		return 0
	}
	return t.Times[len(t.Times)-1]
}

// MedianPeriod estimates the sampling period from the spacing of
// consecutive samples, ignoring repeated timestamps at trace start.
func (t *PowerTrace) MedianPeriod() float64 {
	deltas := make([]float64, 0, len(t.Times))
	for i := 1; i < len(t.Times); i++ {
		if d := t.Times[i] - t.Times[i-1]; d > 0 {
			deltas = append(deltas, d)
		}
	}
	if len(deltas) == 0 {
		return 0
	}
	sort.Float64s(deltas)
	mid := len(deltas) / 2
	if len(deltas)%2 == 0 {
		return (deltas[mid-1] + deltas[mid]) / 2
	}
	return deltas[mid]
}
