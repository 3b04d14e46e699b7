package events

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCheckpoint = errors.New("missing checkpoint")
	ErrOutOfOrder        = errors.New("checkpoints out of order")
)

// Event holds the checkpoint timestamps of one page load: one site in one
// iteration. Timestamps are milliseconds since the epoch shared with the
// power trace.
type Event struct {
	Site        string             `json:"site"`
	Iteration   int                `json:"iteration"`
	Checkpoints map[string]float64 `json:"checkpoints"`
}

// Window is the half-open span of one phase, named after its starting
// checkpoint.
type Window struct {
	Phase string
	Start float64
	End   float64

	// Missing is set when either boundary checkpoint was not recorded.
	Missing bool
}

// Duration returns End - Start. It is negative for out-of-order checkpoints.
func (w Window) Duration() float64 {
	return w.End - w.Start
}

// Reversed reports a window whose end checkpoint precedes its start.
func (w Window) Reversed() bool {
	return !w.Missing && w.End < w.Start
}

// Phases returns the phase names for an ordered checkpoint list: every
// checkpoint except the last.
func Phases(checkpoints []string) []string {
	if len(checkpoints) < 2 {
		return nil
	}
	out := make([]string, len(checkpoints)-1)
	copy(out, checkpoints[:len(checkpoints)-1])
	return out
}

// Windows splits the event into one window per phase, in checkpoint order.
// The result always has len(checkpoints)-1 entries so it lines up with
// Phases. Out-of-order or missing checkpoints do not stop the split; they
// are reported in the returned error and flagged on the window.
func (e Event) Windows(checkpoints []string) ([]Window, error) {
	if len(checkpoints) < 2 {
		return nil, nil
	}

	windows := make([]Window, len(checkpoints)-1)
	var errs []error

	for i := range windows {
		from, to := checkpoints[i], checkpoints[i+1]
		w := Window{Phase: from}

		start, okStart := e.Checkpoints[from]
		end, okEnd := e.Checkpoints[to]
		switch {
		case !okStart:
			w.Missing = true
			errs = append(errs, fmt.Errorf("%w: %s/%d %s", ErrMissingCheckpoint, e.Site, e.Iteration, from))
		case !okEnd:
			w.Missing = true
			errs = append(errs, fmt.Errorf("%w: %s/%d %s", ErrMissingCheckpoint, e.Site, e.Iteration, to))
		default:
			w.Start, w.End = start, end
			if end < start {
				errs = append(errs, fmt.Errorf("%w: %s/%d %s=%.0f after %s=%.0f",
					ErrOutOfOrder, e.Site, e.Iteration, from, start, to, end))
			}
		}
		windows[i] = w
	}

	return windows, errors.Join(errs...)
}
