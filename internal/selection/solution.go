// Package selection picks, per site, one core configuration for every
// page-load phase so that total energy is minimal under a load-time
// deadline.
package selection

import (
	"math"
	"time"
)

// Status is the terminal state of one site's solve.
type Status string

const (
	StatusOptimal  Status = "optimal"
	StatusRelaxed  Status = "relaxed"
	StatusUnsolved Status = "unsolved"
)

// Solved reports whether the site carries an assignment.
func (s Status) Solved() bool {
	return s == StatusOptimal || s == StatusRelaxed
}

// PhaseChoice is the configuration chosen for one phase.
type PhaseChoice struct {
	Phase  string  `json:"phase"`
	Config string  `json:"config"`
	Time   float64 `json:"time"`
	Energy float64 `json:"energy"`
}

// SiteSolution is the result for one site.
type SiteSolution struct {
	Site     string `json:"site"`
	Governor string `json:"governor"`
	Status   Status `json:"status"`

	Choices []PhaseChoice `json:"choices,omitempty"`
	Time    float64       `json:"time"`
	Energy  float64       `json:"energy"`

	// Violation is how far a relaxed solution exceeds the deadline (ms).
	Violation float64 `json:"violation,omitempty"`

	BaselineTime   float64 `json:"baseline_time"`
	BaselineEnergy float64 `json:"baseline_energy"`

	ConstructTime time.Duration `json:"construct_time"`
	SolveTime     time.Duration `json:"solve_time"`
	Nodes         int           `json:"nodes"`

	Error string `json:"error,omitempty"`
}

// EnergyRatio is the solution energy over the baseline energy. NaN when
// either side is unavailable.
func (s SiteSolution) EnergyRatio() float64 {
	return ratio(s.Energy, s.BaselineEnergy, s.Status.Solved())
}

// TimeRatio is the solution load time over the baseline load time.
func (s SiteSolution) TimeRatio() float64 {
	return ratio(s.Time, s.BaselineTime, s.Status.Solved())
}

func ratio(v, base float64, ok bool) float64 {
	if !ok || base == 0 || math.IsNaN(base) {
		return math.NaN()
	}
	return v / base
}
