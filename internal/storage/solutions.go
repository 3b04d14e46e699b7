package storage

import (
	"math"
	"time"

	"github.com/haskel/phasepower/internal/measure"
	"github.com/haskel/phasepower/internal/monitor"
	"github.com/haskel/phasepower/internal/selection"
)

const solutionsFileName = "phasepower_solutions.json"

// SolutionSet is a persisted solve of every site.
type SolutionSet struct {
	Version   int               `json:"version"`
	UpdatedAt time.Time         `json:"updated_at"`
	Governor  string            `json:"governor"`
	Deadline  float64           `json:"deadline"`
	Window    measure.Window    `json:"window"`
	Iteration *int              `json:"iteration,omitempty"`
	Phases    []string          `json:"phases"`
	Host      *monitor.HostInfo `json:"host,omitempty"`
	Sites     []SiteRecord      `json:"sites"`
}

// SiteRecord is the JSON form of a selection.SiteSolution. Values that may
// be NaN are stored as null.
type SiteRecord struct {
	Site           string                  `json:"site"`
	Governor       string                  `json:"governor"`
	Status         selection.Status        `json:"status"`
	Choices        []selection.PhaseChoice `json:"choices,omitempty"`
	Time           *float64                `json:"time"`
	Energy         *float64                `json:"energy"`
	Violation      float64                 `json:"violation,omitempty"`
	BaselineTime   *float64                `json:"baseline_time"`
	BaselineEnergy *float64                `json:"baseline_energy"`
	ConstructTime  time.Duration           `json:"construct_time_ns"`
	SolveTime      time.Duration           `json:"solve_time_ns"`
	Nodes          int                     `json:"nodes"`
	Error          string                  `json:"error,omitempty"`
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func value(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

// Records converts solutions to their persisted form.
func Records(sols []selection.SiteSolution) []SiteRecord {
	out := make([]SiteRecord, len(sols))
	for i, s := range sols {
		rec := SiteRecord{
			Site:           s.Site,
			Governor:       s.Governor,
			Status:         s.Status,
			Choices:        s.Choices,
			Violation:      s.Violation,
			BaselineTime:   nullable(s.BaselineTime),
			BaselineEnergy: nullable(s.BaselineEnergy),
			ConstructTime:  s.ConstructTime,
			SolveTime:      s.SolveTime,
			Nodes:          s.Nodes,
			Error:          s.Error,
		}
		if s.Status.Solved() {
			rec.Time = nullable(s.Time)
			rec.Energy = nullable(s.Energy)
		}
		out[i] = rec
	}
	return out
}

// Solutions converts persisted records back.
func (set *SolutionSet) Solutions() []selection.SiteSolution {
	out := make([]selection.SiteSolution, len(set.Sites))
	for i, r := range set.Sites {
		out[i] = selection.SiteSolution{
			Site:           r.Site,
			Governor:       r.Governor,
			Status:         r.Status,
			Choices:        r.Choices,
			Time:           value(r.Time),
			Energy:         value(r.Energy),
			Violation:      r.Violation,
			BaselineTime:   value(r.BaselineTime),
			BaselineEnergy: value(r.BaselineEnergy),
			ConstructTime:  r.ConstructTime,
			SolveTime:      r.SolveTime,
			Nodes:          r.Nodes,
			Error:          r.Error,
		}
	}
	return out
}

// SaveSolutions writes a solution set.
func (s *Storage) SaveSolutions(set *SolutionSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set.Version = currentVersion
	set.UpdatedAt = time.Now()
	return s.writeLocked(solutionsFileName, set)
}

// LoadSolutions reads the last saved solution set.
func (s *Storage) LoadSolutions() (*SolutionSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var set SolutionSet
	if err := s.readLocked(solutionsFileName, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

// SolutionsInfo returns information about the stored solutions.
func (s *Storage) SolutionsInfo() FileInfo {
	return s.info(solutionsFileName)
}
