package optimizer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrSolverPanic   = errors.New("solver panicked")
	ErrTooLarge      = errors.New("program too large for exhaustive search")
	ErrUnknownRow    = errors.New("unknown constraint")
	ErrInvalidWeight = errors.New("relaxation weight must be positive")
)

// Status is the outcome of a solve.
type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusNodeLimit
)

// String returns string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusInfeasible:
		return "INFEASIBLE"
	case StatusNodeLimit:
		return "NODE_LIMIT"
	default:
		return "UNKNOWN"
	}
}

// Penalty is how a relaxed row's violation is charged.
type Penalty int

const (
	PenaltyLinear Penalty = iota
	PenaltyQuadratic
)

func (p Penalty) apply(v float64) float64 {
	if p == PenaltyQuadratic {
		return v * v
	}
	return v
}

// RelaxOptions configures a feasibility relaxation.
type RelaxOptions struct {
	// Rows names the constraints that may be violated. Empty relaxes every row.
	Rows []string

	// Weights scales the penalty of individual rows. Missing rows weigh 1.
	Weights map[string]float64

	Penalty Penalty

	// MinimizeOriginal runs a second stage that minimizes the original
	// objective among assignments with minimal total penalty.
	MinimizeOriginal bool
}

// Result is the outcome of Optimize or FeasRelax.
type Result struct {
	Status Status

	// X holds the value (0 or 1) of each variable. Nil unless optimal.
	X []float64

	// Objective is the original objective at X.
	Objective float64

	// Penalty is the total relaxation penalty at X (FeasRelax only).
	Penalty float64

	// Violations maps relaxed rows to their violation at X (FeasRelax only).
	Violations map[string]float64

	Nodes   int
	Runtime time.Duration
}

// Optimizer solves binary programs.
type Optimizer interface {
	Name() string
	Optimize(ctx context.Context, p *Program) (*Result, error)
	FeasRelax(ctx context.Context, p *Program, opts RelaxOptions) (*Result, error)
}

// Method selects an Optimizer implementation.
type Method string

const (
	MethodBranchAndBound Method = "branch_and_bound"
	MethodEnumerate      Method = "enumerate"
)

// IsValid checks if the method is known.
func (m Method) IsValid() bool {
	switch m {
	case MethodBranchAndBound, MethodEnumerate:
		return true
	}
	return false
}

// Config holds optimizer parameters.
type Config struct {
	Method Method

	// MaxNodes bounds the search tree of one stage; 0 means unbounded.
	MaxNodes int

	// Tolerance is the relative feasibility and optimality tolerance.
	Tolerance float64

	// LPBound enables LP relaxation bounds in branch and bound.
	LPBound bool

	// MaxEnumerateVars caps exhaustive search.
	MaxEnumerateVars int
}

// DefaultConfig returns default optimizer configuration.
func DefaultConfig() Config {
	return Config{
		Method:           MethodBranchAndBound,
		MaxNodes:         1_000_000,
		Tolerance:        1e-9,
		LPBound:          true,
		MaxEnumerateVars: 24,
	}
}

// New creates the optimizer selected by cfg.Method.
func New(cfg Config) (Optimizer, error) {
	switch cfg.Method {
	case MethodBranchAndBound, "":
		return NewBranchAndBound(cfg), nil
	case MethodEnumerate:
		return NewEnumerator(cfg), nil
	default:
		return nil, fmt.Errorf("unknown optimizer method: %s", cfg.Method)
	}
}

// relaxation is the resolved form of RelaxOptions against a program.
type relaxation struct {
	elastic []bool
	weight  []float64
	penalty Penalty
}

func resolveRelaxation(p *Program, opts RelaxOptions) (relaxation, error) {
	rx := relaxation{
		elastic: make([]bool, len(p.Constraints)),
		weight:  make([]float64, len(p.Constraints)),
		penalty: opts.Penalty,
	}
	for r := range rx.weight {
		rx.weight[r] = 1
	}

	if len(opts.Rows) == 0 {
		for r := range rx.elastic {
			rx.elastic[r] = true
		}
	}
	for _, name := range opts.Rows {
		r, ok := p.ConstraintIndex(name)
		if !ok {
			return rx, fmt.Errorf("%w: %q", ErrUnknownRow, name)
		}
		rx.elastic[r] = true
	}

	for name, w := range opts.Weights {
		r, ok := p.ConstraintIndex(name)
		if !ok {
			return rx, fmt.Errorf("%w: %q", ErrUnknownRow, name)
		}
		if !(w > 0) || math.IsInf(w, 0) {
			return rx, fmt.Errorf("%w: %q = %v", ErrInvalidWeight, name, w)
		}
		rx.weight[r] = w
	}
	return rx, nil
}

// cost returns the penalty of x and whether every hard row holds.
func (rx relaxation) cost(p *Program, x []bool, tol float64) (float64, bool) {
	var total float64
	for r, c := range p.Constraints {
		v := p.Violation(r, x)
		if rx.elastic[r] {
			total += rx.weight[r] * rx.penalty.apply(v)
			continue
		}
		if v > tol*(1+math.Abs(c.RHS)) {
			return 0, false
		}
	}
	return total, true
}

func (rx relaxation) violations(p *Program, x []bool) map[string]float64 {
	out := make(map[string]float64)
	for r, c := range p.Constraints {
		if rx.elastic[r] {
			out[c.Name] = p.Violation(r, x)
		}
	}
	return out
}

func toFloats(x []bool) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		if v {
			out[i] = 1
		}
	}
	return out
}

// within reports a <= b up to a relative tolerance.
func within(a, b, tol float64) bool {
	return a <= b+tol*(1+math.Abs(b))
}
