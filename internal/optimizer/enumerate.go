package optimizer

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Enumerator solves a program by visiting every assignment. It is exact
// and only suitable for small programs.
type Enumerator struct {
	cfg Config
}

// NewEnumerator creates an exhaustive optimizer.
func NewEnumerator(cfg Config) *Enumerator {
	if cfg.MaxEnumerateVars <= 0 {
		cfg.MaxEnumerateVars = DefaultConfig().MaxEnumerateVars
	}
	return &Enumerator{cfg: cfg}
}

func (e *Enumerator) Name() string {
	return string(MethodEnumerate)
}

// Optimize returns the feasible assignment with the lowest objective.
func (e *Enumerator) Optimize(ctx context.Context, p *Program) (*Result, error) {
	rx := relaxation{
		elastic: make([]bool, len(p.Constraints)),
		weight:  make([]float64, len(p.Constraints)),
	}
	return e.run(ctx, p, rx, false, true)
}

// FeasRelax minimizes the penalty of the relaxed rows, then, when asked,
// the original objective among minimal-penalty assignments.
func (e *Enumerator) FeasRelax(ctx context.Context, p *Program, opts RelaxOptions) (*Result, error) {
	rx, err := resolveRelaxation(p, opts)
	if err != nil {
		return nil, err
	}
	res, err := e.run(ctx, p, rx, true, opts.MinimizeOriginal)
	if err != nil || res.Status != StatusOptimal {
		return res, err
	}
	res.Violations = rx.violations(p, toBools(res.X))
	return res, nil
}

func (e *Enumerator) run(ctx context.Context, p *Program, rx relaxation, byPenalty, byObjective bool) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	n := len(p.Vars)
	if n > e.cfg.MaxEnumerateVars {
		return nil, fmt.Errorf("%w: %d variables, limit %d", ErrTooLarge, n, e.cfg.MaxEnumerateVars)
	}

	start := time.Now()
	tol := e.cfg.Tolerance
	res := &Result{Status: StatusInfeasible}
	bestPen, bestObj := math.Inf(1), math.Inf(1)
	best := make([]bool, n)
	found := false

	x := make([]bool, n)
	for mask := uint64(0); mask < 1<<uint(n); mask++ {
		if mask&0xffff == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		for i := range x {
			x[i] = mask&(1<<uint(i)) != 0
		}
		res.Nodes++

		pen, ok := rx.cost(p, x, tol)
		if !ok {
			continue
		}
		obj := p.Objective(x)

		better := false
		switch {
		case !found:
			better = true
		case byPenalty && !within(pen, bestPen, tol):
			better = false
		case byPenalty && !within(bestPen, pen, tol):
			better = true
		case byObjective:
			better = !within(bestObj, obj, tol)
		}
		if better {
			copy(best, x)
			found = true
			bestPen, bestObj = pen, obj
		}
	}

	res.Runtime = time.Since(start)
	if !found {
		return res, nil
	}
	res.Status = StatusOptimal
	res.X = toFloats(best)
	res.Objective = bestObj
	if byPenalty {
		res.Penalty = bestPen
	}
	return res, nil
}

func toBools(x []float64) []bool {
	out := make([]bool, len(x))
	for i, v := range x {
		out[i] = v > 0.5
	}
	return out
}
