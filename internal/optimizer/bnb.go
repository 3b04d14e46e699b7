package optimizer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime/debug"
	"time"
)

var errNodeLimit = errors.New("node limit reached")

// PanicError is returned when a solve panics. It matches ErrSolverPanic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s: %v", ErrSolverPanic, e.Value)
}

func (e *PanicError) Is(target error) bool {
	return target == ErrSolverPanic
}

func recoverPanic(res **Result, err *error) {
	if r := recover(); r != nil {
		*res = nil
		*err = &PanicError{Value: r, Stack: debug.Stack()}
	}
}

// BranchAndBound is a depth-first branch-and-bound solver. Nodes are pruned
// by row activity propagation and, when enabled, by LP relaxation bounds.
type BranchAndBound struct {
	cfg Config
}

// NewBranchAndBound creates a branch-and-bound optimizer.
func NewBranchAndBound(cfg Config) *BranchAndBound {
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = DefaultConfig().Tolerance
	}
	return &BranchAndBound{cfg: cfg}
}

func (b *BranchAndBound) Name() string {
	return string(MethodBranchAndBound)
}

// Optimize minimizes the objective subject to every row.
func (b *BranchAndBound) Optimize(ctx context.Context, p *Program) (res *Result, err error) {
	defer recoverPanic(&res, &err)

	if err := p.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	rx := relaxation{
		elastic: make([]bool, len(p.Constraints)),
		weight:  make([]float64, len(p.Constraints)),
	}
	s := newSearch(ctx, p, rx, b.cfg, false)
	s.cap = math.Inf(1)
	res, err = s.run()
	if err != nil {
		return nil, err
	}
	res.Runtime = time.Since(start)
	return res, nil
}

// FeasRelax minimizes the total penalty of the relaxed rows while keeping
// every other row hard. With MinimizeOriginal, a second search minimizes
// the original objective among assignments whose penalty is within
// tolerance of the minimum.
func (b *BranchAndBound) FeasRelax(ctx context.Context, p *Program, opts RelaxOptions) (res *Result, err error) {
	defer recoverPanic(&res, &err)

	if err := p.Validate(); err != nil {
		return nil, err
	}
	rx, err := resolveRelaxation(p, opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	first := newSearch(ctx, p, rx, b.cfg, true)
	res, err = first.run()
	if err != nil {
		return nil, err
	}
	if res.Status == StatusOptimal && opts.MinimizeOriginal {
		second := newSearch(ctx, p, rx, b.cfg, false)
		second.cap = first.bestPen + b.cfg.Tolerance*(1+math.Abs(first.bestPen))
		second.seed(first.best, first.bestObj, first.bestPen)

		nodes := res.Nodes
		res, err = second.run()
		if err != nil {
			return nil, err
		}
		res.Nodes += nodes
	}

	if res.X != nil {
		res.Violations = rx.violations(p, toBools(res.X))
	}
	res.Runtime = time.Since(start)
	return res, nil
}

type row struct {
	terms []Term
	sense Sense
	rhs   float64
}

type search struct {
	ctx       context.Context
	p         *Program
	rx        relaxation
	rows      []row
	tol       float64
	maxNodes  int
	useLP     bool
	byPenalty bool
	cap       float64

	val    []int8
	trail  []int
	nodes  int
	minAct []float64
	maxAct []float64
	lpCol  []int

	best    []bool
	bestObj float64
	bestPen float64
}

func newSearch(ctx context.Context, p *Program, rx relaxation, cfg Config, byPenalty bool) *search {
	s := &search{
		ctx:       ctx,
		p:         p,
		rx:        rx,
		rows:      make([]row, len(p.Constraints)),
		tol:       cfg.Tolerance,
		maxNodes:  cfg.MaxNodes,
		useLP:     cfg.LPBound,
		byPenalty: byPenalty,
		cap:       math.Inf(1),
		val:       make([]int8, len(p.Vars)),
		minAct:    make([]float64, len(p.Constraints)),
		maxAct:    make([]float64, len(p.Constraints)),
		lpCol:     make([]int, len(p.Vars)),
		bestObj:   math.Inf(1),
		bestPen:   math.Inf(1),
	}
	for i := range s.val {
		s.val[i] = -1
	}

	// Duplicate terms are merged so every variable appears once per row.
	for r, c := range p.Constraints {
		coef := make(map[int]float64, len(c.Terms))
		order := make([]int, 0, len(c.Terms))
		for _, t := range c.Terms {
			if _, seen := coef[t.Var]; !seen {
				order = append(order, t.Var)
			}
			coef[t.Var] += t.Coef
		}
		terms := make([]Term, 0, len(order))
		for _, v := range order {
			if coef[v] != 0 {
				terms = append(terms, Term{Var: v, Coef: coef[v]})
			}
		}
		s.rows[r] = row{terms: terms, sense: c.Sense, rhs: c.RHS}
	}
	return s
}

func (s *search) seed(x []bool, obj, pen float64) {
	if x == nil {
		return
	}
	s.best = make([]bool, len(x))
	copy(s.best, x)
	s.bestObj, s.bestPen = obj, pen
}

func (s *search) run() (*Result, error) {
	err := s.node()
	res := &Result{Status: StatusOptimal, Nodes: s.nodes}
	switch {
	case errors.Is(err, errNodeLimit):
		res.Status = StatusNodeLimit
	case err != nil:
		return nil, err
	case s.best == nil:
		res.Status = StatusInfeasible
		return res, nil
	}

	if s.best != nil {
		res.X = toFloats(s.best)
		res.Objective = s.p.Objective(s.best)
		if s.byPenalty || !math.IsInf(s.cap, 1) {
			res.Penalty = s.bestPen
		}
	}
	return res, nil
}

func (s *search) slack(rhs float64) float64 {
	return s.tol * (1 + math.Abs(rhs))
}

func (s *search) improves(bound, incumbent float64) bool {
	return bound < incumbent-s.tol*(1+math.Abs(incumbent))
}

func (s *search) fix(v int, one bool) {
	if one {
		s.val[v] = 1
	} else {
		s.val[v] = 0
	}
	s.trail = append(s.trail, v)
}

func (s *search) undo(mark int) {
	for len(s.trail) > mark {
		v := s.trail[len(s.trail)-1]
		s.trail = s.trail[:len(s.trail)-1]
		s.val[v] = -1
	}
}

// activity fills the reachable activity range of every row.
func (s *search) activity() {
	for r, rw := range s.rows {
		var lo, hi float64
		for _, t := range rw.terms {
			switch s.val[t.Var] {
			case 1:
				lo += t.Coef
				hi += t.Coef
			case -1:
				lo += math.Min(0, t.Coef)
				hi += math.Max(0, t.Coef)
			}
		}
		s.minAct[r], s.maxAct[r] = lo, hi
	}
}

// propagate fixes variables implied by the hard rows and reports false when
// some hard row can no longer hold.
func (s *search) propagate() bool {
	for {
		s.activity()
		changed := false

		for r, rw := range s.rows {
			if s.rx.elastic[r] {
				continue
			}
			lo, hi, eps := s.minAct[r], s.maxAct[r], s.slack(rw.rhs)
			upper := rw.sense != GreaterEqual
			lower := rw.sense != LessEqual

			if (upper && lo > rw.rhs+eps) || (lower && hi < rw.rhs-eps) {
				return false
			}

			for _, t := range rw.terms {
				if s.val[t.Var] >= 0 {
					continue
				}
				a := math.Abs(t.Coef)
				switch {
				case upper && lo+a > rw.rhs+eps:
					// Taking the value that raises the row is ruled out.
					s.fix(t.Var, t.Coef < 0)
					changed = true
				case lower && hi-a < rw.rhs-eps:
					s.fix(t.Var, t.Coef > 0)
					changed = true
				}
			}
		}

		if !changed {
			return true
		}
	}
}

func (s *search) penaltyBound() float64 {
	var total float64
	for r, rw := range s.rows {
		if !s.rx.elastic[r] {
			continue
		}
		v := violation(rw.sense, s.minAct[r], s.maxAct[r], rw.rhs)
		total += s.rx.weight[r] * s.rx.penalty.apply(v)
	}
	return total
}

func (s *search) objectiveBound() float64 {
	var total float64
	for i, v := range s.p.Vars {
		switch s.val[i] {
		case 1:
			total += v.Obj
		case -1:
			total += math.Min(0, v.Obj)
		}
	}
	return total
}

func (s *search) freeVars() []int {
	var free []int
	for i, v := range s.val {
		if v < 0 {
			free = append(free, i)
		}
	}
	return free
}

func (s *search) node() error {
	s.nodes++
	if s.maxNodes > 0 && s.nodes > s.maxNodes {
		return errNodeLimit
	}
	if err := s.ctx.Err(); err != nil {
		return err
	}

	mark := len(s.trail)
	defer s.undo(mark)

	if !s.propagate() {
		return nil
	}

	pen := s.penaltyBound()
	if s.byPenalty {
		if s.best != nil && !s.improves(pen, s.bestPen) {
			return nil
		}
	} else if !within(pen, s.cap, s.tol) {
		return nil
	}

	free := s.freeVars()
	if len(free) == 0 {
		s.leaf()
		return nil
	}

	branch, preferOne := -1, true
	if !s.byPenalty {
		if s.best != nil && !s.improves(s.objectiveBound(), s.bestObj) {
			return nil
		}
		if s.useLP {
			if bound, x, ok := s.lpBound(free); ok {
				if s.best != nil && !s.improves(bound, s.bestObj) {
					return nil
				}
				if cand, ok := s.integral(free, x); ok && s.offer(cand) {
					return nil
				}
				branch, preferOne = mostFractional(free, x)
			}
		}
	}
	if branch < 0 {
		branch = s.pick(free)
	}

	for _, one := range []bool{preferOne, !preferOne} {
		m := len(s.trail)
		s.fix(branch, one)
		if err := s.node(); err != nil {
			return err
		}
		s.undo(m)
	}
	return nil
}

// leaf records a complete assignment that passed propagation.
func (s *search) leaf() {
	x := make([]bool, len(s.val))
	for i, v := range s.val {
		x[i] = v == 1
	}
	s.offer(x)
}

// offer checks a complete assignment and keeps it if it beats the
// incumbent. It reports whether x is feasible for this search.
func (s *search) offer(x []bool) bool {
	pen, ok := s.rx.cost(s.p, x, s.tol)
	if !ok {
		return false
	}
	obj := s.p.Objective(x)

	if s.byPenalty {
		if s.best == nil || s.improves(pen, s.bestPen) {
			s.seed(x, obj, pen)
		}
		return true
	}

	if !within(pen, s.cap, s.tol) {
		return false
	}
	if s.best == nil || s.improves(obj, s.bestObj) {
		s.seed(x, obj, pen)
	}
	return true
}

// pick chooses the branching variable without LP guidance: the free
// variable with the lowest objective coefficient.
func (s *search) pick(free []int) int {
	best := free[0]
	if s.byPenalty {
		return best
	}
	for _, v := range free[1:] {
		if s.p.Vars[v].Obj < s.p.Vars[best].Obj {
			best = v
		}
	}
	return best
}

func (s *search) integral(free []int, x []float64) ([]bool, bool) {
	out := make([]bool, len(s.val))
	for i, v := range s.val {
		out[i] = v == 1
	}
	for j, v := range free {
		switch {
		case x[j] < integralTol:
		case x[j] > 1-integralTol:
			out[v] = true
		default:
			return nil, false
		}
	}
	return out, true
}

func mostFractional(free []int, x []float64) (int, bool) {
	best, dist := -1, integralTol
	for j := range free {
		if d := math.Min(x[j], 1-x[j]); d > dist {
			best, dist = j, d
		}
	}
	if best < 0 {
		return -1, true
	}
	return free[best], x[best] >= 0.5
}
