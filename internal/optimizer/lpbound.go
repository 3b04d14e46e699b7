package optimizer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const integralTol = 1e-6

// lpBound solves the LP relaxation of the hard rows over the free
// variables, in standard form:
//
//	min cᵀx  s.t.  A_eq x = b_eq,  A_le x + s = b_le,  x + u = 1,  x, s, u >= 0
//
// It returns the objective lower bound for the node and the relaxed values
// of the free variables. ok is false when the LP was not solved; the node
// then relies on propagation alone. lp.ErrInfeasible is not trusted for
// pruning: phase I can report it on degenerate but feasible programs.
func (s *search) lpBound(free []int) (bound float64, x []float64, ok bool) {
	k := len(free)
	for i := range s.lpCol {
		s.lpCol[i] = -1
	}
	for j, v := range free {
		s.lpCol[v] = j
	}

	var fixedObj float64
	for i, v := range s.p.Vars {
		if s.val[i] == 1 {
			fixedObj += v.Obj
		}
	}

	type lpRow struct {
		cols  []int
		coefs []float64
		rhs   float64
		le    bool
	}
	var rows []lpRow
	numEq, numLe := 0, 0

	for r, rw := range s.rows {
		if s.rx.elastic[r] {
			continue
		}
		lr := lpRow{rhs: rw.rhs, le: rw.sense != Equal}
		for _, t := range rw.terms {
			switch s.val[t.Var] {
			case 1:
				lr.rhs -= t.Coef
			case -1:
				lr.cols = append(lr.cols, s.lpCol[t.Var])
				lr.coefs = append(lr.coefs, t.Coef)
			}
		}
		if len(lr.cols) == 0 {
			continue
		}
		if rw.sense == GreaterEqual {
			for i := range lr.coefs {
				lr.coefs[i] = -lr.coefs[i]
			}
			lr.rhs = -lr.rhs
		}
		if lr.le {
			numLe++
		} else {
			numEq++
		}
		rows = append(rows, lr)
	}

	// Simplex needs at least as many columns as rows.
	if numEq > k {
		return 0, nil, false
	}

	m := len(rows) + k
	n := 2*k + numLe
	A := mat.NewDense(m, n, nil)
	b := make([]float64, m)
	c := make([]float64, n)

	slack := 2 * k
	for i, lr := range rows {
		scale := 0.0
		for _, a := range lr.coefs {
			scale = math.Max(scale, math.Abs(a))
		}
		sign := 1.0
		if lr.rhs < 0 {
			sign = -1
		}
		for j, col := range lr.cols {
			A.Set(i, col, sign*lr.coefs[j]/scale)
		}
		b[i] = sign * lr.rhs / scale
		if lr.le {
			A.Set(i, slack, sign)
			slack++
		}
	}
	for j, v := range free {
		A.Set(len(rows)+j, j, 1)
		A.Set(len(rows)+j, k+j, 1)
		b[len(rows)+j] = 1
		c[j] = s.p.Vars[v].Obj
	}

	opt, sol, err := simplex(c, A, b)
	if err != nil {
		return 0, nil, false
	}
	return fixedObj + opt, sol[:k], true
}

// simplex wraps lp.Simplex, converting its input-shape panics into errors.
func simplex(c []float64, A mat.Matrix, b []float64) (opt float64, x []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lp: %v", r)
		}
	}()
	return lp.Simplex(c, A, b, 1e-10, nil)
}
