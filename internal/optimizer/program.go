// Package optimizer solves small linear programs over binary variables:
// equality and less-or-equal rows, minimized linear objective.
package optimizer

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrBadVariable   = errors.New("term references unknown variable")
	ErrNotFinite     = errors.New("coefficient is not finite")
	ErrDuplicateName = errors.New("duplicate name")
)

// Sense is the comparison of a constraint row.
type Sense int

const (
	LessEqual Sense = iota
	Equal
	GreaterEqual
)

func (s Sense) String() string {
	switch s {
	case LessEqual:
		return "<="
	case Equal:
		return "="
	case GreaterEqual:
		return ">="
	default:
		return "?"
	}
}

// Var is a binary decision variable with its objective coefficient.
type Var struct {
	Name string
	Obj  float64
}

// Term is one coefficient of a constraint row.
type Term struct {
	Var  int
	Coef float64
}

// Constraint is a named linear row: Σ terms (sense) RHS.
type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// Program is a binary linear program. The objective is always minimized.
type Program struct {
	Name        string
	Vars        []Var
	Constraints []Constraint
}

// NewProgram creates an empty program.
func NewProgram(name string) *Program {
	return &Program{Name: name}
}

// AddVar appends a variable and returns its index.
func (p *Program) AddVar(name string, obj float64) int {
	p.Vars = append(p.Vars, Var{Name: name, Obj: obj})
	return len(p.Vars) - 1
}

// AddConstraint appends a row and returns its index.
func (p *Program) AddConstraint(name string, sense Sense, rhs float64, terms ...Term) int {
	p.Constraints = append(p.Constraints, Constraint{
		Name:  name,
		Terms: terms,
		Sense: sense,
		RHS:   rhs,
	})
	return len(p.Constraints) - 1
}

// ConstraintIndex finds a row by name.
func (p *Program) ConstraintIndex(name string) (int, bool) {
	for i, c := range p.Constraints {
		if c.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Validate checks term indices, finiteness and name uniqueness.
func (p *Program) Validate() error {
	var errs []error

	vars := make(map[string]bool, len(p.Vars))
	for _, v := range p.Vars {
		if !finite(v.Obj) {
			errs = append(errs, fmt.Errorf("%w: objective of %q", ErrNotFinite, v.Name))
		}
		if v.Name != "" {
			if vars[v.Name] {
				errs = append(errs, fmt.Errorf("%w: variable %q", ErrDuplicateName, v.Name))
			}
			vars[v.Name] = true
		}
	}

	rows := make(map[string]bool, len(p.Constraints))
	for _, c := range p.Constraints {
		if c.Name != "" {
			if rows[c.Name] {
				errs = append(errs, fmt.Errorf("%w: constraint %q", ErrDuplicateName, c.Name))
			}
			rows[c.Name] = true
		}
		if !finite(c.RHS) {
			errs = append(errs, fmt.Errorf("%w: rhs of %q", ErrNotFinite, c.Name))
		}
		for _, t := range c.Terms {
			if t.Var < 0 || t.Var >= len(p.Vars) {
				errs = append(errs, fmt.Errorf("%w: %d in %q", ErrBadVariable, t.Var, c.Name))
			}
			if !finite(t.Coef) {
				errs = append(errs, fmt.Errorf("%w: %q in %q", ErrNotFinite, p.varName(t.Var), c.Name))
			}
		}
	}

	return errors.Join(errs...)
}

func (p *Program) varName(i int) string {
	if i >= 0 && i < len(p.Vars) {
		return p.Vars[i].Name
	}
	return fmt.Sprintf("x%d", i)
}

// Objective evaluates the objective at x.
func (p *Program) Objective(x []bool) float64 {
	var obj float64
	for i, v := range p.Vars {
		if x[i] {
			obj += v.Obj
		}
	}
	return obj
}

// Activity returns the left-hand side of row r at x.
func (p *Program) Activity(r int, x []bool) float64 {
	var act float64
	for _, t := range p.Constraints[r].Terms {
		if x[t.Var] {
			act += t.Coef
		}
	}
	return act
}

// Violation returns how far row r is from being satisfied at x (0 when it
// holds).
func (p *Program) Violation(r int, x []bool) float64 {
	c := p.Constraints[r]
	return violation(c.Sense, p.Activity(r, x), p.Activity(r, x), c.RHS)
}

// Feasible reports whether x satisfies every row within tol.
func (p *Program) Feasible(x []bool, tol float64) bool {
	for r, c := range p.Constraints {
		if p.Violation(r, x) > tol*(1+math.Abs(c.RHS)) {
			return false
		}
	}
	return true
}

// violation is the smallest possible violation of a row whose activity
// lies in [minAct, maxAct].
func violation(sense Sense, minAct, maxAct, rhs float64) float64 {
	switch sense {
	case LessEqual:
		return math.Max(0, minAct-rhs)
	case GreaterEqual:
		return math.Max(0, rhs-maxAct)
	default:
		return math.Max(0, math.Max(minAct-rhs, rhs-maxAct))
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
