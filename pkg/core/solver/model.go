// Package solver provides a minimal integer-programming model builder and a
// narrow backend interface so the allocation formulations never talk to a
// solver library directly.
package solver

import (
	"context"
	"time"
)

// Status is the outcome of a solve.
type Status int

const (
	StatusUnknown Status = iota

	// StatusOptimal means the solver proved optimality within the budget.
	StatusOptimal

	// StatusFeasible means the time limit was hit and the best incumbent
	// was returned. This is an expected operating condition, not an error.
	StatusFeasible

	// StatusInfeasible means no assignment satisfies the constraints.
	StatusInfeasible
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	default:
		return "unknown"
	}
}

// Var identifies a model variable. Values in a Result are indexed by Var.
type Var int

type term struct {
	v    Var
	coef int64
}

// LinearExpr is an integer linear expression over model variables.
type LinearExpr struct {
	terms []term
}

// NewLinearExpr returns an empty expression.
func NewLinearExpr() *LinearExpr {
	return &LinearExpr{}
}

// Add appends a variable with coefficient 1.
func (e *LinearExpr) Add(v Var) *LinearExpr {
	return e.AddTerm(v, 1)
}

// AddTerm appends coef * v.
func (e *LinearExpr) AddTerm(v Var, coef int64) *LinearExpr {
	e.terms = append(e.terms, term{v: v, coef: coef})
	return e
}

type constraintKind int

const (
	lessOrEqual constraintKind = iota
	greaterOrEqual
	equal
)

type varDef struct {
	lo, hi int64
}

type constraint struct {
	kind constraintKind
	expr *LinearExpr
	rhs  int64
}

// Model is a backend-neutral integer program: integer variables, linear
// constraints against constant bounds, and a linear maximization objective.
type Model struct {
	vars        []varDef
	constraints []constraint
	objective   *LinearExpr
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{}
}

// NewBoolVar adds a 0/1 variable.
func (m *Model) NewBoolVar() Var {
	return m.NewIntVar(0, 1)
}

// NewIntVar adds an integer variable with inclusive bounds.
func (m *Model) NewIntVar(lo, hi int64) Var {
	m.vars = append(m.vars, varDef{lo: lo, hi: hi})
	return Var(len(m.vars) - 1)
}

// AddLessOrEqual constrains expr <= rhs.
func (m *Model) AddLessOrEqual(expr *LinearExpr, rhs int64) {
	m.constraints = append(m.constraints, constraint{kind: lessOrEqual, expr: expr, rhs: rhs})
}

// AddGreaterOrEqual constrains expr >= rhs.
func (m *Model) AddGreaterOrEqual(expr *LinearExpr, rhs int64) {
	m.constraints = append(m.constraints, constraint{kind: greaterOrEqual, expr: expr, rhs: rhs})
}

// AddEquality constrains expr == rhs.
func (m *Model) AddEquality(expr *LinearExpr, rhs int64) {
	m.constraints = append(m.constraints, constraint{kind: equal, expr: expr, rhs: rhs})
}

// Maximize sets the objective.
func (m *Model) Maximize(expr *LinearExpr) {
	m.objective = expr
}

// NumVars reports the number of variables in the model.
func (m *Model) NumVars() int {
	return len(m.vars)
}

// NumConstraints reports the number of constraints in the model.
func (m *Model) NumConstraints() int {
	return len(m.constraints)
}

// Options control a single solve.
type Options struct {
	// TimeLimit is the hard wall-clock budget. The solver's own timeout is
	// the sole cancellation mechanism; a solve is not interruptible mid-run.
	TimeLimit time.Duration

	// Seed pins the backend's internal randomness for reproducibility.
	Seed int64
}

// Result is the outcome of a solve. Values is populated only when Status is
// StatusOptimal or StatusFeasible.
type Result struct {
	Status    Status
	Values    []int64
	Objective float64
	WallTime  float64
}

// Value returns the solved value of v, or 0 when no solution was found.
func (r *Result) Value(v Var) int64 {
	if r.Values == nil {
		return 0
	}
	return r.Values[v]
}

// Solver solves a Model. Implementations must be safe to reuse across runs.
type Solver interface {
	Solve(ctx context.Context, m *Model, opts Options) (*Result, error)
}
