package solver

import (
	"context"
	"fmt"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	cmpb "github.com/google/or-tools/ortools/sat/proto/cpmodel"
	sppb "github.com/google/or-tools/ortools/sat/proto/satparameters"
	"google.golang.org/protobuf/proto"
)

// CPSAT solves models with the OR-Tools CP-SAT solver.
type CPSAT struct{}

// NewCPSAT returns a CP-SAT backed solver.
func NewCPSAT() *CPSAT {
	return &CPSAT{}
}

// Solve translates the neutral model into a CP-SAT model and runs it under
// the configured time limit. A single search worker and a pinned random seed
// keep repeated solves of the same model byte-identical.
func (s *CPSAT) Solve(_ context.Context, m *Model, opts Options) (*Result, error) {
	builder := cpmodel.NewCpModelBuilder()

	vars := make([]cpmodel.IntVar, len(m.vars))
	for i, d := range m.vars {
		vars[i] = builder.NewIntVar(d.lo, d.hi)
	}

	toExpr := func(e *LinearExpr) *cpmodel.LinearExpr {
		out := cpmodel.NewLinearExpr()
		for _, t := range e.terms {
			out.AddTerm(vars[t.v], t.coef)
		}
		return out
	}

	for _, c := range m.constraints {
		switch c.kind {
		case lessOrEqual:
			builder.AddLessOrEqual(toExpr(c.expr), cpmodel.NewConstant(c.rhs))
		case greaterOrEqual:
			builder.AddGreaterOrEqual(toExpr(c.expr), cpmodel.NewConstant(c.rhs))
		case equal:
			builder.AddEquality(toExpr(c.expr), cpmodel.NewConstant(c.rhs))
		}
	}

	if m.objective != nil {
		builder.Maximize(toExpr(m.objective))
	}

	modelProto, err := builder.Model()
	if err != nil {
		return nil, fmt.Errorf("failed to build CP-SAT model: %w", err)
	}

	pb := sppb.SatParameters_builder{
		RandomSeed:       proto.Int32(int32(opts.Seed)),
		NumSearchWorkers: proto.Int32(1),
	}
	if opts.TimeLimit > 0 {
		pb.MaxTimeInSeconds = proto.Float64(opts.TimeLimit.Seconds())
	}
	params := pb.Build()

	response, err := cpmodel.SolveCpModelWithParameters(modelProto, params)
	if err != nil {
		return nil, fmt.Errorf("CP-SAT solve failed: %w", err)
	}

	result := &Result{
		Objective: response.GetObjectiveValue(),
		WallTime:  response.GetWallTime(),
	}

	switch response.GetStatus() {
	case cmpb.CpSolverStatus_OPTIMAL:
		result.Status = StatusOptimal
	case cmpb.CpSolverStatus_FEASIBLE:
		result.Status = StatusFeasible
	case cmpb.CpSolverStatus_INFEASIBLE:
		result.Status = StatusInfeasible
	default:
		result.Status = StatusUnknown
	}

	if result.Status == StatusOptimal || result.Status == StatusFeasible {
		result.Values = make([]int64, len(vars))
		for i, v := range vars {
			result.Values[i] = cpmodel.SolutionIntegerValue(response, v)
		}
	}

	return result, nil
}
