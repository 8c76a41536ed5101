// Package solver defines the combinatorial-solving capability the model
// builder hands its models to, plus the default in-process engine. The
// contract is deliberately narrow: given a model and a want-k, return up
// to k distinct satisfying assignments within the context deadline.
package solver

import (
	"context"

	"interview-scheduler/cpmodel"
	"interview-scheduler/models"
)

// Assignment is one satisfying valuation of a model's decision
// variables: a start slot per stage and an interviewer per seat, both in
// the model's stage order.
type Assignment struct {
	Starts []int
	Seats  [][]string
}

// Result carries the solve status and whatever assignments were found.
// On timeout the partial assignment list is valid, not an error.
type Result struct {
	Status      models.Status
	Assignments []Assignment
}

// Solver is the external solving capability. Implementations must
// return distinct assignments (differing in at least one variable),
// honor ctx cancellation as a cooperative cutoff, and report
// FEASIBLE/TIMEOUT rather than failing when the deadline lands
// mid-search.
type Solver interface {
	Solve(ctx context.Context, m *cpmodel.Model, wantK int) Result
}
