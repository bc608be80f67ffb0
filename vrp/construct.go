package vrp

import "math/rand"

// NewInitialSolution builds the starting InsertionContext for a refinement
// run: an empty solution (no routes, every job Required) recreated with a
// cheapest-insertion constructive pass. Used whenever a SolverConfig
// doesn't supply its own InitialSolution.
func NewInitialSolution(problem *Problem, rng *rand.Rand) *InsertionContext {
	ctx := NewInsertionContext(problem, rng)
	eval := NewInsertionEvaluator(problem)
	(&RecreateWithCheapest{Evaluator: eval}).Run(ctx)
	problem.Pipeline.AcceptSolutionState(ctx)
	return ctx
}
