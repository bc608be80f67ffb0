package vrp

import "math/rand"

// SolutionState is a keyed scratch bag carried by an InsertionContext for
// cross-route bookkeeping that doesn't belong to any single RouteState,
// such as global cost thresholds used by soft constraints.
type SolutionState map[string]any

// InsertionContext is the mutable solution carrier threaded through every
// ruin/recreate cycle: the current routes, the jobs still needing a home,
// the jobs given up on, the jobs locked against ruin, and a private RNG so
// parallel workers never interleave randomness.
type InsertionContext struct {
	Problem    *Problem
	Routes     []*RouteContext
	Required   []Job            // not yet assigned, will be retried by recreate
	Ignored    []Job            // deliberately excluded from this run
	Unassigned map[string]ErrorCode // jobID -> last constraint code that blocked it
	Locked     map[string]bool  // jobID -> never touched by ruin
	Random     *rand.Rand
	State      SolutionState
}

// NewInsertionContext builds an empty InsertionContext with every problem
// job in Required.
func NewInsertionContext(problem *Problem, rng *rand.Rand) *InsertionContext {
	required := make([]Job, len(problem.Jobs))
	copy(required, problem.Jobs)
	return &InsertionContext{
		Problem:    problem,
		Required:   required,
		Unassigned: make(map[string]ErrorCode),
		Locked:     make(map[string]bool),
		Random:     rng,
		State:      make(SolutionState),
	}
}

// Clone deep-copies routes, state and required/ignored/unassigned/locked
// sets so the clone can be mutated (ruined, recreated) without affecting
// the original. The RNG is intentionally NOT shared: callers must assign a
// fresh one so sibling clones (e.g. across parallel population workers)
// never interleave draws from the same source.
func (ic *InsertionContext) Clone(rng *rand.Rand) *InsertionContext {
	routes := make([]*RouteContext, len(ic.Routes))
	for i, r := range ic.Routes {
		routes[i] = r.Clone()
	}
	required := append([]Job(nil), ic.Required...)
	ignored := append([]Job(nil), ic.Ignored...)
	unassigned := make(map[string]ErrorCode, len(ic.Unassigned))
	for k, v := range ic.Unassigned {
		unassigned[k] = v
	}
	locked := make(map[string]bool, len(ic.Locked))
	for k, v := range ic.Locked {
		locked[k] = v
	}
	state := make(SolutionState, len(ic.State))
	for k, v := range ic.State {
		state[k] = v
	}
	return &InsertionContext{
		Problem:    ic.Problem,
		Routes:     routes,
		Required:   required,
		Ignored:    ignored,
		Unassigned: unassigned,
		Locked:     locked,
		Random:     rng,
		State:      state,
	}
}

// AssignedJobIDs returns the IDs of every job currently present in some
// route's tour.
func (ic *InsertionContext) AssignedJobIDs() map[string]bool {
	out := make(map[string]bool)
	for _, r := range ic.Routes {
		for _, id := range r.Route.Tour.JobIDs() {
			out[id] = true
		}
	}
	return out
}

// RemoveRequired removes jobID from Required, returning whether it was
// present.
func (ic *InsertionContext) RemoveRequired(jobID string) bool {
	for i, j := range ic.Required {
		if j.JobID() == jobID {
			ic.Required = append(ic.Required[:i], ic.Required[i+1:]...)
			return true
		}
	}
	return false
}

// Requeue moves jobID from wherever it is assigned back into Required,
// removing its activities from the owning route's tour and re-running the
// pipeline's AcceptRouteState for that route. No-op if jobID is locked.
func (ic *InsertionContext) Requeue(job Job) {
	id := job.JobID()
	if ic.Locked[id] {
		return
	}
	for _, r := range ic.Routes {
		if removed := r.Route.Tour.RemoveJob(id); len(removed) > 0 {
			ic.Problem.Pipeline.AcceptRouteState(r)
		}
	}
	delete(ic.Unassigned, id)
	for _, j := range ic.Required {
		if j.JobID() == id {
			return
		}
	}
	ic.Required = append(ic.Required, job)
}
