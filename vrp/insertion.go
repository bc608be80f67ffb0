package vrp

import (
	"runtime"
	"sort"
	"sync"
)

// Placement is one activity to insert at a given position in a given
// route, as decided by the InsertionEvaluator. For a MultiJob, Placements
// holds one entry per sub-job, in application order.
type Placement struct {
	RouteIndex int // index into InsertionContext.Routes; -1 for a new route
	NewActor   *Actor // set only when RouteIndex == -1: the actor to open a route for
	Position   int
	Activity   *Activity
}

// InsertionSuccess is returned when a job can be placed.
type InsertionSuccess struct {
	JobID      string
	Cost       Cost
	Placements []Placement
}

// InsertionResult is either a Success or a Failure(code); never both.
type InsertionResult struct {
	Success *InsertionSuccess
	Failure *ErrorCode
}

// routeCandidate is one route (existing or a synthetic one for an unused
// actor) considered during evaluation. index is a deterministic
// tie-breaking ordinal only: non-negative and equal to the route's
// position in InsertionContext.Routes for existing routes, strictly
// negative (ordered by actor ID) for synthetic unused-actor candidates.
type routeCandidate struct {
	index int
	route *RouteContext
	isNew bool
}

// InsertionEvaluator finds the best feasible insertion position for a job
// across every route (plus a synthetic empty route per unused actor),
// scored by the Problem's constraint pipeline.
type InsertionEvaluator struct {
	Problem *Problem
	// Parallel fans candidate-route evaluation out across a bounded
	// worker pool instead of evaluating routes one at a time. Each
	// RouteContext candidate is locally owned by its own evaluation task
	// and touches no shared mutable state, so this changes only wall-
	// clock time, never the chosen result: candidates are still combined
	// by the same deterministic min-cost/min-routes/lowest-ordinal rule
	// regardless of completion order.
	Parallel bool
}

// NewInsertionEvaluator builds an evaluator bound to problem.
func NewInsertionEvaluator(problem *Problem) *InsertionEvaluator {
	return &InsertionEvaluator{Problem: problem}
}

// candidateOutcome is one candidate route's evaluation result, collected
// by both the sequential and parallel code paths before the deterministic
// reduction to a single winner.
type candidateOutcome struct {
	cand       routeCandidate
	cost       Cost
	placements []Placement
	ok         bool
	code       *ErrorCode
}

// Evaluate finds the cheapest feasible insertion of job into ctx, or a
// Failure carrying the last constraint code that blocked it.
func (e *InsertionEvaluator) Evaluate(job Job, ctx *InsertionContext) InsertionResult {
	candidates := e.candidateRoutes(ctx)

	var outcomes []candidateOutcome
	if e.Parallel {
		outcomes = e.evaluateCandidatesParallel(job, candidates)
	} else {
		outcomes = e.evaluateCandidatesSequential(job, candidates)
	}

	var best *InsertionSuccess
	var bestRoutes int
	var bestOrdinal int
	var bestIsNew bool
	var bestActor *Actor
	haveBest := false
	lastFailure := NewViolationCode() // placeholder; overwritten below if any violation observed
	sawFailure := false

	for _, out := range outcomes {
		if !out.ok {
			if out.code != nil {
				lastFailure, sawFailure = *out.code, true
			}
			continue
		}

		routesIfChosen := len(ctx.Routes)
		if out.cand.isNew {
			routesIfChosen++
		}

		if !haveBest || out.cost < best.Cost ||
			(out.cost == best.Cost && routesIfChosen < bestRoutes) ||
			(out.cost == best.Cost && routesIfChosen == bestRoutes && out.cand.index < bestOrdinal) {
			best = &InsertionSuccess{JobID: job.JobID(), Cost: out.cost, Placements: out.placements}
			bestRoutes = routesIfChosen
			bestOrdinal = out.cand.index
			bestIsNew = out.cand.isNew
			bestActor = out.cand.route.Route.Actor
			haveBest = true
		}
	}

	if !haveBest {
		if !sawFailure {
			lastFailure = NewViolationCode()
		}
		return InsertionResult{Failure: &lastFailure}
	}
	for i := range best.Placements {
		if bestIsNew {
			best.Placements[i].RouteIndex = -1
			best.Placements[i].NewActor = bestActor
		} else {
			best.Placements[i].RouteIndex = bestOrdinal
			best.Placements[i].NewActor = nil
		}
	}
	return InsertionResult{Success: best}
}

// evaluateCandidatesSequential evaluates every candidate route one at a
// time, in candidate order.
func (e *InsertionEvaluator) evaluateCandidatesSequential(job Job, candidates []routeCandidate) []candidateOutcome {
	pipeline := e.Problem.Pipeline
	outcomes := make([]candidateOutcome, len(candidates))
	for i, cand := range candidates {
		outcomes[i] = e.evaluateCandidate(pipeline, job, cand)
	}
	return outcomes
}

// evaluateCandidatesParallel evaluates candidate routes across a bounded
// worker pool (min(GOMAXPROCS, len(candidates)) workers), collecting
// results into a slice indexed by candidate position so the reduction in
// Evaluate sees the same outcomes in the same order as the sequential
// path, regardless of which worker finishes first.
func (e *InsertionEvaluator) evaluateCandidatesParallel(job Job, candidates []routeCandidate) []candidateOutcome {
	pipeline := e.Problem.Pipeline
	outcomes := make([]candidateOutcome, len(candidates))

	workers := runtime.GOMAXPROCS(0)
	if workers > len(candidates) {
		workers = len(candidates)
	}
	if workers < 1 {
		workers = 1
	}

	indices := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indices {
				outcomes[i] = e.evaluateCandidate(pipeline, job, candidates[i])
			}
		}()
	}
	for i := range candidates {
		indices <- i
	}
	close(indices)
	wg.Wait()
	return outcomes
}

// evaluateCandidate runs the hard route constraints then the per-position
// search for a single candidate route.
func (e *InsertionEvaluator) evaluateCandidate(pipeline *Pipeline, job Job, cand routeCandidate) candidateOutcome {
	if v := pipeline.EvaluateJob(cand.route, job); v != nil {
		return candidateOutcome{cand: cand, ok: false, code: &v.Code}
	}
	cost, placements, ok, code := e.evaluateRoute(cand, job)
	return candidateOutcome{cand: cand, cost: cost, placements: placements, ok: ok, code: code}
}

// candidateRoutes returns every existing route plus one synthetic empty
// route per actor not currently in use, sorted by actor ID for
// deterministic tie-breaking.
func (e *InsertionEvaluator) candidateRoutes(ctx *InsertionContext) []routeCandidate {
	candidates := make([]routeCandidate, 0, len(ctx.Routes)+len(e.Problem.Fleet.Actors))
	used := make(map[string]bool, len(ctx.Routes))
	for i, rc := range ctx.Routes {
		candidates = append(candidates, routeCandidate{index: i, route: rc})
		used[rc.Route.Actor.ID] = true
	}

	unused := make([]*Actor, 0)
	for _, a := range e.Problem.Fleet.Actors {
		if !used[a.ID] {
			unused = append(unused, a)
		}
	}
	sort.Slice(unused, func(i, j int) bool { return unused[i].ID < unused[j].ID })

	for i, a := range unused {
		candidates = append(candidates, routeCandidate{
			index: -1 - i, // distinct negative indices; resolved to -1 "new route" on success
			route: NewEmptyRouteContext(a),
			isNew: true,
		})
	}
	return candidates
}

// evaluateRoute finds the cheapest feasible placement of job within a
// single candidate route.
func (e *InsertionEvaluator) evaluateRoute(cand routeCandidate, job Job) (Cost, []Placement, bool, *ErrorCode) {
	alternatives := job.Places()
	if len(alternatives) == 1 {
		return e.evaluateSingle(cand, job, alternatives[0])
	}
	return e.evaluateMulti(cand, job, alternatives)
}

// evaluateSingle tries every position and every place alternative for a
// one-place job.
func (e *InsertionEvaluator) evaluateSingle(cand routeCandidate, job Job, alts []Place) (Cost, []Placement, bool, *ErrorCode) {
	pipeline := e.Problem.Pipeline
	tour := cand.route.Route.Tour
	maxPos := len(tour.Activities)
	if end := tour.End(); end != nil {
		maxPos--
	}

	var bestCost Cost
	var bestPlacement *Placement
	var lastCode *ErrorCode

	for _, alt := range alts {
		for p := 1; p <= maxPos; p++ {
			prev := tour.Activities[p-1]
			var next *Activity
			if p < len(tour.Activities) {
				next = tour.Activities[p]
			}
			candidate := NewActivity(ActivityJob, job.JobID(), 0, alt)
			actx := &ActivityContext{Prev: prev, Target: candidate, Next: next}

			if v := pipeline.EvaluateActivity(cand.route, actx); v != nil {
				lastCode = &v.Code
				if v.Stopped {
					break
				}
				continue
			}

			cost := pipeline.EstimateActivity(cand.route, actx) + pipeline.EstimateJob(cand.route, job)
			if bestPlacement == nil || cost < bestCost {
				bestCost = cost
				bestPlacement = &Placement{Position: p, Activity: candidate}
			}
		}
	}

	if bestPlacement == nil {
		return 0, nil, false, lastCode
	}
	return bestCost, []Placement{*bestPlacement}, true, nil
}

// evaluateMulti recursively enumerates insertion positions for each
// sub-job of a Multi job, requiring sub-job i+1 to land strictly after
// sub-job i, pruning any partial insertion whose cost so far already
// exceeds the best complete insertion found.
func (e *InsertionEvaluator) evaluateMulti(cand routeCandidate, job Job, subs [][]Place) (Cost, []Placement, bool, *ErrorCode) {
	pipeline := e.Problem.Pipeline
	baseline := pipeline.EstimateJob(cand.route, job)

	best := struct {
		cost       Cost
		placements []Placement
		found      bool
	}{}
	var lastCode *ErrorCode
	stopped := false

	working := append([]*Activity(nil), cand.route.Route.Tour.Activities...)

	var recurse func(subIdx int, minPos int, accCost Cost, placements []Placement)
	recurse = func(subIdx int, minPos int, accCost Cost, placements []Placement) {
		if stopped {
			return
		}
		if subIdx == len(subs) {
			if !best.found || accCost < best.cost {
				best.cost = accCost
				best.placements = append([]Placement(nil), placements...)
				best.found = true
			}
			return
		}

		maxPos := len(working)
		if subIdx == 0 {
			if end := lastActivityIsEnd(working); end {
				maxPos--
			}
		} else if lastActivityIsEnd(working) {
			maxPos--
		}

		for p := minPos; p <= maxPos; p++ {
			prev := working[p-1]
			var next *Activity
			if p < len(working) {
				next = working[p]
			}
			for _, alt := range subs[subIdx] {
				candidate := NewActivity(ActivityJob, job.JobID(), subIdx, alt)
				actx := &ActivityContext{Prev: prev, Target: candidate, Next: next}

				v := pipeline.EvaluateActivity(cand.route, actx)
				if v != nil {
					lastCode = &v.Code
					if v.Stopped {
						stopped = true
						return
					}
					continue
				}

				cost := pipeline.EstimateActivity(cand.route, actx)
				if subIdx == 0 {
					cost += baseline
				}
				if best.found && accCost+cost >= best.cost {
					continue // pruned: cannot beat the best complete insertion found so far
				}

				nextWorking := append([]*Activity(nil), working[:p]...)
				nextWorking = append(nextWorking, candidate)
				nextWorking = append(nextWorking, working[p:]...)

				savedWorking := working
				working = nextWorking
				recurse(subIdx+1, p+1, accCost+cost, append(placements, Placement{Position: p, Activity: candidate}))
				working = savedWorking

				if stopped {
					return
				}
			}
		}
	}

	recurse(0, 1, 0, nil)

	if !best.found {
		return 0, nil, false, lastCode
	}
	return best.cost, best.placements, true, nil
}

func lastActivityIsEnd(activities []*Activity) bool {
	return len(activities) > 0 && activities[len(activities)-1].Kind == ActivityEnd
}

// Apply commits a successful InsertionResult into ctx: opens a new route
// if needed, inserts every placement's activity at its recorded position,
// re-runs the constraint pipeline's AcceptRouteState for the touched
// route, and removes the job from Required.
func Apply(ctx *InsertionContext, job Job, success *InsertionSuccess) {
	var rc *RouteContext
	if first := success.Placements[0]; first.RouteIndex == -1 {
		rc = NewEmptyRouteContext(first.NewActor)
		ctx.Routes = append(ctx.Routes, rc)
	} else {
		rc = ctx.Routes[first.RouteIndex]
	}

	for _, p := range success.Placements {
		rc.Route.Tour.InsertAt(p.Position, p.Activity)
	}

	ctx.Problem.Pipeline.AcceptRouteState(rc)
	ctx.RemoveRequired(job.JobID())
	delete(ctx.Unassigned, job.JobID())
}
