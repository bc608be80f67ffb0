package vrp

import "testing"

// TestRecreate_TwoJobsTightWindows covers two jobs whose windows are both
// feasible: cheapest insertion must produce start -> A -> B -> end with an
// exact, predictable arrival/departure schedule.
func TestRecreate_TwoJobsTightWindows(t *testing.T) {
	problem := buildTwoJobProblem(TimeWindow{Start: 0, End: 100}, TimeWindow{Start: 50, End: 120})
	ctx := NewInsertionContext(problem, newTestRNG())

	eval := NewInsertionEvaluator(problem)
	(&RecreateWithCheapest{Evaluator: eval}).Run(ctx)

	if len(ctx.Required) != 0 || len(ctx.Unassigned) != 0 {
		t.Fatalf("expected both jobs assigned, required=%v unassigned=%v", ctx.Required, ctx.Unassigned)
	}
	if len(ctx.Routes) != 1 {
		t.Fatalf("expected exactly one route, got %d", len(ctx.Routes))
	}

	tour := ctx.Routes[0].Route.Tour
	ids := tour.JobIDs()
	if len(ids) != 2 || ids[0] != "A" || ids[1] != "B" {
		t.Fatalf("expected tour order [A B], got %v", ids)
	}

	var activityA, activityB *Activity
	for _, a := range tour.Activities {
		switch a.JobID {
		case "A":
			activityA = a
		case "B":
			activityB = a
		}
	}
	if activityA == nil || activityB == nil {
		t.Fatal("missing job activities in tour")
	}

	const eps = 1e-9
	if diff := activityA.Schedule.Arrival - 20; diff > eps || diff < -eps {
		t.Errorf("arrival(A) = %v, want 20", activityA.Schedule.Arrival)
	}
	if diff := activityA.Schedule.Departure - 30; diff > eps || diff < -eps {
		t.Errorf("departure(A) = %v, want 30", activityA.Schedule.Departure)
	}
	if diff := activityB.Schedule.Arrival - 50; diff > eps || diff < -eps {
		t.Errorf("arrival(B) = %v, want 50", activityB.Schedule.Arrival)
	}
	if diff := activityB.Schedule.Departure - 60; diff > eps || diff < -eps {
		t.Errorf("departure(B) = %v, want 60", activityB.Schedule.Departure)
	}
}

// TestRecreate_InfeasibleWindowLeavesOneUnassigned covers B's window
// shrinking to [0,25], which can no longer follow A within the shared
// vehicle's single route. One of the two jobs must end up unassigned, and
// the recreate loop must terminate rather than spin.
func TestRecreate_InfeasibleWindowLeavesOneUnassigned(t *testing.T) {
	problem := buildTwoJobProblem(TimeWindow{Start: 0, End: 100}, TimeWindow{Start: 0, End: 25})
	ctx := NewInsertionContext(problem, newTestRNG())

	eval := NewInsertionEvaluator(problem)
	(&RecreateWithCheapest{Evaluator: eval}).Run(ctx)

	assignedCount := 2 - len(ctx.Required) - len(ctx.Unassigned)
	if assignedCount != 1 {
		t.Fatalf("expected exactly one job assigned, got %d assigned (required=%v unassigned=%v)",
			assignedCount, ctx.Required, ctx.Unassigned)
	}
	if len(ctx.Unassigned) != 1 {
		t.Fatalf("expected exactly one unassigned job with a reason code, got %v", ctx.Unassigned)
	}
}

// TestInsertionEvaluator_Determinism checks that an identical RNG seed and
// problem reproduce the same insertion cost.
func TestInsertionEvaluator_Determinism(t *testing.T) {
	problem := buildTwoJobProblem(TimeWindow{Start: 0, End: 100}, TimeWindow{Start: 50, End: 120})
	eval := NewInsertionEvaluator(problem)

	ctx1 := NewInsertionContext(problem, newTestRNG())
	res1 := eval.Evaluate(problem.Jobs[0], ctx1)

	ctx2 := NewInsertionContext(problem, newTestRNG())
	res2 := eval.Evaluate(problem.Jobs[0], ctx2)

	if res1.Failure != nil || res2.Failure != nil {
		t.Fatalf("expected both evaluations to succeed, got failures %v %v", res1.Failure, res2.Failure)
	}
	if res1.Success.Cost != res2.Success.Cost {
		t.Errorf("costs diverged across identical runs: %v != %v", res1.Success.Cost, res2.Success.Cost)
	}
}

// TestInsertionEvaluator_ParallelMatchesSequential checks that turning on
// Parallel candidate-route evaluation never changes the chosen insertion:
// only wall-clock time should differ, never the result.
func TestInsertionEvaluator_ParallelMatchesSequential(t *testing.T) {
	problem := buildTwoJobProblem(TimeWindow{Start: 0, End: 100}, TimeWindow{Start: 50, End: 120})

	seqEval := NewInsertionEvaluator(problem)
	seqCtx := NewInsertionContext(problem, newTestRNG())
	seqRes := seqEval.Evaluate(problem.Jobs[0], seqCtx)

	parEval := NewInsertionEvaluator(problem)
	parEval.Parallel = true
	parCtx := NewInsertionContext(problem, newTestRNG())
	parRes := parEval.Evaluate(problem.Jobs[0], parCtx)

	if seqRes.Failure != nil || parRes.Failure != nil {
		t.Fatalf("expected both evaluations to succeed, got failures %v %v", seqRes.Failure, parRes.Failure)
	}
	if seqRes.Success.Cost != parRes.Success.Cost {
		t.Errorf("parallel cost %v diverged from sequential cost %v", parRes.Success.Cost, seqRes.Success.Cost)
	}
	if len(seqRes.Success.Placements) != len(parRes.Success.Placements) {
		t.Fatalf("placement count diverged: sequential=%d parallel=%d",
			len(seqRes.Success.Placements), len(parRes.Success.Placements))
	}
	for i := range seqRes.Success.Placements {
		if seqRes.Success.Placements[i].Position != parRes.Success.Placements[i].Position {
			t.Errorf("placement %d position diverged: sequential=%d parallel=%d",
				i, seqRes.Success.Placements[i].Position, parRes.Success.Placements[i].Position)
		}
	}
}

// TestApply_ThenRemove_RestoresPriorForm checks that inserting then
// removing a job leaves the route equal to its prior form (structurally:
// same tour length and activity kinds).
func TestApply_ThenRemove_RestoresPriorForm(t *testing.T) {
	problem := buildTwoJobProblem(TimeWindow{Start: 0, End: 100}, TimeWindow{Start: 50, End: 120})
	ctx := NewInsertionContext(problem, newTestRNG())
	eval := NewInsertionEvaluator(problem)

	res := eval.Evaluate(problem.Jobs[0], ctx)
	if res.Failure != nil {
		t.Fatalf("expected feasible insertion, got failure %v", *res.Failure)
	}
	Apply(ctx, problem.Jobs[0], res.Success)

	if len(ctx.Routes) != 1 {
		t.Fatalf("expected one route opened, got %d", len(ctx.Routes))
	}
	beforeLen := len(ctx.Routes[0].Route.Tour.Activities)

	ctx.Requeue(problem.Jobs[0])

	afterLen := len(ctx.Routes[0].Route.Tour.Activities)
	if afterLen != beforeLen-1 {
		t.Fatalf("expected tour to shrink by exactly one activity, before=%d after=%d", beforeLen, afterLen)
	}
	if len(ctx.Routes[0].Route.Tour.JobIDs()) != 0 {
		t.Fatalf("expected no job activities left after requeue, got %v", ctx.Routes[0].Route.Tour.JobIDs())
	}
}
