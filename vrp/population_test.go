package vrp

import "testing"

func TestPopulation_AddAndBest(t *testing.T) {
	problem := buildTwoJobProblem(TimeWindow{Start: 0, End: 100}, TimeWindow{Start: 50, End: 120})
	eval := NewInsertionEvaluator(problem)

	better := NewInsertionContext(problem, newTestRNG())
	(&RecreateWithCheapest{Evaluator: eval}).Run(better)

	worse := better.Clone(newTestRNG())
	// requeue B then never reinsert it, making it strictly worse on the
	// unassigned-count axis than the fully assigned "better" solution it was
	// cloned from, so the naming below reflects their actual ordering.
	worse.Requeue(problem.Jobs[1])

	pop := NewPopulation(problem.Objective, false, 4)
	pop.Add(better, 1)
	pop.Add(worse, 2)

	if pop.Size() == 0 {
		t.Fatal("expected a non-empty population after two additions")
	}

	best := pop.Best(false)
	if best == nil {
		t.Fatal("expected a best individual")
	}
	if len(best.Context.Required)+len(best.Context.Unassigned) != 0 {
		t.Errorf("expected the fully-assigned individual to rank best, got unassigned count %d",
			len(best.Context.Required)+len(best.Context.Unassigned))
	}
}

func TestPopulation_BatchSizeSwapsOnMinimizeRoutes(t *testing.T) {
	problem := buildTwoJobProblem(TimeWindow{Start: 0, End: 100}, TimeWindow{Start: 50, End: 120})
	eval := NewInsertionEvaluator(problem)
	ctx := NewInsertionContext(problem, newTestRNG())
	(&RecreateWithCheapest{Evaluator: eval}).Run(ctx)

	minimizingRoutes := NewPopulation(problem.Objective, true, 6)
	for g := 1; g <= 8; g++ {
		minimizingRoutes.Add(ctx.Clone(newTestRNG()), g)
	}
	if len(minimizingRoutes.lessRoutes) > 6 {
		t.Errorf("lessRoutes axis exceeded its batch size: got %d", len(minimizingRoutes.lessRoutes))
	}
	if len(minimizingRoutes.lessCosts) > 2 {
		t.Errorf("lessCosts axis should be capped at the small elite size when minimizing routes: got %d",
			len(minimizingRoutes.lessCosts))
	}

	minimizingCost := NewPopulation(problem.Objective, false, 6)
	for g := 1; g <= 8; g++ {
		minimizingCost.Add(ctx.Clone(newTestRNG()), g)
	}
	if len(minimizingCost.lessCosts) > 6 {
		t.Errorf("lessCosts axis exceeded its batch size: got %d", len(minimizingCost.lessCosts))
	}
	if len(minimizingCost.lessRoutes) > 2 {
		t.Errorf("lessRoutes axis should be capped at the small elite size when minimizing cost: got %d",
			len(minimizingCost.lessRoutes))
	}
}

func TestNewPopulation_PanicsOnSmallBatchSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected NewPopulation to panic for batchSize < 2")
		}
	}()
	NewPopulation(DefaultObjective(nil), false, 1)
}
