package vrp

import (
	"testing"
	"time"
)

func newTrivialRefinementContext() *RefinementContext {
	problem := buildTwoJobProblem(TimeWindow{Start: 0, End: 100}, TimeWindow{Start: 50, End: 120})
	pop := NewPopulation(problem.Objective, false, 4)
	ctx := NewInsertionContext(problem, newTestRNG())
	pop.Add(ctx, 1)
	return &RefinementContext{Problem: problem, Population: pop, Generation: 0, State: make(map[string]any)}
}

func TestMaxGenerations(t *testing.T) {
	term := MaxGenerations{Max: 5}
	rc := newTrivialRefinementContext()

	rc.Generation = 4
	if term.IsTerminated(rc) {
		t.Error("expected no termination before reaching Max")
	}
	rc.Generation = 5
	if !term.IsTerminated(rc) {
		t.Error("expected termination once Generation reaches Max")
	}
}

func TestCostVariation_StopsOncePlateaued(t *testing.T) {
	rc := newTrivialRefinementContext()
	term := &CostVariation{Sample: 3, Threshold: 0.01}

	// Generations 0..1: not enough samples yet to evaluate variation.
	for rc.Generation = 0; rc.Generation < 2; rc.Generation++ {
		if term.IsTerminated(rc) {
			t.Fatalf("expected no termination before %d samples collected", term.Sample)
		}
	}
	// Generation 2: ring buffer full of identical fitness values (the
	// population never changed), so the coefficient of variation is 0.
	rc.Generation = 2
	if !term.IsTerminated(rc) {
		t.Error("expected termination once the cost has plateaued across the sample window")
	}
}

func TestCoefficientOfVariation(t *testing.T) {
	if cv := coefficientOfVariation([]float64{10, 10, 10}); cv != 0 {
		t.Errorf("expected coefficient of variation 0 for a constant series, got %v", cv)
	}
	if cv := coefficientOfVariation([]float64{0, 0, 0}); cv != 0 {
		t.Errorf("expected coefficient of variation 0 for a zero-mean series, got %v", cv)
	}
	if cv := coefficientOfVariation([]float64{5, 15}); cv <= 0 {
		t.Errorf("expected a positive coefficient of variation for a varying series, got %v", cv)
	}
}

func TestTimeLimit(t *testing.T) {
	rc := newTrivialRefinementContext()

	past := TimeLimit{Deadline: time.Now().Add(-time.Second)}
	if !past.IsTerminated(rc) {
		t.Error("expected termination once the deadline has passed")
	}

	future := TimeLimit{Deadline: time.Now().Add(time.Hour)}
	if future.IsTerminated(rc) {
		t.Error("expected no termination before the deadline")
	}

	var zero TimeLimit
	if zero.IsTerminated(rc) {
		t.Error("expected a zero Deadline to never terminate")
	}
}

func TestOrTermination_FiresOnAnyMember(t *testing.T) {
	rc := newTrivialRefinementContext()
	rc.Generation = 10

	term := OrTermination{Terminations: []Termination{
		MaxGenerations{Max: 100},
		MaxGenerations{Max: 5},
	}}
	if !term.IsTerminated(rc) {
		t.Error("expected OrTermination to fire because one member terminated")
	}

	noneFiring := OrTermination{Terminations: []Termination{
		MaxGenerations{Max: 100},
		TimeLimit{},
	}}
	if noneFiring.IsTerminated(rc) {
		t.Error("expected OrTermination not to fire when no member terminates")
	}
}
