package vrp

import "testing"

// buildPickupDeliveryProblem builds a 4-location uniform-matrix problem with
// one MultiJob (pickup at loc1, delivery at loc2, in that fixed order) and
// one independent SingleJob at loc3, served by a single vehicle.
func buildPickupDeliveryProblem(open bool) *Problem {
	const size = 4
	durations := make([]float64, size*size)
	distances := make([]float64, size*size)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			if i != j {
				durations[i*size+j] = 10
				distances[i*size+j] = 10
			}
		}
	}
	transport, err := NewMatrixTransportCost([]MatrixData{NewMatrixData(0, durations, distances)})
	if err != nil {
		panic(err)
	}
	activity := SimpleActivityCost{}

	wideWindow := TimeWindow{Start: 0, End: 1000}
	shipment := &MultiJob{
		ID: "shipment",
		SubJobs: [][]Place{
			{{Location: 1, Duration: 5, TimeWindows: []TimeWindow{wideWindow}}},
			{{Location: 2, Duration: 5, TimeWindows: []TimeWindow{wideWindow}}},
		},
	}
	other := &SingleJob{ID: "other", Alternatives: []Place{{Location: 3, Duration: 5, TimeWindows: []TimeWindow{wideWindow}}}}

	var end *Location
	if !open {
		loc := Location(0)
		end = &loc
	}
	actor := &Actor{
		ID:           "v1",
		Profile:      0,
		DriverCosts:  CostFactors{PerDrivingTime: 1},
		VehicleCosts: CostFactors{PerDistance: 1},
		Start:        0,
		End:          end,
		Shift:        wideWindow,
	}
	fleet := &Fleet{Actors: []*Actor{actor}}

	pipeline := NewPipeline(NewTimingConstraintModule(activity, transport))
	objective := DefaultObjective(transport)

	return NewProblem([]Job{shipment, other}, fleet, transport, activity, pipeline, objective)
}

// TestRecreate_PickupBeforeDeliveryOrderPreserved checks that a MultiJob's
// sub-jobs never land out of order, across randomized ruin-and-recreate
// rounds driven by a fixed seed.
func TestRecreate_PickupBeforeDeliveryOrderPreserved(t *testing.T) {
	problem := buildPickupDeliveryProblem(false)
	solver := NewSolver(problem, SolverConfig{MaxGenerations: 20, PopulationBatchSize: 4, Seed: 7})
	solution, err := solver.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, rc := range solution.Routes {
		pickupPos, deliveryPos := -1, -1
		for i, a := range rc.Route.Tour.Activities {
			if a.JobID != "shipment" {
				continue
			}
			switch a.SubIndex {
			case 0:
				pickupPos = i
			case 1:
				deliveryPos = i
			}
		}
		if pickupPos == -1 || deliveryPos == -1 {
			continue // shipment may have landed in a different route or stayed unassigned
		}
		if pickupPos >= deliveryPos {
			t.Errorf("pickup (position %d) did not precede delivery (position %d)", pickupPos, deliveryPos)
		}
	}
}

// TestSolver_OpenVRPHasNoEndActivity checks that an actor with no End
// location never gets a synthesized shift-end activity in its tour.
func TestSolver_OpenVRPHasNoEndActivity(t *testing.T) {
	problem := buildPickupDeliveryProblem(true)
	solver := NewSolver(problem, SolverConfig{MaxGenerations: 10, PopulationBatchSize: 4, Seed: 3})
	solution, err := solver.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, rc := range solution.Routes {
		if rc.Route.Tour.End() != nil {
			t.Error("expected an open-VRP route to have no shift-end activity")
		}
	}
}

// TestSolver_MinimizeRoutesPrefersFewerRoutes checks that turning on
// MinimizeRoutes never yields a solution using more routes than the
// cost-minimizing run on the same problem and seed.
func TestSolver_MinimizeRoutesPrefersFewerRoutes(t *testing.T) {
	problemA := buildPickupDeliveryProblem(false)
	costFirst := NewSolver(problemA, SolverConfig{MaxGenerations: 20, PopulationBatchSize: 4, Seed: 11, MinimizeRoutes: false})
	costSolution, err := costFirst.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	problemB := buildPickupDeliveryProblem(false)
	routesFirst := NewSolver(problemB, SolverConfig{MaxGenerations: 20, PopulationBatchSize: 4, Seed: 11, MinimizeRoutes: true})
	routesSolution, err := routesFirst.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	countUsed := func(ctx *InsertionContext) int {
		n := 0
		for _, rc := range ctx.Routes {
			if rc.Route.Tour.HasJobs() {
				n++
			}
		}
		return n
	}

	if countUsed(routesSolution) > countUsed(costSolution) {
		t.Errorf("minimize-routes run used more routes (%d) than the cost-first run (%d)",
			countUsed(routesSolution), countUsed(costSolution))
	}
}

// TestSolver_DeterministicAcrossIdenticalSeeds checks that two runs built
// from the same seed, problem, and configuration reproduce the same final
// best fitness.
func TestSolver_DeterministicAcrossIdenticalSeeds(t *testing.T) {
	config := SolverConfig{MaxGenerations: 15, PopulationBatchSize: 4, Seed: 42}

	solution1, err := NewSolver(buildPickupDeliveryProblem(false), config).Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	solution2, err := NewSolver(buildPickupDeliveryProblem(false), config).Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fitness1 := solution1.Problem.Objective.Fitness(solution1)
	fitness2 := solution2.Problem.Objective.Fitness(solution2)
	if fitness1 != fitness2 {
		t.Errorf("identical seeds diverged: %v != %v", fitness1, fitness2)
	}
}

// TestSolver_CostVariationStopsBeforeMaxGenerations checks that the
// coefficient-of-variation termination can stop a run well short of its
// generation cap once the best fitness plateaus.
func TestSolver_CostVariationStopsBeforeMaxGenerations(t *testing.T) {
	problem := buildPickupDeliveryProblem(false)
	config := SolverConfig{
		MaxGenerations:      100000,
		VariationSample:     5,
		VariationThreshold:  0.0001,
		PopulationBatchSize: 4,
		Seed:                9,
		Recreate:            NewCompositeRecreate(WeightedRecreate{&RecreateWithCheapest{Evaluator: NewInsertionEvaluator(problem)}, 1}),
		Ruin:                NewCompositeRuin(WeightedRuinPair{&RuinRandomJob{Ratio: 0.01}, 1}),
	}
	solver := NewSolver(problem, config)
	if _, err := solver.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
