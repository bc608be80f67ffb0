package vrp

import "math/rand"

// buildTwoJobProblem constructs a small two-job fixture: single jobs
// A@loc1, B@loc2 with the given time windows and 10-unit
// service durations, one vehicle shift [0,200] starting and ending at
// loc0, and a uniform 20-unit duration/distance matrix between any two
// distinct locations (0 between a location and itself).
func buildTwoJobProblem(twA, twB TimeWindow) *Problem {
	const size = 3
	durations := make([]float64, size*size)
	distances := make([]float64, size*size)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			if i != j {
				durations[i*size+j] = 20
				distances[i*size+j] = 20
			}
		}
	}
	transport, err := NewMatrixTransportCost([]MatrixData{NewMatrixData(0, durations, distances)})
	if err != nil {
		panic(err)
	}
	activity := SimpleActivityCost{}

	jobA := &SingleJob{ID: "A", Alternatives: []Place{{Location: 1, Duration: 10, TimeWindows: []TimeWindow{twA}}}}
	jobB := &SingleJob{ID: "B", Alternatives: []Place{{Location: 2, Duration: 10, TimeWindows: []TimeWindow{twB}}}}

	end := Location(0)
	actor := &Actor{
		ID:           "v1",
		Profile:      0,
		DriverCosts:  CostFactors{PerDrivingTime: 1, PerWaitingTime: 1},
		VehicleCosts: CostFactors{PerDistance: 1},
		Start:        0,
		End:          &end,
		Shift:        TimeWindow{Start: 0, End: 200},
	}
	fleet := &Fleet{Actors: []*Actor{actor}}

	pipeline := NewPipeline(NewTimingConstraintModule(activity, transport))
	objective := DefaultObjective(transport)

	return NewProblem([]Job{jobA, jobB}, fleet, transport, activity, pipeline, objective)
}

func newTestRNG() *rand.Rand {
	return rand.New(rand.NewSource(1))
}
