package vrp

// Problem is the immutable input graph: jobs, fleet, cost services, the
// composed constraint pipeline and objective. Built once and shared by
// reference across every worker; never mutated after construction.
type Problem struct {
	Jobs       []Job
	Fleet      *Fleet
	Transport  TransportCost
	Activity   ActivityCost
	Pipeline   *Pipeline
	Objective  Objective
	jobsByID   map[string]Job
}

// NewProblem builds a Problem and indexes its jobs by ID.
func NewProblem(jobs []Job, fleet *Fleet, transport TransportCost, activity ActivityCost, pipeline *Pipeline, objective Objective) *Problem {
	p := &Problem{
		Jobs:      jobs,
		Fleet:     fleet,
		Transport: transport,
		Activity:  activity,
		Pipeline:  pipeline,
		Objective: objective,
		jobsByID:  make(map[string]Job, len(jobs)),
	}
	for _, j := range jobs {
		p.jobsByID[j.JobID()] = j
	}
	return p
}

// JobByID looks up a job by its stable ID.
func (p *Problem) JobByID(id string) Job {
	return p.jobsByID[id]
}
