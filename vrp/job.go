package vrp

// Place is one candidate location/time/duration/demand alternative for a
// job. A job may offer several alternative Places (e.g. multiple time
// windows, or multiple locations); the insertion evaluator explores each
// independently and keeps the cheapest feasible one.
type Place struct {
	Location    Location
	Duration    Duration
	TimeWindows []TimeWindow
	Demand      Demand
}

// Job is either a SingleJob (one place, one demand) or a MultiJob (an
// ordered group of sub-jobs, e.g. a pickup-delivery shipment, that must
// appear in that order in the same route). ID is a stable, comparable
// identity used for population membership and deterministic tie-breaking.
type Job interface {
	JobID() string
	Skills() []string
	Places() [][]Place
}

// SingleJob is a job with exactly one place choice (possibly with several
// location/time-window alternatives).
type SingleJob struct {
	ID            string
	Alternatives  []Place
	RequiredSkill []string
}

func (j *SingleJob) JobID() string       { return j.ID }
func (j *SingleJob) Skills() []string    { return j.RequiredSkill }
func (j *SingleJob) Places() [][]Place   { return [][]Place{j.Alternatives} }

// MultiJob is an ordered group of sub-jobs (e.g. pickup then delivery) that
// must all be assigned to the same route, in order. Each element of
// SubJobs is itself a set of place alternatives for that step.
type MultiJob struct {
	ID            string
	SubJobs       [][]Place
	RequiredSkill []string
}

func (j *MultiJob) JobID() string     { return j.ID }
func (j *MultiJob) Skills() []string  { return j.RequiredSkill }
func (j *MultiJob) Places() [][]Place { return j.SubJobs }
