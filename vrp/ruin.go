package vrp

import (
	"math"
	"sort"
)

// Ruin removes a subset of assigned jobs from ctx, requeueing them into
// Required via Requeue (which itself skips any job marked Locked).
type Ruin interface {
	Run(ctx *InsertionContext)
}

// ruinCount scales the number of jobs to remove with problem size and a
// configurable ratio, always removing at least one job when any are
// assigned.
func ruinCount(assigned int, ratio float64) int {
	if assigned == 0 {
		return 0
	}
	n := int(math.Ceil(float64(assigned) * ratio))
	if n < 1 {
		n = 1
	}
	if n > assigned {
		n = assigned
	}
	return n
}

func assignedJobs(ctx *InsertionContext) []Job {
	var jobs []Job
	for id := range ctx.AssignedJobIDs() {
		if ctx.Locked[id] {
			continue
		}
		if j := ctx.Problem.JobByID(id); j != nil {
			jobs = append(jobs, j)
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].JobID() < jobs[j].JobID() })
	return jobs
}

// RuinRandomJob removes a uniformly random subset of assigned, unlocked
// jobs.
type RuinRandomJob struct {
	Ratio float64
}

func (r *RuinRandomJob) Run(ctx *InsertionContext) {
	candidates := assignedJobs(ctx)
	n := ruinCount(len(candidates), r.Ratio)
	ctx.Random.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	for _, j := range candidates[:n] {
		ctx.Requeue(j)
	}
}

// RuinAdjacentString removes a contiguous segment of jobs from a single,
// randomly chosen route, preserving the order jobs appear within the
// removed segment.
type RuinAdjacentString struct {
	Ratio float64
}

func (r *RuinAdjacentString) Run(ctx *InsertionContext) {
	var candidates []*RouteContext
	for _, rc := range ctx.Routes {
		if rc.Route.Tour.HasJobs() {
			candidates = append(candidates, rc)
		}
	}
	if len(candidates) == 0 {
		return
	}
	route := candidates[ctx.Random.Intn(len(candidates))]
	ids := route.Route.Tour.JobIDs()
	n := ruinCount(len(ids), r.Ratio)
	if n == 0 {
		return
	}
	start := ctx.Random.Intn(len(ids) - n + 1)
	for _, id := range ids[start : start+n] {
		if j := ctx.Problem.JobByID(id); j != nil {
			ctx.Requeue(j)
		}
	}
}

// RuinNeighborhood removes jobs spatially close to a randomly chosen seed
// job, measured by transport distance from the seed's primary place.
type RuinNeighborhood struct {
	Ratio     float64
	Transport TransportCost
}

func (r *RuinNeighborhood) Run(ctx *InsertionContext) {
	candidates := assignedJobs(ctx)
	n := ruinCount(len(candidates), r.Ratio)
	if n == 0 {
		return
	}
	seed := candidates[ctx.Random.Intn(len(candidates))]
	seedLoc := seed.Places()[0][0].Location

	type scored = struct {
		job  Job
		dist Distance
	}
	scoredJobs := make([]scored, len(candidates))
	for i, j := range candidates {
		loc := j.Places()[0][0].Location
		scoredJobs[i] = scored{job: j, dist: Distance(r.Transport.Distance(0, seedLoc, loc, 0))}
	}
	sortByDistance(scoredJobs)

	for i := 0; i < n; i++ {
		ctx.Requeue(scoredJobs[i].job)
	}
}

func sortByDistance(s []struct {
	job  Job
	dist Distance
}) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].dist < s[j-1].dist; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

// CompositeRuin chooses one of several weighted Ruin strategies by a
// weighted random draw each time it runs, mirroring CompositeRecreate's
// selection shape on the ruin side.
type CompositeRuin struct {
	strategies []Ruin
	weights    []int
}

// WeightedRuinPair pairs a Ruin strategy with its selection weight.
type WeightedRuinPair struct {
	Ruin   Ruin
	Weight int
}

// NewCompositeRuin builds a CompositeRuin from weighted pairs.
func NewCompositeRuin(pairs ...WeightedRuinPair) *CompositeRuin {
	c := &CompositeRuin{}
	for _, p := range pairs {
		c.strategies = append(c.strategies, p.Ruin)
		c.weights = append(c.weights, p.Weight)
	}
	return c
}

// DefaultCompositeRuin mirrors a typical reference mix: random-job
// (weight 40), adjacent-string (weight 30), neighborhood (weight 30).
func DefaultCompositeRuin(transport TransportCost) *CompositeRuin {
	return NewCompositeRuin(
		WeightedRuinPair{&RuinRandomJob{Ratio: 0.2}, 40},
		WeightedRuinPair{&RuinAdjacentString{Ratio: 0.3}, 30},
		WeightedRuinPair{&RuinNeighborhood{Ratio: 0.2, Transport: transport}, 30},
	)
}

// Run draws one strategy by weighted random choice and runs it.
func (c *CompositeRuin) Run(ctx *InsertionContext) {
	if len(c.strategies) == 0 {
		return
	}
	c.strategies[weightedChoice(ctx.Random, c.weights)].Run(ctx)
}
