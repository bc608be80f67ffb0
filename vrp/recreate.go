package vrp

import (
	"math/rand"
	"sort"
)

// Recreate re-inserts every job in ctx.Required, mutating ctx in place.
// Jobs that cannot be placed anywhere are recorded in ctx.Unassigned and
// left out of Required.
type Recreate interface {
	Run(ctx *InsertionContext)
}

// RecreateWithCheapest repeatedly finds the single cheapest (job,
// insertion) pair across every still-unassigned job and every route, and
// applies it, until nothing more can be inserted.
type RecreateWithCheapest struct {
	Evaluator *InsertionEvaluator
}

func (r *RecreateWithCheapest) Run(ctx *InsertionContext) {
	runCheapestLoop(ctx, r.Evaluator, func(InsertionSuccess) bool { return false })
}

// RecreateWithBlinks behaves like RecreateWithCheapest but, with
// probability BlinkRate, skips an otherwise-winning placement — a
// diversification mechanism that leaves a job queued for a later pass
// instead of always taking the locally cheapest slot.
type RecreateWithBlinks struct {
	Evaluator *InsertionEvaluator
	BlinkRate float64
}

func (r *RecreateWithBlinks) Run(ctx *InsertionContext) {
	runCheapestLoop(ctx, r.Evaluator, func(InsertionSuccess) bool {
		return ctx.Random.Float64() < r.BlinkRate
	})
}

// runCheapestLoop drives the shared cheapest-insertion search used by both
// RecreateWithCheapest and RecreateWithBlinks: each round it picks the
// globally cheapest feasible (job, placement) pair among ctx.Required,
// optionally skips it (blink), and otherwise applies it. It terminates
// when a full round finds nothing to apply.
func runCheapestLoop(ctx *InsertionContext, eval *InsertionEvaluator, blink func(InsertionSuccess) bool) {
	skipped := map[string]bool{}
	for {
		var bestJob Job
		var bestResult *InsertionSuccess

		for _, job := range ctx.Required {
			if skipped[job.JobID()] {
				continue
			}
			res := eval.Evaluate(job, ctx)
			if res.Failure != nil {
				ctx.Unassigned[job.JobID()] = *res.Failure
				continue
			}
			if bestResult == nil || res.Success.Cost < bestResult.Cost {
				bestJob, bestResult = job, res.Success
			}
		}

		if bestResult == nil {
			return
		}
		if blink(*bestResult) {
			skipped[bestJob.JobID()] = true
			continue
		}
		Apply(ctx, bestJob, bestResult)
		skipped = map[string]bool{}
	}
}

// RecreateWithGaps partitions the unassigned jobs into randomized groups
// and inserts each group in turn, falling back to cheapest-insertion
// semantics within a group.
type RecreateWithGaps struct {
	Evaluator *InsertionEvaluator
	GroupSize int
}

func (r *RecreateWithGaps) Run(ctx *InsertionContext) {
	groupSize := r.GroupSize
	if groupSize <= 0 {
		groupSize = 1
	}

	pending := append([]Job(nil), ctx.Required...)
	ctx.Random.Shuffle(len(pending), func(i, j int) { pending[i], pending[j] = pending[j], pending[i] })

	for len(pending) > 0 {
		n := groupSize
		if n > len(pending) {
			n = len(pending)
		}
		group := pending[:n]
		pending = pending[n:]

		for {
			var bestJob Job
			var bestResult *InsertionSuccess
			for _, job := range group {
				if !containsRequired(ctx, job.JobID()) {
					continue
				}
				res := r.Evaluator.Evaluate(job, ctx)
				if res.Failure != nil {
					ctx.Unassigned[job.JobID()] = *res.Failure
					continue
				}
				if bestResult == nil || res.Success.Cost < bestResult.Cost {
					bestJob, bestResult = job, res.Success
				}
			}
			if bestResult == nil {
				break
			}
			Apply(ctx, bestJob, bestResult)
		}
	}
}

func containsRequired(ctx *InsertionContext, jobID string) bool {
	for _, j := range ctx.Required {
		if j.JobID() == jobID {
			return true
		}
	}
	return false
}

// CompositeRecreate chooses among several weighted Recreate strategies:
// a weighted random pick on every generation except the first, which
// always forces the heaviest-weighted strategy for a deterministic warm
// start.
type CompositeRecreate struct {
	strategies []Recreate
	weights    []int
}

// WeightedRecreate pairs a Recreate strategy with its selection weight.
type WeightedRecreate struct {
	Recreate Recreate
	Weight   int
}

// NewCompositeRecreate builds a CompositeRecreate from weighted pairs,
// sorted by descending weight so index 0 is always the heaviest.
func NewCompositeRecreate(pairs ...WeightedRecreate) *CompositeRecreate {
	sorted := append([]WeightedRecreate(nil), pairs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Weight > sorted[j].Weight })

	c := &CompositeRecreate{}
	for _, p := range sorted {
		c.strategies = append(c.strategies, p.Recreate)
		c.weights = append(c.weights, p.Weight)
	}
	return c
}

// DefaultCompositeRecreate mirrors the reference default mix: Cheapest
// (weight 10), Blinks (weight 100), Gaps (weight 50).
func DefaultCompositeRecreate(eval *InsertionEvaluator) *CompositeRecreate {
	return NewCompositeRecreate(
		WeightedRecreate{&RecreateWithCheapest{Evaluator: eval}, 10},
		WeightedRecreate{&RecreateWithBlinks{Evaluator: eval, BlinkRate: 0.1}, 100},
		WeightedRecreate{&RecreateWithGaps{Evaluator: eval, GroupSize: 3}, 50},
	)
}

// Run picks a strategy: index 0 (heaviest) on generation 1, else a
// weighted random draw over every configured strategy.
func (c *CompositeRecreate) Run(ctx *InsertionContext, generation int) {
	if len(c.strategies) == 0 {
		return
	}
	index := 0
	if generation != 1 {
		index = weightedChoice(ctx.Random, c.weights)
	}
	c.strategies[index].Run(ctx)
}

func weightedChoice(rng *rand.Rand, weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return 0
	}
	pick := rng.Intn(total)
	for i, w := range weights {
		if pick < w {
			return i
		}
		pick -= w
	}
	return len(weights) - 1
}
