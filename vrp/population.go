package vrp

import (
	"sort"
	"sync"
)

// Individual pairs a solution snapshot with the generation it was
// discovered at. Stored, not live: population-owned individuals are deep
// clones, never the mutable InsertionContext a worker is still ruining.
type Individual struct {
	Context    *InsertionContext
	Generation int
}

// Population is a bounded multi-criterion archive over three sorted axes
// (less-cost, less-unassigned, less-routes), synchronized by a single
// coarse mutex: add/best must be serializable across concurrent workers.
type Population struct {
	mu             sync.Mutex
	objective      Objective
	minimizeRoutes bool
	batchSize      int

	lessCosts      []*Individual
	lessUnassigned []*Individual
	lessRoutes     []*Individual
}

// NewPopulation builds an empty Population. batchSize must be greater than
// 1 (the per-axis elite size for whichever axis is currently primary).
func NewPopulation(objective Objective, minimizeRoutes bool, batchSize int) *Population {
	if batchSize < 2 {
		panic("vrp: population batch size must be greater than 1")
	}
	return &Population{objective: objective, minimizeRoutes: minimizeRoutes, batchSize: batchSize}
}

// Add inserts a deep clone of ctx into every axis, truncating each to its
// batch size. The less-costs and less-routes axes swap which one gets the
// full batchSize and which gets a tiny elite pair of 2, depending on
// whether MinimizeRoutes is set.
func (p *Population) Add(ctx *InsertionContext, generation int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	costsSize, routesSize := p.batchSize, 2
	if p.minimizeRoutes {
		costsSize, routesSize = 2, p.batchSize
	}

	p.lessCosts = addToQueue(p.clone(ctx, generation), costsSize, p.lessCosts, func(a, b *Individual) int {
		return compareCost(p.objective.Fitness(a.Context), p.objective.Fitness(b.Context))
	})
	p.lessUnassigned = addToQueue(p.clone(ctx, generation), 1, p.lessUnassigned, func(a, b *Individual) int {
		au := len(a.Context.Required) + len(a.Context.Unassigned)
		bu := len(b.Context.Required) + len(b.Context.Unassigned)
		if au != bu {
			return au - bu
		}
		return compareCost(p.objective.Fitness(a.Context), p.objective.Fitness(b.Context))
	})
	p.lessRoutes = addToQueue(p.clone(ctx, generation), routesSize, p.lessRoutes, func(a, b *Individual) int {
		ar, br := len(a.Context.Routes), len(b.Context.Routes)
		if ar != br {
			return ar - br
		}
		return compareCost(p.objective.Fitness(a.Context), p.objective.Fitness(b.Context))
	})
}

func (p *Population) clone(ctx *InsertionContext, generation int) *Individual {
	return &Individual{Context: ctx.Clone(ctx.Random), Generation: generation}
}

// addToQueue keeps queue capped at batchSize by truncating to batchSize-1
// before appending the new individual, then re-sorting by less.
func addToQueue(ind *Individual, batchSize int, queue []*Individual, less func(a, b *Individual) int) []*Individual {
	if batchSize < 1 {
		batchSize = 1
	}
	if len(queue) > batchSize-1 {
		queue = queue[:batchSize-1]
	}
	queue = append(queue, ind)
	sort.SliceStable(queue, func(i, j int) bool { return less(queue[i], queue[j]) < 0 })
	return queue
}

// Best returns the head of the active primary axis (less-routes when
// minimizeRoutes, else less-costs), falling back to the other axes if the
// primary one is momentarily empty. Returns nil only for a population
// nothing has ever been added to.
func (p *Population) Best(minimizeRoutes bool) *Individual {
	p.mu.Lock()
	defer p.mu.Unlock()

	primary, secondary := p.lessCosts, p.lessRoutes
	if minimizeRoutes {
		primary, secondary = p.lessRoutes, p.lessCosts
	}
	for _, q := range [][]*Individual{primary, p.lessUnassigned, secondary} {
		if len(q) > 0 {
			return q[0]
		}
	}
	return nil
}

// Size returns the total number of stored individuals across all three
// axes (they overlap in content, not identity, so a solution that sorts
// well on more than one axis is counted once per axis).
func (p *Population) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.lessCosts) + len(p.lessUnassigned) + len(p.lessRoutes)
}
