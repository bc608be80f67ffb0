package vrp

import (
	"math"
	"time"
)

// Termination decides whether a refinement run should stop producing more
// generations.
type Termination interface {
	IsTerminated(rc *RefinementContext) bool
}

// MaxGenerations stops once the generation counter reaches Max.
type MaxGenerations struct {
	Max int
}

func (m MaxGenerations) IsTerminated(rc *RefinementContext) bool {
	return m.Max > 0 && rc.Generation >= m.Max
}

const costVariationStateKey = "cost_variation_ring"

// CostVariation stops once the coefficient of variation (std-dev / mean)
// over the last Sample best-fitness values drops below Threshold.
// Fitnesses are written into a ring buffer — keyed scratch state on
// RefinementContext — indexed by generation mod Sample.
type CostVariation struct {
	Sample    int
	Threshold float64
}

func (c *CostVariation) IsTerminated(rc *RefinementContext) bool {
	if c.Sample <= 1 {
		return false
	}
	best := rc.Population.Best(rc.MinimizeRoutes)
	if best == nil {
		return false
	}
	cost := float64(rc.Problem.Objective.Fitness(best.Context))

	ring, _ := rc.State[costVariationStateKey].([]float64)
	if ring == nil {
		ring = make([]float64, c.Sample)
		rc.State[costVariationStateKey] = ring
	}
	ring[rc.Generation%c.Sample] = cost

	if rc.Generation < c.Sample-1 {
		return false
	}
	return coefficientOfVariation(ring) < c.Threshold
}

func coefficientOfVariation(values []float64) float64 {
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	if mean == 0 {
		return 0
	}
	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return math.Sqrt(variance) / mean
}

// TimeLimit stops once the wall clock passes Deadline. A zero Deadline
// never terminates (used when no wall-clock budget is configured).
type TimeLimit struct {
	Deadline time.Time
}

func (t TimeLimit) IsTerminated(rc *RefinementContext) bool {
	return !t.Deadline.IsZero() && time.Now().After(t.Deadline)
}

// OrTermination stops as soon as any composed Termination fires.
type OrTermination struct {
	Terminations []Termination
}

func (o OrTermination) IsTerminated(rc *RefinementContext) bool {
	for _, t := range o.Terminations {
		if t.IsTerminated(rc) {
			return true
		}
	}
	return false
}
