package vrp

// Objective defines a total ordering and a fitness value over
// InsertionContexts. TotalOrder answers "is a better, equal, or worse than
// b"; Fitness gives a single scalar for population ranking and termination.
type Objective interface {
	TotalOrder(a, b *InsertionContext) int // <0: a better, 0: tie, >0: b better
	Fitness(ctx *InsertionContext) Cost
}

// MultiObjective composes several Objectives with a hierarchical (lexical)
// dominance order: earlier objectives take precedence, later ones break
// ties. Fitness is the primary objective's fitness, matching the pipeline's
// "primary: #unassigned then #routes; secondary: total transport cost"
// default ordering.
type MultiObjective struct {
	Objectives []Objective
}

// NewMultiObjective builds a hierarchical objective from objs in priority
// order (first is primary).
func NewMultiObjective(objs ...Objective) *MultiObjective {
	return &MultiObjective{Objectives: objs}
}

// TotalOrder compares a and b by each sub-objective in turn, returning the
// first non-zero verdict.
func (m *MultiObjective) TotalOrder(a, b *InsertionContext) int {
	for _, o := range m.Objectives {
		if v := o.TotalOrder(a, b); v != 0 {
			return v
		}
	}
	return 0
}

// Fitness reports the primary sub-objective's fitness. Callers needing the
// full hierarchy for display should consult FitnessVector instead.
func (m *MultiObjective) Fitness(ctx *InsertionContext) Cost {
	if len(m.Objectives) == 0 {
		return 0
	}
	return m.Objectives[0].Fitness(ctx)
}

// FitnessVector reports every sub-objective's fitness, in priority order.
func (m *MultiObjective) FitnessVector(ctx *InsertionContext) []Cost {
	out := make([]Cost, len(m.Objectives))
	for i, o := range m.Objectives {
		out[i] = o.Fitness(ctx)
	}
	return out
}

// TotalUnassignedJobs minimizes the number of jobs left unassigned.
type TotalUnassignedJobs struct{}

func (TotalUnassignedJobs) Fitness(ctx *InsertionContext) Cost {
	return Cost(len(ctx.Required) + len(ctx.Unassigned))
}

func (o TotalUnassignedJobs) TotalOrder(a, b *InsertionContext) int {
	return compareCost(o.Fitness(a), o.Fitness(b))
}

// TotalRoutes minimizes the number of routes used (routes with at least one
// job activity).
type TotalRoutes struct{}

func (TotalRoutes) Fitness(ctx *InsertionContext) Cost {
	n := 0
	for _, r := range ctx.Routes {
		if r.Route.Tour.HasJobs() {
			n++
		}
	}
	return Cost(n)
}

func (o TotalRoutes) TotalOrder(a, b *InsertionContext) int {
	return compareCost(o.Fitness(a), o.Fitness(b))
}

// TotalTransportCost minimizes the sum of transport leg costs across every
// route's tour.
type TotalTransportCost struct {
	Transport TransportCost
}

func (o TotalTransportCost) Fitness(ctx *InsertionContext) Cost {
	var total Cost
	for _, r := range ctx.Routes {
		tour := r.Route.Tour
		for i := 1; i < len(tour.Activities); i++ {
			prev, cur := tour.Activities[i-1], tour.Activities[i]
			total += o.Transport.Cost(r.Route.Actor, prev.Place.Location, cur.Place.Location, prev.Schedule.Departure)
		}
	}
	return total
}

func (o TotalTransportCost) TotalOrder(a, b *InsertionContext) int {
	return compareCost(o.Fitness(a), o.Fitness(b))
}

func compareCost(a, b Cost) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// DefaultObjective builds the pipeline's default hierarchy: fewest
// unassigned jobs, then fewest routes, then lowest transport cost.
func DefaultObjective(transport TransportCost) *MultiObjective {
	return NewMultiObjective(TotalUnassignedJobs{}, TotalRoutes{}, TotalTransportCost{Transport: transport})
}
