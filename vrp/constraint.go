package vrp

import "fmt"

// Violation is returned by a hard constraint check when a job or activity
// cannot be placed. Stopped=true means no later position in the same tour
// can succeed either (abandon the route for this job); Stopped=false means
// only this position fails (try the next one).
type Violation struct {
	Code    ErrorCode
	Stopped bool
}

// ActivityContext describes the candidate insertion point under
// evaluation: the activity immediately before it, the new (not yet
// inserted) activity itself, and the activity immediately after it (nil at
// the end of an open-VRP route).
type ActivityContext struct {
	Prev   *Activity
	Target *Activity
	Next   *Activity // nil => target would be the last activity in the tour
}

// HardRouteConstraint pre-filters a route before any activity-level search:
// can this route possibly accept this job at all.
type HardRouteConstraint interface {
	EvaluateJob(route *RouteContext, job Job) *Violation
}

// HardActivityConstraint checks one candidate insertion point.
type HardActivityConstraint interface {
	EvaluateActivity(route *RouteContext, ctx *ActivityContext) *Violation
}

// SoftRouteConstraint contributes a route-level marginal cost for placing a
// job somewhere in this route (independent of exact position).
type SoftRouteConstraint interface {
	EstimateJob(route *RouteContext, job Job) Cost
}

// SoftActivityConstraint contributes a marginal cost for one candidate
// insertion point.
type SoftActivityConstraint interface {
	EstimateActivity(route *RouteContext, ctx *ActivityContext) Cost
}

// ConstraintModule owns a set of state keys and zero or more of the four
// constraint capabilities above, plus two lifecycle hooks. Capability
// sub-interfaces are implemented selectively — a module that has no hard
// route constraint simply doesn't implement HardRouteConstraint, and the
// Pipeline checks this with a type assertion.
type ConstraintModule interface {
	// StateKeys returns the state keys this module writes, declared up
	// front so a Pipeline can detect collisions at construction time.
	StateKeys() []StateKey
	// AcceptRouteState recomputes all state this module owns for one
	// route, called after any mutation to that route's tour.
	AcceptRouteState(route *RouteContext)
	// AcceptSolutionState performs rare cross-route fixups, called once
	// per InsertionContext after a full ruin+recreate cycle.
	AcceptSolutionState(ctx *InsertionContext)
}

// Pipeline holds constraint modules in registration order and exposes the
// four evaluate/estimate operations by iterating all registered modules:
// hard checks short-circuit on first failure (respecting Stopped
// semantics), soft costs sum across all modules.
type Pipeline struct {
	modules []ConstraintModule
	claimed map[StateKey]ConstraintModule
}

// NewPipeline builds a Pipeline from modules in the given registration
// order, panicking if two modules claim the same StateKey (a construction-
// time programming error, never a runtime condition).
func NewPipeline(modules ...ConstraintModule) *Pipeline {
	p := &Pipeline{claimed: make(map[StateKey]ConstraintModule)}
	for _, m := range modules {
		for _, k := range m.StateKeys() {
			if owner, exists := p.claimed[k]; exists {
				panic(fmt.Sprintf("vrp: state key %d claimed by both %T and %T", k, owner, m))
			}
			p.claimed[k] = m
		}
		p.modules = append(p.modules, m)
	}
	return p
}

// Modules returns the registered modules in registration order.
func (p *Pipeline) Modules() []ConstraintModule { return p.modules }

// EvaluateJob runs every registered HardRouteConstraint in order, returning
// the first violation encountered.
func (p *Pipeline) EvaluateJob(route *RouteContext, job Job) *Violation {
	for _, m := range p.modules {
		if hc, ok := m.(HardRouteConstraint); ok {
			if v := hc.EvaluateJob(route, job); v != nil {
				return v
			}
		}
	}
	return nil
}

// EvaluateActivity runs every registered HardActivityConstraint in order,
// returning the first violation encountered (a Stopped violation or a
// skip-this-position violation).
func (p *Pipeline) EvaluateActivity(route *RouteContext, ctx *ActivityContext) *Violation {
	for _, m := range p.modules {
		if hc, ok := m.(HardActivityConstraint); ok {
			if v := hc.EvaluateActivity(route, ctx); v != nil {
				return v
			}
		}
	}
	return nil
}

// EstimateJob sums the marginal cost every registered SoftRouteConstraint
// assigns to placing job somewhere in route.
func (p *Pipeline) EstimateJob(route *RouteContext, job Job) Cost {
	var total Cost
	for _, m := range p.modules {
		if sc, ok := m.(SoftRouteConstraint); ok {
			total += sc.EstimateJob(route, job)
		}
	}
	return total
}

// EstimateActivity sums the marginal cost every registered
// SoftActivityConstraint assigns to this candidate insertion point.
func (p *Pipeline) EstimateActivity(route *RouteContext, ctx *ActivityContext) Cost {
	var total Cost
	for _, m := range p.modules {
		if sc, ok := m.(SoftActivityConstraint); ok {
			total += sc.EstimateActivity(route, ctx)
		}
	}
	return total
}

// AcceptRouteState runs every module's AcceptRouteState hook in
// registration order (forward passes must precede backward passes within a
// single module, which each module's own implementation is responsible
// for).
func (p *Pipeline) AcceptRouteState(route *RouteContext) {
	for _, m := range p.modules {
		m.AcceptRouteState(route)
	}
}

// AcceptSolutionState runs every module's cross-route fixup hook.
func (p *Pipeline) AcceptSolutionState(ctx *InsertionContext) {
	for _, m := range p.modules {
		m.AcceptSolutionState(ctx)
	}
}
