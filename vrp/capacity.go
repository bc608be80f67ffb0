package vrp

// CapacityConstraintModule enforces multi-dimensional vehicle capacity: a
// route may never carry, at any activity, more demand than the actor's
// Capacity vector allows. A running per-dimension total is mutated on
// insert/remove and checked against the actor's fixed budget.
type CapacityConstraintModule struct {
	code ErrorCode
}

// NewCapacityConstraintModule builds the module with a fresh violation
// code.
func NewCapacityConstraintModule() *CapacityConstraintModule {
	return &CapacityConstraintModule{code: NewViolationCode()}
}

func (m *CapacityConstraintModule) StateKeys() []StateKey {
	return []StateKey{KeyCurrentCapacity}
}

// AcceptRouteState recomputes the cumulative demand carried at every
// activity, in tour order, so later feasibility checks are O(1) lookups.
func (m *CapacityConstraintModule) AcceptRouteState(rc *RouteContext) {
	running := Demand{}
	for _, a := range rc.Route.Tour.Activities {
		if a.Kind == ActivityJob {
			running = running.Add(a.Place.Demand)
		}
		rc.State.SetActivity(KeyCurrentCapacity, a.ID(), running)
	}
}

// AcceptSolutionState is a no-op: capacity has no cross-route fixup.
func (m *CapacityConstraintModule) AcceptSolutionState(_ *InsertionContext) {}

// EvaluateJob implements HardRouteConstraint: reject a job outright if its
// total demand cannot possibly fit given the route's worst-case remaining
// capacity (the route's peak cumulative demand so far).
func (m *CapacityConstraintModule) EvaluateJob(rc *RouteContext, job Job) *Violation {
	peak := m.peakDemand(rc)
	remaining := make([]float64, len(rc.Route.Actor.Capacity))
	for i, cap := range rc.Route.Actor.Capacity {
		used := 0.0
		if i < len(peak) {
			used = peak[i]
		}
		remaining[i] = cap - used
	}
	for _, alts := range job.Places() {
		for _, place := range alts {
			if place.Demand.Fits(remaining) {
				return nil
			}
		}
	}
	return &Violation{Code: m.code, Stopped: false}
}

func (m *CapacityConstraintModule) peakDemand(rc *RouteContext) Demand {
	var peak Demand
	for _, a := range rc.Route.Tour.Activities {
		v, ok := rc.State.GetActivity(KeyCurrentCapacity, a.ID())
		if !ok {
			continue
		}
		d := v.(Demand)
		for i, val := range d {
			for len(peak) <= i {
				peak = append(peak, 0)
			}
			if val > peak[i] {
				peak[i] = val
			}
		}
	}
	return peak
}

// EvaluateActivity implements HardActivityConstraint: the cumulative
// demand at target (the running total carried in from prev plus target's
// demand) must fit the actor's capacity. Activities after target are not
// checked here; EvaluateJob's whole-route check bounds them, since the
// running total only grows along the tour.
func (m *CapacityConstraintModule) EvaluateActivity(rc *RouteContext, ac *ActivityContext) *Violation {
	if ac.Target.Kind != ActivityJob {
		return nil
	}
	prevLoad, _ := rc.State.GetActivity(KeyCurrentCapacity, ac.Prev.ID())
	running, _ := prevLoad.(Demand)
	newLoad := running.Add(ac.Target.Place.Demand)
	if !newLoad.Fits(rc.Route.Actor.Capacity) {
		return &Violation{Code: m.code, Stopped: false}
	}
	return nil
}
