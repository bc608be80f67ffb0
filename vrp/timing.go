package vrp

// TimingConstraintModule schedules every activity's arrival/departure
// (forward pass), computes each job activity's latest feasible arrival and
// accumulated waiting time (backward pass), and enforces/estimates time-
// window feasibility during insertion. The canonical exemplar constraint
// module for time-window feasibility.
type TimingConstraintModule struct {
	code      ErrorCode
	activity  ActivityCost
	transport TransportCost
}

// NewTimingConstraintModule builds the module, allocating a fresh
// violation code for its hard-constraint failures.
func NewTimingConstraintModule(activity ActivityCost, transport TransportCost) *TimingConstraintModule {
	return &TimingConstraintModule{code: NewViolationCode(), activity: activity, transport: transport}
}

func (m *TimingConstraintModule) StateKeys() []StateKey {
	return []StateKey{KeyLatestArrival, KeyWaiting}
}

// AcceptRouteState runs the forward schedule pass then the backward
// latest-arrival/waiting pass. Both passes compute into local variables
// before writing anything back (collect-then-assign), keeping every
// activity's view of its neighbors consistent for the duration of a pass.
func (m *TimingConstraintModule) AcceptRouteState(rc *RouteContext) {
	tour := rc.Route.Tour
	actor := rc.Route.Actor
	if len(tour.Activities) == 0 {
		return
	}

	// Forward pass: arrival/departure schedule for every activity after
	// the (fixed) start.
	loc := tour.Activities[0].Place.Location
	dep := tour.Activities[0].Schedule.Departure
	type scheduled struct {
		idx      int
		schedule Schedule
	}
	var forward []scheduled
	for i := 1; i < len(tour.Activities); i++ {
		a := tour.Activities[i]
		arrival := dep + m.transport.Duration(actor.Profile, loc, a.Place.Location, dep)
		departure := max(arrival, a.TimeWindow().Start) + m.activity.Duration(actor, a.Place, arrival)
		forward = append(forward, scheduled{idx: i, schedule: Schedule{Arrival: arrival, Departure: departure}})
		loc, dep = a.Place.Location, departure
	}
	for _, f := range forward {
		tour.Activities[f.idx].Schedule = f.schedule
	}

	// Backward pass: latest feasible arrival and accumulated waiting time
	// for every job activity, walking from the shift end backwards.
	endTime := actor.Shift.End
	var endLoc Location
	if end := tour.End(); end != nil {
		endLoc = end.Place.Location
	} else {
		endLoc = actor.Start
	}
	waiting := 0.0

	type backward struct {
		id            int64
		latestArrival float64
		waiting       float64
	}
	var results []backward
	for i := len(tour.Activities) - 1; i >= 0; i-- {
		a := tour.Activities[i]
		if a.Kind != ActivityJob {
			continue
		}
		potentialLatest := endTime - m.transport.Duration(actor.Profile, a.Place.Location, endLoc, endTime) -
			m.activity.Duration(actor, a.Place, endTime)
		latestArrival := min(a.TimeWindow().End, potentialLatest)
		futureWaiting := waiting + max(0, a.TimeWindow().Start-a.Schedule.Arrival)

		results = append(results, backward{id: a.ID(), latestArrival: latestArrival, waiting: futureWaiting})

		endTime, endLoc, waiting = latestArrival, a.Place.Location, futureWaiting
	}
	for _, r := range results {
		rc.State.SetActivity(KeyLatestArrival, r.id, r.latestArrival)
		rc.State.SetActivity(KeyWaiting, r.id, r.waiting)
	}
}

// AcceptSolutionState reschedules every route's departure time once no
// jobs remain unassigned, pulling the start as late as possible without
// delaying the first activity (mirrors timing.rs's reschedule_departure,
// deferred to "only in implicit end of algorithm" as its own comment
// notes).
func (m *TimingConstraintModule) AcceptSolutionState(ctx *InsertionContext) {
	if len(ctx.Required) != 0 {
		return
	}
	for _, rc := range ctx.Routes {
		m.rescheduleDeparture(rc)
	}
}

func (m *TimingConstraintModule) rescheduleDeparture(rc *RouteContext) {
	tour := rc.Route.Tour
	if len(tour.Activities) < 2 {
		return
	}
	start := tour.Activities[0]
	first := tour.Activities[1]
	earliestDeparture := start.TimeWindow().Start
	startToFirst := m.transport.Duration(rc.Route.Actor.Profile, start.Place.Location, first.Place.Location, earliestDeparture)
	newDeparture := max(earliestDeparture, first.TimeWindow().Start-startToFirst)
	if newDeparture > earliestDeparture {
		start.Schedule.Departure = newDeparture
		m.AcceptRouteState(rc)
	}
}

// EvaluateActivity implements HardActivityConstraint: verifies the shift
// still covers every touched time window, that arrival at next doesn't
// exceed its latest feasible arrival, that target itself fits its window,
// and that completing target still leaves next reachable in time. Ported
// verbatim from timing.rs's TimeHardActivityConstraint::evaluate_activity.
func (m *TimingConstraintModule) EvaluateActivity(rc *RouteContext, ac *ActivityContext) *Violation {
	actor := rc.Route.Actor
	prev, target, next := ac.Prev, ac.Target, ac.Next

	shiftEnd := actor.Shift.End
	if shiftEnd < prev.TimeWindow().Start || shiftEnd < target.TimeWindow().Start ||
		(next != nil && shiftEnd < next.TimeWindow().Start) {
		return &Violation{Code: m.code, Stopped: true}
	}

	departure := prev.Schedule.Departure
	profile := actor.Profile

	var nextLoc Location
	var latestArrAtNext float64
	if next != nil {
		nextLoc = next.Place.Location
		latestArrAtNext = GetActivityFloat(rc.State, KeyLatestArrival, next.ID(), next.TimeWindow().End)
	} else {
		nextLoc = target.Place.Location
		latestArrAtNext = min(target.TimeWindow().End, shiftEnd)
	}

	arrAtNext := departure + m.transport.Duration(profile, prev.Place.Location, nextLoc, departure)
	if arrAtNext > latestArrAtNext {
		return &Violation{Code: m.code, Stopped: true}
	}
	if target.TimeWindow().Start > latestArrAtNext {
		return &Violation{Code: m.code, Stopped: false}
	}

	arrAtTarget := departure + m.transport.Duration(profile, prev.Place.Location, target.Place.Location, departure)
	endAtTarget := max(arrAtTarget, target.TimeWindow().Start) + m.activity.Duration(actor, target.Place, arrAtTarget)

	latestArrAtTarget := min(target.TimeWindow().End,
		latestArrAtNext-m.transport.Duration(profile, target.Place.Location, nextLoc, latestArrAtNext)+
			m.activity.Duration(actor, target.Place, arrAtTarget))

	if arrAtTarget > latestArrAtTarget {
		return &Violation{Code: m.code, Stopped: false}
	}

	if next == nil {
		return nil
	}

	arrAtNextAfterTarget := endAtTarget + m.transport.Duration(profile, target.Place.Location, nextLoc, endAtTarget)
	if arrAtNextAfterTarget > latestArrAtNext {
		return &Violation{Code: m.code, Stopped: false}
	}
	return nil
}

// EstimateActivity implements SoftActivityConstraint: the marginal cost of
// inserting target between prev and next, minus the waiting time the
// insertion saves. Ported verbatim from timing.rs's
// TimeSoftActivityConstraint::estimate_activity, including its open-VRP
// target-to-target right-leg fallback.
func (m *TimingConstraintModule) EstimateActivity(rc *RouteContext, ac *ActivityContext) Cost {
	actor := rc.Route.Actor
	prev, target, next := ac.Prev, ac.Target, ac.Next

	tpLeft, actLeft, depLeft := m.analyzeLeg(actor, prev, target, prev.Schedule.Departure)

	var tpRight, actRight, depRight float64
	if next != nil {
		tpRight, actRight, depRight = m.analyzeLeg(actor, target, next, depLeft)
	} else {
		// Open VRP: no right leg exists, so its cost is target-to-target
		// (zero travel, one activity cost).
		tpRight, actRight, depRight = m.analyzeLeg(actor, target, target, depLeft)
	}

	newCost := tpLeft + tpRight + actLeft + actRight

	if !rc.Route.Tour.HasJobs() || next == nil {
		return newCost
	}

	waitingTime := GetActivityFloat(rc.State, KeyWaiting, next.ID(), 0)

	tpOld, actOld, depOld := m.analyzeLeg(actor, prev, next, prev.Schedule.Departure)

	waitingCost := min(waitingTime, max(0, depRight-depOld)) * (actor.VehicleCosts.PerWaitingTime)
	oldCost := tpOld + actOld + waitingCost

	return newCost - oldCost
}

// analyzeLeg computes transport cost, activity cost, and resulting
// departure time for traveling from start to end, departing at time.
func (m *TimingConstraintModule) analyzeLeg(actor *Actor, start, end *Activity, departTime Timestamp) (tpCost, actCost Cost, departure Timestamp) {
	arrival := departTime + m.transport.Duration(actor.Profile, start.Place.Location, end.Place.Location, departTime)
	dep := max(arrival, end.TimeWindow().Start) + m.activity.Duration(actor, end.Place, arrival)
	tpCost = m.transport.Cost(actor, start.Place.Location, end.Place.Location, departTime)
	actCost = m.activity.Cost(actor, end.Place, arrival)
	return tpCost, actCost, dep
}

