package vrp

import "sync/atomic"

// Schedule is the computed arrival/departure time for an activity, mutated
// by constraint modules' AcceptRouteState passes.
type Schedule struct {
	Arrival   Timestamp
	Departure Timestamp
}

// ActivityKind distinguishes start/end/break/job activities; only job
// activities carry a JobID and SubIndex (for Multi jobs).
type ActivityKind int

const (
	ActivityStart ActivityKind = iota
	ActivityEnd
	ActivityBreak
	ActivityJob
)

// Activity is one stop in a Tour. It holds a chosen Place (location, time
// windows, duration, demand) and a stable identity for addressing
// activity-keyed RouteState entries. It back-references its owning job by
// ID only — the Job itself is looked up from the Problem, never owned here.
type Activity struct {
	id       int64 // stable within a tour, assigned at creation
	Kind     ActivityKind
	JobID    string // "" for start/end activities
	SubIndex int    // sub-job index within a Multi job
	Place    Place
	Schedule Schedule
}

// ID returns the activity's stable identity, used as the key for
// activity-scoped RouteState entries.
func (a *Activity) ID() int64 { return a.id }

// TimeWindow returns the time window in effect for this activity: the first
// entry of Place.TimeWindows. The insertion evaluator tries each Place
// alternative as a separate candidate Activity, but it does not split a
// Place that lists several windows, so for such a Place only the first
// window is ever used.
func (a *Activity) TimeWindow() TimeWindow {
	return a.Place.TimeWindows[0]
}

var activitySeq int64

// NewActivity allocates an Activity with a fresh stable ID.
func NewActivity(kind ActivityKind, jobID string, subIndex int, place Place) *Activity {
	id := atomic.AddInt64(&activitySeq, 1)
	return &Activity{id: id, Kind: kind, JobID: jobID, SubIndex: subIndex, Place: place}
}

// Tour is the ordered sequence of activities performed by one route. The
// first activity is always the (fixed) shift start; the last, if present,
// is the shift end.
type Tour struct {
	Activities []*Activity
}

// Start returns the tour's first (shift-start) activity.
func (t *Tour) Start() *Activity {
	if len(t.Activities) == 0 {
		return nil
	}
	return t.Activities[0]
}

// End returns the tour's last activity if it is a shift-end marker, else
// nil (open-VRP routes have no end activity).
func (t *Tour) End() *Activity {
	if n := len(t.Activities); n > 0 && t.Activities[n-1].Kind == ActivityEnd {
		return t.Activities[n-1]
	}
	return nil
}

// HasJobs reports whether the tour contains any job activity.
func (t *Tour) HasJobs() bool {
	for _, a := range t.Activities {
		if a.Kind == ActivityJob {
			return true
		}
	}
	return false
}

// InsertAt inserts activity at position idx (0-based, counting from the
// start activity), shifting later activities right.
func (t *Tour) InsertAt(idx int, a *Activity) {
	t.Activities = append(t.Activities, nil)
	copy(t.Activities[idx+1:], t.Activities[idx:])
	t.Activities[idx] = a
}

// RemoveJob removes all activities belonging to jobID and returns them in
// tour order.
func (t *Tour) RemoveJob(jobID string) []*Activity {
	var removed []*Activity
	kept := t.Activities[:0:0]
	for _, a := range t.Activities {
		if a.Kind == ActivityJob && a.JobID == jobID {
			removed = append(removed, a)
			continue
		}
		kept = append(kept, a)
	}
	t.Activities = kept
	return removed
}

// JobIDs returns the distinct job IDs present in tour order (each job's
// first occurrence), skipping start/end/break activities.
func (t *Tour) JobIDs() []string {
	seen := map[string]bool{}
	var ids []string
	for _, a := range t.Activities {
		if a.Kind != ActivityJob || seen[a.JobID] {
			continue
		}
		seen[a.JobID] = true
		ids = append(ids, a.JobID)
	}
	return ids
}

// Clone deep-copies the tour, including fresh Activity pointers (with the
// same stable IDs, since RouteState keys address by that ID and must keep
// matching after a clone).
func (t *Tour) Clone() *Tour {
	out := &Tour{Activities: make([]*Activity, len(t.Activities))}
	for i, a := range t.Activities {
		cp := *a
		out.Activities[i] = &cp
	}
	return out
}
