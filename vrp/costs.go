package vrp

import (
	"fmt"
	"math"
	"sort"
)

// ActivityCost computes the service cost and duration of performing an
// activity: cost = waiting*(driver+vehicle per-waiting) +
// service*(driver+vehicle per-service).
type ActivityCost interface {
	// Duration returns how long performing this activity takes, given
	// arrival time.
	Duration(actor *Actor, place Place, arrival Timestamp) Duration
	// Cost returns the monetary/objective cost of performing this activity.
	Cost(actor *Actor, place Place, arrival Timestamp) Cost
}

// SimpleActivityCost is the default ActivityCost: duration is the place's
// fixed service duration, cost is waiting + service time priced by the
// actor's cost factors.
type SimpleActivityCost struct{}

func (SimpleActivityCost) Duration(_ *Actor, place Place, _ Timestamp) Duration {
	return place.Duration
}

func (s SimpleActivityCost) Cost(actor *Actor, place Place, arrival Timestamp) Cost {
	waiting := 0.0
	if len(place.TimeWindows) > 0 && place.TimeWindows[0].Start > arrival {
		waiting = place.TimeWindows[0].Start - arrival
	}
	service := s.Duration(actor, place, arrival)
	return waiting*(actor.DriverCosts.PerWaitingTime+actor.VehicleCosts.PerWaitingTime) +
		service*(actor.DriverCosts.PerServiceTime+actor.VehicleCosts.PerServiceTime)
}

// TransportCost computes travel duration/distance/cost between two
// locations for a given actor profile, optionally varying with departure
// time (time-aware routing).
type TransportCost interface {
	Duration(profile Profile, from, to Location, departure Timestamp) Duration
	Distance(profile Profile, from, to Location, departure Timestamp) Distance
	Cost(actor *Actor, from, to Location, departure Timestamp) Cost
}

// baseTransportCost implements the Cost() method shared by both matrix
// transport cost flavors, in terms of their Duration/Distance.
type baseTransportCost struct {
	impl TransportCost
}

func (b baseTransportCost) Cost(actor *Actor, from, to Location, departure Timestamp) Cost {
	distance := b.impl.Distance(actor.Profile, from, to, departure)
	duration := b.impl.Duration(actor.Profile, from, to, departure)
	return distance*(actor.DriverCosts.PerDistance+actor.VehicleCosts.PerDistance) +
		duration*(actor.DriverCosts.PerDrivingTime+actor.VehicleCosts.PerDrivingTime)
}

// MatrixData holds one profile's routing matrix, optionally timestamped for
// time-aware interpolation.
type MatrixData struct {
	Profile   Profile
	Timestamp *Timestamp // nil => time-agnostic
	Durations []Duration
	Distances []Distance
}

// NewMatrixData creates a time-agnostic MatrixData.
func NewMatrixData(profile Profile, durations []Duration, distances []Distance) MatrixData {
	return MatrixData{Profile: profile, Durations: durations, Distances: distances}
}

// NewMatrixTransportCost builds a TransportCost from one or more routing
// matrices: checks that every matrix has equal-length duration and distance
// slices whose integer square root matches the first matrix's (a length
// that is not a perfect square is not rejected), then dispatches to a
// time-agnostic or time-aware implementation depending on whether any
// matrix carries a timestamp.
func NewMatrixTransportCost(matrices []MatrixData) (TransportCost, error) {
	if len(matrices) == 0 {
		return nil, fmt.Errorf("no matrix data found")
	}

	size := int(math.Sqrt(float64(len(matrices[0].Durations))))

	for _, m := range matrices {
		if len(m.Distances) != len(m.Durations) {
			return nil, fmt.Errorf("distance and duration collections have different length")
		}
		if int(math.Sqrt(float64(len(m.Distances)))) != size {
			return nil, fmt.Errorf("distance lengths don't match")
		}
		if int(math.Sqrt(float64(len(m.Durations)))) != size {
			return nil, fmt.Errorf("duration lengths don't match")
		}
	}

	anyTimestamped := false
	for _, m := range matrices {
		if m.Timestamp != nil {
			anyTimestamped = true
			break
		}
	}

	if anyTimestamped {
		return newTimeAwareMatrixTransportCost(matrices, size)
	}
	return newTimeAgnosticMatrixTransportCost(matrices, size)
}

// timeAgnosticMatrixTransportCost serves one matrix per profile.
type timeAgnosticMatrixTransportCost struct {
	baseTransportCost
	durations map[Profile][]Duration
	distances map[Profile][]Distance
	size      int
}

func newTimeAgnosticMatrixTransportCost(matrices []MatrixData, size int) (TransportCost, error) {
	durations := make(map[Profile][]Duration, len(matrices))
	distances := make(map[Profile][]Distance, len(matrices))
	for _, m := range matrices {
		if m.Timestamp != nil {
			return nil, fmt.Errorf("time aware routing")
		}
		if _, exists := durations[m.Profile]; exists {
			return nil, fmt.Errorf("duplicate profiles can be passed only for time aware routing")
		}
		durations[m.Profile] = m.Durations
		distances[m.Profile] = m.Distances
	}
	t := &timeAgnosticMatrixTransportCost{durations: durations, distances: distances, size: size}
	t.baseTransportCost = baseTransportCost{impl: t}
	return t, nil
}

func (t *timeAgnosticMatrixTransportCost) Duration(profile Profile, from, to Location, _ Timestamp) Duration {
	return t.durations[profile][int(from)*t.size+int(to)]
}

func (t *timeAgnosticMatrixTransportCost) Distance(profile Profile, from, to Location, _ Timestamp) Distance {
	return t.distances[profile][int(from)*t.size+int(to)]
}

// timeAwareMatrixTransportCost interpolates linearly between the two
// bracketing matrices for a profile's sorted timestamps, clamping to the
// first/last matrix outside the covered range.
type timeAwareMatrixTransportCost struct {
	baseTransportCost
	timestamps map[Profile][]Timestamp
	matrices   map[Profile][]MatrixData
	size       int
}

func newTimeAwareMatrixTransportCost(matrices []MatrixData, size int) (TransportCost, error) {
	grouped := make(map[Profile][]MatrixData)
	for _, m := range matrices {
		if m.Timestamp == nil {
			return nil, fmt.Errorf("cannot use matrix without timestamp")
		}
		grouped[m.Profile] = append(grouped[m.Profile], m)
	}

	timestamps := make(map[Profile][]Timestamp, len(grouped))
	for profile, ms := range grouped {
		if len(ms) == 1 {
			return nil, fmt.Errorf("should not use time aware matrix routing with single matrix")
		}
		sort.Slice(ms, func(i, j int) bool { return *ms[i].Timestamp < *ms[j].Timestamp })
		grouped[profile] = ms
		ts := make([]Timestamp, len(ms))
		for i, m := range ms {
			ts[i] = *m.Timestamp
		}
		timestamps[profile] = ts
	}

	t := &timeAwareMatrixTransportCost{timestamps: timestamps, matrices: grouped, size: size}
	t.baseTransportCost = baseTransportCost{impl: t}
	return t, nil
}

// bracket returns the interpolation fraction and the two matrix indices
// bracketing ts within the profile's sorted timestamps, clamped at the ends.
func (t *timeAwareMatrixTransportCost) bracket(profile Profile, ts Timestamp) (lo, hi int, frac float64) {
	times := t.timestamps[profile]
	idx := sort.Search(len(times), func(i int) bool { return times[i] >= ts })
	switch {
	case idx < len(times) && times[idx] == ts:
		return idx, idx, 0
	case idx == 0:
		return 0, 0, 0
	case idx == len(times):
		last := len(times) - 1
		return last, last, 0
	default:
		left, right := idx-1, idx
		frac = (ts - times[left]) / (times[right] - times[left])
		return left, right, frac
	}
}

func (t *timeAwareMatrixTransportCost) Duration(profile Profile, from, to Location, ts Timestamp) Duration {
	lo, hi, frac := t.bracket(profile, ts)
	idx := int(from)*t.size + int(to)
	ms := t.matrices[profile]
	l, r := ms[lo].Durations[idx], ms[hi].Durations[idx]
	return l + frac*(r-l)
}

func (t *timeAwareMatrixTransportCost) Distance(profile Profile, from, to Location, ts Timestamp) Distance {
	lo, _, _ := t.bracket(profile, ts)
	idx := int(from)*t.size + int(to)
	// Distance is not interpolated in the reference implementation; the
	// bracketing (non-interpolated) matrix value is used directly.
	return t.matrices[profile][lo].Distances[idx]
}
