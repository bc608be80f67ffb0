package format

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/ruinrecreate/vrpsolver/vrp"
)

// solomonCustomer is one row of the Solomon VRPTW customer table. Customer
// 0 is always the depot.
type solomonCustomer struct {
	id      int
	x, y    float64
	demand  float64
	ready   float64
	due     float64
	service float64
}

// readSolomonProblem parses the classic Solomon VRPTW text grammar: a
// vehicle header (count, capacity) followed by one row per customer (id,
// x, y, demand, ready-time, due-date, service-time). It builds a single
// routing profile and a Euclidean distance/duration matrix from the
// coordinates — the Solomon benchmark defines travel time as equal to
// Euclidean distance.
func readSolomonProblem(problem io.Reader, _ []io.Reader) (*vrp.Problem, error) {
	scanner := bufio.NewScanner(problem)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var vehicleCount int
	var capacity float64
	var customers []solomonCustomer
	section := ""

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)
		switch {
		case upper == "VEHICLE":
			section = "vehicle-header"
			continue
		case upper == "CUSTOMER":
			section = "customer-header"
			continue
		case strings.HasPrefix(upper, "NUMBER") || strings.HasPrefix(upper, "CUST NO"):
			continue // column-header row
		}

		fields := strings.Fields(line)
		switch section {
		case "vehicle-header":
			n, cap, err := parseVehicleHeader(fields)
			if err != nil {
				return nil, err
			}
			vehicleCount, capacity = n, cap
			section = "customer-header"
		case "customer-header", "customer":
			c, err := parseSolomonCustomer(fields)
			if err != nil {
				return nil, err
			}
			customers = append(customers, c)
			section = "customer"
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("solomon: %w", err)
	}
	if len(customers) == 0 {
		return nil, fmt.Errorf("solomon: no customer rows found")
	}

	depot := customers[0]
	transport, err := buildEuclideanMatrix(customers)
	if err != nil {
		return nil, err
	}
	activity := vrp.SimpleActivityCost{}

	jobs := make([]vrp.Job, 0, len(customers)-1)
	for _, c := range customers[1:] {
		place := vrp.Place{
			Location:    vrp.Location(c.id),
			Duration:    c.service,
			TimeWindows: []vrp.TimeWindow{{Start: c.ready, End: c.due}},
			Demand:      vrp.Demand{c.demand},
		}
		jobs = append(jobs, &vrp.SingleJob{ID: strconv.Itoa(c.id), Alternatives: []vrp.Place{place}})
	}

	shift := vrp.TimeWindow{Start: depot.ready, End: depot.due}
	depotLoc := vrp.Location(depot.id)
	actors := make([]*vrp.Actor, 0, vehicleCount)
	for i := 0; i < vehicleCount; i++ {
		end := depotLoc
		actors = append(actors, &vrp.Actor{
			ID:           fmt.Sprintf("vehicle_%d", i+1),
			Profile:      0,
			DriverCosts:  vrp.CostFactors{PerDrivingTime: 1},
			VehicleCosts: vrp.CostFactors{PerDistance: 1},
			Capacity:     []float64{capacity},
			Start:        depotLoc,
			End:          &end,
			Shift:        shift,
		})
	}
	fleet := &vrp.Fleet{Actors: actors}

	pipeline := vrp.NewPipeline(
		vrp.NewTimingConstraintModule(activity, transport),
		vrp.NewCapacityConstraintModule(),
		vrp.NewSkillsConstraintModule(),
	)
	objective := vrp.DefaultObjective(transport)

	return vrp.NewProblem(jobs, fleet, transport, activity, pipeline, objective), nil
}

func parseVehicleHeader(fields []string) (int, float64, error) {
	if len(fields) < 2 {
		return 0, 0, fmt.Errorf("solomon: malformed vehicle line %q", strings.Join(fields, " "))
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("solomon: vehicle count: %w", err)
	}
	cap, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("solomon: vehicle capacity: %w", err)
	}
	return n, cap, nil
}

func parseSolomonCustomer(fields []string) (solomonCustomer, error) {
	if len(fields) < 7 {
		return solomonCustomer{}, fmt.Errorf("solomon: malformed customer line %q", strings.Join(fields, " "))
	}
	vals := make([]float64, 7)
	for i, f := range fields[:7] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return solomonCustomer{}, fmt.Errorf("solomon: parsing field %q: %w", f, err)
		}
		vals[i] = v
	}
	return solomonCustomer{
		id:      int(vals[0]),
		x:       vals[1],
		y:       vals[2],
		demand:  vals[3],
		ready:   vals[4],
		due:     vals[5],
		service: vals[6],
	}, nil
}

// buildEuclideanMatrix assumes Solomon customer ids are a dense 0..n-1
// sequence matching each row's position, as every published Solomon
// instance is laid out.
func buildEuclideanMatrix(customers []solomonCustomer) (vrp.TransportCost, error) {
	size := len(customers)
	durations := make([]float64, size*size)
	distances := make([]float64, size*size)
	for i, a := range customers {
		for j, b := range customers {
			d := math.Hypot(a.x-b.x, a.y-b.y)
			durations[i*size+j] = d
			distances[i*size+j] = d
		}
	}
	transport, err := vrp.NewMatrixTransportCost([]vrp.MatrixData{vrp.NewMatrixData(0, durations, distances)})
	if err != nil {
		return nil, fmt.Errorf("solomon: building transport matrix: %w", err)
	}
	return transport, nil
}

// writeSolomonSolution emits "Solution\n" then one
// "Route {i}: {job-id} {job-id} ...\n" per route, 1-based route index, job
// activities only, in tour order. It fails with a descriptive error if any
// job is unassigned.
func writeSolomonSolution(_ *vrp.Problem, solution *vrp.InsertionContext, w io.Writer) error {
	if len(solution.Required) > 0 || len(solution.Unassigned) > 0 {
		return fmt.Errorf("solomon: cannot write a solution with unassigned jobs")
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("Solution\n"); err != nil {
		return err
	}
	for i, rc := range solution.Routes {
		ids := rc.Route.Tour.JobIDs()
		if _, err := fmt.Fprintf(bw, "Route %d: %s\n", i+1, strings.Join(ids, " ")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

var solomonFormat = Format{
	Name:        "solomon",
	ReadProblem: readSolomonProblem,
	// No initial-solution grammar is defined for this format; left
	// unimplemented rather than invented.
	ReadInitSolution: notImplementedInitReader,
	WriteSolution:    writeSolomonSolution,
}
