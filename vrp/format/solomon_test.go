package format

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruinrecreate/vrpsolver/vrp"
)

const tinySolomonInstance = `
TINY

VEHICLE
NUMBER     CAPACITY
  2         50

CUSTOMER
CUST NO.  XCOORD.  YCOORD.  DEMAND  READY TIME  DUE DATE  SERVICE TIME
    0       0        0         0         0        1000         0
    1       0       10        10         0        1000        10
    2      10        0        10         0        1000        10
`

func TestReadSolomonProblem(t *testing.T) {
	problem, err := readSolomonProblem(strings.NewReader(tinySolomonInstance), nil)
	require.NoError(t, err)

	assert.Len(t, problem.Jobs, 2)
	assert.Len(t, problem.Fleet.Actors, 2)
	for _, a := range problem.Fleet.Actors {
		require.NotNil(t, a.End)
		assert.Equal(t, vrp.Location(0), *a.End)
		assert.Equal(t, []float64{50}, a.Capacity)
	}

	job := problem.JobByID("1")
	require.NotNil(t, job)
	places := job.Places()
	require.Len(t, places, 1)
	require.Len(t, places[0], 1)
	assert.Equal(t, vrp.Location(1), places[0][0].Location)
	assert.Equal(t, vrp.Duration(10), places[0][0].Duration)
}

func TestBuildEuclideanMatrix(t *testing.T) {
	customers := []solomonCustomer{
		{id: 0, x: 0, y: 0},
		{id: 1, x: 3, y: 4},
	}
	transport, err := buildEuclideanMatrix(customers)
	require.NoError(t, err)

	dist := transport.Distance(0, 0, 1, 0)
	assert.InDelta(t, 5.0, dist, 1e-9)
}

func TestWriteSolomonSolution_ErrorsOnUnassignedJobs(t *testing.T) {
	problem, err := readSolomonProblem(strings.NewReader(tinySolomonInstance), nil)
	require.NoError(t, err)

	ctx := vrp.NewInsertionContext(problem, rand.New(rand.NewSource(1)))
	var out strings.Builder
	err = writeSolomonSolution(problem, ctx, &out)
	assert.Error(t, err)
}

func TestWriteSolomonSolution_EmitsRoutesInTourOrder(t *testing.T) {
	problem, err := readSolomonProblem(strings.NewReader(tinySolomonInstance), nil)
	require.NoError(t, err)

	ctx := vrp.NewInsertionContext(problem, rand.New(rand.NewSource(1)))
	eval := vrp.NewInsertionEvaluator(problem)
	(&vrp.RecreateWithCheapest{Evaluator: eval}).Run(ctx)
	require.Empty(t, ctx.Required)
	require.Empty(t, ctx.Unassigned)

	var out strings.Builder
	require.NoError(t, writeSolomonSolution(problem, ctx, &out))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "Solution", lines[0])
	for _, line := range lines[1:] {
		assert.True(t, strings.HasPrefix(line, "Route "))
	}
}
