package vrp

import (
	"time"

	"github.com/sirupsen/logrus"
)

// SolverConfig configures one refinement run: generation/variation
// thresholds, the minimize-routes preference, an optional initial
// solution, plus the ambient knobs (seed, wall-clock budget, population
// sizing) and the pluggable ruin/recreate mix.
type SolverConfig struct {
	MaxGenerations      int
	VariationSample     int
	VariationThreshold  float64
	MinimizeRoutes      bool
	Seed                int64
	TimeLimit           time.Duration // zero => no wall-clock budget
	PopulationBatchSize int
	InitialSolution     *InsertionContext // optional; built via NewInitialSolution otherwise
	Ruin                *CompositeRuin
	Recreate            *CompositeRecreate
}

// DefaultSolverConfig returns the engine's default mix: 200 generations,
// coefficient-of-variation sample 50 at threshold 0.01, and the default
// recreate/ruin composites bound to problem.
func DefaultSolverConfig(problem *Problem) SolverConfig {
	eval := NewInsertionEvaluator(problem)
	return SolverConfig{
		MaxGenerations:      200,
		VariationSample:     50,
		VariationThreshold:  0.01,
		PopulationBatchSize: 4,
		Recreate:            DefaultCompositeRecreate(eval),
		Ruin:                DefaultCompositeRuin(problem.Transport),
	}
}

// RefinementContext threads the shared Problem, the Population, the
// generation counter, and a keyed scratch bag (e.g. the coefficient-of-
// variation ring buffer) through every generation's ruin->recreate->
// accept->terminate cycle. The scratch bag's lifetime is the run.
type RefinementContext struct {
	Problem        *Problem
	Population     *Population
	Generation     int
	MinimizeRoutes bool
	State          map[string]any
}

// Solver orchestrates the ruin-and-recreate refinement loop: tick ->
// handle -> check-exit, adapted from a discrete-event clock to a
// generation counter.
type Solver struct {
	Problem *Problem
	Config  SolverConfig
	rng     *PartitionedRNG
}

// NewSolver builds a Solver, filling in Recreate, Ruin and
// PopulationBatchSize with the engine defaults when they are left unset;
// every other SolverConfig field is used as given.
func NewSolver(problem *Problem, config SolverConfig) *Solver {
	if config.Recreate == nil {
		config.Recreate = DefaultCompositeRecreate(NewInsertionEvaluator(problem))
	}
	if config.Ruin == nil {
		config.Ruin = DefaultCompositeRuin(problem.Transport)
	}
	if config.PopulationBatchSize < 2 {
		config.PopulationBatchSize = 4
	}
	return &Solver{Problem: problem, Config: config, rng: NewPartitionedRNG(config.Seed)}
}

// Run drives generations until termination fires, returning the best
// InsertionContext found. Never returns a non-nil error itself (every
// internal failure mode is either a Violation threaded through the
// constraint pipeline or a panic on a genuine invariant breach); the error
// return exists so format/CLI-layer callers compose uniformly with
// fallible reader/writer calls.
func (s *Solver) Run() (*InsertionContext, error) {
	var initial *InsertionContext
	if s.Config.InitialSolution != nil {
		initial = s.Config.InitialSolution
	} else {
		initial = NewInitialSolution(s.Problem, s.rng.ForWorker(0))
	}

	pop := NewPopulation(s.Problem.Objective, s.Config.MinimizeRoutes, s.Config.PopulationBatchSize)
	pop.Add(initial, 1)

	rc := &RefinementContext{
		Problem:        s.Problem,
		Population:     pop,
		Generation:     1,
		MinimizeRoutes: s.Config.MinimizeRoutes,
		State:          make(map[string]any),
	}

	var deadline time.Time
	if s.Config.TimeLimit > 0 {
		deadline = time.Now().Add(s.Config.TimeLimit)
	}
	term := s.buildTermination(deadline)

	for {
		best := pop.Best(s.Config.MinimizeRoutes)
		workerRNG := s.rng.ForWorker(rc.Generation)
		incumbent := best.Context.Clone(workerRNG)

		s.Config.Ruin.Run(incumbent)
		s.Config.Recreate.Run(incumbent, rc.Generation)
		s.Problem.Pipeline.AcceptSolutionState(incumbent)

		pop.Add(incumbent, rc.Generation)
		logrus.Infof("generation %d: fitness=%.3f unassigned=%d routes=%d",
			rc.Generation, s.Problem.Objective.Fitness(incumbent),
			len(incumbent.Required)+len(incumbent.Unassigned), len(incumbent.Routes))

		rc.Generation++
		if term.IsTerminated(rc) {
			break
		}
	}

	return pop.Best(s.Config.MinimizeRoutes).Context, nil
}

func (s *Solver) buildTermination(deadline time.Time) Termination {
	var terms []Termination
	if s.Config.MaxGenerations > 0 {
		terms = append(terms, MaxGenerations{Max: s.Config.MaxGenerations})
	}
	if s.Config.VariationSample > 1 {
		terms = append(terms, &CostVariation{Sample: s.Config.VariationSample, Threshold: s.Config.VariationThreshold})
	}
	if !deadline.IsZero() {
		terms = append(terms, TimeLimit{Deadline: deadline})
	}
	if len(terms) == 0 {
		terms = append(terms, MaxGenerations{Max: 1})
	}
	return OrTermination{Terminations: terms}
}
