// cmd/root.go
package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ruinrecreate/vrpsolver/vrp"
	"github.com/ruinrecreate/vrpsolver/vrp/format"
)

var (
	maxGenerations       int
	variationCoefficient string
	minimizeRoutes       bool
	initSolutionPath     string
	matrixPaths          []string
	seed                 int64
	logLevel             string
	outPath              string
)

var rootCmd = &cobra.Command{
	Use:   "vrpsolver",
	Short: "Ruin-and-recreate metaheuristic solver for vehicle routing problems",
}

var solveCmd = &cobra.Command{
	Use:   "solve <problem-file> <format>",
	Short: "Solve a VRP instance and print the best solution found",
	Args:  cobra.ExactArgs(2),
	Run:   runSolve,
}

// Execute runs the root command, exiting 1 on any returned error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func init() {
	solveCmd.Flags().IntVar(&maxGenerations, "max-generations", 200, "Maximum refinement generations")
	solveCmd.Flags().StringVar(&variationCoefficient, "variation-coefficient", "50,0.01", "SAMPLE,THRESHOLD for coefficient-of-variation termination")
	solveCmd.Flags().BoolVar(&minimizeRoutes, "minimize-routes", false, "Prefer fewer routes over lower cost once converged")
	solveCmd.Flags().StringVar(&initSolutionPath, "init-solution", "", "Path to an initial-solution file")
	solveCmd.Flags().StringArrayVar(&matrixPaths, "matrix", nil, "Path to a routing matrix file (repeatable)")
	solveCmd.Flags().Int64Var(&seed, "seed", 1, "Master RNG seed for deterministic runs")
	solveCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")
	solveCmd.Flags().StringVar(&outPath, "out", "", "Write the solution to this path instead of stdout")

	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)

	problemPath, formatName := args[0], args[1]

	f, err := format.Lookup(formatName)
	if err != nil {
		exitWithError(err)
	}

	problemFile, err := os.Open(problemPath)
	if err != nil {
		exitWithError(fmt.Errorf("opening problem file: %w", err))
	}
	defer problemFile.Close()

	matrixFiles := make([]io.Reader, 0, len(matrixPaths))
	for _, p := range matrixPaths {
		mf, err := os.Open(p)
		if err != nil {
			exitWithError(fmt.Errorf("opening matrix file %s: %w", p, err))
		}
		defer mf.Close()
		matrixFiles = append(matrixFiles, mf)
	}

	problem, err := f.ReadProblem(problemFile, matrixFiles)
	if err != nil {
		exitWithError(fmt.Errorf("reading problem: %w", err))
	}

	sample, threshold, err := parseVariationCoefficient(variationCoefficient)
	if err != nil {
		exitWithError(err)
	}

	config := vrp.DefaultSolverConfig(problem)
	config.MaxGenerations = maxGenerations
	config.VariationSample = sample
	config.VariationThreshold = threshold
	config.MinimizeRoutes = minimizeRoutes
	config.Seed = seed

	if initSolutionPath != "" {
		initFile, err := os.Open(initSolutionPath)
		if err != nil {
			exitWithError(fmt.Errorf("opening init-solution file: %w", err))
		}
		defer initFile.Close()
		initial, err := f.ReadInitSolution(initFile, problem)
		if err != nil {
			exitWithError(fmt.Errorf("reading init solution: %w", err))
		}
		config.InitialSolution = initial
	}

	logrus.Infof("solving %s (%s) with %d jobs, %d actors", problemPath, formatName, len(problem.Jobs), len(problem.Fleet.Actors))

	solver := vrp.NewSolver(problem, config)
	solution, err := solver.Run()
	if err != nil {
		exitWithError(err)
	}

	unassigned := len(solution.Required) + len(solution.Unassigned)
	if unassigned > 0 {
		logrus.Warnf("no feasible placement found for %d job(s); exiting normally per the solution format's own reporting", unassigned)
	}

	var out io.Writer = os.Stdout
	if outPath != "" {
		file, err := os.Create(outPath)
		if err != nil {
			exitWithError(fmt.Errorf("creating output file: %w", err))
		}
		defer file.Close()
		out = file
	}

	if err := f.WriteSolution(problem, solution, out); err != nil {
		if unassigned > 0 {
			logrus.Warnf("solution not written: %v", err)
			return
		}
		exitWithError(err)
	}
}

func parseVariationCoefficient(s string) (int, float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("--variation-coefficient must be SAMPLE,THRESHOLD, got %q", s)
	}
	sample, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("--variation-coefficient sample: %w", err)
	}
	threshold, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("--variation-coefficient threshold: %w", err)
	}
	return sample, threshold, nil
}

func exitWithError(err error) {
	logrus.Error(err)
	os.Exit(1)
}
