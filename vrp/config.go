package vrp

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// WeightedName names a recreate or ruin strategy and its selection weight,
// the on-disk shape of one entry in a SolverConfigFile's recreate/ruin
// lists.
type WeightedName struct {
	Name   string `yaml:"name"`
	Weight int    `yaml:"weight"`
}

// SolverConfigFile is the on-disk YAML shape for a solver run: which
// recreate/ruin modules to wire in (by name) and their weights, plus the
// termination and population knobs. Strict decoding means a typo'd key
// fails loudly instead of being silently ignored.
type SolverConfigFile struct {
	MaxGenerations      int            `yaml:"max_generations"`
	VariationSample     int            `yaml:"variation_sample"`
	VariationThreshold  float64        `yaml:"variation_threshold"`
	MinimizeRoutes      bool           `yaml:"minimize_routes"`
	Seed                int64          `yaml:"seed"`
	TimeLimitSeconds    float64        `yaml:"time_limit_seconds"`
	PopulationBatchSize int            `yaml:"population_batch_size"`
	Recreate            []WeightedName `yaml:"recreate"`
	Ruin                []WeightedName `yaml:"ruin"`
}

var (
	validRecreateNames = map[string]bool{"cheapest": true, "blinks": true, "gaps": true}
	validRuinNames     = map[string]bool{"random-job": true, "adjacent-string": true, "neighborhood": true}
)

// LoadSolverConfigFile reads and strictly parses a YAML solver config.
func LoadSolverConfigFile(path string) (*SolverConfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading solver config: %w", err)
	}
	var cfg SolverConfigFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing solver config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every named recreate/ruin strategy is recognized.
func (c *SolverConfigFile) Validate() error {
	for _, r := range c.Recreate {
		if !validRecreateNames[r.Name] {
			return fmt.Errorf("unknown recreate strategy %q", r.Name)
		}
	}
	for _, r := range c.Ruin {
		if !validRuinNames[r.Name] {
			return fmt.Errorf("unknown ruin strategy %q", r.Name)
		}
	}
	return nil
}

// Build resolves the named strategies into a SolverConfig bound to
// problem/eval, leaving any axis absent from the file to NewSolver's
// own defaulting.
func (c *SolverConfigFile) Build(problem *Problem, eval *InsertionEvaluator) SolverConfig {
	cfg := SolverConfig{
		MaxGenerations:      c.MaxGenerations,
		VariationSample:     c.VariationSample,
		VariationThreshold:  c.VariationThreshold,
		MinimizeRoutes:      c.MinimizeRoutes,
		Seed:                c.Seed,
		PopulationBatchSize: c.PopulationBatchSize,
	}
	if c.TimeLimitSeconds > 0 {
		cfg.TimeLimit = time.Duration(c.TimeLimitSeconds * float64(time.Second))
	}
	if len(c.Recreate) > 0 {
		pairs := make([]WeightedRecreate, 0, len(c.Recreate))
		for _, r := range c.Recreate {
			pairs = append(pairs, WeightedRecreate{Recreate: buildRecreate(r.Name, eval), Weight: r.Weight})
		}
		cfg.Recreate = NewCompositeRecreate(pairs...)
	}
	if len(c.Ruin) > 0 {
		pairs := make([]WeightedRuinPair, 0, len(c.Ruin))
		for _, r := range c.Ruin {
			pairs = append(pairs, WeightedRuinPair{Ruin: buildRuin(r.Name, problem.Transport), Weight: r.Weight})
		}
		cfg.Ruin = NewCompositeRuin(pairs...)
	}
	return cfg
}

func buildRecreate(name string, eval *InsertionEvaluator) Recreate {
	switch name {
	case "blinks":
		return &RecreateWithBlinks{Evaluator: eval, BlinkRate: 0.1}
	case "gaps":
		return &RecreateWithGaps{Evaluator: eval, GroupSize: 3}
	default:
		return &RecreateWithCheapest{Evaluator: eval}
	}
}

func buildRuin(name string, transport TransportCost) Ruin {
	switch name {
	case "adjacent-string":
		return &RuinAdjacentString{Ratio: 0.3}
	case "neighborhood":
		return &RuinNeighborhood{Ratio: 0.2, Transport: transport}
	default:
		return &RuinRandomJob{Ratio: 0.2}
	}
}
