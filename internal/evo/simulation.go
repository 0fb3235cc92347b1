// Package evo drives populations of codon agents across generations:
// materialize progeny, score, select parents by tournament, derive mutated
// children.
package evo

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/tliron/commonlog"

	"plasmid/internal/agent"
	"plasmid/internal/gene"
	"plasmid/internal/genetics"
	"plasmid/internal/model"
	"plasmid/internal/peptide"
)

var log = commonlog.GetLogger("plasmid.evo")

type SimulationConfig struct {
	Table          *gene.Table
	Peptides       peptide.Table
	PopulationSize int
	MaxGenerations int
	MaxSteps       int
	SeedCodes      []string
	TargetPeptide  string
	MaxAttempts    int
	Seed           int64
	Selector       Selector
}

// RunResult is the outcome of one full simulation run. Best is nil when
// the population went extinct or never formed.
type RunResult struct {
	Best        *agent.Agent
	BestFitness float64
	Extinct     bool
	Diagnostics []model.GenerationDiagnostics
	Lineage     []model.LineageRecord
}

type Simulation struct {
	cfg SimulationConfig
	rng *rand.Rand

	population []*agent.Agent
	generation int
	failed     bool

	lineage []model.LineageRecord
}

// NewSimulation builds the initial population: seed codes first (invalid
// seeds are dropped with a warning, never fatal), then random genes until
// the population is full or the attempt budget runs out. A population that
// stays empty puts the simulation in a permanently failed state; Run then
// reports extinction without cycling.
func NewSimulation(cfg SimulationConfig) (*Simulation, error) {
	if cfg.Table == nil {
		return nil, fmt.Errorf("codon table is required")
	}
	if cfg.PopulationSize <= 0 {
		return nil, fmt.Errorf("population size must be > 0")
	}
	if cfg.MaxGenerations <= 0 {
		return nil, fmt.Errorf("max generations must be > 0")
	}
	if cfg.MaxSteps <= 0 {
		return nil, fmt.Errorf("max steps must be > 0")
	}

	limits := cfg.Table.Limits()
	if cfg.PopulationSize > limits.MaxPopulation {
		cfg.PopulationSize = limits.MaxPopulation
	}
	if cfg.MaxGenerations > limits.MaxIterations {
		cfg.MaxGenerations = limits.MaxIterations
	}
	if cfg.MaxSteps > limits.MaxIterations {
		cfg.MaxSteps = limits.MaxIterations
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 100
	}
	if cfg.Selector == nil {
		cfg.Selector = TournamentSelector{}
	}

	s := &Simulation{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}

	seeds := cfg.SeedCodes
	if len(seeds) > cfg.PopulationSize {
		seeds = seeds[:cfg.PopulationSize]
	}
	for i, code := range seeds {
		a := agent.New(cfg.Table, fmt.Sprintf("seed-%d", i))
		if !a.Init(code) {
			log.Warningf("dropping invalid seed code: %s", code)
			continue
		}
		s.population = append(s.population, a)
	}

	for attempts := 0; len(s.population) < cfg.PopulationSize && attempts < cfg.MaxAttempts; attempts++ {
		code := genetics.CreateString(cfg.Table, s.rng)
		a := agent.New(cfg.Table, fmt.Sprintf("rand-%d", len(s.population)))
		if !a.Init(code) {
			log.Warningf("dropping invalid random code: %s", code)
			continue
		}
		s.population = append(s.population, a)
	}

	if len(s.population) == 0 {
		log.Errorf("no viable agents after %d attempts", cfg.MaxAttempts)
		s.failed = true
	}

	for _, a := range s.population {
		s.lineage = append(s.lineage, model.LineageRecord{
			AgentID:    a.ID(),
			Generation: 0,
			Operation:  "seed",
			Code:       a.Code(),
		})
	}
	return s, nil
}

func (s *Simulation) Generation() int { return s.generation }
func (s *Simulation) Failed() bool    { return s.failed }

// Population returns the current agents in their stable order.
func (s *Simulation) Population() []*agent.Agent {
	return append([]*agent.Agent(nil), s.population...)
}

// EvaluateFitness scores one agent against the simulation's target.
func (s *Simulation) EvaluateFitness(a *agent.Agent) float64 {
	return a.EvaluateFitness(s.cfg.Peptides, s.cfg.TargetPeptide)
}

// Run executes up to MaxGenerations cycles and returns the best agent of
// the final population, or an extinct result when no viable agents remain.
// The only error condition is context cancellation between generations.
func (s *Simulation) Run(ctx context.Context) (*RunResult, error) {
	if s.failed {
		return &RunResult{Extinct: true, Lineage: s.lineage}, nil
	}

	// Generation zero runs the seeds verbatim.
	for _, a := range s.population {
		a.Run(s.cfg.MaxSteps)
	}

	diagnostics := make([]model.GenerationDiagnostics, 0, s.cfg.MaxGenerations)
	extinct := false

	for gen := 0; gen < s.cfg.MaxGenerations; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.generation = gen + 1

		scored := s.scorePopulation()
		parents, err := s.selectParents(scored)
		if err != nil || len(parents) == 0 {
			log.Warningf("no parents selected for generation %d", s.generation)
			extinct = true
			break
		}

		children := make([]*agent.Agent, 0, s.cfg.PopulationSize)
		for i := 0; i < s.cfg.PopulationSize; i++ {
			parent := parents[s.rng.Intn(len(parents))]

			code := parent.Code()
			operation := "clone"
			if gen > 0 {
				// Generation zero preserves seed codes verbatim.
				code, operation = genetics.MutateNamed(s.cfg.Table, s.rng, code)
			}

			child := agent.New(s.cfg.Table, fmt.Sprintf("g%d-c%d", s.generation, i))
			if !child.Init(code) {
				log.Warningf("dropping child that failed validation: %s", code)
				continue
			}
			child.Run(s.cfg.MaxSteps)
			children = append(children, child)
			s.lineage = append(s.lineage, model.LineageRecord{
				AgentID:    child.ID(),
				ParentID:   parent.ID(),
				Generation: s.generation,
				Operation:  operation,
				Code:       code,
			})
		}

		if len(children) > 0 {
			s.population = children
		} else {
			log.Warningf("every child failed in generation %d; retaining previous generation", s.generation)
		}

		diagnostics = append(diagnostics, s.summarizeGeneration())
	}

	result := &RunResult{
		Extinct:     extinct,
		Diagnostics: diagnostics,
		Lineage:     s.lineage,
	}
	if best := s.Best(); best != nil {
		result.Best = best
		result.BestFitness = s.EvaluateFitness(best)
	} else {
		result.Extinct = true
	}
	return result, nil
}

// Best returns the highest-fitness agent of the current population, first
// one winning ties for stable ordering. Nil when the population is empty.
func (s *Simulation) Best() *agent.Agent {
	var best *agent.Agent
	bestFitness := 0.0
	for _, a := range s.population {
		fitness := s.EvaluateFitness(a)
		if best == nil || fitness > bestFitness {
			best = a
			bestFitness = fitness
		}
	}
	return best
}

// CumulativeEntropy sums progeny entropy across the population, falling
// back to the source code for agents that produced no progeny.
func (s *Simulation) CumulativeEntropy() float64 {
	total := 0.0
	for _, a := range s.population {
		code := a.Progeny()
		if code == "" {
			code = a.Code()
		}
		total += genetics.Entropy(s.cfg.Table, code)
	}
	return total
}

func (s *Simulation) scorePopulation() []ScoredAgent {
	scored := make([]ScoredAgent, len(s.population))
	for i, a := range s.population {
		scored[i] = ScoredAgent{Agent: a, Fitness: s.EvaluateFitness(a)}
	}
	return scored
}

func (s *Simulation) selectParents(scored []ScoredAgent) ([]*agent.Agent, error) {
	if len(scored) == 0 {
		return nil, nil
	}
	parents := make([]*agent.Agent, 0, s.cfg.PopulationSize)
	for i := 0; i < s.cfg.PopulationSize; i++ {
		parent, err := s.cfg.Selector.PickParent(s.rng, scored)
		if err != nil {
			return nil, err
		}
		parents = append(parents, parent)
	}
	return parents, nil
}

func (s *Simulation) summarizeGeneration() model.GenerationDiagnostics {
	diag := model.GenerationDiagnostics{
		Generation:        s.generation,
		CumulativeEntropy: s.CumulativeEntropy(),
		Survivors:         len(s.population),
	}
	if len(s.population) == 0 {
		return diag
	}

	total := 0.0
	minFitness := s.EvaluateFitness(s.population[0])
	maxFitness := minFitness
	for _, a := range s.population {
		fitness := s.EvaluateFitness(a)
		total += fitness
		if fitness < minFitness {
			minFitness = fitness
		}
		if fitness > maxFitness {
			maxFitness = fitness
		}
	}
	diag.BestFitness = maxFitness
	diag.MeanFitness = total / float64(len(s.population))
	diag.MinFitness = minFitness
	return diag
}
