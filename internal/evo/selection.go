package evo

import (
	"fmt"
	"math/rand"

	"plasmid/internal/agent"
)

// ScoredAgent pairs an agent with its fitness for the current generation.
type ScoredAgent struct {
	Agent   *agent.Agent
	Fitness float64
}

// Selector chooses a parent from the scored population for replication.
type Selector interface {
	Name() string
	PickParent(rng *rand.Rand, scored []ScoredAgent) (*agent.Agent, error)
}

// TournamentSelector samples a small subset without replacement and keeps
// its fittest member. Successive picks re-sample with replacement across
// tournaments.
type TournamentSelector struct {
	TournamentSize int
}

func (TournamentSelector) Name() string {
	return "tournament"
}

func (s TournamentSelector) PickParent(rng *rand.Rand, scored []ScoredAgent) (*agent.Agent, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if len(scored) == 0 {
		return nil, fmt.Errorf("empty population")
	}

	size := s.TournamentSize
	if size <= 0 {
		size = 3
	}
	if size > len(scored) {
		size = len(scored)
	}

	sample := rng.Perm(len(scored))[:size]
	best := scored[sample[0]]
	for _, idx := range sample[1:] {
		if scored[idx].Fitness > best.Fitness {
			best = scored[idx]
		}
	}
	return best.Agent, nil
}
