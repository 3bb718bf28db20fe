package mcts

import "fmt"

// Search hyperparameters.
const (
	DefaultExploration       = 1.41 // ~sqrt(2)
	DefaultUnvisitedPriority = 6.0  // above any win percentage + exploration bonus we care about
	DefaultSimulations       = 1000
)

type Config struct {
	Simulations int
	// Aggression scales hit and double priorities up and stand priorities
	// down. Below 1 the search leans toward standing.
	Aggression        float64
	Exploration       float64
	UnvisitedPriority float64
	// Workers > 1 runs rollouts in parallel. Results are only reproducible
	// with a single worker.
	Workers int
	// Seed 0 => time-based.
	Seed int64
}

func DefaultConfig() Config {
	return Config{
		Simulations:       DefaultSimulations,
		Aggression:        1,
		Exploration:       DefaultExploration,
		UnvisitedPriority: DefaultUnvisitedPriority,
		Workers:           1,
	}
}

func (c Config) Validate() error {
	if c.Simulations < 0 {
		return fmt.Errorf("simulations must be >= 0, got %d", c.Simulations)
	}
	if c.Aggression <= 0 {
		return fmt.Errorf("aggression must be > 0, got %v", c.Aggression)
	}
	if c.Exploration < 0 {
		return fmt.Errorf("exploration must be >= 0, got %v", c.Exploration)
	}
	if c.UnvisitedPriority <= 1 {
		return fmt.Errorf("unvisited priority must exceed any win percentage, got %v", c.UnvisitedPriority)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	return nil
}
