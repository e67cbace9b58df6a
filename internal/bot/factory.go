package bot

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Level selects a bot strategy.
type Level string

const (
	LevelHeuristic Level = "heuristic"
	LevelRandom    Level = "random"
)

// ParseLevel converts a configuration string to a Level.
func ParseLevel(s string) (Level, error) {
	switch l := Level(strings.ToLower(strings.TrimSpace(s))); l {
	case LevelHeuristic, LevelRandom:
		return l, nil
	}
	return "", fmt.Errorf("unknown bot level: %q", s)
}

// NewBrain creates a new AI brain based on the specified level.
// rng is only used by levels that draw randomness; nil gets a fresh PCG source.
func NewBrain(level Level, rng *rand.Rand) (Brain, error) {
	switch level {
	case LevelHeuristic:
		return Heuristic{}, nil
	case LevelRandom:
		if rng == nil {
			rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
		return NewRandomBot(rng), nil
	default:
		return nil, fmt.Errorf("unknown bot level: %q", level)
	}
}

// NewAgent builds an agent for seat with the given level.
func NewAgent(seat int, name string, level Level, rng *rand.Rand) (*Agent, error) {
	brain, err := NewBrain(level, rng)
	if err != nil {
		return nil, err
	}
	return &Agent{Seat: seat, Name: name, Strategy: brain}, nil
}
