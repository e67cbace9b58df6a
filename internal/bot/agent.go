package bot

import (
	"fmt"

	"euchre/internal/domain"
)

// Agent represents an autonomous bot player bound to a seat.
type Agent struct {
	Seat     int
	Name     string
	Strategy Brain
}

// Play asks the agent to calculate its move based on the current game state.
func (a *Agent) Play(state domain.GameState) (Move, error) {
	if state.CurrentPlayer != a.Seat {
		return Move{}, fmt.Errorf("%w: seat %d to act, agent sits at %d", ErrNoDecision, state.CurrentPlayer, a.Seat)
	}
	return a.Strategy.CalculateMove(state, a.Seat)
}
