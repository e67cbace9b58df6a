package bot

import (
	"errors"

	"euchre/internal/domain"
)

// MoveKind tells whether a Move carries a bid or a card.
type MoveKind int

const (
	MoveBid MoveKind = iota + 1
	MovePlay
)

// Move represents the decision made by the AI.
type Move struct {
	Kind MoveKind
	Bid  domain.Bid
	Card domain.Card
}

// Brain is the interface that all bot strategies must implement.
// Implementations keep no state between calls that affects decisions.
type Brain interface {
	CalculateMove(state domain.GameState, seat int) (Move, error)
}

// ErrNoDecision is returned when the phase asks nothing of the seat.
var ErrNoDecision = errors.New("no decision to make in this phase")
