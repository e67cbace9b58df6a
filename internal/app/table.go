package app

import (
	"fmt"

	"github.com/google/uuid"

	"euchre/internal/bot"
	"euchre/internal/domain"
)

// Table binds a game to its seats: agents drive AI seats, nil entries are humans.
// A Table is not safe for concurrent use; callers serialize intents.
type Table struct {
	ID      string
	Service *Service
	Agents  [domain.NumSeats]*bot.Agent
	State   domain.GameState
	// AutoDeal deals the opening hand of a game without waiting for Deal. Later hands are
	// always dealt as soon as the previous one is scored.
	AutoDeal bool
}

// NewTable creates a table and starts a fresh game. Agents whose strategy also answers
// dealer decisions are installed as that seat's dealer policy.
func NewTable(svc *Service, agents [domain.NumSeats]*bot.Agent) *Table {
	t := &Table{ID: uuid.NewString(), Service: svc, Agents: agents}
	for seat, a := range agents {
		if a == nil {
			continue
		}
		if p, ok := a.Strategy.(DealerPolicy); ok {
			svc.SetDealerPolicy(seat, p)
		}
	}
	t.Reset()
	return t
}

// Reset throws away the current game and starts a new one.
func (t *Table) Reset() {
	t.State = t.Service.InitializeGame()
	for seat, a := range t.Agents {
		t.State.Players[seat].IsAI = a != nil
		if a != nil && a.Name != "" {
			t.State.Players[seat].Name = a.Name
		}
	}
}

// IsHuman reports whether seat waits for external intents.
func (t *Table) IsHuman(seat int) bool {
	return seat >= 0 && seat < domain.NumSeats && t.Agents[seat] == nil
}

// Done reports whether the game has ended.
func (t *Table) Done() bool {
	return t.State.Phase == domain.PhaseGameOver
}

// Deal deals the next hand.
func (t *Table) Deal() ([]Event, error) {
	return t.apply(t.Service.DealCards(t.State))
}

// Bid applies a bid from seat.
func (t *Table) Bid(seat int, bid domain.Bid) ([]Event, error) {
	if t.State.CurrentPlayer != seat {
		return nil, fmt.Errorf("%w: seat %d to act", ErrNotYourTurn, t.State.CurrentPlayer)
	}
	return t.apply(t.Service.ProcessBid(t.State, bid))
}

// Play plays cardID for seat.
func (t *Table) Play(seat int, cardID string) ([]Event, error) {
	if t.State.CurrentPlayer != seat {
		return nil, fmt.Errorf("%w: seat %d to act", ErrNotYourTurn, t.State.CurrentPlayer)
	}
	return t.apply(t.Service.PlayCard(t.State, cardID))
}

func (t *Table) apply(next domain.GameState, events []Event, err error) ([]Event, error) {
	if err != nil {
		return nil, err
	}
	t.State = next
	return events, nil
}

// Step performs one automatic action, if the state calls for one. It reports false when
// the table is waiting on a human or the game is over.
func (t *Table) Step() ([]Event, bool, error) {
	switch t.State.Phase {
	case domain.PhaseBidding, domain.PhasePlaying:
		seat := t.State.CurrentPlayer
		a := t.Agents[seat]
		if a == nil {
			return nil, false, nil
		}
		move, err := a.Play(t.State)
		if err != nil {
			return nil, false, err
		}
		var events []Event
		switch move.Kind {
		case bot.MoveBid:
			events, err = t.Bid(seat, move.Bid)
		case bot.MovePlay:
			events, err = t.Play(seat, move.Card.ID())
		default:
			err = fmt.Errorf("agent at seat %d returned an empty move", seat)
		}
		if err != nil {
			return nil, false, err
		}
		return events, true, nil

	case domain.PhaseTrickComplete:
		events, err := t.apply(t.Service.ContinuePlaying(t.State))
		return events, err == nil, err

	case domain.PhaseScoring:
		events, err := t.apply(t.Service.StartNewHand(t.State))
		if err != nil {
			return nil, false, err
		}
		dealt, err := t.Deal()
		if err != nil {
			return nil, false, err
		}
		return append(events, dealt...), true, nil

	case domain.PhaseDealing:
		if !t.AutoDeal {
			return nil, false, nil
		}
		events, err := t.Deal()
		return events, err == nil, err
	}
	return nil, false, nil
}
