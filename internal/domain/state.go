package domain

import (
	"errors"
	"fmt"
)

// Phase represents the lifecycle stage of a Euchre game.
type Phase string

const (
	// PhaseDealing waits for the deal of a new hand.
	PhaseDealing Phase = "dealing"
	// PhaseBidding is the two-round trump auction.
	PhaseBidding Phase = "bidding"
	// PhasePlaying accepts card plays into the current trick.
	PhasePlaying Phase = "playing"
	// PhaseTrickComplete holds a resolved trick on the table until play continues.
	PhaseTrickComplete Phase = "trickComplete"
	// PhaseScoring is reached once the hand's five tricks are scored.
	PhaseScoring Phase = "scoring"
	// PhaseGameOver is terminal; only a full reset leaves it.
	PhaseGameOver Phase = "gameOver"
)

// Team identifies one of the two fixed partnerships.
type Team int

const (
	// Team1 holds seats 0 and 2.
	Team1 Team = iota + 1
	// Team2 holds seats 1 and 3.
	Team2
)

func (t Team) String() string {
	switch t {
	case Team1:
		return "team1"
	case Team2:
		return "team2"
	}
	return "unknown"
}

// TeamTally counts something (tricks, points) per team.
type TeamTally struct {
	Team1 int `json:"team1"`
	Team2 int `json:"team2"`
}

// Get returns the count for the team.
func (t TeamTally) Get(team Team) int {
	if team == Team1 {
		return t.Team1
	}
	return t.Team2
}

// Add returns a copy with n added to team's count.
func (t TeamTally) Add(team Team, n int) TeamTally {
	if team == Team1 {
		t.Team1 += n
	} else {
		t.Team2 += n
	}
	return t
}

// Total sums both teams.
func (t TeamTally) Total() int {
	return t.Team1 + t.Team2
}

// PlayedCard is a card on the table with the seat that played it.
type PlayedCard struct {
	Card
	Seat       int    `json:"seat"`
	PlayerName string `json:"player_name"`
}

// Player holds the per-seat state.
type Player struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Hand      []Card `json:"hand"`
	IsDealer  bool   `json:"is_dealer"`
	IsAI      bool   `json:"is_ai"`
	TricksWon int    `json:"tricks_won"`
}

// GameState is the authoritative state of a game. Transitions never modify a GameState in
// place; they work on a Clone and return it.
type GameState struct {
	Players       [NumSeats]Player `json:"players"`
	Deck          []Card           `json:"deck"`
	TrumpSuit     Suit             `json:"trump_suit"`
	CurrentPlayer int              `json:"current_player"`
	Dealer        int              `json:"dealer"`
	Phase         Phase            `json:"phase"`
	BiddingRound  int              `json:"bidding_round"`
	PassCount     int              `json:"pass_count"`
	Score         TeamTally        `json:"score"`
	CurrentTrick  []PlayedCard     `json:"current_trick"`
	TricksWon     TeamTally        `json:"tricks_won"`
}

// Clone returns a deep copy sharing no slices with g.
func (g GameState) Clone() GameState {
	out := g
	for i := range out.Players {
		out.Players[i].Hand = cloneCards(g.Players[i].Hand)
	}
	out.Deck = cloneCards(g.Deck)
	if g.CurrentTrick != nil {
		out.CurrentTrick = append(make([]PlayedCard, 0, NumSeats), g.CurrentTrick...)
	}
	return out
}

func cloneCards(cards []Card) []Card {
	if cards == nil {
		return nil
	}
	return append(make([]Card, 0, len(cards)), cards...)
}

// UpCard returns the turned-up card shown during bidding.
func (g GameState) UpCard() (Card, bool) {
	if len(g.Deck) == 0 {
		return Card{}, false
	}
	return g.Deck[0], true
}

// TricksPlayed returns the number of tricks resolved this hand.
func (g GameState) TricksPlayed() int {
	return g.TricksWon.Total()
}

// Winner returns the team that reached the winning score, if any.
func (g GameState) Winner() (Team, bool) {
	switch {
	case g.Score.Team1 >= WinningScore:
		return Team1, true
	case g.Score.Team2 >= WinningScore:
		return Team2, true
	}
	return 0, false
}

// ErrInvariant is wrapped by every CheckInvariants failure.
var ErrInvariant = errors.New("game state invariant violated")

// CheckInvariants validates the structural rules that hold at every state boundary.
func (g GameState) CheckInvariants() error {
	dealers := 0
	for i, p := range g.Players {
		if p.IsDealer {
			dealers++
			if i != g.Dealer {
				return fmt.Errorf("%w: seat %d flagged dealer, dealer is %d", ErrInvariant, i, g.Dealer)
			}
		}
		if p.ID != i {
			return fmt.Errorf("%w: seat %d has id %d", ErrInvariant, i, p.ID)
		}
	}
	if dealers != 1 {
		return fmt.Errorf("%w: %d dealers", ErrInvariant, dealers)
	}
	if g.CurrentPlayer < 0 || g.CurrentPlayer >= NumSeats {
		return fmt.Errorf("%w: current player %d", ErrInvariant, g.CurrentPlayer)
	}
	if g.TricksPlayed() > TricksPerHand {
		return fmt.Errorf("%w: %d tricks in one hand", ErrInvariant, g.TricksPlayed())
	}

	seen := make(map[Card]bool, DeckSize)
	count := func(cards []Card) error {
		for _, c := range cards {
			if seen[c] {
				return fmt.Errorf("%w: duplicate card %s", ErrInvariant, c)
			}
			seen[c] = true
		}
		return nil
	}
	for _, p := range g.Players {
		if err := count(p.Hand); err != nil {
			return err
		}
	}
	if err := count(g.Deck); err != nil {
		return err
	}
	for _, pc := range g.CurrentTrick {
		if err := count([]Card{pc.Card}); err != nil {
			return err
		}
	}

	// Cards of resolved tricks leave the state; a completed trick is still on the table.
	played := g.TricksPlayed() * NumSeats
	if g.Phase == PhaseTrickComplete {
		played -= len(g.CurrentTrick)
	}
	if total := len(seen) + played; total != DeckSize {
		return fmt.Errorf("%w: %d cards accounted for", ErrInvariant, total)
	}
	return nil
}

// TeamOf returns the partnership of a seat.
func TeamOf(seat int) Team {
	if seat%2 == 0 {
		return Team1
	}
	return Team2
}
