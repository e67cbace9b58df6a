package app

import "euchre/internal/domain"

// EventKind identifies emitted game events for dispatch.
type EventKind string

const (
	EventHandDealt    EventKind = "hand_dealt"
	EventBidPassed    EventKind = "bid_passed"
	EventBiddingRound EventKind = "bidding_round"
	EventTrumpCalled  EventKind = "trump_called"
	EventCardPlayed   EventKind = "card_played"
	EventTrickWon     EventKind = "trick_won"
	EventHandScored   EventKind = "hand_scored"
	EventGameOver     EventKind = "game_over"
	EventNewHand      EventKind = "new_hand"
)

// Event is a game event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []int // seats; empty means broadcast
}

type HandDealtPayload struct {
	Seat   int
	Hand   []domain.Card
	UpCard domain.Card
	Dealer int
}

type BidPassedPayload struct {
	Seat       int
	Round      int
	NextPlayer int
}

type BiddingRoundPayload struct {
	Round      int
	NextPlayer int
}

type TrumpCalledPayload struct {
	Seat     int
	Suit     domain.Suit
	Round    int
	PickedUp bool
	Forced   bool
}

type CardPlayedPayload struct {
	Seat       int
	Card       domain.Card
	NextPlayer int
}

type TrickWonPayload struct {
	Seat  int
	Team  domain.Team
	Trick []domain.PlayedCard
}

type HandScoredPayload struct {
	Team      domain.Team
	Points    int
	March     bool
	TricksWon domain.TeamTally
	Score     domain.TeamTally
}

type GameOverPayload struct {
	Winner domain.Team
	Score  domain.TeamTally
}

type NewHandPayload struct {
	Dealer int
}
