package domain

const (
	// NumSeats is the fixed table size; seat index is also turn order.
	NumSeats = 4
	// HandSize is the number of cards dealt to each seat.
	HandSize = 5
	// DeckSize is the number of cards in a Euchre deck.
	DeckSize = 24
	// TricksPerHand is the number of tricks played before a hand is scored.
	TricksPerHand = 5
	// WinningScore ends the game once either team reaches it.
	WinningScore = 10
	// HumanSeat is the only seat not driven by an agent in a standard game.
	HumanSeat = 0
	// FirstDealer is the dealer seat of a new game.
	FirstDealer = 3
)

// DefaultSeatNames are the display names used when no configuration overrides them.
var DefaultSeatNames = [NumSeats]string{"You", "Left", "Partner", "Right"}
