package domain

// NextSeat returns the seat to the left of seat (the next to act).
func NextSeat(seat int) int {
	return (seat + 1) % NumSeats
}

// PartnerOf returns the seat across the table.
func PartnerOf(seat int) int {
	return (seat + 2) % NumSeats
}

// PositionFromDealer returns how many seats after the dealer seat sits (0 = dealer).
func PositionFromDealer(seat, dealer int) int {
	return (seat - dealer + NumSeats) % NumSeats
}

// IndexOfCard returns the position of target in cards.
func IndexOfCard(cards []Card, target Card) (int, bool) {
	for i, c := range cards {
		if c == target {
			return i, true
		}
	}
	return -1, false
}

// IndexOfCardID returns the position of the card with the given ID.
func IndexOfCardID(cards []Card, id string) (int, bool) {
	for i, c := range cards {
		if c.ID() == id {
			return i, true
		}
	}
	return -1, false
}

// RemoveCard returns a new hand without the card at index i.
func RemoveCard(hand []Card, i int) []Card {
	out := make([]Card, 0, len(hand))
	out = append(out, hand[:i]...)
	return append(out, hand[i+1:]...)
}

// HasSuit reports whether the hand holds a card of the given physical suit.
func HasSuit(hand []Card, s Suit) bool {
	for _, c := range hand {
		if c.Suit == s {
			return true
		}
	}
	return false
}
