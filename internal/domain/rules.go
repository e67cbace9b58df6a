package domain

// Value scale constants for CardValue.
const (
	rightBowerValue = 16
	leftBowerValue  = 15
	trumpBase       = 8
)

// OffSuitValue ranks a card ignoring trump: A=6, K=5, Q=4, J=3, 10=2, 9=1.
func OffSuitValue(c Card) int {
	switch c.Rank {
	case Ace:
		return 6
	case King:
		return 5
	case Queen:
		return 4
	case Jack:
		return 3
	case Ten:
		return 2
	case Nine:
		return 1
	}
	return 0
}

// IsRightBower reports whether c is the Jack of the trump suit.
func IsRightBower(c Card, trump Suit) bool {
	return c.Rank == Jack && c.Suit == trump
}

// IsLeftBower reports whether c is the Jack of the suit sharing trump's color.
func IsLeftBower(c Card, trump Suit) bool {
	return c.Rank == Jack && trump != NoSuit && c.Suit == trump.SameColor()
}

// IsTrump reports whether c belongs to trump, counting the left bower.
func IsTrump(c Card, trump Suit) bool {
	if trump == NoSuit {
		return false
	}
	return c.Suit == trump || IsLeftBower(c, trump)
}

// TrumpValue scores a card on the 0-7 trump scale used for bidding decisions.
// Right bower 7, left bower 6, A 5, K 4, Q 3, 10 2, 9 1; non-trump 0.
func TrumpValue(c Card, trump Suit) int {
	switch {
	case !IsTrump(c, trump):
		return 0
	case IsRightBower(c, trump):
		return 7
	case IsLeftBower(c, trump):
		return 6
	}
	switch c.Rank {
	case Ace:
		return 5
	case King:
		return 4
	case Queen:
		return 3
	case Ten:
		return 2
	case Nine:
		return 1
	}
	return 0
}

// CardValue is the contextual strength of a card inside a trick.
// Right bower 16, left bower 15, other trump 8+rank, lead suit rank, anything else 0.
func CardValue(c Card, trump, lead Suit) int {
	switch {
	case IsRightBower(c, trump):
		return rightBowerValue
	case IsLeftBower(c, trump):
		return leftBowerValue
	case trump != NoSuit && c.Suit == trump:
		return trumpBase + OffSuitValue(c)
	case lead != NoSuit && c.Suit == lead:
		return OffSuitValue(c)
	}
	return 0
}

// LeadSuit returns the physical suit of the first card of the trick.
func LeadSuit(trick []PlayedCard) (Suit, bool) {
	if len(trick) == 0 {
		return NoSuit, false
	}
	return trick[0].Suit, true
}

// TrickWinner returns the offset into trick of the strictly highest card.
// The first card's suit is the lead; the earliest card wins a tie.
// It also works on a partial trick, returning the currently winning offset.
func TrickWinner(trick []PlayedCard, trump Suit) int {
	lead, ok := LeadSuit(trick)
	if !ok {
		return -1
	}
	best := 0
	top := CardValue(trick[0].Card, trump, lead)
	for i := 1; i < len(trick); i++ {
		if v := CardValue(trick[i].Card, trump, lead); v > top {
			top = v
			best = i
		}
	}
	return best
}

// ValidCards returns the cards a hand may play: every card of the lead suit if it holds
// any, otherwise the whole hand. An empty lead means the seat is leading.
func ValidCards(hand []Card, lead Suit) []Card {
	if lead == NoSuit || !HasSuit(hand, lead) {
		return append([]Card(nil), hand...)
	}
	var follow []Card
	for _, c := range hand {
		if c.Suit == lead {
			follow = append(follow, c)
		}
	}
	return follow
}

// CountTrump returns how many cards of hand are trump.
func CountTrump(hand []Card, trump Suit) int {
	n := 0
	for _, c := range hand {
		if IsTrump(c, trump) {
			n++
		}
	}
	return n
}
