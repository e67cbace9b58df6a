package domain

import (
	"fmt"
	"strings"
)

// Bid is a seat's bidding choice: pass, or name a trump suit.
type Bid struct {
	Pass bool `json:"pass"`
	Suit Suit `json:"suit,omitempty"`
}

// PassBid is the pass choice.
func PassBid() Bid {
	return Bid{Pass: true}
}

// CallBid names s as trump.
func CallBid(s Suit) Bid {
	return Bid{Suit: s}
}

func (b Bid) String() string {
	if b.Pass {
		return "pass"
	}
	return string(b.Suit)
}

// ParseBid reads "pass" or a suit name.
func ParseBid(s string) (Bid, error) {
	if strings.EqualFold(strings.TrimSpace(s), "pass") {
		return PassBid(), nil
	}
	suit, err := ParseSuit(s)
	if err != nil {
		return Bid{}, fmt.Errorf("invalid bid: %w", err)
	}
	return CallBid(suit), nil
}

// PickUpDecision is the dealer's round-one answer to the turned-up card.
type PickUpDecision struct {
	PickUp  bool
	Discard Card
}
