package domain

import (
	"fmt"
	"strings"
)

// Suit is one of the four French suits, named the way the client sends them.
type Suit string

const (
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Spades   Suit = "spades"

	// NoSuit marks an unset trump suit.
	NoSuit Suit = ""
)

// Rank is a card rank in the 24-card Euchre deck.
type Rank string

const (
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
	Ace   Rank = "A"
)

// Suits returns the suits in canonical order.
func Suits() []Suit {
	return []Suit{Hearts, Diamonds, Clubs, Spades}
}

// Ranks returns the ranks from lowest to highest.
func Ranks() []Rank {
	return []Rank{Nine, Ten, Jack, Queen, King, Ace}
}

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool {
	switch s {
	case Hearts, Diamonds, Clubs, Spades:
		return true
	}
	return false
}

// SameColor returns the other suit of the same color (hearts<->diamonds, clubs<->spades).
func (s Suit) SameColor() Suit {
	switch s {
	case Hearts:
		return Diamonds
	case Diamonds:
		return Hearts
	case Clubs:
		return Spades
	case Spades:
		return Clubs
	}
	return NoSuit
}

// ParseSuit converts a wire string into a Suit.
func ParseSuit(s string) (Suit, error) {
	suit := Suit(strings.ToLower(strings.TrimSpace(s)))
	if !suit.Valid() {
		return NoSuit, fmt.Errorf("unknown suit %q", s)
	}
	return suit, nil
}

// Valid reports whether r is one of the six Euchre ranks.
func (r Rank) Valid() bool {
	switch r {
	case Nine, Ten, Jack, Queen, King, Ace:
		return true
	}
	return false
}

// Card is an immutable playing card.
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// ID returns the stable key for the card, e.g. "J_of_spades".
func (c Card) ID() string {
	return string(c.Rank) + "_of_" + string(c.Suit)
}

func (c Card) String() string {
	return c.ID()
}

// ParseCard parses a card ID produced by Card.ID.
func ParseCard(id string) (Card, error) {
	rank, suit, ok := strings.Cut(id, "_of_")
	if !ok {
		return Card{}, fmt.Errorf("malformed card id %q", id)
	}
	c := Card{Suit: Suit(suit), Rank: Rank(rank)}
	if !c.Suit.Valid() || !c.Rank.Valid() {
		return Card{}, fmt.Errorf("unknown card id %q", id)
	}
	return c, nil
}
