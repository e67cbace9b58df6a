package domain

import (
	"math/rand/v2"
	"sort"
)

// NewDeck returns the 24-card deck in canonical order (suit-major, 9 through A).
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, s := range Suits() {
		for _, r := range Ranks() {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

// ShuffleDeck returns a shuffled copy of the given deck.
func ShuffleDeck(deck []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// BuildDeck returns a freshly shuffled 24-card deck.
func BuildDeck(rng *rand.Rand) []Card {
	return ShuffleDeck(NewDeck(), rng)
}

// SortHand orders a hand by suit, then by ascending rank.
func SortHand(cards []Card) {
	sort.Slice(cards, func(i, j int) bool {
		return cardIndex(cards[i]) < cardIndex(cards[j])
	})
}

func cardIndex(c Card) int {
	si := 0
	for i, s := range Suits() {
		if s == c.Suit {
			si = i
			break
		}
	}
	return si*len(Ranks()) + OffSuitValue(c)
}
