package bot

import (
	"fmt"

	"euchre/internal/domain"
)

const (
	// strongTrumpValue is the TrumpValue from which a trump counts as strong (K and above).
	strongTrumpValue = 4
	// chooseTrumpThreshold must be strictly exceeded by a suit's summed TrumpValue.
	chooseTrumpThreshold = 2
)

// Heuristic is the rule-based Euchre policy. Every method is a pure function of its
// arguments and never modifies the hand it is given.
type Heuristic struct{}

// ShouldOrderUp decides a round-one bid. position is the seat's offset from the dealer,
// 0 being the dealer.
func (Heuristic) ShouldOrderUp(hand []domain.Card, up domain.Card, position int) bool {
	strong := 0
	for _, c := range hand {
		if domain.TrumpValue(c, up.Suit) >= strongTrumpValue {
			strong++
		}
	}
	if strong >= 2 {
		return true
	}
	return position == 0 && domain.CountTrump(hand, up.Suit) >= 3
}

// ShouldPickUp is the dealer's answer to the turned-up card after three passes.
func (Heuristic) ShouldPickUp(hand []domain.Card, up domain.Card) domain.PickUpDecision {
	if up.Rank != domain.Jack && domain.CountTrump(hand, up.Suit) < 2 {
		return domain.PickUpDecision{}
	}
	return domain.PickUpDecision{PickUp: true, Discard: lowestOffSuit(hand)}
}

// ChooseTrump picks a round-two trump suit other than exclude. It returns false when no
// suit scores above the threshold.
func (Heuristic) ChooseTrump(hand []domain.Card, exclude domain.Suit) (domain.Suit, bool) {
	best, bestScore := domain.NoSuit, chooseTrumpThreshold
	for _, s := range domain.Suits() {
		if s == exclude {
			continue
		}
		score := 0
		for _, c := range hand {
			score += domain.TrumpValue(c, s)
		}
		if score > bestScore {
			best, bestScore = s, score
		}
	}
	return best, best != domain.NoSuit
}

// ChooseCard picks the card to play. lead is NoSuit when the seat leads the trick.
func (Heuristic) ChooseCard(hand []domain.Card, trump, lead domain.Suit, trick []domain.PlayedCard, partnerWinning bool) domain.Card {
	valid := domain.ValidCards(hand, lead)
	if len(valid) == 1 {
		return valid[0]
	}

	if lead == domain.NoSuit {
		var trumps, offs []domain.Card
		for _, c := range hand {
			if domain.IsTrump(c, trump) {
				trumps = append(trumps, c)
			} else {
				offs = append(offs, c)
			}
		}
		if len(trumps) >= 3 || len(offs) == 0 {
			return highest(trumps, trump)
		}
		return highest(offs, trump)
	}

	var following []domain.Card
	for _, c := range hand {
		if c.Suit == lead {
			following = append(following, c)
		}
	}
	if len(following) > 0 {
		if partnerWinning {
			return lowest(following, trump)
		}
		return highest(following, trump)
	}

	var trumps []domain.Card
	for _, c := range hand {
		if domain.IsTrump(c, trump) {
			trumps = append(trumps, c)
		}
	}
	if len(trumps) > 0 {
		return lowest(trumps, trump)
	}
	return lowest(hand, trump)
}

// CalculateMove implements Brain.
func (h Heuristic) CalculateMove(state domain.GameState, seat int) (Move, error) {
	if seat < 0 || seat >= domain.NumSeats {
		return Move{}, fmt.Errorf("seat %d out of range", seat)
	}
	hand := state.Players[seat].Hand

	switch state.Phase {
	case domain.PhaseBidding:
		up, ok := state.UpCard()
		if !ok {
			return Move{}, fmt.Errorf("%w: no up card", ErrNoDecision)
		}
		if state.BiddingRound == 1 {
			if h.ShouldOrderUp(hand, up, domain.PositionFromDealer(seat, state.Dealer)) {
				return Move{Kind: MoveBid, Bid: domain.CallBid(up.Suit)}, nil
			}
			return Move{Kind: MoveBid, Bid: domain.PassBid()}, nil
		}
		if s, ok := h.ChooseTrump(hand, up.Suit); ok {
			return Move{Kind: MoveBid, Bid: domain.CallBid(s)}, nil
		}
		return Move{Kind: MoveBid, Bid: domain.PassBid()}, nil

	case domain.PhasePlaying:
		if len(hand) == 0 {
			return Move{}, fmt.Errorf("%w: empty hand", ErrNoDecision)
		}
		lead, _ := domain.LeadSuit(state.CurrentTrick)
		card := h.ChooseCard(hand, state.TrumpSuit, lead, state.CurrentTrick, PartnerWinning(state.CurrentTrick, state.TrumpSuit, seat))
		return Move{Kind: MovePlay, Card: card}, nil
	}
	return Move{}, fmt.Errorf("%w: %s", ErrNoDecision, state.Phase)
}

// PartnerWinning reports whether seat's partner holds the winning card of a partial trick.
func PartnerWinning(trick []domain.PlayedCard, trump domain.Suit, seat int) bool {
	w := domain.TrickWinner(trick, trump)
	if w < 0 {
		return false
	}
	return trick[w].Seat == domain.PartnerOf(seat)
}

// strength ranks trump by bower order and everything else by OffSuitValue.
func strength(c domain.Card, trump domain.Suit) int {
	return domain.CardValue(c, trump, c.Suit)
}

func highest(cards []domain.Card, trump domain.Suit) domain.Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if strength(c, trump) > strength(best, trump) {
			best = c
		}
	}
	return best
}

func lowest(cards []domain.Card, trump domain.Suit) domain.Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if strength(c, trump) < strength(best, trump) {
			best = c
		}
	}
	return best
}

func lowestOffSuit(hand []domain.Card) domain.Card {
	best := hand[0]
	for _, c := range hand[1:] {
		if domain.OffSuitValue(c) < domain.OffSuitValue(best) {
			best = c
		}
	}
	return best
}
