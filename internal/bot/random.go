package bot

import (
	"fmt"
	"math/rand/v2"

	"euchre/internal/domain"
)

// RandomBot picks uniformly among the legal choices. It is the baseline the heuristic
// is measured against in simulations.
type RandomBot struct {
	rng *rand.Rand
}

// NewRandomBot returns a RandomBot drawing from rng.
func NewRandomBot(rng *rand.Rand) *RandomBot {
	return &RandomBot{rng: rng}
}

func (b *RandomBot) CalculateMove(state domain.GameState, seat int) (Move, error) {
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
		bids := []domain.Bid{domain.PassBid()}
		if state.BiddingRound == 1 {
			bids = append(bids, domain.CallBid(up.Suit))
		} else {
			for _, s := range domain.Suits() {
				if s != up.Suit {
					bids = append(bids, domain.CallBid(s))
				}
			}
		}
		return Move{Kind: MoveBid, Bid: bids[b.rng.IntN(len(bids))]}, nil

	case domain.PhasePlaying:
		lead, _ := domain.LeadSuit(state.CurrentTrick)
		valid := domain.ValidCards(hand, lead)
		if len(valid) == 0 {
			return Move{}, fmt.Errorf("%w: empty hand", ErrNoDecision)
		}
		return Move{Kind: MovePlay, Card: valid[b.rng.IntN(len(valid))]}, nil
	}
	return Move{}, fmt.Errorf("%w: %s", ErrNoDecision, state.Phase)
}

// ShouldPickUp flips a coin and discards a random card.
func (b *RandomBot) ShouldPickUp(hand []domain.Card, up domain.Card) domain.PickUpDecision {
	if len(hand) == 0 || b.rng.IntN(2) == 0 {
		return domain.PickUpDecision{}
	}
	return domain.PickUpDecision{PickUp: true, Discard: hand[b.rng.IntN(len(hand))]}
}

// ChooseTrump always names a random suit other than exclude.
func (b *RandomBot) ChooseTrump(hand []domain.Card, exclude domain.Suit) (domain.Suit, bool) {
	suits := make([]domain.Suit, 0, len(domain.Suits()))
	for _, s := range domain.Suits() {
		if s != exclude {
			suits = append(suits, s)
		}
	}
	return suits[b.rng.IntN(len(suits))], true
}
