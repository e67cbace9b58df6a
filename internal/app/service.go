package app

import (
	crand "crypto/rand"
	"errors"
	"fmt"
	"math/rand/v2"

	"euchre/internal/bot"
	"euchre/internal/domain"
)

// DealerPolicy answers the bidding decisions the engine takes on behalf of an AI dealer.
type DealerPolicy interface {
	ShouldPickUp(hand []domain.Card, up domain.Card) domain.PickUpDecision
	ChooseTrump(hand []domain.Card, exclude domain.Suit) (domain.Suit, bool)
}

// Service contains the Euchre state transitions. Every transition takes a GameState by
// value, works on a clone and returns the new state; a rejected transition returns the
// input state and an error.
type Service struct {
	rng     *rand.Rand
	dealers [domain.NumSeats]DealerPolicy

	// SeatNames are used by InitializeGame.
	SeatNames [domain.NumSeats]string
}

// NewService constructs a Service with provided rng or an OS-seeded default.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = NewRand()
	}
	s := &Service{rng: rng, SeatNames: domain.DefaultSeatNames}
	for i := range s.dealers {
		s.dealers[i] = bot.Heuristic{}
	}
	return s
}

// NewRand returns a ChaCha8 generator with a 256-bit seed from crypto/rand.
func NewRand() *rand.Rand {
	var seed [32]byte
	_, _ = crand.Read(seed[:])
	return rand.New(rand.NewChaCha8(seed))
}

// SetDealerPolicy replaces the policy used when seat deals as an AI.
func (s *Service) SetDealerPolicy(seat int, p DealerPolicy) {
	if seat >= 0 && seat < domain.NumSeats && p != nil {
		s.dealers[seat] = p
	}
}

var (
	ErrWrongPhase      = errors.New("action not allowed in current phase")
	ErrGameOver        = errors.New("game is over")
	ErrCardNotInHand   = errors.New("card not in current player's hand")
	ErrMustFollowSuit  = errors.New("must follow the lead suit")
	ErrSuitNotBiddable = errors.New("suit cannot be called this round")
	ErrDealerMustCall  = errors.New("dealer must call trump")
	ErrDeckExhausted   = errors.New("not enough cards to deal")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrInvalidDiscard  = errors.New("dealer discard not in hand")
)

func checkPhase(state domain.GameState, want domain.Phase) error {
	if state.Phase == want {
		return nil
	}
	if state.Phase == domain.PhaseGameOver {
		return ErrGameOver
	}
	return fmt.Errorf("%w: %s, want %s", ErrWrongPhase, state.Phase, want)
}

// InitializeGame returns a fresh game: seat 0 human, the rest AI, seat 3 dealing.
func (s *Service) InitializeGame() domain.GameState {
	var g domain.GameState
	for i := range g.Players {
		g.Players[i] = domain.Player{
			ID:   i,
			Name: s.SeatNames[i],
			Hand: []domain.Card{},
			IsAI: i != domain.HumanSeat,
		}
	}
	g.Dealer = domain.FirstDealer
	g.Players[g.Dealer].IsDealer = true
	g.CurrentPlayer = domain.NextSeat(g.Dealer)
	g.Deck = domain.BuildDeck(s.rng)
	g.Phase = domain.PhaseDealing
	g.BiddingRound = 1
	g.CurrentTrick = []domain.PlayedCard{}
	return g
}

// DealCards gives five cards to each seat, starting left of the dealer, and opens bidding.
func (s *Service) DealCards(state domain.GameState) (domain.GameState, []Event, error) {
	if err := checkPhase(state, domain.PhaseDealing); err != nil {
		return state, nil, err
	}
	// Five per seat plus the up card.
	need := domain.NumSeats*domain.HandSize + 1
	if len(state.Deck) < need {
		return state, nil, fmt.Errorf("%w: %d cards, need %d", ErrDeckExhausted, len(state.Deck), need)
	}

	next := state.Clone()
	idx := 0
	for i := 1; i <= domain.NumSeats; i++ {
		seat := (next.Dealer + i) % domain.NumSeats
		hand := append([]domain.Card(nil), next.Deck[idx:idx+domain.HandSize]...)
		domain.SortHand(hand)
		next.Players[seat].Hand = hand
		idx += domain.HandSize
	}
	next.Deck = append([]domain.Card(nil), next.Deck[idx:]...)
	next.Phase = domain.PhaseBidding
	next.BiddingRound = 1
	next.PassCount = 0
	next.TrumpSuit = domain.NoSuit
	next.CurrentPlayer = domain.NextSeat(next.Dealer)

	up := next.Deck[0]
	events := make([]Event, 0, domain.NumSeats)
	for seat := range next.Players {
		events = append(events, Event{
			Kind: EventHandDealt,
			Payload: HandDealtPayload{
				Seat:   seat,
				Hand:   append([]domain.Card(nil), next.Players[seat].Hand...),
				UpCard: up,
				Dealer: next.Dealer,
			},
			Recipients: []int{seat},
		})
	}
	return next, events, nil
}

// ProcessBid applies the current player's bid.
func (s *Service) ProcessBid(state domain.GameState, bid domain.Bid) (domain.GameState, []Event, error) {
	if err := checkPhase(state, domain.PhaseBidding); err != nil {
		return state, nil, err
	}
	up, ok := state.UpCard()
	if !ok {
		return state, nil, fmt.Errorf("%w: no up card", ErrDeckExhausted)
	}
	seat := state.CurrentPlayer
	round := state.BiddingRound

	if !bid.Pass {
		switch {
		case !bid.Suit.Valid():
			return state, nil, fmt.Errorf("%w: %q", ErrSuitNotBiddable, bid.Suit)
		case round == 1 && bid.Suit != up.Suit:
			return state, nil, fmt.Errorf("%w: round one must name %s", ErrSuitNotBiddable, up.Suit)
		case round == 2 && bid.Suit == up.Suit:
			return state, nil, fmt.Errorf("%w: %s was turned down", ErrSuitNotBiddable, up.Suit)
		}
		next := state.Clone()
		callTrump(&next, bid.Suit)
		return next, []Event{trumpCalled(seat, bid.Suit, round, false, false)}, nil
	}

	if round == 2 && seat == state.Dealer && state.PassCount >= domain.NumSeats-1 {
		return state, nil, ErrDealerMustCall
	}

	next := state.Clone()
	next.PassCount++
	next.CurrentPlayer = domain.NextSeat(seat)
	events := []Event{passed(seat, round, next.CurrentPlayer)}

	dealer := next.Dealer
	dealerAI := next.Players[dealer].IsAI
	hand := next.Players[dealer].Hand

	switch {
	case round == 1 && next.PassCount >= domain.NumSeats:
		events = append(events, openRoundTwo(&next))

	case round == 1 && next.CurrentPlayer == dealer && dealerAI:
		decision := s.dealers[dealer].ShouldPickUp(hand, up)
		if decision.PickUp {
			if err := pickUp(&next, decision.Discard); err != nil {
				return state, nil, err
			}
			callTrump(&next, up.Suit)
			events = append(events, trumpCalled(dealer, up.Suit, 1, true, false))
			break
		}
		// Turning the card down is the dealer's pass.
		next.PassCount++
		next.CurrentPlayer = domain.NextSeat(dealer)
		events = append(events, passed(dealer, 1, next.CurrentPlayer), openRoundTwo(&next))

	case round == 2 && next.CurrentPlayer == dealer && next.PassCount >= domain.NumSeats-1 && dealerAI:
		suit, ok := s.dealers[dealer].ChooseTrump(hand, up.Suit)
		if !ok {
			suit = ForcedTrumpFallback
		}
		callTrump(&next, suit)
		events = append(events, trumpCalled(dealer, suit, 2, false, true))
	}
	return next, events, nil
}

func openRoundTwo(g *domain.GameState) Event {
	g.BiddingRound = 2
	g.PassCount = 0
	g.CurrentPlayer = domain.NextSeat(g.Dealer)
	return Event{Kind: EventBiddingRound, Payload: BiddingRoundPayload{Round: 2, NextPlayer: g.CurrentPlayer}}
}

func callTrump(g *domain.GameState, suit domain.Suit) {
	g.TrumpSuit = suit
	g.Phase = domain.PhasePlaying
	g.CurrentPlayer = domain.NextSeat(g.Dealer)
}

// pickUp moves the up card into the dealer's hand and puts the discard at the bottom of
// the undealt pile. g is left untouched when the dealer does not hold discard.
func pickUp(g *domain.GameState, discard domain.Card) error {
	up := g.Deck[0]
	dealer := &g.Players[g.Dealer]
	i, ok := domain.IndexOfCard(dealer.Hand, discard)
	if !ok {
		return fmt.Errorf("%w: seat %d discarding %s", ErrInvalidDiscard, g.Dealer, discard.ID())
	}
	hand := append(domain.RemoveCard(dealer.Hand, i), up)
	domain.SortHand(hand)
	dealer.Hand = hand

	deck := make([]domain.Card, 0, len(g.Deck))
	deck = append(deck, g.Deck[1:]...)
	g.Deck = append(deck, discard)
	return nil
}

func passed(seat, round, next int) Event {
	return Event{Kind: EventBidPassed, Payload: BidPassedPayload{Seat: seat, Round: round, NextPlayer: next}}
}

func trumpCalled(seat int, suit domain.Suit, round int, pickedUp, forced bool) Event {
	return Event{Kind: EventTrumpCalled, Payload: TrumpCalledPayload{
		Seat:     seat,
		Suit:     suit,
		Round:    round,
		PickedUp: pickedUp,
		Forced:   forced,
	}}
}

// PlayCard plays cardID from the current player's hand into the trick.
func (s *Service) PlayCard(state domain.GameState, cardID string) (domain.GameState, []Event, error) {
	if err := checkPhase(state, domain.PhasePlaying); err != nil {
		return state, nil, err
	}
	seat := state.CurrentPlayer
	hand := state.Players[seat].Hand
	i, ok := domain.IndexOfCardID(hand, cardID)
	if !ok {
		return state, nil, fmt.Errorf("%w: %s", ErrCardNotInHand, cardID)
	}
	card := hand[i]
	lead, _ := domain.LeadSuit(state.CurrentTrick)
	if _, ok := domain.IndexOfCard(domain.ValidCards(hand, lead), card); !ok {
		return state, nil, fmt.Errorf("%w: %s led", ErrMustFollowSuit, lead)
	}

	next := state.Clone()
	next.Players[seat].Hand = domain.RemoveCard(next.Players[seat].Hand, i)
	next.CurrentTrick = append(next.CurrentTrick, domain.PlayedCard{
		Card:       card,
		Seat:       seat,
		PlayerName: next.Players[seat].Name,
	})

	if len(next.CurrentTrick) < domain.NumSeats {
		next.CurrentPlayer = domain.NextSeat(seat)
		return next, []Event{{
			Kind:    EventCardPlayed,
			Payload: CardPlayedPayload{Seat: seat, Card: card, NextPlayer: next.CurrentPlayer},
		}}, nil
	}

	leader := (seat - (domain.NumSeats - 1) + domain.NumSeats) % domain.NumSeats
	winner := (leader + domain.TrickWinner(next.CurrentTrick, next.TrumpSuit)) % domain.NumSeats
	team := domain.TeamOf(winner)
	next.Players[winner].TricksWon++
	next.TricksWon = next.TricksWon.Add(team, 1)
	next.Phase = domain.PhaseTrickComplete
	next.CurrentPlayer = winner

	return next, []Event{
		{
			Kind:    EventCardPlayed,
			Payload: CardPlayedPayload{Seat: seat, Card: card, NextPlayer: winner},
		},
		{
			Kind: EventTrickWon,
			Payload: TrickWonPayload{
				Seat:  winner,
				Team:  team,
				Trick: append([]domain.PlayedCard(nil), next.CurrentTrick...),
			},
		},
	}, nil
}

// ContinuePlaying clears a completed trick. After the fifth trick it scores the hand.
func (s *Service) ContinuePlaying(state domain.GameState) (domain.GameState, []Event, error) {
	if err := checkPhase(state, domain.PhaseTrickComplete); err != nil {
		return state, nil, err
	}
	next := state.Clone()
	next.CurrentTrick = []domain.PlayedCard{}
	if next.TricksPlayed() < domain.TricksPerHand {
		next.Phase = domain.PhasePlaying
		return next, nil, nil
	}
	return next, scoreHand(&next), nil
}

// scoreHand awards the hand to the team with the trick majority: one point, or two for a
// march. The caller does not matter.
func scoreHand(g *domain.GameState) []Event {
	team := domain.Team2
	if g.TricksWon.Team1 >= MajorityTricks {
		team = domain.Team1
	}
	march := g.TricksWon.Get(team) == domain.TricksPerHand
	points := SinglePoints
	if march {
		points = MarchPoints
	}
	g.Score = g.Score.Add(team, points)

	events := []Event{{
		Kind: EventHandScored,
		Payload: HandScoredPayload{
			Team:      team,
			Points:    points,
			March:     march,
			TricksWon: g.TricksWon,
			Score:     g.Score,
		},
	}}

	if winner, ok := g.Winner(); ok {
		g.Phase = domain.PhaseGameOver
		return append(events, Event{Kind: EventGameOver, Payload: GameOverPayload{Winner: winner, Score: g.Score}})
	}
	g.Phase = domain.PhaseScoring
	return events
}

// StartNewHand rotates the dealer and reshuffles for the next hand.
func (s *Service) StartNewHand(state domain.GameState) (domain.GameState, []Event, error) {
	if err := checkPhase(state, domain.PhaseScoring); err != nil {
		return state, nil, err
	}
	next := state.Clone()
	next.Players[next.Dealer].IsDealer = false
	next.Dealer = domain.NextSeat(next.Dealer)
	next.Players[next.Dealer].IsDealer = true
	for i := range next.Players {
		next.Players[i].Hand = []domain.Card{}
		next.Players[i].TricksWon = 0
	}
	next.TricksWon = domain.TeamTally{}
	next.CurrentTrick = []domain.PlayedCard{}
	next.TrumpSuit = domain.NoSuit
	next.BiddingRound = 1
	next.PassCount = 0
	next.CurrentPlayer = domain.NextSeat(next.Dealer)
	next.Deck = domain.BuildDeck(s.rng)
	next.Phase = domain.PhaseDealing

	return next, []Event{{Kind: EventNewHand, Payload: NewHandPayload{Dealer: next.Dealer}}}, nil
}
