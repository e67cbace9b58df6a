package nakama

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"euchre/internal/app"
	"euchre/internal/domain"
)

func cardToValue(c domain.Card) map[string]interface{} {
	return map[string]interface{}{
		"id":   c.ID(),
		"suit": string(c.Suit),
		"rank": string(c.Rank),
	}
}

func cardsToList(cards []domain.Card) []interface{} {
	out := make([]interface{}, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardToValue(c))
	}
	return out
}

func trickToList(trick []domain.PlayedCard) []interface{} {
	out := make([]interface{}, 0, len(trick))
	for _, pc := range trick {
		v := cardToValue(pc.Card)
		v["seat"] = pc.Seat
		v["player_name"] = pc.PlayerName
		out = append(out, v)
	}
	return out
}

func tallyToValue(t domain.TeamTally) map[string]interface{} {
	return map[string]interface{}{"team1": t.Team1, "team2": t.Team2}
}

// eventToProto maps an app event to its op code and wire payload.
func eventToProto(ev app.Event) (int64, *structpb.Struct, error) {
	var op int64
	var fields map[string]interface{}

	switch p := ev.Payload.(type) {
	case app.HandDealtPayload:
		op = OpHandDealt
		fields = map[string]interface{}{
			"seat":    p.Seat,
			"hand":    cardsToList(p.Hand),
			"up_card": cardToValue(p.UpCard),
			"dealer":  p.Dealer,
		}
	case app.BidPassedPayload:
		op = OpBidPassed
		fields = map[string]interface{}{"seat": p.Seat, "round": p.Round, "next_player": p.NextPlayer}
	case app.BiddingRoundPayload:
		op = OpBiddingRound
		fields = map[string]interface{}{"round": p.Round, "next_player": p.NextPlayer}
	case app.TrumpCalledPayload:
		op = OpTrumpCalled
		fields = map[string]interface{}{
			"seat":      p.Seat,
			"suit":      string(p.Suit),
			"round":     p.Round,
			"picked_up": p.PickedUp,
			"forced":    p.Forced,
		}
	case app.CardPlayedPayload:
		op = OpCardPlayed
		fields = map[string]interface{}{"seat": p.Seat, "card": cardToValue(p.Card), "next_player": p.NextPlayer}
	case app.TrickWonPayload:
		op = OpTrickWon
		fields = map[string]interface{}{"seat": p.Seat, "team": p.Team.String(), "trick": trickToList(p.Trick)}
	case app.HandScoredPayload:
		op = OpHandScored
		fields = map[string]interface{}{
			"team":       p.Team.String(),
			"points":     p.Points,
			"march":      p.March,
			"tricks_won": tallyToValue(p.TricksWon),
			"score":      tallyToValue(p.Score),
		}
	case app.GameOverPayload:
		op = OpGameOver
		fields = map[string]interface{}{"winner": p.Winner.String(), "score": tallyToValue(p.Score)}
	case app.NewHandPayload:
		op = OpNewHand
		fields = map[string]interface{}{"dealer": p.Dealer}
	default:
		return 0, nil, fmt.Errorf("unknown event %s with payload %T", ev.Kind, ev.Payload)
	}

	fields["kind"] = string(ev.Kind)
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return 0, nil, fmt.Errorf("encode %s: %w", ev.Kind, err)
	}
	return op, s, nil
}

// snapshotToProto renders the state as seen from viewer: other seats' hands are reduced to
// card counts.
func snapshotToProto(state domain.GameState, viewer int) (*structpb.Struct, error) {
	players := make([]interface{}, 0, domain.NumSeats)
	for _, p := range state.Players {
		players = append(players, map[string]interface{}{
			"seat":       p.ID,
			"name":       p.Name,
			"is_ai":      p.IsAI,
			"is_dealer":  p.IsDealer,
			"tricks_won": p.TricksWon,
			"card_count": len(p.Hand),
		})
	}
	fields := map[string]interface{}{
		"phase":          string(state.Phase),
		"dealer":         state.Dealer,
		"current_player": state.CurrentPlayer,
		"trump_suit":     string(state.TrumpSuit),
		"bidding_round":  state.BiddingRound,
		"score":          tallyToValue(state.Score),
		"tricks_won":     tallyToValue(state.TricksWon),
		"current_trick":  trickToList(state.CurrentTrick),
		"players":        players,
		"seat":           viewer,
	}
	if viewer >= 0 && viewer < domain.NumSeats {
		fields["hand"] = cardsToList(state.Players[viewer].Hand)
	}
	if up, ok := state.UpCard(); ok && state.Phase == domain.PhaseBidding {
		fields["up_card"] = cardToValue(up)
	}
	return structpb.NewStruct(fields)
}

// matchLabel renders the JSON label used by match listings.
func matchLabel(open bool, phase domain.Phase) (string, error) {
	label, err := structpb.NewStruct(map[string]interface{}{
		"open":  open,
		"game":  GameName,
		"phase": string(phase),
	})
	if err != nil {
		return "", err
	}
	b, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(label)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeRequest parses a client JSON payload.
func decodeRequest(data []byte) (*structpb.Struct, error) {
	req := &structpb.Struct{}
	if len(data) == 0 {
		return req, nil
	}
	if err := protojson.Unmarshal(data, req); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}
	return req, nil
}

func decodeBid(data []byte) (domain.Bid, error) {
	req, err := decodeRequest(data)
	if err != nil {
		return domain.Bid{}, err
	}
	return domain.ParseBid(req.GetFields()["bid"].GetStringValue())
}

func decodeCardID(data []byte) (string, error) {
	req, err := decodeRequest(data)
	if err != nil {
		return "", err
	}
	id := req.GetFields()["card_id"].GetStringValue()
	if _, err := domain.ParseCard(id); err != nil {
		return "", err
	}
	return id, nil
}
