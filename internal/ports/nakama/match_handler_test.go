package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"euchre/internal/app"
	"euchre/internal/config"
	"euchre/internal/domain"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

type sentMessage struct {
	opCode     int64
	data       []byte
	recipients []runtime.Presence
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	sent   []sentMessage
	labels []string
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.sent = append(md.sent, sentMessage{opCode: opCode, data: append([]byte(nil), data...), recipients: presences})
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labels = append(md.labels, label)
	return nil
}

func (md *mockDispatcher) withOp(op int64) []sentMessage {
	var out []sentMessage
	for _, m := range md.sent {
		if m.opCode == op {
			out = append(out, m)
		}
	}
	return out
}

type mockPresence struct {
	runtime.Presence
	userID string
}

func (p mockPresence) GetUserId() string    { return p.userID }
func (p mockPresence) GetUsername() string  { return p.userID }
func (p mockPresence) GetSessionId() string { return "session-" + p.userID }

type mockMatchData struct {
	mockPresence
	opCode int64
	data   []byte
}

func (d mockMatchData) GetOpCode() int64      { return d.opCode }
func (d mockMatchData) GetData() []byte       { return d.data }
func (d mockMatchData) GetReliable() bool     { return true }
func (d mockMatchData) GetReceiveTime() int64 { return 0 }

type mockNakama struct {
	runtime.NakamaModule
	matchID string
	created []string
}

func (m *mockNakama) MatchCreate(ctx context.Context, module string, params map[string]interface{}) (string, error) {
	m.created = append(m.created, module)
	return m.matchID, nil
}

const testMatchID = "match-1"

func testConfig() config.GameConfig {
	cfg := config.Default()
	cfg.TicketSecret = "test-secret"
	return cfg
}

func newTestMatch(t *testing.T) (*matchHandler, *MatchState) {
	t.Helper()
	cfg := testConfig()
	mh := newMatchHandler(cfg, app.NewTicketService(cfg.TicketSecret, cfg.TicketTTL()))
	ctx := context.WithValue(context.Background(), runtime.RUNTIME_CTX_MATCH_ID, testMatchID)
	state, tickRate, label := mh.MatchInit(ctx, noopLogger{}, nil, nil, map[string]interface{}{})
	if state == nil {
		t.Fatalf("MatchInit returned nil state")
	}
	if tickRate != cfg.TickRate || label == "" {
		t.Fatalf("MatchInit tick rate %d label %q", tickRate, label)
	}
	return mh, state.(*MatchState)
}

func joinHuman(t *testing.T, mh *matchHandler, state *MatchState, dispatcher *mockDispatcher) mockPresence {
	t.Helper()
	p := mockPresence{userID: "user-1"}
	ticket, err := mh.tickets.Issue(p.userID, testMatchID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	_, ok, reason := mh.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, p, map[string]string{MetadataTicket: ticket})
	if !ok {
		t.Fatalf("MatchJoinAttempt rejected: %s", reason)
	}
	mh.MatchJoin(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, []runtime.Presence{p})
	return p
}

func decodePayload(t *testing.T, data []byte) map[string]interface{} {
	t.Helper()
	s := &structpb.Struct{}
	if err := proto.Unmarshal(data, s); err != nil {
		t.Fatalf("Failed to unmarshal payload: %v", err)
	}
	return s.AsMap()
}

func TestMatchInitSeatsBots(t *testing.T) {
	_, state := newTestMatch(t)

	if state.MatchID != testMatchID {
		t.Fatalf("MatchID = %q", state.MatchID)
	}
	for seat, agent := range state.Table.Agents {
		if seat == domain.HumanSeat && agent != nil {
			t.Fatalf("human seat has an agent")
		}
		if seat != domain.HumanSeat && agent == nil {
			t.Fatalf("seat %d has no agent", seat)
		}
	}
	if state.Table.State.Phase != domain.PhaseDealing {
		t.Fatalf("phase = %s, want dealing", state.Table.State.Phase)
	}
}

func TestMatchJoinAttempt(t *testing.T) {
	mh, state := newTestMatch(t)
	good, _ := mh.tickets.Issue("user-1", testMatchID)
	otherMatch, _ := mh.tickets.Issue("user-1", "match-2")

	tests := []struct {
		name   string
		holder string
		user   string
		ticket string
		want   bool
	}{
		{name: "ValidTicket", user: "user-1", ticket: good, want: true},
		{name: "MissingTicket", user: "user-1", ticket: "", want: false},
		{name: "OtherMatch", user: "user-1", ticket: otherMatch, want: false},
		{name: "OtherUser", user: "user-2", ticket: good, want: false},
		{name: "Rejoin", holder: "user-1", user: "user-1", ticket: good, want: true},
		{name: "SeatTaken", holder: "user-2", user: "user-1", ticket: good, want: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			state.HumanUserID = test.holder
			_, ok, _ := mh.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, 0, state,
				mockPresence{userID: test.user}, map[string]string{MetadataTicket: test.ticket})
			if ok != test.want {
				t.Fatalf("MatchJoinAttempt() = %t, want %t", ok, test.want)
			}
		})
	}
}

func TestMatchJoinSendsSnapshotAndClosesLabel(t *testing.T) {
	mh, state := newTestMatch(t)
	dispatcher := &mockDispatcher{}
	joinHuman(t, mh, state, dispatcher)

	snapshots := dispatcher.withOp(OpSnapshot)
	if len(snapshots) != 1 || len(snapshots[0].recipients) != 1 {
		t.Fatalf("expected one private snapshot, got %d", len(snapshots))
	}
	if len(dispatcher.labels) != 1 {
		t.Fatalf("expected one label update, got %d", len(dispatcher.labels))
	}
	var label map[string]interface{}
	if err := json.Unmarshal([]byte(dispatcher.labels[0]), &label); err != nil {
		t.Fatalf("label is not JSON: %v", err)
	}
	if label["open"] != false || label["game"] != GameName {
		t.Fatalf("unexpected label %v", label)
	}
}

func TestMatchLoopDealIsPrivate(t *testing.T) {
	mh, state := newTestMatch(t)
	dispatcher := &mockDispatcher{}
	p := joinHuman(t, mh, state, dispatcher)

	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state,
		[]runtime.MatchData{mockMatchData{mockPresence: p, opCode: OpDeal}})

	dealt := dispatcher.withOp(OpHandDealt)
	if len(dealt) != 1 {
		t.Fatalf("expected only the human's hand to be sent, got %d", len(dealt))
	}
	if len(dealt[0].recipients) != 1 || dealt[0].recipients[0].GetUserId() != p.userID {
		t.Fatalf("hand sent to the wrong recipients")
	}
	payload := decodePayload(t, dealt[0].data)
	if hand, ok := payload["hand"].([]interface{}); !ok || len(hand) != domain.HandSize {
		t.Fatalf("unexpected hand payload %v", payload["hand"])
	}
	if state.Table.State.Phase != domain.PhaseBidding {
		t.Fatalf("phase = %s, want bidding", state.Table.State.Phase)
	}
}

func TestMatchLoopRejectsWithError(t *testing.T) {
	mh, state := newTestMatch(t)
	dispatcher := &mockDispatcher{}
	p := joinHuman(t, mh, state, dispatcher)

	tests := []struct {
		name     string
		opCode   int64
		data     string
		wantCode float64
	}{
		{name: "PlayDuringDealing", opCode: OpPlayCard, data: `{"card_id":"A_of_spades"}`, wantCode: 409},
		{name: "MalformedBid", opCode: OpBid, data: `{"bid":"trumps"}`, wantCode: 400},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			dispatcher.sent = nil
			mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state,
				[]runtime.MatchData{mockMatchData{mockPresence: p, opCode: test.opCode, data: []byte(test.data)}})

			errs := dispatcher.withOp(OpError)
			if len(errs) != 1 {
				t.Fatalf("expected one error, got %d", len(errs))
			}
			if got := decodePayload(t, errs[0].data)["code"]; got != test.wantCode {
				t.Fatalf("code = %v, want %v", got, test.wantCode)
			}
		})
	}
}

func TestMatchLoopSecondDealIsWrongPhase(t *testing.T) {
	mh, state := newTestMatch(t)
	dispatcher := &mockDispatcher{}
	p := joinHuman(t, mh, state, dispatcher)
	deal := mockMatchData{mockPresence: p, opCode: OpDeal}

	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.MatchData{deal, deal})

	errs := dispatcher.withOp(OpError)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %d", len(errs))
	}
	if got := decodePayload(t, errs[0].data)["code"]; got != float64(409) {
		t.Fatalf("code = %v, want 409", got)
	}
}

func TestMatchLoopIgnoresStrangers(t *testing.T) {
	mh, state := newTestMatch(t)
	dispatcher := &mockDispatcher{}
	joinHuman(t, mh, state, dispatcher)

	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state,
		[]runtime.MatchData{mockMatchData{mockPresence: mockPresence{userID: "user-2"}, opCode: OpDeal}})

	if state.Table.State.Phase != domain.PhaseDealing {
		t.Fatalf("stranger dealt the hand")
	}
}

func TestMatchLoopBotsActAfterPause(t *testing.T) {
	mh, state := newTestMatch(t)
	dispatcher := &mockDispatcher{}
	p := joinHuman(t, mh, state, dispatcher)

	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state,
		[]runtime.MatchData{
			mockMatchData{mockPresence: p, opCode: OpDeal},
			mockMatchData{mockPresence: p, opCode: OpBid, data: []byte(`{"bid":"pass"}`)},
		})
	if state.Table.State.CurrentPlayer != 1 {
		t.Fatalf("current player = %d, want 1", state.Table.State.CurrentPlayer)
	}

	before := len(dispatcher.sent)
	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 2, state, nil)
	if len(dispatcher.sent) != before {
		t.Fatalf("bot acted before its delay elapsed")
	}

	tick := state.WaitUntil
	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, tick, state, nil)
	if len(dispatcher.sent) == before {
		t.Fatalf("bot did not act once its delay elapsed")
	}
	if state.WaitUntil <= tick {
		t.Fatalf("next step not scheduled: WaitUntil %d at tick %d", state.WaitUntil, tick)
	}
}

func TestMatchLoopDealsNextHandAfterScoring(t *testing.T) {
	mh, state := newTestMatch(t)
	dispatcher := &mockDispatcher{}
	joinHuman(t, mh, state, dispatcher)
	state.Table.State.Phase = domain.PhaseScoring

	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, nil)

	if state.Table.State.Phase != domain.PhaseBidding {
		t.Fatalf("phase = %s, want bidding", state.Table.State.Phase)
	}
	if len(dispatcher.withOp(OpNewHand)) != 1 || len(dispatcher.withOp(OpHandDealt)) != 1 {
		t.Fatalf("expected new_hand and the human's hand_dealt")
	}
}

func TestMatchLoopNewGameResets(t *testing.T) {
	mh, state := newTestMatch(t)
	dispatcher := &mockDispatcher{}
	p := joinHuman(t, mh, state, dispatcher)

	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state,
		[]runtime.MatchData{
			mockMatchData{mockPresence: p, opCode: OpDeal},
			mockMatchData{mockPresence: p, opCode: OpNewGame},
		})

	if state.Table.State.Phase != domain.PhaseDealing {
		t.Fatalf("phase = %s, want dealing", state.Table.State.Phase)
	}
	if got := len(dispatcher.withOp(OpSnapshot)); got != 2 {
		t.Fatalf("expected snapshots on join and reset, got %d", got)
	}
}

func TestMatchLoopTerminatesEmptyMatch(t *testing.T) {
	mh, state := newTestMatch(t)
	dispatcher := &mockDispatcher{}

	if got := mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, nil); got == nil {
		t.Fatalf("match terminated immediately")
	}
	limit := int64(1 + emptyMatchTimeoutSeconds*mh.cfg.TickRate)
	if got := mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, limit, state, nil); got != nil {
		t.Fatalf("empty match kept running")
	}
}

func TestMatchLeaveByHumanTerminates(t *testing.T) {
	mh, state := newTestMatch(t)
	dispatcher := &mockDispatcher{}
	p := joinHuman(t, mh, state, dispatcher)

	if got := mh.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state,
		[]runtime.Presence{mockPresence{userID: "user-2"}}); got == nil {
		t.Fatalf("stranger leaving terminated the match")
	}
	if got := mh.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state,
		[]runtime.Presence{p}); got != nil {
		t.Fatalf("human leaving kept the match running")
	}
}

func TestDecodeBid(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    domain.Bid
		wantErr bool
	}{
		{name: "Pass", data: `{"bid":"pass"}`, want: domain.PassBid()},
		{name: "Suit", data: `{"bid":"Spades"}`, want: domain.CallBid(domain.Spades)},
		{name: "UnknownSuit", data: `{"bid":"stars"}`, wantErr: true},
		{name: "Missing", data: `{}`, wantErr: true},
		{name: "NotJSON", data: `pass`, wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := decodeBid([]byte(test.data))
			if (err != nil) != test.wantErr {
				t.Fatalf("decodeBid() error = %v, wantErr %t", err, test.wantErr)
			}
			if err == nil && got != test.want {
				t.Fatalf("decodeBid() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestDecodeCardID(t *testing.T) {
	if id, err := decodeCardID([]byte(`{"card_id":"J_of_clubs"}`)); err != nil || id != "J_of_clubs" {
		t.Fatalf("decodeCardID() = %q, %v", id, err)
	}
	if _, err := decodeCardID([]byte(`{"card_id":"8_of_clubs"}`)); err == nil {
		t.Fatalf("expected error for a card outside the deck")
	}
}

func TestEventToProto(t *testing.T) {
	op, payload, err := eventToProto(app.Event{
		Kind:    app.EventTrumpCalled,
		Payload: app.TrumpCalledPayload{Seat: 2, Suit: domain.Clubs, Round: 1, PickedUp: true},
	})
	if err != nil {
		t.Fatalf("eventToProto: %v", err)
	}
	if op != OpTrumpCalled {
		t.Fatalf("op = %d, want %d", op, OpTrumpCalled)
	}
	fields := payload.AsMap()
	if fields["kind"] != "trump_called" || fields["suit"] != "clubs" || fields["picked_up"] != true {
		t.Fatalf("unexpected payload %v", fields)
	}

	if _, _, err := eventToProto(app.Event{Kind: "mystery", Payload: 42}); err == nil {
		t.Fatalf("expected error for unknown payload")
	}
}

func TestSnapshotHidesOtherHands(t *testing.T) {
	svc := app.NewService(nil)
	state, _, err := svc.DealCards(svc.InitializeGame())
	if err != nil {
		t.Fatalf("DealCards: %v", err)
	}

	snapshot, err := snapshotToProto(state, domain.HumanSeat)
	if err != nil {
		t.Fatalf("snapshotToProto: %v", err)
	}
	fields := snapshot.AsMap()
	if hand := fields["hand"].([]interface{}); len(hand) != domain.HandSize {
		t.Fatalf("viewer hand has %d cards", len(hand))
	}
	if _, ok := fields["up_card"]; !ok {
		t.Fatalf("up card missing during bidding")
	}
	for _, raw := range fields["players"].([]interface{}) {
		player := raw.(map[string]interface{})
		if _, ok := player["hand"]; ok {
			t.Fatalf("seat %v exposes its hand", player["seat"])
		}
		if player["card_count"] != float64(domain.HandSize) {
			t.Fatalf("seat %v card_count = %v", player["seat"], player["card_count"])
		}
	}
}

func TestRpcQuickMatch(t *testing.T) {
	cfg := testConfig()
	m := &module{cfg: cfg, tickets: app.NewTicketService(cfg.TicketSecret, time.Minute)}
	nk := &mockNakama{matchID: testMatchID}

	ctx := context.WithValue(context.Background(), runtime.RUNTIME_CTX_USER_ID, "user-1")
	out, err := m.rpcQuickMatch(ctx, noopLogger{}, nil, nk, "")
	if err != nil {
		t.Fatalf("rpcQuickMatch: %v", err)
	}
	var resp QuickMatchResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("bad response %q: %v", out, err)
	}
	if resp.MatchID != testMatchID || len(nk.created) != 1 || nk.created[0] != MatchNameEuchre {
		t.Fatalf("unexpected match creation: %+v %v", resp, nk.created)
	}
	if err := m.tickets.Verify(resp.Ticket, "user-1", testMatchID); err != nil {
		t.Fatalf("issued ticket does not verify: %v", err)
	}

	_, err = m.rpcQuickMatch(context.Background(), noopLogger{}, nil, nk, "")
	var rerr *runtime.Error
	if !errors.As(err, &rerr) || rerr.Code != codeUnauthenticated {
		t.Fatalf("expected unauthenticated error, got %v", err)
	}
}

func TestNewModuleGeneratesSecret(t *testing.T) {
	m, err := newModule(map[string]string{config.EnvBotLevel: "random"}, noopLogger{})
	if err != nil {
		t.Fatalf("newModule: %v", err)
	}
	if m.cfg.BotLevel != "random" {
		t.Fatalf("BotLevel = %q, want random", m.cfg.BotLevel)
	}
	if m.cfg.TicketSecret == "" {
		t.Fatalf("expected a generated ticket secret")
	}
}
