package nakama

import (
	"context"
	"database/sql"
	"errors"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"euchre/internal/app"
	"euchre/internal/bot"
	"euchre/internal/config"
	"euchre/internal/domain"
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	MatchID     string           `json:"match_id"`
	HumanUserID string           `json:"human_user_id"` // empty until the ticket holder joins
	Presence    runtime.Presence `json:"-"`
	Table       *app.Table       `json:"-"`
	Tick        int64            `json:"tick"`
	// WaitUntil holds automatic steps back so clients can follow the table.
	WaitUntil  int64        `json:"wait_until"`
	CreatedAt  int64        `json:"created_at"`
	LabelPhase domain.Phase `json:"label_phase"`
	LabelOpen  bool         `json:"label_open"`
}

type matchHandler struct {
	cfg     config.GameConfig
	tickets *app.TicketService
}

func newMatchHandler(cfg config.GameConfig, tickets *app.TicketService) *matchHandler {
	return &matchHandler{cfg: cfg, tickets: tickets}
}

// newTable seats the configured bots on every seat but the human one.
func (mh *matchHandler) newTable(logger runtime.Logger) (*app.Table, error) {
	level, err := bot.ParseLevel(mh.cfg.BotLevel)
	if err != nil {
		logger.Warn("newTable: %v, falling back to %s", err, bot.LevelHeuristic)
		level = bot.LevelHeuristic
	}

	svc := app.NewService(nil)
	for seat := range svc.SeatNames {
		if name := mh.cfg.SeatName(seat); name != "" {
			svc.SeatNames[seat] = name
		}
	}

	var agents [domain.NumSeats]*bot.Agent
	for seat := range agents {
		if seat == domain.HumanSeat {
			continue
		}
		agent, err := bot.NewAgent(seat, svc.SeatNames[seat], level, nil)
		if err != nil {
			return nil, err
		}
		agents[seat] = agent
	}
	return app.NewTable(svc, agents), nil
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	logger = logger.WithField("match_id", matchID)
	logger.Debug("MatchInit: Initializing match handler.")

	table, err := mh.newTable(logger)
	if err != nil {
		logger.Error("MatchInit: Failed to create table: %v", err)
		return nil, 0, ""
	}

	state := &MatchState{
		MatchID:    matchID,
		Table:      table,
		LabelPhase: table.State.Phase,
		LabelOpen:  true,
	}

	label, err := matchLabel(true, state.LabelPhase)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}
	return state, mh.cfg.TickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	userID := presence.GetUserId()
	if matchState.HumanUserID != "" && matchState.HumanUserID != userID {
		return state, false, "Match full"
	}
	if err := mh.tickets.Verify(metadata[MetadataTicket], userID, matchState.MatchID); err != nil {
		logger.Warn("MatchJoinAttempt: User %s rejected: %v", userID, err)
		return state, false, "Invalid seat ticket"
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.HumanUserID = p.GetUserId()
		matchState.Presence = p
		logger.Info("MatchJoin: User %s took seat %d.", p.GetUserId(), domain.HumanSeat)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.sendSnapshot(matchState, dispatcher, logger)
	return matchState
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		if p.GetUserId() == matchState.HumanUserID {
			logger.Info("MatchLeave: Human %s left, terminating match.", p.GetUserId())
			return nil
		}
	}
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	if matchState.CreatedAt == 0 {
		matchState.CreatedAt = tick
	}
	matchState.Tick = tick

	if matchState.HumanUserID == "" {
		if tick-matchState.CreatedAt >= int64(emptyMatchTimeoutSeconds*mh.cfg.TickRate) {
			logger.Info("MatchLoop: Nobody joined, terminating match.")
			return nil
		}
		return matchState
	}

	for _, msg := range messages {
		mh.handleMessage(matchState, dispatcher, logger, msg)
	}

	if tick >= matchState.WaitUntil {
		mh.processStep(matchState, dispatcher, logger)
	}

	return matchState
}

func (mh *matchHandler) handleMessage(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if senderID != state.HumanUserID {
		logger.Warn("handleMessage: Ignoring message from %s who holds no seat.", senderID)
		return
	}

	var events []app.Event
	var err error

	switch msg.GetOpCode() {
	case OpDeal:
		events, err = state.Table.Deal()
	case OpBid:
		var bid domain.Bid
		if bid, err = decodeBid(msg.GetData()); err == nil {
			events, err = state.Table.Bid(domain.HumanSeat, bid)
		}
	case OpPlayCard:
		var cardID string
		if cardID, err = decodeCardID(msg.GetData()); err == nil {
			events, err = state.Table.Play(domain.HumanSeat, cardID)
		}
	case OpNewGame:
		logger.Info("handleMessage: User %s started a new game.", senderID)
		state.Table.Reset()
		state.WaitUntil = 0
		mh.updateLabel(state, dispatcher, logger)
		mh.sendSnapshot(state, dispatcher, logger)
		return
	default:
		logger.Warn("handleMessage: Unknown opcode received: %d", msg.GetOpCode())
		return
	}

	if err != nil {
		logger.Warn("handleMessage: User %s (opcode %d) rejected: %v", senderID, msg.GetOpCode(), err)
		mh.sendError(state, dispatcher, logger, errorCode(err), err.Error())
		return
	}

	for _, ev := range events {
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}
	state.WaitUntil = state.Tick + mh.pauseTicks(state.Table.State.Phase)
	mh.updateLabel(state, dispatcher, logger)
}

// processStep performs one automatic table action and schedules the next one.
func (mh *matchHandler) processStep(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	events, progressed, err := state.Table.Step()
	if err != nil {
		logger.Error("processStep: Step failed in phase %s: %v", state.Table.State.Phase, err)
		return
	}
	if !progressed {
		return
	}
	for _, ev := range events {
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}
	state.WaitUntil = state.Tick + mh.pauseTicks(state.Table.State.Phase)
	mh.updateLabel(state, dispatcher, logger)
}

// pauseTicks is the wait before the next automatic step out of phase.
func (mh *matchHandler) pauseTicks(phase domain.Phase) int64 {
	switch phase {
	case domain.PhaseTrickComplete:
		return int64(mh.cfg.TrickPauseTicks)
	case domain.PhaseScoring:
		return int64(mh.cfg.HandPauseTicks)
	}
	return int64(mh.cfg.BotDelayTicks)
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	// Events addressed to bot seats have nobody to go to.
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, seat := range ev.Recipients {
			if seat == domain.HumanSeat && state.Presence != nil {
				recipients = append(recipients, state.Presence)
			}
		}
		if len(recipients) == 0 {
			return
		}
	}

	opCode, payload, err := eventToProto(ev)
	if err != nil {
		logger.Error("Failed to convert event %v: %v", ev.Kind, err)
		return
	}
	mh.send(dispatcher, logger, opCode, payload, recipients)
}

func (mh *matchHandler) sendSnapshot(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Presence == nil {
		return
	}
	snapshot, err := snapshotToProto(state.Table.State, domain.HumanSeat)
	if err != nil {
		logger.Error("Failed to build snapshot: %v", err)
		return
	}
	mh.send(dispatcher, logger, OpSnapshot, snapshot, []runtime.Presence{state.Presence})
}

// sendError sends an error event to the human seat.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, code int, message string) {
	if state.Presence == nil {
		logger.Warn("Cannot send error: Presence not found")
		return
	}
	payload, err := structpb.NewStruct(map[string]interface{}{
		"code":    code,
		"message": message,
	})
	if err != nil {
		logger.Error("Failed to build error event: %v", err)
		return
	}
	mh.send(dispatcher, logger, OpError, payload, []runtime.Presence{state.Presence})
}

func (mh *matchHandler) send(dispatcher runtime.MatchDispatcher, logger runtime.Logger, opCode int64, payload proto.Message, recipients []runtime.Presence) {
	bytes, err := proto.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal payload for opcode %d: %v", opCode, err)
		return
	}
	if err := dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true); err != nil {
		logger.Error("Failed to send opcode %d: %v", opCode, err)
	}
}

// errorCode maps engine rejections to the codes clients switch on.
func errorCode(err error) int {
	switch {
	case errors.Is(err, app.ErrNotYourTurn):
		return 403
	case errors.Is(err, app.ErrWrongPhase), errors.Is(err, app.ErrGameOver):
		return 409
	}
	return 400
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	phase := state.Table.State.Phase
	open := state.HumanUserID == ""
	if phase == state.LabelPhase && open == state.LabelOpen {
		return
	}
	state.LabelPhase = phase
	state.LabelOpen = open

	label, err := matchLabel(open, phase)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d grace seconds", graceSeconds)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
