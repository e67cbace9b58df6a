package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Nakama runtime error codes.
const (
	codeInternal        = 13
	codeUnauthenticated = 16
)

// QuickMatchResponse is the payload returned to clients when requesting a table.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	Ticket  string `json:"ticket"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer, m *module) error {
	return initializer.RegisterRpc(RpcQuickMatch, m.rpcQuickMatch)
}

// rpcQuickMatch creates a fresh table for the caller and hands back the seat ticket
// needed to join it. Every table seats one human, so open matches are never shared.
func (m *module) rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("no user ID in context", codeUnauthenticated)
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameEuchre, map[string]interface{}{})
	if err != nil {
		logger.Error("MatchCreate error: %v", err)
		return "", runtime.NewError("unable to create match", codeInternal)
	}

	ticket, err := m.tickets.Issue(userID, matchID)
	if err != nil {
		logger.Error("Ticket issue error: %v", err)
		return "", runtime.NewError("unable to issue seat ticket", codeInternal)
	}

	b, err := json.Marshal(QuickMatchResponse{MatchID: matchID, Ticket: ticket})
	if err != nil {
		return "", runtime.NewError("unable to encode response", codeInternal)
	}
	return string(b), nil
}
