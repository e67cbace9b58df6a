package nakama

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"

	"euchre/internal/app"
	"euchre/internal/config"
)

type module struct {
	cfg     config.GameConfig
	tickets *app.TicketService
}

// newModule resolves the game configuration from the runtime environment.
func newModule(env map[string]string, logger runtime.Logger) (*module, error) {
	if err := config.LoadGameConfig(env[config.EnvConfigPath]); err != nil {
		return nil, err
	}
	cfg, err := config.GetGameConfig().ApplyEnv(env)
	if err != nil {
		return nil, fmt.Errorf("invalid runtime env: %w", err)
	}
	if cfg.TicketSecret == "" {
		logger.Warn("No %s set, seat tickets will not survive a restart.", config.EnvTicketSecret)
		cfg.TicketSecret = uuid.NewString()
	}
	return &module{
		cfg:     cfg,
		tickets: app.NewTicketService(cfg.TicketSecret, cfg.TicketTTL()),
	}, nil
}

// InitModule wires RPCs and match handlers for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	m, err := newModule(env, logger)
	if err != nil {
		return err
	}

	if err := RegisterRPCs(initializer, m); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameEuchre, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return newMatchHandler(m.cfg, m.tickets), nil
	}); err != nil {
		return err
	}

	logger.Info("Euchre Go module loaded (bots: %s).", m.cfg.BotLevel)
	return nil
}
