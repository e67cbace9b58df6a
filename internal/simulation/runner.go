// Package simulation plays all-AI Euchre games to measure bot strategies against each
// other and to exercise the engine's invariants.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"

	"euchre/internal/app"
	"euchre/internal/bot"
	"euchre/internal/domain"
)

// Levels assigns a bot level to every seat.
type Levels [domain.NumSeats]bot.Level

// TeamLevels gives seats 0 and 2 the first level and seats 1 and 3 the second.
func TeamLevels(team1, team2 bot.Level) Levels {
	return Levels{team1, team2, team1, team2}
}

// DefaultMaxSteps bounds a single game; a finished game needs a few hundred steps.
const DefaultMaxSteps = 20000

// ErrStalled is returned when a game stops progressing or exceeds the step budget.
var ErrStalled = errors.New("game stalled")

// GameResult summarizes one finished game.
type GameResult struct {
	ID          string
	Seed        uint64
	Winner      domain.Team
	Score       domain.TeamTally
	Hands       int
	Marches     domain.TeamTally
	PickUps     int
	ForcedCalls int
	Steps       int
}

// AggregatedStats sums a batch of games.
type AggregatedStats struct {
	Games       int
	Wins        domain.TeamTally
	Points      domain.TeamTally
	Hands       int
	Marches     domain.TeamTally
	PickUps     int
	ForcedCalls int
}

// Add folds a game into the totals.
func (s *AggregatedStats) Add(r GameResult) {
	s.Games++
	s.Wins = s.Wins.Add(r.Winner, 1)
	s.Points = s.Points.Add(domain.Team1, r.Score.Team1).Add(domain.Team2, r.Score.Team2)
	s.Hands += r.Hands
	s.Marches = s.Marches.Add(domain.Team1, r.Marches.Team1).Add(domain.Team2, r.Marches.Team2)
	s.PickUps += r.PickUps
	s.ForcedCalls += r.ForcedCalls
}

// WinRate returns the share of games won by team.
func (s AggregatedStats) WinRate(team domain.Team) float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Wins.Get(team)) / float64(s.Games)
}

// Runner plays simulated games.
type Runner struct {
	logger   *slog.Logger
	MaxSteps int
	Workers  int
}

// NewRunner returns a Runner logging to logger; nil discards logs.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{logger: logger, MaxSteps: DefaultMaxSteps, Workers: 1}
}

// RunSingleGame plays one game from seed to the end, checking invariants after every step.
// The same seed and levels always produce the same game.
func (r *Runner) RunSingleGame(seed uint64, levels Levels) (GameResult, error) {
	var agents [domain.NumSeats]*bot.Agent
	for seat, level := range levels {
		a, err := bot.NewAgent(seat, "", level, rand.New(rand.NewPCG(seed, uint64(seat)+1)))
		if err != nil {
			return GameResult{}, err
		}
		agents[seat] = a
	}
	svc := app.NewService(rand.New(rand.NewPCG(seed, 0)))
	table := app.NewTable(svc, agents)
	table.AutoDeal = true

	res := GameResult{ID: table.ID, Seed: seed}
	log := r.logger.With("game", table.ID, "seed", seed)

	for !table.Done() {
		if res.Steps >= r.MaxSteps {
			return res, fmt.Errorf("%w: %d steps", ErrStalled, res.Steps)
		}
		events, progressed, err := table.Step()
		if err != nil {
			return res, fmt.Errorf("step %d: %w", res.Steps, err)
		}
		if !progressed {
			return res, fmt.Errorf("%w in %s", ErrStalled, table.State.Phase)
		}
		res.Steps++
		if err := table.State.CheckInvariants(); err != nil {
			return res, fmt.Errorf("step %d: %w", res.Steps, err)
		}
		for _, ev := range events {
			res.record(ev, log)
		}
	}

	res.Winner, _ = table.State.Winner()
	res.Score = table.State.Score
	log.Debug("game finished", "winner", res.Winner.String(), "team1", res.Score.Team1, "team2", res.Score.Team2, "hands", res.Hands)
	return res, nil
}

func (res *GameResult) record(ev app.Event, log *slog.Logger) {
	switch p := ev.Payload.(type) {
	case app.TrumpCalledPayload:
		if p.PickedUp {
			res.PickUps++
		}
		if p.Forced {
			res.ForcedCalls++
		}
	case app.HandScoredPayload:
		res.Hands++
		if p.March {
			res.Marches = res.Marches.Add(p.Team, 1)
		}
		log.Debug("hand scored", "team", p.Team.String(), "points", p.Points, "march", p.March)
	}
}

// RunBatch plays n games with seeds seed, seed+1, ... and aggregates them. Results do not
// depend on the number of workers.
func (r *Runner) RunBatch(ctx context.Context, n int, seed uint64, levels Levels) (AggregatedStats, error) {
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}
	results := make([]GameResult, n)
	errs := make([]error, n)
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], errs[i] = r.RunSingleGame(seed+uint64(i), levels)
			}
		}()
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return AggregatedStats{}, err
	}
	var stats AggregatedStats
	for i := range results {
		if errs[i] != nil {
			return stats, fmt.Errorf("game %d (seed %d): %w", i, seed+uint64(i), errs[i])
		}
		stats.Add(results[i])
	}
	r.logger.Info("batch finished", "games", stats.Games, "team1_wins", stats.Wins.Team1, "team2_wins", stats.Wins.Team2)
	return stats, nil
}
