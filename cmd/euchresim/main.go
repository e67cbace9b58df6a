// Command euchresim plays batches of bot-only Euchre games and prints win statistics.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"

	"euchre/internal/bot"
	"euchre/internal/config"
	"euchre/internal/domain"
	"euchre/internal/simulation"
)

func main() {
	_ = godotenv.Load()

	games := flag.Int("games", 1000, "number of games to play")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "seed of the first game")
	team1 := flag.String("team1", "", "strategy of seats 0 and 2 (heuristic or random)")
	team2 := flag.String("team2", "", "strategy of seats 1 and 3 (heuristic or random)")
	workers := flag.Int("workers", 4, "games played in parallel")
	configPath := flag.String("config", os.Getenv(config.EnvConfigPath), "path to a JSON game config")
	verbose := flag.Bool("v", false, "log every hand")
	flag.Parse()

	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelInfo)
	if *verbose {
		logger = logger.WithLevel(pterm.LogLevelDebug)
	}
	slogger := slog.New(pterm.NewSlogHandler(logger))

	if err := run(slogger, *configPath, *games, *seed, *team1, *team2, *workers); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, configPath string, games int, seed uint64, team1, team2 string, workers int) error {
	if err := config.LoadGameConfig(configPath); err != nil {
		return err
	}
	cfg, err := config.GetGameConfig().ApplyEnv(config.EnvMap(os.Environ()))
	if err != nil {
		return err
	}

	l1, err := levelOr(team1, cfg.BotLevel)
	if err != nil {
		return err
	}
	l2, err := levelOr(team2, cfg.BotLevel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := simulation.NewRunner(logger)
	runner.Workers = workers

	logger.Info("starting batch", "games", games, "seed", seed, "team1", string(l1), "team2", string(l2))
	started := time.Now()
	stats, err := runner.RunBatch(ctx, games, seed, simulation.TeamLevels(l1, l2))
	if err != nil {
		return err
	}

	pterm.DefaultSection.Println("Results")
	return renderStats(stats, l1, l2, time.Since(started))
}

func levelOr(flagValue, fallback string) (bot.Level, error) {
	if flagValue == "" {
		flagValue = fallback
	}
	return bot.ParseLevel(flagValue)
}

func renderStats(stats simulation.AggregatedStats, l1, l2 bot.Level, elapsed time.Duration) error {
	row := func(team domain.Team, level bot.Level) []string {
		return []string{
			team.String(),
			string(level),
			fmt.Sprint(stats.Wins.Get(team)),
			fmt.Sprintf("%.1f%%", 100*stats.WinRate(team)),
			fmt.Sprint(stats.Points.Get(team)),
			fmt.Sprint(stats.Marches.Get(team)),
		}
	}
	data := pterm.TableData{
		{"Team", "Strategy", "Wins", "Win rate", "Points", "Marches"},
		row(domain.Team1, l1),
		row(domain.Team2, l2),
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}

	pterm.Info.Printfln("%d games, %d hands, %d pick-ups, %d forced calls in %s",
		stats.Games, stats.Hands, stats.PickUps, stats.ForcedCalls, elapsed.Round(time.Millisecond))
	return nil
}
