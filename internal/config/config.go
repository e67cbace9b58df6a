package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// GameConfig holds the tunables of a table. Zero values in a loaded file fall back to Default.
type GameConfig struct {
	SeatNames []string `json:"seat_names"`
	// BotLevel selects the strategy of every AI seat: "heuristic" or "random".
	BotLevel string `json:"bot_level"`
	// BotDelayTicks paces AI actions so clients can follow them.
	BotDelayTicks int `json:"bot_delay_ticks"`
	// TrickPauseTicks keeps a completed trick on the table before it is cleared.
	TrickPauseTicks int `json:"trick_pause_ticks"`
	// HandPauseTicks is the wait between a scored hand and the next one.
	HandPauseTicks   int    `json:"hand_pause_ticks"`
	TickRate         int    `json:"tick_rate"`
	TicketSecret     string `json:"ticket_secret"`
	TicketTTLSeconds int    `json:"ticket_ttl_seconds"`
}

// Default returns the built-in configuration.
func Default() GameConfig {
	return GameConfig{
		SeatNames:        []string{"You", "Left", "Partner", "Right"},
		BotLevel:         "heuristic",
		BotDelayTicks:    5,
		TrickPauseTicks:  10,
		HandPauseTicks:   20,
		TickRate:         5,
		TicketTTLSeconds: 300,
	}
}

// TicketTTL returns the seat ticket lifetime.
func (c GameConfig) TicketTTL() time.Duration {
	return time.Duration(c.TicketTTLSeconds) * time.Second
}

// SeatName returns the configured name of seat, or an empty string.
func (c GameConfig) SeatName(seat int) string {
	if seat < 0 || seat >= len(c.SeatNames) {
		return ""
	}
	return c.SeatNames[seat]
}

// Validate checks ranges that would stall or break a table.
func (c GameConfig) Validate() error {
	if len(c.SeatNames) != 4 {
		return fmt.Errorf("seat_names must list 4 names, got %d", len(c.SeatNames))
	}
	if c.TickRate < 1 {
		return fmt.Errorf("tick_rate must be positive, got %d", c.TickRate)
	}
	if c.BotDelayTicks < 0 || c.TrickPauseTicks < 0 || c.HandPauseTicks < 0 {
		return fmt.Errorf("tick delays must not be negative")
	}
	if c.TicketTTLSeconds < 1 {
		return fmt.Errorf("ticket_ttl_seconds must be positive, got %d", c.TicketTTLSeconds)
	}
	return nil
}

// Parse decodes a JSON configuration over the defaults.
func Parse(data []byte) (GameConfig, error) {
	c := Default()
	if err := json.Unmarshal(data, &c); err != nil {
		return GameConfig{}, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return GameConfig{}, err
	}
	return c, nil
}

// Environment keys read by ApplyEnv.
const (
	EnvBotLevel         = "euchre_bot_level"
	EnvBotDelayTicks    = "euchre_bot_delay_ticks"
	EnvTrickPauseTicks  = "euchre_trick_pause_ticks"
	EnvHandPauseTicks   = "euchre_hand_pause_ticks"
	EnvTicketSecret     = "euchre_ticket_secret"
	EnvTicketTTLSeconds = "euchre_ticket_ttl_seconds"
	// EnvConfigPath names a JSON file read before the other keys are applied.
	EnvConfigPath = "euchre_config_path"
)

// ApplyEnv overlays environment values on c. Unset keys are left alone.
func (c GameConfig) ApplyEnv(env map[string]string) (GameConfig, error) {
	if v, ok := env[EnvBotLevel]; ok && v != "" {
		c.BotLevel = v
	}
	if v, ok := env[EnvTicketSecret]; ok && v != "" {
		c.TicketSecret = v
	}
	ints := []struct {
		key string
		dst *int
	}{
		{EnvBotDelayTicks, &c.BotDelayTicks},
		{EnvTrickPauseTicks, &c.TrickPauseTicks},
		{EnvHandPauseTicks, &c.HandPauseTicks},
		{EnvTicketTTLSeconds, &c.TicketTTLSeconds},
	}
	for _, f := range ints {
		v, ok := env[f.key]
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return c, fmt.Errorf("invalid %s: %w", f.key, err)
		}
		*f.dst = n
	}
	return c, c.Validate()
}

// EnvMap converts os.Environ style entries into a map.
func EnvMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path. An empty path keeps
// the defaults.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		c := Default()
		if path != "" {
			data, err := os.ReadFile(path)
			if err != nil {
				loadErr = fmt.Errorf("failed to read game config: %w", err)
				return
			}
			if c, err = Parse(data); err != nil {
				loadErr = err
				return
			}
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration, or the defaults if none was loaded.
func GetGameConfig() GameConfig {
	if cfg == nil {
		return Default()
	}
	return *cfg
}
