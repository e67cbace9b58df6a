package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseOverlaysDefaults(t *testing.T) {
	c, err := Parse([]byte(`{"bot_level":"random","tick_rate":10}`))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if c.BotLevel != "random" || c.TickRate != 10 {
		t.Fatalf("unexpected config: %+v", c)
	}
	if c.SeatName(2) != "Partner" || c.HandPauseTicks != Default().HandPauseTicks {
		t.Fatalf("defaults lost: %+v", c)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "bad json", data: `{`},
		{name: "three seats", data: `{"seat_names":["a","b","c"]}`},
		{name: "zero tick rate", data: `{"tick_rate":0}`},
		{name: "negative delay", data: `{"bot_delay_ticks":-1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	c, err := Default().ApplyEnv(EnvMap([]string{
		"euchre_bot_level=random",
		"euchre_bot_delay_ticks=2",
		"euchre_ticket_secret=s3cret",
		"euchre_ticket_ttl_seconds=60",
		"UNRELATED=1",
	}))
	if err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if c.BotLevel != "random" || c.BotDelayTicks != 2 || c.TicketSecret != "s3cret" || c.TicketTTLSeconds != 60 {
		t.Fatalf("unexpected config: %+v", c)
	}
	if c.TicketTTL().Seconds() != 60 {
		t.Fatalf("ttl = %v", c.TicketTTL())
	}

	if _, err := Default().ApplyEnv(map[string]string{EnvHandPauseTicks: "soon"}); err == nil {
		t.Fatalf("expected error for non-numeric value")
	}
}

func TestLoadGameConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "euchre.json")
	if err := os.WriteFile(path, []byte(`{"seat_names":["Me","West","North","East"]}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := LoadGameConfig(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := GetGameConfig().SeatName(1); got != "West" {
		t.Fatalf("seat 1 = %q, want West", got)
	}
}
