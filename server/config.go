package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"blackjack-advisor/server/agent"
	"blackjack-advisor/server/engine"
	"blackjack-advisor/server/mcts"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

//
// ===== env helpers =====
//

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
func atoiDef(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}
func int64Def(s string, def int64) int64 {
	if s == "" {
		return def
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return def
	}
	return n
}
func floatDef(s string, def float64) float64 {
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return f
}
func asBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

//
// ===== config =====
//

type Config struct {
	Port       string
	Decks      int
	DealerStay int
	Search     mcts.Config
	LogLevel   string
	LogPretty  bool

	// request bounds for the HTTP surface
	MaxDecks       int
	MaxSimulations int

	// one-shot mode
	PlayerHand string
	DealerHand string
	History    string
}

// loadConfig reads .env (if present) and then the process environment.
func loadConfig() (Config, error) {
	_ = godotenv.Load()

	search := mcts.DefaultConfig()
	search.Simulations = atoiDef(os.Getenv("SIMULATIONS"), search.Simulations)
	search.Aggression = floatDef(os.Getenv("AGGRESSION"), search.Aggression)
	search.Workers = atoiDef(os.Getenv("WORKERS"), search.Workers)
	search.Seed = int64Def(os.Getenv("SEED"), 0)

	cfg := Config{
		Port:       getenv("PORT", "8080"),
		Decks:      atoiDef(os.Getenv("DECKS"), 1),
		DealerStay: atoiDef(os.Getenv("DEALER_STAY"), engine.DefaultDealerStay),
		Search:     search,
		LogLevel:   getenv("LOG_LEVEL", "info"),
		LogPretty:  asBool(os.Getenv("LOG_PRETTY")),

		MaxDecks:       atoiDef(os.Getenv("MAX_DECKS"), 8),
		MaxSimulations: atoiDef(os.Getenv("MAX_SIMULATIONS"), 100000),

		PlayerHand: os.Getenv("PLAYER_HAND"),
		DealerHand: os.Getenv("DEALER_HAND"),
		History:    os.Getenv("HISTORY"),
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Decks < 1 {
		return fmt.Errorf("DECKS must be >= 1, got %d", c.Decks)
	}
	if c.DealerStay < 1 || c.DealerStay > 21 {
		return fmt.Errorf("DEALER_STAY must be in 1..21, got %d", c.DealerStay)
	}
	if c.MaxDecks < 1 || c.Decks > c.MaxDecks {
		return fmt.Errorf("MAX_DECKS must be >= DECKS (%d), got %d", c.Decks, c.MaxDecks)
	}
	if c.Search.Simulations < 1 {
		return fmt.Errorf("SIMULATIONS must be >= 1, got %d", c.Search.Simulations)
	}
	if c.MaxSimulations < 1 || c.Search.Simulations > c.MaxSimulations {
		return fmt.Errorf("MAX_SIMULATIONS must be >= SIMULATIONS (%d), got %d", c.Search.Simulations, c.MaxSimulations)
	}
	if err := c.Search.Validate(); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}

func (c Config) defaults() agent.Defaults {
	return agent.Defaults{
		Decks:          c.Decks,
		DealerStay:     c.DealerStay,
		MaxDecks:       c.MaxDecks,
		MaxSimulations: c.MaxSimulations,
	}
}

// newLogger builds the root logger; library packages get children of it.
func newLogger(c Config, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	if c.LogPretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
