package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"blackjack-advisor/server/advisor"
	"blackjack-advisor/server/agent"
	"blackjack-advisor/server/engine"

	"github.com/rs/zerolog"
)

//
// ===== pretty printing =====
//

var useColor bool

const (
	colReset  = "\033[0m"
	colBold   = "\033[1m"
	colDim    = "\033[2m"
	colGreen  = "\033[32m"
	colRed    = "\033[31m"
	colYellow = "\033[33m"
)

func c(code, s string) string {
	if !useColor {
		return s
	}
	return code + s + colReset
}
func bold(s string) string { return c(colBold, s) }
func dim(s string) string  { return c(colDim, s) }
func good(s string) string { return c(colGreen, s) }
func warn(s string) string { return c(colYellow, s) }
func bad(s string) string  { return c(colRed, s) }

func section(title string) { fmt.Printf("\n%s %s %s\n", dim("──"), bold(title), dim("──")) }

func main() {
	cfg, err := loadConfig()
	log := newLogger(cfg, os.Stderr)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	useColor = (os.Getenv("NO_COLOR") == "") && (strings.TrimSpace(os.Getenv("USE_COLOR")) != "0")

	var serve bool
	for _, a := range os.Args[1:] {
		switch a {
		case "--serve":
			serve = true
		}
	}

	if !serve {
		if err := runOnce(cfg, log); err != nil {
			log.Fatal().Err(err).Msg("recommend")
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      Router(cfg, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	log.Info().Str("port", cfg.Port).Int("simulations", cfg.Search.Simulations).Int("workers", cfg.Search.Workers).Msgf("listening on http://localhost:%s (Ctrl+C to stop)", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("serve")
	}
	log.Info().Msg("stopped")
}

// runOnce recommends a single decision described by PLAYER_HAND, DEALER_HAND
// and HISTORY. Without hands it deals a fresh one.
func runOnce(cfg Config, log zerolog.Logger) error {
	var (
		state engine.State
		h     engine.History
		err   error
	)
	if cfg.PlayerHand == "" || cfg.DealerHand == "" {
		var n engine.Natural
		state, n, err = engine.Deal(engine.NewShoe(cfg.Decks), cfg.DealerStay, engine.NewRand(cfg.Search.Seed))
		if err != nil {
			return err
		}
		section("deal")
		fmt.Printf("player %s (%d)   dealer %s ?\n", bold(state.Player.String()), state.PlayerScore(), bold(state.Dealer[:1].String()))
		if n != engine.NoNatural {
			fmt.Printf("%s  dealer %s  payout %+.1f\n", warn(n.String()), state.Dealer, n.Payout())
			return nil
		}
	} else {
		player, err := engine.ParseHand(cfg.PlayerHand)
		if err != nil {
			return fmt.Errorf("PLAYER_HAND: %w", err)
		}
		dealer, err := engine.ParseHand(cfg.DealerHand)
		if err != nil {
			return fmt.Errorf("DEALER_HAND: %w", err)
		}
		table := agent.Table{
			Player:  agent.View(player).Cards,
			Dealer:  agent.View(dealer).Cards,
			History: cfg.History,
		}
		state, h, err = agent.BuildState(table, cfg.defaults())
		if err != nil {
			return err
		}
	}

	progress := func(done, total int) {
		if done == total || done%(total/10+1) == 0 {
			log.Debug().Int("done", done).Int("total", total).Msg("simulating")
		}
	}
	adv, err := advisor.New(cfg.Search, advisor.WithLogger(log), advisor.WithProgress(progress))
	if err != nil {
		return err
	}
	rec, err := adv.Recommend(state, h)
	if err != nil {
		return err
	}

	section("recommendation")
	for _, cand := range rec.Candidates {
		line := fmt.Sprintf("%-12s %6.1f%%  [%5.1f, %5.1f]  played=%d", cand.Label, cand.WinPercentage*100, cand.Low*100, cand.High*100, cand.Metrics.Played)
		if cand.Action == rec.Action {
			line = good(line)
		} else if cand.Metrics.Played == 0 {
			line = bad(line)
		}
		fmt.Println(line)
	}
	fmt.Printf("\nYou should %s (%.1f%% confidence)\n", bold(rec.Label), rec.Percent())
	return nil
}
