package advisor

import (
	"fmt"
	"time"

	"blackjack-advisor/server/engine"
	"blackjack-advisor/server/mcts"

	"github.com/rs/zerolog"
)

// Candidate is the search result for one legal action at the decision point.
type Candidate struct {
	Action        engine.Action `json:"action"`
	Label         string        `json:"label"`
	Metrics       mcts.Metrics  `json:"metrics"`
	WinPercentage float64       `json:"win_percentage"`
	Low           float64       `json:"ci_low"`
	High          float64       `json:"ci_high"`
}

type Recommendation struct {
	Action engine.Action `json:"action"`
	Label  string        `json:"label"`
	// Confidence is the chosen action's win percentage in [0,1].
	Confidence  float64     `json:"confidence"`
	Candidates  []Candidate `json:"candidates"`
	Simulations int         `json:"simulations"`
	Nodes       int         `json:"nodes"`
}

// Percent renders Confidence the way players read it, e.g. 57.3.
func (r Recommendation) Percent() float64 { return r.Confidence * 100 }

// Advisor recommends the player's next action by running a fresh search per call.
type Advisor struct {
	search *mcts.Searcher
	log    zerolog.Logger
}

type options struct {
	log      zerolog.Logger
	progress func(done, total int)
}

type Option func(*options)

func WithLogger(l zerolog.Logger) Option { return func(o *options) { o.log = l } }

func WithProgress(fn func(done, total int)) Option {
	return func(o *options) { o.progress = fn }
}

func New(cfg mcts.Config, opts ...Option) (*Advisor, error) {
	o := options{log: zerolog.Nop()}
	for _, fn := range opts {
		fn(&o)
	}
	sopts := []mcts.Option{mcts.WithLogger(o.log)}
	if o.progress != nil {
		sopts = append(sopts, mcts.WithProgress(o.progress))
	}
	s, err := mcts.NewSearcher(cfg, sopts...)
	if err != nil {
		return nil, fmt.Errorf("advisor: %w", err)
	}
	return &Advisor{search: s, log: o.log}, nil
}

func (a *Advisor) Config() mcts.Config { return a.search.Config() }

// Conceal returns a copy of s with the dealer's hole card put back in the
// shoe. The dealer then draws it openly when its turn starts.
func Conceal(s engine.State) engine.State {
	c := s.Clone()
	if len(c.Dealer) == 2 {
		hole := c.Dealer[1]
		c.Shoe[hole]++
		c.Dealer = c.Dealer[:1]
	}
	return c
}

// Recommend searches from the player's point of view and returns the
// candidate with the highest win percentage. Ties go to the earlier
// candidate in Ph, Ps, Pd order. real is never modified.
func (a *Advisor) Recommend(real engine.State, h engine.History) (Recommendation, error) {
	if _, err := h.Actions(); err != nil {
		return Recommendation{}, err
	}
	switch real.Turn {
	case engine.TurnPlayer:
	case engine.TurnEnd:
		return Recommendation{}, engine.ErrHandEnded
	default:
		return Recommendation{}, fmt.Errorf("%w: recommend during %s turn", engine.ErrOutOfTurn, real.Turn)
	}
	if h == "" {
		if n := engine.CheckNatural(&real); n != engine.NoNatural {
			return Recommendation{}, fmt.Errorf("%w: %s", engine.ErrHandResolved, n)
		}
	}

	state := Conceal(real)
	cfg := a.search.Config()
	table := mcts.NewTable()
	started := time.Now()
	if err := a.search.RunSimulations(state, h, table, cfg.Simulations); err != nil {
		return Recommendation{}, err
	}

	rec := Recommendation{Simulations: cfg.Simulations}
	best := -1
	for _, act := range state.Legal(h) {
		m, _ := table.Get(h.Append(act))
		low, high := m.Interval()
		c := Candidate{
			Action:        act,
			Label:         act.Label(),
			Metrics:       m,
			WinPercentage: m.WinPercentage(),
			Low:           low,
			High:          high,
		}
		a.log.Debug().Str("action", string(act)).Int("played", m.Played).Float64("win_pct", c.WinPercentage).Msg("candidate")
		rec.Candidates = append(rec.Candidates, c)
		if best < 0 || c.WinPercentage > rec.Candidates[best].WinPercentage {
			best = len(rec.Candidates) - 1
		}
	}
	rec.Nodes = table.Len()
	if best < 0 {
		return rec, fmt.Errorf("%w: no candidates at %q", engine.ErrIllegalAction, h)
	}
	chosen := rec.Candidates[best]
	pct, err := table.WinPercentage(h.Append(chosen.Action))
	if err != nil {
		return rec, err
	}

	rec.Action = chosen.Action
	rec.Label = chosen.Label
	rec.Confidence = pct
	a.log.Info().
		Str("player", real.Player.String()).
		Str("dealer_up", state.Dealer.String()).
		Str("history", string(h)).
		Str("action", rec.Label).
		Float64("confidence", rec.Percent()).
		Dur("took", time.Since(started)).
		Msg("recommendation")
	return rec, nil
}
