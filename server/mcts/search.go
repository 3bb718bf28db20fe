package mcts

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"blackjack-advisor/server/engine"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Searcher runs Monte Carlo tree search over action histories.
type Searcher struct {
	cfg      Config
	log      zerolog.Logger
	progress func(done, total int)
	mu       sync.Mutex // serializes progress callbacks
}

type Option func(*Searcher)

func WithLogger(l zerolog.Logger) Option { return func(s *Searcher) { s.log = l } }

// WithProgress registers an observer called after every rollout.
func WithProgress(fn func(done, total int)) Option { return func(s *Searcher) { s.progress = fn } }

func NewSearcher(cfg Config, opts ...Option) (*Searcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Searcher{cfg: cfg, log: zerolog.Nop()}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

func (s *Searcher) Config() Config { return s.cfg }

// trace is one finished rollout.
type trace struct {
	outcome int
	history engine.History
	final   engine.State
}

// RunSimulations performs count rollouts from state/root, accumulating their
// outcomes into t. The root node exists afterwards even when count is 0.
// state is never modified.
func (s *Searcher) RunSimulations(state engine.State, root engine.History, t *Table, count int) error {
	t.Ensure(root)
	if count <= 0 {
		return nil
	}
	started := time.Now()
	defer func() {
		s.log.Debug().Int("count", count).Int("nodes", t.Len()).Dur("took", time.Since(started)).Str("root", string(root)).Msg("simulations finished")
	}()

	seed := s.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	workers := s.cfg.Workers
	if workers > count {
		workers = count
	}

	var done int
	report := func() {
		if s.progress == nil {
			return
		}
		s.mu.Lock()
		done++
		s.progress(done, count)
		s.mu.Unlock()
	}

	if workers <= 1 {
		r := rand.New(rand.NewSource(seed))
		for i := 0; i < count; i++ {
			if _, err := s.rollout(&state, root, t, r); err != nil {
				return err
			}
			report()
		}
		return nil
	}

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		n := count / workers
		if w < count%workers {
			n++
		}
		r := rand.New(rand.NewSource(seed + int64(w)))
		g.Go(func() error {
			for i := 0; i < n; i++ {
				if _, err := s.rollout(&state, root, t, r); err != nil {
					return err
				}
				report()
			}
			return nil
		})
	}
	return g.Wait()
}

// rollout plays one hand from start to the end, choosing player moves by the
// UCB policy, then backs the outcome up every history on the path.
func (s *Searcher) rollout(start *engine.State, root engine.History, t *Table, r *rand.Rand) (trace, error) {
	state := start.Clone()
	h := root
	path := []engine.History{root}

	outcome, ok := state.Outcome(h)
	for !ok {
		a, err := s.selectAction(&state, h, t, r)
		if err != nil {
			return trace{}, err
		}
		if err := state.Apply(a, r); err != nil {
			return trace{}, fmt.Errorf("rollout at %q: %w", h.Append(a), err)
		}
		h = h.Append(a)
		path = append(path, h)
		outcome, ok = state.Outcome(h)
	}

	for _, p := range path {
		t.Update(p, outcome)
	}
	return trace{outcome: outcome, history: h, final: state}, nil
}

// selectAction samples the next action with probability proportional to
// each candidate's aggression-scaled UCB priority.
func (s *Searcher) selectAction(state *engine.State, h engine.History, t *Table, r *rand.Rand) (engine.Action, error) {
	cands := state.Legal(h)
	switch len(cands) {
	case 0:
		return "", fmt.Errorf("%w: no legal action at %q in turn %q", engine.ErrIllegalAction, h, state.Turn)
	case 1:
		t.Ensure(h.Append(cands[0]))
		return cands[0], nil
	}

	parent := t.Metrics(h)
	priorities := make([]float64, len(cands))
	sum := 0.0
	for i, a := range cands {
		child := t.Metrics(h.Append(a))
		priorities[i] = s.scale(a, child.UpperConfidenceBound(parent, s.cfg.Exploration, s.cfg.UnvisitedPriority))
		sum += priorities[i]
	}

	if sum <= 0 {
		return cands[r.Intn(len(cands))], nil
	}
	x := r.Float64() * sum
	for i, p := range priorities {
		if x < p {
			return cands[i], nil
		}
		x -= p
	}
	return cands[len(cands)-1], nil
}

// scale applies the aggression factor. It only shapes selection and never
// touches stored Metrics.
func (s *Searcher) scale(a engine.Action, priority float64) float64 {
	switch a {
	case engine.PlayerHit, engine.PlayerDouble:
		return priority * s.cfg.Aggression
	case engine.PlayerStand:
		return priority / s.cfg.Aggression
	}
	return priority
}
