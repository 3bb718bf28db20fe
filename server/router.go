package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"blackjack-advisor/server/advisor"
	"blackjack-advisor/server/agent"
	"blackjack-advisor/server/engine"
	"blackjack-advisor/server/mcts"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const maxBody = 1 << 16

type api struct {
	cfg Config
	log zerolog.Logger
}

func Router(cfg Config, log zerolog.Logger) http.Handler {
	a := &api{cfg: cfg, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(a.requestLog)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		})
		r.Post("/recommend", a.recommend)
		r.Post("/deal", a.deal)
		r.Post("/score", a.score)
	})
	return r
}

func (a *api) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.log.Info().
			Str("req_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("http")
	})
}

func (a *api) recommend(w http.ResponseWriter, r *http.Request) {
	var req agent.Table
	if !readJSON(w, r, &req) {
		return
	}
	state, h, err := agent.BuildState(req, a.cfg.defaults())
	if err != nil {
		writeError(w, err)
		return
	}

	search, err := agent.Search(a.cfg.Search, req.Search, a.cfg.defaults())
	if err != nil {
		writeError(w, err)
		return
	}
	adv, err := advisor.New(search, advisor.WithLogger(a.log.With().Str("req_id", middleware.GetReqID(r.Context())).Logger()))
	if err != nil {
		writeError(w, errors.Join(agent.ErrBadRequest, err))
		return
	}
	rec, err := adv.Recommend(state, h)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agent.FromRecommendation(rec, state, h))
}

func (a *api) deal(w http.ResponseWriter, r *http.Request) {
	var req agent.DealRequest
	if !readJSON(w, r, &req) {
		return
	}
	shoe, stay, err := agent.Rules(req.Shoe, req.Decks, req.DealerStay, a.cfg.defaults())
	if err != nil {
		writeError(w, err)
		return
	}

	state, n, err := engine.Deal(shoe, stay, engine.NewRand(req.Seed))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agent.FromDeal(state, n))
}

func (a *api) score(w http.ResponseWriter, r *http.Request) {
	var req agent.ScoreRequest
	if !readJSON(w, r, &req) {
		return
	}
	out, err := agent.Score(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "bad json: " + err.Error()})
		return false
	}
	return true
}

// statusFor maps engine and search errors onto HTTP codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, agent.ErrBadRequest),
		errors.Is(err, engine.ErrInvalidAction),
		errors.Is(err, engine.ErrExhaustedRank):
		return http.StatusBadRequest
	case errors.Is(err, mcts.ErrNoData),
		errors.Is(err, engine.ErrHandResolved),
		errors.Is(err, engine.ErrHandEnded),
		errors.Is(err, engine.ErrOutOfTurn),
		errors.Is(err, engine.ErrIllegalAction),
		errors.Is(err, engine.ErrEmptyShoe):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]any{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
