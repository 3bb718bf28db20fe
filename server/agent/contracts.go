package agent

import (
	"errors"
	"fmt"
	"strings"

	"blackjack-advisor/server/advisor"
	"blackjack-advisor/server/engine"
	"blackjack-advisor/server/mcts"
)

// ErrBadRequest marks input that can never be turned into a game state.
var ErrBadRequest = errors.New("bad request")

// Table is the game snapshot a client sends us.
type Table struct {
	Player     []string         `json:"player"`          // e.g. ["A","7"] or ["Ah","7d"]
	Dealer     []string         `json:"dealer"`          // up card first, then the hole card if dealt
	Shoe       *[NumRanks]int   `json:"shoe,omitempty"`  // remaining counts A..T; nil => full decks minus dealt cards
	Decks      int              `json:"decks,omitempty"` // used when shoe is nil
	History    string           `json:"history"`         // e.g. "" or "Ph"
	Turn       string           `json:"turn,omitempty"`  // Player|Dealer|End, default Player
	DealerStay int              `json:"dealer_stay,omitempty"`
	Search     *SearchOverrides `json:"search,omitempty"`
}

const NumRanks = engine.NumRanks

// SearchOverrides tweak the server's search settings for one request.
type SearchOverrides struct {
	Simulations int     `json:"simulations,omitempty"`
	Aggression  float64 `json:"aggression,omitempty"`
	Seed        int64   `json:"seed,omitempty"`
}

type HandView struct {
	Cards []string `json:"cards"`
	Score int      `json:"score"`
}

type CandidateOut struct {
	Action        string  `json:"action"`
	Label         string  `json:"label"`
	Played        int     `json:"played"`
	Wins          int     `json:"wins"`
	Draws         int     `json:"draws"`
	WinPercentage float64 `json:"win_pct"`
	Low           float64 `json:"ci_low"`
	High          float64 `json:"ci_high"`
}

type RecommendResponse struct {
	Action      string         `json:"action"`
	Label       string         `json:"label"`
	Confidence  float64        `json:"confidence"` // percent, 0..100
	History     string         `json:"history"`
	Player      HandView       `json:"player"`
	DealerUp    string         `json:"dealer_up"`
	Candidates  []CandidateOut `json:"candidates"`
	Simulations int            `json:"simulations"`
	Nodes       int            `json:"nodes"`
}

type DealRequest struct {
	Decks      int            `json:"decks,omitempty"`
	Shoe       *[NumRanks]int `json:"shoe,omitempty"`
	DealerStay int            `json:"dealer_stay,omitempty"`
	Seed       int64          `json:"seed,omitempty"`
}

// DealResponse hides the hole card unless a natural already ended the hand.
type DealResponse struct {
	Player   HandView      `json:"player"`
	DealerUp string        `json:"dealer_up"`
	Dealer   *HandView     `json:"dealer,omitempty"`
	Natural  string        `json:"natural"`
	Payout   float64       `json:"payout"`
	Turn     string        `json:"turn"`
	Table    Table         `json:"table"` // feed back into /api/recommend
	Shoe     [NumRanks]int `json:"shoe"`
}

type ScoreRequest struct {
	Cards []string `json:"cards"`
}

type ScoreResponse struct {
	HandView
	Busted  bool `json:"busted"`
	Natural bool `json:"natural"`
}

// Defaults fill the fields a client may omit and bound the ones it sets.
// A zero maximum means no bound.
type Defaults struct {
	Decks          int
	DealerStay     int
	MaxDecks       int
	MaxSimulations int
}

// Rules resolves the shoe and the dealer stay for a new table. A nil shoe
// means full decks; decks and stay fall back to def when zero.
func Rules(shoe *[NumRanks]int, decks, stay int, def Defaults) (engine.Shoe, int, error) {
	if stay == 0 {
		stay = def.DealerStay
	}
	if stay < 1 || stay > 21 {
		return engine.Shoe{}, 0, fmt.Errorf("%w: dealer_stay %d outside 1..21", ErrBadRequest, stay)
	}

	if shoe != nil {
		s := engine.Shoe(*shoe)
		if err := s.Validate(); err != nil {
			return engine.Shoe{}, 0, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		if def.MaxDecks > 0 && s.Size() > def.MaxDecks*engine.StandardDeck.Size() {
			return engine.Shoe{}, 0, fmt.Errorf("%w: shoe holds more than %d decks", ErrBadRequest, def.MaxDecks)
		}
		return s, stay, nil
	}

	if decks == 0 {
		decks = def.Decks
	}
	if decks < 1 {
		return engine.Shoe{}, 0, fmt.Errorf("%w: decks must be >= 1, got %d", ErrBadRequest, decks)
	}
	if def.MaxDecks > 0 && decks > def.MaxDecks {
		return engine.Shoe{}, 0, fmt.Errorf("%w: decks %d above limit %d", ErrBadRequest, decks, def.MaxDecks)
	}
	return engine.NewShoe(decks), stay, nil
}

// Search applies per-request overrides to the server's search settings.
// Non-positive overrides are ignored.
func Search(base mcts.Config, o *SearchOverrides, def Defaults) (mcts.Config, error) {
	cfg := base
	if o != nil {
		if o.Simulations > 0 {
			cfg.Simulations = o.Simulations
		}
		if o.Aggression > 0 {
			cfg.Aggression = o.Aggression
		}
		if o.Seed != 0 {
			cfg.Seed = o.Seed
		}
	}
	if def.MaxSimulations > 0 && cfg.Simulations > def.MaxSimulations {
		return cfg, fmt.Errorf("%w: simulations %d above limit %d", ErrBadRequest, cfg.Simulations, def.MaxSimulations)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return cfg, nil
}

// BuildState converts a client table into an engine state and history.
func BuildState(t Table, def Defaults) (engine.State, engine.History, error) {
	player, err := parseCards(t.Player)
	if err != nil {
		return engine.State{}, "", fmt.Errorf("%w: player: %v", ErrBadRequest, err)
	}
	dealer, err := parseCards(t.Dealer)
	if err != nil {
		return engine.State{}, "", fmt.Errorf("%w: dealer: %v", ErrBadRequest, err)
	}
	if len(dealer) == 0 {
		return engine.State{}, "", fmt.Errorf("%w: dealer up card is required", ErrBadRequest)
	}
	h, err := engine.ParseHistory(t.History)
	if err != nil {
		return engine.State{}, "", err
	}
	turn, err := parseTurn(t.Turn)
	if err != nil {
		return engine.State{}, "", err
	}

	shoe, stay, err := Rules(t.Shoe, t.Decks, t.DealerStay, def)
	if err != nil {
		return engine.State{}, "", err
	}
	if t.Shoe == nil {
		for _, r := range append(player.Clone(), dealer...) {
			if err := shoe.DrawRank(r); err != nil {
				return engine.State{}, "", err
			}
		}
	}

	s := engine.NewState(shoe, stay)
	s.Player = player
	s.Dealer = dealer
	s.Turn = turn
	s.Doubled = h.Doubled()
	return s, h, nil
}

// TableFromState is the inverse of BuildState for a freshly dealt hand.
func TableFromState(s engine.State, h engine.History) Table {
	shoe := [NumRanks]int(s.Shoe)
	return Table{
		Player:     handToStr(s.Player),
		Dealer:     handToStr(s.Dealer),
		Shoe:       &shoe,
		History:    string(h),
		Turn:       string(s.Turn),
		DealerStay: s.DealerStay,
	}
}

// FromRecommendation renders a recommendation for the client.
func FromRecommendation(rec advisor.Recommendation, s engine.State, h engine.History) RecommendResponse {
	out := RecommendResponse{
		Action:      string(rec.Action),
		Label:       rec.Label,
		Confidence:  rec.Percent(),
		History:     string(h),
		Player:      View(s.Player),
		Simulations: rec.Simulations,
		Nodes:       rec.Nodes,
	}
	if len(s.Dealer) > 0 {
		out.DealerUp = s.Dealer[0].String()
	}
	for _, c := range rec.Candidates {
		out.Candidates = append(out.Candidates, CandidateOut{
			Action:        string(c.Action),
			Label:         c.Label,
			Played:        c.Metrics.Played,
			Wins:          c.Metrics.Wins,
			Draws:         c.Metrics.Draws,
			WinPercentage: c.WinPercentage,
			Low:           c.Low,
			High:          c.High,
		})
	}
	return out
}

// FromDeal renders a fresh deal. The hole card is only shown when a natural
// resolved the hand.
func FromDeal(s engine.State, n engine.Natural) DealResponse {
	out := DealResponse{
		Player:  View(s.Player),
		Natural: n.String(),
		Payout:  n.Payout(),
		Turn:    string(s.Turn),
		Table:   TableFromState(s, ""),
		Shoe:    [NumRanks]int(s.Shoe),
	}
	if len(s.Dealer) > 0 {
		out.DealerUp = s.Dealer[0].String()
	}
	if n != engine.NoNatural {
		d := View(s.Dealer)
		out.Dealer = &d
	}
	return out
}

// Score scores a list of card strings.
func Score(req ScoreRequest) (ScoreResponse, error) {
	h, err := parseCards(req.Cards)
	if err != nil {
		return ScoreResponse{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return ScoreResponse{HandView: View(h), Busted: h.Busted(), Natural: h.Natural()}, nil
}

func View(h engine.Hand) HandView {
	return HandView{Cards: handToStr(h), Score: h.Score()}
}

func parseCards(cs []string) (engine.Hand, error) {
	out := make(engine.Hand, 0, len(cs))
	for _, c := range cs {
		r, err := engine.ParseRank(c)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func parseTurn(s string) (engine.Turn, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "player":
		return engine.TurnPlayer, nil
	case "dealer":
		return engine.TurnDealer, nil
	case "end":
		return engine.TurnEnd, nil
	}
	return "", fmt.Errorf("%w: unknown turn %q", ErrBadRequest, s)
}

func handToStr(h engine.Hand) []string {
	out := make([]string, len(h))
	for i, r := range h {
		out[i] = r.String()
	}
	return out
}
