package engine

import (
	"fmt"
	"math/rand"
)

// DefaultDealerStay is the usual house rule: the dealer stands on 17.
const DefaultDealerStay = 17

// State is a snapshot of one hand: the shoe, both hands, whose turn it is and
// the dealer's stay threshold. It is the unit of cloning for simulations.
type State struct {
	Shoe       Shoe
	Player     Hand
	Dealer     Hand
	Turn       Turn
	DealerStay int
	Doubled    bool // stake doubled by Pd
}

func NewState(shoe Shoe, dealerStay int) State {
	return State{Shoe: shoe, Turn: TurnPlayer, DealerStay: dealerStay}
}

// Clone returns a copy that shares no memory with s.
func (s State) Clone() State {
	c := s
	c.Player = s.Player.Clone()
	c.Dealer = s.Dealer.Clone()
	return c
}

func (s *State) PlayerScore() int { return Score(s.Player) }
func (s *State) DealerScore() int { return Score(s.Dealer) }

func (s *State) Done() bool { return s.Turn == TurnEnd }

// CanDouble reports whether the player's current two cards allow a double-down.
func (s *State) CanDouble() bool {
	if s.Turn != TurnPlayer || s.Doubled || len(s.Player) != 2 {
		return false
	}
	sc := s.PlayerScore()
	return sc >= 9 && sc <= 11
}

// DealerAction is the dealer's fixed policy. A dealer holding fewer than two
// cards first draws the concealed hole card. Otherwise the dealer hits while
// below the stay threshold, not ahead of the player and under 21.
func (s *State) DealerAction() Action {
	if len(s.Dealer) < 2 {
		return DealerHit
	}
	d := s.DealerScore()
	if d < s.DealerStay && d <= s.PlayerScore() && d < 21 {
		return DealerHit
	}
	return DealerStand
}

// Legal lists the actions available after history h. It is a pure projection
// of the state: the player may hit or stand, and double only as the first
// action; the dealer has exactly one action.
func (s *State) Legal(h History) []Action {
	switch s.Turn {
	case TurnPlayer:
		out := []Action{PlayerHit, PlayerStand}
		if h == "" && s.CanDouble() {
			out = append(out, PlayerDouble)
		}
		return out
	case TurnDealer:
		return []Action{s.DealerAction()}
	}
	return nil
}

// Apply advances the state by one action, drawing from the shoe with r.
func (s *State) Apply(a Action, r *rand.Rand) error {
	if !a.Valid() {
		return invalidAction(string(a))
	}
	if s.Turn == TurnEnd {
		return ErrHandEnded
	}
	if (a.IsPlayer() && s.Turn != TurnPlayer) || (a.IsDealer() && s.Turn != TurnDealer) {
		return fmt.Errorf("%w: %s during %s turn", ErrOutOfTurn, a, s.Turn)
	}

	switch a {
	case PlayerHit:
		if err := s.drawPlayer(r); err != nil {
			return err
		}
		if s.PlayerScore() > 21 {
			s.Turn = TurnEnd
		}
	case PlayerStand:
		s.Turn = TurnDealer
	case PlayerDouble:
		if !s.CanDouble() {
			return fmt.Errorf("%w: double-down on %d with %d cards", ErrIllegalAction, s.PlayerScore(), len(s.Player))
		}
		if err := s.drawPlayer(r); err != nil {
			return err
		}
		s.Doubled = true
		if s.PlayerScore() > 21 {
			s.Turn = TurnEnd
		} else {
			s.Turn = TurnDealer
		}
	case DealerHit:
		rank, err := s.Shoe.Draw(r)
		if err != nil {
			return err
		}
		s.Dealer = append(s.Dealer, rank)
	case DealerStand:
		s.Turn = TurnEnd
	}
	return nil
}

func (s *State) drawPlayer(r *rand.Rand) error {
	rank, err := s.Shoe.Draw(r)
	if err != nil {
		return err
	}
	s.Player = append(s.Player, rank)
	return nil
}

// ApplyAction returns the state reached from s by action a. s is not modified.
func ApplyAction(s State, code Action, r *rand.Rand) (State, error) {
	next := s.Clone()
	if err := next.Apply(code, r); err != nil {
		return s, err
	}
	return next, nil
}

// Outcome scores a finished hand from the player's side: -mod for a loss,
// 0 for a push, +mod for a win, where mod is 2 when h contains a double-down.
// ok is false while the hand is still in play.
func (s *State) Outcome(h History) (outcome int, ok bool) {
	if s.Turn != TurnEnd {
		return 0, false
	}
	mod := 1
	if h.Doubled() {
		mod = 2
	}
	p, d := s.PlayerScore(), s.DealerScore()
	switch {
	case p > 21 || (p < d && d <= 21):
		return -mod, true
	case p == d:
		return 0, true
	default:
		return mod, true
	}
}
