package engine

import (
	"math/rand"
	"time"
)

// NewRand returns a seeded source; seed 0 means time-based.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Natural is how a hand resolves at deal time.
type Natural int

const (
	NoNatural Natural = iota
	PlayerBlackjack
	DealerBlackjack
	StandOff
)

var naturalNames = map[Natural]string{
	NoNatural:       "none",
	PlayerBlackjack: "player_blackjack",
	DealerBlackjack: "dealer_blackjack",
	StandOff:        "stand_off",
}

func (n Natural) String() string { return naturalNames[n] }

// Payout is the player's return per unit bet. A player blackjack pays 3:2.
func (n Natural) Payout() float64 {
	switch n {
	case PlayerBlackjack:
		return 1.5
	case DealerBlackjack:
		return -1
	}
	return 0
}

// CheckNatural inspects the opening hands. Any result other than NoNatural
// ends the hand before the player acts, so no search should be run for it.
func CheckNatural(s *State) Natural {
	p, d := s.Player.Natural(), s.Dealer.Natural()
	switch {
	case p && d:
		return StandOff
	case p:
		return PlayerBlackjack
	case d:
		return DealerBlackjack
	}
	return NoNatural
}

// Deal starts a new hand from shoe: two cards to the player, then two to the
// dealer (the second one face down). The shoe inside the returned state has
// the four cards removed. A natural ends the hand immediately.
func Deal(shoe Shoe, dealerStay int, r *rand.Rand) (State, Natural, error) {
	s := NewState(shoe, dealerStay)
	for i := 0; i < 2; i++ {
		if err := s.drawPlayer(r); err != nil {
			return s, NoNatural, err
		}
	}
	for i := 0; i < 2; i++ {
		rank, err := s.Shoe.Draw(r)
		if err != nil {
			return s, NoNatural, err
		}
		s.Dealer = append(s.Dealer, rank)
	}
	n := CheckNatural(&s)
	if n != NoNatural {
		s.Turn = TurnEnd
	}
	return s, n, nil
}
