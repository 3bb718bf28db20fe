package engine

import (
	"fmt"
	"math/rand"
)

// Shoe holds the remaining count of each rank bucket.
type Shoe [NumRanks]int

// StandardDeck is one 52-card deck bucketed by rank.
var StandardDeck = Shoe{4, 4, 4, 4, 4, 4, 4, 4, 4, 16}

// NewShoe returns a shoe of n standard decks.
func NewShoe(decks int) Shoe {
	var s Shoe
	for i := 0; i < decks; i++ {
		s.Replenish(StandardDeck)
	}
	return s
}

// Replenish adds a composition to the current counts element-wise.
func (s *Shoe) Replenish(c Shoe) {
	for i := range s {
		s[i] += c[i]
	}
}

// AddDeck replenishes the shoe with one standard deck.
func (s *Shoe) AddDeck() { s.Replenish(StandardDeck) }

func (s Shoe) IsEmpty() bool {
	for _, n := range s {
		if n != 0 {
			return false
		}
	}
	return true
}

// Size is the total number of cards left.
func (s Shoe) Size() int {
	n := 0
	for _, c := range s {
		n += c
	}
	return n
}

func (s Shoe) Validate() error {
	for i, n := range s {
		if n < 0 {
			return fmt.Errorf("shoe count for %s is negative: %d", Rank(i), n)
		}
	}
	return nil
}

// Draw removes a random rank from the shoe. The choice is uniform over the
// ranks that still have cards, not over the cards themselves: a rank with one
// card left is as likely as a rank with sixteen.
func (s *Shoe) Draw(r *rand.Rand) (Rank, error) {
	var eligible [NumRanks]Rank
	n := 0
	for i, c := range s {
		if c > 0 {
			eligible[n] = Rank(i)
			n++
		}
	}
	if n == 0 {
		return 0, ErrEmptyShoe
	}
	rank := eligible[r.Intn(n)]
	s[rank]--
	return rank, nil
}

// DrawRank removes one card of the given rank.
func (s *Shoe) DrawRank(rank Rank) error {
	if !rank.Valid() {
		return fmt.Errorf("invalid rank %d", int(rank))
	}
	if s[rank] <= 0 {
		return fmt.Errorf("%w: no %s left to draw", ErrExhaustedRank, rank)
	}
	s[rank]--
	return nil
}
