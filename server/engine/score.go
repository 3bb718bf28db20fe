package engine

// Hand is the ordered sequence of ranks dealt to one side.
type Hand []Rank

// Score is the best blackjack total of the hand. Only the first Ace can count
// as 11, and only when that keeps the total at 21 or below. Totals above 21
// are returned as-is and mean bust.
func Score(cards []Rank) int {
	total, aces := 0, 0
	for _, c := range cards {
		if c == Ace {
			aces++
			continue
		}
		total += c.Value()
	}
	if aces == 0 {
		return total
	}
	total += aces - 1
	if total <= 10 {
		return total + 11
	}
	return total + 1
}

func (h Hand) Score() int { return Score(h) }

func (h Hand) Busted() bool { return Score(h) > 21 }

// Natural is a two-card 21.
func (h Hand) Natural() bool { return len(h) == 2 && Score(h) == 21 }

func (h Hand) Clone() Hand {
	if h == nil {
		return nil
	}
	out := make(Hand, len(h))
	copy(out, h)
	return out
}

func (h Hand) String() string {
	b := make([]byte, 0, len(h)*2)
	for i, r := range h {
		if i > 0 {
			b = append(b, ' ')
		}
		b = append(b, r.String()...)
	}
	return string(b)
}
