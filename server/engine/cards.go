package engine

import (
	"fmt"
	"strings"
)

// Rank is a card bucket: 0 = Ace, 1..8 = 2..9, 9 = every ten-valued card (T J Q K).
type Rank int

const (
	Ace Rank = iota
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten

	NumRanks = 10
)

const rankChars = "A23456789T"

func (r Rank) Valid() bool { return r >= Ace && r <= Ten }

// Value is the face value of the rank, counting an Ace as 1.
func (r Rank) Value() int { return int(r) + 1 }

func (r Rank) String() string {
	if !r.Valid() {
		return "?"
	}
	return string(rankChars[r])
}

// ParseRank accepts A, 2..9, T, 10, J, Q, K (case-insensitive). A trailing
// suit letter, as in "Kd", is ignored.
func ParseRank(s string) (Rank, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) == 2 && strings.ContainsRune("CDHS", rune(s[1])) {
		s = s[:1]
	} else if len(s) == 3 && strings.ContainsRune("CDHS", rune(s[2])) {
		s = s[:2]
	}
	switch s {
	case "A":
		return Ace, nil
	case "T", "10", "J", "Q", "K":
		return Ten, nil
	}
	if len(s) == 1 && s[0] >= '2' && s[0] <= '9' {
		return Rank(s[0] - '1'), nil
	}
	return 0, fmt.Errorf("invalid rank: %q", s)
}

// ParseHand parses a comma or space separated list of ranks.
func ParseHand(s string) (Hand, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	h := make(Hand, 0, len(fields))
	for _, f := range fields {
		r, err := ParseRank(f)
		if err != nil {
			return nil, err
		}
		h = append(h, r)
	}
	return h, nil
}
