package engine

import "strings"

// Turn is whose move it is within a hand.
type Turn string

const (
	TurnPlayer Turn = "Player"
	TurnDealer Turn = "Dealer"
	TurnEnd    Turn = "End"
)

// Action is a two-character action code. The first character names the actor
// (P or D), the second the move.
type Action string

const (
	PlayerHit    Action = "Ph"
	PlayerStand  Action = "Ps"
	PlayerDouble Action = "Pd" // only as the first player action
	DealerHit    Action = "Dh"
	DealerStand  Action = "Ds" // terminal
)

var actionLabels = map[Action]string{
	PlayerHit:    "hit",
	PlayerStand:  "stand",
	PlayerDouble: "double down",
	DealerHit:    "dealer hit",
	DealerStand:  "dealer stand",
}

func (a Action) Valid() bool {
	_, ok := actionLabels[a]
	return ok
}

// Label is the caller-facing name of the action ("hit", "stand", "double down").
func (a Action) Label() string { return actionLabels[a] }

func (a Action) IsPlayer() bool { return len(a) == 2 && a[0] == 'P' }
func (a Action) IsDealer() bool { return len(a) == 2 && a[0] == 'D' }

// ParseAction validates a raw action code.
func ParseAction(code string) (Action, error) {
	a := Action(code)
	if !a.Valid() {
		return "", invalidAction(code)
	}
	return a, nil
}

// History is the ordered sequence of action codes taken so far in a hand.
// Two states reached through the same History are treated as the same search
// node regardless of the cards drawn along the way.
type History string

func (h History) Append(a Action) History { return h + History(a) }

// Len is the number of actions in the history.
func (h History) Len() int { return len(h) / 2 }

// Last returns the most recent action, or "" for the empty history.
func (h History) Last() Action {
	if len(h) < 2 {
		return ""
	}
	return Action(h[len(h)-2:])
}

// Actions splits the history into codes, rejecting anything malformed.
func (h History) Actions() ([]Action, error) {
	if len(h)%2 != 0 {
		return nil, invalidAction(string(h))
	}
	out := make([]Action, 0, len(h)/2)
	for i := 0; i < len(h); i += 2 {
		a, err := ParseAction(string(h[i : i+2]))
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Doubled reports whether the history contains a double-down.
func (h History) Doubled() bool {
	for i := 0; i+1 < len(h); i += 2 {
		if Action(h[i:i+2]) == PlayerDouble {
			return true
		}
	}
	return false
}

// ParseHistory validates a raw history string.
func ParseHistory(s string) (History, error) {
	h := History(strings.TrimSpace(s))
	if _, err := h.Actions(); err != nil {
		return "", err
	}
	return h, nil
}
