package engine

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyShoe     = errors.New("shoe is empty")
	ErrExhaustedRank = errors.New("rank exhausted")
	ErrInvalidAction = errors.New("invalid action")
	ErrIllegalAction = errors.New("illegal action")
	ErrOutOfTurn     = errors.New("action out of turn")
	ErrHandEnded     = errors.New("hand already ended")
	ErrHandResolved  = errors.New("hand resolved at deal")
)

func invalidAction(code string) error {
	return fmt.Errorf("%w: %q is not one of Ph, Ps, Pd, Dh, Ds", ErrInvalidAction, code)
}
