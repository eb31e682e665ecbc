package table

import "errors"

// Validation errors reject a single operation and change no state.
var (
	ErrNotEnoughPlayers  = errors.New("table: not enough eligible players")
	ErrWrongPhase        = errors.New("table: operation not valid in current phase")
	ErrNotInHand         = errors.New("table: seat is not in the hand")
	ErrAlreadyCommitted  = errors.New("table: seat already committed")
	ErrNotYourTurn       = errors.New("table: not this seat's turn")
	ErrInvalidAction     = errors.New("table: action not valid here")
	ErrInvalidRaise      = errors.New("table: raise below minimum")
	ErrInsufficientChips = errors.New("table: insufficient chips")
	ErrSeatOccupied      = errors.New("table: seat occupied")
	ErrSeatEmpty         = errors.New("table: seat empty")
	ErrAlreadySeated     = errors.New("table: identity already seated")
	ErrBuyInOutOfRange   = errors.New("table: buy-in out of range")
	ErrHandInProgress    = errors.New("table: hand in progress")
	ErrStraddleDisabled  = errors.New("table: straddle not enabled")
)

// ErrInvalidSecret is an integrity error: the reveal's preimage does
// not match the seat's commitment. Only that seat's reveal is rejected.
var ErrInvalidSecret = errors.New("table: secret does not match commitment")

// ErrNoTimeoutDue is a timing error: no deadline has passed yet.
var ErrNoTimeoutDue = errors.New("table: no timeout due")
