package table

// Seat is one position at the table. Seats persist across hands.
type Seat struct {
	Occupant   string
	Chips      int64
	SittingOut bool
}

// Occupied reports whether anyone holds the seat.
func (s *Seat) Occupied() bool { return s.Occupant != "" }

// eligible reports whether the seat can be dealt into a new hand.
func (s *Seat) eligible() bool {
	return s.Occupied() && !s.SittingOut && s.Chips > 0
}

// SeatStatus is a seat's standing within the current hand.
type SeatStatus int

const (
	// StatusNone means the seat is not in the hand.
	StatusNone SeatStatus = iota
	StatusActive
	StatusFolded
	StatusAllIn
)

func (s SeatStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusFolded:
		return "folded"
	case StatusAllIn:
		return "allin"
	default:
		return "none"
	}
}
