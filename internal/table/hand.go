package table

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/lox/tablestakes/internal/pot"
	"github.com/lox/tablestakes/internal/shuffle"
	"github.com/lox/tablestakes/poker"
)

// Phase is the table's position in the hand lifecycle.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseCommit
	PhaseReveal
	PhasePreflop
	PhaseFlop
	PhaseTurn
	PhaseRiver
	PhaseShowdown
)

func (p Phase) String() string {
	return [...]string{
		"waiting", "commit", "reveal", "preflop",
		"flop", "turn", "river", "showdown",
	}[p]
}

// betting reports whether the phase is one of the four streets.
func (p Phase) betting() bool {
	return p >= PhasePreflop && p <= PhaseRiver
}

// handRound is the ephemeral state of one hand. Created by StartHand,
// discarded at settlement or abort. Participant indices are positions
// in the dealer-first snapshot, not table seat numbers.
type handRound struct {
	id    string
	phase Phase

	// participants maps participant index to table seat, dealer first.
	participants []int

	coordinator *shuffle.Coordinator
	ledger      *pot.Ledger

	deck     []poker.Card
	nextCard int

	hole      [][]poker.Card
	community []poker.Card
	status    []SeatStatus

	actionOn      int
	minRaise      int64
	lastAggressor int
	acted         []bool
	voluntaryAct  bool

	commitDeadline time.Time
	revealDeadline time.Time
	actionDeadline time.Time
}

func newHandRound(participants []int) *handRound {
	n := len(participants)
	h := &handRound{
		id:            ulid.Make().String(),
		phase:         PhaseCommit,
		participants:  participants,
		coordinator:   shuffle.New(n),
		ledger:        pot.NewLedger(),
		hole:          make([][]poker.Card, n),
		status:        make([]SeatStatus, n),
		acted:         make([]bool, n),
		lastAggressor: -1,
	}
	for i := range h.status {
		h.status[i] = StatusActive
	}
	return h
}

// participantIdx maps a table seat to its index in the hand, -1 if the
// seat is not playing.
func (h *handRound) participantIdx(seat int) int {
	for i, s := range h.participants {
		if s == seat {
			return i
		}
	}
	return -1
}

// deal draws the next n cards off the shuffled deck.
func (h *handRound) deal(n int) []poker.Card {
	cards := h.deck[h.nextCard : h.nextCard+n]
	h.nextCard += n
	return cards
}

// nonFolded counts participants still contesting the pot.
func (h *handRound) nonFolded() int {
	n := 0
	for _, s := range h.status {
		if s != StatusFolded {
			n++
		}
	}
	return n
}

// activeCount counts participants who can still act (not folded or
// all-in).
func (h *handRound) activeCount() int {
	n := 0
	for _, s := range h.status {
		if s == StatusActive {
			n++
		}
	}
	return n
}

// foldedMask returns the per-participant folded flags for the ledger.
func (h *handRound) foldedMask() []bool {
	mask := make([]bool, len(h.status))
	for i, s := range h.status {
		mask[i] = s == StatusFolded
	}
	return mask
}

// nextActive finds the first active participant strictly after from,
// wrapping clockwise; -1 when none remain.
func (h *handRound) nextActive(from int) int {
	n := len(h.participants)
	for step := 1; step <= n; step++ {
		idx := (from + step) % n
		if h.status[idx] == StatusActive {
			return idx
		}
	}
	return -1
}

// firstActiveFrom finds the first active participant at or after from.
func (h *handRound) firstActiveFrom(from int) int {
	n := len(h.participants)
	for step := 0; step < n; step++ {
		idx := (from + step) % n
		if h.status[idx] == StatusActive {
			return idx
		}
	}
	return -1
}

// streetComplete reports whether every active participant has acted
// since the last reopening and matched the current maximum bet.
func (h *handRound) streetComplete() bool {
	max := h.ledger.MaxRoundBet()
	for i, s := range h.status {
		if s != StatusActive {
			continue
		}
		if !h.acted[i] || h.ledger.RoundBet(i) != max {
			return false
		}
	}
	return true
}
