// Package table implements the hand state machine for one table:
// seating, commit-reveal dealing, the four betting streets, showdown
// and settlement. Every operation runs to completion under the
// caller's serialization; waiting is represented as deadlines and
// flags, never as a blocked goroutine. Time-based progress happens
// only when someone calls CheckTimeout.
package table

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/tablestakes/internal/pot"
	"github.com/lox/tablestakes/internal/shuffle"
	"github.com/lox/tablestakes/poker"
)

// Custody is the only path chips leave the table. Fees and timeout
// penalties are credited to external accounts through it; the table
// never moves value directly.
type Custody interface {
	Credit(account string, amount int64) error
}

// Config are the per-table game parameters.
type Config struct {
	Seats        int
	SmallBlind   int64
	BigBlind     int64
	Ante         int64
	MinBuyIn     int64
	MaxBuyIn     int64
	FeeBps       int64
	PenaltyBps   int64
	FeeRecipient string
	Straddle     bool

	CommitTimeout time.Duration
	RevealTimeout time.Duration
	ActionTimeout time.Duration
}

// Table is one poker table. It persists across hands; the current
// hand, when one is running, lives in t.hand.
type Table struct {
	cfg     Config
	seats   []Seat
	dealer  int
	hand    *handRound
	clock   quartz.Clock
	logger  *log.Logger
	custody Custody
}

// New creates an empty table.
func New(cfg Config, clock quartz.Clock, logger *log.Logger, custody Custody) *Table {
	return &Table{
		cfg:     cfg,
		seats:   make([]Seat, cfg.Seats),
		dealer:  -1,
		clock:   clock,
		logger:  logger,
		custody: custody,
	}
}

// Sit places occupant at seat with buyIn chips. Only between hands.
func (t *Table) Sit(seat int, occupant string, buyIn int64) error {
	if t.hand != nil {
		return ErrHandInProgress
	}
	if seat < 0 || seat >= len(t.seats) {
		return fmt.Errorf("seat %d: %w", seat, ErrSeatEmpty)
	}
	if t.seats[seat].Occupied() {
		return fmt.Errorf("seat %d: %w", seat, ErrSeatOccupied)
	}
	for i := range t.seats {
		if t.seats[i].Occupant == occupant {
			return fmt.Errorf("%s at seat %d: %w", occupant, i, ErrAlreadySeated)
		}
	}
	if buyIn < t.cfg.MinBuyIn || buyIn > t.cfg.MaxBuyIn {
		return fmt.Errorf("buy-in %d: %w", buyIn, ErrBuyInOutOfRange)
	}
	t.seats[seat] = Seat{Occupant: occupant, Chips: buyIn}
	t.logger.Debug("seated", "seat", seat, "occupant", occupant, "chips", buyIn)
	return nil
}

// Leave vacates seat and returns the chips to hand back. Only between
// hands.
func (t *Table) Leave(seat int) (int64, error) {
	if t.hand != nil {
		return 0, ErrHandInProgress
	}
	if seat < 0 || seat >= len(t.seats) || !t.seats[seat].Occupied() {
		return 0, fmt.Errorf("seat %d: %w", seat, ErrSeatEmpty)
	}
	chips := t.seats[seat].Chips
	t.seats[seat] = Seat{}
	return chips, nil
}

// TopUp adds chips to seat up to the table maximum. Only between hands.
func (t *Table) TopUp(seat int, amount int64) error {
	if t.hand != nil {
		return ErrHandInProgress
	}
	if seat < 0 || seat >= len(t.seats) || !t.seats[seat].Occupied() {
		return fmt.Errorf("seat %d: %w", seat, ErrSeatEmpty)
	}
	if amount <= 0 || t.seats[seat].Chips+amount > t.cfg.MaxBuyIn {
		return fmt.Errorf("top-up %d: %w", amount, ErrBuyInOutOfRange)
	}
	t.seats[seat].Chips += amount
	return nil
}

// SetSittingOut toggles whether seat is dealt into future hands.
func (t *Table) SetSittingOut(seat int, out bool) error {
	if seat < 0 || seat >= len(t.seats) || !t.seats[seat].Occupied() {
		return fmt.Errorf("seat %d: %w", seat, ErrSeatEmpty)
	}
	t.seats[seat].SittingOut = out
	return nil
}

// StartHand rotates the button, snapshots the participants and opens
// the commit phase.
func (t *Table) StartHand() error {
	if t.hand != nil {
		return fmt.Errorf("%s: %w", t.hand.phase, ErrWrongPhase)
	}

	eligible := 0
	for i := range t.seats {
		if t.seats[i].eligible() {
			eligible++
		}
	}
	if eligible < 2 {
		return fmt.Errorf("%d eligible: %w", eligible, ErrNotEnoughPlayers)
	}

	// Button moves to the next eligible seat clockwise.
	n := len(t.seats)
	for step := 1; step <= n; step++ {
		idx := (t.dealer + step + n) % n
		if t.seats[idx].eligible() {
			t.dealer = idx
			break
		}
	}

	// Participants are snapshotted dealer-first for the whole hand.
	participants := make([]int, 0, eligible)
	for step := 0; step < n; step++ {
		idx := (t.dealer + step) % n
		if t.seats[idx].eligible() {
			participants = append(participants, idx)
		}
	}

	now := t.clock.Now()
	t.hand = newHandRound(participants)
	t.hand.commitDeadline = now.Add(t.cfg.CommitTimeout)
	t.logger.Info("hand started",
		"hand", t.hand.id, "dealer", t.dealer, "players", len(participants))
	return nil
}

// SubmitCommitment records seat's shuffle commitment.
func (t *Table) SubmitCommitment(seat int, digest [32]byte) error {
	h := t.hand
	if h == nil || h.phase != PhaseCommit {
		return fmt.Errorf("%s: %w", t.Phase(), ErrWrongPhase)
	}
	pi := h.participantIdx(seat)
	if pi < 0 {
		return fmt.Errorf("seat %d: %w", seat, ErrNotInHand)
	}
	if err := h.coordinator.Commit(pi, digest); err != nil {
		if errors.Is(err, shuffle.ErrAlreadyCommitted) {
			return fmt.Errorf("seat %d: %w", seat, ErrAlreadyCommitted)
		}
		return err
	}
	if h.coordinator.Phase() == shuffle.PhaseReveal {
		h.phase = PhaseReveal
		h.revealDeadline = t.clock.Now().Add(t.cfg.RevealTimeout)
		t.logger.Debug("all committed", "hand", h.id)
	}
	return nil
}

// RevealSecret checks seat's secret against its commitment. A bad
// preimage rejects only this seat; the hand keeps waiting. Once every
// seat has revealed, the deck is fixed and the hand is dealt.
func (t *Table) RevealSecret(seat int, secret []byte) error {
	h := t.hand
	if h == nil || h.phase != PhaseReveal {
		return fmt.Errorf("%s: %w", t.Phase(), ErrWrongPhase)
	}
	pi := h.participantIdx(seat)
	if pi < 0 {
		return fmt.Errorf("seat %d: %w", seat, ErrNotInHand)
	}
	if err := h.coordinator.Reveal(pi, secret); err != nil {
		if errors.Is(err, shuffle.ErrSecretMismatch) || errors.Is(err, shuffle.ErrSecretLength) {
			return fmt.Errorf("seat %d: %w", seat, ErrInvalidSecret)
		}
		return err
	}
	if h.coordinator.Done() {
		t.beginStreets()
	}
	return nil
}

// beginStreets deals hole cards, posts antes and blinds and opens
// preflop action.
func (t *Table) beginStreets() {
	h := t.hand
	h.deck = h.coordinator.Deck()
	n := len(h.participants)

	// Two cards each, one at a time, starting left of the button.
	for round := 0; round < 2; round++ {
		for step := 1; step <= n; step++ {
			pi := step % n
			h.hole[pi] = append(h.hole[pi], h.deal(1)...)
		}
	}

	// Antes are swept into their own pot layer before the blinds so a
	// short ante all-in produces correct side pots on its own.
	if t.cfg.Ante > 0 {
		for pi := range h.participants {
			t.postForced(pi, t.cfg.Ante)
		}
		h.ledger.CollectBets(h.foldedMask())
	}

	// Heads-up the button posts the small blind.
	sb, bb := 1, 2
	if n == 2 {
		sb, bb = 0, 1
	}
	t.postForced(sb, t.cfg.SmallBlind)
	t.postForced(bb, t.cfg.BigBlind)

	h.minRaise = t.cfg.BigBlind
	h.phase = PhasePreflop

	first := 3 % n
	if n == 2 {
		first = 0
	}
	h.actionOn = h.firstActiveFrom(first)
	if h.actionOn < 0 {
		// Everyone is all-in from forced posts: straight to runout.
		t.closeStreet()
		return
	}
	h.actionDeadline = t.clock.Now().Add(t.cfg.ActionTimeout)
	t.logger.Debug("preflop", "hand", h.id,
		"action_on", h.participants[h.actionOn], "pot", h.ledger.Total())
}

// postForced posts a blind or ante capped at the seat's stack, marking
// the seat all-in when the post consumes it.
func (t *Table) postForced(pi int, amount int64) {
	seat := &t.seats[t.hand.participants[pi]]
	if amount > seat.Chips {
		amount = seat.Chips
	}
	if amount == 0 {
		return
	}
	t.hand.ledger.AddBet(pi, amount)
	seat.Chips -= amount
	if seat.Chips == 0 {
		t.hand.status[pi] = StatusAllIn
	}
}

// CheckTimeout is permissionless: anyone may drive time-based
// progress. Before any deadline it rejects with ErrNoTimeoutDue.
func (t *Table) CheckTimeout() error {
	h := t.hand
	if h == nil {
		return ErrNoTimeoutDue
	}
	now := t.clock.Now()

	switch {
	case h.phase == PhaseCommit:
		if !now.After(h.commitDeadline) {
			return ErrNoTimeoutDue
		}
		t.abortWithPenalties(func(pi int) bool { return !h.coordinator.Committed(pi) })
		return nil
	case h.phase == PhaseReveal:
		if !now.After(h.revealDeadline) {
			return ErrNoTimeoutDue
		}
		t.abortWithPenalties(func(pi int) bool { return !h.coordinator.Revealed(pi) })
		return nil
	case h.phase.betting():
		if !now.After(h.actionDeadline) {
			return ErrNoTimeoutDue
		}
		pi := h.actionOn
		t.logger.Info("action timeout, auto-folding",
			"hand", h.id, "seat", h.participants[pi])
		t.applyFold(pi)
		return nil
	default:
		return ErrNoTimeoutDue
	}
}

// abortWithPenalties ends a hand whose shuffle can no longer complete.
// Each seat that failed to submit forfeits a stack percentage to the
// fee recipient; all contributions are refunded.
func (t *Table) abortWithPenalties(missed func(pi int) bool) {
	h := t.hand
	var penalties int64
	for pi, seatIdx := range h.participants {
		if !missed(pi) {
			continue
		}
		penalty := t.seats[seatIdx].Chips * t.cfg.PenaltyBps / 10000
		if penalty > 0 {
			t.seats[seatIdx].Chips -= penalty
			penalties += penalty
		}
		t.logger.Info("deadline missed",
			"hand", h.id, "seat", seatIdx, "penalty", penalty)
	}
	t.creditFees(penalties)
	t.refundContributions()
	t.hand = nil
}

// AbortHand unconditionally tears down the current hand, refunding
// every participant its lifetime contribution. Authorization is the
// caller's responsibility.
func (t *Table) AbortHand() error {
	if t.hand == nil {
		return fmt.Errorf("no hand: %w", ErrWrongPhase)
	}
	t.logger.Warn("hand aborted", "hand", t.hand.id, "phase", t.hand.phase)
	t.refundContributions()
	t.hand = nil
	return nil
}

func (t *Table) refundContributions() {
	h := t.hand
	for pi, amount := range h.ledger.Contributions() {
		t.seats[h.participants[pi]].Chips += amount
	}
}

func (t *Table) creditFees(amount int64) {
	if amount == 0 {
		return
	}
	if err := t.custody.Credit(t.cfg.FeeRecipient, amount); err != nil {
		t.logger.Error("custody credit failed",
			"account", t.cfg.FeeRecipient, "amount", amount, "err", err)
	}
}

// Phase returns the table's current phase, PhaseWaiting between hands.
func (t *Table) Phase() Phase {
	if t.hand == nil {
		return PhaseWaiting
	}
	return t.hand.phase
}

// HandID returns the current hand's ID, empty between hands.
func (t *Table) HandID() string {
	if t.hand == nil {
		return ""
	}
	return t.hand.id
}

// Dealer returns the seat holding the button, -1 before the first
// hand.
func (t *Table) Dealer() int { return t.dealer }

// SeatInfo returns a copy of the seat's persistent state.
func (t *Table) SeatInfo(seat int) Seat {
	if seat < 0 || seat >= len(t.seats) {
		return Seat{}
	}
	return t.seats[seat]
}

// NumSeats returns the table's seat count.
func (t *Table) NumSeats() int { return len(t.seats) }

// SeatStatusOf returns seat's standing in the current hand.
func (t *Table) SeatStatusOf(seat int) SeatStatus {
	if t.hand == nil {
		return StatusNone
	}
	pi := t.hand.participantIdx(seat)
	if pi < 0 {
		return StatusNone
	}
	return t.hand.status[pi]
}

// RoundBet returns seat's uncollected bet this street.
func (t *Table) RoundBet(seat int) int64 {
	if t.hand == nil {
		return 0
	}
	pi := t.hand.participantIdx(seat)
	if pi < 0 {
		return 0
	}
	return t.hand.ledger.RoundBet(pi)
}

// Pots returns the settled pots so far, main pot first.
func (t *Table) Pots() []pot.Pot {
	if t.hand == nil {
		return nil
	}
	return append([]pot.Pot(nil), t.hand.ledger.Pots()...)
}

// PotTotal returns all chips committed to the current hand.
func (t *Table) PotTotal() int64 {
	if t.hand == nil {
		return 0
	}
	return t.hand.ledger.Total()
}

// Community returns the community cards dealt so far.
func (t *Table) Community() []poker.Card {
	if t.hand == nil {
		return nil
	}
	return append([]poker.Card(nil), t.hand.community...)
}

// HoleCards returns seat's hole cards, nil if not dealt in.
func (t *Table) HoleCards(seat int) []poker.Card {
	if t.hand == nil {
		return nil
	}
	pi := t.hand.participantIdx(seat)
	if pi < 0 {
		return nil
	}
	return append([]poker.Card(nil), t.hand.hole[pi]...)
}

// ActionOn returns the seat whose turn it is, -1 outside a street.
func (t *Table) ActionOn() int {
	if t.hand == nil || !t.hand.phase.betting() {
		return -1
	}
	return t.hand.participants[t.hand.actionOn]
}

// MinRaise returns the current minimum raise increment.
func (t *Table) MinRaise() int64 {
	if t.hand == nil {
		return 0
	}
	return t.hand.minRaise
}

// CallAmount returns what seat owes to match the current max bet.
func (t *Table) CallAmount(seat int) int64 {
	if t.hand == nil {
		return 0
	}
	pi := t.hand.participantIdx(seat)
	if pi < 0 {
		return 0
	}
	return t.hand.ledger.CallAmount(pi)
}

// Deadline returns the phase's pending deadline, zero between hands.
func (t *Table) Deadline() time.Time {
	h := t.hand
	if h == nil {
		return time.Time{}
	}
	switch {
	case h.phase == PhaseCommit:
		return h.commitDeadline
	case h.phase == PhaseReveal:
		return h.revealDeadline
	case h.phase.betting():
		return h.actionDeadline
	default:
		return time.Time{}
	}
}

// Config returns the table configuration.
func (t *Table) Config() Config { return t.cfg }
