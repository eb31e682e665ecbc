package table

import (
	"fmt"

	"github.com/lox/tablestakes/poker"
)

// Action is a betting decision.
type Action int

const (
	ActionFold Action = iota
	ActionCheck
	ActionCall
	ActionRaiseTo
	ActionAllIn
)

func (a Action) String() string {
	return [...]string{"fold", "check", "call", "raise", "allin"}[a]
}

// Act applies seat's betting decision. amount is the new total round
// bet for ActionRaiseTo and ignored otherwise. The seat must hold the
// action and still be active.
func (t *Table) Act(seat int, action Action, amount int64) error {
	h := t.hand
	if h == nil || !h.phase.betting() {
		return fmt.Errorf("%s: %w", t.Phase(), ErrWrongPhase)
	}
	pi := h.participantIdx(seat)
	if pi < 0 || pi != h.actionOn || h.status[pi] != StatusActive {
		return fmt.Errorf("seat %d: %w", seat, ErrNotYourTurn)
	}

	switch action {
	case ActionFold:
		t.logger.Debug("fold", "hand", h.id, "seat", seat)
		t.applyFold(pi)
		return nil

	case ActionCheck:
		if h.ledger.CallAmount(pi) > 0 {
			return fmt.Errorf("check facing a bet: %w", ErrInvalidAction)
		}
		h.acted[pi] = true

	case ActionCall:
		owed := h.ledger.CallAmount(pi)
		if owed == 0 {
			return fmt.Errorf("call with nothing owed: %w", ErrInvalidAction)
		}
		t.payBet(pi, owed)
		h.acted[pi] = true

	case ActionRaiseTo:
		if err := t.applyRaise(pi, amount); err != nil {
			return err
		}

	case ActionAllIn:
		chips := t.seats[h.participants[pi]].Chips
		if chips == 0 {
			return fmt.Errorf("all-in with no chips: %w", ErrInvalidAction)
		}
		target := h.ledger.RoundBet(pi) + chips
		if target > h.ledger.MaxRoundBet() {
			if err := t.applyRaise(pi, target); err != nil {
				return err
			}
		} else {
			// Calling for less: the whole stack goes in.
			t.payBet(pi, chips)
			h.acted[pi] = true
		}

	default:
		return fmt.Errorf("action %d: %w", action, ErrInvalidAction)
	}

	h.voluntaryAct = true
	t.advance(pi)
	return nil
}

// payBet moves up to amount from the seat's stack into the ledger,
// marking the seat all-in when the stack empties.
func (t *Table) payBet(pi int, amount int64) {
	seat := &t.seats[t.hand.participants[pi]]
	if amount > seat.Chips {
		amount = seat.Chips
	}
	t.hand.ledger.AddBet(pi, amount)
	seat.Chips -= amount
	if seat.Chips == 0 {
		t.hand.status[pi] = StatusAllIn
	}
}

// applyRaise validates and applies a raise to target chips total this
// round. A full raise (increment >= minimum) reopens action for every
// other active seat and sets the new minimum; a short all-in raise is
// accepted but reopens nothing.
func (t *Table) applyRaise(pi int, target int64) error {
	h := t.hand
	max := h.ledger.MaxRoundBet()
	if target <= max {
		return fmt.Errorf("raise to %d, max bet %d: %w", target, max, ErrInvalidRaise)
	}
	needed := target - h.ledger.RoundBet(pi)
	chips := t.seats[h.participants[pi]].Chips
	if needed > chips {
		return fmt.Errorf("need %d, have %d: %w", needed, chips, ErrInsufficientChips)
	}
	increment := target - max
	allIn := needed == chips
	if increment < h.minRaise && !allIn {
		return fmt.Errorf("raise %d below minimum %d: %w", increment, h.minRaise, ErrInvalidRaise)
	}

	t.payBet(pi, needed)
	h.acted[pi] = true
	if increment >= h.minRaise {
		h.minRaise = increment
		h.lastAggressor = pi
		for i := range h.acted {
			if i != pi && h.status[i] == StatusActive {
				h.acted[i] = false
			}
		}
	}
	t.logger.Debug("raise", "hand", h.id,
		"seat", h.participants[pi], "to", target, "all_in", allIn)
	return nil
}

// applyFold folds pi and moves the hand along; shared by Act and the
// action-timeout path so both behave identically.
func (t *Table) applyFold(pi int) {
	h := t.hand
	h.status[pi] = StatusFolded
	h.acted[pi] = true
	h.voluntaryAct = true
	t.advance(pi)
}

// advance moves the action pointer, closing the street or ending the
// hand when the last action settled it.
func (t *Table) advance(from int) {
	h := t.hand

	if h.nonFolded() == 1 {
		t.settleFoldWin()
		return
	}
	if h.streetComplete() {
		t.closeStreet()
		return
	}
	h.actionOn = h.nextActive(from)
	h.actionDeadline = t.clock.Now().Add(t.cfg.ActionTimeout)
}

// closeStreet sweeps bets into pots and either deals the next street,
// runs the board out when betting is over for good, or settles.
func (t *Table) closeStreet() {
	h := t.hand
	h.ledger.CollectBets(h.foldedMask())

	if h.activeCount() <= 1 {
		// Nobody left to bet: run the board out and show down.
		for len(h.community) < 5 {
			h.community = append(h.community, h.deal(1)...)
		}
		t.settleShowdown()
		return
	}

	switch h.phase {
	case PhasePreflop:
		h.community = append(h.community, h.deal(3)...)
		h.phase = PhaseFlop
	case PhaseFlop:
		h.community = append(h.community, h.deal(1)...)
		h.phase = PhaseTurn
	case PhaseTurn:
		h.community = append(h.community, h.deal(1)...)
		h.phase = PhaseRiver
	case PhaseRiver:
		t.settleShowdown()
		return
	}

	h.minRaise = t.cfg.BigBlind
	h.lastAggressor = -1
	h.acted = make([]bool, len(h.participants))

	// First active seat clockwise from the button; heads-up the button
	// itself acts first postflop.
	first := 1
	if len(h.participants) == 2 {
		first = 0
	}
	h.actionOn = h.firstActiveFrom(first)
	h.actionDeadline = t.clock.Now().Add(t.cfg.ActionTimeout)
	t.logger.Debug("street", "hand", h.id, "phase", h.phase,
		"board", h.community, "pot", h.ledger.Total())
}

// settleFoldWin pays the last seat standing without a showdown.
func (t *Table) settleFoldWin() {
	h := t.hand
	h.ledger.CollectBets(h.foldedMask())

	var winner int
	for pi, s := range h.status {
		if s != StatusFolded {
			winner = pi
			break
		}
	}
	total := h.ledger.Total()
	fee := total * t.cfg.FeeBps / 10000
	t.seats[h.participants[winner]].Chips += total - fee
	t.creditFees(fee)

	t.logger.Info("fold win", "hand", h.id,
		"seat", h.participants[winner], "won", total-fee, "fee", fee)
	t.hand = nil
}

// settleShowdown evaluates every non-folded seat, distributes the pots
// and routes the service fee. The dealer is participant 0 by
// construction, which anchors the odd-chip rule.
func (t *Table) settleShowdown() {
	h := t.hand
	h.phase = PhaseShowdown

	rankings := make(map[int]poker.HandRank)
	for pi, s := range h.status {
		if s == StatusFolded {
			continue
		}
		var cards [7]poker.Card
		copy(cards[:2], h.hole[pi])
		copy(cards[2:], h.community)
		rankings[pi] = poker.Evaluate7(cards)
	}

	payouts := h.ledger.Distribution(rankings, h.foldedMask(), 0, len(h.participants))

	var fees int64
	for pi, amount := range payouts {
		fee := amount * t.cfg.FeeBps / 10000
		fees += fee
		t.seats[h.participants[pi]].Chips += amount - fee
		t.logger.Info("payout", "hand", h.id,
			"seat", h.participants[pi], "amount", amount-fee,
			"rank", rankings[pi].Category)
	}
	t.creditFees(fees)
	t.hand = nil
}

// PostStraddle lets the first-to-act seat blind-raise to twice the big
// blind before any voluntary action. The straddler is not marked as
// acted, so the option comes back around.
func (t *Table) PostStraddle(seat int) error {
	h := t.hand
	if h == nil || h.phase != PhasePreflop {
		return fmt.Errorf("%s: %w", t.Phase(), ErrWrongPhase)
	}
	if !t.cfg.Straddle {
		return ErrStraddleDisabled
	}
	pi := h.participantIdx(seat)
	if pi < 0 || pi != h.actionOn {
		return fmt.Errorf("seat %d: %w", seat, ErrNotYourTurn)
	}
	if h.voluntaryAct || h.ledger.MaxRoundBet() > t.cfg.BigBlind {
		return fmt.Errorf("straddle after action: %w", ErrInvalidAction)
	}

	target := 2 * t.cfg.BigBlind
	needed := target - h.ledger.RoundBet(pi)
	t.payBet(pi, needed)
	t.logger.Debug("straddle", "hand", h.id, "seat", seat)

	if h.status[pi] != StatusActive {
		// Straddled all-in short: nothing more for this seat to do.
		t.advance(pi)
		return nil
	}
	h.actionOn = h.nextActive(pi)
	h.actionDeadline = t.clock.Now().Add(t.cfg.ActionTimeout)
	return nil
}
