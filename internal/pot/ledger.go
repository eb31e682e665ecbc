// Package pot tracks bets across a hand and settles them into pots.
// Side pots form whenever seats contribute unequal amounts in a round;
// distribution splits each pot among its best-ranked eligible seats.
package pot

import (
	"sort"

	"github.com/lox/tablestakes/poker"
)

// Pot is a settled layer of chips and the seats that can win it.
type Pot struct {
	Amount   int64
	Eligible []int
}

// Ledger accumulates bets for one hand. Round bets are collected into
// pots at street boundaries; lifetime contributions survive collection
// so an aborted hand can be refunded exactly.
type Ledger struct {
	roundBets   map[int]int64
	contributed map[int]int64
	pots        []Pot
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		roundBets:   make(map[int]int64),
		contributed: make(map[int]int64),
	}
}

// AddBet records amount as bet by seat in the current round.
func (l *Ledger) AddBet(seat int, amount int64) {
	l.roundBets[seat] += amount
	l.contributed[seat] += amount
}

// RoundBet returns seat's uncollected bet this round.
func (l *Ledger) RoundBet(seat int) int64 { return l.roundBets[seat] }

// Contributed returns seat's lifetime contribution this hand.
func (l *Ledger) Contributed(seat int) int64 { return l.contributed[seat] }

// Contributions returns a copy of every seat's lifetime contribution.
func (l *Ledger) Contributions() map[int]int64 {
	out := make(map[int]int64, len(l.contributed))
	for seat, amt := range l.contributed {
		out[seat] = amt
	}
	return out
}

// CallAmount returns what seat must add to match the round's max bet.
func (l *Ledger) CallAmount(seat int) int64 {
	var max int64
	for _, bet := range l.roundBets {
		if bet > max {
			max = bet
		}
	}
	if owed := max - l.roundBets[seat]; owed > 0 {
		return owed
	}
	return 0
}

// MaxRoundBet returns the largest uncollected bet this round.
func (l *Ledger) MaxRoundBet() int64 {
	var max int64
	for _, bet := range l.roundBets {
		if bet > max {
			max = bet
		}
	}
	return max
}

// Pots returns the settled pots, main pot first.
func (l *Ledger) Pots() []Pot { return l.pots }

// Total returns all chips in the ledger, settled and uncollected.
func (l *Ledger) Total() int64 {
	var total int64
	for _, p := range l.pots {
		total += p.Amount
	}
	for _, bet := range l.roundBets {
		total += bet
	}
	return total
}

// CollectBets settles the round's bets into pots and resets round
// state. Each distinct bet level forms a layer funded by every seat
// that bet at least that much; folded seats fund layers but are not
// eligible, though their bet totals still define levels. Layers with
// the same eligible set as an existing pot merge into it.
func (l *Ledger) CollectBets(folded []bool) {
	levels := make([]int64, 0, len(l.roundBets))
	seen := make(map[int64]bool)
	for _, bet := range l.roundBets {
		if bet > 0 && !seen[bet] {
			seen[bet] = true
			levels = append(levels, bet)
		}
	}
	if len(levels) == 0 {
		return
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })

	var prev int64
	for _, level := range levels {
		increment := level - prev
		var amount int64
		var eligible []int
		for seat, bet := range l.roundBets {
			if bet < level {
				continue
			}
			amount += increment
			if seat < len(folded) && folded[seat] {
				continue
			}
			eligible = append(eligible, seat)
		}
		sort.Ints(eligible)
		l.addLayer(amount, eligible)
		prev = level
	}

	l.roundBets = make(map[int]int64)
}

func (l *Ledger) addLayer(amount int64, eligible []int) {
	for i := range l.pots {
		if sameSeats(l.pots[i].Eligible, eligible) {
			l.pots[i].Amount += amount
			return
		}
	}
	l.pots = append(l.pots, Pot{Amount: amount, Eligible: eligible})
}

func sameSeats(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Distribution pays out every settled pot given showdown rankings.
// Within a pot the best-ranked eligible non-folded seats split evenly;
// a remainder chip goes to the winning seat nearest clockwise from the
// dealer. Seats missing from rankings cannot win. The result maps seat
// to total payout across pots.
func (l *Ledger) Distribution(rankings map[int]poker.HandRank, folded []bool, dealerIdx, seats int) map[int]int64 {
	payouts := make(map[int]int64)

	for _, pot := range l.pots {
		var winners []int
		var best poker.HandRank
		for _, seat := range pot.Eligible {
			if seat < len(folded) && folded[seat] {
				continue
			}
			rank, ok := rankings[seat]
			if !ok {
				continue
			}
			switch {
			case len(winners) == 0 || poker.Compare(rank, best) > 0:
				winners = winners[:0]
				winners = append(winners, seat)
				best = rank
			case poker.Compare(rank, best) == 0:
				winners = append(winners, seat)
			}
		}
		if len(winners) == 0 {
			continue
		}

		share := pot.Amount / int64(len(winners))
		remainder := pot.Amount % int64(len(winners))
		for _, seat := range winners {
			payouts[seat] += share
		}
		if remainder > 0 {
			payouts[oddChipSeat(winners, dealerIdx, seats)] += remainder
		}
	}

	return payouts
}

// oddChipSeat picks the winner with the smallest clockwise distance
// from the dealer button.
func oddChipSeat(winners []int, dealerIdx, seats int) int {
	bestSeat := winners[0]
	bestDist := clockwiseDist(winners[0], dealerIdx, seats)
	for _, seat := range winners[1:] {
		if d := clockwiseDist(seat, dealerIdx, seats); d < bestDist {
			bestDist = d
			bestSeat = seat
		}
	}
	return bestSeat
}

func clockwiseDist(seat, dealerIdx, seats int) int {
	return ((seat - dealerIdx - 1) % seats + seats) % seats
}
