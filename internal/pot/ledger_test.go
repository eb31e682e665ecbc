package pot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/tablestakes/poker"
)

func rankOf(t *testing.T, notations ...string) poker.HandRank {
	t.Helper()
	require.Len(t, notations, 7)
	var hand [7]poker.Card
	for i, n := range notations {
		c, err := poker.ParseCard(n)
		require.NoError(t, err)
		hand[i] = c
	}
	return poker.Evaluate7(hand)
}

func TestSinglePot(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	l.AddBet(0, 100)
	l.AddBet(1, 100)
	l.AddBet(2, 100)
	require.Equal(t, int64(300), l.Total())

	l.CollectBets(make([]bool, 3))

	pots := l.Pots()
	require.Len(t, pots, 1)
	assert.Equal(t, int64(300), pots[0].Amount)
	assert.Equal(t, []int{0, 1, 2}, pots[0].Eligible)
	assert.Zero(t, l.RoundBet(0))
	assert.Equal(t, int64(100), l.Contributed(0))
	assert.Equal(t, int64(300), l.Total())
}

func TestSidePotScenario(t *testing.T) {
	t.Parallel()

	// Seat 0 all-in for 1000, seat 1 raises to 2000, seat 2 calls.
	l := NewLedger()
	l.AddBet(0, 1000)
	l.AddBet(1, 2000)
	l.AddBet(2, 2000)
	l.CollectBets(make([]bool, 3))

	pots := l.Pots()
	require.Len(t, pots, 2)
	assert.Equal(t, int64(3000), pots[0].Amount)
	assert.Equal(t, []int{0, 1, 2}, pots[0].Eligible)
	assert.Equal(t, int64(2000), pots[1].Amount)
	assert.Equal(t, []int{1, 2}, pots[1].Eligible)
}

func TestFoldedSeatFundsButCannotWin(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	l.AddBet(0, 500)
	l.AddBet(1, 500)
	l.AddBet(2, 500)
	folded := []bool{false, false, true}
	l.CollectBets(folded)

	pots := l.Pots()
	require.Len(t, pots, 1)
	assert.Equal(t, int64(1500), pots[0].Amount)
	assert.Equal(t, []int{0, 1}, pots[0].Eligible)
}

func TestFoldedBetDefinesLevel(t *testing.T) {
	t.Parallel()

	// Seat 2 folds after betting 300; its bet level splits collection
	// into two layers, but both carry the same eligible set and merge,
	// so no chip is counted twice.
	l := NewLedger()
	l.AddBet(0, 800)
	l.AddBet(1, 800)
	l.AddBet(2, 300)
	folded := []bool{false, false, true}
	l.CollectBets(folded)

	pots := l.Pots()
	require.Len(t, pots, 1)
	assert.Equal(t, int64(1900), pots[0].Amount)
	assert.Equal(t, []int{0, 1}, pots[0].Eligible)
}

func TestLayerMergeAcrossStreets(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	l.AddBet(0, 100)
	l.AddBet(1, 100)
	l.CollectBets(make([]bool, 2))
	l.AddBet(0, 250)
	l.AddBet(1, 250)
	l.CollectBets(make([]bool, 2))

	pots := l.Pots()
	require.Len(t, pots, 1)
	assert.Equal(t, int64(700), pots[0].Amount)
}

func TestCallAmount(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	l.AddBet(0, 100)
	l.AddBet(1, 40)
	assert.Equal(t, int64(0), l.CallAmount(0))
	assert.Equal(t, int64(60), l.CallAmount(1))
	assert.Equal(t, int64(100), l.CallAmount(2))
	assert.Equal(t, int64(100), l.MaxRoundBet())
}

func TestConservation(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	bets := []struct {
		seat   int
		amount int64
	}{
		{0, 50}, {1, 100}, {2, 100}, {0, 50},
		{1, 75}, {2, 200}, {0, 225}, {1, 125},
	}
	var total int64
	for _, b := range bets {
		l.AddBet(b.seat, b.amount)
		total += b.amount
	}
	l.CollectBets(make([]bool, 3))

	var potSum int64
	for _, p := range l.Pots() {
		potSum += p.Amount
	}
	require.Equal(t, total, potSum)
	require.Equal(t, total, l.Total())
}

func TestDistributionSingleWinner(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	for seat := 0; seat < 3; seat++ {
		l.AddBet(seat, 100)
	}
	l.CollectBets(make([]bool, 3))

	rankings := map[int]poker.HandRank{
		0: rankOf(t, "Ac", "Ad", "Kh", "Qs", "Jc", "4d", "2h"),
		1: rankOf(t, "Kc", "Kd", "Ah", "Qc", "Jd", "4s", "2s"),
		2: rankOf(t, "2c", "3d", "5h", "7s", "9c", "Jh", "Qd"),
	}
	payouts := l.Distribution(rankings, make([]bool, 3), 0, 3)
	assert.Equal(t, map[int]int64{0: 300}, payouts)
}

func TestDistributionSplitWithOddChip(t *testing.T) {
	t.Parallel()

	// 303 chips split between two board-playing winners; the odd chip
	// goes to the winner nearest clockwise from the dealer.
	build := func() *Ledger {
		l := NewLedger()
		l.AddBet(0, 101)
		l.AddBet(1, 101)
		l.AddBet(2, 101)
		l.CollectBets([]bool{false, false, true})
		return l
	}

	board := rankOf(t, "Ac", "Kd", "Qh", "Js", "9c", "3d", "2h")
	rankings := map[int]poker.HandRank{0: board, 1: board}
	folded := []bool{false, false, true}

	// Dealer at seat 1: clockwise order from the dealer is 2, 0, 1,
	// so seat 0 gets the odd chip.
	payouts := build().Distribution(rankings, folded, 1, 3)
	assert.Equal(t, int64(152), payouts[0])
	assert.Equal(t, int64(151), payouts[1])

	// Dealer at seat 0: seat 1 is nearest clockwise.
	payouts = build().Distribution(rankings, folded, 0, 3)
	assert.Equal(t, int64(151), payouts[0])
	assert.Equal(t, int64(152), payouts[1])
}

func TestDistributionSidePots(t *testing.T) {
	t.Parallel()

	// Short stack has the best hand: wins the main pot only, the
	// side pot goes to the better of the remaining two.
	l := NewLedger()
	l.AddBet(0, 1000)
	l.AddBet(1, 2000)
	l.AddBet(2, 2000)
	l.CollectBets(make([]bool, 3))

	rankings := map[int]poker.HandRank{
		0: rankOf(t, "Ac", "Ad", "Ah", "Qs", "Jc", "4d", "2h"), // trips
		1: rankOf(t, "Kc", "Kd", "Ah", "Qc", "Jd", "4s", "2s"), // pair
		2: rankOf(t, "2c", "3d", "5h", "7s", "9c", "Jh", "Qd"), // high
	}
	payouts := l.Distribution(rankings, make([]bool, 3), 0, 3)
	assert.Equal(t, int64(3000), payouts[0])
	assert.Equal(t, int64(2000), payouts[1])
	assert.Zero(t, payouts[2])

	var paid int64
	for _, amt := range payouts {
		paid += amt
	}
	assert.Equal(t, l.Total(), paid)
}

func TestDistributionSkipsSeatsWithoutRanking(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	l.AddBet(0, 100)
	l.AddBet(1, 100)
	l.CollectBets(make([]bool, 2))

	rankings := map[int]poker.HandRank{
		1: rankOf(t, "2c", "3d", "5h", "7s", "9c", "Jh", "Qd"),
	}
	payouts := l.Distribution(rankings, make([]bool, 2), 0, 2)
	assert.Equal(t, map[int]int64{1: 200}, payouts)
}

func TestContributionsSurviveCollection(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	l.AddBet(0, 100)
	l.AddBet(1, 300)
	l.CollectBets(make([]bool, 2))
	l.AddBet(0, 50)

	contribs := l.Contributions()
	assert.Equal(t, int64(150), contribs[0])
	assert.Equal(t, int64(300), contribs[1])
}
