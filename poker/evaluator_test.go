package poker

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHand(t *testing.T, notations ...string) [7]Card {
	t.Helper()
	require.Len(t, notations, 7)
	var hand [7]Card
	for i, n := range notations {
		c, err := ParseCard(n)
		require.NoError(t, err)
		hand[i] = c
	}
	return hand
}

func TestEvaluate7Categories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cards    []string
		category Category
		tiebreak uint64
	}{
		{
			name:     "royal flush",
			cards:    []string{"As", "Ks", "Qs", "Js", "Ts", "2c", "3d"},
			category: RoyalFlush,
			tiebreak: 0,
		},
		{
			name:     "straight flush nine high",
			cards:    []string{"9h", "8h", "7h", "6h", "5h", "Ac", "Ad"},
			category: StraightFlush,
			tiebreak: uint64(Nine),
		},
		{
			name:     "steel wheel",
			cards:    []string{"Ad", "2d", "3d", "4d", "5d", "Kc", "Ks"},
			category: StraightFlush,
			tiebreak: uint64(Five),
		},
		{
			name:     "four of a kind with best kicker",
			cards:    []string{"9c", "9d", "9h", "9s", "Kd", "Qc", "2h"},
			category: FourOfAKind,
			tiebreak: uint64(Nine)<<8 | uint64(King),
		},
		{
			name:     "full house from two trips",
			cards:    []string{"Qc", "Qd", "Qh", "8c", "8d", "8h", "2s"},
			category: FullHouse,
			tiebreak: uint64(Queen)<<8 | uint64(Eight),
		},
		{
			name:     "full house trips plus pair",
			cards:    []string{"5c", "5d", "5h", "Ac", "Ad", "Kc", "2s"},
			category: FullHouse,
			tiebreak: uint64(Five)<<8 | uint64(Ace),
		},
		{
			name:  "flush takes best five suited",
			cards: []string{"Ah", "Jh", "9h", "6h", "3h", "2h", "Ks"},
			// top five of six hearts, the 2h drops off
			category: Flush,
			tiebreak: uint64(Ace)<<32 | uint64(Jack)<<24 | uint64(Nine)<<16 |
				uint64(Six)<<8 | uint64(Three),
		},
		{
			name:     "broadway straight",
			cards:    []string{"Ac", "Kd", "Qh", "Js", "Tc", "4d", "2h"},
			category: Straight,
			tiebreak: uint64(Ace),
		},
		{
			name:     "wheel straight",
			cards:    []string{"Ac", "2d", "3h", "4s", "5c", "9d", "Jh"},
			category: Straight,
			tiebreak: uint64(Five),
		},
		{
			name:     "seven card run takes highest five",
			cards:    []string{"3c", "4d", "5h", "6s", "7c", "8d", "9h"},
			category: Straight,
			tiebreak: uint64(Nine),
		},
		{
			name:     "three of a kind",
			cards:    []string{"7c", "7d", "7h", "Ac", "Td", "4s", "2h"},
			category: ThreeOfAKind,
			tiebreak: uint64(Seven)<<16 | uint64(Ace)<<8 | uint64(Ten),
		},
		{
			name:  "two pair picks best two of three",
			cards: []string{"Jc", "Jd", "8h", "8s", "3c", "3d", "Ah"},
			// the third pair's rank only competes as a kicker candidate
			category: TwoPair,
			tiebreak: uint64(Jack)<<16 | uint64(Eight)<<8 | uint64(Ace),
		},
		{
			name:     "one pair with three kickers",
			cards:    []string{"Tc", "Td", "Ah", "Js", "7c", "4d", "2h"},
			category: Pair,
			tiebreak: uint64(Ten)<<24 | uint64(Ace)<<16 | uint64(Jack)<<8 | uint64(Seven),
		},
		{
			name:     "high card top five",
			cards:    []string{"Ac", "Jd", "9h", "7s", "5c", "3d", "2h"},
			category: HighCard,
			tiebreak: uint64(Ace)<<32 | uint64(Jack)<<24 | uint64(Nine)<<16 |
				uint64(Seven)<<8 | uint64(Five),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Evaluate7(mustHand(t, tt.cards...))
			assert.Equal(t, tt.category, got.Category, "category")
			assert.Equal(t, tt.tiebreak, got.Tiebreak, "tiebreak")
		})
	}
}

func TestEvaluate7FlushBeatsHiddenStraight(t *testing.T) {
	t.Parallel()

	// Five spades and a straight both present; the flush wins.
	got := Evaluate7(mustHand(t, "2s", "5s", "8s", "Js", "Ks", "9d", "Th"))
	assert.Equal(t, Flush, got.Category)
}

func TestEvaluate7PermutationInvariant(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 200; trial++ {
		deck := OrderedDeck()
		rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

		var hand [7]Card
		copy(hand[:], deck[:7])
		want := Evaluate7(hand)

		for p := 0; p < 10; p++ {
			perm := hand
			rng.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
			require.Equal(t, want, Evaluate7(perm))
		}
	}
}

func TestCompareOrdering(t *testing.T) {
	t.Parallel()

	// Strictly ascending strength, one entry per boundary we care about.
	hands := [][]string{
		{"Ac", "Jd", "9h", "7s", "5c", "3d", "2h"}, // high card
		{"2c", "2d", "Ah", "Js", "7c", "4d", "9h"}, // pair of twos
		{"Ac", "Ad", "Kh", "Js", "7c", "4d", "9h"}, // pair of aces
		{"2c", "2d", "3h", "3s", "7c", "8d", "9h"}, // two pair
		{"2c", "2d", "2h", "As", "Kc", "4d", "9h"}, // trips
		{"Ac", "2d", "3h", "4s", "5c", "9d", "Jh"}, // wheel
		{"Ac", "Kd", "Qh", "Js", "Tc", "4d", "2h"}, // broadway
		{"2h", "5h", "8h", "Jh", "Kh", "Ac", "Qd"}, // flush
		{"2c", "2d", "2h", "3s", "3c", "Ad", "Kh"}, // full house
		{"2c", "2d", "2h", "2s", "3c", "4d", "5h"}, // quads
		{"2h", "3h", "4h", "5h", "6h", "Ac", "Kd"}, // straight flush
		{"As", "Ks", "Qs", "Js", "Ts", "2c", "3d"}, // royal
	}

	ranks := make([]HandRank, len(hands))
	for i, h := range hands {
		ranks[i] = Evaluate7(mustHand(t, h...))
	}

	for i := 0; i < len(ranks); i++ {
		require.Zero(t, Compare(ranks[i], ranks[i]))
		for j := i + 1; j < len(ranks); j++ {
			assert.Equal(t, -1, Compare(ranks[i], ranks[j]), "%d vs %d", i, j)
			assert.Equal(t, 1, Compare(ranks[j], ranks[i]), "%d vs %d", j, i)
		}
	}
}

func TestCompareTransitive(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	randRank := func() HandRank {
		deck := OrderedDeck()
		rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
		var hand [7]Card
		copy(hand[:], deck[:7])
		return Evaluate7(hand)
	}

	for trial := 0; trial < 500; trial++ {
		a, b, c := randRank(), randRank(), randRank()
		if Compare(a, b) >= 0 && Compare(b, c) >= 0 {
			require.GreaterOrEqual(t, Compare(a, c), 0)
		}
		require.Equal(t, -Compare(b, a), Compare(a, b))
	}
}

func TestKickerDecides(t *testing.T) {
	t.Parallel()

	better := Evaluate7(mustHand(t, "Ac", "Ad", "Kh", "Qs", "Jc", "4d", "2h"))
	worse := Evaluate7(mustHand(t, "As", "Ah", "Kd", "Qc", "Tc", "4s", "2d"))
	assert.Equal(t, 1, Compare(better, worse))

	// Board plays, hole kickers below the top five do not.
	tieA := Evaluate7(mustHand(t, "Ac", "Kd", "Qh", "Js", "9c", "4d", "2h"))
	tieB := Evaluate7(mustHand(t, "Ac", "Kd", "Qh", "Js", "9c", "3d", "2s"))
	assert.Zero(t, Compare(tieA, tieB))
}
