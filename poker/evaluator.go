package poker

// Category is the hand class, 0 (high card) through 9 (royal flush).
type Category uint8

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// String returns a human-readable hand description.
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	default:
		return "Unknown"
	}
}

// HandRank is the strength of the best five-card hand within seven cards.
// Tiebreak packs the decisive ranks 8 bits per slot, highest first; its
// exact layout per category is a stable cross-implementation format.
type HandRank struct {
	Category Category
	Tiebreak uint64
}

// Compare returns 1 if a beats b, -1 if b beats a, 0 on a tie.
func Compare(a, b HandRank) int {
	if a.Category != b.Category {
		if a.Category > b.Category {
			return 1
		}
		return -1
	}
	if a.Tiebreak != b.Tiebreak {
		if a.Tiebreak > b.Tiebreak {
			return 1
		}
		return -1
	}
	return 0
}

// Evaluate7 evaluates the best 5-card hand from exactly 7 cards.
// It is deterministic and invariant under permutation of the input.
func Evaluate7(cards [7]Card) HandRank {
	var rankCounts [13]int
	var suitCounts [4]int
	for _, c := range cards {
		rankCounts[c.Rank()]++
		suitCounts[c.Suit()]++
	}

	// Flush suit first: a straight flush outranks everything else,
	// and with 7 cards a flush excludes quads and full houses.
	for suit := 0; suit < 4; suit++ {
		if suitCounts[suit] < 5 {
			continue
		}
		var suited [13]bool
		for _, c := range cards {
			if c.Suit() == suit {
				suited[c.Rank()] = true
			}
		}
		if high, ok := straightHigh(suited); ok {
			if high == Ace {
				return HandRank{Category: RoyalFlush}
			}
			return HandRank{Category: StraightFlush, Tiebreak: uint64(high)}
		}
		return HandRank{Category: Flush, Tiebreak: packTop(suited, 5)}
	}

	if quad := highestWithCount(rankCounts, 4); quad >= 0 {
		kicker := highestExcept(rankCounts, quad, -1)
		return HandRank{Category: FourOfAKind, Tiebreak: uint64(quad)<<8 | uint64(kicker)}
	}

	trips := highestWithCount(rankCounts, 3)
	if trips >= 0 {
		if pair := highestPairExcept(rankCounts, trips); pair >= 0 {
			return HandRank{Category: FullHouse, Tiebreak: uint64(trips)<<8 | uint64(pair)}
		}
	}

	var present [13]bool
	for r, n := range rankCounts {
		present[r] = n > 0
	}
	if high, ok := straightHigh(present); ok {
		return HandRank{Category: Straight, Tiebreak: uint64(high)}
	}

	if trips >= 0 {
		k1 := highestExcept(rankCounts, trips, -1)
		k2 := highestExcept(rankCounts, trips, k1)
		return HandRank{Category: ThreeOfAKind, Tiebreak: uint64(trips)<<16 | uint64(k1)<<8 | uint64(k2)}
	}

	if hi := highestWithAtLeast(rankCounts, 2); hi >= 0 {
		if lo := highestPairExcept(rankCounts, hi); lo >= 0 {
			kicker := highestExcept(rankCounts, hi, lo)
			return HandRank{Category: TwoPair, Tiebreak: uint64(hi)<<16 | uint64(lo)<<8 | uint64(kicker)}
		}
		k1 := highestExcept(rankCounts, hi, -1)
		k2 := highestExcept(rankCounts, hi, k1)
		k3 := highestExcept3(rankCounts, hi, k1, k2)
		return HandRank{Category: Pair,
			Tiebreak: uint64(hi)<<24 | uint64(k1)<<16 | uint64(k2)<<8 | uint64(k3)}
	}

	return HandRank{Category: HighCard, Tiebreak: packTop(present, 5)}
}

// straightHigh finds the highest 5-run of consecutive ranks, treating
// the wheel (A-2-3-4-5) as a 5-high straight.
func straightHigh(present [13]bool) (int, bool) {
	for high := Ace; high >= Six; high-- {
		run := true
		for r := high - 4; r <= high; r++ {
			if !present[r] {
				run = false
				break
			}
		}
		if run {
			return high, true
		}
	}
	if present[Ace] && present[Two] && present[Three] && present[Four] && present[Five] {
		return Five, true
	}
	return 0, false
}

// packTop packs the n highest present ranks 8 bits each, descending.
func packTop(present [13]bool, n int) uint64 {
	var packed uint64
	found := 0
	for r := Ace; r >= Two && found < n; r-- {
		if present[r] {
			packed = packed<<8 | uint64(r)
			found++
		}
	}
	return packed
}

// highestWithCount finds the highest rank with exactly n cards, -1 if none.
func highestWithCount(counts [13]int, n int) int {
	for r := Ace; r >= Two; r-- {
		if counts[r] == n {
			return r
		}
	}
	return -1
}

// highestWithAtLeast finds the highest rank with n or more cards, -1 if none.
func highestWithAtLeast(counts [13]int, n int) int {
	for r := Ace; r >= Two; r-- {
		if counts[r] >= n {
			return r
		}
	}
	return -1
}

// highestPairExcept finds the highest rank other than except that still
// holds at least a pair, -1 if none.
func highestPairExcept(counts [13]int, except int) int {
	for r := Ace; r >= Two; r-- {
		if r != except && counts[r] >= 2 {
			return r
		}
	}
	return -1
}

func highestExcept(counts [13]int, a, b int) int {
	for r := Ace; r >= Two; r-- {
		if r != a && r != b && counts[r] > 0 {
			return r
		}
	}
	return 0
}

func highestExcept3(counts [13]int, a, b, c int) int {
	for r := Ace; r >= Two; r-- {
		if r != a && r != b && r != c && counts[r] > 0 {
			return r
		}
	}
	return 0
}
