// Package poker provides the card encoding and the seven-card hand
// evaluator shared by the table engine. Cards are integers 0-51 with
// rank = card mod 13 (0=Two .. 12=Ace) and suit = card div 13; this
// encoding and the packed tiebreak layouts in evaluator.go are stable
// wire formats and must not change.
package poker

import (
	"fmt"
	"strings"
)

// Card is a single playing card, 0-51.
type Card int

// DeckSize is the number of cards in a full deck.
const DeckSize = 52

// Rank indices within a suit.
const (
	Two = iota
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// Suit indices.
const (
	Clubs = iota
	Diamonds
	Hearts
	Spades
)

var (
	rankRunes = "23456789TJQKA"
	suitRunes = "cdhs"
	suitGlyph = []string{"♣", "♦", "♥", "♠"}
)

// NewCard builds a card from suit and rank indices.
func NewCard(suit, rank int) Card {
	return Card(suit*13 + rank)
}

// Rank returns the card's rank index, 0 (Two) through 12 (Ace).
func (c Card) Rank() int { return int(c) % 13 }

// Suit returns the card's suit index, 0-3.
func (c Card) Suit() int { return int(c) / 13 }

// Valid reports whether the card is in range.
func (c Card) Valid() bool { return c >= 0 && c < DeckSize }

// String renders the card as rank+suit glyph, e.g. "A♠".
func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return string(rankRunes[c.Rank()]) + suitGlyph[c.Suit()]
}

// Notation renders the card in two-letter notation, e.g. "As", "Td".
func (c Card) Notation() string {
	if !c.Valid() {
		return "??"
	}
	return string(rankRunes[c.Rank()]) + string(suitRunes[c.Suit()])
}

// ParseCard parses two-letter notation such as "As" or "td".
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("parse card %q: want 2 characters", s)
	}
	rank := strings.IndexByte(rankRunes, toUpper(s[0]))
	if rank < 0 {
		return 0, fmt.Errorf("parse card %q: unknown rank %q", s, s[0])
	}
	suit := strings.IndexByte(suitRunes, byte(toLower(s[1])))
	if suit < 0 {
		return 0, fmt.Errorf("parse card %q: unknown suit %q", s, s[1])
	}
	return NewCard(suit, rank), nil
}

func toUpper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func toLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}

// OrderedDeck returns the identity permutation of all 52 cards.
func OrderedDeck() []Card {
	deck := make([]Card, DeckSize)
	for i := range deck {
		deck[i] = Card(i)
	}
	return deck
}

// ValidDeck reports whether deck is a permutation of all 52 cards.
func ValidDeck(deck []Card) bool {
	if len(deck) != DeckSize {
		return false
	}
	var seen [DeckSize]bool
	for _, c := range deck {
		if !c.Valid() || seen[c] {
			return false
		}
		seen[c] = true
	}
	return true
}
