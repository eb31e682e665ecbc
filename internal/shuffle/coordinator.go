// Package shuffle implements a commit-reveal deck shuffle. Each
// participant commits a digest of a private secret, then reveals the
// secret; the deck order is derived from every secret at once, so no
// single participant can predict or steer the permutation.
package shuffle

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/lox/tablestakes/poker"
)

// Phase is the coordinator's lifecycle position.
type Phase int

const (
	PhaseCommit Phase = iota
	PhaseReveal
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseCommit:
		return "commit"
	case PhaseReveal:
		return "reveal"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

const (
	// MinSecretLen and MaxSecretLen bound revealed secret sizes.
	MinSecretLen = 16
	MaxSecretLen = 32
)

var (
	ErrWrongPhase       = errors.New("shuffle: operation not valid in current phase")
	ErrSeatOutOfRange   = errors.New("shuffle: seat index out of range")
	ErrAlreadyCommitted = errors.New("shuffle: seat already committed")
	ErrAlreadyRevealed  = errors.New("shuffle: seat already revealed")
	ErrSecretLength     = errors.New("shuffle: secret length out of range")
	ErrSecretMismatch   = errors.New("shuffle: secret does not match commitment")
)

// CommitmentFor computes the digest a participant commits for a secret.
func CommitmentFor(secret []byte) [32]byte {
	return sha256.Sum256(secret)
}

// Coordinator runs one commit-reveal round for a fixed participant set.
// It is not safe for concurrent use; the owning table serializes access.
type Coordinator struct {
	phase     Phase
	digests   [][32]byte
	committed []bool
	secrets   [][]byte
	revealed  []bool
	pending   int
	deck      []poker.Card
}

// New creates a coordinator for n participants, indexed 0..n-1.
func New(n int) *Coordinator {
	return &Coordinator{
		phase:     PhaseCommit,
		digests:   make([][32]byte, n),
		committed: make([]bool, n),
		secrets:   make([][]byte, n),
		revealed:  make([]bool, n),
		pending:   n,
	}
}

// Commit records seat idx's digest. Once every seat has committed the
// coordinator moves to the reveal phase.
func (c *Coordinator) Commit(idx int, digest [32]byte) error {
	if c.phase != PhaseCommit {
		return fmt.Errorf("commit in %s phase: %w", c.phase, ErrWrongPhase)
	}
	if idx < 0 || idx >= len(c.committed) {
		return fmt.Errorf("seat %d: %w", idx, ErrSeatOutOfRange)
	}
	if c.committed[idx] {
		return fmt.Errorf("seat %d: %w", idx, ErrAlreadyCommitted)
	}
	c.digests[idx] = digest
	c.committed[idx] = true
	c.pending--
	if c.pending == 0 {
		c.phase = PhaseReveal
		c.pending = len(c.committed)
	}
	return nil
}

// Reveal checks seat idx's secret against its commitment and records it.
// A mismatch rejects only that seat; the round keeps waiting for a
// matching reveal. Once every seat has revealed the deck is derived.
func (c *Coordinator) Reveal(idx int, secret []byte) error {
	if c.phase != PhaseReveal {
		return fmt.Errorf("reveal in %s phase: %w", c.phase, ErrWrongPhase)
	}
	if idx < 0 || idx >= len(c.revealed) {
		return fmt.Errorf("seat %d: %w", idx, ErrSeatOutOfRange)
	}
	if c.revealed[idx] {
		return fmt.Errorf("seat %d: %w", idx, ErrAlreadyRevealed)
	}
	if len(secret) < MinSecretLen || len(secret) > MaxSecretLen {
		return fmt.Errorf("seat %d: %d bytes: %w", idx, len(secret), ErrSecretLength)
	}
	digest := sha256.Sum256(secret)
	if subtle.ConstantTimeCompare(digest[:], c.digests[idx][:]) != 1 {
		return fmt.Errorf("seat %d: %w", idx, ErrSecretMismatch)
	}
	c.secrets[idx] = append([]byte(nil), secret...)
	c.revealed[idx] = true
	c.pending--
	if c.pending == 0 {
		c.deck = derive(c.secrets)
		c.phase = PhaseDone
	}
	return nil
}

// derive turns the combined secrets into a 52-card permutation. The
// seed hashes all secrets in seat order; the keystream is the hash
// chain seed, H(seed), H(H(seed)), ... consumed 8 bytes per draw.
func derive(secrets [][]byte) []poker.Card {
	h := sha256.New()
	for _, s := range secrets {
		h.Write(s)
	}
	var seed [32]byte
	h.Sum(seed[:0])

	block := seed
	offset := 0
	draw := func() uint64 {
		if offset+8 > len(block) {
			block = sha256.Sum256(block[:])
			offset = 0
		}
		v := binary.BigEndian.Uint64(block[offset:])
		offset += 8
		return v
	}

	deck := poker.OrderedDeck()
	for i := len(deck) - 1; i > 0; i-- {
		j := int(draw() % uint64(i+1))
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}

// Deck returns the derived permutation, nil until the round is done.
func (c *Coordinator) Deck() []poker.Card {
	if c.phase != PhaseDone {
		return nil
	}
	return c.deck
}

// Phase reports the coordinator's current phase.
func (c *Coordinator) Phase() Phase { return c.phase }

// Done reports whether the deck has been derived.
func (c *Coordinator) Done() bool { return c.phase == PhaseDone }

// Committed reports whether seat idx has committed.
func (c *Coordinator) Committed(idx int) bool {
	return idx >= 0 && idx < len(c.committed) && c.committed[idx]
}

// Revealed reports whether seat idx has revealed a matching secret.
func (c *Coordinator) Revealed(idx int) bool {
	return idx >= 0 && idx < len(c.revealed) && c.revealed[idx]
}
