// Package engine hosts tables and enforces the single-writer boundary
// around each one. Every operation acquires the table's lock, mutates
// to completion and releases; no partial state is ever observable.
package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/lox/tablestakes/internal/table"
)

var (
	ErrTableNotFound = errors.New("engine: table not found")
	ErrNotAuthorized = errors.New("engine: not authorized")
	ErrServiceClosed = errors.New("engine: service closed")
)

// Service owns a uuid-keyed set of tables.
type Service struct {
	mu         sync.RWMutex
	tables     map[uuid.UUID]*managedTable
	closed     bool
	adminToken string
	clock      quartz.Clock
	logger     *log.Logger
	custody    table.Custody
}

type managedTable struct {
	mu  sync.Mutex
	tbl *table.Table
}

// NewService creates an empty service. adminToken guards the
// admin-only operations.
func NewService(adminToken string, clock quartz.Clock, logger *log.Logger, custody table.Custody) *Service {
	return &Service{
		tables:     make(map[uuid.UUID]*managedTable),
		adminToken: adminToken,
		clock:      clock,
		logger:     logger,
		custody:    custody,
	}
}

// CreateTable registers a new table and returns its ID.
func (s *Service) CreateTable(cfg table.Config) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return uuid.Nil, ErrServiceClosed
	}
	id := uuid.New()
	s.tables[id] = &managedTable{
		tbl: table.New(cfg, s.clock, s.logger.With("table", id), s.custody),
	}
	s.logger.Info("table created", "table", id, "seats", cfg.Seats)
	return id, nil
}

// Close marks the service closed. Existing tables remain queryable.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *Service) managed(id uuid.UUID) (*managedTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mt, ok := s.tables[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrTableNotFound)
	}
	return mt, nil
}

// do runs fn with exclusive ownership of the table.
func (s *Service) do(id uuid.UUID, fn func(*table.Table) error) error {
	mt, err := s.managed(id)
	if err != nil {
		return err
	}
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return fn(mt.tbl)
}

// View runs fn with shared-exclusive ownership for reads. fn must not
// retain the table past the call.
func (s *Service) View(id uuid.UUID, fn func(*table.Table)) error {
	return s.do(id, func(t *table.Table) error {
		fn(t)
		return nil
	})
}

// Sit seats an occupant. Only between hands.
func (s *Service) Sit(id uuid.UUID, seat int, occupant string, buyIn int64) error {
	return s.do(id, func(t *table.Table) error { return t.Sit(seat, occupant, buyIn) })
}

// Leave vacates a seat and returns the chips held.
func (s *Service) Leave(id uuid.UUID, seat int) (int64, error) {
	var chips int64
	err := s.do(id, func(t *table.Table) error {
		var err error
		chips, err = t.Leave(seat)
		return err
	})
	return chips, err
}

// TopUp adds chips to a seat between hands.
func (s *Service) TopUp(id uuid.UUID, seat int, amount int64) error {
	return s.do(id, func(t *table.Table) error { return t.TopUp(seat, amount) })
}

// StartHand opens a new hand on the table.
func (s *Service) StartHand(id uuid.UUID) error {
	return s.do(id, func(t *table.Table) error { return t.StartHand() })
}

// SubmitCommitment records a seat's shuffle commitment.
func (s *Service) SubmitCommitment(id uuid.UUID, seat int, digest [32]byte) error {
	return s.do(id, func(t *table.Table) error { return t.SubmitCommitment(seat, digest) })
}

// RevealSecret submits a seat's shuffle preimage.
func (s *Service) RevealSecret(id uuid.UUID, seat int, secret []byte) error {
	return s.do(id, func(t *table.Table) error { return t.RevealSecret(seat, secret) })
}

// Act applies a betting action for the seat on turn.
func (s *Service) Act(id uuid.UUID, seat int, action table.Action, amount int64) error {
	return s.do(id, func(t *table.Table) error { return t.Act(seat, action, amount) })
}

// PostStraddle posts a straddle for the first-to-act seat.
func (s *Service) PostStraddle(id uuid.UUID, seat int) error {
	return s.do(id, func(t *table.Table) error { return t.PostStraddle(seat) })
}

// CheckTimeout drives time-based progress; anyone may call it.
func (s *Service) CheckTimeout(id uuid.UUID) error {
	return s.do(id, func(t *table.Table) error { return t.CheckTimeout() })
}

// AbortHand tears down the table's current hand. Admin only.
func (s *Service) AbortHand(id uuid.UUID, adminToken string) error {
	if adminToken != s.adminToken {
		return ErrNotAuthorized
	}
	return s.do(id, func(t *table.Table) error { return t.AbortHand() })
}
