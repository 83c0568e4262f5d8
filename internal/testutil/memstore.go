package testutil

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"map-catalog-service/internal/core/domain"
	"map-catalog-service/internal/core/ports/output"
)

// MemStore is an in-memory MapRepository and AccountRepository. Every
// mutation runs under one lock, giving the same atomic conditional-write
// semantics as the SQL adapters.
type MemStore struct {
	mu         sync.Mutex
	maps       map[uuid.UUID]*domain.Map
	accounts   map[string]*domain.Account
	ledger     []*domain.LedgerEntry
	references map[string]int

	// FailCreate, when set, is returned by Create.
	FailCreate error
	// FailCredit, when set, is returned by Credit.
	FailCredit error
	// FailDebit, when set, is returned by Debit.
	FailDebit error
}

var (
	_ ports.MapRepository     = (*MemStore)(nil)
	_ ports.AccountRepository = (*MemStore)(nil)
)

func NewMemStore() *MemStore {
	return &MemStore{
		maps:       map[uuid.UUID]*domain.Map{},
		accounts:   map[string]*domain.Account{},
		references: map[string]int{},
	}
}

func copyMap(m *domain.Map) *domain.Map {
	c := *m
	c.Voters = append([]string{}, m.Voters...)
	return &c
}

// PutMap stores m as is, bypassing Create.
func (s *MemStore) PutMap(m *domain.Map) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maps[m.UID] = copyMap(m)
}

// Maps returns a snapshot of every stored map.
func (s *MemStore) Maps() []*domain.Map {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Map, 0, len(s.maps))
	for _, m := range s.maps {
		out = append(out, copyMap(m))
	}
	return out
}

func (s *MemStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Map, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.maps[id]
	if !ok {
		return nil, domain.ErrMapNotFound
	}
	return copyMap(m), nil
}

func (s *MemStore) GetByTicket(_ context.Context, ticket string) (*domain.Map, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.maps {
		if m.Ticket == ticket {
			return copyMap(m), nil
		}
	}
	return nil, domain.ErrMapNotFound
}

func (s *MemStore) Query(_ context.Context, q ports.MapQuery) ([]*domain.Map, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Map
	for _, m := range s.maps {
		if m.IsArchived() || !q.Filters.Matches(m) {
			continue
		}
		if q.After != nil && !q.After.After(m) {
			continue
		}
		out = append(out, copyMap(m))
	}
	slices.SortFunc(out, func(a, b *domain.Map) int {
		switch {
		case domain.Less(a, b, q.Sort):
			return -1
		case domain.Less(b, a, q.Sort):
			return 1
		}
		return 0
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *MemStore) Count(_ context.Context, filters domain.FilterSet) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.maps {
		if !m.IsArchived() && filters.Matches(m) {
			n++
		}
	}
	return n, nil
}

func (s *MemStore) Create(_ context.Context, m *domain.Map) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCreate != nil {
		return s.FailCreate
	}
	s.maps[m.UID] = copyMap(m)
	return nil
}

func (s *MemStore) Archive(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.maps[id]
	if !ok || m.IsArchived() {
		return domain.ErrMapNotFound
	}
	now := time.Now().UTC()
	m.ArchivedAt = &now
	return nil
}

func (s *MemStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.maps[id]; !ok {
		return domain.ErrMapNotFound
	}
	delete(s.maps, id)
	return nil
}

func (s *MemStore) AddVoter(_ context.Context, id uuid.UUID, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.maps[id]
	if !ok || m.IsArchived() {
		return 0, domain.ErrMapNotFound
	}
	if m.HasVoter(userID) {
		return 0, domain.ErrAlreadyVoted
	}
	m.Voters = append(m.Voters, userID)
	m.Votes = len(m.Voters)
	return m.Votes, nil
}

func (s *MemStore) RemoveVoter(_ context.Context, id uuid.UUID, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.maps[id]
	if !ok || m.IsArchived() {
		return 0, domain.ErrMapNotFound
	}
	if !m.HasVoter(userID) {
		return 0, domain.ErrNotVoted
	}
	m.Voters = slices.DeleteFunc(m.Voters, func(v string) bool { return v == userID })
	m.Votes = len(m.Voters)
	return m.Votes, nil
}

func (s *MemStore) Get(_ context.Context, userID string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[userID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	c := *a
	return &c, nil
}

func (s *MemStore) Initialize(_ context.Context, userID string, credits int) (*domain.Account, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[userID]; ok {
		c := *a
		return &c, false, nil
	}
	now := time.Now().UTC()
	a := &domain.Account{UID: userID, Credits: credits, CreatedAt: now, UpdatedAt: now}
	s.accounts[userID] = a
	s.record(userID, domain.LedgerInitial, credits, credits, ports.Mutation{Kind: domain.LedgerInitial})
	c := *a
	return &c, true, nil
}

func (s *MemStore) Debit(_ context.Context, userID string, amount int, mut ports.Mutation) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailDebit != nil {
		return 0, s.FailDebit
	}
	a, ok := s.accounts[userID]
	if !ok {
		return 0, domain.ErrAccountNotFound
	}
	if _, seen := s.references[referenceKey(userID, mut)]; seen && mut.Reference != "" {
		return a.Credits, nil
	}
	if a.Credits < amount {
		return 0, domain.ErrInsufficientCredits
	}
	a.Credits -= amount
	a.UpdatedAt = time.Now().UTC()
	s.record(userID, mut.Kind, -amount, a.Credits, mut)
	return a.Credits, nil
}

func (s *MemStore) Credit(_ context.Context, userID string, amount int, mut ports.Mutation) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCredit != nil {
		return 0, s.FailCredit
	}
	a, ok := s.accounts[userID]
	if !ok {
		return 0, domain.ErrAccountNotFound
	}
	if _, seen := s.references[referenceKey(userID, mut)]; seen && mut.Reference != "" {
		return a.Credits, nil
	}
	a.Credits += amount
	a.UpdatedAt = time.Now().UTC()
	s.record(userID, mut.Kind, amount, a.Credits, mut)
	return a.Credits, nil
}

func (s *MemStore) History(_ context.Context, userID string, limit int) ([]*domain.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.LedgerEntry{}
	for i := len(s.ledger) - 1; i >= 0; i-- {
		if s.ledger[i].UserID != userID {
			continue
		}
		e := *s.ledger[i]
		out = append(out, &e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *MemStore) record(userID string, kind domain.LedgerKind, amount, balance int, mut ports.Mutation) {
	e := &domain.LedgerEntry{
		ID:           int64(len(s.ledger) + 1),
		UserID:       userID,
		Kind:         kind,
		Amount:       amount,
		BalanceAfter: balance,
		Reference:    mut.Reference,
		Description:  mut.Description,
		CreatedAt:    time.Now().UTC(),
	}
	s.ledger = append(s.ledger, e)
	if mut.Reference != "" {
		s.references[referenceKey(userID, mut)] = len(s.ledger) - 1
	}
}

// referenceKey scopes a reference to its user and entry kind, matching the
// ledger_entries unique index.
func referenceKey(userID string, mut ports.Mutation) string {
	return userID + "|" + string(mut.Kind) + "|" + mut.Reference
}
