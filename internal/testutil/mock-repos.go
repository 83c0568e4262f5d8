package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"map-catalog-service/internal/core/domain"
	"map-catalog-service/internal/core/ports/output"
)

// MockMapRepo is a mock of MapRepository.
type MockMapRepo struct {
	mock.Mock
}

func (m *MockMapRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Map, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Map), args.Error(1)
}

func (m *MockMapRepo) GetByTicket(ctx context.Context, ticket string) (*domain.Map, error) {
	args := m.Called(ctx, ticket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Map), args.Error(1)
}

func (m *MockMapRepo) Query(ctx context.Context, q ports.MapQuery) ([]*domain.Map, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Map), args.Error(1)
}

func (m *MockMapRepo) Count(ctx context.Context, filters domain.FilterSet) (int, error) {
	args := m.Called(ctx, filters)
	return args.Int(0), args.Error(1)
}

func (m *MockMapRepo) Create(ctx context.Context, mp *domain.Map) error {
	args := m.Called(ctx, mp)
	return args.Error(0)
}

func (m *MockMapRepo) Archive(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMapRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMapRepo) AddVoter(ctx context.Context, id uuid.UUID, userID string) (int, error) {
	args := m.Called(ctx, id, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockMapRepo) RemoveVoter(ctx context.Context, id uuid.UUID, userID string) (int, error) {
	args := m.Called(ctx, id, userID)
	return args.Int(0), args.Error(1)
}

// MockAccountRepo is a mock of AccountRepository.
type MockAccountRepo struct {
	mock.Mock
}

func (m *MockAccountRepo) Get(ctx context.Context, userID string) (*domain.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepo) Initialize(ctx context.Context, userID string, credits int) (*domain.Account, bool, error) {
	args := m.Called(ctx, userID, credits)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Account), args.Bool(1), args.Error(2)
}

func (m *MockAccountRepo) Debit(ctx context.Context, userID string, amount int, mut ports.Mutation) (int, error) {
	args := m.Called(ctx, userID, amount, mut)
	return args.Int(0), args.Error(1)
}

func (m *MockAccountRepo) Credit(ctx context.Context, userID string, amount int, mut ports.Mutation) (int, error) {
	args := m.Called(ctx, userID, amount, mut)
	return args.Int(0), args.Error(1)
}

func (m *MockAccountRepo) History(ctx context.Context, userID string, limit int) ([]*domain.LedgerEntry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LedgerEntry), args.Error(1)
}

// MockGeocoderClient is a mock of GeocoderClient.
type MockGeocoderClient struct {
	mock.Mock
}

func (m *MockGeocoderClient) Search(ctx context.Context, text, locale string, limit int) ([]domain.Suggestion, error) {
	args := m.Called(ctx, text, locale, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Suggestion), args.Error(1)
}

// MockMetrics is a mock of Metrics. Tests that don't assert on metrics
// should use ports.NoopMetrics instead.
type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) IncPurchase(state string) {
	m.Called(state)
}

func (m *MockMetrics) IncVote(op, outcome string) {
	m.Called(op, outcome)
}

func (m *MockMetrics) IncLedger(op, outcome string) {
	m.Called(op, outcome)
}

func (m *MockMetrics) IncCursorSource(source string) {
	m.Called(source)
}

func (m *MockMetrics) ObservePage(sort string, d time.Duration) {
	m.Called(sort, d)
}
