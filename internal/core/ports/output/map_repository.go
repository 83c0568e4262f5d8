package ports

import (
	"context"

	"github.com/google/uuid"

	"map-catalog-service/internal/core/domain"
)

// MapQuery selects an ordered window of maps. After, when set, excludes
// every map up to and including the cursor in Sort order.
type MapQuery struct {
	Filters domain.FilterSet
	Sort    domain.SortKey
	After   *domain.Cursor
	Limit   int
}

type MapRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Map, error)
	GetByTicket(ctx context.Context, ticket string) (*domain.Map, error)
	// Query never returns archived maps.
	Query(ctx context.Context, q MapQuery) ([]*domain.Map, error)
	Count(ctx context.Context, filters domain.FilterSet) (int, error)
	Create(ctx context.Context, m *domain.Map) error
	Archive(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	// AddVoter appends userID to the voter set and recounts in one
	// conditional write. It returns the new count.
	AddVoter(ctx context.Context, id uuid.UUID, userID string) (int, error)
	RemoveVoter(ctx context.Context, id uuid.UUID, userID string) (int, error)
}
