package ports

import (
	"context"

	"map-catalog-service/internal/core/domain"
)

type GeocoderClient interface {
	Search(ctx context.Context, text, locale string, limit int) ([]domain.Suggestion, error)
}
