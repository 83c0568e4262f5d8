package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"map-catalog-service/internal/core/domain"
	"map-catalog-service/internal/core/ports/output"
)

type MapService struct {
	maps ports.MapRepository
}

func NewMapService(maps ports.MapRepository) *MapService {
	return &MapService{maps: maps}
}

// Get returns a map unless it is archived.
func (s *MapService) Get(ctx context.Context, id uuid.UUID) (*domain.Map, error) {
	m, err := s.maps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.IsArchived() {
		return nil, domain.ErrMapNotFound
	}
	return m, nil
}

// GetByTicket looks a map up by its correlation token. Archived maps are
// still returned so generation callbacks can resolve them.
func (s *MapService) GetByTicket(ctx context.Context, ticket string) (*domain.Map, error) {
	ticket = strings.TrimSpace(ticket)
	if ticket == "" {
		return nil, domain.ErrMapNotFound
	}
	return s.maps.GetByTicket(ctx, ticket)
}

func (s *MapService) owned(ctx context.Context, id uuid.UUID, userID string) (*domain.Map, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrMissingUserID
	}
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.IsOwnedBy(userID) {
		return nil, domain.ErrNotOwner
	}
	return m, nil
}

// Archive hides the map from every listing. Only the owner may archive.
func (s *MapService) Archive(ctx context.Context, id uuid.UUID, userID string) error {
	if _, err := s.owned(ctx, id, userID); err != nil {
		return err
	}
	if err := s.maps.Archive(ctx, id); err != nil {
		return err
	}
	log.WithFields(log.Fields{"map_id": id, "user_id": userID}).Info("map archived")
	return nil
}

// Delete removes the map permanently. Only the owner may delete.
func (s *MapService) Delete(ctx context.Context, id uuid.UUID, userID string) error {
	if _, err := s.owned(ctx, id, userID); err != nil {
		return err
	}
	if err := s.maps.Delete(ctx, id); err != nil {
		return err
	}
	log.WithFields(log.Fields{"map_id": id, "user_id": userID}).Info("map deleted")
	return nil
}

// PrintSize converts the map's pixel width to a print size in unit.
func (s *MapService) PrintSize(ctx context.Context, id uuid.UUID, unit domain.SizeUnit) (*domain.PrintSize, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	width := m.Design.Width
	if width <= 0 {
		width = m.Tier.Info().MaxPxSize
	}
	size := domain.CalculatePrintSize(float64(width), m.Design.Aspect, unit, m.Design.Landscape)
	return &size, nil
}
