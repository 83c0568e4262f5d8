package testutil

import (
	"time"

	"github.com/google/uuid"

	"map-catalog-service/internal/core/domain"
)

// BaseTime is the creation time of the first fixture map.
var BaseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// NewMap returns a finished map of tier owned by owner.
func NewMap(owner string, tier domain.Tier) *domain.Map {
	return &domain.Map{
		UID:       uuid.New(),
		CreatedAt: BaseTime,
		UpdatedAt: BaseTime,
		Owner:     owner,
		Email:     owner + "@example.com",
		Tier:      tier,
		Status:    domain.MapStatusSuccess,
		Ticket:    "T" + uuid.NewString()[:5],
		Title:     "Lisbon",
		Subtitle:  "Portugal",
		Location:  domain.Location{Name: "Lisbon", DisplayName: "Lisbon, Portugal", Lat: 38.72, Lon: -9.14},
		Design: domain.Design{
			Style:       "minimal",
			Composition: "centered",
			Aspect:      "2:3",
			Width:       tier.Info().MaxPxSize,
		},
		ImageURL: "https://cdn.example.com/maps/lisbon.png",
		Voters:   []string{},
	}
}

// SeedMaps stores n maps of tier owned by owner, created one minute apart
// starting at BaseTime, and returns them oldest first.
func SeedMaps(s *MemStore, n int, owner string, tier domain.Tier) []*domain.Map {
	out := make([]*domain.Map, 0, n)
	for i := 0; i < n; i++ {
		m := NewMap(owner, tier)
		m.CreatedAt = BaseTime.Add(time.Duration(i) * time.Minute)
		s.PutMap(m)
		out = append(out, m)
	}
	return out
}
