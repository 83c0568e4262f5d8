package dto

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"map-catalog-service/internal/core/domain"
)

func TestToPageRequest_Defaults(t *testing.T) {
	q := &PageQuery{}

	req, err := q.ToPageRequest(12)
	require.NoError(t, err)

	assert.Equal(t, domain.SortRecency, req.Sort)
	assert.Equal(t, 12, req.PageSize)
	assert.Equal(t, 0, req.Page)
	assert.Empty(t, req.Filters)
}

func TestToPageRequest_NamedFilters(t *testing.T) {
	q := &PageQuery{Sort: "votes", PageSize: 5, Tier: "m,l", Style: "noir", Composition: "all"}

	req, err := q.ToPageRequest(12)
	require.NoError(t, err)

	assert.Equal(t, domain.SortPopularity, req.Sort)
	assert.Equal(t, 5, req.PageSize)
	assert.Equal(t, domain.FilterSet{
		domain.In(domain.FieldTier, "m", "l"),
		domain.Eq(domain.FieldStyle, "noir"),
	}, req.Filters)
}

func TestToPageRequest_GenericFilters(t *testing.T) {
	q := &PageQuery{Filter: []string{"status:success", "owner:ne:u-1", "tier:all"}}

	req, err := q.ToPageRequest(10)
	require.NoError(t, err)

	assert.Equal(t, domain.FilterSet{
		domain.Eq(domain.FieldStatus, "success"),
		domain.Ne(domain.FieldOwner, "u-1"),
	}, req.Filters)
}

func TestToPageRequest_Invalid(t *testing.T) {
	_, err := (&PageQuery{Sort: "random"}).ToPageRequest(10)
	assert.ErrorIs(t, err, domain.ErrInvalidSort)

	_, err = (&PageQuery{Filter: []string{"tier"}}).ToPageRequest(10)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestToMapResponse(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m := &domain.Map{
		UID:       uuid.New(),
		CreatedAt: created,
		UpdatedAt: created,
		Owner:     "owner-1",
		Tier:      domain.TierLarge,
		Status:    domain.MapStatusSuccess,
		Votes:     2,
		Voters:    []string{"a", "b"},
	}

	resp := ToMapResponse(m, "b")
	assert.Equal(t, "2025-03-01T12:00:00Z", resp.CreatedAt)
	assert.Equal(t, "large", resp.TierName)
	assert.True(t, resp.HasVoted)
	assert.Equal(t, 3, resp.PurchaseCost)
	assert.True(t, resp.Purchasable)
	assert.Nil(t, resp.ArchivedAt)

	assert.False(t, ToMapResponse(m, "").HasVoted)
}
