package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"map-catalog-service/internal/core/domain"
	"map-catalog-service/internal/testutil"
)

func TestMapService_Get(t *testing.T) {
	store := testutil.NewMemStore()
	m := testutil.NewMap("alice", domain.TierMedium)
	store.PutMap(m)
	svc := NewMapService(store)

	got, err := svc.Get(context.Background(), m.UID)
	require.NoError(t, err)
	assert.Equal(t, m.Title, got.Title)

	_, err = svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrMapNotFound)

	byTicket, err := svc.GetByTicket(context.Background(), " "+m.Ticket+" ")
	require.NoError(t, err)
	assert.Equal(t, m.UID, byTicket.UID)
}

func TestMapService_Archive(t *testing.T) {
	store := testutil.NewMemStore()
	m := testutil.NewMap("alice", domain.TierMedium)
	store.PutMap(m)
	svc := NewMapService(store)
	ctx := context.Background()

	err := svc.Archive(ctx, m.UID, "bob")
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	require.NoError(t, svc.Archive(ctx, m.UID, "alice"))

	_, err = svc.Get(ctx, m.UID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	byTicket, err := svc.GetByTicket(ctx, m.Ticket)
	require.NoError(t, err)
	assert.True(t, byTicket.IsArchived())
}

func TestMapService_Delete(t *testing.T) {
	store := testutil.NewMemStore()
	m := testutil.NewMap("alice", domain.TierMedium)
	store.PutMap(m)
	svc := NewMapService(store)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Delete(ctx, m.UID, ""), domain.ErrMissingUserID)
	assert.ErrorIs(t, svc.Delete(ctx, m.UID, "bob"), domain.ErrNotOwner)
	require.NoError(t, svc.Delete(ctx, m.UID, "alice"))
	assert.Empty(t, store.Maps())
}

func TestMapService_PrintSize(t *testing.T) {
	store := testutil.NewMemStore()
	m := testutil.NewMap("alice", domain.TierMedium)
	m.Design.Width = 3000
	m.Design.Aspect = "2:3"
	store.PutMap(m)
	svc := NewMapService(store)

	size, err := svc.PrintSize(context.Background(), m.UID, domain.UnitCm)
	require.NoError(t, err)
	assert.Equal(t, domain.PrintSize{Width: 26, Height: 39, Unit: domain.UnitCm}, *size)

	size, err = svc.PrintSize(context.Background(), m.UID, domain.UnitPx)
	require.NoError(t, err)
	assert.Equal(t, domain.PrintSize{Width: 3000, Height: 4500, Unit: domain.UnitPx}, *size)
}
