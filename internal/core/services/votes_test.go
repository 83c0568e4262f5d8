package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"map-catalog-service/internal/core/domain"
	"map-catalog-service/internal/testutil"
)

func TestVoteService_AddAndRemove(t *testing.T) {
	store := testutil.NewMemStore()
	m := testutil.NewMap("alice", domain.TierMedium)
	store.PutMap(m)
	svc := NewVoteService(store, nil)
	ctx := context.Background()

	votes, err := svc.AddVote(ctx, m.UID, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, votes)

	voted, err := svc.HasVoted(ctx, m.UID, "bob")
	require.NoError(t, err)
	assert.True(t, voted)

	_, err = svc.AddVote(ctx, m.UID, "bob")
	assert.ErrorIs(t, err, domain.ErrAlreadyVoted)

	votes, err = svc.RemoveVote(ctx, m.UID, "bob")
	require.NoError(t, err)
	assert.Equal(t, 0, votes)

	_, err = svc.RemoveVote(ctx, m.UID, "bob")
	assert.ErrorIs(t, err, domain.ErrNotVoted)

	count, err := svc.VoteCount(ctx, m.UID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestVoteService_ConcurrentAddFromSameUser(t *testing.T) {
	store := testutil.NewMemStore()
	m := testutil.NewMap("alice", domain.TierMedium)
	store.PutMap(m)
	svc := NewVoteService(store, nil)
	ctx := context.Background()

	before, err := svc.VoteCount(ctx, m.UID)
	require.NoError(t, err)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		errs   []error
		okHits int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddVote(ctx, m.UID, "userX")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				okHits++
				return
			}
			errs = append(errs, err)
		}()
	}
	wg.Wait()

	after, err := svc.VoteCount(ctx, m.UID)
	require.NoError(t, err)
	assert.Equal(t, 1, okHits)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], domain.ErrAlreadyVoted)
	assert.Equal(t, before+1, after)
}

func TestVoteService_CountMatchesVoters(t *testing.T) {
	store := testutil.NewMemStore()
	m := testutil.NewMap("alice", domain.TierMedium)
	store.PutMap(m)
	svc := NewVoteService(store, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := []string{"u0", "u1", "u2", "u3", "u4"}[i%5]
			if i%2 == 0 {
				_, _ = svc.AddVote(ctx, m.UID, user)
			} else {
				_, _ = svc.RemoveVote(ctx, m.UID, user)
			}
		}(i)
	}
	wg.Wait()

	got, err := store.GetByID(ctx, m.UID)
	require.NoError(t, err)
	assert.Equal(t, len(got.Voters), got.Votes)
	assert.GreaterOrEqual(t, got.Votes, 0)
}

func TestVoteService_ArchivedMap(t *testing.T) {
	store := testutil.NewMemStore()
	m := testutil.NewMap("alice", domain.TierMedium)
	store.PutMap(m)
	require.NoError(t, store.Archive(context.Background(), m.UID))
	svc := NewVoteService(store, nil)

	_, err := svc.AddVote(context.Background(), m.UID, "bob")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.VoteCount(context.Background(), m.UID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVoteService_MissingUser(t *testing.T) {
	repo := new(testutil.MockMapRepo)
	svc := NewVoteService(repo, nil)

	_, err := svc.AddVote(context.Background(), uuid.New(), " ")
	assert.ErrorIs(t, err, domain.ErrMissingUserID)
	repo.AssertNotCalled(t, "AddVoter", mock.Anything, mock.Anything, mock.Anything)
}

func TestVoteService_RecordsOutcome(t *testing.T) {
	repo := new(testutil.MockMapRepo)
	metrics := new(testutil.MockMetrics)
	svc := NewVoteService(repo, metrics)
	id := uuid.New()

	repo.On("AddVoter", mock.Anything, id, "bob").Return(0, domain.ErrAlreadyVoted)
	metrics.On("IncVote", "add", string(domain.ReasonAlreadyVoted)).Return()

	_, err := svc.AddVote(context.Background(), id, "bob")
	assert.ErrorIs(t, err, domain.ErrAlreadyVoted)
	metrics.AssertExpectations(t)
}
