package postgres

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"map-catalog-service/internal/core/domain"
)

func TestConnector_ConcurrentCallersShareOneAttempt(t *testing.T) {
	var dials atomic.Int32
	release := make(chan struct{})
	c := NewConnector(func(ctx context.Context) (*pgxpool.Pool, error) {
		dials.Add(1)
		<-release
		return nil, nil
	})
	assert.Equal(t, StateUninitialized, c.State())

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Pool(context.Background())
			errs <- err
		}()
	}

	require.Eventually(t, func() bool { return c.State() == StateInitializing }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), dials.Load())
	assert.Equal(t, StateReady, c.State())
}

func TestConnector_FailedRetriesOnNextCall(t *testing.T) {
	var dials atomic.Int32
	c := NewConnector(func(ctx context.Context) (*pgxpool.Pool, error) {
		if dials.Add(1) == 1 {
			return nil, errors.New("connection refused")
		}
		return nil, nil
	})

	_, err := c.Pool(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Equal(t, StateFailed, c.State())

	_, err = c.Pool(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, StateReady, c.State())
	assert.Equal(t, int32(2), dials.Load())
}

func TestConnector_WaiterHonoursContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	c := NewConnector(func(ctx context.Context) (*pgxpool.Pool, error) {
		<-release
		return nil, nil
	})

	go func() { _, _ = c.Pool(context.Background()) }()
	require.Eventually(t, func() bool { return c.State() == StateInitializing }, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := c.Pool(ctx)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConnState_String(t *testing.T) {
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "failed", StateFailed.String())
}
