package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two requests racing the same cooldown window must not both be granted.
func TestMemoryRequestLimiterConcurrentAcquire(t *testing.T) {
	l := NewMemoryRequestLimiter(60 * time.Second)
	ctx := context.Background()
	now := time.Now()

	const workers = 32

	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		mu      sync.Mutex
		granted int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ok, err := l.TryAcquire(ctx, "10.0.0.1", now)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, granted, "exactly one racer may start the window")
}

// Concurrent submissions of the same code must consume it exactly once.
func TestMemoryOTPLedgerConcurrentConsume(t *testing.T) {
	l := NewMemoryOTPLedger()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, l.Issue(ctx, "user@utoronto.ca", "123456", now, 10*time.Minute))

	const workers = 32

	var (
		wg       sync.WaitGroup
		start    = make(chan struct{})
		mu       sync.Mutex
		consumed int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			res, err := l.Consume(ctx, "user@utoronto.ca", "123456", now.Add(time.Minute))
			assert.NoError(t, err)
			if res == ConsumeOk {
				mu.Lock()
				consumed++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, consumed, "a code is single-use even under contention")
}

// Concurrent supersede/lookup/remove on one token must stay consistent: the
// first insert wins and survives until removed.
func TestMemorySupersededLedgerConcurrentSupersede(t *testing.T) {
	l := NewMemorySupersededLedger()
	ctx := context.Background()
	base := time.Now()

	const workers = 16

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(offset time.Duration) {
			defer wg.Done()
			<-start
			assert.NoError(t, l.Supersede(ctx, "tok-1", "u1", "testuser1", base.Add(offset)))
		}(time.Duration(i) * time.Second)
	}
	close(start)
	wg.Wait()

	entry, err := l.Lookup(ctx, "tok-1")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "u1", entry.IdentityID)
	assert.True(t, entry.ExpiresAt.Before(base.Add(workers*time.Second)),
		"whichever insert won, the expiry sits in the past")
}
