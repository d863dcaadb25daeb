package common_service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"trivia-token-service/assetid"
	"trivia-token-service/database"
	"trivia-token-service/ledger"
	"trivia-token-service/models/dao"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimIdentifierRegeneratesOnCollision(t *testing.T) {
	db, err := database.NewPebbleDatabase(&database.PebbleConfig{InMemory: true})
	require.NoError(t, err)
	defer db.Close()
	ownershipDAO := dao.NewOwnershipDAO(db)

	ids := []string{"0000000a", "0000000a", "0000000b", "0000000a", "0000000a", "0000000b"}
	defer func(orig func(assetid.BuildParams) (string, error)) { newIdentifier = orig }(newIdentifier)
	newIdentifier = func(p assetid.BuildParams) (string, error) {
		p.UniqueID, ids = ids[0], ids[1:]
		return assetid.Build(p)
	}

	params := assetid.BuildParams{Tier: assetid.TierCategory, CategoryCode: "SCI"}
	first, err := ClaimIdentifier(ownershipDAO, params, "op1")
	require.NoError(t, err)
	assert.Equal(t, "TNFT_V1_SCI_REG_0000000a", first)

	second, err := ClaimIdentifier(ownershipDAO, params, "op2")
	require.NoError(t, err)
	assert.Equal(t, "TNFT_V1_SCI_REG_0000000b", second)

	_, err = ClaimIdentifier(ownershipDAO, params, "op3")
	assert.ErrorIs(t, err, database.ErrDuplicateIdentifier)
}

func TestSubmitWithRetry(t *testing.T) {
	policy := LedgerPolicy{SubmitRetries: 3, RetryInterval: time.Millisecond}.WithDefaults()
	ctx := context.Background()

	calls := 0
	ref, attempts, err := policy.SubmitWithRetry(ctx, func(context.Context) (ledger.TxRef, error) {
		calls++
		if calls < 3 {
			return "", ledger.ErrSubmission
		}
		return "tx-1", nil
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.TxRef("tx-1"), ref)
	assert.Equal(t, 3, attempts)

	_, attempts, err = policy.SubmitWithRetry(ctx, func(context.Context) (ledger.TxRef, error) {
		return "", ledger.ErrSubmission
	})
	assert.ErrorIs(t, err, ledger.ErrSubmission)
	assert.Equal(t, 3, attempts)

	_, attempts, err = policy.SubmitWithRetry(ctx, func(context.Context) (ledger.TxRef, error) {
		return "", ledger.ErrBackpressure
	})
	assert.ErrorIs(t, err, ledger.ErrBackpressure)
	assert.True(t, NotSubmitted(err))
	assert.Equal(t, 1, attempts)

	_, attempts, err = policy.SubmitWithRetry(ctx, func(context.Context) (ledger.TxRef, error) {
		return "", fmt.Errorf("%w: read timeout", ledger.ErrUnknownOutcome)
	})
	assert.True(t, UnknownOutcome(err))
	assert.False(t, NotSubmitted(err))
	assert.Equal(t, 1, attempts)
}

func TestSubmitWithRetryCancelled(t *testing.T) {
	policy := LedgerPolicy{SubmitRetries: 5, RetryInterval: time.Hour}.WithDefaults()

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	_, attempts, err := policy.SubmitWithRetry(cancelled, func(context.Context) (ledger.TxRef, error) {
		calls++
		return "tx-1", nil
	})
	assert.ErrorIs(t, err, ledger.ErrNotSent)
	assert.True(t, NotSubmitted(err))
	assert.Zero(t, attempts)
	assert.Zero(t, calls)

	// a refused attempt followed by cancellation during the backoff wait never reached the ledger
	ctx, cancel := context.WithCancel(context.Background())
	_, attempts, err = policy.SubmitWithRetry(ctx, func(context.Context) (ledger.TxRef, error) {
		cancel()
		return "", ledger.ErrSubmission
	})
	assert.True(t, NotSubmitted(err))
	assert.Equal(t, 1, attempts)

	// cancellation while the call is in flight leaves the outcome unknown
	ctx, cancel = context.WithCancel(context.Background())
	_, _, err = policy.SubmitWithRetry(ctx, func(ctx context.Context) (ledger.TxRef, error) {
		cancel()
		return "", ctx.Err()
	})
	assert.True(t, UnknownOutcome(err))
	assert.False(t, NotSubmitted(err))

	assert.False(t, NotSubmitted(ledger.ErrSubmission))
	assert.False(t, UnknownOutcome(ledger.ErrSubmission))
}

func TestProcessorRunsOnWake(t *testing.T) {
	wake := make(chan struct{}, 1)
	var steps atomic.Int32
	p := NewProcessor("test", time.Hour, func(context.Context) error {
		steps.Add(1)
		return errors.New("logged, not fatal")
	}, wake, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	wake <- struct{}{}
	assert.Eventually(t, func() bool { return steps.Load() == 1 }, time.Second, time.Millisecond)
	wake <- struct{}{}
	assert.Eventually(t, func() bool { return steps.Load() == 2 }, time.Second, time.Millisecond)

	cancel()
	<-done
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.WithDefaults()
	assert.NotNil(t, o.Logger)
	assert.NotNil(t, o.Metrics)
	assert.WithinDuration(t, time.Now(), o.Now(), time.Second)
}

func TestKeyedMutexSerializesOneKey(t *testing.T) {
	var (
		k       KeyedMutex
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("op-1")
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)

	// other keys are independent
	unlockA := k.Lock("a")
	unlockB := k.Lock("b")
	unlockB()
	unlockA()
	assert.Empty(t, k.locks)
}
