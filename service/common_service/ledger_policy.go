package common_service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trivia-token-service/ledger"

	"github.com/cenkalti/backoff/v5"
)

// LedgerPolicy submission retries and confirmation polling bounds
type LedgerPolicy struct {
	SubmitRetries   int           // tries per submission pass
	RetryInterval   time.Duration // first backoff interval
	MaxPollAttempts int           // confirmation polls before the outcome is declared unknown
}

// WithDefaults fill unset fields
func (p LedgerPolicy) WithDefaults() LedgerPolicy {
	if p.SubmitRetries <= 0 {
		p.SubmitRetries = 3
	}
	if p.RetryInterval <= 0 {
		p.RetryInterval = 200 * time.Millisecond
	}
	if p.MaxPollAttempts <= 0 {
		p.MaxPollAttempts = 60
	}
	return p
}

// SubmitWithRetry submit with exponential backoff. Only ErrSubmission is retried; backpressure,
// unknown outcomes and context errors end the pass at once. A context that ends while no attempt
// is in flight yields ledger.ErrNotSent.
func (p LedgerPolicy) SubmitWithRetry(ctx context.Context, submit func(ctx context.Context) (ledger.TxRef, error)) (ledger.TxRef, int, error) {
	attempts := 0
	var last error
	operation := func() (ledger.TxRef, error) {
		if err := ctx.Err(); err != nil {
			return "", backoff.Permanent(fmt.Errorf("%w: %v", ledger.ErrNotSent, err))
		}
		attempts++
		ref, err := submit(ctx)
		last = err
		if err == nil {
			return ref, nil
		}
		if errors.Is(err, ledger.ErrSubmission) {
			return "", err
		}
		return "", backoff.Permanent(err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.RetryInterval
	ref, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(p.SubmitRetries)),
	)
	if err != nil && ctx.Err() != nil && errors.Is(last, ledger.ErrSubmission) {
		// cancelled while waiting between attempts
		return "", attempts, fmt.Errorf("%w: %v", ledger.ErrNotSent, ctx.Err())
	}
	return ref, attempts, err
}

// NotSubmitted the submission never reached the ledger and the step may run again later
func NotSubmitted(err error) bool {
	return errors.Is(err, ledger.ErrBackpressure) ||
		errors.Is(err, ledger.ErrNotSent) ||
		errors.Is(err, ledger.ErrClosed)
}

// UnknownOutcome the submission may have reached the ledger; it must not be sent again
func UnknownOutcome(err error) bool {
	return errors.Is(err, ledger.ErrUnknownOutcome) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
