package ledger

import (
	"context"
	"fmt"
	"log"
	"sync"
)

type submitResult struct {
	ref TxRef
	err error
}

type submitJob struct {
	ctx    context.Context
	submit func(ctx context.Context) (TxRef, error)
	done   chan submitResult
}

// Serializer funnels every submission through one worker so that a single signing authority
// never issues concurrent transactions. A full queue refuses work with ErrBackpressure.
type Serializer struct {
	client Client
	jobs   chan submitJob

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	closeOnce sync.Once
}

var _ Client = (*Serializer)(nil)

// NewSerializer wrap client and start the worker
func NewSerializer(client Client, queueSize int) *Serializer {
	if queueSize <= 0 {
		queueSize = 64
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Serializer{
		client: client,
		jobs:   make(chan submitJob, queueSize),
		ctx:    ctx,
		cancel: cancel,
	}
	s.wg.Add(1)
	go s.run()
	return s
}

func (s *Serializer) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			// drain so no caller waits forever
			for {
				select {
				case job := <-s.jobs:
					job.done <- submitResult{err: ErrClosed}
				default:
					return
				}
			}
		case job := <-s.jobs:
			if err := job.ctx.Err(); err != nil {
				job.done <- submitResult{err: fmt.Errorf("%w: %v", ErrNotSent, err)}
				continue
			}
			ref, err := job.submit(job.ctx)
			job.done <- submitResult{ref: ref, err: err}
		}
	}
}

func (s *Serializer) enqueue(ctx context.Context, submit func(ctx context.Context) (TxRef, error)) (TxRef, error) {
	if s.ctx.Err() != nil {
		return "", ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotSent, err)
	}
	job := submitJob{ctx: ctx, submit: submit, done: make(chan submitResult, 1)}
	select {
	case s.jobs <- job:
	default:
		return "", ErrBackpressure
	}

	select {
	case res := <-job.done:
		return res.ref, res.err
	case <-ctx.Done():
		// the worker may still submit
		return "", ErrUnknownOutcome
	}
}

func (s *Serializer) SubmitMint(ctx context.Context, req MintRequest) (TxRef, error) {
	return s.enqueue(ctx, func(ctx context.Context) (TxRef, error) {
		return s.client.SubmitMint(ctx, req)
	})
}

func (s *Serializer) SubmitBurn(ctx context.Context, req BurnRequest) (TxRef, error) {
	return s.enqueue(ctx, func(ctx context.Context) (TxRef, error) {
		return s.client.SubmitBurn(ctx, req)
	})
}

// TxStatus reads bypass the queue
func (s *Serializer) TxStatus(ctx context.Context, ref TxRef) (TxState, error) {
	return s.client.TxStatus(ctx, ref)
}

// Close stop the worker; queued submissions fail with ErrClosed
func (s *Serializer) Close() {
	s.closeOnce.Do(func() {
		log.Println("Stopping ledger serializer...")
		s.cancel()
		s.wg.Wait()
		log.Println("Ledger serializer stopped")
	})
}
