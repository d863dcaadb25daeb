package common_service

import (
	"context"
	"log"
	"time"
)

// Processor drives a step function on a ticker, and early whenever wake fires
type Processor struct {
	name     string
	interval time.Duration
	step     func(ctx context.Context) error
	wake     <-chan struct{}
	logger   *log.Logger
}

// NewProcessor create processor; wake may be nil
func NewProcessor(name string, interval time.Duration, step func(ctx context.Context) error, wake <-chan struct{}, logger *log.Logger) *Processor {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Processor{name: name, interval: interval, step: step, wake: wake, logger: logger}
}

// Run block until ctx is done
func (p *Processor) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Printf("%s processor started, interval %v", p.name, p.interval)
	for {
		select {
		case <-ctx.Done():
			p.logger.Printf("%s processor stopped", p.name)
			return
		case <-ticker.C:
		case <-p.wake:
		}
		if err := p.step(ctx); err != nil && ctx.Err() == nil {
			p.logger.Printf("%s processor step failed: %v", p.name, err)
		}
	}
}
