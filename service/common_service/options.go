package common_service

import (
	"io"
	"log"
	"time"

	"trivia-token-service/metrics"
)

// Options collaborators shared by every service
type Options struct {
	Logger  *log.Logger
	Metrics metrics.Sink
	Now     func() time.Time
}

// WithDefaults fill unset collaborators: discard logger, no-op metrics, wall clock
func (o Options) WithDefaults() Options {
	if o.Logger == nil {
		o.Logger = log.New(io.Discard, "", 0)
	}
	o.Metrics = metrics.OrNop(o.Metrics)
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
