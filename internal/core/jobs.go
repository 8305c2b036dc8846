package core

import (
	"context"
)

// JobDispatcher accepts review events and queues them for asynchronous
// processing. It decouples the event source (webhook handler, CLI) from the
// job execution mechanism.
type JobDispatcher interface {
	// Dispatch queues an event for processing. It returns an error if the
	// job cannot be queued, for example when the queue is full, providing a
	// mechanism for backpressure.
	Dispatch(ctx context.Context, event *ReviewEvent) error
}

// Job is a single executable unit of work triggered by a ReviewEvent.
type Job interface {
	Run(ctx context.Context, event *ReviewEvent) error
}
