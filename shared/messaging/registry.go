package messaging

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ConsumerStatus is the health snapshot of one registered consumer.
type ConsumerStatus struct {
	Name  string        `json:"name"`
	Queue string        `json:"queue"`
	State ConsumerState `json:"state"`
	Error string        `json:"error,omitempty"`
}

type registryEntry struct {
	name     string
	consumer *Consumer

	mux     sync.Mutex
	lastErr error
}

// Registry supervises the long-lived consumers of one service. Each
// consumer runs on its own goroutine; a degraded consumer never stops
// the others or the request-serving path. This replaces fire-and-forget
// daemon threads with explicit lifecycle management.
type Registry struct {
	mux     sync.Mutex
	entries []*registryEntry
	group   *errgroup.Group
}

// NewRegistry creates an empty consumer registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a named consumer. Must be called before Start.
func (r *Registry) Register(name string, c *Consumer) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.entries = append(r.entries, &registryEntry{name: name, consumer: c})
}

// Start launches every registered consumer in the background and
// returns immediately. Consumer failures are recorded, not propagated:
// the service stays up in degraded mode.
func (r *Registry) Start(ctx context.Context) {
	r.mux.Lock()
	defer r.mux.Unlock()

	r.group = &errgroup.Group{}
	for _, entry := range r.entries {
		entry := entry
		r.group.Go(func() error {
			log.Printf("[messaging] starting consumer %q (queue %q)", entry.name, entry.consumer.Queue())
			err := entry.consumer.Run(ctx)
			if err != nil && err != context.Canceled {
				entry.mux.Lock()
				entry.lastErr = err
				entry.mux.Unlock()
			}
			return nil
		})
	}
}

// Wait blocks until every consumer goroutine has returned. Call after
// cancelling the context passed to Start.
func (r *Registry) Wait() {
	r.mux.Lock()
	group := r.group
	r.mux.Unlock()

	if group != nil {
		group.Wait()
	}
}

// Statuses reports the current state of every registered consumer, for
// the health endpoint.
func (r *Registry) Statuses() []ConsumerStatus {
	r.mux.Lock()
	defer r.mux.Unlock()

	statuses := make([]ConsumerStatus, 0, len(r.entries))
	for _, entry := range r.entries {
		entry.mux.Lock()
		errText := ""
		if entry.lastErr != nil {
			errText = entry.lastErr.Error()
		}
		entry.mux.Unlock()

		statuses = append(statuses, ConsumerStatus{
			Name:  entry.name,
			Queue: entry.consumer.Queue(),
			State: entry.consumer.State(),
			Error: errText,
		})
	}
	return statuses
}
