// Package memory es el store efímero para dev y tests.
package memory

import (
	"context"
	"errors"
	"sync"

	"eps-tracker/internal/domain/events"
)

type EventsRepo struct {
	mu   sync.RWMutex
	byID map[string]events.Event
}

func NewEventsRepo() *EventsRepo {
	return &EventsRepo{byID: make(map[string]events.Event)}
}

func (r *EventsRepo) LoadAll(ctx context.Context) ([]events.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]events.Event, 0, len(r.byID))
	for _, e := range r.byID {
		out = append(out, e)
	}
	return out, nil
}

func (r *EventsRepo) Upsert(ctx context.Context, e events.Event) error {
	if e.ID == "" {
		return errors.New("event id required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[e.ID] = e
	return nil
}

func (r *EventsRepo) UpsertBatch(ctx context.Context, evs []events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range evs {
		if e.ID == "" {
			return errors.New("event id required")
		}
		r.byID[e.ID] = e
	}
	return nil
}

func (r *EventsRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *EventsRepo) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = make(map[string]events.Event)
	return nil
}
