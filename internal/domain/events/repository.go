package events

import "context"

// Repository es el adapter de persistencia (documento en la nube, archivo
// local o memoria). Semántica de consistencia eventual: el orden de LoadAll
// no está garantizado, el dominio re-ordena siempre.
type Repository interface {
	LoadAll(ctx context.Context) ([]Event, error)
	Upsert(ctx context.Context, e Event) error
	UpsertBatch(ctx context.Context, evs []Event) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}
