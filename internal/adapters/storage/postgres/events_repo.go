package postgres

import (
	"context"
	"database/sql"
	"strings"

	"eps-tracker/internal/domain/events"
)

type EventsRepo struct {
	db *sql.DB
}

func NewEventsRepo(db *sql.DB) *EventsRepo {
	return &EventsRepo{db: db}
}

// LoadAll trae la colección completa. El orden lo impone el dominio al
// recibirla, acá solo se devuelve lo que hay.
func (r *EventsRepo) LoadAll(ctx context.Context) ([]events.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, ts, amount
		FROM care_events
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]events.Event, 0)
	for rows.Next() {
		var e events.Event
		var typ string
		if err := rows.Scan(&e.ID, &typ, &e.TS, &e.Amount); err != nil {
			return nil, err
		}
		e.Type = events.EventType(typ)
		out = append(out, e)
	}

	return out, rows.Err()
}

func (r *EventsRepo) Upsert(ctx context.Context, e events.Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO care_events (id, type, ts, amount)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET type = EXCLUDED.type, ts = EXCLUDED.ts, amount = EXCLUDED.amount
	`, e.ID, string(e.Type), e.TS, e.Amount)
	return err
}

func (r *EventsRepo) UpsertBatch(ctx context.Context, evs []events.Event) error {
	if len(evs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO care_events (id, type, ts, amount)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET type = EXCLUDED.type, ts = EXCLUDED.ts, amount = EXCLUDED.amount
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range evs {
		if _, err := stmt.ExecContext(ctx, e.ID, string(e.Type), e.TS, e.Amount); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *EventsRepo) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	// borrar algo que ya no está no es error: los deletes llegan repetidos
	// cuando dos dispositivos sincronizan
	_, err := r.db.ExecContext(ctx, `DELETE FROM care_events WHERE id = $1`, id)
	return err
}

func (r *EventsRepo) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM care_events`)
	return err
}
