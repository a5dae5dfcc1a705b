// Package sqlite es el store local durable: respaldo cuando el primario en
// la nube no responde, o store único cuando no hay DSN de Postgres.
package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"eps-tracker/internal/domain/events"
)

type EventsRepo struct {
	db *sql.DB
}

// Open abre (o crea) el archivo y asegura el esquema.
func Open(path string) (*EventsRepo, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// un solo proceso escribe; sin pool no hay SQLITE_BUSY
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS care_events (
			id     TEXT PRIMARY KEY,
			type   TEXT NOT NULL,
			ts     TIMESTAMP NOT NULL,
			amount REAL NOT NULL DEFAULT 0
		)
	`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &EventsRepo{db: db}, nil
}

func (r *EventsRepo) Close() error { return r.db.Close() }

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
		INSERT OR REPLACE INTO care_events (id, type, ts, amount)
		VALUES (?, ?, ?, ?)
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
		INSERT OR REPLACE INTO care_events (id, type, ts, amount)
		VALUES (?, ?, ?, ?)
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
	_, err := r.db.ExecContext(ctx, `DELETE FROM care_events WHERE id = ?`, id)
	return err
}

func (r *EventsRepo) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM care_events`)
	return err
}
