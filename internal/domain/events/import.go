package events

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ParseBackup acepta el objeto de respaldo ({version, exported, events}) o
// un array pelado de eventos. Cualquier otra forma aborta el import completo
// con ErrBadFormat, antes de tocar la colección.
func ParseBackup(r io.Reader) ([]Event, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var b Backup
	if err := json.Unmarshal(raw, &b); err == nil && b.Events != nil {
		return b.Events, nil
	}

	var arr []Event
	if err := json.Unmarshal(raw, &arr); err == nil {
		return arr, nil
	}

	return nil, ErrBadFormat
}

// BulkRow es una fila del formulario de carga histórica.
type BulkRow struct {
	Date   string    `json:"date"` // YYYY-MM-DD
	Time   string    `json:"time"` // HH:MM
	Type   EventType `json:"type"`
	Amount float64   `json:"amount"`
}

// buildBulkEvents valida cada fila por separado: las inválidas se acumulan
// como errores enumerados, las válidas se devuelven como eventos listos.
// Filas sin tipo se saltan (filas vacías del formulario).
func buildBulkEvents(rows []BulkRow, loc *time.Location, now time.Time) ([]Event, []RowError) {
	var out []Event
	var errs []RowError

	for i, row := range rows {
		n := i + 1
		if row.Type == "" {
			continue
		}
		if !row.Type.Valid() {
			errs = append(errs, RowError{Row: n, Reason: fmt.Sprintf("unknown type %q", row.Type)})
			continue
		}
		if strings.TrimSpace(row.Date) == "" || strings.TrimSpace(row.Time) == "" {
			errs = append(errs, RowError{Row: n, Reason: "date and time are required"})
			continue
		}

		ts, err := time.ParseInLocation("2006-01-02 15:04", row.Date+" "+row.Time, loc)
		if err != nil {
			errs = append(errs, RowError{Row: n, Reason: "invalid date/time"})
			continue
		}
		if ts.After(now) {
			errs = append(errs, RowError{Row: n, Reason: "date/time is in the future"})
			continue
		}

		amount := 0.0
		if row.Type.Quantified() {
			if math.IsNaN(row.Amount) || row.Amount <= 0 {
				errs = append(errs, RowError{Row: n, Reason: fmt.Sprintf("valid amount required for %s", row.Type)})
				continue
			}
			amount = row.Amount
		}

		out = append(out, Event{
			ID:     uuid.NewString(),
			Type:   row.Type,
			TS:     ts,
			Amount: amount,
		})
	}

	return out, errs
}
