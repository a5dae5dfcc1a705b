package events

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Event es la única entidad persistida: una acción registrada con tipo,
// instante y cantidad opcional. Amount solo tiene sentido para tipos
// cuantificados; para el resto siempre es 0.
type Event struct {
	ID     string
	Type   EventType
	TS     time.Time
	Amount float64
}

// tsWireFormat es ISO-8601 en UTC con milisegundos (el toISOString() de
// JavaScript), para que los backups viejos y nuevos sean intercambiables.
const tsWireFormat = "2006-01-02T15:04:05.000Z07:00"

type eventWire struct {
	ID   string             `json:"id"`
	Type EventType          `json:"type"`
	TS   string             `json:"ts"`
	Data map[string]float64 `json:"data"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	w := eventWire{
		ID:   e.ID,
		Type: e.Type,
		TS:   e.TS.UTC().Format(tsWireFormat),
		Data: map[string]float64{},
	}
	if e.Type.Quantified() {
		w.Data["amount"] = e.Amount
	}
	return json.Marshal(w)
}

func (e *Event) UnmarshalJSON(b []byte) error {
	var w eventWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	ts, err := time.Parse(time.RFC3339, w.TS)
	if err != nil {
		return fmt.Errorf("event %s: bad ts %q: %w", w.ID, w.TS, err)
	}
	e.ID = w.ID
	e.Type = w.Type
	// milisegundos como máximo, igual que un Date de JS: un archivo con más
	// precisión no puede romper el round-trip de los backups
	e.TS = ts.Truncate(time.Millisecond)
	e.Amount = 0
	if w.Data != nil && w.Type.Quantified() {
		e.Amount = w.Data["amount"]
	}
	return nil
}

// DataJSON devuelve el bag `data` codificado como JSON (columna del CSV).
func (e Event) DataJSON() string {
	if !e.Type.Quantified() {
		return "{}"
	}
	b, _ := json.Marshal(map[string]float64{"amount": e.Amount})
	return string(b)
}

// SortDesc ordena in place por TS descendente (más reciente primero).
func SortDesc(evs []Event) {
	sort.SliceStable(evs, func(i, j int) bool { return evs[i].TS.After(evs[j].TS) })
}

// SortAsc ordena in place por TS ascendente (para pareo y agregación).
func SortAsc(evs []Event) {
	sort.SliceStable(evs, func(i, j int) bool { return evs[i].TS.Before(evs[j].TS) })
}
