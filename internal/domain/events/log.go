package events

import (
	"sort"
	"time"
)

type LogKind string

const (
	LogKindEvent         LogKind = "event"
	LogKindSleepSession  LogKind = "sleep_session"
	LogKindBreastSession LogKind = "breast_session"
)

// LogEntry es una entrada mostrable del log diario: un evento suelto o una
// sesión pareada start/end. Las sesiones exponen ambos eventos fuente para
// que borrarlas elimine los dos registros subyacentes.
type LogEntry struct {
	Kind  LogKind `json:"kind"`
	Event *Event  `json:"event,omitempty"`
	Start *Event  `json:"start,omitempty"`
	End   *Event  `json:"end,omitempty"`
}

// When es el instante de orden: el start para sesiones.
func (e LogEntry) When() time.Time {
	if e.Kind == LogKindEvent {
		return e.Event.TS
	}
	return e.Start.TS
}

// SourceIDs devuelve los ids de los eventos subyacentes.
func (e LogEntry) SourceIDs() []string {
	if e.Kind == LogKindEvent {
		return []string{e.Event.ID}
	}
	return []string{e.Start.ID, e.End.ID}
}

// ProjectLog parea sesiones dentro de [dayStart, dayEnd] para la vista de
// log. Cada start se casa con el siguiente end no consumido del mismo par
// (escaneo hacia adelante). Un start sin end queda como entrada suelta
// (sesión abierta); un end cuyo start quedó fuera de la ventana también.
// Orden final: por instante de inicio, descendente.
func ProjectLog(evs []Event, dayStart, dayEnd time.Time) []LogEntry {
	in := make([]Event, 0, len(evs))
	for _, ev := range evs {
		if !ev.TS.Before(dayStart) && !ev.TS.After(dayEnd) {
			in = append(in, ev)
		}
	}
	SortAsc(in)

	used := make(map[string]bool, len(in))
	var out []LogEntry

	pairEnd := func(i int, endType EventType) *Event {
		for j := i + 1; j < len(in); j++ {
			if in[j].Type == endType && !used[in[j].ID] {
				used[in[j].ID] = true
				return &in[j]
			}
		}
		return nil
	}

	for i := range in {
		ev := in[i]
		if used[ev.ID] {
			continue
		}

		var kind LogKind
		var endType EventType
		switch ev.Type {
		case EventTypeSleepStart:
			kind, endType = LogKindSleepSession, EventTypeSleepEnd
		case EventTypeBreastStart:
			kind, endType = LogKindBreastSession, EventTypeBreastEnd
		default:
			out = append(out, LogEntry{Kind: LogKindEvent, Event: &in[i]})
			continue
		}

		if end := pairEnd(i, endType); end != nil {
			used[ev.ID] = true
			out = append(out, LogEntry{Kind: kind, Start: &in[i], End: end})
			continue
		}
		// Sin end en la ventana: sesión abierta, entrada suelta.
		out = append(out, LogEntry{Kind: LogKindEvent, Event: &in[i]})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].When().After(out[j].When()) })
	return out
}
