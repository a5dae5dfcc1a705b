package events

import (
	"testing"
)

func TestProjectLog_PairsSessions(t *testing.T) {
	dayStart, dayEnd := DayBounds(at(t, "2026-03-10T00:00:00Z"))
	evs := []Event{
		ev(t, "s1", EventTypeSleepStart, "2026-03-10T13:00:00Z"),
		ev(t, "e1", EventTypeSleepEnd, "2026-03-10T15:00:00Z"),
		ev(t, "p1", EventTypePee, "2026-03-10T14:00:00Z"),
	}

	entries := ProjectLog(evs, dayStart, dayEnd)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	// descendente por instante de inicio: pee (14:00) antes que la sesión (13:00)
	if entries[0].Kind != LogKindEvent || entries[0].Event.ID != "p1" {
		t.Fatalf("expected pee first, got %+v", entries[0])
	}
	if entries[1].Kind != LogKindSleepSession {
		t.Fatalf("expected sleep session, got %s", entries[1].Kind)
	}
	ids := entries[1].SourceIDs()
	if len(ids) != 2 || ids[0] != "s1" || ids[1] != "e1" {
		t.Fatalf("expected source ids [s1 e1], got %v", ids)
	}
}

func TestProjectLog_GreedyForwardPairing(t *testing.T) {
	dayStart, dayEnd := DayBounds(at(t, "2026-03-10T00:00:00Z"))
	// dos sesiones intercaladas: cada start toma el siguiente end libre
	evs := []Event{
		ev(t, "s1", EventTypeBreastStart, "2026-03-10T10:00:00Z"),
		ev(t, "e1", EventTypeBreastEnd, "2026-03-10T10:20:00Z"),
		ev(t, "s2", EventTypeBreastStart, "2026-03-10T12:00:00Z"),
		ev(t, "e2", EventTypeBreastEnd, "2026-03-10T12:15:00Z"),
	}

	entries := ProjectLog(evs, dayStart, dayEnd)
	if len(entries) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(entries))
	}
	if entries[0].Start.ID != "s2" || entries[0].End.ID != "e2" {
		t.Fatalf("expected s2/e2 first, got %s/%s", entries[0].Start.ID, entries[0].End.ID)
	}
	if entries[1].Start.ID != "s1" || entries[1].End.ID != "e1" {
		t.Fatalf("expected s1/e1 second, got %s/%s", entries[1].Start.ID, entries[1].End.ID)
	}
}

func TestProjectLog_OpenStartAndOrphanEnd(t *testing.T) {
	dayStart, dayEnd := DayBounds(at(t, "2026-03-10T00:00:00Z"))
	evs := []Event{
		// end cuyo start quedó en el día anterior, fuera de la ventana
		ev(t, "e0", EventTypeSleepEnd, "2026-03-10T01:00:00Z"),
		// start sin end: sesión abierta
		ev(t, "s9", EventTypeSleepStart, "2026-03-10T22:00:00Z"),
	}

	entries := ProjectLog(evs, dayStart, dayEnd)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.Kind != LogKindEvent {
			t.Fatalf("expected loose entries, got %s", e.Kind)
		}
	}
	if entries[0].Event.ID != "s9" || entries[1].Event.ID != "e0" {
		t.Fatalf("unexpected order: %s, %s", entries[0].Event.ID, entries[1].Event.ID)
	}
}

func TestProjectLog_FiltersOutsideWindow(t *testing.T) {
	dayStart, dayEnd := DayBounds(at(t, "2026-03-10T00:00:00Z"))
	evs := []Event{
		ev(t, "a", EventTypePee, "2026-03-09T23:59:00Z"),
		ev(t, "b", EventTypePee, "2026-03-10T00:00:00Z"),
		ev(t, "c", EventTypePee, "2026-03-11T00:00:00Z"),
	}

	entries := ProjectLog(evs, dayStart, dayEnd)
	if len(entries) != 1 || entries[0].Event.ID != "b" {
		t.Fatalf("expected only event b, got %d entries", len(entries))
	}
}
