package events

import (
	"math"
	"testing"
	"time"
)

func feedEv(t *testing.T, id, ts string, amount float64) Event {
	t.Helper()
	return Event{ID: id, Type: EventTypeFeed, TS: at(t, ts), Amount: amount}
}

func TestAggregateDay_CountsAndOunces(t *testing.T) {
	now := at(t, "2026-03-10T20:00:00Z")
	day := at(t, "2026-03-10T00:00:00Z")
	evs := []Event{
		ev(t, "1", EventTypePee, "2026-03-10T08:00:00Z"),
		ev(t, "2", EventTypePee, "2026-03-10T11:00:00Z"),
		ev(t, "3", EventTypePoop, "2026-03-10T09:00:00Z"),
		feedEv(t, "4", "2026-03-10T10:00:00Z", 3.5),
		feedEv(t, "5", "2026-03-10T16:00:00Z", 2),
		{ID: "6", Type: EventTypePump, TS: at(t, "2026-03-10T12:00:00Z"), Amount: 4},
		// día anterior: no cuenta
		ev(t, "7", EventTypePee, "2026-03-09T23:00:00Z"),
	}

	st := AggregateDay(evs, day, now)
	if st.Date != "2026-03-10" {
		t.Fatalf("expected date 2026-03-10, got %s", st.Date)
	}
	if st.PeeCount != 2 || st.PoopCount != 1 {
		t.Fatalf("expected 2 pees / 1 poop, got %d / %d", st.PeeCount, st.PoopCount)
	}
	if st.FeedOunces != 5.5 {
		t.Fatalf("expected 5.5 feed oz, got %v", st.FeedOunces)
	}
	if st.PumpOunces != 4 {
		t.Fatalf("expected 4 pump oz, got %v", st.PumpOunces)
	}
}

func TestAggregateDay_SleepSessionWithinDay(t *testing.T) {
	now := at(t, "2026-03-10T20:00:00Z")
	day := at(t, "2026-03-10T00:00:00Z")
	evs := []Event{
		ev(t, "1", EventTypeSleepStart, "2026-03-10T13:00:00Z"),
		ev(t, "2", EventTypeSleepEnd, "2026-03-10T15:30:00Z"),
	}

	st := AggregateDay(evs, day, now)
	if math.Abs(st.SleepHours-2.5) > 1e-9 {
		t.Fatalf("expected 2.5 sleep hours, got %v", st.SleepHours)
	}
}

func TestAggregateDay_CrossMidnightSplit(t *testing.T) {
	// siesta 22:00 -> 02:00: dos horas para cada día
	now := at(t, "2026-03-12T12:00:00Z")
	evs := []Event{
		ev(t, "1", EventTypeSleepStart, "2026-03-10T22:00:00Z"),
		ev(t, "2", EventTypeSleepEnd, "2026-03-11T02:00:00Z"),
	}

	d1 := AggregateDay(evs, at(t, "2026-03-10T00:00:00Z"), now)
	d2 := AggregateDay(evs, at(t, "2026-03-11T00:00:00Z"), now)

	if math.Abs(d1.SleepHours-2.0) > 1e-3 {
		t.Fatalf("expected ~2h on first day, got %v", d1.SleepHours)
	}
	if math.Abs(d2.SleepHours-2.0) > 1e-3 {
		t.Fatalf("expected ~2h on second day, got %v", d2.SleepHours)
	}
}

func TestAggregateDay_OpenSessionCountsToNowOnlyToday(t *testing.T) {
	now := at(t, "2026-03-10T14:30:00Z")
	evs := []Event{
		ev(t, "1", EventTypeSleepStart, "2026-03-10T14:00:00Z"),
	}

	today := AggregateDay(evs, now, now)
	if math.Abs(today.SleepHours-0.5) > 1e-9 {
		t.Fatalf("expected 0.5h open session, got %v", today.SleepHours)
	}

	// consultar un día pasado con sesión abierta no suma nada
	evs = []Event{ev(t, "2", EventTypeSleepStart, "2026-03-08T14:00:00Z")}
	past := AggregateDay(evs, at(t, "2026-03-08T00:00:00Z"), now)
	if past.SleepHours != 0 {
		t.Fatalf("expected 0h for past open session, got %v", past.SleepHours)
	}
}

func TestAggregateDay_WakeWindowAdmitsPreviousDay(t *testing.T) {
	// despertó 23:00 de ayer, se durmió 01:00 de hoy: ventana de 2h contada hoy
	now := at(t, "2026-03-11T12:00:00Z")
	evs := []Event{
		ev(t, "1", EventTypeSleepStart, "2026-03-10T20:00:00Z"),
		ev(t, "2", EventTypeSleepEnd, "2026-03-10T23:00:00Z"),
		ev(t, "3", EventTypeSleepStart, "2026-03-11T01:00:00Z"),
		ev(t, "4", EventTypeSleepEnd, "2026-03-11T03:00:00Z"),
	}

	st := AggregateDay(evs, at(t, "2026-03-11T00:00:00Z"), now)
	if st.AvgWakeWindowMinutes != 120 {
		t.Fatalf("expected 120 min wake window, got %d", st.AvgWakeWindowMinutes)
	}
}

func TestAggregateDay_BreastSession(t *testing.T) {
	now := at(t, "2026-03-10T20:00:00Z")
	evs := []Event{
		ev(t, "1", EventTypeBreastStart, "2026-03-10T10:00:00Z"),
		ev(t, "2", EventTypeBreastEnd, "2026-03-10T10:20:00Z"),
	}

	st := AggregateDay(evs, at(t, "2026-03-10T00:00:00Z"), now)
	want := 20.0 / 60.0
	if math.Abs(st.BreastHours-want) > 1e-9 {
		t.Fatalf("expected %v breast hours, got %v", want, st.BreastHours)
	}
}

func TestDailySummary_AscendingDays(t *testing.T) {
	now := at(t, "2026-03-12T12:00:00Z")
	evs := []Event{
		ev(t, "1", EventTypePee, "2026-03-11T08:00:00Z"),
		ev(t, "2", EventTypePee, "2026-03-09T08:00:00Z"),
		ev(t, "3", EventTypePee, "2026-03-10T08:00:00Z"),
	}

	days := DailySummary(evs, now)
	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(days))
	}
	want := []string{"2026-03-09", "2026-03-10", "2026-03-11"}
	for i, w := range want {
		if days[i].Date != w {
			t.Fatalf("expected day %d to be %s, got %s", i, w, days[i].Date)
		}
	}
}

func TestDailySummary_Empty(t *testing.T) {
	if got := DailySummary(nil, time.Now()); len(got) != 0 {
		t.Fatalf("expected empty summary, got %d entries", len(got))
	}
}
