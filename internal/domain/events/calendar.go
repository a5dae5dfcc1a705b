package events

import "time"

// Utilidades de calendario compartidas por agregación, series y log.
// Los límites de día son calendario local: 00:00:00.000 a 23:59:59.999.

func DayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	end := time.Date(y, m, d, 23, 59, 59, 999e6, t.Location())
	return start, end
}

// WeekStart devuelve la medianoche del domingo de la semana de t.
func WeekStart(t time.Time) time.Time {
	start, _ := DayBounds(t)
	return start.AddDate(0, 0, -int(start.Weekday()))
}

// DateKey devuelve la fecha local como YYYY-MM-DD.
func DateKey(t time.Time) string { return t.Format("2006-01-02") }

func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
