package events

import (
	"math"
	"sort"
	"time"
)

// DailyStats son los agregados de un día calendario. Números planos, sin
// formato: el que presenta decide unidades y redondeo visual.
type DailyStats struct {
	Date string `json:"date"` // YYYY-MM-DD local

	SleepHours           float64 `json:"sleep_hours"`
	BreastHours          float64 `json:"breast_hours"`
	AvgWakeWindowMinutes int     `json:"avg_wake_window_minutes"`

	PeeCount        int `json:"pee_count"`
	PoopCount       int `json:"poop_count"`
	AntibioticCount int `json:"antibiotic_count"`
	WoundCleanCount int `json:"wound_clean_count"`
	VitDCount       int `json:"vit_d_count"`

	FeedOunces   float64 `json:"feed_ounces"`
	PumpOunces   float64 `json:"pump_ounces"`
	FreezeOunces float64 `json:"freeze_ounces"`
	H2OOunces    float64 `json:"h2o_ounces"`
}

// AggregateDay calcula los agregados del día calendario que contiene a day.
//
// El recorrido admite también eventos del día anterior: una ventana de
// vigilia puede arrancar antes de medianoche. Las sesiones se recortan al
// límite del día (una siesta que cruza medianoche aporta a cada día solo su
// porción). Una sesión abierta suma hasta now, y únicamente si el día
// consultado es hoy.
func AggregateDay(evs []Event, day time.Time, now time.Time) DailyStats {
	dayStart, dayEnd := DayBounds(day)

	// Se admite desde el día anterior (una ventana de vigilia puede arrancar
	// antes de medianoche) hasta el día siguiente (el end que cierra una
	// sesión cruzada llega después de medianoche). El recorte a los límites
	// del día lo hace clippedHours; los conteos filtran con inDay.
	prevStart := dayStart.AddDate(0, 0, -1)
	nextEnd := dayEnd.AddDate(0, 0, 1)

	in := make([]Event, 0, len(evs))
	for _, ev := range evs {
		if !ev.TS.Before(prevStart) && !ev.TS.After(nextEnd) {
			in = append(in, ev)
		}
	}
	SortAsc(in)

	st := DailyStats{Date: DateKey(dayStart)}
	inDay := func(t time.Time) bool { return !t.Before(dayStart) && !t.After(dayEnd) }

	var wakeWindows []float64
	var currentSleepStart, lastSleepEnd time.Time
	var currentBreastStart time.Time

	for _, ev := range in {
		t := ev.TS
		switch ev.Type {
		case EventTypeSleepStart:
			// La ventana de vigilia cuenta para el día donde el bebé se
			// vuelve a dormir (este start).
			if !lastSleepEnd.IsZero() && inDay(t) {
				wakeWindows = append(wakeWindows, t.Sub(lastSleepEnd).Hours())
			}
			currentSleepStart = t
			lastSleepEnd = time.Time{}

		case EventTypeSleepEnd:
			if !currentSleepStart.IsZero() {
				st.SleepHours += clippedHours(currentSleepStart, t, dayStart, dayEnd)
				lastSleepEnd = t
				currentSleepStart = time.Time{}
			}

		case EventTypeBreastStart:
			currentBreastStart = t

		case EventTypeBreastEnd:
			if !currentBreastStart.IsZero() {
				st.BreastHours += clippedHours(currentBreastStart, t, dayStart, dayEnd)
				currentBreastStart = time.Time{}
			}
		}

		if !inDay(t) {
			continue
		}
		switch ev.Type {
		case EventTypePee:
			st.PeeCount++
		case EventTypePoop:
			st.PoopCount++
		case EventTypeAntibiotic:
			st.AntibioticCount++
		case EventTypeWoundClean:
			st.WoundCleanCount++
		case EventTypeVitD:
			st.VitDCount++
		case EventTypeFeed:
			st.FeedOunces += ev.Amount
		case EventTypePump:
			st.PumpOunces += ev.Amount
		case EventTypeFreeze:
			st.FreezeOunces += ev.Amount
		case EventTypeH2O:
			st.H2OOunces += ev.Amount
		}
	}

	// Sesiones abiertas: aportan solo hasta now, nunca más allá, y solo
	// cuando el día consultado es hoy.
	if SameDay(dayStart, now) {
		if !currentSleepStart.IsZero() && now.After(currentSleepStart) {
			st.SleepHours += now.Sub(currentSleepStart).Hours()
		}
		if !currentBreastStart.IsZero() && now.After(currentBreastStart) {
			st.BreastHours += now.Sub(currentBreastStart).Hours()
		}
	}

	if len(wakeWindows) > 0 {
		var total float64
		for _, w := range wakeWindows {
			total += w
		}
		avg := total / float64(len(wakeWindows))
		st.AvgWakeWindowMinutes = int(math.Round(avg * 60))
	}

	return st
}

// clippedHours devuelve la duración en horas de la porción de [from, to]
// dentro de [lo, hi].
func clippedHours(from, to, lo, hi time.Time) float64 {
	if from.Before(lo) {
		from = lo
	}
	if to.After(hi) {
		to = hi
	}
	if !to.After(from) {
		return 0
	}
	return to.Sub(from).Hours()
}

// DailySummary aplica AggregateDay a cada fecha calendario presente en la
// colección, en orden ascendente.
func DailySummary(evs []Event, now time.Time) []DailyStats {
	days := map[string]time.Time{}
	for _, ev := range evs {
		key := DateKey(ev.TS)
		if _, ok := days[key]; !ok {
			start, _ := DayBounds(ev.TS)
			days[key] = start
		}
	}

	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]DailyStats, 0, len(keys))
	for _, k := range keys {
		out = append(out, AggregateDay(evs, days[k], now))
	}
	return out
}
