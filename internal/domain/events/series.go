package events

import (
	"math"
	"time"
)

type Granularity string

const (
	GranularityDaily  Granularity = "daily"
	GranularityWeekly Granularity = "weekly"
)

func (g Granularity) Valid() bool {
	return g == GranularityDaily || g == GranularityWeekly
}

// Metric es la métrica graficable. Las simples cuentan o suman onzas por el
// TS del evento; las de duración (sleep, breast, avg_wake_window) parean
// sesiones y asignan al período del start.
type Metric string

const (
	MetricFeed          Metric = "feed"
	MetricSleep         Metric = "sleep"
	MetricBreast        Metric = "breast"
	MetricAvgWakeWindow Metric = "avg_wake_window"
	MetricPoop          Metric = "poop"
	MetricPee           Metric = "pee"
	MetricAntibiotic    Metric = "antibiotic"
	MetricWoundClean    Metric = "wound_clean"
	MetricVitD          Metric = "vit_d"
	MetricPump          Metric = "pump"
	MetricFreeze        Metric = "freeze"
	MetricH2O           Metric = "h2o"
)

var simpleMetricTypes = map[Metric]EventType{
	MetricFeed:       EventTypeFeed,
	MetricPoop:       EventTypePoop,
	MetricPee:        EventTypePee,
	MetricAntibiotic: EventTypeAntibiotic,
	MetricWoundClean: EventTypeWoundClean,
	MetricVitD:       EventTypeVitD,
	MetricPump:       EventTypePump,
	MetricFreeze:     EventTypeFreeze,
	MetricH2O:        EventTypeH2O,
}

func (m Metric) Valid() bool {
	if _, ok := simpleMetricTypes[m]; ok {
		return true
	}
	return m == MetricSleep || m == MetricBreast || m == MetricAvgWakeWindow
}

type SeriesPoint struct {
	PeriodStart time.Time `json:"period_start"`
	Value       float64   `json:"value"`
}

// WindowAll pide la serie desde el evento más antiguo.
const WindowAll = 0

// BuildSeries arma la serie de períodos para graficar. Pre-asigna un bucket
// en cero por cada período de la ventana, así los períodos vacíos aparecen
// como puntos explícitos y la serie nunca tiene huecos. Las semanas
// arrancan el domingo. Orden: del más viejo al más nuevo.
//
// Unidades: sleep en horas, breast en minutos (redondeados por sesión),
// avg_wake_window en minutos promedio del período; el resto, conteos u onzas.
func BuildSeries(evs []Event, metric Metric, granularity Granularity, windowDays int, now time.Time) []SeriesPoint {
	nowMidnight, _ := DayBounds(now)

	var startDate time.Time
	var days int
	if windowDays > 0 {
		startDate, _ = DayBounds(now.AddDate(0, 0, -windowDays))
		days = windowDays
	} else {
		// Toda la historia: desde el evento más antiguo; dos semanas por
		// defecto si no hay eventos.
		earliest := time.Time{}
		for _, ev := range evs {
			if earliest.IsZero() || ev.TS.Before(earliest) {
				earliest = ev.TS
			}
		}
		if earliest.IsZero() {
			earliest = now.AddDate(0, 0, -14)
		}
		startDate, _ = DayBounds(earliest)
		days = int(math.Ceil(now.Sub(startDate).Hours() / 24))
		if days < 1 {
			days = 1
		}
	}

	// Buckets pre-asignados en cero.
	values := map[string]float64{}
	var periods []time.Time
	addPeriod := func(p time.Time) {
		key := DateKey(p)
		if _, ok := values[key]; ok {
			return
		}
		values[key] = 0
		periods = append(periods, p)
	}
	if granularity == GranularityWeekly {
		weeks := (days + 6) / 7
		for i := weeks - 1; i >= 0; i-- {
			addPeriod(WeekStart(nowMidnight.AddDate(0, 0, -i*7)))
		}
	} else {
		for i := days - 1; i >= 0; i-- {
			addPeriod(nowMidnight.AddDate(0, 0, -i))
		}
	}

	periodKey := func(t time.Time) string {
		if granularity == GranularityWeekly {
			return DateKey(WeekStart(t))
		}
		start, _ := DayBounds(t)
		return DateKey(start)
	}
	add := func(t time.Time, v float64) {
		key := periodKey(t)
		if _, ok := values[key]; ok {
			values[key] += v
		}
	}

	relevant := evs
	if windowDays > 0 {
		relevant = make([]Event, 0, len(evs))
		for _, ev := range evs {
			if !ev.TS.Before(startDate) {
				relevant = append(relevant, ev)
			}
		}
	}

	switch metric {
	case MetricSleep, MetricBreast:
		startType, endType := EventTypeSleepStart, EventTypeSleepEnd
		if metric == MetricBreast {
			startType, endType = EventTypeBreastStart, EventTypeBreastEnd
		}
		sorted := make([]Event, len(relevant))
		copy(sorted, relevant)
		SortAsc(sorted)

		var open time.Time
		emit := func(start, end time.Time) {
			h := end.Sub(start).Hours()
			if metric == MetricBreast {
				add(start, math.Round(h*60))
			} else {
				add(start, h)
			}
		}
		for _, ev := range sorted {
			switch ev.Type {
			case startType:
				open = ev.TS
			case endType:
				if !open.IsZero() {
					emit(open, ev.TS)
					open = time.Time{}
				}
			}
		}
		// Sesión abierta: aporta hasta now.
		if !open.IsZero() && (windowDays <= 0 || !open.Before(startDate)) && now.After(open) {
			emit(open, now)
		}

	case MetricAvgWakeWindow:
		sorted := make([]Event, len(relevant))
		copy(sorted, relevant)
		SortAsc(sorted)

		wake := map[string][]float64{}
		var lastSleepEnd, currentSleepStart time.Time
		for _, ev := range sorted {
			switch ev.Type {
			case EventTypeSleepStart:
				if !lastSleepEnd.IsZero() {
					key := periodKey(ev.TS)
					if _, ok := values[key]; ok {
						wake[key] = append(wake[key], ev.TS.Sub(lastSleepEnd).Hours())
					}
				}
				currentSleepStart = ev.TS
				lastSleepEnd = time.Time{}
			case EventTypeSleepEnd:
				if !currentSleepStart.IsZero() {
					lastSleepEnd = ev.TS
					currentSleepStart = time.Time{}
				}
			}
		}
		for key, ws := range wake {
			var total float64
			for _, w := range ws {
				total += w
			}
			values[key] = math.Round(total / float64(len(ws)) * 60)
		}

	default:
		typ := simpleMetricTypes[metric]
		for _, ev := range relevant {
			if ev.Type != typ {
				continue
			}
			if typ.Quantified() {
				add(ev.TS, ev.Amount)
			} else {
				add(ev.TS, 1)
			}
		}
	}

	out := make([]SeriesPoint, 0, len(periods))
	for _, p := range periods {
		out = append(out, SeriesPoint{PeriodStart: p, Value: values[DateKey(p)]})
	}
	return out
}
