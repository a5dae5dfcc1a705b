package events

import "time"

// Estado booleano derivado. Nunca se guarda: siempre se recalcula de la
// colección completa, así sobrevive borrados y ediciones externas.

// IsSleeping compara el sleep_start más reciente contra el sleep_end más
// reciente, ignorando eventos con timestamp futuro (no deberían existir,
// pero un dispositivo con reloj corrido puede colarlos).
func IsSleeping(evs []Event, now time.Time) bool {
	var start, end *Event
	for i := range evs {
		ev := &evs[i]
		if ev.TS.After(now) {
			continue
		}
		switch ev.Type {
		case EventTypeSleepStart:
			if start == nil || ev.TS.After(start.TS) {
				start = ev
			}
		case EventTypeSleepEnd:
			if end == nil || ev.TS.After(end.TS) {
				end = ev
			}
		}
	}

	switch {
	case start != nil && end != nil:
		return start.TS.After(end.TS)
	case start != nil:
		// start sin end: sesión abierta
		return true
	default:
		return false
	}
}

// IsBreastfeeding escanea en orden descendente por TS y decide con el primer
// evento breast_* que aparezca. A diferencia de IsSleeping no filtra eventos
// futuros ni compara instantes: los dos cálculos difieren en casos borde
// raros (timestamps simultáneos, eventos adelantados) y los clientes ya
// dependen de cada comportamiento. No unificar.
func IsBreastfeeding(evs []Event) bool {
	sorted := make([]Event, len(evs))
	copy(sorted, evs)
	SortDesc(sorted)
	for _, ev := range sorted {
		switch ev.Type {
		case EventTypeBreastStart:
			return true
		case EventTypeBreastEnd:
			return false
		}
	}
	return false
}
