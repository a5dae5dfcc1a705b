package events

type EventType string

const (
	// Discretos (conteo simple)
	EventTypePee        EventType = "pee"
	EventTypePoop       EventType = "poop"
	EventTypeAntibiotic EventType = "antibiotic"
	EventTypeWoundClean EventType = "wound_clean"
	EventTypeVitD       EventType = "vit_d"

	// Pareados (sesiones start/end)
	EventTypeSleepStart  EventType = "sleep_start"
	EventTypeSleepEnd    EventType = "sleep_end"
	EventTypeBreastStart EventType = "breast_start"
	EventTypeBreastEnd   EventType = "breast_end"

	// Cuantificados (llevan cantidad en onzas)
	EventTypeFeed   EventType = "feed"
	EventTypePump   EventType = "pump"
	EventTypeFreeze EventType = "freeze"
	EventTypeH2O    EventType = "h2o"
)

var allTypes = map[EventType]bool{
	EventTypePee:         true,
	EventTypePoop:        true,
	EventTypeAntibiotic:  true,
	EventTypeWoundClean:  true,
	EventTypeVitD:        true,
	EventTypeSleepStart:  true,
	EventTypeSleepEnd:    true,
	EventTypeBreastStart: true,
	EventTypeBreastEnd:   true,
	EventTypeFeed:        true,
	EventTypePump:        true,
	EventTypeFreeze:      true,
	EventTypeH2O:         true,
}

func (t EventType) Valid() bool { return allTypes[t] }

// Quantified indica si el tipo lleva cantidad (onzas).
func (t EventType) Quantified() bool {
	switch t {
	case EventTypeFeed, EventTypePump, EventTypeFreeze, EventTypeH2O:
		return true
	}
	return false
}

// Paired indica si el tipo forma sesiones start/end.
func (t EventType) Paired() bool {
	switch t {
	case EventTypeSleepStart, EventTypeSleepEnd, EventTypeBreastStart, EventTypeBreastEnd:
		return true
	}
	return false
}

type Category string

const (
	CategoryBaby Category = "baby"
	CategoryMama Category = "mama"
)

// Category separa actividades del bebé de las de la mamá (pump/freeze/h2o).
func (t EventType) Category() Category {
	switch t {
	case EventTypePump, EventTypeFreeze, EventTypeH2O:
		return CategoryMama
	}
	return CategoryBaby
}
