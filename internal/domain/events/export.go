package events

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Backup es el formato de respaldo JSON. Round-trip garantizado: exportar y
// re-importar con replace deja la colección idéntica (id, type, ts, data).
type Backup struct {
	Version  string  `json:"version"`
	Exported string  `json:"exported"`
	Events   []Event `json:"events"`
}

const backupVersion = "1.0"

// ExportJSON escribe el respaldo completo.
func ExportJSON(w io.Writer, evs []Event, now time.Time) error {
	b := Backup{
		Version:  backupVersion,
		Exported: now.UTC().Format(tsWireFormat),
		Events:   evs,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}

// ExportCSV escribe columnas type, timestamp (ISO-8601), data (JSON).
func ExportCSV(w io.Writer, evs []Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"type", "timestamp", "data"}); err != nil {
		return err
	}
	for _, ev := range evs {
		row := []string{string(ev.Type), ev.TS.UTC().Format(tsWireFormat), ev.DataJSON()}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SummaryText genera el resumen diario en texto plano, un párrafo por fecha.
// El orden de campos es fijo: hay lectores acostumbrados al formato.
func SummaryText(evs []Event, now time.Time) string {
	days := DailySummary(evs, now)
	blocks := make([]string, 0, len(days))
	for _, st := range days {
		blocks = append(blocks, summaryBlock(st))
	}
	return strings.Join(blocks, "\n")
}

// SummaryTextForDay genera el bloque de un solo día (mail diario).
func SummaryTextForDay(evs []Event, day time.Time, now time.Time) string {
	return summaryBlock(AggregateDay(evs, day, now))
}

func summaryBlock(st DailyStats) string {
	day, _ := time.Parse("2006-01-02", st.Date)
	dateStr := day.Format("January 2, 2006")

	sleepStr := "0 hours"
	if st.SleepHours > 0 {
		sleepStr = fmt.Sprintf("%.1f hours", st.SleepHours)
	}
	wakeStr := ""
	if st.AvgWakeWindowMinutes > 0 {
		wakeStr = fmt.Sprintf(", Avg wake window: %d minutes", st.AvgWakeWindowMinutes)
	}
	breastMinutes := int(st.BreastHours*60 + 0.5)
	breastStr := "0 minutes"
	if breastMinutes > 0 {
		breastStr = fmt.Sprintf("%d minutes", breastMinutes)
	}

	baby := fmt.Sprintf(
		"Baby Stats - Slept %s%s, Breastfed %s, Bottle Feed: %s oz, %d %s, %d %s, Antibiotic: %d, Wound Clean: %d, Vit D: %d",
		sleepStr, wakeStr, breastStr,
		oz(st.FeedOunces),
		st.PoopCount, plural(st.PoopCount, "poop"),
		st.PeeCount, plural(st.PeeCount, "pee"),
		st.AntibioticCount, st.WoundCleanCount, st.VitDCount,
	)
	mama := fmt.Sprintf(
		"Mama Stats - Pumped %s oz, Froze %s oz, Drank %s oz",
		oz(st.PumpOunces), oz(st.FreezeOunces), oz(st.H2OOunces),
	)

	return dateStr + "\n" + baby + "\n" + mama + "\n"
}

func oz(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
