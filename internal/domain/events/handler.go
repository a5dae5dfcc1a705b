package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// SummarySender manda el resumen diario por mail. Lo implementa el mailer;
// puede ser nil si no hay SMTP configurado.
type SummarySender interface {
	SendSummary(ctx context.Context, subject, body string) error
}

func RegisterRoutes(r chi.Router, svc *Service, sender SummarySender) {
	r.Route("/events", func(er chi.Router) {
		er.Post("/", createEventHandler(svc))
		er.Get("/", listEventsHandler(svc))
		er.Post("/undo", undoHandler(svc))
		er.Patch("/{eventID}/timestamp", editTimestampHandler(svc))
		er.Patch("/{eventID}/amount", editAmountHandler(svc))
		er.Delete("/{eventID}", deleteEventHandler(svc))
	})

	// Borrado de la sesión pareada completa (sleep o breast)
	r.Delete("/sessions/{startID}/{endID}", deleteSessionHandler(svc))

	r.Get("/state", stateHandler(svc))
	r.Get("/stats/daily", dailyStatsHandler(svc))
	r.Get("/stats/summary", summaryStatsHandler(svc))
	r.Get("/charts/series", seriesHandler(svc))
	r.Get("/log", logHandler(svc))

	r.Get("/export/json", exportJSONHandler(svc))
	r.Get("/export/csv", exportCSVHandler(svc))
	r.Get("/export/summary", exportSummaryHandler(svc))

	r.Post("/import", importHandler(svc))
	r.Post("/import/bulk", bulkImportHandler(svc))

	r.Post("/summary/email", emailSummaryHandler(svc, sender))
}

// createEventRequest es el cuerpo para registrar un evento "ahora".
type createEventRequest struct {
	Type   EventType `json:"type" enums:"pee,poop,antibiotic,wound_clean,vit_d,sleep_start,sleep_end,breast_start,breast_end,feed,pump,freeze,h2o"`
	Amount float64   `json:"amount"` // onzas; solo para tipos cuantificados
}

// eventResponse envuelve el evento resultante de una mutación. warning viene
// cuando la escritura al store primario falló pero el cambio quedó en
// memoria (y en el fallback local si lo hay).
type eventResponse struct {
	Event   Event  `json:"event"`
	Merged  bool   `json:"merged,omitempty"`
	Warning string `json:"warning,omitempty"`
}

type stateResponse struct {
	Sleeping      bool `json:"sleeping"`
	Breastfeeding bool `json:"breastfeeding"`
}

type importResponse struct {
	Mode    string `json:"mode"`
	Count   int    `json:"count"`
	Warning string `json:"warning,omitempty"`
}

// createEventHandler godoc
// @Summary Registrar evento
// @Description Registra un evento con timestamp "ahora". Si ya existe un evento cuantificado del mismo tipo en los últimos 60 segundos, las cantidades se suman sobre el existente (merged=true) en lugar de crear uno nuevo.
// @Tags events
// @Accept json
// @Produce json
// @Param payload body createEventRequest true "Tipo y cantidad (amount solo para feed, pump, freeze, h2o)"
// @Success 201 {object} eventResponse
// @Success 200 {object} eventResponse "Cuando se agregó sobre un evento existente"
// @Failure 400 {string} string "tipo inválido / cantidad inválida"
// @Router /events [post]
func createEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		ev, merged, err := svc.Add(r.Context(), req.Type, req.Amount)
		warning, err := splitPersistWarning(err)
		if err != nil {
			writeError(w, err)
			return
		}

		status := http.StatusCreated
		if merged {
			status = http.StatusOK
		}
		writeJSON(w, status, eventResponse{Event: ev, Merged: merged, Warning: warning})
	}
}

// listEventsHandler godoc
// @Summary Listar eventos
// @Description Lista eventos en orden descendente por timestamp. Permite filtrar por tipos, categoría y rango.
// @Tags events
// @Produce json
// @Param limit query int false "Máximo de eventos (1-500). Por defecto 50"
// @Param types query string false "Lista CSV de tipos (ej: feed,pump)"
// @Param category query string false "baby o mama"
// @Param from query string false "Timestamp mínimo (RFC3339)"
// @Param to query string false "Timestamp máximo (RFC3339)"
// @Success 200 {array} Event
// @Failure 400 {string} string "Parámetros de filtro inválidos"
// @Router /events [get]
func listEventsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, svc.List(filter))
	}
}

// undoHandler godoc
// @Summary Deshacer el último evento
// @Description Elimina el evento más reciente. Con la colección vacía no hace nada y devuelve event=null.
// @Tags events
// @Produce json
// @Success 200 {object} eventResponse
// @Router /events/undo [post]
func undoHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev, err := svc.Undo(r.Context())
		warning, err := splitPersistWarning(err)
		if err != nil {
			writeError(w, err)
			return
		}
		resp := struct {
			Event   *Event `json:"event"`
			Warning string `json:"warning,omitempty"`
		}{Event: ev, Warning: warning}
		writeJSON(w, http.StatusOK, resp)
	}
}

type editTimestampRequest struct {
	TS string `json:"ts"` // RFC3339
}

// editTimestampHandler godoc
// @Summary Corregir timestamp de un evento
// @Description Mueve un evento a otro instante. Los timestamps futuros se rechazan. La colección se re-ordena y el estado derivado se recalcula.
// @Tags events
// @Accept json
// @Produce json
// @Param eventID path string true "ID del evento"
// @Param payload body editTimestampRequest true "Nuevo timestamp en RFC3339"
// @Success 200 {object} eventResponse
// @Failure 400 {string} string "ts inválido o futuro"
// @Failure 404 {string} string "event not found"
// @Router /events/{eventID}/timestamp [patch]
func editTimestampHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req editTimestampRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		ts, err := time.Parse(time.RFC3339, req.TS)
		if err != nil {
			http.Error(w, "ts must be RFC3339", http.StatusBadRequest)
			return
		}

		ev, err := svc.EditTimestamp(r.Context(), chi.URLParam(r, "eventID"), ts)
		warning, err := splitPersistWarning(err)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, eventResponse{Event: ev, Warning: warning})
	}
}

type editAmountRequest struct {
	Amount float64 `json:"amount"`
}

// editAmountHandler godoc
// @Summary Corregir cantidad de un evento
// @Description Cambia las onzas de un evento cuantificado (feed, pump, freeze, h2o). Para cualquier otro tipo devuelve 400.
// @Tags events
// @Accept json
// @Produce json
// @Param eventID path string true "ID del evento"
// @Param payload body editAmountRequest true "Nueva cantidad en onzas"
// @Success 200 {object} eventResponse
// @Failure 400 {string} string "cantidad inválida o tipo no cuantificado"
// @Failure 404 {string} string "event not found"
// @Router /events/{eventID}/amount [patch]
func editAmountHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req editAmountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		ev, err := svc.EditAmount(r.Context(), chi.URLParam(r, "eventID"), req.Amount)
		warning, err := splitPersistWarning(err)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, eventResponse{Event: ev, Warning: warning})
	}
}

// deleteEventHandler godoc
// @Summary Eliminar un evento
// @Description Elimina un evento en forma permanente.
// @Tags events
// @Produce json
// @Param eventID path string true "ID del evento"
// @Success 200 {object} importResponse
// @Failure 404 {string} string "event not found"
// @Router /events/{eventID} [delete]
func deleteEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := svc.Delete(r.Context(), chi.URLParam(r, "eventID"))
		warning, err := splitPersistWarning(err)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": true, "warning": warning})
	}
}

// deleteSessionHandler godoc
// @Summary Eliminar una sesión pareada
// @Description Elimina ambos eventos de una sesión (start y end) en una sola operación. Si uno de los dos ya no existe, elimina el otro igual.
// @Tags events
// @Produce json
// @Param startID path string true "ID del evento de inicio"
// @Param endID path string true "ID del evento de fin"
// @Success 200 {object} importResponse
// @Failure 404 {string} string "session not found"
// @Router /sessions/{startID}/{endID} [delete]
func deleteSessionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := svc.DeleteSession(r.Context(), chi.URLParam(r, "startID"), chi.URLParam(r, "endID"))
		warning, err := splitPersistWarning(err)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": true, "warning": warning})
	}
}

// stateHandler godoc
// @Summary Estado actual
// @Description Devuelve si el bebé está durmiendo y si hay una toma de pecho en curso, derivado de la colección completa de eventos.
// @Tags state
// @Produce json
// @Success 200 {object} stateResponse
// @Router /state [get]
func stateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, stateResponse{
			Sleeping:      svc.Sleeping(),
			Breastfeeding: svc.Breastfeeding(),
		})
	}
}

// dailyStatsHandler godoc
// @Summary Estadísticas de un día
// @Description Agrega la colección para un día local (por defecto hoy): horas de sueño, ventanas de vigilia, minutos de pecho, conteos y onzas. Las sesiones que cruzan medianoche se reparten entre los dos días.
// @Tags stats
// @Produce json
// @Param date query string false "Día en formato YYYY-MM-DD (por defecto hoy)"
// @Success 200 {object} DailyStats
// @Failure 400 {string} string "date inválido"
// @Router /stats/daily [get]
func dailyStatsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, err := parseDayParam(r, svc)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, svc.StatsForDay(day))
	}
}

// summaryStatsHandler godoc
// @Summary Resumen de todos los días
// @Description Devuelve las estadísticas diarias de cada día con al menos un evento, en orden ascendente por fecha.
// @Tags stats
// @Produce json
// @Success 200 {array} DailyStats
// @Router /stats/summary [get]
func summaryStatsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Summary())
	}
}

// seriesHandler godoc
// @Summary Serie temporal para gráficos
// @Description Construye la serie de una métrica con baldes diarios o semanales (semanas desde el domingo). Los períodos sin datos aparecen con valor cero.
// @Tags charts
// @Produce json
// @Param metric query string true "sleep, breast, avg_wake_window, feed, pump, freeze, h2o, poop, pee, antibiotic, wound_clean, vit_d"
// @Param granularity query string false "daily (default) o weekly"
// @Param window query int false "Ventana en días hacia atrás; 0 = todo el historial. Por defecto 0"
// @Success 200 {array} SeriesPoint
// @Failure 400 {string} string "métrica o granularidad inválida"
// @Router /charts/series [get]
func seriesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metric := Metric(strings.TrimSpace(r.URL.Query().Get("metric")))
		if !metric.Valid() {
			http.Error(w, "invalid metric", http.StatusBadRequest)
			return
		}

		granularity := GranularityDaily
		if v := strings.TrimSpace(r.URL.Query().Get("granularity")); v != "" {
			granularity = Granularity(v)
			if granularity != GranularityDaily && granularity != GranularityWeekly {
				http.Error(w, "granularity must be daily or weekly", http.StatusBadRequest)
				return
			}
		}

		window := WindowAll
		if v := strings.TrimSpace(r.URL.Query().Get("window")); v != "" && v != "all" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				http.Error(w, "window must be a non-negative integer or all", http.StatusBadRequest)
				return
			}
			window = n
		}

		writeJSON(w, http.StatusOK, svc.Series(metric, granularity, window))
	}
}

// logHandler godoc
// @Summary Log de un día
// @Description Proyecta los eventos de un día local como entradas de log: sesiones pareadas colapsadas en una sola entrada, el resto como eventos sueltos, descendente por instante.
// @Tags log
// @Produce json
// @Param date query string false "Día en formato YYYY-MM-DD (por defecto hoy)"
// @Success 200 {array} LogEntry
// @Failure 400 {string} string "date inválido"
// @Router /log [get]
func logHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, err := parseDayParam(r, svc)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, svc.LogForDay(day))
	}
}

// exportJSONHandler godoc
// @Summary Exportar backup JSON
// @Description Descarga la colección completa como backup versionado re-importable.
// @Tags export
// @Produce json
// @Success 200 {object} Backup
// @Router /export/json [get]
func exportJSONHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="events-backup.json"`)
		if err := ExportJSON(w, svc.Snapshot(), svc.clock.Now()); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}

// exportCSVHandler godoc
// @Summary Exportar CSV
// @Description Descarga la colección completa como CSV (type, timestamp, data).
// @Tags export
// @Produce text/csv
// @Success 200 {string} string
// @Router /export/csv [get]
func exportCSVHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="events.csv"`)
		if err := ExportCSV(w, svc.Snapshot()); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}

// exportSummaryHandler godoc
// @Summary Exportar resumen de texto
// @Description Descarga el resumen diario legible de todos los días con datos.
// @Tags export
// @Produce plain
// @Success 200 {string} string
// @Router /export/summary [get]
func exportSummaryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, SummaryText(svc.Snapshot(), svc.clock.Now()))
	}
}

// importHandler godoc
// @Summary Importar backup JSON
// @Description Importa un backup (objeto versionado o array plano de eventos). mode=merge une con lo existente deduplicando por id; mode=replace descarta la colección actual. Un formato irreconocible aborta sin tocar nada.
// @Tags import
// @Accept json
// @Produce json
// @Param mode query string false "merge (default) o replace"
// @Success 200 {object} importResponse
// @Failure 400 {string} string "formato irreconocible / mode inválido"
// @Router /import [post]
func importHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode := strings.TrimSpace(r.URL.Query().Get("mode"))
		if mode == "" {
			mode = "merge"
		}
		if mode != "merge" && mode != "replace" {
			http.Error(w, "mode must be merge or replace", http.StatusBadRequest)
			return
		}

		incoming, err := ParseBackup(http.MaxBytesReader(w, r.Body, 10<<20))
		if err != nil {
			writeError(w, err)
			return
		}

		var count int
		if mode == "replace" {
			count, err = svc.ReplaceImport(r.Context(), incoming)
		} else {
			count, err = svc.MergeImport(r.Context(), incoming)
		}
		warning, err := splitPersistWarning(err)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, importResponse{Mode: mode, Count: count, Warning: warning})
	}
}

// bulkImportHandler godoc
// @Summary Importar filas manuales
// @Description Importa filas date/time/type/amount validadas una por una. Las filas vacías se saltan; las inválidas vuelven enumeradas en errors sin abortar el resto.
// @Tags import
// @Accept json
// @Produce json
// @Param payload body []BulkRow true "Filas a importar"
// @Success 200 {object} ImportReport
// @Failure 400 {string} string "invalid json / ninguna fila válida"
// @Router /import/bulk [post]
func bulkImportHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rows []BulkRow
		if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		report, err := svc.BulkImport(r.Context(), rows)
		warning, err := splitPersistWarning(err)

		var batch *BatchError
		switch {
		case err == nil:
		case errors.As(err, &batch) && report.Imported > 0:
			// parcial: el reporte ya enumera las filas rechazadas
		default:
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, struct {
			ImportReport
			Warning string `json:"warning,omitempty"`
		}{ImportReport: report, Warning: warning})
	}
}

// emailSummaryHandler godoc
// @Summary Enviar resumen del día por mail
// @Description Manda el resumen del día actual a los destinatarios configurados. Sin SMTP configurado devuelve 503.
// @Tags export
// @Produce json
// @Success 200 {object} importResponse
// @Failure 503 {string} string "smtp not configured"
// @Router /summary/email [post]
func emailSummaryHandler(svc *Service, sender SummarySender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sender == nil {
			http.Error(w, "smtp not configured", http.StatusServiceUnavailable)
			return
		}

		subject, body := svc.SummaryForNow()
		if err := sender.SendSummary(r.Context(), subject, body); err != nil {
			http.Error(w, "send failed: "+err.Error(), http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"sent": true})
	}
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	filter := ListFilter{Limit: limit}

	// types=feed,pump
	if v := strings.TrimSpace(r.URL.Query().Get("types")); v != "" {
		parts := strings.Split(v, ",")
		out := make([]EventType, 0, len(parts))
		for _, p := range parts {
			t := EventType(strings.TrimSpace(p))
			if t == "" {
				continue
			}
			if !t.Valid() {
				return ListFilter{}, errors.New("unknown event type: " + string(t))
			}
			out = append(out, t)
		}
		if len(out) > 0 {
			filter.Types = out
		}
	}

	if v := strings.TrimSpace(r.URL.Query().Get("category")); v != "" {
		c := Category(v)
		if c != CategoryBaby && c != CategoryMama {
			return ListFilter{}, errors.New("category must be baby or mama")
		}
		filter.Category = c
	}

	// from/to RFC3339
	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("from must be RFC3339")
		}
		filter.From = &t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("to must be RFC3339")
		}
		filter.To = &t
	}

	return filter, nil
}

// parseDayParam interpreta ?date=YYYY-MM-DD en la zona local del servicio;
// sin parámetro es hoy.
func parseDayParam(r *http.Request, svc *Service) (time.Time, error) {
	now := svc.clock.Now()
	v := strings.TrimSpace(r.URL.Query().Get("date"))
	if v == "" {
		return now, nil
	}
	day, err := time.ParseInLocation("2006-01-02", v, now.Location())
	if err != nil {
		return time.Time{}, errors.New("date must be YYYY-MM-DD")
	}
	return day, nil
}

// splitPersistWarning separa el caso "el cambio entró pero el store primario
// falló": eso se reporta como warning en la respuesta, no como error HTTP.
func splitPersistWarning(err error) (string, error) {
	if err == nil {
		return "", nil
	}
	var pe *PersistError
	if errors.As(err, &pe) {
		return pe.Error(), nil
	}
	return "", err
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrFutureTimestamp), errors.Is(err, ErrBadFormat):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		var batch *BatchError
		if errors.As(err, &batch) {
			writeJSON(w, http.StatusBadRequest, batch)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeJSON está duplicado a propósito en vez de vivir en un helper común:
// un solo módulo de dominio todavía no justifica el paquete compartido.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
