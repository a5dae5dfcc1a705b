package events

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"eps-tracker/internal/platform/clock"
	"eps-tracker/internal/platform/logger"
)

// Ventana del pareo "toqué el botón dos veces": dos eventos cuantificados
// del mismo tipo dentro de este lapso se suman en uno solo.
const aggregateWindow = 60 * time.Second

// Notifier recibe el snapshot completo después de cada mutación confirmada.
// No hay camino incremental a propósito: reemplazo total o nada, para que
// el estado derivado nunca pueda divergir de la fuente.
type Notifier interface {
	Publish(seq uint64, evs []Event)
}

// Service es el dueño de la colección en memoria y de todas las mutaciones.
// Las mutaciones serializan sobre el mutex (un escritor lógico por proceso),
// persisten y recién después publican. Todo estado derivado (booleanos,
// stats, series, log) se recalcula de la colección completa en cada lectura.
type Service struct {
	mu     sync.RWMutex
	events []Event // descendente por TS
	seq    uint64  // secuencia monotónica de snapshots publicados/aplicados

	repo     Repository
	fallback Repository
	clock    clock.Clock
	log      logger.Logger
	notifier Notifier
}

type ServiceOptions struct {
	Fallback Repository // store local durable; puede ser nil
	Clock    clock.Clock
	Logger   logger.Logger
	Notifier Notifier
}

func NewService(repo Repository, opts ServiceOptions) *Service {
	s := &Service{
		repo:     repo,
		fallback: opts.Fallback,
		clock:    opts.Clock,
		log:      opts.Logger,
		notifier: opts.Notifier,
	}
	if s.clock == nil {
		s.clock = clock.System()
	}
	if s.log == nil {
		s.log = logger.Nop{}
	}
	return s
}

// Load trae la colección completa del store. Si el primario falla intenta el
// fallback local; solo si ambos fallan devuelve error.
func (s *Service) Load(ctx context.Context) error {
	evs, err := s.repo.LoadAll(ctx)
	if err != nil {
		if s.fallback == nil {
			return err
		}
		s.log.Warn("primary store load failed, trying fallback", map[string]any{"err": err.Error()})
		evs, err = s.fallback.LoadAll(ctx)
		if err != nil {
			return err
		}
	}

	SortDesc(evs)

	s.mu.Lock()
	s.events = evs
	s.mu.Unlock()
	return nil
}

// -------------------------
// Mutaciones
// -------------------------

// Add valida y registra un evento con TS = ahora. Si existe un evento del
// mismo tipo dentro de los últimos 60 segundos y ambos llevan cantidad
// distinta de cero, suma la cantidad sobre el existente en lugar de crear
// uno nuevo (el TS del existente se preserva). Devuelve el evento resultante
// y si fue un merge.
func (s *Service) Add(ctx context.Context, typ EventType, amount float64) (Event, bool, error) {
	if !typ.Valid() {
		return Event{}, false, ErrInvalidInput
	}
	if math.IsNaN(amount) || amount < 0 {
		return Event{}, false, ErrInvalidInput
	}
	if !typ.Quantified() && amount != 0 {
		// un pee con cantidad es un estado ilegal
		return Event{}, false, ErrInvalidInput
	}

	// el formato de backup guarda milisegundos: más precisión acá rompería
	// el round-trip export/import
	now := s.clock.Now().Truncate(time.Millisecond)

	s.mu.Lock()
	defer s.mu.Unlock()

	if typ.Quantified() && amount > 0 {
		cutoff := now.Add(-aggregateWindow)
		for i := range s.events {
			ev := &s.events[i]
			if ev.Type != typ || ev.TS.Before(cutoff) {
				continue
			}
			if ev.Amount > 0 {
				ev.Amount += amount
				err := s.persistUpsert(ctx, *ev)
				s.bumpAndNotify()
				return *ev, true, err
			}
		}
	}

	ev := Event{ID: uuid.NewString(), Type: typ, TS: now, Amount: amount}
	s.events = append([]Event{ev}, s.events...)
	err := s.persistUpsert(ctx, ev)
	s.bumpAndNotify()
	return ev, false, err
}

// Undo elimina el evento más reciente (cabeza de la lista). No-op con la
// colección vacía.
func (s *Service) Undo(ctx context.Context) (*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.events) == 0 {
		return nil, nil
	}
	head := s.events[0]
	s.events = s.events[1:]
	err := s.persistDelete(ctx, head.ID)
	s.bumpAndNotify()
	return &head, err
}

// EditTimestamp corrige el instante de un evento. Rechaza futuros, re-ordena
// y persiste; el estado derivado se recalcula solo en la próxima lectura.
func (s *Service) EditTimestamp(ctx context.Context, id string, ts time.Time) (Event, error) {
	ts = ts.Truncate(time.Millisecond)
	if ts.After(s.clock.Now()) {
		return Event{}, ErrFutureTimestamp
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Event{}, ErrNotFound
	}
	s.events[i].TS = ts
	SortDesc(s.events)

	j := s.indexOf(id)
	err := s.persistUpsert(ctx, s.events[j])
	s.bumpAndNotify()
	return s.events[j], err
}

// EditAmount corrige la cantidad de un evento cuantificado.
func (s *Service) EditAmount(ctx context.Context, id string, amount float64) (Event, error) {
	if math.IsNaN(amount) || amount < 0 {
		return Event{}, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Event{}, ErrNotFound
	}
	if !s.events[i].Type.Quantified() {
		return Event{}, ErrInvalidInput
	}
	s.events[i].Amount = amount
	err := s.persistUpsert(ctx, s.events[i])
	s.bumpAndNotify()
	return s.events[i], err
}

// Delete elimina un evento. Permanente: acá no hay tombstones.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	s.events = append(s.events[:i], s.events[i+1:]...)
	err := s.persistDelete(ctx, id)
	s.bumpAndNotify()
	return err
}

// DeleteSession elimina atómicamente (mejor esfuerzo) los dos eventos de una
// sesión pareada. Si un borrado contra el store falla, el error se reporta,
// nunca se traga.
func (s *Service) DeleteSession(ctx context.Context, startID, endID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(startID) < 0 && s.indexOf(endID) < 0 {
		return ErrNotFound
	}

	var errs []error
	for _, id := range []string{startID, endID} {
		i := s.indexOf(id)
		if i < 0 {
			continue
		}
		s.events = append(s.events[:i], s.events[i+1:]...)
		if err := s.persistDelete(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	s.bumpAndNotify()
	return errors.Join(errs...)
}

// ImportReport enumera el resultado de un import masivo: cuántas filas
// entraron y qué filas fueron rechazadas (el import no es todo-o-nada).
type ImportReport struct {
	Imported int        `json:"imported"`
	Errors   []RowError `json:"errors,omitempty"`
}

// BulkImport valida cada fila por separado, inserta las válidas como lote y
// re-ordena la colección. Las inválidas vuelven enumeradas en BatchError.
func (s *Service) BulkImport(ctx context.Context, rows []BulkRow) (ImportReport, error) {
	now := s.clock.Now()
	built, rowErrs := buildBulkEvents(rows, now.Location(), now)
	report := ImportReport{Imported: len(built), Errors: rowErrs}

	if len(built) == 0 {
		if len(rowErrs) > 0 {
			return report, &BatchError{Rows: rowErrs}
		}
		return report, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(built, s.events...)
	SortDesc(s.events)
	err := s.persistUpsertBatch(ctx, built)
	s.bumpAndNotify()

	if len(rowErrs) > 0 {
		err = errors.Join(err, &BatchError{Rows: rowErrs})
	}
	return report, err
}

// MergeImport une la colección actual con la entrante, re-ordena
// descendente y deduplica por id (gana la primera aparición en ese orden).
func (s *Service) MergeImport(ctx context.Context, incoming []Event) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make([]Event, 0, len(s.events)+len(incoming))
	merged = append(merged, s.events...)
	merged = append(merged, incoming...)
	SortDesc(merged)

	seen := make(map[string]bool, len(merged))
	out := merged[:0]
	for _, ev := range merged {
		if ev.ID != "" && seen[ev.ID] {
			continue
		}
		if ev.ID != "" {
			seen[ev.ID] = true
		}
		out = append(out, ev)
	}
	s.events = out

	err := s.persistUpsertBatch(ctx, out)
	s.bumpAndNotify()
	return len(out), err
}

// ReplaceImport descarta la colección actual en favor de la entrante.
func (s *Service) ReplaceImport(ctx context.Context, incoming []Event) (int, error) {
	evs := make([]Event, len(incoming))
	copy(evs, incoming)
	SortDesc(evs)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = evs
	var err error
	if derr := s.storeDeleteAll(ctx); derr != nil {
		err = derr
	}
	if uerr := s.persistUpsertBatch(ctx, evs); uerr != nil {
		err = errors.Join(err, uerr)
	}
	s.bumpAndNotify()
	return len(evs), err
}

// Refresh aplica un snapshot llegado de afuera (otro dispositivo vía el
// store). Reemplazo completo, nunca delta. Un snapshot con secuencia vieja
// —un refresh en vuelo superado por otro más nuevo— se descarta para que no
// pise estado posterior. No re-publica: vino de la capa de sync.
func (s *Service) Refresh(snapshot []Event, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.seq {
		s.log.Debug("stale refresh ignored", map[string]any{"seq": seq, "current": s.seq})
		return false
	}
	evs := make([]Event, len(snapshot))
	copy(evs, snapshot)
	SortDesc(evs)
	s.events = evs
	s.seq = seq
	return true
}

// -------------------------
// Lecturas (siempre recalculadas)
// -------------------------

func (s *Service) Snapshot() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *Service) Seq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq
}

func (s *Service) Sleeping() bool {
	return IsSleeping(s.Snapshot(), s.clock.Now())
}

func (s *Service) Breastfeeding() bool {
	return IsBreastfeeding(s.Snapshot())
}

func (s *Service) StatsForDay(day time.Time) DailyStats {
	return AggregateDay(s.Snapshot(), day, s.clock.Now())
}

func (s *Service) Summary() []DailyStats {
	return DailySummary(s.Snapshot(), s.clock.Now())
}

func (s *Service) Series(metric Metric, granularity Granularity, windowDays int) []SeriesPoint {
	return BuildSeries(s.Snapshot(), metric, granularity, windowDays, s.clock.Now())
}

func (s *Service) LogForDay(day time.Time) []LogEntry {
	dayStart, dayEnd := DayBounds(day)
	return ProjectLog(s.Snapshot(), dayStart, dayEnd)
}

// SummaryForNow arma asunto y cuerpo del resumen del día en curso, para el
// endpoint de mail y el scheduler diario.
func (s *Service) SummaryForNow() (subject, body string) {
	now := s.clock.Now()
	subject = "Daily Summary - " + now.Format("January 2, 2006")
	body = SummaryTextForDay(s.Snapshot(), now, now)
	return subject, body
}

type ListFilter struct {
	Types    []EventType
	Category Category
	From     *time.Time
	To       *time.Time
	Limit    int
}

// List filtra la colección en memoria para el listado crudo de eventos.
func (s *Service) List(filter ListFilter) []Event {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	out := make([]Event, 0)
	for _, ev := range s.Snapshot() {
		if len(filter.Types) > 0 {
			ok := false
			for _, t := range filter.Types {
				if ev.Type == t {
					ok = true
					break
				}
			}
			if !ok {
				continue
			}
		}
		if filter.Category != "" && ev.Type.Category() != filter.Category {
			continue
		}
		if filter.From != nil && ev.TS.Before(*filter.From) {
			continue
		}
		if filter.To != nil && ev.TS.After(*filter.To) {
			continue
		}
		out = append(out, ev)
		if len(out) == limit {
			break
		}
	}
	return out
}

// -------------------------
// Persistencia con fallback
// -------------------------

func (s *Service) persistUpsert(ctx context.Context, ev Event) error {
	err := s.repo.Upsert(ctx, ev)
	if err == nil {
		return nil
	}
	return s.fallbackAfter(ctx, err, func(r Repository) error { return r.Upsert(ctx, ev) })
}

func (s *Service) persistUpsertBatch(ctx context.Context, evs []Event) error {
	err := s.repo.UpsertBatch(ctx, evs)
	if err == nil {
		return nil
	}
	return s.fallbackAfter(ctx, err, func(r Repository) error { return r.UpsertBatch(ctx, evs) })
}

func (s *Service) persistDelete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if err == nil {
		return nil
	}
	return s.fallbackAfter(ctx, err, func(r Repository) error { return r.Delete(ctx, id) })
}

func (s *Service) storeDeleteAll(ctx context.Context) error {
	err := s.repo.DeleteAll(ctx)
	if err == nil {
		return nil
	}
	return s.fallbackAfter(ctx, err, func(r Repository) error { return r.DeleteAll(ctx) })
}

// fallbackAfter intenta la misma operación contra el store local. El cambio
// ya está en memoria; pase lo que pase el error del primario se reporta.
func (s *Service) fallbackAfter(ctx context.Context, primary error, op func(Repository) error) error {
	s.log.Error("primary store operation failed", map[string]any{"err": primary.Error()})
	if s.fallback == nil {
		return &PersistError{Primary: primary}
	}
	if ferr := op(s.fallback); ferr != nil {
		s.log.Error("fallback store also failed", map[string]any{"err": ferr.Error()})
		return &PersistError{Primary: primary, Fallback: ferr}
	}
	return &PersistError{Primary: primary, FallbackSaved: true}
}

// -------------------------
// Internos
// -------------------------

// indexOf requiere lock tomado.
func (s *Service) indexOf(id string) int {
	for i := range s.events {
		if s.events[i].ID == id {
			return i
		}
	}
	return -1
}

// bumpAndNotify requiere lock tomado: incrementa la secuencia y publica el
// snapshot completo para los dispositivos suscriptos.
func (s *Service) bumpAndNotify() {
	s.seq++
	if s.notifier == nil {
		return
	}
	snap := make([]Event, len(s.events))
	copy(snap, s.events)
	s.notifier.Publish(s.seq, snap)
}
