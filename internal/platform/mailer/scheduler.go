package mailer

import (
	"context"
	"time"

	"eps-tracker/internal/platform/clock"
	"eps-tracker/internal/platform/logger"
)

// SummarySource produce el texto del resumen del día en curso.
type SummarySource interface {
	SummaryForNow() (subject, body string)
}

// Sender desacopla el scheduler del transporte SMTP real (tests).
type Sender interface {
	SendSummary(ctx context.Context, subject, body string) error
}

// Scheduler manda el resumen del día a las 23:59 hora local, una sola vez
// por día. Un envío fallido no se reintenta: mañana sale el siguiente.
type Scheduler struct {
	sender Sender
	source SummarySource
	clock  clock.Clock
	log    logger.Logger

	interval time.Duration
	lastSent string // clave YYYY-MM-DD del último día enviado
}

func NewScheduler(sender Sender, source SummarySource, clk clock.Clock, log logger.Logger) *Scheduler {
	if clk == nil {
		clk = clock.System()
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Scheduler{
		sender:   sender,
		source:   source,
		clock:    clk,
		log:      log,
		interval: 30 * time.Second,
	}
}

// Run chequea periódicamente hasta que el contexto se cancele.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick hace un chequeo individual; expuesto para tests con reloj fijo.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.clock.Now()
	if now.Hour() != 23 || now.Minute() != 59 {
		return
	}

	key := now.Format("2006-01-02")
	if s.lastSent == key {
		return
	}

	subject, body := s.source.SummaryForNow()
	if err := s.sender.SendSummary(ctx, subject, body); err != nil {
		s.log.Error("daily summary send failed", map[string]any{"err": err.Error()})
		return
	}

	s.lastSent = key
	s.log.Info("daily summary sent", map[string]any{"date": key})
}
