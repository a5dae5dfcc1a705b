package mailer

import (
	"context"
	"errors"
	"testing"
	"time"

	"eps-tracker/internal/platform/clock"
)

type testSender struct {
	sent []string
	fail bool
}

func (s *testSender) SendSummary(ctx context.Context, subject, body string) error {
	if s.fail {
		return errors.New("smtp down")
	}
	s.sent = append(s.sent, subject)
	return nil
}

type testSource struct{}

func (testSource) SummaryForNow() (string, string) {
	return "Daily Summary - March 10, 2026", "body"
}

func TestScheduler_SendsAt2359Once(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 3, 10, 23, 58, 0, 0, time.UTC))
	sender := &testSender{}
	sched := NewScheduler(sender, testSource{}, clk, nil)
	ctx := context.Background()

	sched.Tick(ctx)
	if len(sender.sent) != 0 {
		t.Fatalf("expected no send before 23:59")
	}

	clk.Advance(time.Minute)
	sched.Tick(ctx)
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 send at 23:59, got %d", len(sender.sent))
	}

	// mismo minuto, segundo tick: no repite
	clk.Advance(30 * time.Second)
	sched.Tick(ctx)
	if len(sender.sent) != 1 {
		t.Fatalf("expected no duplicate send, got %d", len(sender.sent))
	}

	// día siguiente a la misma hora: manda de nuevo
	clk.Advance(24 * time.Hour)
	sched.Tick(ctx)
	if len(sender.sent) != 2 {
		t.Fatalf("expected send next day, got %d", len(sender.sent))
	}
}

func TestScheduler_FailedSendDoesNotMarkDay(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC))
	sender := &testSender{fail: true}
	sched := NewScheduler(sender, testSource{}, clk, nil)
	ctx := context.Background()

	sched.Tick(ctx)
	if len(sender.sent) != 0 {
		t.Fatalf("expected failed send recorded nothing")
	}

	// la falla no marca el día como enviado: otro tick del mismo minuto
	// vuelve a intentar
	sender.fail = false
	sched.Tick(ctx)
	if len(sender.sent) != 1 {
		t.Fatalf("expected retry within window, got %d", len(sender.sent))
	}
}
