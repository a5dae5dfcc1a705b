package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mem "eps-tracker/internal/adapters/storage/memory"
	"eps-tracker/internal/platform/clock"
	"eps-tracker/internal/router"
)

func newTestServer(t *testing.T, clk *clock.Fixed) *httptest.Server {
	t.Helper()
	app, err := router.New(router.Options{
		Clock: clk,
		Repo:  mem.NewEventsRepo(),
	})
	if err != nil {
		t.Fatalf("router.New error: %v", err)
	}
	ts := httptest.NewServer(app.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func doReq(t *testing.T, baseURL, method, path string, body any) (int, []byte) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, raw
}

func TestHTTP_EndToEnd_EventLifecycle(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	ts := newTestServer(t, clk)

	// 1) health
	{
		st, _ := doReq(t, ts.URL, "GET", "/health", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 health, got %d", st)
		}
	}

	// 2) registrar un feed
	var feedID string
	{
		st, body := doReq(t, ts.URL, "POST", "/events", map[string]any{
			"type": "feed", "amount": 2.5,
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 create, got %d body=%s", st, body)
		}
		var resp struct {
			Event struct {
				ID string `json:"id"`
			} `json:"event"`
			Merged bool `json:"merged"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			t.Fatalf("bad response: %v", err)
		}
		feedID = resp.Event.ID
	}

	// 3) segundo feed a los 30s: se agrega sobre el existente
	clk.Advance(30 * time.Second)
	{
		st, body := doReq(t, ts.URL, "POST", "/events", map[string]any{
			"type": "feed", "amount": 1.5,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 merged, got %d body=%s", st, body)
		}
		var resp struct {
			Event struct {
				ID   string             `json:"id"`
				Data map[string]float64 `json:"data"`
			} `json:"event"`
			Merged bool `json:"merged"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			t.Fatalf("bad response: %v", err)
		}
		if !resp.Merged || resp.Event.ID != feedID {
			t.Fatalf("expected merge onto %s, got %+v", feedID, resp)
		}
		if resp.Event.Data["amount"] != 4 {
			t.Fatalf("expected amount 4, got %v", resp.Event.Data)
		}
	}

	// 4) estado: dormido tras un sleep_start
	clk.Advance(time.Minute)
	{
		st, _ := doReq(t, ts.URL, "POST", "/events", map[string]any{"type": "sleep_start"})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 sleep_start, got %d", st)
		}

		st, body := doReq(t, ts.URL, "GET", "/state", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 state, got %d", st)
		}
		var state struct {
			Sleeping bool `json:"sleeping"`
		}
		if err := json.Unmarshal(body, &state); err != nil {
			t.Fatalf("bad state: %v", err)
		}
		if !state.Sleeping {
			t.Fatalf("expected sleeping=true, body=%s", body)
		}
	}

	// 5) undo elimina el sleep_start y el estado vuelve
	{
		st, _ := doReq(t, ts.URL, "POST", "/events/undo", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 undo, got %d", st)
		}

		_, body := doReq(t, ts.URL, "GET", "/state", nil)
		var state struct {
			Sleeping bool `json:"sleeping"`
		}
		_ = json.Unmarshal(body, &state)
		if state.Sleeping {
			t.Fatalf("expected sleeping=false after undo")
		}
	}

	// 6) stats del día reflejan el feed agregado
	{
		st, body := doReq(t, ts.URL, "GET", "/stats/daily?date=2026-03-10", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 stats, got %d", st)
		}
		var stats struct {
			FeedOunces float64 `json:"feed_ounces"`
		}
		if err := json.Unmarshal(body, &stats); err != nil {
			t.Fatalf("bad stats: %v", err)
		}
		if stats.FeedOunces != 4 {
			t.Fatalf("expected 4 feed oz, got %v", stats.FeedOunces)
		}
	}

	// 7) corregir cantidad
	{
		st, body := doReq(t, ts.URL, "PATCH", "/events/"+feedID+"/amount", map[string]any{"amount": 6})
		if st != http.StatusOK {
			t.Fatalf("expected 200 edit amount, got %d body=%s", st, body)
		}
	}

	// 8) timestamp futuro rechazado
	{
		future := clk.Now().Add(time.Hour).Format(time.RFC3339)
		st, _ := doReq(t, ts.URL, "PATCH", "/events/"+feedID+"/timestamp", map[string]any{"ts": future})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 future ts, got %d", st)
		}
	}

	// 9) export JSON y re-import con replace: round trip
	{
		st, backup := doReq(t, ts.URL, "GET", "/export/json", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 export, got %d", st)
		}

		req, _ := http.NewRequest("POST", ts.URL+"/import?mode=replace", bytes.NewReader(backup))
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("import request: %v", err)
		}
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 import, got %d body=%s", resp.StatusCode, raw)
		}
		var ir struct {
			Mode  string `json:"mode"`
			Count int    `json:"count"`
		}
		if err := json.Unmarshal(raw, &ir); err != nil {
			t.Fatalf("bad import response: %v", err)
		}
		if ir.Mode != "replace" || ir.Count != 1 {
			t.Fatalf("unexpected import result: %+v", ir)
		}
	}

	// 10) log del día
	{
		st, body := doReq(t, ts.URL, "GET", "/log?date=2026-03-10", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 log, got %d", st)
		}
		var entries []map[string]any
		if err := json.Unmarshal(body, &entries); err != nil {
			t.Fatalf("bad log: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("expected 1 log entry, got %d", len(entries))
		}
	}
}

func TestHTTP_BulkImport_PartialReport(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	ts := newTestServer(t, clk)

	rows := []map[string]any{
		{"date": "2026-03-09", "time": "08:00", "type": "feed", "amount": 3},
		{"date": "2026-03-09", "time": "09:00", "type": "bogus"},
	}
	st, body := doReq(t, ts.URL, "POST", "/import/bulk", rows)
	if st != http.StatusOK {
		t.Fatalf("expected 200 partial import, got %d body=%s", st, body)
	}

	var report struct {
		Imported int `json:"imported"`
		Errors   []struct {
			Row int `json:"row"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &report); err != nil {
		t.Fatalf("bad report: %v", err)
	}
	if report.Imported != 1 || len(report.Errors) != 1 || report.Errors[0].Row != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestHTTP_ChartSeries_Validation(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	ts := newTestServer(t, clk)

	st, _ := doReq(t, ts.URL, "GET", "/charts/series?metric=bogus", nil)
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 invalid metric, got %d", st)
	}

	st, body := doReq(t, ts.URL, "GET", "/charts/series?metric=feed&granularity=daily&window=7", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 series, got %d", st)
	}
	var points []struct {
		Value float64 `json:"value"`
	}
	if err := json.Unmarshal(body, &points); err != nil {
		t.Fatalf("bad series: %v", err)
	}
	if len(points) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(points))
	}
}

func TestHTTP_EmailWithoutSMTP_Returns503(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	ts := newTestServer(t, clk)

	st, _ := doReq(t, ts.URL, "POST", "/summary/email", nil)
	if st != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without smtp, got %d", st)
	}
}
