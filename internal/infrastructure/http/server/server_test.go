package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yuzvak/resale-backoffice/internal/application/commands"
	"github.com/yuzvak/resale-backoffice/internal/application/use_cases"
	"github.com/yuzvak/resale-backoffice/internal/config"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/http/handlers"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/locking"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/messaging"
	"github.com/yuzvak/resale-backoffice/internal/infrastructure/persistence/sqlstore"
	"github.com/yuzvak/resale-backoffice/internal/pkg/clock"
	"github.com/yuzvak/resale-backoffice/internal/pkg/generator"
	"github.com/yuzvak/resale-backoffice/internal/pkg/logger"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	return newTestServerWithLogger(t, logger.NewNopLogger())
}

func newTestServerWithLogger(t *testing.T, log *logger.Logger) http.Handler {
	t.Helper()

	cfg := config.Default()
	cfg.Database = config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    "file:" + filepath.Join(t.TempDir(), "http.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
	}

	db, err := sqlstore.Open(context.Background(), cfg.Database)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := sqlstore.NewStore(db)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	clk := clock.NewRealClock()
	ids := generator.NewCodeGenerator()
	locker := locking.NewLocalLocker(time.Second)
	publisher := messaging.NewNoopPublisher(log)

	inv := use_cases.NewInventoryUseCase(store, clk, ids, log, cfg.Inventory.MaxIntakeQuantity)
	ledger := use_cases.NewLedgerUseCase(store, locker, clk, ids, log)
	confirm := use_cases.NewConfirmationUseCase(store, locker, publisher, clk, ids, log, cfg.Ledger.ConfirmAttempts)
	query := use_cases.NewQueryUseCase(store, inv)

	buy := handlers.NewBuyHandler(
		commands.NewIntakeHandler(inv, publisher, log),
		commands.NewUpdateItemHandler(inv, log),
		inv, query, log,
	)
	sell := handlers.NewSellHandler(commands.NewLedgerHandler(ledger, confirm, log), ledger, query, log)
	health := handlers.NewHealthHandler(store, nil, log)

	return NewServer(cfg, buy, sell, health, log).Handler()
}

type call struct {
	method  string
	path    string
	body    interface{}
	station string
}

func do(t *testing.T, h http.Handler, c call) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if c.body != nil {
		if s, ok := c.body.(string); ok {
			body.WriteString(s)
		} else if err := json.NewEncoder(&body).Encode(c.body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}

	req := httptest.NewRequest(c.method, c.path, &body)
	req.Header.Set("Content-Type", "application/json")
	if c.station != "" {
		req.Header.Set("X-Station-ID", c.station)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func phoneBody(serial string) map[string]interface{} {
	return map[string]interface{}{
		"serial":       serial,
		"name":         "Galaxy S21",
		"release":      "SM-G991",
		"color":        "Gray",
		"price":        "350.00",
		"customerName": "Okafor",
	}
}

func TestProcurementContract(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, call{method: http.MethodPost, path: "/buy/create", body: phoneBody("SN-100")})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", rec.Code, rec.Body)
	}
	var item map[string]interface{}
	decode(t, rec, &item)
	if item["status"] != "in_stock" || item["release"] != "SM-G991" {
		t.Errorf("unexpected item %v", item)
	}
	if _, ok := item["price"].(float64); !ok {
		t.Errorf("price should be a JSON number, got %T", item["price"])
	}
	id := item["id"].(string)

	multi := phoneBody("LOT")
	multi["quantity"] = 3
	rec = do(t, h, call{method: http.MethodPost, path: "/buy/create", body: multi})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create x3: status %d", rec.Code)
	}
	var items []map[string]interface{}
	decode(t, rec, &items)
	if len(items) != 3 || items[0]["serial"] != "LOT-001" {
		t.Errorf("unexpected items %v", items)
	}

	tests := []struct {
		name       string
		call       call
		wantStatus int
		wantCode   string
	}{
		{"duplicate serial", call{method: http.MethodPost, path: "/buy/create", body: phoneBody("SN-100")}, http.StatusConflict, "conflict"},
		{"missing fields", call{method: http.MethodPost, path: "/buy/create", body: map[string]interface{}{"serial": "X"}}, http.StatusBadRequest, "validation_error"},
		{"bad json", call{method: http.MethodPost, path: "/buy/create", body: "{"}, http.StatusBadRequest, "validation_error"},
		{"update unknown", call{method: http.MethodPut, path: "/buy/update/nope", body: phoneBody("")}, http.StatusNotFound, "not_found"},
		{"remove unknown", call{method: http.MethodDelete, path: "/buy/remove/nope"}, http.StatusNotFound, "not_found"},
		{"bad status filter", call{method: http.MethodGet, path: "/buy/list?status=lost"}, http.StatusBadRequest, "validation_error"},
		{"bad limit", call{method: http.MethodGet, path: "/buy/list?limit=x"}, http.StatusBadRequest, "validation_error"},
		{"unknown serial", call{method: http.MethodGet, path: "/buy/serial/NOPE"}, http.StatusNotFound, "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.call)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body)
			}
			var body map[string]interface{}
			decode(t, rec, &body)
			if body["code"] != tt.wantCode {
				t.Errorf("code = %v, want %s", body["code"], tt.wantCode)
			}
		})
	}

	update := phoneBody("")
	update["color"] = "Violet"
	rec = do(t, h, call{method: http.MethodPut, path: "/buy/update/" + id, body: update})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status %d, body %s", rec.Code, rec.Body)
	}

	rec = do(t, h, call{method: http.MethodGet, path: "/buy/list?q=lot-00&limit=2"})
	decode(t, rec, &items)
	if len(items) != 2 {
		t.Errorf("list returned %d items, want 2", len(items))
	}

	rec = do(t, h, call{method: http.MethodDelete, path: "/buy/remove/" + id})
	if rec.Code != http.StatusNoContent {
		t.Errorf("remove: status %d", rec.Code)
	}
}

func TestSellContract(t *testing.T) {
	h := newTestServer(t)

	for _, serial := range []string{"A1", "A2"} {
		if rec := do(t, h, call{method: http.MethodPost, path: "/buy/create", body: phoneBody(serial)}); rec.Code != http.StatusCreated {
			t.Fatalf("create %s: %d", serial, rec.Code)
		}
	}

	rec := do(t, h, call{method: http.MethodPost, path: "/sell/confirm"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty confirm: status %d", rec.Code)
	}

	rec = do(t, h, call{method: http.MethodPost, path: "/sell/create", body: map[string]interface{}{"serial": "A1", "price": 500}})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add A1: status %d, body %s", rec.Code, rec.Body)
	}
	var line map[string]interface{}
	decode(t, rec, &line)

	rejects := []struct {
		name       string
		body       interface{}
		wantStatus int
	}{
		{"pending item", map[string]interface{}{"serial": "A1", "price": 500}, http.StatusConflict},
		{"unknown serial", map[string]interface{}{"serial": "ZZ", "price": 500}, http.StatusNotFound},
		{"non-numeric price", map[string]interface{}{"serial": "A2", "price": "abc"}, http.StatusBadRequest},
		{"negative price", map[string]interface{}{"serial": "A2", "price": -1}, http.StatusBadRequest},
	}
	for _, tt := range rejects {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, call{method: http.MethodPost, path: "/sell/create", body: tt.body})
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body)
			}
		})
	}

	if rec := do(t, h, call{method: http.MethodPost, path: "/sell/create", body: map[string]interface{}{"serial": "A2", "price": "250.5"}}); rec.Code != http.StatusCreated {
		t.Fatalf("add A2: status %d", rec.Code)
	}

	// Another station sees its own empty ledger.
	rec = do(t, h, call{method: http.MethodGet, path: "/sell/list", station: "till-2"})
	var ledger struct {
		Lines []map[string]interface{} `json:"lines"`
		Total float64                  `json:"total"`
		Count int                      `json:"count"`
	}
	decode(t, rec, &ledger)
	if ledger.Count != 0 {
		t.Errorf("till-2 ledger has %d lines", ledger.Count)
	}

	rec = do(t, h, call{method: http.MethodGet, path: "/sell/list"})
	decode(t, rec, &ledger)
	if ledger.Count != 2 || ledger.Total != 750.5 {
		t.Errorf("ledger = %d lines, total %v", ledger.Count, ledger.Total)
	}

	rec = do(t, h, call{method: http.MethodPost, path: "/sell/confirm"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("confirm: status %d, body %s", rec.Code, rec.Body)
	}
	var sold struct {
		ID        string  `json:"id"`
		Total     float64 `json:"total"`
		LineCount int     `json:"lineCount"`
		StationID string  `json:"stationId"`
	}
	decode(t, rec, &sold)
	if sold.LineCount != 2 || sold.Total != 750.5 || sold.StationID != "main" {
		t.Errorf("unexpected sale %+v", sold)
	}

	rec = do(t, h, call{method: http.MethodGet, path: "/sell/list"})
	decode(t, rec, &ledger)
	if ledger.Count != 0 || ledger.Total != 0 {
		t.Errorf("ledger not cleared: %+v", ledger)
	}

	if rec := do(t, h, call{method: http.MethodDelete, path: "/sell/remove/" + line["id"].(string)}); rec.Code != http.StatusNotFound {
		t.Errorf("remove confirmed line: status %d", rec.Code)
	}
	if rec := do(t, h, call{method: http.MethodDelete, path: "/buy/remove/" + line["itemId"].(string)}); rec.Code != http.StatusConflict {
		t.Errorf("remove sold item: status %d", rec.Code)
	}

	rec = do(t, h, call{method: http.MethodGet, path: "/sell/history/" + sold.ID})
	if rec.Code != http.StatusOK {
		t.Errorf("sale detail: status %d", rec.Code)
	}
	if rec := do(t, h, call{method: http.MethodGet, path: "/sell/history/missing"}); rec.Code != http.StatusNotFound {
		t.Errorf("missing sale: status %d", rec.Code)
	}

	var history []map[string]interface{}
	decode(t, do(t, h, call{method: http.MethodGet, path: "/sell/history?station=main"}), &history)
	if len(history) != 1 {
		t.Errorf("history has %d sales", len(history))
	}
}

func TestRejectsValuesBeyondColumnLimits(t *testing.T) {
	h := newTestServer(t)

	with := func(key string, value interface{}) map[string]interface{} {
		body := phoneBody("SN-LIMIT")
		body[key] = value
		return body
	}
	long := func(n int) string { return strings.Repeat("x", n) }

	if rec := do(t, h, call{method: http.MethodPost, path: "/buy/create", body: phoneBody("SN-STOCK")}); rec.Code != http.StatusCreated {
		t.Fatalf("seed: status %d, body %s", rec.Code, rec.Body)
	}

	tests := []struct {
		name  string
		call  call
		field string
	}{
		{"price scale", call{method: http.MethodPost, path: "/buy/create", body: with("price", 1200.555)}, "price"},
		{"price overflow", call{method: http.MethodPost, path: "/buy/create", body: with("price", "1000000000000")}, "price"},
		{"long serial", call{method: http.MethodPost, path: "/buy/create", body: with("serial", long(129))}, "serial"},
		{"long name", call{method: http.MethodPost, path: "/buy/create", body: with("name", long(256))}, "name"},
		{"sale price scale", call{method: http.MethodPost, path: "/sell/create", station: "main",
			body: map[string]interface{}{"serial": "SN-STOCK", "price": "10.001"}}, "price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.call)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (%s)", rec.Code, rec.Body)
			}
			var body struct {
				Code   string            `json:"code"`
				Errors map[string]string `json:"errors"`
			}
			decode(t, rec, &body)
			if _, ok := body.Errors[tt.field]; !ok {
				t.Errorf("errors = %v, want %s", body.Errors, tt.field)
			}
		})
	}

	rec := do(t, h, call{method: http.MethodPost, path: "/buy/create", body: with("price", "999999999999.99")})
	if rec.Code != http.StatusCreated {
		t.Errorf("largest storable price: status %d, body %s", rec.Code, rec.Body)
	}
}

func TestConfirmLogsSaleOnce(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := newTestServerWithLogger(t, logger.New(zap.New(core)))

	if rec := do(t, h, call{method: http.MethodPost, path: "/buy/create", body: phoneBody("SN-LOG")}); rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", rec.Code, rec.Body)
	}
	line := map[string]interface{}{"serial": "SN-LOG", "price": "400"}
	if rec := do(t, h, call{method: http.MethodPost, path: "/sell/create", station: "main", body: line}); rec.Code != http.StatusCreated {
		t.Fatalf("add line: status %d, body %s", rec.Code, rec.Body)
	}
	if rec := do(t, h, call{method: http.MethodPost, path: "/sell/confirm", station: "main"}); rec.Code != http.StatusCreated {
		t.Fatalf("confirm: status %d, body %s", rec.Code, rec.Body)
	}

	if n := logs.FilterMessage("Sale confirmed").Len(); n != 1 {
		t.Errorf("%d \"Sale confirmed\" entries, want 1", n)
	}
}

func TestRejectsInvalidStation(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, call{method: http.MethodGet, path: "/sell/list", station: "bad station!"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, call{method: http.MethodGet, path: "/health"})
	var data handlers.HealthData
	decode(t, rec, &data)
	if data.ServicesStatus.Database != "UP" || data.ServicesStatus.Redis != "DISABLED" {
		t.Errorf("unexpected status %+v", data.ServicesStatus)
	}
}
