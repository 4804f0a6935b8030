package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tycoon/internal/game"
	"tycoon/internal/session"
	"tycoon/internal/store"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := store.OpenFile(t.TempDir(), quietLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	eng := game.NewEngine(nil, game.DefaultRules(), game.NewRand(1), quietLogger())
	sess, err := session.Open(context.Background(), eng, st, "api", quietLogger())
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	srv := httptest.NewServer(New(sess, quietLogger()).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, body string) (int, map[string]any) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("%s %s: decode: %v", method, path, err)
	}
	return resp.StatusCode, out
}

func TestHealthzAndRequestID(t *testing.T) {
	srv := newTestServer(t)
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Request-Id"); got != "abc-123" {
		t.Fatalf("request id=%q", got)
	}

	resp, err = srv.Client().Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get("X-Request-Id") == "" {
		t.Fatalf("no generated request id")
	}
}

func TestGatingRejectionIs422(t *testing.T) {
	srv := newTestServer(t)
	status, body := call(t, srv, http.MethodPost, "/v1/trade", `{"good_id":"wheat","side":"buy","quantity":1}`)
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d body=%v", status, body)
	}
	if body["reason"] != game.ErrMissingPrerequisite.Error() {
		t.Fatalf("reason=%v", body["reason"])
	}

	status, body = call(t, srv, http.MethodGet, "/v1/summary", "")
	if status != http.StatusOK {
		t.Fatalf("summary status=%d", status)
	}
	missing, _ := body["missing_prerequisites"].([]any)
	if len(missing) != 2 {
		t.Fatalf("missing=%v", body["missing_prerequisites"])
	}
}

func TestBadRequests(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		path string
		body string
	}{
		{"/v1/trade", `{"good_id":"wheat","side":"hold","quantity":1}`},
		{"/v1/trade", `{"good_id":"wheat","side":"buy","quantity":1,"price":5}`},
		{"/v1/loans", `not json`},
	}
	for _, tc := range tests {
		status, body := call(t, srv, http.MethodPost, tc.path, tc.body)
		if status != http.StatusBadRequest {
			t.Fatalf("%s %s: status=%d body=%v", tc.path, tc.body, status, body)
		}
	}
}

func TestMonthFlow(t *testing.T) {
	srv := newTestServer(t)
	steps := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodPost, "/v1/warehouses/wh_small", ""},
		{http.MethodPost, "/v1/accommodation", `{"id":"youth_apartment"}`},
		{http.MethodPost, "/v1/trade", `{"good_id":"wheat","side":"buy","quantity":10}`},
		{http.MethodPost, "/v1/attributes/Knowledge/train", ""},
		{http.MethodPost, "/v1/jobs/base_job/work", ""},
	}
	for _, s := range steps {
		status, body := call(t, srv, s.method, s.path, s.body)
		if status != http.StatusOK {
			t.Fatalf("%s %s: status=%d body=%v", s.method, s.path, status, body)
		}
	}

	status, body := call(t, srv, http.MethodPost, "/v1/month/advance", "")
	if status != http.StatusOK {
		t.Fatalf("advance status=%d body=%v", status, body)
	}
	preview := body["preview"].(map[string]any)
	if preview["total"].(float64) != 300 {
		t.Fatalf("preview=%v", preview)
	}

	status, body = call(t, srv, http.MethodPost, "/v1/trade", `{"good_id":"wheat","side":"sell","quantity":1}`)
	if status != http.StatusConflict || body["reason"] != game.ErrSettlementPending.Error() {
		t.Fatalf("trade while pending: status=%d body=%v", status, body)
	}

	status, body = call(t, srv, http.MethodPost, "/v1/month/settle", `{"pay_all":true}`)
	if status != http.StatusOK {
		t.Fatalf("settle status=%d body=%v", status, body)
	}
	if body["age"].(float64) != 241 || body["unpaid_bill_count"].(float64) != 0 {
		t.Fatalf("after settle age=%v unpaid=%v", body["age"], body["unpaid_bill_count"])
	}

	status, _ = call(t, srv, http.MethodPost, "/v1/month/settle", `{"paid_bill_ids":[]}`)
	if status != http.StatusConflict {
		t.Fatalf("settle while active status=%d", status)
	}
}

func TestReadEndpoints(t *testing.T) {
	srv := newTestServer(t)

	status, body := call(t, srv, http.MethodGet, "/v1/market", "")
	if status != http.StatusOK {
		t.Fatalf("market status=%d", status)
	}
	goods := body["goods"].([]any)
	if len(goods) != 34 {
		t.Fatalf("goods=%d", len(goods))
	}

	status, body = call(t, srv, http.MethodGet, "/v1/catalog", "")
	if status != http.StatusOK || len(body["jobs"].([]any)) == 0 {
		t.Fatalf("catalog status=%d", status)
	}

	status, body = call(t, srv, http.MethodGet, "/v1/state", "")
	if status != http.StatusOK || body["cash"].(float64) != 500 {
		t.Fatalf("state status=%d cash=%v", status, body["cash"])
	}
	phase := body["phase"].(map[string]any)
	if phase["kind"] != "active" {
		t.Fatalf("phase=%v", phase)
	}

	status, body = call(t, srv, http.MethodPost, "/v1/intel/missing/read", "")
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("unknown intel status=%d body=%v", status, body)
	}
}

func TestNewGameResets(t *testing.T) {
	srv := newTestServer(t)
	if status, _ := call(t, srv, http.MethodPost, "/v1/warehouses/wh_small", ""); status != http.StatusOK {
		t.Fatalf("buy warehouse status=%d", status)
	}
	status, body := call(t, srv, http.MethodPost, "/v1/game/new", "")
	if status != http.StatusCreated || body["cash"].(float64) != 500 {
		t.Fatalf("new game status=%d cash=%v", status, body["cash"])
	}
}

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&game.Rejection{Reason: game.ErrInsufficientCash, Detail: "need 5"}, http.StatusUnprocessableEntity},
		{&game.Rejection{Reason: game.ErrGameOver}, http.StatusConflict},
		{fmt.Errorf("load: %w", store.ErrNotFound), http.StatusNotFound},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		writeDomainError(rec, tc.err)
		if rec.Code != tc.want {
			t.Fatalf("%v: status=%d want %d", tc.err, rec.Code, tc.want)
		}
	}
}
