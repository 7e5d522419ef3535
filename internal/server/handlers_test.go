package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sjoshi/netflag/internal/domain"
	"github.com/sjoshi/netflag/internal/service"
)

func newTestRouter(t *testing.T, controller *service.Controller) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(logger, RouterDependencies{
		Health: MirrorHealthService{},
		API:    NewAPIHandlers(logger, controller),
	})
}

func postEvent(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleEventsAcceptsValidEvent(t *testing.T) {
	controller := service.NewController(service.Config{Degree: 1, Window: 5}, nil)
	router := newTestRouter(t, controller)

	rec := postEvent(t, router, `{"event_type":"befriend","timestamp":"2026-01-02 09:00:00","id1":"a","id2":"b"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Sequence uint64 `json:"sequence"`
		Phase    string `json:"phase"`
		Flagged  bool   `json:"flagged"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Sequence != 1 {
		t.Fatalf("expected sequence 1, got %d", resp.Sequence)
	}
	if resp.Phase != "seeding" {
		t.Fatalf("expected seeding phase, got %q", resp.Phase)
	}
	if resp.Flagged {
		t.Fatal("befriend event must not flag")
	}
}

func TestHandleEventsRejectsInvalidEvent(t *testing.T) {
	controller := service.NewController(service.Config{Degree: 1, Window: 5}, nil)
	router := newTestRouter(t, controller)

	cases := []string{
		`not json`,
		`{"event_type":"teleport","timestamp":"t","id":"a"}`,
		`{"event_type":"purchase","timestamp":"t","id":"a","amount":"cheap"}`,
	}
	for _, body := range cases {
		rec := postEvent(t, router, body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
	if controller.Sequence() != 0 {
		t.Fatalf("invalid events must not consume sequence numbers, counter at %d", controller.Sequence())
	}
}

func TestHandleEventsReturnsFlagPayload(t *testing.T) {
	controller := service.NewController(service.Config{Degree: 1, Window: 5}, nil)
	router := newTestRouter(t, controller)

	seed := []string{
		`{"event_type":"befriend","timestamp":"2026-01-02 09:00:00","id1":"a","id2":"b"}`,
		`{"event_type":"purchase","timestamp":"2026-01-02 09:00:01","id":"b","amount":"10.00"}`,
		`{"event_type":"purchase","timestamp":"2026-01-02 09:00:02","id":"b","amount":"10.00"}`,
	}
	for _, body := range seed {
		if rec := postEvent(t, router, body); rec.Code != http.StatusAccepted {
			t.Fatalf("seed event rejected: %d", rec.Code)
		}
	}

	liveReq := httptest.NewRequest(http.MethodPost, "/phase/live", nil)
	liveRec := httptest.NewRecorder()
	router.ServeHTTP(liveRec, liveReq)
	if liveRec.Code != http.StatusOK {
		t.Fatalf("phase switch failed: %d", liveRec.Code)
	}

	rec := postEvent(t, router, `{"event_type":"purchase","timestamp":"2026-01-02 09:00:03","id":"a","amount":"99.00"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}

	var resp struct {
		Flagged bool                    `json:"flagged"`
		Flag    *domain.FlaggedPurchase `json:"flag"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Flagged || resp.Flag == nil {
		t.Fatalf("expected flagged purchase, got %s", rec.Body.String())
	}
	if resp.Flag.Mean != "10.00" || resp.Flag.SD != "0.00" {
		t.Fatalf("unexpected stats: mean=%s sd=%s", resp.Flag.Mean, resp.Flag.SD)
	}
}

func TestHandleFlagsListsDetections(t *testing.T) {
	controller := service.NewController(service.Config{Degree: 1, Window: 5}, nil)
	router := newTestRouter(t, controller)

	req := httptest.NewRequest(http.MethodGet, "/flags", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Items []domain.FlaggedPurchase `json:"items"`
		Count int                      `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 0 || resp.Items == nil {
		t.Fatalf("expected empty items array, got %s", rec.Body.String())
	}
}

func TestHandleUserNetwork(t *testing.T) {
	controller := service.NewController(service.Config{Degree: 1, Window: 5}, nil)
	router := newTestRouter(t, controller)

	postEvent(t, router, `{"event_type":"befriend","timestamp":"t0","id1":"a","id2":"b"}`)
	postEvent(t, router, `{"event_type":"befriend","timestamp":"t0","id1":"b","id2":"c"}`)

	req := httptest.NewRequest(http.MethodGet, "/network/user/a?degree=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		UserID  string   `json:"user_id"`
		Degree  int      `json:"degree"`
		Network []string `json:"network"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Degree != 2 {
		t.Fatalf("expected degree 2, got %d", resp.Degree)
	}
	if len(resp.Network) != 2 || resp.Network[0] != "b" || resp.Network[1] != "c" {
		t.Fatalf("unexpected network: %v", resp.Network)
	}
}

func TestHandleUserNetworkRejectsBadDegree(t *testing.T) {
	controller := service.NewController(service.Config{Degree: 1, Window: 5}, nil)
	router := newTestRouter(t, controller)

	for _, path := range []string{"/network/user/a?degree=0", "/network/user/a?degree=x", "/network/user/"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("path %q: expected 400, got %d", path, rec.Code)
		}
	}
}

func TestHandlePhaseLifecycle(t *testing.T) {
	controller := service.NewController(service.Config{Degree: 1, Window: 5}, nil)
	router := newTestRouter(t, controller)

	get := func() string {
		req := httptest.NewRequest(http.MethodGet, "/phase", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		var resp struct {
			Phase string `json:"phase"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		return resp.Phase
	}

	if phase := get(); phase != "seeding" {
		t.Fatalf("expected seeding, got %q", phase)
	}

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/phase/live", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("phase switch attempt %d failed: %d", i, rec.Code)
		}
	}

	if phase := get(); phase != "live" {
		t.Fatalf("expected live, got %q", phase)
	}
}

func TestHealthz(t *testing.T) {
	controller := service.NewController(service.Config{Degree: 1, Window: 5}, nil)
	router := newTestRouter(t, controller)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
