package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/contractops/appconfig-api/internal/appconfig"
	"github.com/contractops/appconfig-api/internal/config"
)

// stubService is a canned ConfigService for handler tests. Each field, when
// set, overrides the default happy-path behavior.
type stubService struct {
	listResult *appconfig.ListResult
	listErr    error

	streamRows []appconfig.AppConfig
	streamErr  error

	record    *appconfig.AppConfig
	getErr    error
	createErr error
	updateErr error
	deleteErr error
	pingErr   error

	bulkResult []appconfig.AppConfig
	bulkErr    error

	lastFilter appconfig.ListFilter
	lastIDs    []int64
}

func (s *stubService) List(_ context.Context, f appconfig.ListFilter) (*appconfig.ListResult, error) {
	s.lastFilter = f
	if s.listErr != nil {
		return nil, s.listErr
	}
	if s.listResult != nil {
		return s.listResult, nil
	}
	return &appconfig.ListResult{Data: []appconfig.AppConfig{}, Page: f.Page, PerPage: f.PerPage}, nil
}

func (s *stubService) Stream(_ context.Context, f appconfig.ListFilter, fn func(appconfig.AppConfig) error) error {
	s.lastFilter = f
	if s.streamErr != nil {
		return s.streamErr
	}
	for _, ac := range s.streamRows {
		if err := fn(ac); err != nil {
			return err
		}
	}
	return nil
}

func (s *stubService) Get(_ context.Context, id int64) (*appconfig.AppConfig, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.record, nil
}

func (s *stubService) Create(_ context.Context, p appconfig.CreateParams) (*appconfig.AppConfig, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if s.record != nil {
		return s.record, nil
	}
	ac := appconfig.AppConfig{
		ID:          1,
		Contract:    p.Contract,
		URL:         p.URL,
		UUID:        p.UUID,
		Name:        p.Name,
		Billable:    p.Billable,
		IgnoreFiles: p.IgnoreFiles,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	return &ac, nil
}

func (s *stubService) Update(_ context.Context, id int64, _ appconfig.UpdateParams) (*appconfig.AppConfig, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return s.record, nil
}

func (s *stubService) BulkUpdate(_ context.Context, ids []int64, _ appconfig.UpdateParams) ([]appconfig.AppConfig, error) {
	s.lastIDs = ids
	if s.bulkErr != nil {
		return nil, s.bulkErr
	}
	return s.bulkResult, nil
}

func (s *stubService) Delete(_ context.Context, id int64) error {
	return s.deleteErr
}

func (s *stubService) Ping(_ context.Context) error {
	return s.pingErr
}

// testConfig returns a minimal config with metrics and rate limiting off so
// handler tests exercise the routes in isolation.
func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           8080,
			RequestTimeout: 30 * time.Second,
		},
		Export: config.ExportConfig{FlushRows: 2},
	}
}

func newTestServer(svc ConfigService) *Server {
	return NewServer(svc, testConfig())
}

func boolPtr(b bool) *bool { return &b }

func sampleRecord() appconfig.AppConfig {
	return appconfig.AppConfig{
		ID:          7,
		Contract:    "acme-2026",
		URL:         "https://portal.acme.example",
		UUID:        "0d2f8f9e-9c49-4a8b-b6cd-0e6e5f3e3f10",
		Name:        "billing",
		Billable:    boolPtr(true),
		IgnoreFiles: false,
		CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestHandleList_ReturnsEnvelope(t *testing.T) {
	rec := sampleRecord()
	svc := &stubService{listResult: &appconfig.ListResult{
		Data:       []appconfig.AppConfig{rec},
		Total:      41,
		Page:       2,
		PerPage:    20,
		TotalPages: 3,
	}}
	srv := newTestServer(svc)

	req := httptest.NewRequest("GET", "/api/app-configs?page=2&billable=true", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got appconfig.ListResult
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got.Total != 41 || got.Page != 2 || got.PerPage != 20 || got.TotalPages != 3 {
		t.Errorf("envelope = %+v, want total 41 page 2 per_page 20 total_pages 3", got)
	}
	if len(got.Data) != 1 || got.Data[0].ID != rec.ID {
		t.Errorf("data = %+v, want one record with id %d", got.Data, rec.ID)
	}
	if svc.lastFilter.Page != 2 || svc.lastFilter.Billable != appconfig.BillableTrue {
		t.Errorf("filter passed to service = %+v, want page 2 billable true", svc.lastFilter)
	}
}

func TestHandleList_InvalidSortColumnIs400(t *testing.T) {
	svc := &stubService{listErr: appconfig.ErrInvalidSortColumn}
	srv := newTestServer(svc)

	req := httptest.NewRequest("GET", "/api/app-configs?sort_by=evil", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal error response: %v", err)
	}
	if resp.Code != "REQ003" {
		t.Errorf("code = %q, want REQ003", resp.Code)
	}
}

func TestHandleGet(t *testing.T) {
	rec := sampleRecord()
	srv := newTestServer(&stubService{record: &rec})

	req := httptest.NewRequest("GET", "/api/app-configs/7", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got appconfig.AppConfig
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got.ID != 7 || got.Name != "billing" {
		t.Errorf("record = %+v, want id 7 name billing", got)
	}
}

func TestHandleGet_NotFound(t *testing.T) {
	srv := newTestServer(&stubService{getErr: appconfig.ErrNotFound})

	req := httptest.NewRequest("GET", "/api/app-configs/9999", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestHandleGet_BadID(t *testing.T) {
	srv := newTestServer(&stubService{})

	req := httptest.NewRequest("GET", "/api/app-configs/not-a-number", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandleCreate(t *testing.T) {
	srv := newTestServer(&stubService{})

	body := `{"contract":"acme-2026","url":"https://x.example","uuid":"u-1","name":"billing","billable":null,"ignore_files":true}`
	req := httptest.NewRequest("POST", "/api/app-configs", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body: %s", w.Code, w.Body.String())
	}
	var got appconfig.AppConfig
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got.Contract != "acme-2026" || !got.IgnoreFiles {
		t.Errorf("record = %+v, want contract acme-2026 ignore_files true", got)
	}
	if got.Billable != nil {
		t.Errorf("billable = %v, want nil", got.Billable)
	}
}

func TestHandleCreate_BadBody(t *testing.T) {
	srv := newTestServer(&stubService{})

	req := httptest.NewRequest("POST", "/api/app-configs", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandleUpdate_NotFound(t *testing.T) {
	srv := newTestServer(&stubService{updateErr: appconfig.ErrNotFound})

	req := httptest.NewRequest("PUT", "/api/app-configs/3", strings.NewReader(`{"name":"renamed"}`))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestHandleBulkUpdate(t *testing.T) {
	rec := sampleRecord()
	svc := &stubService{bulkResult: []appconfig.AppConfig{rec}}
	srv := newTestServer(svc)

	body := `{"ids":[7,8,9],"update":{"billable":true}}`
	req := httptest.NewRequest("POST", "/api/app-configs/bulk-update", strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}
	if len(svc.lastIDs) != 3 || svc.lastIDs[0] != 7 {
		t.Errorf("ids passed to service = %v, want [7 8 9]", svc.lastIDs)
	}
	var resp []appconfig.AppConfig
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp) != 1 || resp[0].ID != rec.ID {
		t.Errorf("response = %+v, want the one updated row", resp)
	}
}

func TestHandleBulkUpdate_EmptyIDs(t *testing.T) {
	srv := newTestServer(&stubService{})

	req := httptest.NewRequest("POST", "/api/app-configs/bulk-update",
		strings.NewReader(`{"ids":[],"update":{"billable":true}}`))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandleDelete(t *testing.T) {
	srv := newTestServer(&stubService{})

	req := httptest.NewRequest("DELETE", "/api/app-configs/7", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", w.Body.String())
	}
}

func TestHandleDelete_NotFound(t *testing.T) {
	srv := newTestServer(&stubService{deleteErr: appconfig.ErrNotFound})

	req := httptest.NewRequest("DELETE", "/api/app-configs/7", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestHandleExport(t *testing.T) {
	rows := []appconfig.AppConfig{
		sampleRecord(),
		{ID: 8, Contract: "other", URL: "https://y.example", UUID: "u-8", Name: "audit", Billable: nil, IgnoreFiles: true},
	}
	svc := &stubService{streamRows: rows}
	srv := newTestServer(svc)

	req := httptest.NewRequest("GET", "/api/app-configs/export?billable=review&per_page=100", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q, want attachment", cd)
	}

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want header + 2 rows: %q", len(lines), w.Body.String())
	}
	if lines[0] != "ID,Contract,URL,UUID,Name,Billable,Ignore Files" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], ",true,") {
		t.Errorf("row 1 = %q, want billable true", lines[1])
	}
	if !strings.Contains(lines[2], ",NULL,") {
		t.Errorf("row 2 = %q, want literal NULL for nil billable", lines[2])
	}
	if svc.lastFilter.Billable != appconfig.BillableReview || svc.lastFilter.PerPage != 100 {
		t.Errorf("filter passed to service = %+v, want billable review per_page 100", svc.lastFilter)
	}
}

func TestHandleExport_InvalidSortColumnIs400(t *testing.T) {
	svc := &stubService{streamErr: appconfig.ErrInvalidSortColumn}
	srv := newTestServer(svc)

	req := httptest.NewRequest("GET", "/api/app-configs/export?sort_by=evil", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	// The sort column is validated before any CSV row is written, so the
	// handler can still respond with a clean error.
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body: %s", w.Code, w.Body.String())
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(&stubService{})

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestHandleHealth_Unavailable(t *testing.T) {
	srv := newTestServer(&stubService{pingErr: errors.New("connection refused")})

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(&stubService{})

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)

	if !rl.allow("10.0.0.1") || !rl.allow("10.0.0.1") {
		t.Fatal("first two requests should be allowed")
	}
	if rl.allow("10.0.0.1") {
		t.Error("third request within window should be rejected")
	}
	if !rl.allow("10.0.0.2") {
		t.Error("different IP should have its own bucket")
	}
}
