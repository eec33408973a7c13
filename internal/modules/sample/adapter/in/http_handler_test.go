package in_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	samplein "calmtrace/internal/modules/sample/adapter/in"
	sampledto "calmtrace/internal/modules/sample/dto"
	"calmtrace/internal/platform/httpx"
)

func newEngine(uc *fakeIngest) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	api := engine.Group("/api/v1", httpx.RequireUser())
	samplein.NewHTTPHandler(uc).Register(api)
	return engine
}

func do(engine *gin.Engine, method, target, user, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if user != "" {
		req.Header.Set(httpx.UserHeader, user)
	}
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestPostSamplesUsesCallerIdentity(t *testing.T) {
	t.Parallel()
	uc := &fakeIngest{}
	engine := newEngine(uc)

	rec := do(engine, http.MethodPost, "/api/v1/samples", "u1",
		`[{"user_id":"someone-else","measured_at":"2026-03-04T14:00:00Z","stress_level":3}]`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var out sampledto.IngestOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Stored != 1 {
		t.Fatalf("expected 1 stored, got %+v", out)
	}
	if got := uc.batches[0][0].UserID; got != "u1" {
		t.Fatalf("expected header user to win, got %q", got)
	}

	rec = do(engine, http.MethodGet, "/api/v1/samples?from=2026-03-04T00:00:00Z&to=2026-03-05T00:00:00Z", "u1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var listed []sampledto.SampleOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].StressLevel != 3 {
		t.Fatalf("unexpected listing: %+v", listed)
	}
}

func TestPostSamplesRejectsBadInput(t *testing.T) {
	t.Parallel()
	uc := &fakeIngest{}
	engine := newEngine(uc)

	cases := []struct {
		name string
		user string
		body string
		want int
	}{
		{name: "missing user", user: "", body: `{"measured_at":"2026-03-04T14:00:00Z"}`, want: http.StatusUnauthorized},
		{name: "not json", user: "u1", body: `{`, want: http.StatusBadRequest},
		{name: "missing time", user: "u1", body: `{"stress_level":1}`, want: http.StatusBadRequest},
		{name: "stress out of range", user: "u1", body: `{"measured_at":"2026-03-04T14:00:00Z","stress_index":140}`, want: http.StatusBadRequest},
	}
	for _, tc := range cases {
		rec := do(engine, http.MethodPost, "/api/v1/samples", tc.user, tc.body)
		if rec.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, rec.Code)
		}
	}
	if len(uc.batches) != 0 {
		t.Fatalf("expected nothing ingested, got %d batches", len(uc.batches))
	}

	rec := do(engine, http.MethodGet, "/api/v1/samples?from=2026-03-04T00:00:00Z", "u1", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without to, got %d", rec.Code)
	}
}
