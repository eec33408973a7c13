package in_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	riskin "calmtrace/internal/modules/risk/adapter/in"
	"calmtrace/internal/platform/httpx"
)

func newEngine(uc *fakeRisk) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	api := engine.Group("/api/v1", httpx.RequireUser())
	riskin.NewHTTPHandler(uc).Register(api)
	return engine
}

func do(engine *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(httpx.UserHeader, "u1")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestComputePassesDiaryAndCaller(t *testing.T) {
	t.Parallel()
	uc := &fakeRisk{}
	rec := do(newEngine(uc), http.MethodPost, "/api/v1/risk/scores", `{"date":"2026-03-04","diary_score":80}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	got := uc.computed[0]
	if got.UserID != "u1" || got.Date != "2026-03-04" || got.DiaryScore == nil || *got.DiaryScore != 80 {
		t.Fatalf("unexpected compute input %+v", got)
	}
}

func TestComputeRequiresDate(t *testing.T) {
	t.Parallel()
	rec := do(newEngine(&fakeRisk{}), http.MethodPost, "/api/v1/risk/scores", `{"diary_score":80}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListFallsBackToRecent(t *testing.T) {
	t.Parallel()
	uc := &fakeRisk{}
	engine := newEngine(uc)

	if rec := do(engine, http.MethodGet, "/api/v1/risk/scores", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if uc.recent != 1 || len(uc.listed) != 0 {
		t.Fatalf("expected recent lookup, got recent=%d listed=%v", uc.recent, uc.listed)
	}

	if rec := do(engine, http.MethodGet, "/api/v1/risk/scores?from=2026-03-01&to=2026-03-07", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(uc.listed) != 1 || uc.listed[0].From != "2026-03-01" || uc.listed[0].To != "2026-03-07" {
		t.Fatalf("unexpected list input %v", uc.listed)
	}
}

func TestGetMissingScoreIsNotFound(t *testing.T) {
	t.Parallel()
	rec := do(newEngine(&fakeRisk{}), http.MethodGet, "/api/v1/risk/scores/2026-01-01", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
