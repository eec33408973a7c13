package in_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	reliefin "calmtrace/internal/modules/relief/adapter/in"
	reliefdto "calmtrace/internal/modules/relief/dto"
	apperrors "calmtrace/internal/platform/errors"
	"calmtrace/internal/platform/httpx"
)

type fakeRelief struct {
	started []reliefdto.StartInput
	ended   []reliefdto.EndInput
	saved   []reliefdto.InterventionInput
}

func (f *fakeRelief) Start(_ context.Context, input reliefdto.StartInput) (reliefdto.SessionOutput, error) {
	f.started = append(f.started, input)
	return reliefdto.SessionOutput{ID: "s1", UserID: input.UserID, State: "OPEN"}, nil
}

func (f *fakeRelief) End(_ context.Context, input reliefdto.EndInput) (reliefdto.SessionOutput, error) {
	f.ended = append(f.ended, input)
	if input.SessionID == "done" {
		return reliefdto.SessionOutput{}, apperrors.ErrSessionAlreadyEnded
	}
	return reliefdto.SessionOutput{ID: input.SessionID, State: "PENDING"}, nil
}

func (f *fakeRelief) OnNewSample(context.Context, reliefdto.SampleObservation) (reliefdto.BackfillOutput, error) {
	return reliefdto.BackfillOutput{}, nil
}

func (f *fakeRelief) Get(_ context.Context, userID, sessionID string) (reliefdto.SessionOutput, error) {
	if userID != "u1" {
		return reliefdto.SessionOutput{}, apperrors.ErrForbidden
	}
	return reliefdto.SessionOutput{ID: sessionID}, nil
}

func (f *fakeRelief) List(context.Context, reliefdto.ListInput) ([]reliefdto.SessionOutput, error) {
	return []reliefdto.SessionOutput{}, nil
}

func (f *fakeRelief) Stats(context.Context, string) (reliefdto.StatsOutput, error) {
	return reliefdto.StatsOutput{}, nil
}

func (f *fakeRelief) SaveIntervention(_ context.Context, input reliefdto.InterventionInput) (reliefdto.InterventionOutput, error) {
	f.saved = append(f.saved, input)
	return reliefdto.InterventionOutput{ID: "i1", Name: input.Name}, nil
}

func (f *fakeRelief) GetIntervention(context.Context, string) (reliefdto.InterventionOutput, error) {
	return reliefdto.InterventionOutput{}, apperrors.ErrInterventionNotFound
}

func (f *fakeRelief) ListInterventions(context.Context) ([]reliefdto.InterventionOutput, error) {
	return []reliefdto.InterventionOutput{}, nil
}

func serve(uc *fakeRelief, method, target, user, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	reliefin.NewHTTPHandler(uc).Register(engine.Group("/api/v1", httpx.RequireUser()))

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(httpx.UserHeader, user)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestStartSession(t *testing.T) {
	t.Parallel()
	uc := &fakeRelief{}
	rec := serve(uc, http.MethodPost, "/api/v1/relief/sessions", "u1", `{"intervention_id":"breath","trigger_type":"AUTO_SUGGEST","anomaly_id":7}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	got := uc.started[0]
	if got.UserID != "u1" || got.InterventionID != "breath" || got.AnomalyID == nil || *got.AnomalyID != 7 || got.StartedAt != nil {
		t.Fatalf("unexpected start input %+v", got)
	}

	if rec := serve(uc, http.MethodPost, "/api/v1/relief/sessions", "u1", `{"trigger_type":"MANUAL"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing intervention: expected 400, got %d", rec.Code)
	}
}

func TestEndSession(t *testing.T) {
	t.Parallel()
	uc := &fakeRelief{}
	if rec := serve(uc, http.MethodPost, "/api/v1/relief/sessions/s1/end", "u1", ""); rec.Code != http.StatusOK {
		t.Fatalf("empty body: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := uc.ended[0]; got.SessionID != "s1" || got.EndedAt != nil || got.UserRating != nil {
		t.Fatalf("unexpected end input %+v", got)
	}
	if rec := serve(uc, http.MethodPost, "/api/v1/relief/sessions/s1/end", "u1", `{"user_rating":5}`); rec.Code != http.StatusOK {
		t.Fatalf("rating: expected 200, got %d", rec.Code)
	}
	if got := uc.ended[1]; got.UserRating == nil || *got.UserRating != 5 {
		t.Fatalf("rating not passed: %+v", got)
	}
	if rec := serve(uc, http.MethodPost, "/api/v1/relief/sessions/done/end", "u1", ""); rec.Code != http.StatusConflict {
		t.Fatalf("already ended: expected 409, got %d", rec.Code)
	}
}

func TestErrorMapping(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		method string
		target string
		user   string
		want   int
	}{
		{"foreign session", http.MethodGet, "/api/v1/relief/sessions/s1", "u2", http.StatusForbidden},
		{"list without range", http.MethodGet, "/api/v1/relief/sessions", "u1", http.StatusBadRequest},
		{"list with bad time", http.MethodGet, "/api/v1/relief/sessions?from=yesterday&to=2026-03-05T00:00:00Z", "u1", http.StatusBadRequest},
		{"unknown intervention", http.MethodGet, "/api/v1/interventions/nope", "u1", http.StatusNotFound},
		{"missing caller", http.MethodGet, "/api/v1/relief/stats", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if rec := serve(&fakeRelief{}, tt.method, tt.target, tt.user, ""); rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestSaveInterventionWithoutCode(t *testing.T) {
	t.Parallel()
	uc := &fakeRelief{}
	rec := serve(uc, http.MethodPost, "/api/v1/interventions", "u1", `{"name":"Box breathing"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if uc.saved[0].Code != "" || uc.saved[0].Name != "Box breathing" {
		t.Fatalf("unexpected input %+v", uc.saved[0])
	}
}
