package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/recommendation"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/service"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/session"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/telemetry"
)

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	tr, err := recommendation.New(recommendation.DefaultCatalog(), recommendation.DefaultOptions())
	assert.NilError(t, err)
	svcs := service.New(tr, session.NewStore(tr, time.Hour), nil, service.TelemetryOptions{
		Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Days:  15,
		Rates: telemetry.DefaultRates(),
	})
	return &testApp{t: t, app: NewApp(svcs)}
}

type testApp struct {
	t   *testing.T
	app interface {
		Test(req *http.Request, msTimeout ...int) (*http.Response, error)
	}
}

func (a *testApp) do(method, path string, out any) int {
	a.t.Helper()
	resp, err := a.app.Test(httptest.NewRequest(method, path, nil), -1)
	assert.NilError(a.t, err)
	defer resp.Body.Close()

	if out != nil {
		body, err := io.ReadAll(resp.Body)
		assert.NilError(a.t, err)
		assert.NilError(a.t, json.Unmarshal(body, out), string(body))
	}
	return resp.StatusCode
}

func (a *testApp) newSession() string {
	a.t.Helper()
	var view service.SessionView
	assert.Equal(a.t, http.StatusCreated, a.do(http.MethodPost, "/sessions", &view))
	assert.Assert(a.t, view.SessionID != "")
	return view.SessionID
}

func TestHealthAndCatalog(t *testing.T) {
	a := newTestApp(t)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/health", nil))

	var catalog []map[string]any
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/catalog", &catalog))
	assert.Equal(t, 4, len(catalog))
	assert.Equal(t, "optimize_pump", catalog[0]["id"])
	assert.Equal(t, "High", catalog[0]["priority"])
}

func TestSessionLifecycle(t *testing.T) {
	a := newTestApp(t)
	id := a.newSession()

	var snap recommendation.Snapshot
	assert.Equal(t, http.StatusOK, a.do(http.MethodPost, "/sessions/"+id+"/actions/optimize_pump/apply", &snap))
	assert.Equal(t, 1, snap.Progress.AppliedCount)
	assert.Equal(t, 0.25, snap.Progress.CompletionRatio)
	assert.Equal(t, 500.0, snap.EstimatedSavings)

	assert.Equal(t, http.StatusOK, a.do(http.MethodPost, "/sessions/"+id+"/actions/optimize_pump/apply", &snap))
	assert.Equal(t, 1, snap.Progress.AppliedCount)

	var applied struct {
		ActionID string `json:"action_id"`
		Applied  bool   `json:"applied"`
	}
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/sessions/"+id+"/actions/optimize_pump", &applied))
	assert.Assert(t, applied.Applied)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/sessions/"+id+"/actions/panel_angle", &applied))
	assert.Assert(t, !applied.Applied)

	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/sessions/"+id, &snap))
	assert.Equal(t, 1, snap.Progress.AppliedCount)

	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, "/sessions/"+id, nil))
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/sessions/"+id, nil))
}

func TestErrorMapping(t *testing.T) {
	a := newTestApp(t)
	id := a.newSession()

	var body errorBody
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodPost, "/sessions/"+id+"/actions/nonexistent/apply", &body))
	assert.Equal(t, "invalid_action", body.Error)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/sessions/"+id+"/actions/nonexistent", &body))
	assert.Equal(t, "invalid_action", body.Error)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/sessions/unknown", &body))
	assert.Equal(t, "session_not_found", body.Error)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/nowhere", &body))
	assert.Equal(t, "http", body.Error)

	var snap recommendation.Snapshot
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/sessions/"+id, &snap))
	assert.Equal(t, 0, snap.Progress.AppliedCount)
}

func TestTelemetryEndpoint(t *testing.T) {
	a := newTestApp(t)
	id := a.newSession()

	var view service.TelemetryView
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/sessions/"+id+"/telemetry", &view))
	assert.Equal(t, 15, len(view.Days))
	assert.Assert(t, view.Summary.TotalEnergyKWh >= 75 && view.Summary.TotalEnergyKWh < 300)
}
