package dashboard

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"gotest.tools/v3/assert"

	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/api"
	apihttp "github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/http"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/recommendation"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/service"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/session"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/telemetry"
)

// startStack runs the real API on a loopback listener and the dashboard on
// an httptest server in front of it.
func startStack(t *testing.T) *httptest.Server {
	t.Helper()
	tr, err := recommendation.New(recommendation.DefaultCatalog(), recommendation.DefaultOptions())
	assert.NilError(t, err)
	svcs := service.New(tr, session.NewStore(tr, time.Hour), nil, service.TelemetryOptions{
		Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Days:  15,
		Rates: telemetry.DefaultRates(),
	})

	app := apihttp.NewApp(svcs)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	assert.NilError(t, err)
	go app.Listener(ln)
	t.Cleanup(func() { app.Shutdown() })

	srv, err := New(api.New("http://" + ln.Addr().String()))
	assert.NilError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func noRedirect() *http.Client {
	return &http.Client{
		Timeout: 5 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func get(t *testing.T, ts *httptest.Server, cookie *http.Cookie) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/", nil)
	assert.NilError(t, err)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := noRedirect().Do(req)
	assert.NilError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	assert.NilError(t, err)
	return resp, string(body)
}

func postApply(t *testing.T, ts *httptest.Server, cookie *http.Cookie, action string) *http.Response {
	t.Helper()
	form := url.Values{"action": {action}}
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/apply", strings.NewReader(form.Encode()))
	assert.NilError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	resp, err := noRedirect().Do(req)
	assert.NilError(t, err)
	resp.Body.Close()
	return resp
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestDashboardFlow(t *testing.T) {
	ts := startStack(t)

	resp, body := get(t, ts, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	cookie := sessionCookie(t, resp)
	assert.Assert(t, strings.Contains(body, "Optimize pump schedule to peak sun hours"))
	assert.Assert(t, strings.Contains(body, "0/4 applied (0%)"))
	assert.Assert(t, strings.Contains(body, "status-online"))
	for _, id := range []string{"energy-chart", "water-chart", "compare-chart"} {
		assert.Assert(t, strings.Contains(body, `id="`+id+`"`), id)
	}

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	header := http.Header{"Cookie": {CookieName + "=" + cookie.Value}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	assert.NilError(t, err)
	defer conn.Close()

	var msg struct {
		Type string                  `json:"type"`
		Data recommendation.Snapshot `json:"data"`
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	assert.NilError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "init", msg.Type)
	assert.Equal(t, 0, msg.Data.Progress.AppliedCount)

	resp = postApply(t, ts, cookie, "optimize_pump")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	assert.NilError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "update", msg.Type)
	assert.Equal(t, 1, msg.Data.Progress.AppliedCount)
	assert.Equal(t, 500.0, msg.Data.EstimatedSavings)

	resp, body = get(t, ts, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Assert(t, strings.Contains(body, "1/4 applied (25%)"))
	assert.Assert(t, strings.Contains(body, `class="applied"`))
}

func TestApplyUnknownAction(t *testing.T) {
	ts := startStack(t)
	resp, _ := get(t, ts, nil)
	cookie := sessionCookie(t, resp)

	resp = postApply(t, ts, cookie, "nonexistent")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStaleCookieStartsNewSession(t *testing.T) {
	ts := startStack(t)

	resp, _ := get(t, ts, &http.Cookie{Name: CookieName, Value: "expired"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Assert(t, sessionCookie(t, resp).Value != "expired")

	resp = postApply(t, ts, &http.Cookie{Name: CookieName, Value: "expired"}, "optimize_pump")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestEmptyCookieRedirectsApply(t *testing.T) {
	ts := startStack(t)

	resp := postApply(t, ts, &http.Cookie{Name: CookieName, Value: ""}, "optimize_pump")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp, _ = get(t, ts, &http.Cookie{Name: CookieName, Value: ""})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Assert(t, sessionCookie(t, resp).Value != "")
}

type deadlineAPI struct {
	APIClient
	hadDeadline bool
}

func (d *deadlineAPI) Snapshot(ctx context.Context, _ string) (*recommendation.Snapshot, error) {
	_, d.hadDeadline = ctx.Deadline()
	return nil, &api.Error{Status: http.StatusNotFound, Code: "session_not_found"}
}

func TestWebSocketSnapshotIsBounded(t *testing.T) {
	fake := &deadlineAPI{}
	srv, err := New(fake)
	assert.NilError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "s-1"})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Assert(t, fake.hadDeadline)
}

func TestRoutesRejectBadRequests(t *testing.T) {
	ts := startStack(t)

	resp, err := http.Get(ts.URL + "/apply")
	assert.NilError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/ws")
	assert.NilError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/missing")
	assert.NilError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
