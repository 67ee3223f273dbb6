package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/api"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/recommendation"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/service"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/web"
)

const CookieName = "solar_session"

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// APIClient is the part of api.Client the dashboard renders from.
type APIClient interface {
	Health(ctx context.Context) error
	NewSession(ctx context.Context) (*service.SessionView, error)
	Snapshot(ctx context.Context, sessionID string) (*recommendation.Snapshot, error)
	Apply(ctx context.Context, sessionID, actionID string) (*recommendation.Snapshot, error)
	Telemetry(ctx context.Context, sessionID string) (*service.TelemetryView, error)
}

type Server struct {
	mux  *http.ServeMux
	tmpl *template.Template
	api  APIClient

	// websocket connections per session; writes happen under mu
	mu      sync.Mutex
	clients map[string]map[*websocket.Conn]bool
}

func New(client APIClient) (*Server, error) {
	funcMap := template.FuncMap{
		"toJSON": toJSON,
		"percent": func(ratio float64) string {
			return fmt.Sprintf("%.0f%%", ratio*100)
		},
	}

	tmpl, err := template.New("base").Funcs(funcMap).ParseFS(web.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		mux:     http.NewServeMux(),
		tmpl:    tmpl,
		api:     client,
		clients: make(map[string]map[*websocket.Conn]bool),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/ws", s.handleWebSocket)
	s.mux.HandleFunc("/apply", s.handleApply)
	s.mux.HandleFunc("/", s.handleDashboard)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": s.status(ctx)})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/dashboard" {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, snap, err := s.ensureSession(ctx, w, r)
	if err != nil {
		log.Error().Err(err).Msg("session load failed")
		http.Error(w, "dashboard unavailable", http.StatusBadGateway)
		return
	}

	tel, err := s.api.Telemetry(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("session", id).Msg("telemetry load failed")
		http.Error(w, "dashboard unavailable", http.StatusBadGateway)
		return
	}

	data := map[string]interface{}{
		"Title":     "Solar Pump Dashboard",
		"SessionID": id,
		"Snapshot":  snap,
		"Summary":   tel.Summary,
		"Days":      tel.Days,
		"APIStatus": s.status(ctx),
	}
	s.render(w, "dashboard.html", data)
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	action := r.FormValue("action")
	if action == "" {
		http.Error(w, "missing action", http.StatusBadRequest)
		return
	}

	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	snap, err := s.api.Apply(ctx, cookie.Value, action)
	switch {
	case api.IsSessionNotFound(err):
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	case api.IsInvalidAction(err):
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	case err != nil:
		log.Error().Err(err).Str("action", action).Msg("apply failed")
		http.Error(w, "apply failed", http.StatusBadGateway)
		return
	}

	s.broadcast(cookie.Value, map[string]interface{}{"type": "update", "data": snap})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}
	id := cookie.Value

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	snap, err := s.api.Snapshot(ctx, id)
	cancel()
	if err != nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	s.mu.Lock()
	err = conn.WriteJSON(map[string]interface{}{"type": "init", "data": snap})
	if err == nil {
		if s.clients[id] == nil {
			s.clients[id] = make(map[*websocket.Conn]bool)
		}
		s.clients[id][conn] = true
	}
	s.mu.Unlock()
	if err != nil {
		conn.Close()
		return
	}

	defer s.drop(id, conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (s *Server) broadcast(sessionID string, msg interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for conn := range s.clients[sessionID] {
		if err := conn.WriteJSON(msg); err != nil {
			conn.Close()
			delete(s.clients[sessionID], conn)
		}
	}
}

func (s *Server) drop(sessionID string, conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.clients[sessionID], conn)
	if len(s.clients[sessionID]) == 0 {
		delete(s.clients, sessionID)
	}
	conn.Close()
}

// ensureSession reuses the cookie session while the API still knows it and
// starts a new one otherwise.
func (s *Server) ensureSession(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, *recommendation.Snapshot, error) {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		snap, err := s.api.Snapshot(ctx, cookie.Value)
		if err == nil {
			return cookie.Value, snap, nil
		}
		if !api.IsSessionNotFound(err) {
			return "", nil, err
		}
	}

	view, err := s.api.NewSession(ctx)
	if err != nil {
		return "", nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    view.SessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return view.SessionID, &view.Snapshot, nil
}

func (s *Server) status(ctx context.Context) string {
	if err := s.api.Health(ctx); err == nil {
		return "online"
	}
	return "offline"
}

func toJSON(v interface{}) template.JS {
	b, _ := json.Marshal(v)
	return template.JS(b)
}

func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("render error")
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}
