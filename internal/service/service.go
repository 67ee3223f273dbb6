package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/domain"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/events"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/recommendation"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/session"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/telemetry"
)

const notifyTimeout = 5 * time.Second

type TelemetryOptions struct {
	Start time.Time
	Days  int
	Rates telemetry.Rates
}

type Services struct {
	Tracker   *recommendation.Tracker
	Sessions  *session.Store
	Dashboard *DashboardService
}

func New(tracker *recommendation.Tracker, sessions *session.Store, notifier events.Notifier, tel TelemetryOptions) *Services {
	if notifier == nil {
		notifier = events.Nop{}
	}
	return &Services{
		Tracker:  tracker,
		Sessions: sessions,
		Dashboard: &DashboardService{
			tracker:   tracker,
			sessions:  sessions,
			notifier:  notifier,
			telemetry: tel,
			now:       time.Now,
		},
	}
}

type SessionView struct {
	SessionID string                  `json:"session_id"`
	Snapshot  recommendation.Snapshot `json:"snapshot"`
}

type TelemetryView struct {
	Days    []domain.DailyTelemetry `json:"days"`
	Summary domain.TelemetrySummary `json:"summary"`
}

// DashboardService is what the API calls on every render and click.
type DashboardService struct {
	tracker   *recommendation.Tracker
	sessions  *session.Store
	notifier  events.Notifier
	telemetry TelemetryOptions
	now       func() time.Time
}

func (s *DashboardService) Catalog() []domain.OptimizationAction {
	return s.tracker.Catalog().Actions()
}

func (s *DashboardService) NewSession() SessionView {
	id, st := s.sessions.Create()
	log.Debug().Str("session", id).Msg("session created")
	return SessionView{SessionID: id, Snapshot: s.tracker.Snapshot(st)}
}

func (s *DashboardService) Snapshot(sessionID string) (recommendation.Snapshot, error) {
	st, err := s.sessions.Get(sessionID)
	if err != nil {
		return recommendation.Snapshot{}, err
	}
	return s.tracker.Snapshot(st), nil
}

func (s *DashboardService) IsApplied(sessionID, actionID string) (bool, error) {
	st, err := s.sessions.Get(sessionID)
	if err != nil {
		return false, err
	}
	return s.tracker.IsApplied(st, actionID)
}

// Apply marks actionID applied in the session and emits events on the
// Unapplied -> Applied transition only. Notifier failures are logged.
func (s *DashboardService) Apply(ctx context.Context, sessionID, actionID string) (recommendation.Snapshot, error) {
	var (
		snap    recommendation.Snapshot
		changed bool
	)
	err := s.sessions.Update(sessionID, func(st *recommendation.State) error {
		var err error
		if changed, err = s.tracker.Apply(st, actionID); err != nil {
			return err
		}
		snap = s.tracker.Snapshot(st)
		return nil
	})
	if err != nil {
		return recommendation.Snapshot{}, err
	}

	if changed {
		log.Info().
			Str("session", sessionID).
			Str("action", actionID).
			Int("applied", snap.Progress.AppliedCount).
			Int("total", snap.Progress.TotalCount).
			Msg("recommendation applied")
		s.emit(ctx, s.event(events.KindActionApplied, sessionID, actionID, snap))
		if snap.Complete {
			s.emit(ctx, s.event(events.KindCatalogCompleted, sessionID, "", snap))
		}
	}
	return snap, nil
}

func (s *DashboardService) Telemetry(sessionID string) (TelemetryView, error) {
	if _, err := s.sessions.Get(sessionID); err != nil {
		return TelemetryView{}, err
	}
	days := telemetry.Generate(telemetry.SeedFor(sessionID), s.telemetry.Start, s.telemetry.Days)
	return TelemetryView{Days: days, Summary: telemetry.Summarize(days, s.telemetry.Rates)}, nil
}

func (s *DashboardService) EndSession(sessionID string) {
	s.sessions.End(sessionID)
}

func (s *DashboardService) event(kind events.Kind, sessionID, actionID string, snap recommendation.Snapshot) events.Event {
	return events.Event{
		Kind:             kind,
		SessionID:        sessionID,
		ActionID:         actionID,
		AppliedCount:     snap.Progress.AppliedCount,
		TotalCount:       snap.Progress.TotalCount,
		EstimatedSavings: snap.EstimatedSavings,
		EstimatedROI:     snap.EstimatedROI,
		At:               s.now(),
	}
}

func (s *DashboardService) emit(ctx context.Context, e events.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if err := s.notifier.Notify(ctx, e); err != nil {
		log.Warn().Err(err).Str("kind", string(e.Kind)).Str("session", e.SessionID).Msg("notify failed")
	}
}
