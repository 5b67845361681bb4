package engine

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/vaibhavx77/rover-app/internal/geo"
	"github.com/vaibhavx77/rover-app/internal/hub"
	"github.com/vaibhavx77/rover-app/internal/models"
	"github.com/vaibhavx77/rover-app/internal/observability"
	"github.com/vaibhavx77/rover-app/internal/repository"
	"github.com/vaibhavx77/rover-app/internal/worker"
)

// Engine validates inbound client events, drives the hazard store, and fans
// resulting state changes out through the hub. Report notifications go only
// to the hazard's region room; verify and delete notifications go to every
// session. Verify/delete failures are deliberately silent toward the client.
type Engine struct {
	repo    repository.HazardRepository
	journal repository.JournalRepository
	hub     *hub.Hub
	metrics *observability.Metrics
	pool    *worker.Pool
}

type PoolConfig struct {
	Workers    int
	BufferSize int
}

func NewEngine(repo repository.HazardRepository, journal repository.JournalRepository, h *hub.Hub, metrics *observability.Metrics, cfg PoolConfig) *Engine {
	e := &Engine{
		repo:    repo,
		journal: journal,
		hub:     h,
		metrics: metrics,
	}

	processor := func(ctx context.Context, job worker.Job) error {
		entry := job.(*models.JournalEntry)
		if err := e.journal.AppendEvent(ctx, entry); err != nil {
			slog.Error("error appending journal entry", "kind", entry.Kind, "hazard_id", entry.HazardID, "error", err)
			return err
		}
		return nil
	}
	e.pool = worker.NewPool(cfg.Workers, cfg.BufferSize, processor)

	return e
}

func (e *Engine) Start(ctx context.Context) {
	e.pool.Start(ctx)
}

func (e *Engine) Stop() {
	e.pool.Stop()
}

// Dispatch routes one inbound event. It is called synchronously from the
// session's read loop so a single session's events keep arrival order.
// Unrecognized event names are rejected here, before any state is touched.
func (e *Engine) Dispatch(ctx context.Context, sessionID, event string, data json.RawMessage) {
	e.metrics.EventsReceived.WithLabelValues(event).Inc()

	switch event {
	case EventJoinLocation:
		e.handleJoin(sessionID, data)
	case EventReportHazard:
		e.handleReport(ctx, sessionID, data)
	case EventVerifyHazard:
		e.handleVerify(ctx, sessionID, data)
	case EventDeleteHazard:
		e.handleDelete(ctx, sessionID, data)
	default:
		slog.Warn("unknown event", "event", event, "session_id", sessionID)
	}
}

// Disconnect clears every room membership for the session.
func (e *Engine) Disconnect(sessionID string) {
	e.hub.Unregister(sessionID)
	slog.Debug("session disconnected", "session_id", sessionID)
}

func (e *Engine) handleJoin(sessionID string, data json.RawMessage) {
	var p joinLocationPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Lat == nil || p.Lng == nil {
		slog.Warn("malformed join-location payload", "session_id", sessionID, "error", err)
		e.metrics.EventErrors.WithLabelValues(EventJoinLocation, "invalid").Inc()
		return
	}

	region, err := geo.RegionOf(*p.Lat, *p.Lng)
	if err != nil {
		slog.Warn("join-location outside coordinate domain", "session_id", sessionID, "lat", *p.Lat, "lng", *p.Lng)
		e.metrics.EventErrors.WithLabelValues(EventJoinLocation, "invalid").Inc()
		return
	}

	e.hub.Join(sessionID, region)
	slog.Debug("session joined region", "session_id", sessionID, "region", region)
}

func (e *Engine) handleReport(ctx context.Context, sessionID string, data json.RawMessage) {
	var p reportHazardPayload
	if err := json.Unmarshal(data, &p); err != nil {
		e.reportError(sessionID, "invalid report payload")
		return
	}
	if p.Location == nil || p.Location.Lat == nil || p.Location.Lng == nil {
		e.reportError(sessionID, "hazard location is required")
		return
	}

	h, err := e.repo.Create(ctx, models.HazardType(p.Type), *p.Location.Lat, *p.Location.Lng, p.UserID)
	switch {
	case errors.Is(err, repository.ErrInvalidHazardType):
		e.reportError(sessionID, "unknown hazard type")
		return
	case errors.Is(err, repository.ErrInvalidLocation):
		e.reportError(sessionID, "hazard location out of range")
		return
	case err != nil:
		slog.Error("error creating hazard", "session_id", sessionID, "error", err)
		e.metrics.EventErrors.WithLabelValues(EventReportHazard, "internal").Inc()
		return
	}

	// Region cannot fail here: the store already validated the coordinates.
	region, _ := geo.RegionOf(h.Latitude, h.Longitude)

	e.hub.BroadcastRoom(region, hub.Envelope{
		Event: EventNewHazard,
		Data: newHazardView{
			ID:        h.ID,
			Type:      string(h.Type),
			Location:  locationView{Lat: h.Latitude, Lng: h.Longitude},
			Verifiers: h.Verifiers,
		},
	})
	e.metrics.BroadcastsSent.WithLabelValues("room").Inc()
	e.appendJournal(models.JournalReported, h.ID, h.ReporterID)

	slog.Info("hazard reported", "hazard_id", h.ID, "type", h.Type, "region", region, "reporter_id", h.ReporterID)
}

func (e *Engine) handleVerify(ctx context.Context, sessionID string, data json.RawMessage) {
	var p verifyHazardPayload
	if err := json.Unmarshal(data, &p); err != nil {
		slog.Warn("malformed verify-hazard payload", "session_id", sessionID, "error", err)
		e.metrics.EventErrors.WithLabelValues(EventVerifyHazard, "invalid").Inc()
		return
	}

	h, err := e.repo.AddVerifier(ctx, p.HazardID, p.UserID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		// No client notification on verify failures.
		slog.Warn("verify-hazard for unknown hazard", "hazard_id", p.HazardID, "session_id", sessionID)
		e.metrics.EventErrors.WithLabelValues(EventVerifyHazard, "not_found").Inc()
		return
	case err != nil:
		slog.Error("error verifying hazard", "hazard_id", p.HazardID, "error", err)
		e.metrics.EventErrors.WithLabelValues(EventVerifyHazard, "internal").Inc()
		return
	}

	e.hub.BroadcastAll(hub.Envelope{
		Event: EventHazardUpdated,
		Data: hazardRecordView{
			ID:         h.ID,
			Type:       string(h.Type),
			Location:   locationView{Lat: h.Latitude, Lng: h.Longitude},
			ReporterID: h.ReporterID,
			Verifiers:  h.Verifiers,
			CreatedAt:  h.CreatedAt.Format(time.RFC3339),
		},
	})
	e.metrics.BroadcastsSent.WithLabelValues("global").Inc()
	e.appendJournal(models.JournalVerified, h.ID, p.UserID)

	slog.Info("hazard verified", "hazard_id", h.ID, "user_id", p.UserID, "verifier_count", len(h.Verifiers))
}

func (e *Engine) handleDelete(ctx context.Context, sessionID string, data json.RawMessage) {
	var p deleteHazardPayload
	if err := json.Unmarshal(data, &p); err != nil {
		slog.Warn("malformed delete-hazard payload", "session_id", sessionID, "error", err)
		e.metrics.EventErrors.WithLabelValues(EventDeleteHazard, "invalid").Inc()
		return
	}

	err := e.repo.Delete(ctx, p.HazardID, p.UserID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		// Silent toward the client, observable only via absence of the deletion.
		slog.Warn("delete-hazard for unknown hazard", "hazard_id", p.HazardID, "session_id", sessionID)
		e.metrics.EventErrors.WithLabelValues(EventDeleteHazard, "not_found").Inc()
		return
	case errors.Is(err, repository.ErrUnauthorized):
		slog.Warn("delete-hazard by non-reporter", "hazard_id", p.HazardID, "requester_id", p.UserID)
		e.metrics.EventErrors.WithLabelValues(EventDeleteHazard, "unauthorized").Inc()
		return
	case err != nil:
		slog.Error("error deleting hazard", "hazard_id", p.HazardID, "error", err)
		e.metrics.EventErrors.WithLabelValues(EventDeleteHazard, "internal").Inc()
		return
	}

	e.hub.BroadcastAll(hub.Envelope{
		Event: EventHazardDeleted,
		Data:  hazardDeletedView{HazardID: p.HazardID},
	})
	e.metrics.BroadcastsSent.WithLabelValues("global").Inc()
	e.appendJournal(models.JournalDeleted, p.HazardID, p.UserID)

	slog.Info("hazard deleted", "hazard_id", p.HazardID, "requester_id", p.UserID)
}

func (e *Engine) reportError(sessionID, message string) {
	e.hub.Send(sessionID, hub.Envelope{
		Event: EventError,
		Data:  errorView{Message: message},
	})
	e.metrics.BroadcastsSent.WithLabelValues("session").Inc()
	e.metrics.EventErrors.WithLabelValues(EventReportHazard, "invalid").Inc()
	slog.Warn("rejected hazard report", "session_id", sessionID, "reason", message)
}

func (e *Engine) appendJournal(kind models.JournalKind, hazardID, actorID string) {
	entry := &models.JournalEntry{
		Kind:     kind,
		HazardID: hazardID,
		ActorID:  actorID,
	}
	if !e.pool.TrySubmit(entry) {
		e.metrics.JournalDropped.Inc()
		slog.Warn("journal queue full, entry dropped", "kind", kind, "hazard_id", hazardID)
	}
}
