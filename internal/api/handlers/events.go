// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 Calive contributors
// https://github.com/entremotivator/Calive

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/entremotivator/Calive/internal/api/middleware"
	"github.com/entremotivator/Calive/internal/export"
	"github.com/entremotivator/Calive/internal/models"
	"github.com/entremotivator/Calive/internal/pkg/logger"
	"github.com/entremotivator/Calive/internal/pkg/timeutil"
	"github.com/entremotivator/Calive/internal/query"
	"github.com/entremotivator/Calive/internal/services/events"
)

// EventsHandler handles event API requests. The service it operates on
// is resolved per request from the session.
type EventsHandler struct {
	BaseHandler
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(log *logger.Logger) *EventsHandler {
	return &EventsHandler{
		BaseHandler: NewBaseHandler(log),
	}
}

// Routes registers event API routes.
func (h *EventsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(middleware.ImportRateLimit()).Post("/import", h.ImportEvents)
	r.Get("/export", h.ExportEvents)
	r.Get("/stats", h.Statistics)

	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.ListEvents)
		r.Post("/", h.CreateEvent)
		r.Delete("/", h.ClearEvents)
		r.Get("/feed", h.EventFeed)
		r.Get("/{id}", h.GetEvent)
		r.Put("/{id}", h.UpdateEvent)
		r.Delete("/{id}", h.DeleteEvent)
		r.Post("/{id}/duplicate", h.DuplicateEvent)
	})

	return r
}

// ============================================================================
// Import / Export
// ============================================================================

// ImportEvents accepts a raw JSON payload in any of the tolerated
// document shapes and merges the normalized events into the session.
func (h *EventsHandler) ImportEvents(w http.ResponseWriter, r *http.Request) {
	svc, err := h.Service(r)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	data, err := h.ReadBody(r)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	result, err := svc.Import(data)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	h.OK(w, result)
}

// ExportEvents serializes the session's events. The format query
// parameter selects json (default) or ics; the calendar parameter
// restricts the export to one calendar's events.
func (h *EventsHandler) ExportEvents(w http.ResponseWriter, r *http.Request) {
	svc, err := h.Service(r)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	owner := h.QueryParam(r, "calendar")
	if owner == "" {
		owner = svc.ActiveCalendar()
	}
	cal, err := svc.GetCalendar(owner)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	evs := svc.ListEvents()
	if h.QueryParam(r, "calendar") != "" {
		filtered := make([]*models.Event, 0, len(evs))
		for _, ev := range evs {
			if ev.CalendarOwner == owner {
				filtered = append(filtered, ev)
			}
		}
		evs = filtered
	}

	now := timeutil.Now()
	switch h.QueryParam(r, "format") {
	case "", "json":
		data, err := export.MarshalJSON(export.BuildDocument(evs, cal, now))
		if err != nil {
			h.InternalError(w, err)
			return
		}
		h.Attachment(w, export.Filename(now, "json"), "application/json; charset=utf-8", data)
	case "ics":
		data, err := export.MarshalICS(evs, cal, now)
		if err != nil {
			h.InternalError(w, err)
			return
		}
		h.Attachment(w, export.Filename(now, "ics"), "text/calendar; charset=utf-8", data)
	default:
		h.BadRequest(w, "format must be json or ics")
	}
}

// ============================================================================
// Events
// ============================================================================

// ListEvents returns a filtered, sorted, paginated projection.
func (h *EventsHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	svc, err := h.Service(r)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	page := query.Project(svc.ListEvents(), h.GetProjection(r))
	h.OK(w, page)
}

// EventFeed returns the renderable shapes for the calendar widget,
// honoring the same filters as ListEvents but without pagination.
func (h *EventsHandler) EventFeed(w http.ResponseWriter, r *http.Request) {
	svc, err := h.Service(r)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	selected := query.Select(svc.ListEvents(), h.GetProjection(r))
	h.OK(w, query.Feed(selected))
}

// GetEvent returns a single event by id.
func (h *EventsHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	svc, err := h.Service(r)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	id, err := h.RequireURLParam(r, "id")
	if err != nil {
		h.HandleError(w, err)
		return
	}

	ev, err := svc.GetEvent(id)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.OK(w, ev)
}

// CreateEvent creates a new event in the session's store.
func (h *EventsHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	svc, err := h.Service(r)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	var req events.EventInput
	if err := h.ParseJSON(r, &req); err != nil {
		h.HandleError(w, err)
		return
	}

	ev, err := svc.CreateEvent(&req)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.Created(w, ev)
}

// UpdateEvent replaces an event's mutable fields.
func (h *EventsHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	svc, err := h.Service(r)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	id, err := h.RequireURLParam(r, "id")
	if err != nil {
		h.HandleError(w, err)
		return
	}

	var req events.EventInput
	if err := h.ParseJSON(r, &req); err != nil {
		h.HandleError(w, err)
		return
	}

	ev, err := svc.UpdateEvent(id, &req)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.OK(w, ev)
}

// DeleteEvent removes an event.
func (h *EventsHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	svc, err := h.Service(r)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	id, err := h.RequireURLParam(r, "id")
	if err != nil {
		h.HandleError(w, err)
		return
	}

	if err := svc.DeleteEvent(id); err != nil {
		h.HandleError(w, err)
		return
	}
	h.NoContent(w)
}

// DuplicateEvent clones an event under a fresh id. An optional JSON
// body carries field overrides applied on top of the copy.
func (h *EventsHandler) DuplicateEvent(w http.ResponseWriter, r *http.Request) {
	svc, err := h.Service(r)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	id, err := h.RequireURLParam(r, "id")
	if err != nil {
		h.HandleError(w, err)
		return
	}

	var overrides *events.EventOverrides
	if r.ContentLength != 0 {
		overrides = &events.EventOverrides{}
		if err := h.ParseJSON(r, overrides); err != nil {
			h.HandleError(w, err)
			return
		}
	}

	ev, err := svc.DuplicateEvent(id, overrides)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.Created(w, ev)
}

// ClearEvents removes every event in the session, keeping calendars.
func (h *EventsHandler) ClearEvents(w http.ResponseWriter, r *http.Request) {
	svc, err := h.Service(r)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	removed := svc.ClearEvents()
	h.OK(w, map[string]int{"removed": removed})
}

// ============================================================================
// Statistics
// ============================================================================

// Statistics returns the aggregate counts. The now query parameter
// overrides the reference time, mainly for reproducible clients.
func (h *EventsHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	svc, err := h.Service(r)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	now := h.QueryParam(r, "now")
	if now == "" {
		now = timeutil.Now()
	}

	stats := query.ComputeStatistics(svc.ListEvents(), now)
	h.OK(w, stats)
}
