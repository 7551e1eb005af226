// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 Calive contributors
// https://github.com/entremotivator/Calive

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/entremotivator/Calive/internal/models"
	"github.com/entremotivator/Calive/internal/pkg/logger"
)

// CalendarsHandler handles calendar registry API requests.
type CalendarsHandler struct {
	BaseHandler
}

// NewCalendarsHandler creates a new calendars handler.
func NewCalendarsHandler(log *logger.Logger) *CalendarsHandler {
	return &CalendarsHandler{
		BaseHandler: NewBaseHandler(log),
	}
}

// Routes registers calendar API routes.
func (h *CalendarsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListCalendars)
	r.Post("/", h.AddCalendar)
	r.Get("/active", h.ActiveCalendar)
	r.Get("/{ownerID}", h.GetCalendar)
	r.Put("/{ownerID}", h.UpdateCalendar)
	r.Delete("/{ownerID}", h.DeleteCalendar)
	r.Post("/{ownerID}/activate", h.ActivateCalendar)

	return r
}

// ListCalendars returns every registered calendar.
func (h *CalendarsHandler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	svc, err := h.Service(r)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	h.OK(w, svc.ListCalendars())
}

// addCalendarRequest represents the request body for registering a calendar.
type addCalendarRequest struct {
	OwnerID     string `json:"owner_id" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"max=255"`
	Color       string `json:"color" validate:"omitempty,max=20"`
	Timezone    string `json:"timezone" validate:"max=64"`
}

// AddCalendar registers a new calendar.
func (h *CalendarsHandler) AddCalendar(w http.ResponseWriter, r *http.Request) {
	svc, err := h.Service(r)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	var req addCalendarRequest
	if err := h.ParseJSON(r, &req); err != nil {
		h.HandleError(w, err)
		return
	}

	cal := &models.Calendar{
		OwnerID:     req.OwnerID,
		DisplayName: req.DisplayName,
		Color:       req.Color,
		Visible:     true,
		Timezone:    req.Timezone,
	}
	if err := svc.AddCalendar(cal); err != nil {
		h.HandleError(w, err)
		return
	}
	h.Created(w, cal)
}

// GetCalendar returns one calendar by owner id.
func (h *CalendarsHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	svc, err := h.Service(r)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	owner, err := h.RequireURLParam(r, "ownerID")
	if err != nil {
		h.HandleError(w, err)
		return
	}

	cal, err := svc.GetCalendar(owner)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.OK(w, cal)
}

// updateCalendarRequest represents the request body for updating a calendar.
type updateCalendarRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=255"`
	Color       string `json:"color" validate:"omitempty,max=20"`
	Visible     bool   `json:"visible"`
	Timezone    string `json:"timezone" validate:"max=64"`
}

// UpdateCalendar updates a calendar's display fields.
func (h *CalendarsHandler) UpdateCalendar(w http.ResponseWriter, r *http.Request) {
	svc, err := h.Service(r)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	owner, err := h.RequireURLParam(r, "ownerID")
	if err != nil {
		h.HandleError(w, err)
		return
	}

	var req updateCalendarRequest
	if err := h.ParseJSON(r, &req); err != nil {
		h.HandleError(w, err)
		return
	}

	cal, err := svc.UpdateCalendar(owner, func(c *models.Calendar) {
		c.DisplayName = req.DisplayName
		c.Visible = req.Visible
		if req.Color != "" {
			c.Color = req.Color
		}
		if req.Timezone != "" {
			c.Timezone = req.Timezone
		}
	})
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.OK(w, cal)
}

// DeleteCalendar removes a calendar and cascades to its events.
func (h *CalendarsHandler) DeleteCalendar(w http.ResponseWriter, r *http.Request) {
	svc, err := h.Service(r)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	owner, err := h.RequireURLParam(r, "ownerID")
	if err != nil {
		h.HandleError(w, err)
		return
	}

	removed, err := svc.DeleteCalendar(owner)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.OK(w, map[string]int{"events_removed": removed})
}

// ActivateCalendar marks a calendar as the default for new events.
func (h *CalendarsHandler) ActivateCalendar(w http.ResponseWriter, r *http.Request) {
	svc, err := h.Service(r)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	owner, err := h.RequireURLParam(r, "ownerID")
	if err != nil {
		h.HandleError(w, err)
		return
	}

	if err := svc.SetActiveCalendar(owner); err != nil {
		h.HandleError(w, err)
		return
	}
	h.NoContent(w)
}

// ActiveCalendar returns the currently active calendar.
func (h *CalendarsHandler) ActiveCalendar(w http.ResponseWriter, r *http.Request) {
	svc, err := h.Service(r)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	cal, err := svc.GetCalendar(svc.ActiveCalendar())
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.OK(w, cal)
}
