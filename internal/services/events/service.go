// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 Calive contributors
// https://github.com/entremotivator/Calive

package events

import (
	"fmt"

	"github.com/entremotivator/Calive/internal/importer"
	"github.com/entremotivator/Calive/internal/models"
	"github.com/entremotivator/Calive/internal/pkg/errors"
	"github.com/entremotivator/Calive/internal/pkg/logger"
	"github.com/entremotivator/Calive/internal/pkg/timeutil"
	"github.com/entremotivator/Calive/internal/pkg/validator"
	"github.com/entremotivator/Calive/internal/store"
)

// Service manages calendar events and their calendars on top of the
// in-memory store.
type Service struct {
	store      *store.Store
	importer   *importer.Importer
	logger     *logger.Logger
	now        func() string
	ownerValid importer.OwnerPredicate
}

// Option configures a Service.
type Option func(*Service)

// WithNow overrides the timestamp source. Used by tests.
func WithNow(now func() string) Option {
	return func(s *Service) { s.now = now }
}

// WithOwnerPredicate replaces the calendar owner validity predicate
// for both calendar management and import.
func WithOwnerPredicate(p importer.OwnerPredicate) Option {
	return func(s *Service) { s.ownerValid = p }
}

// NewService creates a new events service.
func NewService(st *store.Store, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		store:      st,
		logger:     log.Named("events"),
		now:        timeutil.Now,
		ownerValid: importer.DefaultOwnerPredicate,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.importer = importer.New(log,
		importer.WithNow(s.now),
		importer.WithOwnerPredicate(s.ownerValid),
	)
	return s
}

// EventInput carries the user-supplied fields for creating or updating
// an event. Timestamps are naive local strings; date-only values are
// expanded to full-day bounds.
type EventInput struct {
	Title         string `json:"title" validate:"required"`
	Start         string `json:"start" validate:"required,naive_timestamp"`
	End           string `json:"end" validate:"required,naive_timestamp"`
	Description   string `json:"description"`
	Location      string `json:"location"`
	Color         string `json:"color"`
	CalendarOwner string `json:"calendar_owner"`
	Status        string `json:"status"`
	Category      string `json:"category"`
}

// ============================================================================
// Events
// ============================================================================

// CreateEvent creates a new calendar event after validation.
func (s *Service) CreateEvent(in *EventInput) (*models.Event, error) {
	if err := s.validateInput(in); err != nil {
		return nil, fmt.Errorf("create event: validate: %w", err)
	}

	now := s.now()
	ev := &models.Event{
		Title:         in.Title,
		Start:         in.Start,
		End:           in.End,
		Description:   in.Description,
		Location:      in.Location,
		Color:         in.Color,
		CalendarOwner: in.CalendarOwner,
		Status:        in.Status,
		Category:      in.Category,
		Created:       now,
		Updated:       now,
	}
	stored := s.store.InsertEvent(ev)

	s.logger.Info("created event",
		"id", stored.ID,
		"title", stored.Title,
		"calendar", stored.CalendarOwner,
		"start", stored.Start,
	)
	return stored, nil
}

// GetEvent retrieves an event by ID.
func (s *Service) GetEvent(id string) (*models.Event, error) {
	ev, err := s.store.GetEvent(id)
	if err != nil {
		return nil, fmt.Errorf("get event %s: %w", id, err)
	}
	return ev, nil
}

// ListEvents returns all stored events in insertion order.
func (s *Service) ListEvents() []*models.Event {
	return s.store.Events()
}

// UpdateEvent replaces the mutable fields of an event after validation.
func (s *Service) UpdateEvent(id string, in *EventInput) (*models.Event, error) {
	if err := s.validateInput(in); err != nil {
		return nil, fmt.Errorf("update event %s: validate: %w", id, err)
	}

	ev, err := s.store.UpdateEvent(id, func(e *models.Event) {
		e.Title = in.Title
		e.Start = in.Start
		e.End = in.End
		e.Description = in.Description
		e.Location = in.Location
		e.Color = in.Color
		e.CalendarOwner = in.CalendarOwner
		e.Status = in.Status
		e.Category = in.Category
	})
	if err != nil {
		return nil, fmt.Errorf("update event %s: %w", id, err)
	}

	s.logger.Info("updated event", "id", ev.ID, "title", ev.Title)
	return ev, nil
}

// DeleteEvent deletes an event by ID.
func (s *Service) DeleteEvent(id string) error {
	if err := s.store.DeleteEvent(id); err != nil {
		return fmt.Errorf("delete event %s: %w", id, err)
	}

	s.logger.Info("deleted event", "id", id)
	return nil
}

// EventOverrides carries optional field replacements applied to a
// duplicated event. Nil fields keep the source value.
type EventOverrides struct {
	Title         *string `json:"title"`
	Start         *string `json:"start"`
	End           *string `json:"end"`
	Description   *string `json:"description"`
	Location      *string `json:"location"`
	Color         *string `json:"color"`
	CalendarOwner *string `json:"calendar_owner"`
	Status        *string `json:"status"`
	Category      *string `json:"category"`
}

// DuplicateEvent clones an existing event under a fresh ID with a
// " (Copy)" title suffix, then applies any overrides on top of the
// copy. A title override replaces the suffixed title.
func (s *Service) DuplicateEvent(id string, ov *EventOverrides) (*models.Event, error) {
	ev, err := s.store.GetEvent(id)
	if err != nil {
		return nil, fmt.Errorf("duplicate event %s: %w", id, err)
	}

	dup := ev.Clone()
	dup.ID = ""
	dup.Title = ev.Title + " (Copy)"
	if err := s.applyOverrides(dup, ov); err != nil {
		return nil, fmt.Errorf("duplicate event %s: validate: %w", id, err)
	}

	now := s.now()
	dup.Created = now
	dup.Updated = now
	stored := s.store.InsertEvent(dup)

	s.logger.Info("duplicated event", "source", id, "id", stored.ID, "title", stored.Title)
	return stored, nil
}

func (s *Service) applyOverrides(ev *models.Event, ov *EventOverrides) error {
	if ov == nil {
		return nil
	}
	if ov.Title != nil {
		if *ov.Title == "" {
			return errors.NewValidationError("title: cannot be blank")
		}
		ev.Title = *ov.Title
	}
	boundsTouched := false
	if ov.Start != nil {
		if err := validator.ValidateVar(*ov.Start, "required,naive_timestamp"); err != nil {
			return errors.NewValidationError("start: must be a naive local timestamp")
		}
		ev.Start = *ov.Start
		if !timeutil.HasTime(ev.Start) {
			ev.Start = timeutil.ExpandStart(ev.Start)
		}
		boundsTouched = true
	}
	if ov.End != nil {
		if err := validator.ValidateVar(*ov.End, "required,naive_timestamp"); err != nil {
			return errors.NewValidationError("end: must be a naive local timestamp")
		}
		ev.End = *ov.End
		if !timeutil.HasTime(ev.End) {
			ev.End = timeutil.ExpandEnd(ev.End)
		}
		boundsTouched = true
	}
	if boundsTouched && ev.End <= ev.Start {
		return errors.NewValidationError("end must be after start")
	}
	if ov.Description != nil {
		ev.Description = *ov.Description
	}
	if ov.Location != nil {
		ev.Location = *ov.Location
	}
	if ov.Color != nil {
		color := *ov.Color
		if color == "" {
			color = models.DefaultEventColor
		}
		if !models.ValidPaletteColor(color) {
			return errors.NewValidationError("invalid color: " + color)
		}
		ev.Color = color
	}
	if ov.CalendarOwner != nil {
		owner := *ov.CalendarOwner
		if owner == "" {
			owner = s.store.ActiveCalendar()
		}
		ev.CalendarOwner = owner
	}
	if ov.Status != nil {
		status := *ov.Status
		if status == "" {
			status = models.StatusConfirmed
		}
		ev.Status = status
	}
	if ov.Category != nil {
		category := *ov.Category
		if category == "" {
			category = models.InferCategory(ev.Title, ev.Description, ev.Location)
		} else if !models.ValidCategories[category] {
			return errors.NewValidationError("invalid category: " + category)
		}
		ev.Category = category
	}
	return nil
}

// ClearEvents removes all events while keeping registered calendars.
func (s *Service) ClearEvents() int {
	n := s.store.Clear()
	s.logger.Info("cleared events", "removed", n)
	return n
}

func (s *Service) validateInput(in *EventInput) error {
	if err := validator.Validate(in); err != nil {
		fields := validator.GetValidationErrors(err)
		for field, msg := range fields {
			return errors.NewValidationError(field + ": " + msg)
		}
		return errors.NewValidationError(err.Error())
	}

	if !timeutil.HasTime(in.Start) {
		in.Start = timeutil.ExpandStart(in.Start)
	}
	if !timeutil.HasTime(in.End) {
		in.End = timeutil.ExpandEnd(in.End)
	}
	if in.End <= in.Start {
		return errors.NewValidationError("end must be after start")
	}

	if in.Color == "" {
		in.Color = models.DefaultEventColor
	}
	if !models.ValidPaletteColor(in.Color) {
		return errors.NewValidationError("invalid color: " + in.Color)
	}
	if in.CalendarOwner == "" {
		in.CalendarOwner = s.store.ActiveCalendar()
	}
	if in.Status == "" {
		in.Status = models.StatusConfirmed
	}
	if in.Category == "" {
		in.Category = models.InferCategory(in.Title, in.Description, in.Location)
	} else if !models.ValidCategories[in.Category] {
		return errors.NewValidationError("invalid category: " + in.Category)
	}
	return nil
}

// ============================================================================
// Import
// ============================================================================

// ImportResult reports the outcome of an import: how many records were
// stored, which were skipped and why, and the calendar identity the
// payload carried.
type ImportResult struct {
	Imported int                      `json:"imported"`
	Skipped  []importer.SkippedRecord `json:"skipped"`
	Calendar importer.CalendarInfo    `json:"calendar"`
}

// Import normalizes a raw JSON payload and merges the resulting events
// into the store. Malformed records are skipped, never fatal; only an
// unparseable payload fails the whole import.
func (s *Service) Import(data []byte) (*ImportResult, error) {
	res, err := s.importer.Import(data)
	if err != nil {
		return nil, fmt.Errorf("import events: %w", err)
	}

	s.store.EnsureCalendar(&models.Calendar{
		OwnerID:     res.Calendar.OwnerID,
		DisplayName: res.Calendar.DisplayName,
		Color:       models.DefaultEventColor,
		Visible:     true,
		Timezone:    res.Calendar.Timezone,
	})
	n := s.store.BulkInsert(res.Events)

	s.logger.Info("imported events",
		"imported", n,
		"skipped", len(res.Skipped),
		"calendar", res.Calendar.OwnerID,
	)
	return &ImportResult{
		Imported: n,
		Skipped:  res.Skipped,
		Calendar: res.Calendar,
	}, nil
}

// ============================================================================
// Calendars
// ============================================================================

// AddCalendar registers a new calendar after validation.
func (s *Service) AddCalendar(cal *models.Calendar) error {
	if err := s.validateCalendar(cal); err != nil {
		return fmt.Errorf("add calendar: validate: %w", err)
	}

	if err := s.store.AddCalendar(cal); err != nil {
		return fmt.Errorf("add calendar %s: %w", cal.OwnerID, err)
	}

	s.logger.Info("added calendar", "owner", cal.OwnerID, "name", cal.DisplayName)
	return nil
}

// GetCalendar retrieves a calendar by owner ID.
func (s *Service) GetCalendar(ownerID string) (*models.Calendar, error) {
	cal, err := s.store.GetCalendar(ownerID)
	if err != nil {
		return nil, fmt.Errorf("get calendar %s: %w", ownerID, err)
	}
	return cal, nil
}

// ListCalendars returns all calendars in registration order.
func (s *Service) ListCalendars() []*models.Calendar {
	return s.store.Calendars()
}

// UpdateCalendar updates a calendar's display fields. The owner ID is
// immutable.
func (s *Service) UpdateCalendar(ownerID string, apply func(*models.Calendar)) (*models.Calendar, error) {
	cal, err := s.store.UpdateCalendar(ownerID, apply)
	if err != nil {
		return nil, fmt.Errorf("update calendar %s: %w", ownerID, err)
	}

	s.logger.Info("updated calendar", "owner", cal.OwnerID)
	return cal, nil
}

// DeleteCalendar removes a calendar and every event it owns. The last
// remaining calendar cannot be deleted.
func (s *Service) DeleteCalendar(ownerID string) (int, error) {
	removed, err := s.store.DeleteCalendar(ownerID)
	if err != nil {
		return 0, fmt.Errorf("delete calendar %s: %w", ownerID, err)
	}

	s.logger.Info("deleted calendar", "owner", ownerID, "events_removed", removed)
	return removed, nil
}

// SetActiveCalendar marks the calendar new events default to.
func (s *Service) SetActiveCalendar(ownerID string) error {
	if err := s.store.SetActive(ownerID); err != nil {
		return fmt.Errorf("set active calendar %s: %w", ownerID, err)
	}

	s.logger.Info("set active calendar", "owner", ownerID)
	return nil
}

// ActiveCalendar returns the owner ID of the active calendar.
func (s *Service) ActiveCalendar() string {
	return s.store.ActiveCalendar()
}

func (s *Service) validateCalendar(cal *models.Calendar) error {
	if cal.OwnerID == "" {
		return errors.NewValidationError("ownerId is required")
	}
	if !s.ownerValid(cal.OwnerID) {
		return errors.NewValidationError("ownerId is not a valid calendar owner")
	}
	if cal.DisplayName == "" {
		cal.DisplayName = cal.OwnerID
	}
	if cal.Color == "" {
		cal.Color = models.DefaultEventColor
	}
	if cal.Timezone == "" {
		cal.Timezone = models.DefaultTimezone
	}
	return nil
}
