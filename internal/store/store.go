// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 Calive contributors
// https://github.com/entremotivator/Calive

// Package store holds the mutable session state: every event and
// calendar of one interactive session. The store exclusively owns its
// entities; callers get and supply copies. A single mutex serializes
// all operations, which is sufficient because they are short and
// CPU-bound.
package store

import (
	"sync"

	"github.com/google/uuid"

	"github.com/entremotivator/Calive/internal/models"
	"github.com/entremotivator/Calive/internal/pkg/errors"
	"github.com/entremotivator/Calive/internal/pkg/timeutil"
)

// Store is the in-memory event and calendar collection for one session.
type Store struct {
	mu        sync.Mutex
	events    map[string]*models.Event
	order     []string
	calendars map[string]*models.Calendar
	calOrder  []string
	active    string
	now       func() string
}

// Option configures a Store.
type Option func(*Store)

// WithNow replaces the clock used for mutation timestamps.
func WithNow(now func() string) Option {
	return func(s *Store) { s.now = now }
}

// New creates a store holding the default calendar, which starts active.
func New(opts ...Option) *Store {
	s := &Store{
		events:    make(map[string]*models.Event),
		calendars: make(map[string]*models.Calendar),
		now:       timeutil.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	def := models.NewDefaultCalendar()
	s.calendars[def.OwnerID] = def
	s.calOrder = append(s.calOrder, def.OwnerID)
	s.active = def.OwnerID
	return s
}

// ============================================================================
// Events
// ============================================================================

// InsertEvent adds a copy of ev. An id collision gets a fresh generated
// id instead of clobbering the existing event; an unknown calendar owner
// is reassigned to the active calendar so the ownership invariant holds.
// The stored copy is returned.
func (s *Store) InsertEvent(ev *models.Event) *models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(ev)
}

// BulkInsert adds copies of all events and returns how many were added.
// The import path uses it; spans are not validated here.
func (s *Store) BulkInsert(events []*models.Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range events {
		s.insertLocked(ev)
	}
	return len(events)
}

func (s *Store) insertLocked(ev *models.Event) *models.Event {
	c := ev.Clone()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, exists := s.events[c.ID]; exists {
		c.ID = uuid.NewString()
	}
	if _, ok := s.calendars[c.CalendarOwner]; !ok {
		c.CalendarOwner = s.active
	}
	s.events[c.ID] = c
	s.order = append(s.order, c.ID)
	return c.Clone()
}

// GetEvent returns a copy of the event with the given id.
func (s *Store) GetEvent(id string) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return nil, errors.NewNotFoundError("event " + id)
	}
	return ev.Clone(), nil
}

// UpdateEvent applies a mutation to the stored event and refreshes its
// Updated timestamp. The updated copy is returned.
func (s *Store) UpdateEvent(id string, apply func(*models.Event)) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return nil, errors.NewNotFoundError("event " + id)
	}
	apply(ev)
	ev.ID = id // id is immutable
	if _, ok := s.calendars[ev.CalendarOwner]; !ok {
		ev.CalendarOwner = s.active
	}
	ev.Updated = s.now()
	return ev.Clone(), nil
}

// DeleteEvent removes the event with the given id.
func (s *Store) DeleteEvent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return errors.NewNotFoundError("event " + id)
	}
	delete(s.events, id)
	s.removeFromOrder(id)
	return nil
}

// Events returns copies of all events in insertion order.
func (s *Store) Events() []*models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Event, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.events[id].Clone())
	}
	return out
}

// Len returns the number of stored events.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// Clear removes every event. Calendars are kept.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.events)
	s.events = make(map[string]*models.Event)
	s.order = nil
	return n
}

func (s *Store) removeFromOrder(id string) {
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// ============================================================================
// Calendars
// ============================================================================

// AddCalendar registers a new calendar.
func (s *Store) AddCalendar(cal *models.Calendar) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.calendars[cal.OwnerID]; exists {
		return errors.NewAlreadyExistsError("calendar " + cal.OwnerID)
	}
	c := *cal
	s.calendars[c.OwnerID] = &c
	s.calOrder = append(s.calOrder, c.OwnerID)
	return nil
}

// EnsureCalendar registers the calendar if it is not present yet. The
// import path uses it for inferred owner identities.
func (s *Store) EnsureCalendar(cal *models.Calendar) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.calendars[cal.OwnerID]; exists {
		return
	}
	c := *cal
	s.calendars[c.OwnerID] = &c
	s.calOrder = append(s.calOrder, c.OwnerID)
}

// GetCalendar returns a copy of the calendar with the given owner id.
func (s *Store) GetCalendar(ownerID string) (*models.Calendar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cal, ok := s.calendars[ownerID]
	if !ok {
		return nil, errors.NewNotFoundError("calendar " + ownerID)
	}
	c := *cal
	return &c, nil
}

// UpdateCalendar applies a mutation to the stored calendar.
func (s *Store) UpdateCalendar(ownerID string, apply func(*models.Calendar)) (*models.Calendar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cal, ok := s.calendars[ownerID]
	if !ok {
		return nil, errors.NewNotFoundError("calendar " + ownerID)
	}
	apply(cal)
	cal.OwnerID = ownerID // owner id is the key, immutable
	c := *cal
	return &c, nil
}

// DeleteCalendar removes a calendar and every event it owns. Deleting
// the last remaining calendar is rejected. If the deleted calendar was
// active, another one becomes active. Returns how many events were
// cascaded away.
func (s *Store) DeleteCalendar(ownerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.calendars[ownerID]; !ok {
		return 0, errors.NewNotFoundError("calendar " + ownerID)
	}
	if len(s.calendars) == 1 {
		return 0, errors.NewConflictError("cannot delete the last remaining calendar")
	}

	removed := 0
	for id, ev := range s.events {
		if ev.CalendarOwner == ownerID {
			delete(s.events, id)
			s.removeFromOrder(id)
			removed++
		}
	}

	delete(s.calendars, ownerID)
	for i, oid := range s.calOrder {
		if oid == ownerID {
			s.calOrder = append(s.calOrder[:i], s.calOrder[i+1:]...)
			break
		}
	}

	if s.active == ownerID {
		s.active = s.calOrder[0]
	}
	return removed, nil
}

// Calendars returns copies of all calendars in registration order.
func (s *Store) Calendars() []*models.Calendar {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Calendar, 0, len(s.calOrder))
	for _, id := range s.calOrder {
		c := *s.calendars[id]
		out = append(out, &c)
	}
	return out
}

// ActiveCalendar returns the owner id of the active calendar.
func (s *Store) ActiveCalendar() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SetActive marks the given calendar as the target for new events.
func (s *Store) SetActive(ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.calendars[ownerID]; !ok {
		return errors.NewNotFoundError("calendar " + ownerID)
	}
	s.active = ownerID
	return nil
}
