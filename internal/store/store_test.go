// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 Calive contributors
// https://github.com/entremotivator/Calive

package store

import (
	"testing"

	"github.com/entremotivator/Calive/internal/models"
	"github.com/entremotivator/Calive/internal/pkg/errors"
)

const testNow = "2024-06-15T12:00:00"

func newTestStore() *Store {
	return New(WithNow(func() string { return testNow }))
}

func sampleEvent(id, owner string) *models.Event {
	return &models.Event{
		ID:            id,
		Title:         "Sample",
		Start:         "2024-06-15T09:00:00",
		End:           "2024-06-15T10:00:00",
		Color:         models.DefaultEventColor,
		CalendarOwner: owner,
		Status:        models.StatusConfirmed,
		Category:      models.CategoryGeneral,
		Created:       testNow,
		Updated:       testNow,
	}
}

// ============================================================================
// Construction
// ============================================================================

func TestNew_HasDefaultCalendar(t *testing.T) {
	s := newTestStore()

	cals := s.Calendars()
	if len(cals) != 1 {
		t.Fatalf("new store has %d calendars, want 1", len(cals))
	}
	if cals[0].OwnerID != models.DefaultCalendarOwner {
		t.Errorf("default calendar owner = %q", cals[0].OwnerID)
	}
	if s.ActiveCalendar() != models.DefaultCalendarOwner {
		t.Error("default calendar should start active")
	}
}

// ============================================================================
// Event insertion
// ============================================================================

func TestInsertEvent_GeneratesIDWhenEmpty(t *testing.T) {
	s := newTestStore()
	ev := sampleEvent("", models.DefaultCalendarOwner)

	stored := s.InsertEvent(ev)
	if stored.ID == "" {
		t.Error("InsertEvent should generate an id")
	}
}

func TestInsertEvent_CollisionGetsFreshID(t *testing.T) {
	s := newTestStore()
	s.InsertEvent(sampleEvent("e1", models.DefaultCalendarOwner))

	again := sampleEvent("e1", models.DefaultCalendarOwner)
	again.Title = "Second"
	stored := s.InsertEvent(again)

	if stored.ID == "e1" {
		t.Error("colliding id should be replaced with a fresh one")
	}
	if s.Len() != 2 {
		t.Errorf("store has %d events, want 2 (no clobbering)", s.Len())
	}
	first, err := s.GetEvent("e1")
	if err != nil {
		t.Fatalf("GetEvent() error: %v", err)
	}
	if first.Title != "Sample" {
		t.Error("original event must be untouched by the collision")
	}
}

func TestInsertEvent_UnknownOwnerReassignedToActive(t *testing.T) {
	s := newTestStore()
	stored := s.InsertEvent(sampleEvent("e1", "ghost@example.com"))

	if stored.CalendarOwner != models.DefaultCalendarOwner {
		t.Errorf("CalendarOwner = %q, want active calendar", stored.CalendarOwner)
	}
}

func TestInsertEvent_StoresACopy(t *testing.T) {
	s := newTestStore()
	ev := sampleEvent("e1", models.DefaultCalendarOwner)
	s.InsertEvent(ev)

	ev.Title = "Mutated outside"
	got, err := s.GetEvent("e1")
	if err != nil {
		t.Fatalf("GetEvent() error: %v", err)
	}
	if got.Title != "Sample" {
		t.Error("the store must own its copy of inserted events")
	}
}

func TestBulkInsert(t *testing.T) {
	s := newTestStore()
	n := s.BulkInsert([]*models.Event{
		sampleEvent("a", models.DefaultCalendarOwner),
		sampleEvent("b", models.DefaultCalendarOwner),
	})
	if n != 2 || s.Len() != 2 {
		t.Errorf("BulkInsert added %d (store %d), want 2", n, s.Len())
	}
}

// Import tolerates malformed spans; the store does not validate them.
func TestBulkInsert_AcceptsMalformedSpan(t *testing.T) {
	s := newTestStore()
	ev := sampleEvent("bad", models.DefaultCalendarOwner)
	ev.Start = "2024-06-15T10:00:00"
	ev.End = "2024-06-15T09:00:00"
	if n := s.BulkInsert([]*models.Event{ev}); n != 1 {
		t.Error("BulkInsert should not validate end > start")
	}
}

// ============================================================================
// Event lookup / update / delete
// ============================================================================

func TestGetEvent_NotFound(t *testing.T) {
	s := newTestStore()
	_, err := s.GetEvent("missing")
	if !errors.IsNotFoundError(err) {
		t.Errorf("GetEvent(missing) error = %v, want not found", err)
	}
}

func TestUpdateEvent_RefreshesUpdated(t *testing.T) {
	s := newTestStore()
	ev := sampleEvent("e1", models.DefaultCalendarOwner)
	ev.Updated = "2024-01-01T00:00:00"
	s.InsertEvent(ev)

	got, err := s.UpdateEvent("e1", func(e *models.Event) {
		e.Title = "Renamed"
	})
	if err != nil {
		t.Fatalf("UpdateEvent() error: %v", err)
	}
	if got.Title != "Renamed" {
		t.Errorf("Title = %q, want Renamed", got.Title)
	}
	if got.Updated != testNow {
		t.Errorf("Updated = %q, want refreshed to %q", got.Updated, testNow)
	}
}

func TestUpdateEvent_IDIsImmutable(t *testing.T) {
	s := newTestStore()
	s.InsertEvent(sampleEvent("e1", models.DefaultCalendarOwner))

	got, err := s.UpdateEvent("e1", func(e *models.Event) {
		e.ID = "hijacked"
	})
	if err != nil {
		t.Fatalf("UpdateEvent() error: %v", err)
	}
	if got.ID != "e1" {
		t.Errorf("ID = %q, must stay e1", got.ID)
	}
}

func TestUpdateEvent_NotFound(t *testing.T) {
	s := newTestStore()
	_, err := s.UpdateEvent("missing", func(e *models.Event) {})
	if !errors.IsNotFoundError(err) {
		t.Errorf("UpdateEvent(missing) error = %v, want not found", err)
	}
}

func TestDeleteEvent_RemovesExactlyOne(t *testing.T) {
	s := newTestStore()
	s.InsertEvent(sampleEvent("e1", models.DefaultCalendarOwner))
	s.InsertEvent(sampleEvent("e2", models.DefaultCalendarOwner))

	if err := s.DeleteEvent("e1"); err != nil {
		t.Fatalf("DeleteEvent() error: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("store has %d events after delete, want 1", s.Len())
	}
	if _, err := s.GetEvent("e2"); err != nil {
		t.Error("unrelated event must survive the delete")
	}
}

func TestDeleteEvent_NotFoundLeavesStoreUntouched(t *testing.T) {
	s := newTestStore()
	s.InsertEvent(sampleEvent("e1", models.DefaultCalendarOwner))

	err := s.DeleteEvent("missing")
	if !errors.IsNotFoundError(err) {
		t.Errorf("DeleteEvent(missing) error = %v, want not found", err)
	}
	if s.Len() != 1 {
		t.Error("failed delete must not mutate the store")
	}
}

func TestEvents_InsertionOrder(t *testing.T) {
	s := newTestStore()
	for _, id := range []string{"c", "a", "b"} {
		s.InsertEvent(sampleEvent(id, models.DefaultCalendarOwner))
	}
	got := s.Events()
	if len(got) != 3 || got[0].ID != "c" || got[1].ID != "a" || got[2].ID != "b" {
		t.Error("Events() should preserve insertion order")
	}
}

func TestClear(t *testing.T) {
	s := newTestStore()
	s.InsertEvent(sampleEvent("e1", models.DefaultCalendarOwner))
	s.InsertEvent(sampleEvent("e2", models.DefaultCalendarOwner))

	if n := s.Clear(); n != 2 {
		t.Errorf("Clear() removed %d, want 2", n)
	}
	if s.Len() != 0 {
		t.Error("store should be empty after Clear")
	}
	if len(s.Calendars()) != 1 {
		t.Error("Clear must keep calendars")
	}
}

// ============================================================================
// Calendars
// ============================================================================

func TestAddCalendar_Duplicate(t *testing.T) {
	s := newTestStore()
	cal := &models.Calendar{OwnerID: "work@example.com", DisplayName: "Work", Visible: true}

	if err := s.AddCalendar(cal); err != nil {
		t.Fatalf("AddCalendar() error: %v", err)
	}
	err := s.AddCalendar(cal)
	if !errors.IsConflictError(err) {
		t.Errorf("duplicate AddCalendar error = %v, want conflict", err)
	}
}

func TestEnsureCalendar_IsIdempotent(t *testing.T) {
	s := newTestStore()
	cal := &models.Calendar{OwnerID: "work@example.com", DisplayName: "Work", Visible: true}

	s.EnsureCalendar(cal)
	s.EnsureCalendar(&models.Calendar{OwnerID: "work@example.com", DisplayName: "Renamed"})

	got, err := s.GetCalendar("work@example.com")
	if err != nil {
		t.Fatalf("GetCalendar() error: %v", err)
	}
	if got.DisplayName != "Work" {
		t.Error("EnsureCalendar must not overwrite an existing calendar")
	}
}

func TestDeleteCalendar_CascadesAndReassignsActive(t *testing.T) {
	s := newTestStore()
	s.EnsureCalendar(&models.Calendar{OwnerID: "work@example.com", DisplayName: "Work", Visible: true})
	if err := s.SetActive("work@example.com"); err != nil {
		t.Fatalf("SetActive() error: %v", err)
	}

	s.InsertEvent(sampleEvent("w1", "work@example.com"))
	s.InsertEvent(sampleEvent("w2", "work@example.com"))
	s.InsertEvent(sampleEvent("p1", models.DefaultCalendarOwner))

	removed, err := s.DeleteCalendar("work@example.com")
	if err != nil {
		t.Fatalf("DeleteCalendar() error: %v", err)
	}
	if removed != 2 {
		t.Errorf("cascade removed %d events, want 2", removed)
	}
	if s.Len() != 1 {
		t.Errorf("store has %d events, want 1", s.Len())
	}
	if _, err := s.GetEvent("p1"); err != nil {
		t.Error("events of other calendars must survive")
	}
	if s.ActiveCalendar() != models.DefaultCalendarOwner {
		t.Errorf("active = %q, should be reassigned to a remaining calendar", s.ActiveCalendar())
	}
}

func TestDeleteCalendar_LastOneRejected(t *testing.T) {
	s := newTestStore()
	_, err := s.DeleteCalendar(models.DefaultCalendarOwner)
	if !errors.IsConflictError(err) {
		t.Errorf("deleting the sole calendar error = %v, want conflict", err)
	}
	if len(s.Calendars()) != 1 {
		t.Error("rejected delete must not remove the calendar")
	}
}

func TestDeleteCalendar_NotFound(t *testing.T) {
	s := newTestStore()
	_, err := s.DeleteCalendar("missing@example.com")
	if !errors.IsNotFoundError(err) {
		t.Errorf("DeleteCalendar(missing) error = %v, want not found", err)
	}
}

func TestSetActive_NotFound(t *testing.T) {
	s := newTestStore()
	err := s.SetActive("missing@example.com")
	if !errors.IsNotFoundError(err) {
		t.Errorf("SetActive(missing) error = %v, want not found", err)
	}
}

func TestUpdateCalendar(t *testing.T) {
	s := newTestStore()
	got, err := s.UpdateCalendar(models.DefaultCalendarOwner, func(c *models.Calendar) {
		c.DisplayName = "Renamed"
		c.Visible = false
	})
	if err != nil {
		t.Fatalf("UpdateCalendar() error: %v", err)
	}
	if got.DisplayName != "Renamed" || got.Visible {
		t.Error("UpdateCalendar should apply the mutation")
	}
}
