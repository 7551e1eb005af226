// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 Calive contributors
// https://github.com/entremotivator/Calive

package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/entremotivator/Calive/internal/models"
)

func TestListCalendars_DefaultPresent(t *testing.T) {
	s := setupTestSuite(t)

	w := s.do(t, http.MethodGet, "/api/v1/calendars", "", nil)
	assertStatus(t, w, http.StatusOK)

	var cals []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &cals); err != nil {
		t.Fatalf("decode calendars: %v", err)
	}
	if len(cals) != 1 {
		t.Fatalf("fresh session has %d calendars, want 1", len(cals))
	}
	if cals[0]["owner_id"] != models.DefaultCalendarOwner {
		t.Errorf("owner_id = %v, want %s", cals[0]["owner_id"], models.DefaultCalendarOwner)
	}
}

func TestAddCalendar_AppliesDefaults(t *testing.T) {
	s := setupTestSuite(t)

	w := s.do(t, http.MethodPost, "/api/v1/calendars", "", map[string]interface{}{
		"owner_id": "work@example.com",
	})
	assertStatus(t, w, http.StatusCreated)
	body := decodeJSON(t, w)
	if body["display_name"] != "work@example.com" {
		t.Errorf("display_name = %v, want owner id fallback", body["display_name"])
	}
	if body["color"] != models.DefaultEventColor {
		t.Errorf("color = %v, want %s", body["color"], models.DefaultEventColor)
	}
	if body["timezone"] != models.DefaultTimezone {
		t.Errorf("timezone = %v, want %s", body["timezone"], models.DefaultTimezone)
	}
}

func TestAddCalendar_Duplicate(t *testing.T) {
	s := setupTestSuite(t)

	in := map[string]interface{}{"owner_id": "work@example.com"}
	w := s.do(t, http.MethodPost, "/api/v1/calendars", "", in)
	assertStatus(t, w, http.StatusCreated)

	w = s.do(t, http.MethodPost, "/api/v1/calendars", "", in)
	assertStatus(t, w, http.StatusConflict)
	if code := errorCode(t, w); code != "CONFLICT" {
		t.Errorf("error code = %s, want CONFLICT", code)
	}
}

func TestAddCalendar_InvalidOwner(t *testing.T) {
	s := setupTestSuite(t)

	w := s.do(t, http.MethodPost, "/api/v1/calendars", "", map[string]interface{}{
		"owner_id": "not-an-email",
	})
	assertStatus(t, w, http.StatusBadRequest)
}

func TestGetCalendar_NotFound(t *testing.T) {
	s := setupTestSuite(t)

	w := s.do(t, http.MethodGet, "/api/v1/calendars/ghost@example.com", "", nil)
	assertStatus(t, w, http.StatusNotFound)
}

func TestUpdateCalendar(t *testing.T) {
	s := setupTestSuite(t)

	w := s.do(t, http.MethodPut, "/api/v1/calendars/"+models.DefaultCalendarOwner, "", map[string]interface{}{
		"display_name": "Renamed",
		"color":        "#33b679",
		"visible":      false,
	})
	assertStatus(t, w, http.StatusOK)
	body := decodeJSON(t, w)
	if body["display_name"] != "Renamed" {
		t.Errorf("display_name = %v, want Renamed", body["display_name"])
	}
	if body["visible"] != false {
		t.Errorf("visible = %v, want false", body["visible"])
	}
}

func TestActivateCalendar_ChangesDefaultOwner(t *testing.T) {
	s := setupTestSuite(t)

	w := s.do(t, http.MethodPost, "/api/v1/calendars", "", map[string]interface{}{
		"owner_id": "work@example.com",
	})
	assertStatus(t, w, http.StatusCreated)

	w = s.do(t, http.MethodPost, "/api/v1/calendars/work@example.com/activate", "", nil)
	assertStatus(t, w, http.StatusNoContent)

	w = s.do(t, http.MethodGet, "/api/v1/calendars/active", "", nil)
	assertStatus(t, w, http.StatusOK)
	body := decodeJSON(t, w)
	if body["owner_id"] != "work@example.com" {
		t.Errorf("active owner = %v, want work@example.com", body["owner_id"])
	}

	// New events now land on the activated calendar.
	created := s.mustCreateEvent(t, "", validEventInput())
	if created["calendar_owner"] != "work@example.com" {
		t.Errorf("calendar_owner = %v, want work@example.com", created["calendar_owner"])
	}
}

func TestDeleteCalendar_CascadesEvents(t *testing.T) {
	s := setupTestSuite(t)

	w := s.do(t, http.MethodPost, "/api/v1/calendars", "", map[string]interface{}{
		"owner_id": "work@example.com",
	})
	assertStatus(t, w, http.StatusCreated)

	in := validEventInput()
	in["calendar_owner"] = "work@example.com"
	s.mustCreateEvent(t, "", in)
	s.mustCreateEvent(t, "", in)

	w = s.do(t, http.MethodDelete, "/api/v1/calendars/work@example.com", "", nil)
	assertStatus(t, w, http.StatusOK)
	body := decodeJSON(t, w)
	if removed := body["events_removed"].(float64); removed != 2 {
		t.Errorf("events_removed = %v, want 2", removed)
	}
}

func TestDeleteCalendar_LastOneRejected(t *testing.T) {
	s := setupTestSuite(t)

	w := s.do(t, http.MethodDelete, "/api/v1/calendars/"+models.DefaultCalendarOwner, "", nil)
	assertStatus(t, w, http.StatusConflict)
}
