// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 Calive contributors
// https://github.com/entremotivator/Calive

package importer

import (
	"strings"
	"testing"

	"github.com/entremotivator/Calive/internal/models"
	"github.com/entremotivator/Calive/internal/pkg/errors"
	"github.com/entremotivator/Calive/internal/pkg/logger"
)

const testNow = "2024-06-15T12:00:00"

func newTestImporter() *Importer {
	return New(logger.Nop(), WithNow(func() string { return testNow }))
}

// ============================================================================
// Document shapes
// ============================================================================

func TestImport_DocumentShapes(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want int // normalized events
	}{
		{"top-level list", `[{"summary":"A"},{"summary":"B"}]`, 2},
		{"items key", `{"items":[{"summary":"A"}]}`, 1},
		{"events key", `{"events":[{"summary":"A"},{"summary":"B"},{"summary":"C"}]}`, 3},
		{"single event key", `{"event":{"summary":"A"}}`, 1},
		{"bare event object", `{"summary":"Solo","start":"2024-06-01"}`, 1},
		{"empty list", `[]`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newTestImporter().Import([]byte(tt.doc))
			if err != nil {
				t.Fatalf("Import() error: %v", err)
			}
			if len(res.Events) != tt.want {
				t.Errorf("Import() produced %d events, want %d", len(res.Events), tt.want)
			}
		})
	}
}

func TestImport_InvalidJSON(t *testing.T) {
	_, err := newTestImporter().Import([]byte(`{"items": [`))
	if err == nil {
		t.Fatal("Import() should fail for invalid JSON")
	}
	if !errors.IsParseError(err) {
		t.Errorf("Import() error should be a parse error, got: %v", err)
	}
}

func TestImport_ScalarDocument(t *testing.T) {
	_, err := newTestImporter().Import([]byte(`42`))
	if err == nil {
		t.Fatal("Import() should reject a scalar document")
	}
	if !errors.IsParseError(err) {
		t.Errorf("expected parse error, got: %v", err)
	}
}

// ============================================================================
// Per-record skip semantics
// ============================================================================

func TestImport_SkipsBadRecordsAndKeepsRest(t *testing.T) {
	doc := `[
		{"summary":"Good one"},
		"just a string",
		{"summary":"Bad start","start":[1,2,3]},
		{"summary":"Also good","start":"2024-06-01T10:00:00"}
	]`

	res, err := newTestImporter().Import([]byte(doc))
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if len(res.Events) != 2 {
		t.Fatalf("Import() kept %d events, want 2", len(res.Events))
	}
	if len(res.Skipped) != 2 {
		t.Fatalf("Import() skipped %d records, want 2", len(res.Skipped))
	}
	if res.Skipped[0].Index != 1 || res.Skipped[1].Index != 2 {
		t.Errorf("skip indexes = %d,%d; want 1,2", res.Skipped[0].Index, res.Skipped[1].Index)
	}
	if !strings.Contains(res.Skipped[1].Reason, "start") {
		t.Errorf("skip reason should name the bad field, got: %s", res.Skipped[1].Reason)
	}
}

// ============================================================================
// Normalization
// ============================================================================

func TestNormalize_TitleResolutionOrder(t *testing.T) {
	imp := newTestImporter()

	tests := []struct {
		name   string
		record map[string]interface{}
		want   string
	}{
		{"summary wins", map[string]interface{}{"summary": "From summary", "title": "From title"}, "From summary"},
		{"title fallback", map[string]interface{}{"title": "From title"}, "From title"},
		{"default", map[string]interface{}{}, "Untitled Event"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := imp.Normalize(tt.record, models.DefaultCalendarOwner)
			if err != nil {
				t.Fatalf("Normalize() error: %v", err)
			}
			if ev.Title != tt.want {
				t.Errorf("Title = %q, want %q", ev.Title, tt.want)
			}
		})
	}
}

func TestNormalize_IDResolutionOrder(t *testing.T) {
	imp := newTestImporter()

	ev, err := imp.Normalize(map[string]interface{}{"id": "vendor-id", "iCalUID": "uid@google.com"}, models.DefaultCalendarOwner)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if ev.ID != "vendor-id" {
		t.Errorf("ID = %q, want vendor id", ev.ID)
	}

	ev, err = imp.Normalize(map[string]interface{}{"iCalUID": "uid@google.com"}, models.DefaultCalendarOwner)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if ev.ID != "uid@google.com" {
		t.Errorf("ID = %q, want iCalUID", ev.ID)
	}

	ev, err = imp.Normalize(map[string]interface{}{}, models.DefaultCalendarOwner)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if ev.ID == "" {
		t.Error("ID should be generated when absent")
	}
}

func TestNormalize_StartEndShapes(t *testing.T) {
	imp := newTestImporter()

	tests := []struct {
		name      string
		record    map[string]interface{}
		wantStart string
		wantEnd   string
	}{
		{
			"plain strings",
			map[string]interface{}{"start": "2024-06-15T09:00:00", "end": "2024-06-15T10:00:00"},
			"2024-06-15T09:00:00", "2024-06-15T10:00:00",
		},
		{
			"nested dateTime",
			map[string]interface{}{
				"start": map[string]interface{}{"dateTime": "2024-06-15T09:00:00+02:00"},
				"end":   map[string]interface{}{"dateTime": "2024-06-15T10:00:00+02:00"},
			},
			"2024-06-15T09:00:00", "2024-06-15T10:00:00",
		},
		{
			"nested date expands to whole day",
			map[string]interface{}{
				"start": map[string]interface{}{"date": "2024-06-15"},
				"end":   map[string]interface{}{"date": "2024-06-15"},
			},
			"2024-06-15T00:00:00", "2024-06-15T23:59:59",
		},
		{
			"dateTime preferred over date",
			map[string]interface{}{
				"start": map[string]interface{}{"dateTime": "2024-06-15T09:00:00", "date": "2024-06-15"},
				"end":   map[string]interface{}{"dateTime": "2024-06-15T10:00:00", "date": "2024-06-15"},
			},
			"2024-06-15T09:00:00", "2024-06-15T10:00:00",
		},
		{
			"missing start defaults to now, end to start+1h",
			map[string]interface{}{},
			testNow, "2024-06-15T13:00:00",
		},
		{
			"missing end defaults to start+1h",
			map[string]interface{}{"start": "2024-06-20T10:30:00"},
			"2024-06-20T10:30:00", "2024-06-20T11:30:00",
		},
		{
			"Z offset stripped not converted",
			map[string]interface{}{"start": "2024-06-15T09:00:00Z", "end": "2024-06-15T10:00:00Z"},
			"2024-06-15T09:00:00", "2024-06-15T10:00:00",
		},
		{
			"empty objects fall back to defaults",
			map[string]interface{}{
				"start": map[string]interface{}{},
				"end":   map[string]interface{}{},
			},
			testNow, "2024-06-15T13:00:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := imp.Normalize(tt.record, models.DefaultCalendarOwner)
			if err != nil {
				t.Fatalf("Normalize() error: %v", err)
			}
			if ev.Start != tt.wantStart {
				t.Errorf("Start = %q, want %q", ev.Start, tt.wantStart)
			}
			if ev.End != tt.wantEnd {
				t.Errorf("End = %q, want %q", ev.End, tt.wantEnd)
			}
		})
	}
}

func TestNormalize_UnparseableStartStillImports(t *testing.T) {
	// A start string that parses as nothing: the record survives, and
	// the default end falls back to now+1h.
	imp := newTestImporter()
	ev, err := imp.Normalize(map[string]interface{}{"summary": "Odd", "start": "banana"}, models.DefaultCalendarOwner)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if ev.Start != "bananaT00:00:00" {
		t.Errorf("Start = %q; bare values with no time component get expanded verbatim", ev.Start)
	}
	if ev.End != "2024-06-15T13:00:00" {
		t.Errorf("End = %q, want now+1h fallback", ev.End)
	}
}

func TestNormalize_ColorResolution(t *testing.T) {
	imp := newTestImporter()

	tests := []struct {
		name   string
		record map[string]interface{}
		want   string
	}{
		{"explicit color wins", map[string]interface{}{"color": "#e74c3c", "colorId": "11"}, "#e74c3c"},
		{"vendor code mapped", map[string]interface{}{"colorId": "11"}, "#dc2127"},
		{"numeric vendor code", map[string]interface{}{"colorId": float64(5)}, "#fbd75b"},
		{"unknown vendor code", map[string]interface{}{"colorId": "999"}, models.DefaultEventColor},
		{"nothing", map[string]interface{}{}, models.DefaultEventColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := imp.Normalize(tt.record, models.DefaultCalendarOwner)
			if err != nil {
				t.Fatalf("Normalize() error: %v", err)
			}
			if ev.Color != tt.want {
				t.Errorf("Color = %q, want %q", ev.Color, tt.want)
			}
		})
	}
}

func TestNormalize_DefaultsAndPassThrough(t *testing.T) {
	imp := newTestImporter()

	rec := map[string]interface{}{
		"summary":    "Team Standup",
		"start":      "2024-06-15T09:00:00",
		"attendees":  []interface{}{map[string]interface{}{"email": "a@example.com"}},
		"recurrence": []interface{}{"RRULE:FREQ=WEEKLY"},
	}
	ev, err := imp.Normalize(rec, "team@example.com")
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}

	if ev.Status != models.StatusConfirmed {
		t.Errorf("Status = %q, want confirmed default", ev.Status)
	}
	if ev.Description != "" || ev.Location != "" {
		t.Error("Description/Location should default to empty")
	}
	if ev.CalendarOwner != "team@example.com" {
		t.Errorf("CalendarOwner = %q, want inferred owner", ev.CalendarOwner)
	}
	if ev.Category != models.CategoryMeeting {
		t.Errorf("Category = %q, want meeting (standup keyword)", ev.Category)
	}
	if len(ev.Attendees) != 1 {
		t.Error("attendees should pass through untouched")
	}
	if len(ev.Recurrence) != 1 || ev.Recurrence[0] != "RRULE:FREQ=WEEKLY" {
		t.Error("recurrence should pass through untouched")
	}
	if ev.Created != testNow || ev.Updated != testNow {
		t.Error("created/updated should default to now")
	}
}

func TestNormalize_NonObjectRecord(t *testing.T) {
	imp := newTestImporter()
	if _, err := imp.Normalize("not an object", models.DefaultCalendarOwner); err == nil {
		t.Error("Normalize() should fail for non-object records")
	}
	if _, err := imp.Normalize(nil, models.DefaultCalendarOwner); err == nil {
		t.Error("Normalize() should fail for nil records")
	}
}

// ============================================================================
// Calendar info extraction
// ============================================================================

func TestExtractCalendarInfo(t *testing.T) {
	imp := newTestImporter()

	tests := []struct {
		name      string
		doc       interface{}
		wantOwner string
		wantName  string
		wantTZ    string
	}{
		{
			"calendar descriptor kind",
			map[string]interface{}{
				"kind":     "calendar#calendar",
				"id":       "work@example.com",
				"summary":  "Work",
				"timeZone": "Europe/Berlin",
			},
			"work@example.com", "Work", "Europe/Berlin",
		},
		{
			"calendarId field",
			map[string]interface{}{"calendarId": "me@example.com", "items": []interface{}{}},
			"me@example.com", "me@example.com", models.DefaultTimezone,
		},
		{
			"nested calendar object with id",
			map[string]interface{}{
				"calendar": map[string]interface{}{"id": "nested@example.com", "summary": "Nested"},
			},
			"nested@example.com", "Nested", models.DefaultTimezone,
		},
		{
			"nested calendar object with email and name",
			map[string]interface{}{
				"calendar": map[string]interface{}{"email": "alt@example.com", "name": "Alt"},
			},
			"alt@example.com", "Alt", models.DefaultTimezone,
		},
		{
			"unrecognized shape falls back",
			map[string]interface{}{"foo": "bar"},
			models.DefaultCalendarOwner, models.DefaultCalendarName, models.DefaultTimezone,
		},
		{
			"invalid owner identity falls back",
			map[string]interface{}{"calendarId": "not an email"},
			models.DefaultCalendarOwner, models.DefaultCalendarName, models.DefaultTimezone,
		},
		{
			"non-object document falls back",
			[]interface{}{},
			models.DefaultCalendarOwner, models.DefaultCalendarName, models.DefaultTimezone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := imp.ExtractCalendarInfo(tt.doc)
			if info.OwnerID != tt.wantOwner {
				t.Errorf("OwnerID = %q, want %q", info.OwnerID, tt.wantOwner)
			}
			if info.DisplayName != tt.wantName {
				t.Errorf("DisplayName = %q, want %q", info.DisplayName, tt.wantName)
			}
			if info.Timezone != tt.wantTZ {
				t.Errorf("Timezone = %q, want %q", info.Timezone, tt.wantTZ)
			}
		})
	}
}

func TestExtractCalendarInfo_CustomPredicate(t *testing.T) {
	// Owner validity is pluggable; accept anything non-empty.
	imp := New(logger.Nop(), WithOwnerPredicate(func(id string) bool { return id != "" }))

	info := imp.ExtractCalendarInfo(map[string]interface{}{"calendarId": "not-an-email-but-fine"})
	if info.OwnerID != "not-an-email-but-fine" {
		t.Errorf("OwnerID = %q, custom predicate should accept it", info.OwnerID)
	}
}

// Kind priority beats calendarId when both are present.
func TestExtractCalendarInfo_PriorityOrder(t *testing.T) {
	imp := newTestImporter()
	info := imp.ExtractCalendarInfo(map[string]interface{}{
		"kind":       "calendar#calendar",
		"id":         "first@example.com",
		"calendarId": "second@example.com",
	})
	if info.OwnerID != "first@example.com" {
		t.Errorf("OwnerID = %q, descriptor kind should win", info.OwnerID)
	}
}
