// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 Calive contributors
// https://github.com/entremotivator/Calive

package export

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/entremotivator/Calive/internal/models"
	"github.com/entremotivator/Calive/internal/pkg/timeutil"
)

// KindEvents is the descriptor carried by every export document.
const KindEvents = "calendar#events"

// CalendarRef identifies the owning calendar inside a document.
type CalendarRef struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
}

// Document is the export wire shape. Items carry the full stored Event
// records verbatim, so a document can be fed back through the importer.
type Document struct {
	Kind     string          `json:"kind"`
	Etag     string          `json:"etag"`
	Summary  string          `json:"summary"`
	Updated  string          `json:"updated"`
	TimeZone string          `json:"timeZone"`
	Calendar CalendarRef     `json:"calendar"`
	Items    []*models.Event `json:"items"`
}

// BuildDocument wraps events in a descriptor for the given calendar.
// The updated stamp is the moment of export, not the newest event.
func BuildDocument(events []*models.Event, cal *models.Calendar, now string) *Document {
	if events == nil {
		events = []*models.Event{}
	}
	return &Document{
		Kind:     KindEvents,
		Etag:     `"` + strings.ReplaceAll(uuid.NewString(), "-", "") + `"`,
		Summary:  cal.DisplayName,
		Updated:  now,
		TimeZone: cal.Timezone,
		Calendar: CalendarRef{ID: cal.OwnerID, Summary: cal.DisplayName},
		Items:    events,
	}
}

// MarshalJSON serializes a document with the same indentation the
// interactive download uses.
func MarshalJSON(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export document: %w", err)
	}
	return data, nil
}

// Filename returns the download name for an export taken at now,
// calendar_events_YYYYMMDD_HHMMSS followed by the extension.
func Filename(now, ext string) string {
	stamp := strings.NewReplacer("-", "", ":", "", "T", "_").Replace(now)
	return "calendar_events_" + stamp + "." + ext
}

// MarshalICS serializes events as an iCalendar feed. Date-only bounds
// become all-day DATE values; everything else is written as floating
// local time, matching the naive timestamps the store keeps.
func MarshalICS(events []*models.Event, cal *models.Calendar, now string) ([]byte, error) {
	c := ical.NewCalendar()
	c.SetMethod(ical.MethodPublish)
	c.SetProductId("-//Calive//Calendar Manager//EN")
	c.SetXWRCalName(cal.DisplayName)
	c.SetXWRTimezone(cal.Timezone)

	stamp, err := timeutil.Parse(now)
	if err != nil {
		stamp = time.Now()
	}

	for _, ev := range events {
		start, err := timeutil.Parse(ev.Start)
		if err != nil {
			continue
		}
		end, err := timeutil.Parse(ev.End)
		if err != nil {
			continue
		}

		ve := c.AddEvent(ev.ID)
		ve.SetDtStampTime(stamp)
		ve.SetSummary(ev.Title)
		if allDay(ev) {
			ve.SetAllDayStartAt(start)
			ve.SetAllDayEndAt(end.Add(time.Second)) // 23:59:59 back to an exclusive midnight bound
		} else {
			ve.SetStartAt(start)
			ve.SetEndAt(end)
		}
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		if ev.Status == models.StatusCancelled {
			ve.SetStatus(ical.ObjectStatusCancelled)
		} else if ev.Status == models.StatusTentative {
			ve.SetStatus(ical.ObjectStatusTentative)
		} else {
			ve.SetStatus(ical.ObjectStatusConfirmed)
		}
		if created, err := timeutil.Parse(ev.Created); err == nil {
			ve.SetCreatedTime(created)
		}
		if updated, err := timeutil.Parse(ev.Updated); err == nil {
			ve.SetModifiedAt(updated)
		}
	}

	return []byte(c.Serialize()), nil
}

// allDay reports whether the event spans exactly the expanded full-day
// bounds produced for date-only input.
func allDay(ev *models.Event) bool {
	return strings.HasSuffix(ev.Start, "T00:00:00") && strings.HasSuffix(ev.End, "T23:59:59")
}
