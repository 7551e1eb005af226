// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 Calive contributors
// https://github.com/entremotivator/Calive

package importer

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/entremotivator/Calive/internal/models"
	"github.com/entremotivator/Calive/internal/pkg/timeutil"
)

// Normalize converts one raw import record into a canonical event owned
// by ownerID. The error return marks the record as skippable; it never
// aborts a batch.
func (i *Importer) Normalize(record interface{}, ownerID string) (*models.Event, error) {
	rec, ok := record.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("record is not an object (got %T)", record)
	}

	now := i.nowString()

	id := asString(rec["id"])
	if id == "" {
		id = asString(rec["iCalUID"])
	}
	if id == "" {
		id = uuid.NewString()
	}

	title := asString(rec["summary"])
	if title == "" {
		title = asString(rec["title"])
	}
	if title == "" {
		title = "Untitled Event"
	}

	start, err := resolveTimeField(rec["start"], now)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	start = timeutil.ExpandStart(timeutil.StripOffset(start))

	defaultEnd, aerr := timeutil.AddHours(start, 1)
	if aerr != nil {
		defaultEnd, _ = timeutil.AddHours(now, 1)
	}
	end, err := resolveTimeField(rec["end"], defaultEnd)
	if err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}
	end = timeutil.ExpandEnd(timeutil.StripOffset(end))

	color := asString(rec["color"])
	if color == "" {
		color = models.ColorForVendorID(asString(rec["colorId"]))
	}

	status := asString(rec["status"])
	if status == "" {
		status = models.StatusConfirmed
	}

	description := asString(rec["description"])
	location := asString(rec["location"])

	created := timeutil.StripOffset(asString(rec["created"]))
	if created == "" {
		created = now
	}
	updated := timeutil.StripOffset(asString(rec["updated"]))
	if updated == "" {
		updated = now
	}

	ev := &models.Event{
		ID:            id,
		Title:         title,
		Start:         start,
		End:           end,
		Description:   description,
		Location:      location,
		Color:         color,
		CalendarOwner: ownerID,
		Status:        status,
		Category:      models.InferCategory(title, description, location),
		Created:       created,
		Updated:       updated,
	}

	if attendees, ok := rec["attendees"].([]interface{}); ok {
		ev.Attendees = attendees
	}
	if recurrence, ok := rec["recurrence"].([]interface{}); ok {
		ev.Recurrence = recurrence
	}

	return ev, nil
}

func (i *Importer) nowString() string {
	if i.now != nil {
		return i.now()
	}
	return timeutil.Now()
}

// resolveTimeField accepts the tolerated start/end shapes: a plain
// string, or an object with a dateTime (preferred) or date key. Missing
// values and objects with neither key get the fallback; any other shape
// is a skip.
func resolveTimeField(v interface{}, fallback string) (string, error) {
	switch t := v.(type) {
	case nil:
		return fallback, nil
	case string:
		if t == "" {
			return fallback, nil
		}
		return t, nil
	case map[string]interface{}:
		if s := asString(t["dateTime"]); s != "" {
			return s, nil
		}
		if s := asString(t["date"]); s != "" {
			return s, nil
		}
		return fallback, nil
	default:
		return "", fmt.Errorf("unsupported value of type %T", v)
	}
}

// asString coerces JSON scalar values to strings. Numbers show up where
// vendors emit numeric ids (colorId in particular).
func asString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}
