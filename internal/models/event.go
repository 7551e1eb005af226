// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 Calive contributors
// https://github.com/entremotivator/Calive

// Package models defines the calendar domain entities and the fixed
// color and category taxonomies.
package models

// Event is the canonical calendar event. Start, End, Created and Updated
// hold naive local timestamps: zero-padded, offset-free, lexicographically
// sortable in chronological order.
type Event struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Start         string        `json:"start"`
	End           string        `json:"end"`
	Description   string        `json:"description"`
	Location      string        `json:"location"`
	Color         string        `json:"color"`
	CalendarOwner string        `json:"calendar_owner"`
	Status        string        `json:"status"`
	Category      string        `json:"category"`
	Created       string        `json:"created"`
	Updated       string        `json:"updated"`
	Attendees     []interface{} `json:"attendees,omitempty"`
	Recurrence    []interface{} `json:"recurrence,omitempty"`
}

// Well-known event statuses. Status is free-form; these are the values
// vendors emit.
const (
	StatusConfirmed = "confirmed"
	StatusTentative = "tentative"
	StatusCancelled = "cancelled"
)

// Clone returns a deep copy of the event.
func (e *Event) Clone() *Event {
	c := *e
	if e.Attendees != nil {
		c.Attendees = make([]interface{}, len(e.Attendees))
		copy(c.Attendees, e.Attendees)
	}
	if e.Recurrence != nil {
		c.Recurrence = make([]interface{}, len(e.Recurrence))
		copy(c.Recurrence, e.Recurrence)
	}
	return &c
}
