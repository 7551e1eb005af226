// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 Calive contributors
// https://github.com/entremotivator/Calive

package models

// Calendar is a logical owner of events. OwnerID is an opaque unique
// string; in practice it is email-shaped (Google export identity).
type Calendar struct {
	OwnerID     string `json:"owner_id"`
	DisplayName string `json:"display_name"`
	Color       string `json:"color"`
	Visible     bool   `json:"visible"`
	Timezone    string `json:"timezone,omitempty"`
}

// Default calendar identity. The store always contains at least this
// calendar; imports that reveal no owner land here.
const (
	DefaultCalendarOwner = "primary@local.calendar"
	DefaultCalendarName  = "My Calendar"
	DefaultTimezone      = "UTC"
)

// NewDefaultCalendar returns the calendar present in every fresh store.
func NewDefaultCalendar() *Calendar {
	return &Calendar{
		OwnerID:     DefaultCalendarOwner,
		DisplayName: DefaultCalendarName,
		Color:       DefaultEventColor,
		Visible:     true,
		Timezone:    DefaultTimezone,
	}
}
