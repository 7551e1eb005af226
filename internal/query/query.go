// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 Calive contributors
// https://github.com/entremotivator/Calive

package query

import (
	"sort"
	"strings"
	"time"

	"github.com/entremotivator/Calive/internal/models"
	"github.com/entremotivator/Calive/internal/pkg/timeutil"
)

const (
	// OrderAsc sorts oldest first, OrderDesc newest first.
	OrderAsc  = "asc"
	OrderDesc = "desc"

	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Params describe one projection request. Empty filter fields match
// everything; filters that are set compose by conjunction.
type Params struct {
	CalendarFilter string `json:"calendarFilter"`
	CategoryFilter string `json:"categoryFilter"`
	SearchTerm     string `json:"searchTerm"`
	Order          string `json:"order"`
	Page           int    `json:"page"`
	PageSize       int    `json:"pageSize"`
}

// Page is one window of the filtered, sorted event sequence.
type Page struct {
	Events     []*models.Event `json:"events"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}

// Project filters, searches, sorts, and paginates events. Sorting
// compares start timestamps as strings; the zero-padded canonical
// format makes lexicographic order chronological. Page numbers are
// 1-based and a page beyond the range is empty, not an error.
func Project(events []*models.Event, p Params) *Page {
	matched := Select(events, p)

	page := p.Page
	if page < 1 {
		page = 1
	}
	size := p.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	total := len(matched)
	totalPages := (total + size - 1) / size
	if totalPages == 0 {
		totalPages = 1
	}

	lo := (page - 1) * size
	hi := lo + size
	if lo > total {
		lo = total
	}
	if hi > total {
		hi = total
	}

	return &Page{
		Events:     matched[lo:hi],
		Total:      total,
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
	}
}

// Select applies the filters and sort order without pagination. The
// widget feed uses it directly; Project windows its result.
func Select(events []*models.Event, p Params) []*models.Event {
	matched := make([]*models.Event, 0, len(events))
	term := strings.ToLower(p.SearchTerm)
	for _, ev := range events {
		if p.CalendarFilter != "" && ev.CalendarOwner != p.CalendarFilter {
			continue
		}
		if p.CategoryFilter != "" && ev.Category != p.CategoryFilter {
			continue
		}
		if term != "" && !matchesSearch(ev, term) {
			continue
		}
		matched = append(matched, ev)
	}

	desc := p.Order == OrderDesc
	sort.SliceStable(matched, func(i, j int) bool {
		if desc {
			return matched[i].Start > matched[j].Start
		}
		return matched[i].Start < matched[j].Start
	})
	return matched
}

// Search matches any of title, description, or location; a hit on one
// field is enough.
func matchesSearch(ev *models.Event, term string) bool {
	return strings.Contains(strings.ToLower(ev.Title), term) ||
		strings.Contains(strings.ToLower(ev.Description), term) ||
		strings.Contains(strings.ToLower(ev.Location), term)
}

// RenderableEvent is the read-only shape handed to the calendar widget.
type RenderableEvent struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Color       string `json:"color"`
	Description string `json:"description"`
	Location    string `json:"location"`
	TextColor   string `json:"textColor"`
}

// Feed converts events into widget renderables, picking the text color
// from the fixed-palette contrast rule.
func Feed(events []*models.Event) []RenderableEvent {
	out := make([]RenderableEvent, 0, len(events))
	for _, ev := range events {
		out = append(out, RenderableEvent{
			ID:          ev.ID,
			Title:       ev.Title,
			Start:       ev.Start,
			End:         ev.End,
			Color:       ev.Color,
			Description: ev.Description,
			Location:    ev.Location,
			TextColor:   models.TextColorFor(ev.Color),
		})
	}
	return out
}

// Statistics aggregates the store contents at a point in time. The
// time buckets overlap deliberately: an event in the past can still be
// inside this week and this month.
type Statistics struct {
	Total      int            `json:"total"`
	Upcoming   int            `json:"upcoming"`
	Past       int            `json:"past"`
	Today      int            `json:"today"`
	ThisWeek   int            `json:"this_week"`
	ThisMonth  int            `json:"this_month"`
	ByCalendar map[string]int `json:"by_calendar"`
	ByCategory map[string]int `json:"by_category"`
	ByStatus   map[string]int `json:"by_status"`
}

// ComputeStatistics counts events into time buckets relative to now
// and into group-by maps. The week starts on Monday and the week
// boundary keeps now's time of day. Events whose start cannot be
// parsed stay in the total and group-by counts but are dropped from
// every time bucket.
func ComputeStatistics(events []*models.Event, now string) *Statistics {
	ref, err := timeutil.Parse(now)
	if err != nil {
		ref, _ = timeutil.Parse(timeutil.Now())
	}

	weekday := int(ref.Weekday()+6) % 7 // Monday = 0
	weekStart := ref.Add(-time.Duration(weekday) * 24 * time.Hour)
	weekEnd := weekStart.Add(7 * 24 * time.Hour)

	stats := &Statistics{
		ByCalendar: make(map[string]int),
		ByCategory: make(map[string]int),
		ByStatus:   make(map[string]int),
	}
	for _, ev := range events {
		stats.Total++
		stats.ByCalendar[ev.CalendarOwner]++
		stats.ByCategory[ev.Category]++
		stats.ByStatus[ev.Status]++

		start, err := timeutil.Parse(ev.Start)
		if err != nil {
			continue
		}
		if start.After(ref) {
			stats.Upcoming++
		} else {
			stats.Past++
		}
		y1, m1, d1 := start.Date()
		y2, m2, d2 := ref.Date()
		if y1 == y2 && m1 == m2 && d1 == d2 {
			stats.Today++
		}
		if !start.Before(weekStart) && start.Before(weekEnd) {
			stats.ThisWeek++
		}
		if y1 == y2 && m1 == m2 {
			stats.ThisMonth++
		}
	}
	return stats
}
