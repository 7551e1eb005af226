// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 Calive contributors
// https://github.com/entremotivator/Calive

// Package timeutil implements the naive local timestamp format used
// throughout the event manager: zero-padded date+time strings with no
// timezone suffix. Offset markers on ingested values are stripped, never
// converted; this is a deliberate simplification inherited from the
// source data handling, and tests pin it.
package timeutil

import (
	"strings"
	"time"
)

// Canonical layouts.
const (
	LayoutDateTime = "2006-01-02T15:04:05"
	LayoutDate     = "2006-01-02"

	// layoutFrac tolerates fractional seconds on parse; canonical
	// output never carries them.
	layoutFrac = "2006-01-02T15:04:05.999999999"
)

// Now returns the current time as a canonical timestamp.
func Now() string {
	return Format(time.Now())
}

// Format renders t in the canonical offset-free layout.
func Format(t time.Time) string {
	return t.Format(LayoutDateTime)
}

// StripOffset removes a trailing timezone marker from a timestamp
// string: a "Z" suffix or a numeric "+hh:mm"/"-hh:mm" offset. The wall
// time is kept as-is.
func StripOffset(s string) string {
	if strings.HasSuffix(s, "Z") || strings.HasSuffix(s, "z") {
		return s[:len(s)-1]
	}
	if len(s) >= 6 {
		tail := s[len(s)-6:]
		if (tail[0] == '+' || tail[0] == '-') && tail[3] == ':' &&
			isDigits(tail[1:3]) && isDigits(tail[4:6]) {
			return s[:len(s)-6]
		}
	}
	return s
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// HasTime reports whether s carries a time component.
func HasTime(s string) bool {
	return strings.Contains(s, "T")
}

// ExpandStart widens a bare date to the start of that day.
func ExpandStart(s string) string {
	if HasTime(s) {
		return s
	}
	return s + "T00:00:00"
}

// ExpandEnd widens a bare date to the end of that day, so a date-only
// span covers the whole day.
func ExpandEnd(s string) string {
	if HasTime(s) {
		return s
	}
	return s + "T23:59:59"
}

// Parse interprets a canonical (or canonicalizable) timestamp. Offset
// markers are stripped first; date-only values parse as midnight.
func Parse(s string) (time.Time, error) {
	s = StripOffset(s)
	if t, err := time.Parse(layoutFrac, s); err == nil {
		return t, nil
	}
	return time.Parse(LayoutDate, s)
}

// AddHours parses s, shifts it by the given number of hours, and
// reformats canonically.
func AddHours(s string, hours int) (string, error) {
	t, err := Parse(s)
	if err != nil {
		return "", err
	}
	return Format(t.Add(time.Duration(hours) * time.Hour)), nil
}
