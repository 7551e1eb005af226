// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 Calive contributors
// https://github.com/entremotivator/Calive

// Package importer turns loosely-structured calendar export documents
// into canonical events. A document failing to parse is a hard error;
// a single record failing to normalize is collected as a skip and the
// rest of the batch proceeds.
package importer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/entremotivator/Calive/internal/models"
	"github.com/entremotivator/Calive/internal/pkg/errors"
	"github.com/entremotivator/Calive/internal/pkg/logger"
	"github.com/entremotivator/Calive/internal/pkg/validator"
)

// CalendarInfo is the owner identity inferred from an import document.
type CalendarInfo struct {
	OwnerID     string `json:"owner_id"`
	DisplayName string `json:"display_name"`
	Timezone    string `json:"timezone"`
}

// SkippedRecord describes one import record that failed normalization.
type SkippedRecord struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Result is the outcome of importing one document.
type Result struct {
	Events   []*models.Event `json:"events"`
	Skipped  []SkippedRecord `json:"skipped,omitempty"`
	Calendar CalendarInfo    `json:"calendar"`
}

// OwnerPredicate decides whether a discovered owner identity is usable.
type OwnerPredicate func(ownerID string) bool

// DefaultOwnerPredicate accepts email-shaped identifiers.
func DefaultOwnerPredicate(ownerID string) bool {
	return validator.ValidateVar(ownerID, "required,email") == nil
}

// Importer normalizes import documents.
type Importer struct {
	logger     *logger.Logger
	ownerValid OwnerPredicate
	now        func() string
}

// Option configures an Importer.
type Option func(*Importer)

// WithOwnerPredicate replaces the owner validity predicate.
func WithOwnerPredicate(p OwnerPredicate) Option {
	return func(i *Importer) { i.ownerValid = p }
}

// WithNow replaces the clock used for missing start/end defaults.
func WithNow(now func() string) Option {
	return func(i *Importer) { i.now = now }
}

// New creates an Importer.
func New(log *logger.Logger, opts ...Option) *Importer {
	imp := &Importer{
		logger:     log.Named("importer"),
		ownerValid: DefaultOwnerPredicate,
		now:        nil,
	}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

// Import parses and normalizes a whole document. The returned error is
// non-nil only for document-level failures (invalid JSON); per-record
// failures land in Result.Skipped.
func (i *Importer) Import(data []byte) (*Result, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewParseError("import document is not valid JSON", err)
	}

	info := i.ExtractCalendarInfo(doc)
	records, err := recordsFromDocument(doc)
	if err != nil {
		return nil, err
	}

	res := &Result{Calendar: info}
	for idx, rec := range records {
		ev, nerr := i.Normalize(rec, info.OwnerID)
		if nerr != nil {
			res.Skipped = append(res.Skipped, SkippedRecord{Index: idx, Reason: nerr.Error()})
			i.logger.Warn("skipping import record",
				"index", idx,
				"reason", nerr.Error(),
			)
			continue
		}
		res.Events = append(res.Events, ev)
	}

	i.logger.Info("import normalized",
		"owner", info.OwnerID,
		"events", len(res.Events),
		"skipped", len(res.Skipped),
	)
	return res, nil
}

// recordsFromDocument unwraps the accepted document shapes into a flat
// record list.
func recordsFromDocument(doc interface{}) ([]interface{}, error) {
	switch d := doc.(type) {
	case []interface{}:
		return d, nil
	case map[string]interface{}:
		if items, ok := d["items"].([]interface{}); ok {
			return items, nil
		}
		if events, ok := d["events"].([]interface{}); ok {
			return events, nil
		}
		if event, ok := d["event"]; ok {
			return []interface{}{event}, nil
		}
		// A single object that is itself an event.
		return []interface{}{doc}, nil
	default:
		return nil, errors.NewParseError(
			fmt.Sprintf("import document must be an object or a list, got %T", doc), nil)
	}
}

// ExtractCalendarInfo infers the owner identity from a document. It
// always returns a usable value; unrecognized shapes and identities
// failing the owner predicate fall back to the default calendar.
func (i *Importer) ExtractCalendarInfo(doc interface{}) CalendarInfo {
	fallback := CalendarInfo{
		OwnerID:     models.DefaultCalendarOwner,
		DisplayName: models.DefaultCalendarName,
		Timezone:    models.DefaultTimezone,
	}

	d, ok := doc.(map[string]interface{})
	if !ok {
		return fallback
	}

	// Calendar descriptor document: kind marks it, id is the owner.
	if kind := asString(d["kind"]); strings.HasPrefix(kind, "calendar#") {
		if id := asString(d["id"]); id != "" && i.ownerValid(id) {
			info := CalendarInfo{OwnerID: id, DisplayName: asString(d["summary"]), Timezone: asString(d["timeZone"])}
			return withInfoDefaults(info, fallback)
		}
	}

	if id := asString(d["calendarId"]); id != "" && i.ownerValid(id) {
		return withInfoDefaults(CalendarInfo{OwnerID: id}, fallback)
	}

	if cal, ok := d["calendar"].(map[string]interface{}); ok {
		id := asString(cal["id"])
		if id == "" {
			id = asString(cal["email"])
		}
		name := asString(cal["summary"])
		if name == "" {
			name = asString(cal["name"])
		}
		if id != "" && i.ownerValid(id) {
			return withInfoDefaults(CalendarInfo{OwnerID: id, DisplayName: name, Timezone: asString(cal["timeZone"])}, fallback)
		}
	}

	return fallback
}

func withInfoDefaults(info, fallback CalendarInfo) CalendarInfo {
	if info.DisplayName == "" {
		info.DisplayName = info.OwnerID
	}
	if info.Timezone == "" {
		info.Timezone = fallback.Timezone
	}
	return info
}
