// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 Calive contributors
// https://github.com/entremotivator/Calive

package models

// DefaultEventColor is the neutral display color. It is the fallback for
// unknown vendor color codes and the only color rendered with black text
// in the calendar-widget feed.
const DefaultEventColor = "#3788d8"

// vendorColors maps Google color ids 1-11 to display hex values. The
// table is exact; import compatibility tests pin every entry.
var vendorColors = map[string]string{
	"1":  "#a4bdfc",
	"2":  "#7ae7bf",
	"3":  "#dbadff",
	"4":  "#ff887c",
	"5":  "#fbd75b",
	"6":  "#ffb878",
	"7":  "#46d6db",
	"8":  "#e1e1e1",
	"9":  "#5484ed",
	"10": "#51b749",
	"11": "#dc2127",
}

// ColorForVendorID resolves a vendor color code to a display color.
// Unknown codes get DefaultEventColor.
func ColorForVendorID(code string) string {
	if hex, ok := vendorColors[code]; ok {
		return hex
	}
	return DefaultEventColor
}

// Creation palette offered by the management API, in menu order.
var PaletteColors = []struct {
	Name string
	Hex  string
}{
	{"Blue", "#3788d8"},
	{"Green", "#33b679"},
	{"Red", "#e74c3c"},
	{"Orange", "#f39c12"},
	{"Purple", "#9b59b6"},
	{"Pink", "#e91e63"},
}

// ValidPaletteColor reports whether hex is one of the creation palette
// values.
func ValidPaletteColor(hex string) bool {
	for _, c := range PaletteColors {
		if c.Hex == hex {
			return true
		}
	}
	return false
}

// Text colors for the calendar-widget feed.
const (
	TextColorLight = "#ffffff"
	TextColorDark  = "#000000"
)

// TextColorFor picks the contrast text color for an event color. This is
// a fixed-palette rule, not a luminance computation: everything renders
// white text except the neutral color.
func TextColorFor(color string) string {
	if color == DefaultEventColor {
		return TextColorDark
	}
	return TextColorLight
}
