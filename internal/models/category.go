// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 Calive contributors
// https://github.com/entremotivator/Calive

package models

import "strings"

// Event category tags.
const (
	CategoryGeneral   = "general"
	CategoryMeeting   = "meeting"
	CategoryPersonal  = "personal"
	CategoryWork      = "work"
	CategoryTravel    = "travel"
	CategorySocial    = "social"
	CategoryHealth    = "health"
	CategoryEducation = "education"
)

// Categories lists every tag, CategoryGeneral first.
var Categories = []string{
	CategoryGeneral,
	CategoryMeeting,
	CategoryPersonal,
	CategoryWork,
	CategoryTravel,
	CategorySocial,
	CategoryHealth,
	CategoryEducation,
}

// ValidCategories is the set of allowed category tags.
var ValidCategories = map[string]bool{
	CategoryGeneral:   true,
	CategoryMeeting:   true,
	CategoryPersonal:  true,
	CategoryWork:      true,
	CategoryTravel:    true,
	CategorySocial:    true,
	CategoryHealth:    true,
	CategoryEducation: true,
}

// categoryKeywords is the classifier table. Order matters: the first
// category with any keyword hit wins.
var categoryKeywords = []struct {
	tag      string
	keywords []string
}{
	{CategoryMeeting, []string{"meeting", "call", "conference", "sync", "standup"}},
	{CategoryPersonal, []string{"personal", "appointment", "doctor", "dentist"}},
	{CategoryWork, []string{"work", "project", "deadline", "review"}},
	{CategoryTravel, []string{"flight", "travel", "trip", "vacation"}},
	{CategorySocial, []string{"dinner", "party", "birthday", "celebration"}},
	{CategoryHealth, []string{"gym", "workout", "exercise", "fitness"}},
	{CategoryEducation, []string{"class", "course", "training", "workshop"}},
}

// InferCategory classifies an event by case-insensitive keyword substring
// match over title, description and location. No hit means general.
func InferCategory(title, description, location string) string {
	haystack := strings.ToLower(title + " " + description + " " + location)
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(haystack, kw) {
				return entry.tag
			}
		}
	}
	return CategoryGeneral
}
