// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 Calive contributors
// https://github.com/entremotivator/Calive

// Package validator wraps go-playground/validator with the custom
// validations used by the API request types.
package validator

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Validator wraps a shared validator.Validate instance.
type Validator struct {
	v *validator.Validate
}

var (
	once     sync.Once
	instance *validator.Validate
)

// New returns a Validator backed by the shared instance.
func New() *Validator {
	once.Do(func() {
		instance = validator.New()

		// Report field names from json tags so validation errors match
		// the wire format.
		instance.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		// naive_timestamp accepts the canonical offset-free timestamp
		// format, with or without a time component.
		_ = instance.RegisterValidation("naive_timestamp", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			if s == "" {
				return false
			}
			if _, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
				return true
			}
			_, err := time.Parse("2006-01-02", s)
			return err == nil
		})
	})
	return &Validator{v: instance}
}

// Validate validates a struct using its validate tags.
func (val *Validator) Validate(s interface{}) error {
	return val.v.Struct(s)
}

// ValidateVar validates a single value against a tag expression.
func (val *Validator) ValidateVar(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// ValidationErrors converts a validation error into a field → message map.
// Non-validation errors are reported under the "_error" key.
func (val *Validator) ValidationErrors(err error) map[string]string {
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_error": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = messageForTag(fe)
	}
	return out
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "naive_timestamp":
		return "must be a timestamp like 2024-06-15T12:00:00 (no offset)"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// Validate validates a struct using the shared instance.
func Validate(s interface{}) error {
	return New().Validate(s)
}

// ValidateVar validates a single value using the shared instance.
func ValidateVar(field interface{}, tag string) error {
	return New().ValidateVar(field, tag)
}

// GetValidationErrors converts err into a field → message map using the
// shared instance.
func GetValidationErrors(err error) map[string]string {
	return New().ValidationErrors(err)
}
