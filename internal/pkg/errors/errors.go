// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 Calive contributors
// https://github.com/entremotivator/Calive

// Package errors provides the application error types shared by all
// components: coded AppError values, sentinel errors, and typed errors
// that can be matched with errors.Is / errors.As.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes carried by AppError.
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeParseFailed      = "PARSE_FAILED"
	CodeInternal         = "INTERNAL"
)

// Sentinel errors for errors.Is matching across package boundaries.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrValidation    = errors.New("validation failed")
	ErrConflict      = errors.New("conflict")
	ErrParse         = errors.New("parse failed")
	ErrInternal      = errors.New("internal error")
)

// AppError is a coded application error with an optional wrapped cause
// and an HTTP status used when the error crosses the API boundary.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]interface{}
	Err        error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails replaces the details map.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithDetail sets a single detail entry, initializing the map if needed.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithHTTPStatus overrides the HTTP status.
func (e *AppError) WithHTTPStatus(status int) *AppError {
	e.HTTPStatus = status
	return e
}

// New creates an AppError with the given code and message.
func New(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// Newf creates an AppError with a formatted message.
func Newf(code, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// NewWithStatus creates an AppError with an explicit HTTP status.
func NewWithStatus(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// Wrap wraps err in an AppError.
func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// WrapWithStatus wraps err in an AppError with an explicit HTTP status.
func WrapWithStatus(err error, code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// ============================================================================
// Convenience constructors
// ============================================================================

// NotFound builds a NOT_FOUND AppError for the named resource.
func NotFound(resource string) *AppError {
	return NewWithStatus(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// AlreadyExists builds a CONFLICT AppError for the named resource.
func AlreadyExists(resource string) *AppError {
	return NewWithStatus(CodeConflict, fmt.Sprintf("%s already exists", resource), http.StatusConflict)
}

// InvalidInput builds a BAD_REQUEST AppError.
func InvalidInput(message string) *AppError {
	return NewWithStatus(CodeBadRequest, message, http.StatusBadRequest)
}

// Internal builds an INTERNAL AppError.
func Internal(message string) *AppError {
	return NewWithStatus(CodeInternal, message, http.StatusInternalServerError)
}

// ValidationFailed builds a VALIDATION_FAILED AppError carrying the
// per-field failure messages as details.
func ValidationFailed(fields map[string]string) *AppError {
	ae := NewWithStatus(CodeValidationFailed, "validation failed", http.StatusBadRequest)
	ae.Details = make(map[string]interface{}, len(fields))
	for k, v := range fields {
		ae.Details[k] = v
	}
	return ae
}

// ============================================================================
// Typed errors
// ============================================================================

// NotFoundError reports a missing event or calendar.
type NotFoundError struct {
	*AppError
}

// NewNotFoundError creates a NotFoundError for the named resource.
func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{AppError: NotFound(resource)}
}

// Unwrap links the typed error to its sentinel.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// AlreadyExistsError reports a duplicate resource.
type AlreadyExistsError struct {
	*AppError
}

// NewAlreadyExistsError creates an AlreadyExistsError for the named resource.
func NewAlreadyExistsError(resource string) *AlreadyExistsError {
	return &AlreadyExistsError{AppError: AlreadyExists(resource)}
}

func (e *AlreadyExistsError) Unwrap() error { return ErrAlreadyExists }

// ValidationError reports rejected input (empty title, end not after
// start, unknown color, invalid owner id).
type ValidationError struct {
	*AppError
}

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		AppError: NewWithStatus(CodeValidationFailed, message, http.StatusBadRequest),
	}
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ConflictError reports an operation rejected because of current state,
// e.g. deleting the last remaining calendar.
type ConflictError struct {
	*AppError
}

// NewConflictError creates a ConflictError with the given message.
func NewConflictError(message string) *ConflictError {
	return &ConflictError{
		AppError: NewWithStatus(CodeConflict, message, http.StatusConflict),
	}
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// ParseError reports an import document that is not valid JSON. It is
// fatal for the whole document; no records are applied.
type ParseError struct {
	*AppError
}

// NewParseError creates a ParseError wrapping the decoder failure.
func NewParseError(message string, cause error) *ParseError {
	return &ParseError{
		AppError: WrapWithStatus(cause, CodeParseFailed, message, http.StatusBadRequest),
	}
}

func (e *ParseError) Unwrap() error { return ErrParse }

// InternalError reports an unexpected failure.
type InternalError struct {
	*AppError
}

// NewInternalError creates an InternalError with the given message.
func NewInternalError(message string) *InternalError {
	return &InternalError{AppError: Internal(message)}
}

func (e *InternalError) Unwrap() error { return ErrInternal }

// ============================================================================
// Inspection helpers
// ============================================================================

// GetAppError extracts an *AppError from anywhere in the error chain.
func GetAppError(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsNotFoundError reports whether err represents a missing resource.
func IsNotFoundError(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	if ae, ok := GetAppError(err); ok {
		return ae.Code == CodeNotFound
	}
	return false
}

// IsConflictError reports whether err represents a state conflict.
func IsConflictError(err error) bool {
	if errors.Is(err, ErrConflict) || errors.Is(err, ErrAlreadyExists) {
		return true
	}
	if ae, ok := GetAppError(err); ok {
		return ae.Code == CodeConflict
	}
	return false
}

// IsValidationError reports whether err represents rejected input.
func IsValidationError(err error) bool {
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrInvalidInput) {
		return true
	}
	if ae, ok := GetAppError(err); ok {
		return ae.Code == CodeValidationFailed || ae.Code == CodeBadRequest
	}
	return false
}

// IsParseError reports whether err represents an unparseable document.
func IsParseError(err error) bool {
	if errors.Is(err, ErrParse) {
		return true
	}
	if ae, ok := GetAppError(err); ok {
		return ae.Code == CodeParseFailed
	}
	return false
}

// HTTPStatusCode maps an error to the HTTP status it should produce.
func HTTPStatusCode(err error) int {
	if ae, ok := GetAppError(err); ok {
		return ae.HTTPStatus
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrValidation), errors.Is(err, ErrParse):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Is delegates to errors.Is.
func Is(err, target error) bool { return errors.Is(err, target) }

// As delegates to errors.As.
func As(err error, target interface{}) bool { return errors.As(err, target) }
