// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 Calive contributors
// https://github.com/entremotivator/Calive

package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/entremotivator/Calive/internal/api"
	"github.com/entremotivator/Calive/internal/api/middleware"
	"github.com/entremotivator/Calive/internal/pkg/logger"
)

// testSuite provides shared test infrastructure for handler tests.
type testSuite struct {
	router   chi.Router
	sessions *middleware.SessionManager
}

// setupTestSuite creates a router with the full middleware chain and
// all API routes mounted.
func setupTestSuite(t *testing.T) *testSuite {
	t.Helper()

	sessions := middleware.NewSessionManager(logger.Nop())

	config := api.RouterConfig{
		CORSConfig:         middleware.DefaultCORSConfig(),
		RateLimitPerMinute: 1000,
		RequestTimeout:     5 * time.Second,
		Logger:             logger.Nop(),
	}

	return &testSuite{
		router:   api.NewRouter(config, sessions),
		sessions: sessions,
	}
}

// do executes a request against the test router. A non-empty session
// pins the request to that session's store.
func (s *testSuite) do(t *testing.T, method, path, session string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	case []byte:
		reader = bytes.NewBuffer(b)
	default:
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.Header.Set(middleware.HeaderSessionID, session)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, want, w.Body.String())
	}
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, w.Body.String())
	}
	return body
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeJSON(t, w)
	code, ok := body["code"].(string)
	if !ok {
		t.Fatalf("no error code in response: %s", w.Body.String())
	}
	return code
}

// mustCreateEvent creates an event and returns its decoded body.
func (s *testSuite) mustCreateEvent(t *testing.T, session string, input map[string]interface{}) map[string]interface{} {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/events/", session, input)
	assertStatus(t, w, http.StatusCreated)
	return decodeJSON(t, w)
}

// validEventInput returns a minimal valid event payload.
func validEventInput() map[string]interface{} {
	return map[string]interface{}{
		"title": "Team Standup",
		"start": "2024-06-20T09:00:00",
		"end":   "2024-06-20T09:30:00",
	}
}
