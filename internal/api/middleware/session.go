// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 Calive contributors
// https://github.com/entremotivator/Calive

package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/entremotivator/Calive/internal/pkg/logger"
	"github.com/entremotivator/Calive/internal/services/events"
	"github.com/entremotivator/Calive/internal/store"
)

// SessionContextKey is the context key for the resolved session.
const SessionContextKey contextKey = "session"

// DefaultSessionID is the session used when a request carries no
// X-Session-ID header.
const DefaultSessionID = "default"

// Session is one isolated calendar workspace. Each session owns its
// own store; nothing is shared across sessions.
type Session struct {
	ID       string
	Service  *events.Service
	Store    *store.Store
	Created  time.Time
	LastSeen time.Time
}

// SessionManager creates and resolves sessions from request headers.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	logger   *logger.Logger
	clock    func() time.Time
}

// NewSessionManager creates an empty session manager.
func NewSessionManager(log *logger.Logger) *SessionManager {
	if log == nil {
		log = logger.Nop()
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		logger:   log.Named("sessions"),
		clock:    time.Now,
	}
}

// GetOrCreate resolves a session by ID, creating one when the ID is
// unknown. An empty ID resolves to the shared default session, so
// clients that never send the header still keep state across requests.
func (m *SessionManager) GetOrCreate(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = DefaultSessionID
	}

	if sess, ok := m.sessions[id]; ok {
		sess.LastSeen = m.clock()
		return sess
	}
	st := store.New()
	sess := &Session{
		ID:       id,
		Service:  events.NewService(st, m.logger),
		Store:    st,
		Created:  m.clock(),
		LastSeen: m.clock(),
	}
	m.sessions[id] = sess

	m.logger.Info("created session", "id", id)
	return sess
}

// Get returns a session by ID, or nil.
func (m *SessionManager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Purge drops sessions idle for longer than maxIdle and returns how
// many were removed.
func (m *SessionManager) Purge(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.clock().Add(-maxIdle)
	removed := 0
	for id, sess := range m.sessions {
		if sess.LastSeen.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("purged idle sessions", "removed", removed, "remaining", len(m.sessions))
	}
	return removed
}

// Middleware resolves the request's session from the X-Session-ID
// header, falling back to the default session when absent, and echoes
// the definitive ID back in the response so clients can persist it.
func (m *SessionManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := m.GetOrCreate(r.Header.Get(HeaderSessionID))
		w.Header().Set(HeaderSessionID, sess.ID)

		ctx := context.WithValue(r.Context(), SessionContextKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSessionFromContext retrieves the session from the context.
// Returns nil if no session is set.
func GetSessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(SessionContextKey).(*Session)
	return sess
}

// GetSessionFromRequest is a convenience function to get the session
// from an http.Request.
func GetSessionFromRequest(r *http.Request) *Session {
	return GetSessionFromContext(r.Context())
}
