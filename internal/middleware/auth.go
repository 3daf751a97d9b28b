// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, rate limiting, and request context handling.
package middleware

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/empoweringtalks/portal-go/internal/model"
	"github.com/empoweringtalks/portal-go/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for request-scoped user data.
const (
	ContextKeyUser        ContextKey = "user"
	ContextKeyProfile     ContextKey = "profile"
	ContextKeyRole        ContextKey = "role"
	ContextKeyRequestPath ContextKey = "request_path"
)

// SessionKeyUserID is the session key holding the authenticated user's ID.
const SessionKeyUserID = "user_id"

// Auth creates middleware that requires an authenticated session.
// Unauthenticated requests get a 401 JSON error.
func Auth(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), SessionKeyUserID)
			if userID == 0 {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LoadUser creates middleware that loads the current user, their profile,
// and their resolved role into the request context. Role classification
// happens here, once per request, so handlers never inspect the raw
// role title themselves.
func LoadUser(sm *scs.SessionManager, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), SessionKeyUserID)
			if userID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			user, err := queries.GetUserByID(r.Context(), userID)
			if err != nil {
				// Stale session referencing a deleted user
				_ = sm.Destroy(r.Context())
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Session is no longer valid", nil)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)

			role := model.RoleMember
			profile, err := queries.GetProfile(r.Context(), userID)
			if err == nil {
				role = model.ResolveRole(profile.RoleTitle)
				ctx = context.WithValue(ctx, ContextKeyProfile, profile)
			} else {
				// A user without a profile row is still a member
				slog.Debug("no profile for user", "user_id", userID, "error", err)
			}
			ctx = context.WithValue(ctx, ContextKeyRole, role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireFounder creates middleware that restricts a route to founder
// accounts. Must run after LoadUser. Denials are logged with the
// caller's identity for the audit trail.
func RequireFounder() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !GetRole(r).IsAdmin() {
				slog.Warn("founder-only route denied",
					"user_id", GetUserID(r),
					"path", r.URL.Path,
					"ip", getClientIP(r),
				)
				WriteAPIError(w, http.StatusForbidden, "forbidden", "Founder access required", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUser retrieves the current user from the request context.
// Returns nil if no user is in context.
func GetUser(r *http.Request) *store.User {
	user, ok := r.Context().Value(ContextKeyUser).(store.User)
	if !ok {
		return nil
	}
	return &user
}

// GetUserID returns the current user's ID from context, or 0 if not found.
func GetUserID(r *http.Request) int64 {
	if user := GetUser(r); user != nil {
		return user.ID
	}
	return 0
}

// GetUserIDPtr returns a pointer to the current user's ID, or nil if not
// found. Useful for optional user ID parameters in event logging.
func GetUserIDPtr(r *http.Request) *int64 {
	if user := GetUser(r); user != nil {
		id := user.ID
		return &id
	}
	return nil
}

// GetUserEmail returns the current user's email from context, or empty string.
func GetUserEmail(r *http.Request) string {
	if user := GetUser(r); user != nil {
		return user.Email
	}
	return ""
}

// GetProfile retrieves the current user's profile from the request context.
// Returns nil if no profile is in context.
func GetProfile(r *http.Request) *store.Profile {
	profile, ok := r.Context().Value(ContextKeyProfile).(store.Profile)
	if !ok {
		return nil
	}
	return &profile
}

// GetRole returns the current user's resolved role from context.
// Absent context means member, never admin.
func GetRole(r *http.Request) model.Role {
	role, ok := r.Context().Value(ContextKeyRole).(model.Role)
	if !ok {
		return model.RoleMember
	}
	return role
}

// RequestPath creates middleware that stores the request path in the context.
// This is used by the logging handler to include the URL in error logs.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestPath, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
