// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/empoweringtalks/portal-go/internal/auth"
	"github.com/empoweringtalks/portal-go/internal/middleware"
	"github.com/empoweringtalks/portal-go/internal/model"
	"github.com/empoweringtalks/portal-go/internal/store"
)

const minPasswordLength = 8

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Signup registers a new account with an empty member profile and
// starts a session for it.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	fieldErrors := map[string]string{}
	if !validEmail(req.Email) {
		fieldErrors["email"] = "a valid email address is required"
	}
	if len(req.Password) < minPasswordLength {
		fieldErrors["password"] = "password must be at least 8 characters"
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	exists, err := h.queries.UserExists(r.Context(), req.Email)
	if err != nil {
		slog.Error("signup lookup failed", "error", err)
		WriteInternalError(w, "Could not create account")
		return
	}
	if exists {
		WriteValidationError(w, map[string]string{"email": "an account with this email already exists"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("password hashing failed", "error", err)
		WriteInternalError(w, "Could not create account")
		return
	}

	user, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		slog.Error("user creation failed", "error", err)
		WriteInternalError(w, "Could not create account")
		return
	}

	if err := h.queries.CreateProfile(r.Context(), store.CreateProfileParams{
		UserID:   user.ID,
		FullName: strings.TrimSpace(req.FullName),
		Avatar:   "orange",
	}); err != nil {
		slog.Error("profile creation failed", "error", err, "user_id", user.ID)
		WriteInternalError(w, "Could not create account")
		return
	}

	// Fresh session token on privilege change
	if err := h.sessions.RenewToken(r.Context()); err != nil {
		slog.Error("session renewal failed", "error", err)
		WriteInternalError(w, "Could not create account")
		return
	}
	h.sessions.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	_ = h.events.LogAuthEvent(r.Context(), model.EventLevelInfo, "account created",
		&user.ID, clientIP(r), map[string]any{"email": user.Email})

	WriteCreated(w, userResponse{ID: user.ID, Email: user.Email})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates an account and starts a session. Failed attempts
// feed the lockout tracker; a generic message hides whether the email
// or the password was wrong.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	ip := clientIP(r)

	if locked, remaining := h.loginGuard.IsAccountLocked(req.Email); locked {
		_ = h.events.LogAuthEvent(r.Context(), model.EventLevelWarning, "login attempt on locked account",
			nil, ip, map[string]any{"email": req.Email})
		WriteError(w, http.StatusTooManyRequests, "account_locked",
			"Too many failed attempts. Try again in "+remaining.Round(time.Second).String()+".", nil)
		return
	}

	user, err := h.queries.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("login lookup failed", "error", err)
			WriteInternalError(w, "Could not sign in")
			return
		}
		h.failLogin(w, r, req.Email, ip)
		return
	}

	ok, err := auth.CheckPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		h.failLogin(w, r, req.Email, ip)
		return
	}

	h.loginGuard.RecordSuccessfulLogin(req.Email)

	if err := h.sessions.RenewToken(r.Context()); err != nil {
		slog.Error("session renewal failed", "error", err)
		WriteInternalError(w, "Could not sign in")
		return
	}
	h.sessions.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	if err := h.queries.UpdateUserLastLogin(r.Context(), user.ID); err != nil {
		slog.Warn("recording last login failed", "error", err, "user_id", user.ID)
	}

	_ = h.events.LogAuthEvent(r.Context(), model.EventLevelInfo, "login succeeded",
		&user.ID, ip, nil)

	WriteSuccess(w, userResponse{ID: user.ID, Email: user.Email}, nil)
}

func (h *Handler) failLogin(w http.ResponseWriter, r *http.Request, email, ip string) {
	locked, duration := h.loginGuard.RecordFailedAttempt(email)

	_ = h.events.LogAuthEvent(r.Context(), model.EventLevelWarning, "login failed",
		nil, ip, map[string]any{"email": email})

	if locked {
		WriteError(w, http.StatusTooManyRequests, "account_locked",
			"Too many failed attempts. Try again in "+duration.Round(time.Second).String()+".", nil)
		return
	}

	WriteUnauthorized(w, "Invalid email or password")
}

// Logout destroys the current session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDPtr(r)

	if err := h.sessions.Destroy(r.Context()); err != nil {
		slog.Error("session destroy failed", "error", err)
		WriteInternalError(w, "Could not sign out")
		return
	}

	_ = h.events.LogAuthEvent(r.Context(), model.EventLevelInfo, "logout",
		userID, clientIP(r), nil)

	WriteSuccess(w, map[string]string{"message": "Signed out"}, nil)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword issues a password reset token. The response is the
// same whether or not the account exists.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.queries.GetUserByEmail(r.Context(), req.Email)
	if err == nil {
		token, expiresAt := auth.NewResetToken()
		if err := h.queries.CreatePasswordResetToken(r.Context(), store.CreatePasswordResetTokenParams{
			Token:     token,
			UserID:    user.ID,
			ExpiresAt: expiresAt,
		}); err != nil {
			slog.Error("creating reset token failed", "error", err, "user_id", user.ID)
		} else {
			_ = h.events.LogAuthEvent(r.Context(), model.EventLevelInfo, "password reset requested",
				&user.ID, clientIP(r), nil)
		}
	} else if !errors.Is(err, sql.ErrNoRows) {
		slog.Error("reset lookup failed", "error", err)
	}

	WriteSuccess(w, map[string]string{
		"message": "If the account exists, a reset token has been issued",
	}, nil)
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ResetPassword redeems a reset token for a new password. Tokens are
// single use and expire after an hour.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if len(req.NewPassword) < minPasswordLength {
		WriteValidationError(w, map[string]string{"new_password": "password must be at least 8 characters"})
		return
	}

	token, err := h.queries.GetPasswordResetToken(r.Context(), req.Token)
	if err != nil {
		WriteBadRequest(w, "Invalid or expired reset token", nil)
		return
	}
	if !auth.TokenUsable(token.Used, token.ExpiresAt, time.Now()) {
		WriteBadRequest(w, "Invalid or expired reset token", nil)
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		slog.Error("password hashing failed", "error", err)
		WriteInternalError(w, "Could not reset password")
		return
	}

	if err := h.queries.UpdateUserPassword(r.Context(), token.UserID, hash); err != nil {
		slog.Error("password update failed", "error", err, "user_id", token.UserID)
		WriteInternalError(w, "Could not reset password")
		return
	}
	if err := h.queries.MarkPasswordResetTokenUsed(r.Context(), req.Token); err != nil {
		slog.Error("marking token used failed", "error", err)
	}

	_ = h.events.LogAuthEvent(r.Context(), model.EventLevelInfo, "password reset completed",
		&token.UserID, clientIP(r), nil)

	WriteSuccess(w, map[string]string{"message": "Password updated"}, nil)
}
