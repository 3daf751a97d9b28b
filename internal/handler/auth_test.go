// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"testing"
)

func TestSignupLoginLogoutFlow(t *testing.T) {
	env := newTestEnv(t)

	env.signup(t, "member@example.org", "a strong password")

	// Signup starts a session
	resp := env.do(t, http.MethodGet, "/api/v1/me", nil)
	var me struct {
		Email       string `json:"email"`
		DisplayRole string `json:"display_role"`
		IsFounder   bool   `json:"is_founder"`
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me after signup: status %d", resp.StatusCode)
	}
	decodeData(t, resp, &me)
	if me.Email != "member@example.org" {
		t.Errorf("me.email = %q", me.Email)
	}
	if me.IsFounder {
		t.Error("fresh signup is a founder")
	}
	if me.DisplayRole != "Active Member" {
		t.Errorf("display_role = %q, want Active Member", me.DisplayRole)
	}

	// Logout kills the session
	resp = env.do(t, http.MethodPost, "/api/v1/auth/logout", nil)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: status %d", resp.StatusCode)
	}

	resp = env.do(t, http.MethodGet, "/api/v1/me", nil)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("me after logout: status %d, want 401", resp.StatusCode)
	}

	// Login works with the right password
	resp = env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "member@example.org",
		"password": "a strong password",
	})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: status %d", resp.StatusCode)
	}

	resp = env.do(t, http.MethodGet, "/api/v1/me", nil)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("me after login: status %d", resp.StatusCode)
	}
}

func TestSignup_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"bad email", "not-an-email", "a strong password"},
		{"short password", "user@example.org", "short"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/api/v1/auth/signup", map[string]string{
				"email":    tt.email,
				"password": tt.password,
			})
			_ = resp.Body.Close()
			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422", resp.StatusCode)
			}
		})
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "member@example.org", "a strong password")

	resp := env.do(t, http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"email":    "member@example.org",
		"password": "another password",
	})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("duplicate signup: status %d, want 422", resp.StatusCode)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "member@example.org", "a strong password")

	logout := env.do(t, http.MethodPost, "/api/v1/auth/logout", nil)
	_ = logout.Body.Close()

	resp := env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "member@example.org",
		"password": "wrong password",
	})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestLogin_UnknownAccountSameError(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "ghost@example.org",
		"password": "whatever password",
	})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "member@example.org", "original password")

	logout := env.do(t, http.MethodPost, "/api/v1/auth/logout", nil)
	_ = logout.Body.Close()

	resp := env.do(t, http.MethodPost, "/api/v1/auth/forgot-password", map[string]string{
		"email": "member@example.org",
	})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("forgot-password: status %d", resp.StatusCode)
	}

	// Tokens are not exposed over the API; read it from the database
	var token string
	if err := env.db.QueryRow(`SELECT token FROM password_reset_tokens`).Scan(&token); err != nil {
		t.Fatalf("no reset token issued: %v", err)
	}

	resp = env.do(t, http.MethodPost, "/api/v1/auth/reset-password", map[string]string{
		"token":        token,
		"new_password": "replacement password",
	})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reset-password: status %d", resp.StatusCode)
	}

	// The token is single use
	resp = env.do(t, http.MethodPost, "/api/v1/auth/reset-password", map[string]string{
		"token":        token,
		"new_password": "yet another password",
	})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("token reuse: status %d, want 400", resp.StatusCode)
	}

	// Old password no longer works, new one does
	resp = env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "member@example.org", "password": "original password",
	})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("old password: status %d, want 401", resp.StatusCode)
	}

	resp = env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "member@example.org", "password": "replacement password",
	})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("new password: status %d, want 200", resp.StatusCode)
	}
}

func TestForgotPassword_UnknownAccountSilent(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/v1/auth/forgot-password", map[string]string{
		"email": "ghost@example.org",
	})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200 regardless of account existence", resp.StatusCode)
	}
}
