// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application including roles, project lifecycle states, and event
// log structures.
package model

import "strings"

// Role is the closed set of privilege levels a portal user can hold.
// It is resolved once from the stored profile role title and never
// re-parsed downstream.
type Role int

const (
	// RoleMember is an ordinary community member with no admin rights.
	RoleMember Role = iota
	// RoleFounder is the single elevated role permitted to moderate
	// submissions and publish administrative content.
	RoleFounder
)

// String returns the canonical lowercase name of the role.
func (r Role) String() string {
	if r == RoleFounder {
		return "founder"
	}
	return "member"
}

// IsAdmin returns true if the role grants moderation privileges.
func (r Role) IsAdmin() bool {
	return r == RoleFounder
}

// DefaultDisplayRole is shown for users whose profile has no role title.
const DefaultDisplayRole = "Active Member"

// roleTitleQuotes are stray characters seen in stored role titles.
const roleTitleQuotes = `'"`

// NormalizeRoleTitle strips quote characters from a raw role title,
// trims surrounding whitespace, and lower-cases the result. Malformed
// input degrades to the empty string.
func NormalizeRoleTitle(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(roleTitleQuotes, r) {
			return -1
		}
		return r
	}, raw)
	return strings.ToLower(strings.TrimSpace(cleaned))
}

// ResolveRole classifies a raw profile role title. Exactly one
// classification exists per title: "founder" grants admin, everything
// else (including absent or malformed titles) is an ordinary member.
func ResolveRole(rawTitle string) Role {
	if NormalizeRoleTitle(rawTitle) == "founder" {
		return RoleFounder
	}
	return RoleMember
}

// DisplayRole returns the title to show for a profile. Absent titles
// fall back to DefaultDisplayRole.
func DisplayRole(rawTitle string) string {
	if strings.TrimSpace(rawTitle) == "" {
		return DefaultDisplayRole
	}
	return rawTitle
}
