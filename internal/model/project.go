// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Project submission lifecycle states. Every submission starts pending;
// approved and rejected are both terminal.
const (
	ProjectStatusPending  = "pending"
	ProjectStatusApproved = "approved"
	ProjectStatusRejected = "rejected"
)

// IsDecisionOutcome reports whether status is a valid moderation
// outcome for a pending submission.
func IsDecisionOutcome(status string) bool {
	return status == ProjectStatusApproved || status == ProjectStatusRejected
}
