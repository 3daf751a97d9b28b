// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/empoweringtalks/portal-go/internal/auth"
)

// SeedParams identifies the bootstrap founder account.
type SeedParams struct {
	Email    string
	Password string
	FullName string
}

// Seed creates the initial founder account if no user with the given
// email exists. Safe to run on every startup.
func Seed(ctx context.Context, queries *Queries, arg SeedParams) error {
	_, err := queries.GetUserByEmail(ctx, arg.Email)
	if err == nil {
		return nil // already seeded
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking founder account: %w", err)
	}

	hash, err := auth.HashPassword(arg.Password)
	if err != nil {
		return fmt.Errorf("hashing founder password: %w", err)
	}

	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        arg.Email,
		PasswordHash: hash,
	})
	if err != nil {
		return fmt.Errorf("creating founder account: %w", err)
	}

	err = queries.CreateProfile(ctx, CreateProfileParams{
		UserID:    user.ID,
		FullName:  arg.FullName,
		Avatar:    "orange",
		RoleTitle: "Founder",
	})
	if err != nil {
		return fmt.Errorf("creating founder profile: %w", err)
	}

	slog.Info("seeded founder account", "email", arg.Email)
	return nil
}
