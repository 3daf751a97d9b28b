// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the portal's periodic maintenance jobs.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/empoweringtalks/portal-go/internal/store"
)

// Scheduler handles recurring maintenance: pruning old audit events and
// purging spent password reset tokens.
type Scheduler struct {
	db             *sql.DB
	cron           *cron.Cron
	logger         *slog.Logger
	eventRetention time.Duration
}

// New creates a new scheduler instance.
func New(db *sql.DB, logger *slog.Logger, eventRetention time.Duration) *Scheduler {
	return &Scheduler{
		db:             db,
		cron:           cron.New(),
		logger:         logger,
		eventRetention: eventRetention,
	}
}

// Start registers the maintenance jobs and begins the cron loop.
func (s *Scheduler) Start() error {
	// Nightly audit log pruning
	if _, err := s.cron.AddFunc("0 3 * * *", func() {
		if err := s.pruneEvents(); err != nil {
			s.logger.Error("failed to prune audit events", "error", err)
		}
	}); err != nil {
		return err
	}

	// Hourly reset token cleanup
	if _, err := s.cron.AddFunc("0 * * * *", func() {
		if err := s.purgeResetTokens(); err != nil {
			s.logger.Error("failed to purge reset tokens", "error", err)
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) pruneEvents() error {
	queries := store.New(s.db)
	cutoff := time.Now().Add(-s.eventRetention)

	deleted, err := queries.DeleteEventsBefore(context.Background(), cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		s.logger.Info("pruned audit events", "deleted", deleted, "cutoff", cutoff)
	}
	return nil
}

func (s *Scheduler) purgeResetTokens() error {
	queries := store.New(s.db)

	deleted, err := queries.DeleteExpiredPasswordResetTokens(context.Background(), time.Now())
	if err != nil {
		return err
	}
	if deleted > 0 {
		s.logger.Info("purged reset tokens", "deleted", deleted)
	}
	return nil
}
