// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/empoweringtalks/portal-go/internal/model"
	"github.com/empoweringtalks/portal-go/internal/store"
)

// ProjectService manages the project submission and moderation workflow.
// It keeps the approved feed and the pending queue in memory so list
// endpoints never touch the database. Every mutation persists to the
// database first and only updates the cached slices once the write
// succeeds, so the cache can drift from the database only by missing
// writes made outside this process, never by phantom records.
type ProjectService struct {
	queries *store.Queries

	mu       sync.Mutex
	approved []store.Project // newest first
	pending  []store.Project // newest first
}

// NewProjectService creates a ProjectService. Call Load before serving.
func NewProjectService(db *sql.DB) *ProjectService {
	return &ProjectService{
		queries: store.New(db),
	}
}

// Load populates the in-memory feed and queue from the database.
func (s *ProjectService) Load(ctx context.Context) error {
	approved, err := s.queries.ListProjectsByStatus(ctx, model.ProjectStatusApproved)
	if err != nil {
		return fmt.Errorf("loading approved projects: %w", err)
	}
	pending, err := s.queries.ListProjectsByStatus(ctx, model.ProjectStatusPending)
	if err != nil {
		return fmt.Errorf("loading pending projects: %w", err)
	}

	s.mu.Lock()
	s.approved = approved
	s.pending = pending
	s.mu.Unlock()

	return nil
}

// Submit records a new project in the pending queue. Every submission
// starts pending regardless of who submits it.
func (s *ProjectService) Submit(ctx context.Context, submitterID int64, repoURL, liveURL string) (store.Project, error) {
	repoURL = strings.TrimSpace(repoURL)
	liveURL = strings.TrimSpace(liveURL)
	if repoURL == "" {
		return store.Project{}, NewValidationError("repo_url", "repository link is required")
	}

	project, err := s.queries.CreateProject(ctx, store.CreateProjectParams{
		RepoURL:     repoURL,
		LiveURL:     liveURL,
		Status:      model.ProjectStatusPending,
		SubmitterID: sql.NullInt64{Int64: submitterID, Valid: submitterID != 0},
	})
	if err != nil {
		return store.Project{}, fmt.Errorf("creating project: %w", err)
	}

	s.mu.Lock()
	s.pending = append([]store.Project{project}, s.pending...)
	s.mu.Unlock()

	return project, nil
}

// ListApproved returns the approved feed, newest first.
func (s *ProjectService) ListApproved() []store.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.Project, len(s.approved))
	copy(out, s.approved)
	return out
}

// ListPending returns the moderation queue, newest first. Restricted to
// founders because the queue exposes unreviewed submissions.
func (s *ProjectService) ListPending(actor model.Role) ([]store.Project, error) {
	if !actor.IsAdmin() {
		return nil, NewAuthorizationError("view the moderation queue")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.Project, len(s.pending))
	copy(out, s.pending)
	return out, nil
}

// Decide resolves a pending project to approved or rejected. The status
// change is persisted before the cached queue moves, so a failed write
// leaves the queue intact.
func (s *ProjectService) Decide(ctx context.Context, actor model.Role, id int64, outcome string) (store.Project, error) {
	if !actor.IsAdmin() {
		return store.Project{}, NewAuthorizationError("decide project submissions")
	}
	if !model.IsDecisionOutcome(outcome) {
		return store.Project{}, NewValidationError("status", "decision must be approved or rejected")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, p := range s.pending {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return store.Project{}, NewNotFoundError("pending project", id)
	}

	if err := s.queries.UpdateProjectStatus(ctx, id, outcome); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Row vanished underneath the cache; drop it from the queue
			s.pending = append(s.pending[:idx], s.pending[idx+1:]...)
			return store.Project{}, NewNotFoundError("pending project", id)
		}
		return store.Project{}, fmt.Errorf("updating project status: %w", err)
	}

	project := s.pending[idx]
	project.Status = outcome
	s.pending = append(s.pending[:idx], s.pending[idx+1:]...)

	if outcome == model.ProjectStatusApproved {
		s.approved = append([]store.Project{project}, s.approved...)
	}

	return project, nil
}

// Remove deletes a project outright, whatever its state. Founder only.
func (s *ProjectService) Remove(ctx context.Context, actor model.Role, id int64) error {
	if !actor.IsAdmin() {
		return NewAuthorizationError("remove projects")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.queries.DeleteProject(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NewNotFoundError("project", id)
		}
		return fmt.Errorf("deleting project: %w", err)
	}

	s.approved = removeByID(s.approved, id)
	s.pending = removeByID(s.pending, id)

	return nil
}

func removeByID(projects []store.Project, id int64) []store.Project {
	for i, p := range projects {
		if p.ID == id {
			return append(projects[:i], projects[i+1:]...)
		}
	}
	return projects
}
