// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/empoweringtalks/portal-go/internal/model"
	"github.com/empoweringtalks/portal-go/internal/store"
)

func setupProjectTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		CREATE TABLE projects (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			repo_url TEXT NOT NULL,
			live_url TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			submitter_id INTEGER,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		t.Fatalf("failed to create projects table: %v", err)
	}

	return db
}

func newLoadedService(t *testing.T) (*ProjectService, *sql.DB) {
	t.Helper()
	db := setupProjectTestDB(t)
	svc := NewProjectService(db)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return svc, db
}

func TestSubmit(t *testing.T) {
	svc, _ := newLoadedService(t)
	ctx := context.Background()

	project, err := svc.Submit(ctx, 7, "https://github.com/org/repo", "https://demo.example.org")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if project.Status != model.ProjectStatusPending {
		t.Errorf("status = %q, want pending", project.Status)
	}
	if !project.SubmitterID.Valid || project.SubmitterID.Int64 != 7 {
		t.Errorf("submitter = %+v, want 7", project.SubmitterID)
	}

	pending, err := svc.ListPending(model.RoleFounder)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != project.ID {
		t.Errorf("pending queue = %+v, want the new submission", pending)
	}

	// Submission never lands in the approved feed
	if got := svc.ListApproved(); len(got) != 0 {
		t.Errorf("approved feed has %d entries after submit, want 0", len(got))
	}
}

func TestSubmit_RequiresRepoURL(t *testing.T) {
	svc, _ := newLoadedService(t)

	_, err := svc.Submit(context.Background(), 1, "   ", "")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Submit with blank repo: err = %v, want ValidationError", err)
	}
}

func TestSubmit_NewestFirst(t *testing.T) {
	svc, _ := newLoadedService(t)
	ctx := context.Background()

	first, _ := svc.Submit(ctx, 1, "https://github.com/org/first", "")
	second, _ := svc.Submit(ctx, 1, "https://github.com/org/second", "")

	pending, err := svc.ListPending(model.RoleFounder)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("queue length = %d, want 2", len(pending))
	}
	if pending[0].ID != second.ID || pending[1].ID != first.ID {
		t.Errorf("queue order = [%d, %d], want newest first [%d, %d]",
			pending[0].ID, pending[1].ID, second.ID, first.ID)
	}
}

func TestListPending_MemberDenied(t *testing.T) {
	svc, _ := newLoadedService(t)

	_, err := svc.ListPending(model.RoleMember)
	var aErr *AuthorizationError
	if !errors.As(err, &aErr) {
		t.Fatalf("ListPending as member: err = %v, want AuthorizationError", err)
	}
}

func TestDecide_Approve(t *testing.T) {
	svc, db := newLoadedService(t)
	ctx := context.Background()

	project, _ := svc.Submit(ctx, 3, "https://github.com/org/repo", "")

	decided, err := svc.Decide(ctx, model.RoleFounder, project.ID, model.ProjectStatusApproved)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if decided.Status != model.ProjectStatusApproved {
		t.Errorf("status = %q, want approved", decided.Status)
	}

	pending, _ := svc.ListPending(model.RoleFounder)
	if len(pending) != 0 {
		t.Errorf("queue length = %d after decision, want 0", len(pending))
	}

	approved := svc.ListApproved()
	if len(approved) != 1 || approved[0].ID != project.ID {
		t.Errorf("approved feed = %+v, want the decided project at the head", approved)
	}

	// The database row carries the decision too
	row, err := store.New(db).GetProjectByID(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetProjectByID: %v", err)
	}
	if row.Status != model.ProjectStatusApproved {
		t.Errorf("persisted status = %q, want approved", row.Status)
	}
}

func TestDecide_ApprovedGoesToHead(t *testing.T) {
	svc, _ := newLoadedService(t)
	ctx := context.Background()

	older, _ := svc.Submit(ctx, 1, "https://github.com/org/older", "")
	if _, err := svc.Decide(ctx, model.RoleFounder, older.ID, model.ProjectStatusApproved); err != nil {
		t.Fatal(err)
	}

	newer, _ := svc.Submit(ctx, 1, "https://github.com/org/newer", "")
	if _, err := svc.Decide(ctx, model.RoleFounder, newer.ID, model.ProjectStatusApproved); err != nil {
		t.Fatal(err)
	}

	approved := svc.ListApproved()
	if len(approved) != 2 || approved[0].ID != newer.ID {
		t.Errorf("approved head = %d, want most recently approved %d", approved[0].ID, newer.ID)
	}
}

func TestDecide_Reject(t *testing.T) {
	svc, _ := newLoadedService(t)
	ctx := context.Background()

	project, _ := svc.Submit(ctx, 3, "https://github.com/org/repo", "")

	decided, err := svc.Decide(ctx, model.RoleFounder, project.ID, model.ProjectStatusRejected)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if decided.Status != model.ProjectStatusRejected {
		t.Errorf("status = %q, want rejected", decided.Status)
	}

	pending, _ := svc.ListPending(model.RoleFounder)
	if len(pending) != 0 {
		t.Errorf("queue length = %d after rejection, want 0", len(pending))
	}
	if got := svc.ListApproved(); len(got) != 0 {
		t.Errorf("rejected project appeared in the approved feed: %+v", got)
	}
}

func TestDecide_MemberDenied(t *testing.T) {
	svc, _ := newLoadedService(t)
	ctx := context.Background()

	project, _ := svc.Submit(ctx, 3, "https://github.com/org/repo", "")

	_, err := svc.Decide(ctx, model.RoleMember, project.ID, model.ProjectStatusApproved)
	var aErr *AuthorizationError
	if !errors.As(err, &aErr) {
		t.Fatalf("Decide as member: err = %v, want AuthorizationError", err)
	}

	// Denied decision leaves the queue untouched
	pending, _ := svc.ListPending(model.RoleFounder)
	if len(pending) != 1 {
		t.Errorf("queue length = %d after denied decision, want 1", len(pending))
	}
}

func TestDecide_InvalidOutcome(t *testing.T) {
	svc, _ := newLoadedService(t)
	ctx := context.Background()

	project, _ := svc.Submit(ctx, 3, "https://github.com/org/repo", "")

	for _, outcome := range []string{"pending", "Approved", "", "deleted"} {
		_, err := svc.Decide(ctx, model.RoleFounder, project.ID, outcome)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("Decide(%q): err = %v, want ValidationError", outcome, err)
		}
	}
}

func TestDecide_UnknownProject(t *testing.T) {
	svc, _ := newLoadedService(t)

	_, err := svc.Decide(context.Background(), model.RoleFounder, 999, model.ProjectStatusApproved)
	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("Decide on unknown ID: err = %v, want NotFoundError", err)
	}
}

func TestDecide_AlreadyDecided(t *testing.T) {
	svc, _ := newLoadedService(t)
	ctx := context.Background()

	project, _ := svc.Submit(ctx, 3, "https://github.com/org/repo", "")
	if _, err := svc.Decide(ctx, model.RoleFounder, project.ID, model.ProjectStatusApproved); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Decide(ctx, model.RoleFounder, project.ID, model.ProjectStatusRejected)
	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("second decision: err = %v, want NotFoundError", err)
	}

	// The first decision stands
	approved := svc.ListApproved()
	if len(approved) != 1 {
		t.Errorf("approved feed length = %d, want 1", len(approved))
	}
}

func TestRemove(t *testing.T) {
	svc, db := newLoadedService(t)
	ctx := context.Background()

	project, _ := svc.Submit(ctx, 3, "https://github.com/org/repo", "")
	if _, err := svc.Decide(ctx, model.RoleFounder, project.ID, model.ProjectStatusApproved); err != nil {
		t.Fatal(err)
	}

	if err := svc.Remove(ctx, model.RoleFounder, project.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if got := svc.ListApproved(); len(got) != 0 {
		t.Errorf("approved feed length = %d after removal, want 0", len(got))
	}

	_, err := store.New(db).GetProjectByID(ctx, project.ID)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetProjectByID after removal: err = %v, want sql.ErrNoRows", err)
	}
}

func TestRemove_MemberDenied(t *testing.T) {
	svc, _ := newLoadedService(t)
	ctx := context.Background()

	project, _ := svc.Submit(ctx, 3, "https://github.com/org/repo", "")

	err := svc.Remove(ctx, model.RoleMember, project.ID)
	var aErr *AuthorizationError
	if !errors.As(err, &aErr) {
		t.Fatalf("Remove as member: err = %v, want AuthorizationError", err)
	}
}

func TestRemove_Unknown(t *testing.T) {
	svc, _ := newLoadedService(t)

	err := svc.Remove(context.Background(), model.RoleFounder, 999)
	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("Remove unknown ID: err = %v, want NotFoundError", err)
	}
}

func TestLoad_RestoresFromDatabase(t *testing.T) {
	db := setupProjectTestDB(t)
	ctx := context.Background()

	queries := store.New(db)
	approved, err := queries.CreateProject(ctx, store.CreateProjectParams{
		RepoURL: "https://github.com/org/approved",
		Status:  model.ProjectStatusApproved,
	})
	if err != nil {
		t.Fatal(err)
	}
	pending, err := queries.CreateProject(ctx, store.CreateProjectParams{
		RepoURL: "https://github.com/org/pending",
		Status:  model.ProjectStatusPending,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := queries.CreateProject(ctx, store.CreateProjectParams{
		RepoURL: "https://github.com/org/rejected",
		Status:  model.ProjectStatusRejected,
	}); err != nil {
		t.Fatal(err)
	}

	svc := NewProjectService(db)
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}

	feed := svc.ListApproved()
	if len(feed) != 1 || feed[0].ID != approved.ID {
		t.Errorf("approved feed = %+v, want only the approved project", feed)
	}

	queue, err := svc.ListPending(model.RoleFounder)
	if err != nil {
		t.Fatal(err)
	}
	if len(queue) != 1 || queue[0].ID != pending.ID {
		t.Errorf("pending queue = %+v, want only the pending project", queue)
	}
}

func TestListApproved_ReturnsCopy(t *testing.T) {
	svc, _ := newLoadedService(t)
	ctx := context.Background()

	project, _ := svc.Submit(ctx, 1, "https://github.com/org/repo", "")
	if _, err := svc.Decide(ctx, model.RoleFounder, project.ID, model.ProjectStatusApproved); err != nil {
		t.Fatal(err)
	}

	feed := svc.ListApproved()
	feed[0].RepoURL = "mutated"

	if got := svc.ListApproved(); got[0].RepoURL == "mutated" {
		t.Error("mutating a returned slice changed the cached feed")
	}
}
