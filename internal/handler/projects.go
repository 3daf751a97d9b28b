// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/empoweringtalks/portal-go/internal/middleware"
	"github.com/empoweringtalks/portal-go/internal/model"
)

// ListApprovedProjects returns the public project feed, newest first.
func (h *Handler) ListApprovedProjects(w http.ResponseWriter, _ *http.Request) {
	projects := h.projects.ListApproved()
	WriteSuccess(w, projects, &Meta{Total: len(projects)})
}

type submitProjectRequest struct {
	RepoURL string `json:"repo_url"`
	LiveURL string `json:"live_url"`
}

// SubmitProject enters a project into the moderation queue.
func (h *Handler) SubmitProject(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req submitProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	project, err := h.projects.Submit(r.Context(), user.ID, req.RepoURL, req.LiveURL)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	_ = h.events.LogProjectEvent(r.Context(), model.EventLevelInfo, "project submitted",
		&user.ID, clientIP(r), map[string]any{"project_id": project.ID})

	WriteCreated(w, project)
}

// UploadProjectFile stores a supporting file under a random name and
// returns its public URL.
func (h *Handler) UploadProjectFile(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		WriteBadRequest(w, "A multipart \"file\" field is required", nil)
		return
	}
	defer func() { _ = file.Close() }()

	url, err := h.uploads.Save(file, header.Filename)
	if err != nil {
		WriteValidationError(w, map[string]string{"file": err.Error()})
		return
	}

	_ = h.events.LogProjectEvent(r.Context(), model.EventLevelInfo, "project file uploaded",
		middleware.GetUserIDPtr(r), clientIP(r), map[string]any{"url": url})

	WriteCreated(w, map[string]string{"url": url})
}

// ListPendingProjects returns the moderation queue. Founder only.
func (h *Handler) ListPendingProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.ListPending(middleware.GetRole(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteSuccess(w, projects, &Meta{Total: len(projects)})
}

type decideProjectRequest struct {
	Status string `json:"status"`
}

// DecideProject resolves a pending submission to approved or rejected.
// Founder only.
func (h *Handler) DecideProject(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid project id", nil)
		return
	}

	var req decideProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	project, err := h.projects.Decide(r.Context(), middleware.GetRole(r), id, req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	_ = h.events.LogProjectEvent(r.Context(), model.EventLevelInfo, "project decision recorded",
		middleware.GetUserIDPtr(r), clientIP(r),
		map[string]any{"project_id": id, "status": project.Status})

	WriteSuccess(w, project, nil)
}

// DeleteProject removes a project outright. Founder only.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid project id", nil)
		return
	}

	if err := h.projects.Remove(r.Context(), middleware.GetRole(r), id); err != nil {
		writeServiceError(w, err)
		return
	}

	slog.Info("project removed", "project_id", id, "user_id", middleware.GetUserID(r))
	_ = h.events.LogProjectEvent(r.Context(), model.EventLevelInfo, "project removed",
		middleware.GetUserIDPtr(r), clientIP(r), map[string]any{"project_id": id})

	WriteSuccess(w, map[string]string{"message": "Project removed"}, nil)
}
