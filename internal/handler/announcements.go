package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/empoweringtalks/portal-go/internal/middleware"
	"github.com/empoweringtalks/portal-go/internal/model"
	"github.com/empoweringtalks/portal-go/internal/store"
)

// ListAnnouncements returns all announcements, newest first.
func (h *Handler) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	announcements, err := h.queries.ListAnnouncements(r.Context())
	if err != nil {
		slog.Error("listing announcements failed", "error", err)
		WriteInternalError(w, "Could not load announcements")
		return
	}
	if announcements == nil {
		announcements = []store.Announcement{}
	}
	WriteSuccess(w, announcements, &Meta{Total: len(announcements)})
}

type createAnnouncementRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreateAnnouncement posts a new announcement. Founder only, enforced
// at the route.
func (h *Handler) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req createAnnouncementRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		WriteValidationError(w, map[string]string{"title": "title is required"})
		return
	}

	announcement, err := h.queries.CreateAnnouncement(r.Context(), store.CreateAnnouncementParams{
		Title:   req.Title,
		Content: h.sanitizer.Sanitize(req.Content),
	})
	if err != nil {
		slog.Error("announcement creation failed", "error", err)
		WriteInternalError(w, "Could not post announcement")
		return
	}

	_ = h.events.LogContentEvent(r.Context(), model.EventLevelInfo, "announcement posted",
		middleware.GetUserIDPtr(r), clientIP(r), map[string]any{"announcement_id": announcement.ID})

	WriteCreated(w, announcement)
}

// DeleteAnnouncement removes an announcement. Founder only, enforced
// at the route.
func (h *Handler) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid announcement id", nil)
		return
	}

	if _, err := h.queries.GetAnnouncementByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Announcement not found")
			return
		}
		slog.Error("announcement lookup failed", "error", err)
		WriteInternalError(w, "Could not delete announcement")
		return
	}

	if err := h.queries.DeleteAnnouncement(r.Context(), id); err != nil {
		slog.Error("announcement deletion failed", "error", err)
		WriteInternalError(w, "Could not delete announcement")
		return
	}

	_ = h.events.LogContentEvent(r.Context(), model.EventLevelInfo, "announcement deleted",
		middleware.GetUserIDPtr(r), clientIP(r), map[string]any{"announcement_id": id})

	WriteSuccess(w, map[string]string{"message": "Announcement deleted"}, nil)
}
