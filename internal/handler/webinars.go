package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/empoweringtalks/portal-go/internal/middleware"
	"github.com/empoweringtalks/portal-go/internal/model"
	"github.com/empoweringtalks/portal-go/internal/store"
)

// ListWebinars returns all webinars ordered by event date.
func (h *Handler) ListWebinars(w http.ResponseWriter, r *http.Request) {
	webinars, err := h.queries.ListWebinars(r.Context())
	if err != nil {
		slog.Error("listing webinars failed", "error", err)
		WriteInternalError(w, "Could not load webinars")
		return
	}
	if webinars == nil {
		webinars = []store.Webinar{}
	}
	WriteSuccess(w, webinars, &Meta{Total: len(webinars)})
}

type createWebinarRequest struct {
	Title       string `json:"title"`
	Date        string `json:"date"` // RFC 3339
	Link        string `json:"link"`
	Description string `json:"description"`
}

// CreateWebinar lists a new webinar. Founder only, enforced at the route.
func (h *Handler) CreateWebinar(w http.ResponseWriter, r *http.Request) {
	var req createWebinarRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	fieldErrors := map[string]string{}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		fieldErrors["title"] = "title is required"
	}
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		fieldErrors["date"] = "date must be an RFC 3339 timestamp"
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	webinar, err := h.queries.CreateWebinar(r.Context(), store.CreateWebinarParams{
		Title:       req.Title,
		Date:        date,
		Link:        strings.TrimSpace(req.Link),
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		slog.Error("webinar creation failed", "error", err)
		WriteInternalError(w, "Could not list webinar")
		return
	}

	_ = h.events.LogContentEvent(r.Context(), model.EventLevelInfo, "webinar listed",
		middleware.GetUserIDPtr(r), clientIP(r), map[string]any{"webinar_id": webinar.ID})

	WriteCreated(w, webinar)
}

// DeleteWebinar removes a webinar. Founder only, enforced at the route.
func (h *Handler) DeleteWebinar(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid webinar id", nil)
		return
	}

	if _, err := h.queries.GetWebinarByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Webinar not found")
			return
		}
		slog.Error("webinar lookup failed", "error", err)
		WriteInternalError(w, "Could not delete webinar")
		return
	}

	if err := h.queries.DeleteWebinar(r.Context(), id); err != nil {
		slog.Error("webinar deletion failed", "error", err)
		WriteInternalError(w, "Could not delete webinar")
		return
	}

	_ = h.events.LogContentEvent(r.Context(), model.EventLevelInfo, "webinar deleted",
		middleware.GetUserIDPtr(r), clientIP(r), map[string]any{"webinar_id": id})

	WriteSuccess(w, map[string]string{"message": "Webinar deleted"}, nil)
}
