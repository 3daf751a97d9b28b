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

// ListOpportunities returns all opportunities, newest first.
func (h *Handler) ListOpportunities(w http.ResponseWriter, r *http.Request) {
	opportunities, err := h.queries.ListOpportunities(r.Context())
	if err != nil {
		slog.Error("listing opportunities failed", "error", err)
		WriteInternalError(w, "Could not load opportunities")
		return
	}
	if opportunities == nil {
		opportunities = []store.Opportunity{}
	}
	WriteSuccess(w, opportunities, &Meta{Total: len(opportunities)})
}

// opportunityCategories partition the opportunities board.
var opportunityCategories = map[string]bool{
	"non-profit":   true,
	"hackathons":   true,
	"certificates": true,
}

type createOpportunityRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	Due         string `json:"due"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

// CreateOpportunity lists a new opportunity. Founder only, enforced at
// the route.
func (h *Handler) CreateOpportunity(w http.ResponseWriter, r *http.Request) {
	var req createOpportunityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		WriteValidationError(w, map[string]string{"name": "name is required"})
		return
	}

	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = "open"
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = "non-profit"
	}
	if !opportunityCategories[category] {
		WriteValidationError(w, map[string]string{"category": "unknown category"})
		return
	}

	opportunity, err := h.queries.CreateOpportunity(r.Context(), store.CreateOpportunityParams{
		Name:        req.Name,
		Category:    category,
		Status:      status,
		Due:         strings.TrimSpace(req.Due),
		Description: strings.TrimSpace(req.Description),
		Link:        strings.TrimSpace(req.Link),
	})
	if err != nil {
		slog.Error("opportunity creation failed", "error", err)
		WriteInternalError(w, "Could not list opportunity")
		return
	}

	_ = h.events.LogContentEvent(r.Context(), model.EventLevelInfo, "opportunity listed",
		middleware.GetUserIDPtr(r), clientIP(r), map[string]any{"opportunity_id": opportunity.ID})

	WriteCreated(w, opportunity)
}

// DeleteOpportunity removes an opportunity. Founder only, enforced at
// the route.
func (h *Handler) DeleteOpportunity(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid opportunity id", nil)
		return
	}

	if _, err := h.queries.GetOpportunityByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Opportunity not found")
			return
		}
		slog.Error("opportunity lookup failed", "error", err)
		WriteInternalError(w, "Could not delete opportunity")
		return
	}

	if err := h.queries.DeleteOpportunity(r.Context(), id); err != nil {
		slog.Error("opportunity deletion failed", "error", err)
		WriteInternalError(w, "Could not delete opportunity")
		return
	}

	_ = h.events.LogContentEvent(r.Context(), model.EventLevelInfo, "opportunity deleted",
		middleware.GetUserIDPtr(r), clientIP(r), map[string]any{"opportunity_id": id})

	WriteSuccess(w, map[string]string{"message": "Opportunity deleted"}, nil)
}
