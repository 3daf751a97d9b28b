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

// profileResponse is a profile with the derived display fields
// attached. DisplayRole falls back to the default member title;
// IsFounder reflects the resolved role, never the raw title text.
type profileResponse struct {
	store.Profile
	Email       string `json:"email"`
	DisplayRole string `json:"display_role"`
	IsFounder   bool   `json:"is_founder"`
}

func newProfileResponse(profile store.Profile, email string) profileResponse {
	return profileResponse{
		Profile:     profile,
		Email:       email,
		DisplayRole: model.DisplayRole(profile.RoleTitle),
		IsFounder:   model.ResolveRole(profile.RoleTitle).IsAdmin(),
	}
}

// Me returns the authenticated user with their profile and role.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Not authenticated")
		return
	}

	profile := store.Profile{UserID: user.ID, Avatar: "orange"}
	if p := middleware.GetProfile(r); p != nil {
		profile = *p
	}

	WriteSuccess(w, newProfileResponse(profile, user.Email), nil)
}

// GetProfile returns the authenticated user's profile.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Not authenticated")
		return
	}

	profile, err := h.queries.GetProfile(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// No row yet: serve the defaults the editor starts from
			profile = store.Profile{UserID: user.ID, Avatar: "orange"}
		} else {
			slog.Error("profile lookup failed", "error", err, "user_id", user.ID)
			WriteInternalError(w, "Could not load profile")
			return
		}
	}

	WriteSuccess(w, newProfileResponse(profile, user.Email), nil)
}

// avatarChoices are the fruit avatars the profile editor offers.
var avatarChoices = map[string]bool{
	"apple":      true,
	"banana":     true,
	"cherry":     true,
	"grape":      true,
	"kiwi":       true,
	"lemon":      true,
	"orange":     true,
	"peach":      true,
	"pear":       true,
	"strawberry": true,
}

type updateProfileRequest struct {
	FullName  string `json:"full_name"`
	Location  string `json:"location"`
	Phone     string `json:"phone"`
	Website   string `json:"website"`
	Linkedin  string `json:"linkedin"`
	Instagram string `json:"instagram"`
	Industry  string `json:"industry"`
	Avatar    string `json:"avatar"`
	RoleTitle string `json:"role_title"`
}

// UpdateProfile replaces the authenticated user's profile fields. The
// role title is stored verbatim; it only ever grants founder access
// after normalization at load time.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	avatar := strings.TrimSpace(req.Avatar)
	if avatar == "" {
		avatar = "orange"
	}
	if !avatarChoices[avatar] {
		WriteValidationError(w, map[string]string{"avatar": "unknown avatar"})
		return
	}

	params := store.UpdateProfileParams{
		UserID:    user.ID,
		FullName:  strings.TrimSpace(req.FullName),
		Location:  strings.TrimSpace(req.Location),
		Phone:     strings.TrimSpace(req.Phone),
		Website:   strings.TrimSpace(req.Website),
		Linkedin:  strings.TrimSpace(req.Linkedin),
		Instagram: strings.TrimSpace(req.Instagram),
		Industry:  strings.TrimSpace(req.Industry),
		Avatar:    avatar,
		RoleTitle: strings.TrimSpace(req.RoleTitle),
	}

	// Upsert: the profile row may not exist for accounts created
	// before the profile editor was used.
	_, err := h.queries.GetProfile(r.Context(), user.ID)
	if errors.Is(err, sql.ErrNoRows) {
		err = h.queries.CreateProfile(r.Context(), store.CreateProfileParams{
			UserID:   user.ID,
			FullName: params.FullName,
			Avatar:   params.Avatar,
		})
	}
	if err != nil {
		slog.Error("profile lookup failed", "error", err, "user_id", user.ID)
		WriteInternalError(w, "Could not save profile")
		return
	}

	if err := h.queries.UpdateProfile(r.Context(), params); err != nil {
		slog.Error("profile update failed", "error", err, "user_id", user.ID)
		WriteInternalError(w, "Could not save profile")
		return
	}

	profile, err := h.queries.GetProfile(r.Context(), user.ID)
	if err != nil {
		slog.Error("profile reload failed", "error", err, "user_id", user.ID)
		WriteInternalError(w, "Could not load profile")
		return
	}

	_ = h.events.LogUserEvent(r.Context(), model.EventLevelInfo, "profile updated",
		&user.ID, clientIP(r), nil)

	WriteSuccess(w, newProfileResponse(profile, user.Email), nil)
}
