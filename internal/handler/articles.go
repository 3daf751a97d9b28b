// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/empoweringtalks/portal-go/internal/middleware"
	"github.com/empoweringtalks/portal-go/internal/model"
	"github.com/empoweringtalks/portal-go/internal/store"
	"github.com/empoweringtalks/portal-go/internal/util"
)

// articleCategories are the sections of the insights feed.
var articleCategories = map[string]bool{
	"Intelligence": true,
	"Web3":         true,
	"Civic":        true,
}

const defaultArticleCategory = "Intelligence"

// ListArticles returns all articles, newest first. An optional ?q=
// parameter filters by title or content.
func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	var (
		articles []store.Article
		err      error
	)
	if query != "" {
		articles, err = h.queries.SearchArticles(r.Context(), query)
	} else {
		articles, err = h.queries.ListArticles(r.Context())
	}
	if err != nil {
		slog.Error("listing articles failed", "error", err)
		WriteInternalError(w, "Could not load articles")
		return
	}

	if articles == nil {
		articles = []store.Article{}
	}
	WriteSuccess(w, articles, &Meta{Total: len(articles)})
}

type createArticleRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Content  string `json:"content"`
}

// CreateArticle publishes a new article attributed to the session's
// email. Content is sanitized before it ever reaches the database.
func (h *Handler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req createArticleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		WriteValidationError(w, map[string]string{"title": "title is required"})
		return
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = defaultArticleCategory
	}
	if !articleCategories[category] {
		WriteValidationError(w, map[string]string{"category": "unknown category"})
		return
	}

	slug, err := h.uniqueArticleSlug(r, req.Title)
	if err != nil {
		slog.Error("slug generation failed", "error", err)
		WriteInternalError(w, "Could not publish article")
		return
	}

	article, err := h.queries.CreateArticle(r.Context(), store.CreateArticleParams{
		Title:       req.Title,
		Slug:        slug,
		AuthorEmail: user.Email,
		Category:    category,
		Content:     h.sanitizer.Sanitize(req.Content),
	})
	if err != nil {
		slog.Error("article creation failed", "error", err)
		WriteInternalError(w, "Could not publish article")
		return
	}

	_ = h.events.LogContentEvent(r.Context(), model.EventLevelInfo, "article published",
		&user.ID, clientIP(r), map[string]any{"article_id": article.ID, "slug": article.Slug})

	WriteCreated(w, article)
}

// uniqueArticleSlug derives a slug from the title and suffixes a
// counter until it is free.
func (h *Handler) uniqueArticleSlug(r *http.Request, title string) (string, error) {
	base := util.Slugify(title)
	if base == "" {
		base = "article"
	}

	slug := base
	for i := 2; ; i++ {
		_, err := h.queries.GetArticleBySlug(r.Context(), slug)
		if errors.Is(err, sql.ErrNoRows) {
			return slug, nil
		}
		if err != nil {
			return "", err
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// DeleteArticle removes an article. Only its author may delete it.
func (h *Handler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Not authenticated")
		return
	}

	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid article id", nil)
		return
	}

	article, err := h.queries.GetArticleByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Article not found")
			return
		}
		slog.Error("article lookup failed", "error", err)
		WriteInternalError(w, "Could not delete article")
		return
	}

	if article.AuthorEmail != user.Email {
		slog.Warn("article delete denied", "article_id", id, "user_id", user.ID)
		WriteForbidden(w, "Only the author can delete this article")
		return
	}

	if err := h.queries.DeleteArticle(r.Context(), id); err != nil {
		slog.Error("article deletion failed", "error", err)
		WriteInternalError(w, "Could not delete article")
		return
	}

	_ = h.events.LogContentEvent(r.Context(), model.EventLevelInfo, "article deleted",
		&user.ID, clientIP(r), map[string]any{"article_id": id})

	WriteSuccess(w, map[string]string{"message": "Article deleted"}, nil)
}
