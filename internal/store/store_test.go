// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestQueries opens a migrated throwaway database.
func newTestQueries(t *testing.T) *Queries {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(db))
	return New(db)
}

func TestUsers(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()

	user, err := q.CreateUser(ctx, CreateUserParams{
		Email:        "member@example.org",
		PasswordHash: "$argon2id$fake",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "member@example.org", user.Email)
	assert.False(t, user.LastLoginAt.Valid)

	// Email is unique
	_, err = q.CreateUser(ctx, CreateUserParams{
		Email:        "member@example.org",
		PasswordHash: "$argon2id$other",
	})
	assert.Error(t, err)

	byEmail, err := q.GetUserByEmail(ctx, "member@example.org")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = q.GetUserByEmail(ctx, "ghost@example.org")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	exists, err := q.UserExists(ctx, "member@example.org")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = q.UserExists(ctx, "ghost@example.org")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, q.UpdateUserLastLogin(ctx, user.ID))
	byID, err := q.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, byID.LastLoginAt.Valid)

	require.NoError(t, q.UpdateUserPassword(ctx, user.ID, "$argon2id$rotated"))
	byID, err = q.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "$argon2id$rotated", byID.PasswordHash)

	n, err := q.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestProfiles(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()

	user, err := q.CreateUser(ctx, CreateUserParams{Email: "a@b.co", PasswordHash: "x"})
	require.NoError(t, err)

	_, err = q.GetProfile(ctx, user.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, q.CreateProfile(ctx, CreateProfileParams{
		UserID:    user.ID,
		FullName:  "Ada",
		Avatar:    "orange",
		RoleTitle: "Founder",
	}))

	profile, err := q.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.FullName)
	assert.Equal(t, "Founder", profile.RoleTitle)

	require.NoError(t, q.UpdateProfile(ctx, UpdateProfileParams{
		UserID:    user.ID,
		FullName:  "Ada Lovelace",
		Location:  "London",
		Avatar:    "teal",
		RoleTitle: "Engineer",
	}))

	profile, err = q.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", profile.FullName)
	assert.Equal(t, "London", profile.Location)
	// Update is a full replacement, untouched fields go blank
	assert.Equal(t, "Engineer", profile.RoleTitle)
	assert.Empty(t, profile.Phone)
}

func TestArticles(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()

	first, err := q.CreateArticle(ctx, CreateArticleParams{
		Title: "First", Slug: "first", AuthorEmail: "a@b.co",
		Category: "Civic", Content: "on public goods",
	})
	require.NoError(t, err)
	second, err := q.CreateArticle(ctx, CreateArticleParams{
		Title: "Second", Slug: "second", AuthorEmail: "a@b.co",
		Category: "Web3", Content: "on tokens",
	})
	require.NoError(t, err)

	// Slug is unique
	_, err = q.CreateArticle(ctx, CreateArticleParams{
		Title: "Dup", Slug: "first", AuthorEmail: "a@b.co", Category: "Civic",
	})
	assert.Error(t, err)

	list, err := q.ListArticles(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")

	bySlug, err := q.GetArticleBySlug(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, first.ID, bySlug.ID)

	hits, err := q.SearchArticles(ctx, "tokens")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, second.ID, hits[0].ID)

	hits, err = q.SearchArticles(ctx, "FIRST")
	require.NoError(t, err)
	assert.Len(t, hits, 1, "search matches titles case-insensitively")

	require.NoError(t, q.DeleteArticle(ctx, first.ID))
	_, err = q.GetArticleByID(ctx, first.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestProjects(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()

	user, err := q.CreateUser(ctx, CreateUserParams{Email: "a@b.co", PasswordHash: "x"})
	require.NoError(t, err)

	project, err := q.CreateProject(ctx, CreateProjectParams{
		RepoURL:     "https://github.com/a/app",
		LiveURL:     "https://app.example.org",
		Status:      "pending",
		SubmitterID: sql.NullInt64{Int64: user.ID, Valid: true},
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", project.Status)

	pending, err := q.ListProjectsByStatus(ctx, "pending")
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	require.NoError(t, q.UpdateProjectStatus(ctx, project.ID, "approved"))
	approved, err := q.ListProjectsByStatus(ctx, "approved")
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, "approved", approved[0].Status)

	// Status updates and deletes of missing rows surface as ErrNoRows
	assert.ErrorIs(t, q.UpdateProjectStatus(ctx, 9999, "approved"), sql.ErrNoRows)
	assert.ErrorIs(t, q.DeleteProject(ctx, 9999), sql.ErrNoRows)

	require.NoError(t, q.DeleteProject(ctx, project.ID))
	_, err = q.GetProjectByID(ctx, project.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestPasswordResetTokens(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()

	user, err := q.CreateUser(ctx, CreateUserParams{Email: "a@b.co", PasswordHash: "x"})
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, q.CreatePasswordResetToken(ctx, CreatePasswordResetTokenParams{
		Token: "live", UserID: user.ID, ExpiresAt: now.Add(time.Hour),
	}))
	require.NoError(t, q.CreatePasswordResetToken(ctx, CreatePasswordResetTokenParams{
		Token: "expired", UserID: user.ID, ExpiresAt: now.Add(-time.Hour),
	}))
	require.NoError(t, q.CreatePasswordResetToken(ctx, CreatePasswordResetTokenParams{
		Token: "spent", UserID: user.ID, ExpiresAt: now.Add(time.Hour),
	}))
	require.NoError(t, q.MarkPasswordResetTokenUsed(ctx, "spent"))

	token, err := q.GetPasswordResetToken(ctx, "spent")
	require.NoError(t, err)
	assert.True(t, token.Used)

	deleted, err := q.DeleteExpiredPasswordResetTokens(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted, "expired and spent tokens purged")

	_, err = q.GetPasswordResetToken(ctx, "live")
	assert.NoError(t, err)
	_, err = q.GetPasswordResetToken(ctx, "expired")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestEvents(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()

	require.NoError(t, q.CreateEvent(ctx, CreateEventParams{
		Level: "warning", Category: "auth", Message: "login failed",
		IpAddress: "203.0.113.9", Metadata: `{"attempts":3}`,
	}))
	require.NoError(t, q.CreateEvent(ctx, CreateEventParams{
		Level: "info", Category: "system", Message: "startup", Metadata: "{}",
	}))

	events, err := q.ListRecentEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	events, err = q.ListRecentEvents(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	deleted, err := q.DeleteEventsBefore(ctx, time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestCommunityContent(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()

	announcement, err := q.CreateAnnouncement(ctx, CreateAnnouncementParams{
		Title: "Town Hall", Content: "Friday",
	})
	require.NoError(t, err)
	announcements, err := q.ListAnnouncements(ctx)
	require.NoError(t, err)
	require.Len(t, announcements, 1)
	require.NoError(t, q.DeleteAnnouncement(ctx, announcement.ID))

	later := time.Date(2026, 10, 20, 18, 0, 0, 0, time.UTC)
	sooner := time.Date(2026, 9, 5, 18, 0, 0, 0, time.UTC)
	_, err = q.CreateWebinar(ctx, CreateWebinarParams{Title: "Later", Date: later})
	require.NoError(t, err)
	_, err = q.CreateWebinar(ctx, CreateWebinarParams{Title: "Sooner", Date: sooner})
	require.NoError(t, err)

	webinars, err := q.ListWebinars(ctx)
	require.NoError(t, err)
	require.Len(t, webinars, 2)
	assert.Equal(t, "Sooner", webinars[0].Title, "ordered by event date")

	opportunity, err := q.CreateOpportunity(ctx, CreateOpportunityParams{
		Name: "Grant Round", Category: "non-profit", Status: "open",
	})
	require.NoError(t, err)
	assert.Equal(t, "open", opportunity.Status)
	require.NoError(t, q.DeleteOpportunity(ctx, opportunity.ID))
	_, err = q.GetOpportunityByID(ctx, opportunity.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
