package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	_ "modernc.org/sqlite"

	"github.com/empoweringtalks/portal-go/internal/middleware"
	"github.com/empoweringtalks/portal-go/internal/service"
	"github.com/empoweringtalks/portal-go/internal/storage"
)

const testSchema = `
CREATE TABLE users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_login_at DATETIME
);
CREATE TABLE profiles (
	user_id INTEGER PRIMARY KEY,
	full_name TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	website TEXT NOT NULL DEFAULT '',
	linkedin TEXT NOT NULL DEFAULT '',
	instagram TEXT NOT NULL DEFAULT '',
	industry TEXT NOT NULL DEFAULT '',
	avatar TEXT NOT NULL DEFAULT 'orange',
	role_title TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE articles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	slug TEXT NOT NULL UNIQUE,
	author_email TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT 'Intelligence',
	content TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE announcements (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE webinars (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	date DATETIME NOT NULL,
	link TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE opportunities (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT 'non-profit',
	status TEXT NOT NULL DEFAULT 'open',
	due TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	link TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE projects (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	repo_url TEXT NOT NULL,
	live_url TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'pending',
	submitter_id INTEGER,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	level TEXT NOT NULL,
	category TEXT NOT NULL,
	message TEXT NOT NULL,
	user_id INTEGER,
	ip_address TEXT NOT NULL DEFAULT '',
	metadata TEXT NOT NULL DEFAULT '{}',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE password_reset_tokens (
	token TEXT PRIMARY KEY,
	user_id INTEGER NOT NULL,
	expires_at DATETIME NOT NULL,
	used BOOLEAN NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// testEnv bundles a running test server with a cookie-aware client.
type testEnv struct {
	server *httptest.Server
	client *http.Client
	db     *sql.DB
}

// newTestEnv starts a portal API server over an in-memory database with
// the production route layout, minus CSRF and rate limiting.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	// A single connection keeps every query on the same in-memory DB
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("creating schema: %v", err)
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = time.Hour

	projectService := service.NewProjectService(db)
	if err := projectService.Load(context.Background()); err != nil {
		t.Fatalf("loading projects: %v", err)
	}

	uploads, err := storage.NewLocal(t.TempDir(), "/uploads", 1<<20)
	if err != nil {
		t.Fatalf("creating upload store: %v", err)
	}

	h := NewHandler(db, sessionManager, projectService, service.NewEventService(db),
		uploads, middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig()))

	r := chi.NewRouter()
	r.Use(sessionManager.LoadAndSave)

	r.Get("/health", h.Health)
	r.Get("/health/live", h.Live)
	r.Get("/health/ready", h.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", h.Status)

		r.Post("/auth/login", h.Login)
		r.Post("/auth/signup", h.Signup)
		r.Post("/auth/logout", h.Logout)
		r.Post("/auth/forgot-password", h.ForgotPassword)
		r.Post("/auth/reset-password", h.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(sessionManager))
			r.Use(middleware.LoadUser(sessionManager, db))

			r.Get("/me", h.Me)
			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.UpdateProfile)

			r.Get("/articles", h.ListArticles)
			r.Post("/articles", h.CreateArticle)
			r.Delete("/articles/{id}", h.DeleteArticle)

			r.Get("/announcements", h.ListAnnouncements)
			r.Get("/webinars", h.ListWebinars)
			r.Get("/opportunities", h.ListOpportunities)

			r.Get("/projects", h.ListApprovedProjects)
			r.Post("/projects", h.SubmitProject)
			r.Post("/projects/upload", h.UploadProjectFile)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireFounder())

				r.Post("/announcements", h.CreateAnnouncement)
				r.Delete("/announcements/{id}", h.DeleteAnnouncement)
				r.Post("/webinars", h.CreateWebinar)
				r.Delete("/webinars/{id}", h.DeleteWebinar)
				r.Post("/opportunities", h.CreateOpportunity)
				r.Delete("/opportunities/{id}", h.DeleteOpportunity)

				r.Get("/projects/pending", h.ListPendingProjects)
				r.Post("/projects/{id}/decision", h.DecideProject)
				r.Delete("/projects/{id}", h.DeleteProject)
			})
		})
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("creating cookie jar: %v", err)
	}

	return &testEnv{
		server: server,
		client: &http.Client{Jar: jar},
		db:     db,
	}
}

// do sends a JSON request through the cookie-aware client.
func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// decodeData decodes the "data" field of a response envelope into dst
// and closes the body.
func decodeData(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if dst != nil {
		if err := json.Unmarshal(envelope.Data, dst); err != nil {
			t.Fatalf("decoding data: %v", err)
		}
	}
}

// signup registers an account and leaves its session in the cookie jar.
func (e *testEnv) signup(t *testing.T, email, password string) {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"email":    email,
		"password": password,
	})
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup %s: status %d", email, resp.StatusCode)
	}
}

// promoteToFounder sets the account's role title directly in the
// database, then re-login is unnecessary since role resolution happens
// per request.
func (e *testEnv) promoteToFounder(t *testing.T, email string) {
	t.Helper()
	_, err := e.db.Exec(`UPDATE profiles SET role_title = 'Founder'
		WHERE user_id = (SELECT id FROM users WHERE email = ?)`, email)
	if err != nil {
		t.Fatalf("promoting %s: %v", email, err)
	}
}
