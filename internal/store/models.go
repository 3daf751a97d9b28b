package store

import (
	"database/sql"
	"time"
)

// User is a registered portal account.
type User struct {
	ID           int64        `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Never expose in JSON
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	LastLoginAt  sql.NullTime `json:"last_login_at,omitempty"`
}

// Profile holds the editable display fields attached to a user.
// RoleTitle is free text as stored; callers classify it through
// model.ResolveRole and never compare it directly.
type Profile struct {
	UserID    int64     `json:"user_id"`
	FullName  string    `json:"full_name"`
	Location  string    `json:"location"`
	Phone     string    `json:"phone"`
	Website   string    `json:"website"`
	Linkedin  string    `json:"linkedin"`
	Instagram string    `json:"instagram"`
	Industry  string    `json:"industry"`
	Avatar    string    `json:"avatar"`
	RoleTitle string    `json:"role_title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Article is a community insight post. Content is sanitized HTML.
type Article struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	AuthorEmail string    `json:"author_email"`
	Category    string    `json:"category"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

// Announcement is an admin-published dashboard update.
type Announcement struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Webinar is an admin-published upcoming talk.
type Webinar struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Link        string    `json:"link"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Opportunity is an admin-curated listing (role, hackathon, certificate).
type Opportunity struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	Due         string    `json:"due"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	CreatedAt   time.Time `json:"created_at"`
}

// Project is a member-submitted project moving through the
// pending/approved/rejected moderation lifecycle.
type Project struct {
	ID          int64         `json:"id"`
	RepoURL     string        `json:"repo_url"`
	LiveURL     string        `json:"live_url"`
	Status      string        `json:"status"`
	SubmitterID sql.NullInt64 `json:"submitter_id,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Event is an audit log entry.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	IpAddress string
	Metadata  string // JSON string
	CreatedAt time.Time
}

// PasswordResetToken is a single-use credential recovery token.
type PasswordResetToken struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}
