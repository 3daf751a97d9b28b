package store

import (
	"context"
	"time"
)

const createWebinar = `
INSERT INTO webinars (title, date, link, description)
VALUES (?, ?, ?, ?)
RETURNING id, title, date, link, description, created_at
`

// CreateWebinarParams holds the fields for listing a webinar.
type CreateWebinarParams struct {
	Title       string
	Date        time.Time
	Link        string
	Description string
}

// CreateWebinar inserts a new webinar and returns the created row.
func (q *Queries) CreateWebinar(ctx context.Context, arg CreateWebinarParams) (Webinar, error) {
	row := q.db.QueryRowContext(ctx, createWebinar, arg.Title, arg.Date, arg.Link, arg.Description)
	var w Webinar
	err := row.Scan(&w.ID, &w.Title, &w.Date, &w.Link, &w.Description, &w.CreatedAt)
	return w, err
}

const getWebinarByID = `
SELECT id, title, date, link, description, created_at
FROM webinars WHERE id = ?
`

// GetWebinarByID returns the webinar with the given ID, or sql.ErrNoRows.
func (q *Queries) GetWebinarByID(ctx context.Context, id int64) (Webinar, error) {
	row := q.db.QueryRowContext(ctx, getWebinarByID, id)
	var w Webinar
	err := row.Scan(&w.ID, &w.Title, &w.Date, &w.Link, &w.Description, &w.CreatedAt)
	return w, err
}

const listWebinars = `
SELECT id, title, date, link, description, created_at
FROM webinars ORDER BY date ASC, id ASC
`

// ListWebinars returns all webinars ordered by event date.
func (q *Queries) ListWebinars(ctx context.Context) ([]Webinar, error) {
	rows, err := q.db.QueryContext(ctx, listWebinars)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Webinar
	for rows.Next() {
		var w Webinar
		if err := rows.Scan(&w.ID, &w.Title, &w.Date, &w.Link, &w.Description, &w.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, w)
	}
	return items, rows.Err()
}

const deleteWebinar = `DELETE FROM webinars WHERE id = ?`

// DeleteWebinar removes the webinar with the given ID.
func (q *Queries) DeleteWebinar(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteWebinar, id)
	return err
}
