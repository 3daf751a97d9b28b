package store

import "context"

const createAnnouncement = `
INSERT INTO announcements (title, content)
VALUES (?, ?)
RETURNING id, title, content, created_at
`

// CreateAnnouncementParams holds the fields for posting an announcement.
type CreateAnnouncementParams struct {
	Title   string
	Content string
}

// CreateAnnouncement inserts a new announcement and returns the created row.
func (q *Queries) CreateAnnouncement(ctx context.Context, arg CreateAnnouncementParams) (Announcement, error) {
	row := q.db.QueryRowContext(ctx, createAnnouncement, arg.Title, arg.Content)
	var a Announcement
	err := row.Scan(&a.ID, &a.Title, &a.Content, &a.CreatedAt)
	return a, err
}

const getAnnouncementByID = `
SELECT id, title, content, created_at
FROM announcements WHERE id = ?
`

// GetAnnouncementByID returns the announcement with the given ID, or sql.ErrNoRows.
func (q *Queries) GetAnnouncementByID(ctx context.Context, id int64) (Announcement, error) {
	row := q.db.QueryRowContext(ctx, getAnnouncementByID, id)
	var a Announcement
	err := row.Scan(&a.ID, &a.Title, &a.Content, &a.CreatedAt)
	return a, err
}

const listAnnouncements = `
SELECT id, title, content, created_at
FROM announcements ORDER BY created_at DESC, id DESC
`

// ListAnnouncements returns all announcements, newest first.
func (q *Queries) ListAnnouncements(ctx context.Context) ([]Announcement, error) {
	rows, err := q.db.QueryContext(ctx, listAnnouncements)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Announcement
	for rows.Next() {
		var a Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

const deleteAnnouncement = `DELETE FROM announcements WHERE id = ?`

// DeleteAnnouncement removes the announcement with the given ID.
func (q *Queries) DeleteAnnouncement(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteAnnouncement, id)
	return err
}
