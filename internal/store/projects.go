package store

import (
	"context"
	"database/sql"
)

const createProject = `
INSERT INTO projects (repo_url, live_url, status, submitter_id)
VALUES (?, ?, ?, ?)
RETURNING id, repo_url, live_url, status, submitter_id, created_at
`

// CreateProjectParams holds the fields for submitting a project.
type CreateProjectParams struct {
	RepoURL     string
	LiveURL     string
	Status      string
	SubmitterID sql.NullInt64
}

// CreateProject inserts a new project and returns the created row.
func (q *Queries) CreateProject(ctx context.Context, arg CreateProjectParams) (Project, error) {
	row := q.db.QueryRowContext(ctx, createProject,
		arg.RepoURL, arg.LiveURL, arg.Status, arg.SubmitterID)
	var p Project
	err := row.Scan(&p.ID, &p.RepoURL, &p.LiveURL, &p.Status, &p.SubmitterID, &p.CreatedAt)
	return p, err
}

const getProjectByID = `
SELECT id, repo_url, live_url, status, submitter_id, created_at
FROM projects WHERE id = ?
`

// GetProjectByID returns the project with the given ID, or sql.ErrNoRows.
func (q *Queries) GetProjectByID(ctx context.Context, id int64) (Project, error) {
	row := q.db.QueryRowContext(ctx, getProjectByID, id)
	var p Project
	err := row.Scan(&p.ID, &p.RepoURL, &p.LiveURL, &p.Status, &p.SubmitterID, &p.CreatedAt)
	return p, err
}

const listProjectsByStatus = `
SELECT id, repo_url, live_url, status, submitter_id, created_at
FROM projects WHERE status = ?
ORDER BY created_at DESC, id DESC
`

// ListProjectsByStatus returns projects in the given lifecycle state,
// newest first.
func (q *Queries) ListProjectsByStatus(ctx context.Context, status string) ([]Project, error) {
	rows, err := q.db.QueryContext(ctx, listProjectsByStatus, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.RepoURL, &p.LiveURL, &p.Status, &p.SubmitterID, &p.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const updateProjectStatus = `
UPDATE projects SET status = ? WHERE id = ?
`

// UpdateProjectStatus moves a project to a new lifecycle state.
func (q *Queries) UpdateProjectStatus(ctx context.Context, id int64, status string) error {
	res, err := q.db.ExecContext(ctx, updateProjectStatus, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

const deleteProject = `DELETE FROM projects WHERE id = ?`

// DeleteProject removes the project with the given ID.
func (q *Queries) DeleteProject(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, deleteProject, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
