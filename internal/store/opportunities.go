package store

import "context"

const createOpportunity = `
INSERT INTO opportunities (name, category, status, due, description, link)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, name, category, status, due, description, link, created_at
`

// CreateOpportunityParams holds the fields for listing an opportunity.
type CreateOpportunityParams struct {
	Name        string
	Category    string
	Status      string
	Due         string
	Description string
	Link        string
}

// CreateOpportunity inserts a new opportunity and returns the created row.
func (q *Queries) CreateOpportunity(ctx context.Context, arg CreateOpportunityParams) (Opportunity, error) {
	row := q.db.QueryRowContext(ctx, createOpportunity,
		arg.Name, arg.Category, arg.Status, arg.Due, arg.Description, arg.Link)
	var o Opportunity
	err := row.Scan(&o.ID, &o.Name, &o.Category, &o.Status, &o.Due, &o.Description, &o.Link, &o.CreatedAt)
	return o, err
}

const getOpportunityByID = `
SELECT id, name, category, status, due, description, link, created_at
FROM opportunities WHERE id = ?
`

// GetOpportunityByID returns the opportunity with the given ID, or sql.ErrNoRows.
func (q *Queries) GetOpportunityByID(ctx context.Context, id int64) (Opportunity, error) {
	row := q.db.QueryRowContext(ctx, getOpportunityByID, id)
	var o Opportunity
	err := row.Scan(&o.ID, &o.Name, &o.Category, &o.Status, &o.Due, &o.Description, &o.Link, &o.CreatedAt)
	return o, err
}

const listOpportunities = `
SELECT id, name, category, status, due, description, link, created_at
FROM opportunities ORDER BY created_at DESC, id DESC
`

// ListOpportunities returns all opportunities, newest first.
func (q *Queries) ListOpportunities(ctx context.Context) ([]Opportunity, error) {
	rows, err := q.db.QueryContext(ctx, listOpportunities)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Opportunity
	for rows.Next() {
		var o Opportunity
		if err := rows.Scan(&o.ID, &o.Name, &o.Category, &o.Status, &o.Due, &o.Description, &o.Link, &o.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

const deleteOpportunity = `DELETE FROM opportunities WHERE id = ?`

// DeleteOpportunity removes the opportunity with the given ID.
func (q *Queries) DeleteOpportunity(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteOpportunity, id)
	return err
}
