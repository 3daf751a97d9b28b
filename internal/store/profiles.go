package store

import "context"

const createProfile = `
INSERT INTO profiles (user_id, full_name, avatar, role_title)
VALUES (?, ?, ?, ?)
`

// CreateProfileParams holds the initial profile fields set at signup.
type CreateProfileParams struct {
	UserID    int64
	FullName  string
	Avatar    string
	RoleTitle string
}

// CreateProfile inserts an empty profile row for a new user.
func (q *Queries) CreateProfile(ctx context.Context, arg CreateProfileParams) error {
	_, err := q.db.ExecContext(ctx, createProfile, arg.UserID, arg.FullName, arg.Avatar, arg.RoleTitle)
	return err
}

const getProfile = `
SELECT user_id, full_name, location, phone, website, linkedin, instagram,
       industry, avatar, role_title, updated_at
FROM profiles WHERE user_id = ?
`

// GetProfile returns the profile for the given user, or sql.ErrNoRows.
func (q *Queries) GetProfile(ctx context.Context, userID int64) (Profile, error) {
	row := q.db.QueryRowContext(ctx, getProfile, userID)
	var p Profile
	err := row.Scan(&p.UserID, &p.FullName, &p.Location, &p.Phone, &p.Website,
		&p.Linkedin, &p.Instagram, &p.Industry, &p.Avatar, &p.RoleTitle, &p.UpdatedAt)
	return p, err
}

const updateProfile = `
UPDATE profiles SET
    full_name = ?, location = ?, phone = ?, website = ?, linkedin = ?,
    instagram = ?, industry = ?, avatar = ?, role_title = ?,
    updated_at = CURRENT_TIMESTAMP
WHERE user_id = ?
`

// UpdateProfileParams holds the full set of editable profile fields.
type UpdateProfileParams struct {
	UserID    int64
	FullName  string
	Location  string
	Phone     string
	Website   string
	Linkedin  string
	Instagram string
	Industry  string
	Avatar    string
	RoleTitle string
}

// UpdateProfile replaces all editable profile fields.
func (q *Queries) UpdateProfile(ctx context.Context, arg UpdateProfileParams) error {
	_, err := q.db.ExecContext(ctx, updateProfile,
		arg.FullName, arg.Location, arg.Phone, arg.Website, arg.Linkedin,
		arg.Instagram, arg.Industry, arg.Avatar, arg.RoleTitle, arg.UserID)
	return err
}
