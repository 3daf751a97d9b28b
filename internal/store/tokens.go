package store

import (
	"context"
	"time"
)

const createPasswordResetToken = `
INSERT INTO password_reset_tokens (token, user_id, expires_at)
VALUES (?, ?, ?)
`

// CreatePasswordResetTokenParams holds the fields for issuing a reset token.
type CreatePasswordResetTokenParams struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
}

// CreatePasswordResetToken stores a new password reset token.
func (q *Queries) CreatePasswordResetToken(ctx context.Context, arg CreatePasswordResetTokenParams) error {
	_, err := q.db.ExecContext(ctx, createPasswordResetToken, arg.Token, arg.UserID, arg.ExpiresAt)
	return err
}

const getPasswordResetToken = `
SELECT token, user_id, expires_at, used, created_at
FROM password_reset_tokens WHERE token = ?
`

// GetPasswordResetToken returns the token row, or sql.ErrNoRows.
func (q *Queries) GetPasswordResetToken(ctx context.Context, token string) (PasswordResetToken, error) {
	row := q.db.QueryRowContext(ctx, getPasswordResetToken, token)
	var t PasswordResetToken
	err := row.Scan(&t.Token, &t.UserID, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	return t, err
}

const markPasswordResetTokenUsed = `
UPDATE password_reset_tokens SET used = 1 WHERE token = ?
`

// MarkPasswordResetTokenUsed invalidates a token after a successful reset.
func (q *Queries) MarkPasswordResetTokenUsed(ctx context.Context, token string) error {
	_, err := q.db.ExecContext(ctx, markPasswordResetTokenUsed, token)
	return err
}

const deleteExpiredPasswordResetTokens = `
DELETE FROM password_reset_tokens WHERE expires_at < ? OR used = 1
`

// DeleteExpiredPasswordResetTokens purges spent and expired tokens and
// returns the number of rows removed.
func (q *Queries) DeleteExpiredPasswordResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpiredPasswordResetTokens, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
