package store

import "context"

const createArticle = `
INSERT INTO articles (title, slug, author_email, category, content)
VALUES (?, ?, ?, ?, ?)
RETURNING id, title, slug, author_email, category, content, created_at
`

// CreateArticleParams holds the fields for publishing an article.
type CreateArticleParams struct {
	Title       string
	Slug        string
	AuthorEmail string
	Category    string
	Content     string
}

// CreateArticle inserts a new article and returns the created row.
func (q *Queries) CreateArticle(ctx context.Context, arg CreateArticleParams) (Article, error) {
	row := q.db.QueryRowContext(ctx, createArticle,
		arg.Title, arg.Slug, arg.AuthorEmail, arg.Category, arg.Content)
	var a Article
	err := row.Scan(&a.ID, &a.Title, &a.Slug, &a.AuthorEmail, &a.Category, &a.Content, &a.CreatedAt)
	return a, err
}

const getArticleByID = `
SELECT id, title, slug, author_email, category, content, created_at
FROM articles WHERE id = ?
`

// GetArticleByID returns the article with the given ID, or sql.ErrNoRows.
func (q *Queries) GetArticleByID(ctx context.Context, id int64) (Article, error) {
	row := q.db.QueryRowContext(ctx, getArticleByID, id)
	var a Article
	err := row.Scan(&a.ID, &a.Title, &a.Slug, &a.AuthorEmail, &a.Category, &a.Content, &a.CreatedAt)
	return a, err
}

const getArticleBySlug = `
SELECT id, title, slug, author_email, category, content, created_at
FROM articles WHERE slug = ?
`

// GetArticleBySlug returns the article with the given slug, or sql.ErrNoRows.
func (q *Queries) GetArticleBySlug(ctx context.Context, slug string) (Article, error) {
	row := q.db.QueryRowContext(ctx, getArticleBySlug, slug)
	var a Article
	err := row.Scan(&a.ID, &a.Title, &a.Slug, &a.AuthorEmail, &a.Category, &a.Content, &a.CreatedAt)
	return a, err
}

const listArticles = `
SELECT id, title, slug, author_email, category, content, created_at
FROM articles ORDER BY created_at DESC, id DESC
`

// ListArticles returns all articles, newest first.
func (q *Queries) ListArticles(ctx context.Context) ([]Article, error) {
	rows, err := q.db.QueryContext(ctx, listArticles)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Article
	for rows.Next() {
		var a Article
		if err := rows.Scan(&a.ID, &a.Title, &a.Slug, &a.AuthorEmail, &a.Category, &a.Content, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

const searchArticles = `
SELECT id, title, slug, author_email, category, content, created_at
FROM articles
WHERE title LIKE '%' || ? || '%' OR content LIKE '%' || ? || '%'
ORDER BY created_at DESC, id DESC
`

// SearchArticles returns articles whose title or content contains the
// query, newest first. Matching is case-insensitive for ASCII.
func (q *Queries) SearchArticles(ctx context.Context, query string) ([]Article, error) {
	rows, err := q.db.QueryContext(ctx, searchArticles, query, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Article
	for rows.Next() {
		var a Article
		if err := rows.Scan(&a.ID, &a.Title, &a.Slug, &a.AuthorEmail, &a.Category, &a.Content, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

const deleteArticle = `DELETE FROM articles WHERE id = ?`

// DeleteArticle removes the article with the given ID.
func (q *Queries) DeleteArticle(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteArticle, id)
	return err
}
