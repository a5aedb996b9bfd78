package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coursehub-api/internal/models"
)

const blogUserColumns = "id, username, email, is_active"

// BlogUserRepository provides database access for blog accounts.
type BlogUserRepository struct {
	db *sqlx.DB
}

// NewBlogUserRepository constructs a BlogUserRepository.
func NewBlogUserRepository(db *sqlx.DB) *BlogUserRepository {
	return &BlogUserRepository{db: db}
}

// FindByID returns a blog user by identifier.
func (r *BlogUserRepository) FindByID(ctx context.Context, id int64) (*models.BlogUser, error) {
	var user models.BlogUser
	if err := getOne(ctx, r.db, &user, "find blog user by id", `SELECT `+blogUserColumns+` FROM users WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername returns a blog user by username.
func (r *BlogUserRepository) FindByUsername(ctx context.Context, username string) (*models.BlogUser, error) {
	var user models.BlogUser
	if err := getOne(ctx, r.db, &user, "find blog user by username", `SELECT `+blogUserColumns+` FROM users WHERE username = $1`, username); err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns a page of blog users and the total count.
func (r *BlogUserRepository) List(ctx context.Context, page models.PageRequest) ([]models.BlogUser, int, error) {
	users := []models.BlogUser{}
	total, err := listPage(ctx, r.db, &users, "users", blogUserColumns, page)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Create inserts a blog user and sets its generated ID.
func (r *BlogUserRepository) Create(ctx context.Context, user *models.BlogUser) error {
	const query = `INSERT INTO users (username, email, is_active) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, user.Username, user.Email, user.IsActive).Scan(&user.ID); err != nil {
		return wrapWriteErr("create blog user", err)
	}
	return nil
}

// Update persists every mutable column.
func (r *BlogUserRepository) Update(ctx context.Context, user *models.BlogUser) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET username = $2, email = $3, is_active = $4 WHERE id = $1`, user.ID, user.Username, user.Email, user.IsActive)
	if err != nil {
		return wrapWriteErr("update blog user", err)
	}
	return requireAffected(res, "update blog user")
}

// Delete removes a blog user; the schema cascades to their posts.
func (r *BlogUserRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "users", id)
}

const postColumns = "id, title, content, user_id"

// PostRepository provides database access for posts.
type PostRepository struct {
	db *sqlx.DB
}

// NewPostRepository constructs a PostRepository.
func NewPostRepository(db *sqlx.DB) *PostRepository {
	return &PostRepository{db: db}
}

// FindByID returns a post by identifier.
func (r *PostRepository) FindByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	if err := getOne(ctx, r.db, &post, "find post by id", `SELECT `+postColumns+` FROM posts WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &post, nil
}

// List returns a page of posts and the total count.
func (r *PostRepository) List(ctx context.Context, page models.PageRequest) ([]models.Post, int, error) {
	posts := []models.Post{}
	total, err := listPage(ctx, r.db, &posts, "posts", postColumns, page)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// ByUser returns the posts of each of the given users.
func (r *PostRepository) ByUser(ctx context.Context, userIDs []int64) (map[int64][]models.Post, error) {
	result := make(map[int64][]models.Post, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}
	query, args, err := buildQuery(psql.Select(postColumns).From("posts").
		Where(squirrel.Eq{"user_id": userIDs}).OrderBy("id ASC"))
	if err != nil {
		return nil, err
	}
	var posts []models.Post
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("list user posts: %w", err)
	}
	for _, p := range posts {
		result[p.UserID] = append(result[p.UserID], p)
	}
	return result, nil
}

// Create inserts a post and sets its generated ID.
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	const query = `INSERT INTO posts (title, content, user_id) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, post.Title, post.Content, post.UserID).Scan(&post.ID); err != nil {
		return wrapWriteErr("create post", err)
	}
	return nil
}

// Update persists every mutable column.
func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	res, err := r.db.ExecContext(ctx, `UPDATE posts SET title = $2, content = $3, user_id = $4 WHERE id = $1`, post.ID, post.Title, post.Content, post.UserID)
	if err != nil {
		return wrapWriteErr("update post", err)
	}
	return requireAffected(res, "update post")
}

// Delete removes a post.
func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "posts", id)
}
