package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/models"
	appErrors "github.com/noah-isme/coursehub-api/pkg/errors"
)

type blogUserRepository interface {
	FindByID(ctx context.Context, id int64) (*models.BlogUser, error)
	FindByUsername(ctx context.Context, username string) (*models.BlogUser, error)
	List(ctx context.Context, page models.PageRequest) ([]models.BlogUser, int, error)
	Create(ctx context.Context, user *models.BlogUser) error
	Update(ctx context.Context, user *models.BlogUser) error
	Delete(ctx context.Context, id int64) error
}

type postRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Post, error)
	List(ctx context.Context, page models.PageRequest) ([]models.Post, int, error)
	ByUser(ctx context.Context, userIDs []int64) (map[int64][]models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id int64) error
}

// BlogService manages blog accounts and their posts.
type BlogService struct {
	users     blogUserRepository
	posts     postRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBlogService constructs a BlogService.
func NewBlogService(users blogUserRepository, posts postRepository, validate *validator.Validate, logger *zap.Logger) *BlogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &BlogService{users: users, posts: posts, validator: validate, logger: logger}
}

// CreateUser registers a blog account with a unique username.
func (s *BlogService) CreateUser(ctx context.Context, req dto.BlogUserRequest) (*models.BlogUser, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid user payload")
	}
	if err := s.ensureUsernameFree(ctx, req.Username, 0); err != nil {
		return nil, err
	}

	user := &models.BlogUser{Username: req.Username, Email: req.Email, IsActive: true}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, writeError(err, "username already taken", "failed to create user")
	}
	return user, nil
}

// ListUsers returns a page of blog users with their posts.
func (s *BlogService) ListUsers(ctx context.Context, page models.PageRequest) ([]models.BlogUserDetail, *models.Pagination, error) {
	users, total, err := s.users.List(ctx, page)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list users")
	}
	details, err := s.withPosts(ctx, users)
	if err != nil {
		return nil, nil, err
	}
	return details, newPagination(page.Page, page.PageSize, total), nil
}

// GetUser returns a blog user with their posts.
func (s *BlogService) GetUser(ctx context.Context, id int64) (*models.BlogUserDetail, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, appErrors.ErrNotFound, "user")
	}
	details, err := s.withPosts(ctx, []models.BlogUser{*user})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (s *BlogService) withPosts(ctx context.Context, users []models.BlogUser) ([]models.BlogUserDetail, error) {
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	byUser, err := s.posts.ByUser(ctx, ids)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load user posts")
	}

	details := make([]models.BlogUserDetail, 0, len(users))
	for _, u := range users {
		posts := byUser[u.ID]
		if posts == nil {
			posts = []models.Post{}
		}
		details = append(details, models.BlogUserDetail{BlogUser: u, Posts: posts})
	}
	return details, nil
}

// UpdateUser replaces username, email and, when given, the active flag.
func (s *BlogService) UpdateUser(ctx context.Context, id int64, req dto.BlogUserRequest) (*models.BlogUser, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid user payload")
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, appErrors.ErrNotFound, "user")
	}
	if err := s.ensureUsernameFree(ctx, req.Username, id); err != nil {
		return nil, err
	}

	user.Username = req.Username
	user.Email = req.Email
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, writeError(err, "username already taken", "failed to update user")
	}
	return user, nil
}

// DeleteUser removes a blog user together with their posts and returns the user.
func (s *BlogService) DeleteUser(ctx context.Context, id int64) (*models.BlogUser, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, appErrors.ErrNotFound, "user")
	}
	if err := deleteError(s.users.Delete(ctx, id), "user"); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *BlogService) ensureUsernameFree(ctx context.Context, username string, selfID int64) error {
	existing, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Internal(err, "failed to check username")
	}
	if existing.ID != selfID {
		return appErrors.Clone(appErrors.ErrConflict, "username already taken")
	}
	return nil
}

// CreatePost adds a post for an existing user.
func (s *BlogService) CreatePost(ctx context.Context, userID int64, req dto.CreatePostRequest) (*models.Post, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid post payload")
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, lookupError(err, appErrors.ErrNotFound, "user")
	}

	post := &models.Post{Title: req.Title, Content: req.Content, UserID: userID}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, appErrors.Internal(err, "failed to create post")
	}
	return post, nil
}

// ListPosts returns a page of posts.
func (s *BlogService) ListPosts(ctx context.Context, page models.PageRequest) ([]models.Post, *models.Pagination, error) {
	posts, total, err := s.posts.List(ctx, page)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list posts")
	}
	return posts, newPagination(page.Page, page.PageSize, total), nil
}

// GetPost returns a post by ID.
func (s *BlogService) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, appErrors.ErrNotFound, "post")
	}
	return post, nil
}

// UpdatePost replaces title, content and owner; the new owner must exist.
func (s *BlogService) UpdatePost(ctx context.Context, id int64, req dto.UpdatePostRequest) (*models.Post, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid post payload")
	}
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, appErrors.ErrNotFound, "post")
	}
	if _, err := s.users.FindByID(ctx, req.UserID); err != nil {
		return nil, lookupError(err, appErrors.ErrNotFound, "user")
	}

	post.Title = req.Title
	post.Content = req.Content
	post.UserID = req.UserID
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, writeError(err, "post conflicts with an existing one", "failed to update post")
	}
	return post, nil
}

// DeletePost removes a post.
func (s *BlogService) DeletePost(ctx context.Context, id int64) error {
	return deleteError(s.posts.Delete(ctx, id), "post")
}
