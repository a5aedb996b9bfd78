package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/models"
	appErrors "github.com/noah-isme/coursehub-api/pkg/errors"
)

type memBlog struct {
	users  map[int64]models.BlogUser
	posts  map[int64]models.Post
	nextID int64
}

type memBlogUsers struct{ *memBlog }

func (m memBlogUsers) FindByID(ctx context.Context, id int64) (*models.BlogUser, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (m memBlogUsers) FindByUsername(ctx context.Context, username string) (*models.BlogUser, error) {
	for _, u := range m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m memBlogUsers) List(ctx context.Context, page models.PageRequest) ([]models.BlogUser, int, error) {
	out := make([]models.BlogUser, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, len(out), nil
}

func (m memBlogUsers) Create(ctx context.Context, user *models.BlogUser) error {
	m.nextID++
	user.ID = m.nextID
	m.users[user.ID] = *user
	return nil
}

func (m memBlogUsers) Update(ctx context.Context, user *models.BlogUser) error {
	m.users[user.ID] = *user
	return nil
}

func (m memBlogUsers) Delete(ctx context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.users, id)
	for pid, p := range m.posts {
		if p.UserID == id {
			delete(m.posts, pid)
		}
	}
	return nil
}

type memPosts struct{ *memBlog }

func (m memPosts) FindByID(ctx context.Context, id int64) (*models.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

func (m memPosts) List(ctx context.Context, page models.PageRequest) ([]models.Post, int, error) {
	out := make([]models.Post, 0, len(m.posts))
	for _, p := range m.posts {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m memPosts) ByUser(ctx context.Context, userIDs []int64) (map[int64][]models.Post, error) {
	out := make(map[int64][]models.Post)
	for _, id := range userIDs {
		for _, p := range m.posts {
			if p.UserID == id {
				out[id] = append(out[id], p)
			}
		}
	}
	return out, nil
}

func (m memPosts) Create(ctx context.Context, post *models.Post) error {
	m.nextID++
	post.ID = m.nextID
	m.posts[post.ID] = *post
	return nil
}

func (m memPosts) Update(ctx context.Context, post *models.Post) error {
	m.posts[post.ID] = *post
	return nil
}

func (m memPosts) Delete(ctx context.Context, id int64) error {
	if _, ok := m.posts[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.posts, id)
	return nil
}

func newBlogFixture() (*BlogService, *memBlog) {
	blog := &memBlog{users: make(map[int64]models.BlogUser), posts: make(map[int64]models.Post)}
	return NewBlogService(memBlogUsers{blog}, memPosts{blog}, nil, nil), blog
}

func TestBlogServiceCreateUser(t *testing.T) {
	svc, _ := newBlogFixture()
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, dto.BlogUserRequest{Username: "ann", Email: "ann@example.com"})
	require.NoError(t, err)
	assert.True(t, user.IsActive)

	inactive := false
	other, err := svc.CreateUser(ctx, dto.BlogUserRequest{Username: "bob", Email: "bob@example.com", IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, other.IsActive)

	_, err = svc.CreateUser(ctx, dto.BlogUserRequest{Username: "ann", Email: "x@example.com"})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestBlogServiceUserWithPosts(t *testing.T) {
	svc, _ := newBlogFixture()
	ctx := context.Background()
	user, err := svc.CreateUser(ctx, dto.BlogUserRequest{Username: "ann", Email: "ann@example.com"})
	require.NoError(t, err)

	detail, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, detail.Posts)
	assert.Empty(t, detail.Posts)

	_, err = svc.CreatePost(ctx, user.ID, dto.CreatePostRequest{Title: "Hello", Content: "world"})
	require.NoError(t, err)

	detail, err = svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, detail.Posts, 1)
	assert.Equal(t, "Hello", detail.Posts[0].Title)
}

func TestBlogServiceDeleteUserCascades(t *testing.T) {
	svc, blog := newBlogFixture()
	ctx := context.Background()
	user, err := svc.CreateUser(ctx, dto.BlogUserRequest{Username: "ann", Email: "ann@example.com"})
	require.NoError(t, err)
	_, err = svc.CreatePost(ctx, user.ID, dto.CreatePostRequest{Title: "Hello", Content: "world"})
	require.NoError(t, err)

	deleted, err := svc.DeleteUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ann", deleted.Username)
	assert.Empty(t, blog.posts)

	_, err = svc.DeleteUser(ctx, user.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestBlogServicePosts(t *testing.T) {
	svc, _ := newBlogFixture()
	ctx := context.Background()
	ann, err := svc.CreateUser(ctx, dto.BlogUserRequest{Username: "ann", Email: "ann@example.com"})
	require.NoError(t, err)
	bob, err := svc.CreateUser(ctx, dto.BlogUserRequest{Username: "bob", Email: "bob@example.com"})
	require.NoError(t, err)

	_, err = svc.CreatePost(ctx, 999, dto.CreatePostRequest{Title: "x", Content: "y"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	post, err := svc.CreatePost(ctx, ann.ID, dto.CreatePostRequest{Title: "Hello", Content: "world"})
	require.NoError(t, err)

	moved, err := svc.UpdatePost(ctx, post.ID, dto.UpdatePostRequest{Title: "Hi", Content: "there", UserID: bob.ID})
	require.NoError(t, err)
	assert.Equal(t, bob.ID, moved.UserID)

	_, err = svc.UpdatePost(ctx, post.ID, dto.UpdatePostRequest{Title: "Hi", Content: "there", UserID: 999})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	require.NoError(t, svc.DeletePost(ctx, post.ID))
	assert.ErrorIs(t, svc.DeletePost(ctx, post.ID), appErrors.ErrNotFound)
}

func TestBlogServiceRejectsEmailOverColumnWidth(t *testing.T) {
	svc, blog := newBlogFixture()
	email := "ann@" + strings.Repeat(strings.Repeat("x", 60)+".", 5) + "com"

	_, err := svc.CreateUser(context.Background(), dto.BlogUserRequest{Username: "ann", Email: email})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, blog.users)
}
