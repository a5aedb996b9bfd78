package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coursehub-api/internal/models"
)

func TestAuthorRepositoryListPage(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAuthorRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email FROM authors ORDER BY id ASC LIMIT 10 OFFSET 10")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).AddRow(11, "Ann", "ann@example.com"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM authors")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	authors, total, err := repo.List(context.Background(), models.PageRequest{Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, authors, 1)
	assert.Equal(t, 11, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthorRepositoryCreateDuplicateEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAuthorRepository(db)

	mock.ExpectQuery("INSERT INTO authors").
		WithArgs("Ann", "ann@example.com").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.Author{Name: "Ann", Email: "ann@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepositoryByAuthor(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBookRepository(db)

	mock.ExpectQuery(`SELECT id, title, description, author_id FROM books WHERE author_id IN \(\$1\)`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "author_id"}).
			AddRow(1, "Dune", "", 1).
			AddRow(2, "Emma", "", 1))

	books, err := repo.ByAuthor(context.Background(), []int64{1})
	require.NoError(t, err)
	assert.Len(t, books[1], 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChapterRepositoryFindByTitleNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewChapterRepository(db)

	mock.ExpectQuery("FROM chapters WHERE title = \\$1").
		WithArgs("Prologue").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "book_id"}))

	_, err := repo.FindByTitle(context.Background(), "Prologue")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlogUserRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBlogUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).WithArgs(int64(4)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).WithArgs(int64(4)).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), 4))
	assert.ErrorIs(t, repo.Delete(context.Background(), 4), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepositoryUpdateAndByUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPostRepository(db)

	mock.ExpectExec("UPDATE posts SET title = \\$2, content = \\$3, user_id = \\$4 WHERE id = \\$1").
		WithArgs(int64(1), "Hello", "World", int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM posts WHERE user_id IN \(\$1,\$2\)`).
		WithArgs(int64(2), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "user_id"}).AddRow(1, "Hello", "World", 2))

	require.NoError(t, repo.Update(context.Background(), &models.Post{ID: 1, Title: "Hello", Content: "World", UserID: 2}))

	byUser, err := repo.ByUser(context.Background(), []int64{2, 3})
	require.NoError(t, err)
	assert.Len(t, byUser[2], 1)
	assert.Empty(t, byUser[3])
	assert.NoError(t, mock.ExpectationsWereMet())
}
