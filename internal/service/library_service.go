package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/models"
	"github.com/noah-isme/coursehub-api/internal/repository"
	appErrors "github.com/noah-isme/coursehub-api/pkg/errors"
)

type authorRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Author, error)
	FindByEmail(ctx context.Context, email string) (*models.Author, error)
	List(ctx context.Context, page models.PageRequest) ([]models.Author, int, error)
	Create(ctx context.Context, author *models.Author) error
	Update(ctx context.Context, author *models.Author) error
	Delete(ctx context.Context, id int64) error
}

type bookRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Book, error)
	FindByTitle(ctx context.Context, title string) (*models.Book, error)
	List(ctx context.Context, page models.PageRequest) ([]models.Book, int, error)
	ByAuthor(ctx context.Context, authorIDs []int64) (map[int64][]models.Book, error)
	Create(ctx context.Context, book *models.Book) error
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id int64) error
}

type chapterRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Chapter, error)
	FindByTitle(ctx context.Context, title string) (*models.Chapter, error)
	List(ctx context.Context, page models.PageRequest) ([]models.Chapter, int, error)
	Create(ctx context.Context, chapter *models.Chapter) error
	Update(ctx context.Context, chapter *models.Chapter) error
	Delete(ctx context.Context, id int64) error
}

// LibraryService manages authors, books and chapters.
type LibraryService struct {
	authors   authorRepository
	books     bookRepository
	chapters  chapterRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLibraryService constructs a LibraryService.
func NewLibraryService(authors authorRepository, books bookRepository, chapters chapterRepository, validate *validator.Validate, logger *zap.Logger) *LibraryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &LibraryService{authors: authors, books: books, chapters: chapters, validator: validate, logger: logger}
}

// CreateAuthor registers an author with a unique email.
func (s *LibraryService) CreateAuthor(ctx context.Context, req dto.AuthorRequest) (*models.Author, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid author payload")
	}
	if err := s.ensureAuthorEmailFree(ctx, req.Email, 0); err != nil {
		return nil, err
	}

	author := &models.Author{Name: req.Name, Email: req.Email}
	if err := s.authors.Create(ctx, author); err != nil {
		return nil, writeError(err, "email already registered", "failed to create author")
	}
	return author, nil
}

// ListAuthors returns a page of authors with their books.
func (s *LibraryService) ListAuthors(ctx context.Context, page models.PageRequest) ([]models.AuthorDetail, *models.Pagination, error) {
	authors, total, err := s.authors.List(ctx, page)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list authors")
	}
	details, err := s.withBooks(ctx, authors)
	if err != nil {
		return nil, nil, err
	}
	return details, newPagination(page.Page, page.PageSize, total), nil
}

// GetAuthor returns an author with their books.
func (s *LibraryService) GetAuthor(ctx context.Context, id int64) (*models.AuthorDetail, error) {
	author, err := s.authors.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, appErrors.ErrNotFound, "author")
	}
	details, err := s.withBooks(ctx, []models.Author{*author})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (s *LibraryService) withBooks(ctx context.Context, authors []models.Author) ([]models.AuthorDetail, error) {
	ids := make([]int64, 0, len(authors))
	for _, a := range authors {
		ids = append(ids, a.ID)
	}
	byAuthor, err := s.books.ByAuthor(ctx, ids)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load author books")
	}

	details := make([]models.AuthorDetail, 0, len(authors))
	for _, a := range authors {
		books := byAuthor[a.ID]
		if books == nil {
			books = []models.Book{}
		}
		details = append(details, models.AuthorDetail{Author: a, Books: books})
	}
	return details, nil
}

// UpdateAuthor replaces name and email.
func (s *LibraryService) UpdateAuthor(ctx context.Context, id int64, req dto.AuthorRequest) (*models.Author, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid author payload")
	}
	author, err := s.authors.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, appErrors.ErrNotFound, "author")
	}
	if err := s.ensureAuthorEmailFree(ctx, req.Email, id); err != nil {
		return nil, err
	}

	author.Name = req.Name
	author.Email = req.Email
	if err := s.authors.Update(ctx, author); err != nil {
		return nil, writeError(err, "email already registered", "failed to update author")
	}
	return author, nil
}

// DeleteAuthor removes an author; their books remain without an author.
func (s *LibraryService) DeleteAuthor(ctx context.Context, id int64) error {
	return deleteError(s.authors.Delete(ctx, id), "author")
}

func (s *LibraryService) ensureAuthorEmailFree(ctx context.Context, email string, selfID int64) error {
	existing, err := s.authors.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Internal(err, "failed to check author email")
	}
	if existing.ID != selfID {
		return appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}
	return nil
}

// CreateBook adds a book for an existing author.
func (s *LibraryService) CreateBook(ctx context.Context, req dto.BookRequest) (*models.Book, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid book payload")
	}
	if _, err := s.authors.FindByID(ctx, req.AuthorID); err != nil {
		return nil, lookupError(err, appErrors.ErrNotFound, "author")
	}
	if err := s.ensureBookTitleFree(ctx, req.Title, 0); err != nil {
		return nil, err
	}

	authorID := req.AuthorID
	book := &models.Book{Title: req.Title, Description: req.Description, AuthorID: &authorID}
	if err := s.books.Create(ctx, book); err != nil {
		return nil, writeError(err, "book title already exists", "failed to create book")
	}
	return book, nil
}

// ListBooks returns a page of books.
func (s *LibraryService) ListBooks(ctx context.Context, page models.PageRequest) ([]models.Book, *models.Pagination, error) {
	books, total, err := s.books.List(ctx, page)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list books")
	}
	return books, newPagination(page.Page, page.PageSize, total), nil
}

// GetBook returns a book by ID.
func (s *LibraryService) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, appErrors.ErrNotFound, "book")
	}
	return book, nil
}

// UpdateBook replaces every field of a book.
func (s *LibraryService) UpdateBook(ctx context.Context, id int64, req dto.BookRequest) (*models.Book, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid book payload")
	}
	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, appErrors.ErrNotFound, "book")
	}
	if _, err := s.authors.FindByID(ctx, req.AuthorID); err != nil {
		return nil, lookupError(err, appErrors.ErrNotFound, "author")
	}
	if err := s.ensureBookTitleFree(ctx, req.Title, id); err != nil {
		return nil, err
	}

	authorID := req.AuthorID
	book.Title = req.Title
	book.Description = req.Description
	book.AuthorID = &authorID
	if err := s.books.Update(ctx, book); err != nil {
		return nil, writeError(err, "book title already exists", "failed to update book")
	}
	return book, nil
}

// DeleteBook removes a book; its chapters remain without a book.
func (s *LibraryService) DeleteBook(ctx context.Context, id int64) error {
	return deleteError(s.books.Delete(ctx, id), "book")
}

func (s *LibraryService) ensureBookTitleFree(ctx context.Context, title string, selfID int64) error {
	existing, err := s.books.FindByTitle(ctx, title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Internal(err, "failed to check book title")
	}
	if existing.ID != selfID {
		return appErrors.Clone(appErrors.ErrConflict, "book title already exists")
	}
	return nil
}

// CreateChapter adds a chapter to an existing book.
func (s *LibraryService) CreateChapter(ctx context.Context, req dto.ChapterRequest) (*models.Chapter, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid chapter payload")
	}
	if _, err := s.books.FindByID(ctx, req.BookID); err != nil {
		return nil, lookupError(err, appErrors.ErrNotFound, "book")
	}
	if err := s.ensureChapterTitleFree(ctx, req.Title, 0); err != nil {
		return nil, err
	}

	bookID := req.BookID
	chapter := &models.Chapter{Title: req.Title, Content: req.Content, BookID: &bookID}
	if err := s.chapters.Create(ctx, chapter); err != nil {
		return nil, writeError(err, "chapter title already exists", "failed to create chapter")
	}
	return chapter, nil
}

// ListChapters returns a page of chapters.
func (s *LibraryService) ListChapters(ctx context.Context, page models.PageRequest) ([]models.Chapter, *models.Pagination, error) {
	chapters, total, err := s.chapters.List(ctx, page)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list chapters")
	}
	return chapters, newPagination(page.Page, page.PageSize, total), nil
}

// GetChapter returns a chapter by ID.
func (s *LibraryService) GetChapter(ctx context.Context, id int64) (*models.Chapter, error) {
	chapter, err := s.chapters.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, appErrors.ErrNotFound, "chapter")
	}
	return chapter, nil
}

// UpdateChapter replaces every field of a chapter.
func (s *LibraryService) UpdateChapter(ctx context.Context, id int64, req dto.ChapterRequest) (*models.Chapter, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid chapter payload")
	}
	chapter, err := s.chapters.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, appErrors.ErrNotFound, "chapter")
	}
	if _, err := s.books.FindByID(ctx, req.BookID); err != nil {
		return nil, lookupError(err, appErrors.ErrNotFound, "book")
	}
	if err := s.ensureChapterTitleFree(ctx, req.Title, id); err != nil {
		return nil, err
	}

	bookID := req.BookID
	chapter.Title = req.Title
	chapter.Content = req.Content
	chapter.BookID = &bookID
	if err := s.chapters.Update(ctx, chapter); err != nil {
		return nil, writeError(err, "chapter title already exists", "failed to update chapter")
	}
	return chapter, nil
}

// DeleteChapter removes a chapter.
func (s *LibraryService) DeleteChapter(ctx context.Context, id int64) error {
	return deleteError(s.chapters.Delete(ctx, id), "chapter")
}

func (s *LibraryService) ensureChapterTitleFree(ctx context.Context, title string, selfID int64) error {
	existing, err := s.chapters.FindByTitle(ctx, title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Internal(err, "failed to check chapter title")
	}
	if existing.ID != selfID {
		return appErrors.Clone(appErrors.ErrConflict, "chapter title already exists")
	}
	return nil
}

// writeError maps a repository write failure: unique violations become
// Conflict, a vanished row becomes NotFound.
func writeError(err error, conflict, internal string) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return appErrors.Clone(appErrors.ErrConflict, conflict)
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, "")
	}
	return appErrors.Internal(err, internal)
}

func deleteError(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, entity+" not found")
	}
	return appErrors.Internal(err, "failed to delete "+entity)
}
