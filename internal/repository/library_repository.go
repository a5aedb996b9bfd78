package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coursehub-api/internal/models"
)

// AuthorRepository provides database access for authors.
type AuthorRepository struct {
	db *sqlx.DB
}

// NewAuthorRepository constructs an AuthorRepository.
func NewAuthorRepository(db *sqlx.DB) *AuthorRepository {
	return &AuthorRepository{db: db}
}

// FindByID returns an author by identifier.
func (r *AuthorRepository) FindByID(ctx context.Context, id int64) (*models.Author, error) {
	var author models.Author
	if err := getOne(ctx, r.db, &author, "find author by id", `SELECT id, name, email FROM authors WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &author, nil
}

// FindByEmail returns an author by email.
func (r *AuthorRepository) FindByEmail(ctx context.Context, email string) (*models.Author, error) {
	var author models.Author
	if err := getOne(ctx, r.db, &author, "find author by email", `SELECT id, name, email FROM authors WHERE email = $1`, email); err != nil {
		return nil, err
	}
	return &author, nil
}

// List returns a page of authors and the total count.
func (r *AuthorRepository) List(ctx context.Context, page models.PageRequest) ([]models.Author, int, error) {
	authors := []models.Author{}
	total, err := listPage(ctx, r.db, &authors, "authors", "id, name, email", page)
	if err != nil {
		return nil, 0, err
	}
	return authors, total, nil
}

// Create inserts an author and sets its generated ID.
func (r *AuthorRepository) Create(ctx context.Context, author *models.Author) error {
	const query = `INSERT INTO authors (name, email) VALUES ($1, $2) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, author.Name, author.Email).Scan(&author.ID); err != nil {
		return wrapWriteErr("create author", err)
	}
	return nil
}

// Update persists name and email.
func (r *AuthorRepository) Update(ctx context.Context, author *models.Author) error {
	res, err := r.db.ExecContext(ctx, `UPDATE authors SET name = $2, email = $3 WHERE id = $1`, author.ID, author.Name, author.Email)
	if err != nil {
		return wrapWriteErr("update author", err)
	}
	return requireAffected(res, "update author")
}

// Delete removes an author; their books keep existing without an author.
func (r *AuthorRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "authors", id)
}

const bookColumns = "id, title, description, author_id"

// BookRepository provides database access for books.
type BookRepository struct {
	db *sqlx.DB
}

// NewBookRepository constructs a BookRepository.
func NewBookRepository(db *sqlx.DB) *BookRepository {
	return &BookRepository{db: db}
}

// FindByID returns a book by identifier.
func (r *BookRepository) FindByID(ctx context.Context, id int64) (*models.Book, error) {
	var book models.Book
	if err := getOne(ctx, r.db, &book, "find book by id", `SELECT `+bookColumns+` FROM books WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &book, nil
}

// FindByTitle returns a book by its unique title.
func (r *BookRepository) FindByTitle(ctx context.Context, title string) (*models.Book, error) {
	var book models.Book
	if err := getOne(ctx, r.db, &book, "find book by title", `SELECT `+bookColumns+` FROM books WHERE title = $1`, title); err != nil {
		return nil, err
	}
	return &book, nil
}

// List returns a page of books and the total count.
func (r *BookRepository) List(ctx context.Context, page models.PageRequest) ([]models.Book, int, error) {
	books := []models.Book{}
	total, err := listPage(ctx, r.db, &books, "books", bookColumns, page)
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

// ByAuthor returns the books of each of the given authors.
func (r *BookRepository) ByAuthor(ctx context.Context, authorIDs []int64) (map[int64][]models.Book, error) {
	result := make(map[int64][]models.Book, len(authorIDs))
	if len(authorIDs) == 0 {
		return result, nil
	}
	query, args, err := buildQuery(psql.Select(bookColumns).From("books").
		Where(squirrel.Eq{"author_id": authorIDs}).OrderBy("id ASC"))
	if err != nil {
		return nil, err
	}
	var books []models.Book
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, fmt.Errorf("list author books: %w", err)
	}
	for _, b := range books {
		if b.AuthorID != nil {
			result[*b.AuthorID] = append(result[*b.AuthorID], b)
		}
	}
	return result, nil
}

// Create inserts a book and sets its generated ID.
func (r *BookRepository) Create(ctx context.Context, book *models.Book) error {
	const query = `INSERT INTO books (title, description, author_id) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, book.Title, book.Description, book.AuthorID).Scan(&book.ID); err != nil {
		return wrapWriteErr("create book", err)
	}
	return nil
}

// Update persists every mutable column.
func (r *BookRepository) Update(ctx context.Context, book *models.Book) error {
	res, err := r.db.ExecContext(ctx, `UPDATE books SET title = $2, description = $3, author_id = $4 WHERE id = $1`, book.ID, book.Title, book.Description, book.AuthorID)
	if err != nil {
		return wrapWriteErr("update book", err)
	}
	return requireAffected(res, "update book")
}

// Delete removes a book; its chapters keep existing without a book.
func (r *BookRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "books", id)
}

const chapterColumns = "id, title, content, book_id"

// ChapterRepository provides database access for chapters.
type ChapterRepository struct {
	db *sqlx.DB
}

// NewChapterRepository constructs a ChapterRepository.
func NewChapterRepository(db *sqlx.DB) *ChapterRepository {
	return &ChapterRepository{db: db}
}

// FindByID returns a chapter by identifier.
func (r *ChapterRepository) FindByID(ctx context.Context, id int64) (*models.Chapter, error) {
	var chapter models.Chapter
	if err := getOne(ctx, r.db, &chapter, "find chapter by id", `SELECT `+chapterColumns+` FROM chapters WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &chapter, nil
}

// FindByTitle returns a chapter by its unique title.
func (r *ChapterRepository) FindByTitle(ctx context.Context, title string) (*models.Chapter, error) {
	var chapter models.Chapter
	if err := getOne(ctx, r.db, &chapter, "find chapter by title", `SELECT `+chapterColumns+` FROM chapters WHERE title = $1`, title); err != nil {
		return nil, err
	}
	return &chapter, nil
}

// List returns a page of chapters and the total count.
func (r *ChapterRepository) List(ctx context.Context, page models.PageRequest) ([]models.Chapter, int, error) {
	chapters := []models.Chapter{}
	total, err := listPage(ctx, r.db, &chapters, "chapters", chapterColumns, page)
	if err != nil {
		return nil, 0, err
	}
	return chapters, total, nil
}

// Create inserts a chapter and sets its generated ID.
func (r *ChapterRepository) Create(ctx context.Context, chapter *models.Chapter) error {
	const query = `INSERT INTO chapters (title, content, book_id) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, chapter.Title, chapter.Content, chapter.BookID).Scan(&chapter.ID); err != nil {
		return wrapWriteErr("create chapter", err)
	}
	return nil
}

// Update persists every mutable column.
func (r *ChapterRepository) Update(ctx context.Context, chapter *models.Chapter) error {
	res, err := r.db.ExecContext(ctx, `UPDATE chapters SET title = $2, content = $3, book_id = $4 WHERE id = $1`, chapter.ID, chapter.Title, chapter.Content, chapter.BookID)
	if err != nil {
		return wrapWriteErr("update chapter", err)
	}
	return requireAffected(res, "update chapter")
}

// Delete removes a chapter.
func (r *ChapterRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "chapters", id)
}

func getOne(ctx context.Context, db *sqlx.DB, dest interface{}, op, query string, args ...interface{}) error {
	if err := db.GetContext(ctx, dest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// listPage selects one page of table ordered by id into dest and returns the table's row count.
func listPage(ctx context.Context, db *sqlx.DB, dest interface{}, table, columns string, page models.PageRequest) (int, error) {
	limit, offset := pageWindow(page.Page, page.PageSize)
	query, args, err := buildQuery(psql.Select(columns).From(table).OrderBy("id ASC").Limit(limit).Offset(offset))
	if err != nil {
		return 0, err
	}
	if err := db.SelectContext(ctx, dest, query, args...); err != nil {
		return 0, fmt.Errorf("list %s: %w", table, err)
	}

	var total int
	if err := db.GetContext(ctx, &total, `SELECT COUNT(*) FROM `+table); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return total, nil
}

func deleteByID(ctx context.Context, db *sqlx.DB, table string, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return requireAffected(res, "delete "+table)
}
