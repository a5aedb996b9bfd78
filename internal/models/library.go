package models

// Author writes books; email is unique.
type Author struct {
	ID    int64  `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}

// AuthorDetail is an author with their books.
type AuthorDetail struct {
	Author
	Books []Book `json:"books"`
}

// Book has a unique title and an optional author.
type Book struct {
	ID          int64  `db:"id" json:"id"`
	Title       string `db:"title" json:"title"`
	Description string `db:"description" json:"description"`
	AuthorID    *int64 `db:"author_id" json:"author_id"`
}

// Chapter has a unique title and an optional book.
type Chapter struct {
	ID      int64  `db:"id" json:"id"`
	Title   string `db:"title" json:"title"`
	Content string `db:"content" json:"content"`
	BookID  *int64 `db:"book_id" json:"book_id"`
}
