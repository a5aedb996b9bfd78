package dto

type AuthorRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"required,email,max=255"`
}

type BookRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
	AuthorID    int64  `json:"author_id" validate:"required,gt=0"`
}

type ChapterRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content"`
	BookID  int64  `json:"book_id" validate:"required,gt=0"`
}
