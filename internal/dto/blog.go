package dto

type BlogUserRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email,max=255"`
	IsActive *bool  `json:"is_active"`
}

type CreatePostRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
}

type UpdatePostRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
	UserID  int64  `json:"user_id" validate:"required,gt=0"`
}
