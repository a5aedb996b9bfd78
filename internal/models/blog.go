package models

// BlogUser is an account on the blog backend.
type BlogUser struct {
	ID       int64  `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
	Email    string `db:"email" json:"email"`
	IsActive bool   `db:"is_active" json:"is_active"`
}

// BlogUserDetail is a blog user with their posts.
type BlogUserDetail struct {
	BlogUser
	Posts []Post `json:"posts"`
}

// Post is owned by one blog user and removed with them.
type Post struct {
	ID      int64  `db:"id" json:"id"`
	Title   string `db:"title" json:"title"`
	Content string `db:"content" json:"content"`
	UserID  int64  `db:"user_id" json:"user_id"`
}
