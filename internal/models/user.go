package models

import "time"

// UserRole is the closed set of roles an identity can hold.
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// User represents an application user stored in the users table.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// UserSummary is the compact user shape nested inside course payloads.
type UserSummary struct {
	ID       int64  `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
	Email    string `db:"email" json:"email"`
}

// UserDetail is a user with its taught and enrolled courses resolved.
type UserDetail struct {
	User
	TaughtCourses   []CourseSummary `json:"taught_courses"`
	EnrolledCourses []CourseSummary `json:"enrolled_courses"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Username          string
	Email             string
	TaughtCourseTitle string
	Page              int
	PageSize          int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// PageRequest carries the page window for list endpoints without other filters.
type PageRequest struct {
	Page     int
	PageSize int
}
