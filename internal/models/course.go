package models

import "time"

// Course is taught by at most one teacher and owns its assignments.
type Course struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description"`
	TeacherID   *int64    `db:"teacher_id" json:"teacher_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CourseSummary is the compact course shape nested inside user payloads.
type CourseSummary struct {
	ID          int64   `db:"id" json:"id"`
	Title       string  `db:"title" json:"title"`
	Description *string `db:"description" json:"description"`
}

// CourseDetail is a course with its students and assignments resolved.
type CourseDetail struct {
	Course
	Students    []UserSummary       `json:"students"`
	Assignments []AssignmentSummary `json:"assignments"`
}

// CourseFilter captures filtering criteria for listing courses.
type CourseFilter struct {
	Title           string
	TeacherID       *int64
	StudentUsername string
	AssignmentTitle string
	Page            int
	PageSize        int
}
