package models

import "time"

// Assignment belongs to exactly one course.
type Assignment struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description"`
	CourseID    int64     `db:"course_id" json:"course_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// AssignmentSummary is the compact assignment shape nested inside course payloads.
type AssignmentSummary struct {
	ID          int64   `db:"id" json:"id"`
	Title       string  `db:"title" json:"title"`
	Description *string `db:"description" json:"description"`
}

// AssignmentFilter captures filtering criteria for listing assignments.
type AssignmentFilter struct {
	Title    string
	CourseID *int64
	Page     int
	PageSize int
}
