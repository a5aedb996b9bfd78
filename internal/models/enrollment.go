package models

import "time"

// Enrollment links a user to a course; the pair is unique.
type Enrollment struct {
	UserID     int64     `db:"user_id" json:"user_id"`
	CourseID   int64     `db:"course_id" json:"course_id"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolled_at"`
}
