package dto

// CreateCourseRequest payload for creating a course.
type CreateCourseRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	TeacherID   int64   `json:"teacher_id" validate:"required,gt=0"`
}

// UpdateCourseRequest payload for a partial course update.
type UpdateCourseRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// CreateAssignmentRequest payload for creating an assignment.
type CreateAssignmentRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	CourseID    int64   `json:"course_id" validate:"required,gt=0"`
}

// UpdateAssignmentRequest payload for a partial assignment update.
type UpdateAssignmentRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}
