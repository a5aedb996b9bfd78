package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coursehub-api/internal/models"
)

// EnrollmentRepository manages the user/course association.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs an EnrollmentRepository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Exists reports whether the user is enrolled in the course.
func (r *EnrollmentRepository) Exists(ctx context.Context, courseID, userID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM enrollments WHERE course_id = $1 AND user_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, courseID, userID); err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return exists, nil
}

// Create inserts the pair. A concurrent duplicate surfaces as ErrDuplicate.
func (r *EnrollmentRepository) Create(ctx context.Context, courseID, userID int64) error {
	const query = `INSERT INTO enrollments (user_id, course_id, enrolled_at) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, userID, courseID, time.Now().UTC()); err != nil {
		return wrapWriteErr("create enrollment", err)
	}
	return nil
}

// Delete removes the pair, returning sql.ErrNoRows when it did not exist.
func (r *EnrollmentRepository) Delete(ctx context.Context, courseID, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM enrollments WHERE course_id = $1 AND user_id = $2`, courseID, userID)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return requireAffected(res, "delete enrollment")
}

type courseStudentRow struct {
	CourseID int64 `db:"course_id"`
	models.UserSummary
}

// StudentsByCourse returns the enrolled users of each of the given courses.
func (r *EnrollmentRepository) StudentsByCourse(ctx context.Context, courseIDs []int64) (map[int64][]models.UserSummary, error) {
	result := make(map[int64][]models.UserSummary, len(courseIDs))
	if len(courseIDs) == 0 {
		return result, nil
	}

	query, args, err := buildQuery(psql.Select("e.course_id", "u.id", "u.username", "u.email").
		From("enrollments e").
		Join("users u ON u.id = e.user_id").
		Where(squirrel.Eq{"e.course_id": courseIDs}).
		OrderBy("u.username ASC"))
	if err != nil {
		return nil, err
	}

	var rows []courseStudentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list course students: %w", err)
	}
	for _, row := range rows {
		result[row.CourseID] = append(result[row.CourseID], row.UserSummary)
	}
	return result, nil
}

type userCourseRow struct {
	UserID int64 `db:"user_id"`
	models.CourseSummary
}

// CoursesByUser returns the courses each of the given users is enrolled in.
func (r *EnrollmentRepository) CoursesByUser(ctx context.Context, userIDs []int64) (map[int64][]models.CourseSummary, error) {
	result := make(map[int64][]models.CourseSummary, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	query, args, err := buildQuery(psql.Select("e.user_id", "c.id", "c.title", "c.description").
		From("enrollments e").
		Join("courses c ON c.id = e.course_id").
		Where(squirrel.Eq{"e.user_id": userIDs}).
		OrderBy("c.id ASC"))
	if err != nil {
		return nil, err
	}

	var rows []userCourseRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list enrolled courses: %w", err)
	}
	for _, row := range rows {
		result[row.UserID] = append(result[row.UserID], row.CourseSummary)
	}
	return result, nil
}
