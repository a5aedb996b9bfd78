package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coursehub-api/internal/models"
	"github.com/noah-isme/coursehub-api/pkg/database"
)

const courseColumns = "id, title, description, teacher_id, created_at, updated_at"

// CourseRepository provides database access for courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID returns a course by identifier.
func (r *CourseRepository) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	const query = `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find course by id: %w", err)
	}
	return &course, nil
}

// ExistsByTitleAndTeacher reports whether the teacher already has a course with the title.
func (r *CourseRepository) ExistsByTitleAndTeacher(ctx context.Context, title string, teacherID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM courses WHERE title = $1 AND teacher_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, title, teacherID); err != nil {
		return false, fmt.Errorf("check course title: %w", err)
	}
	return exists, nil
}

// List returns courses matching the filter together with the total count.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	limit, offset := pageWindow(filter.Page, filter.PageSize)

	listQuery, args, err := buildQuery(applyCourseFilter(psql.Select(courseColumns).From("courses co"), filter).
		OrderBy("co.id ASC").Limit(limit).Offset(offset))
	if err != nil {
		return nil, 0, err
	}
	courses := []models.Course{}
	if err := r.db.SelectContext(ctx, &courses, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	countQuery, args, err := buildQuery(applyCourseFilter(psql.Select("COUNT(*)").From("courses co"), filter))
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}

	return courses, total, nil
}

func applyCourseFilter(q squirrel.SelectBuilder, filter models.CourseFilter) squirrel.SelectBuilder {
	if filter.Title != "" {
		q = q.Where(squirrel.ILike{"co.title": containsPattern(filter.Title)})
	}
	if filter.TeacherID != nil {
		q = q.Where(squirrel.Eq{"co.teacher_id": *filter.TeacherID})
	}
	if filter.StudentUsername != "" {
		q = q.Where(squirrel.Expr(
			"EXISTS (SELECT 1 FROM enrollments e JOIN users u ON u.id = e.user_id WHERE e.course_id = co.id AND u.username ILIKE ?)",
			containsPattern(filter.StudentUsername),
		))
	}
	if filter.AssignmentTitle != "" {
		q = q.Where(squirrel.Expr(
			"EXISTS (SELECT 1 FROM assignments a WHERE a.course_id = co.id AND a.title ILIKE ?)",
			containsPattern(filter.AssignmentTitle),
		))
	}
	return q
}

// Create inserts a course and sets its generated ID.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

	const query = `INSERT INTO courses (title, description, teacher_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, course.Title, course.Description, course.TeacherID, course.CreatedAt, course.UpdatedAt).Scan(&course.ID); err != nil {
		return wrapWriteErr("create course", err)
	}
	return nil
}

// Update persists title and description.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET title = $2, description = $3, updated_at = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, course.ID, course.Title, course.Description, course.UpdatedAt)
	if err != nil {
		return wrapWriteErr("update course", err)
	}
	return requireAffected(res, "update course")
}

// Delete removes a course with its enrollment rows and assignments in one transaction.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM enrollments WHERE course_id = $1`, id); err != nil {
			return fmt.Errorf("delete course enrollments: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM assignments WHERE course_id = $1`, id); err != nil {
			return fmt.Errorf("delete course assignments: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete course: %w", err)
		}
		return requireAffected(res, "delete course")
	})
}

type teacherCourseRow struct {
	TeacherID int64 `db:"teacher_id"`
	models.CourseSummary
}

// SummariesByTeacher returns the courses taught by each of the given users.
func (r *CourseRepository) SummariesByTeacher(ctx context.Context, teacherIDs []int64) (map[int64][]models.CourseSummary, error) {
	result := make(map[int64][]models.CourseSummary, len(teacherIDs))
	if len(teacherIDs) == 0 {
		return result, nil
	}

	query, args, err := buildQuery(psql.Select("teacher_id", "id", "title", "description").
		From("courses").
		Where(squirrel.Eq{"teacher_id": teacherIDs}).
		OrderBy("id ASC"))
	if err != nil {
		return nil, err
	}

	var rows []teacherCourseRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list taught courses: %w", err)
	}
	for _, row := range rows {
		result[row.TeacherID] = append(result[row.TeacherID], row.CourseSummary)
	}
	return result, nil
}
