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
)

const assignmentColumns = "id, title, description, course_id, created_at, updated_at"

// AssignmentRepository provides database access for assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// FindByID returns an assignment by identifier.
func (r *AssignmentRepository) FindByID(ctx context.Context, id int64) (*models.Assignment, error) {
	const query = `SELECT ` + assignmentColumns + ` FROM assignments WHERE id = $1`
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find assignment by id: %w", err)
	}
	return &assignment, nil
}

// List returns assignments matching the filter together with the total count.
func (r *AssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error) {
	limit, offset := pageWindow(filter.Page, filter.PageSize)

	where := squirrel.And{}
	if filter.Title != "" {
		where = append(where, squirrel.ILike{"title": containsPattern(filter.Title)})
	}
	if filter.CourseID != nil {
		where = append(where, squirrel.Eq{"course_id": *filter.CourseID})
	}

	listQuery, args, err := buildQuery(psql.Select(assignmentColumns).From("assignments").Where(where).
		OrderBy("id ASC").Limit(limit).Offset(offset))
	if err != nil {
		return nil, 0, err
	}
	assignments := []models.Assignment{}
	if err := r.db.SelectContext(ctx, &assignments, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list assignments: %w", err)
	}

	countQuery, args, err := buildQuery(psql.Select("COUNT(*)").From("assignments").Where(where))
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count assignments: %w", err)
	}

	return assignments, total, nil
}

// Create inserts an assignment and sets its generated ID.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now

	const query = `INSERT INTO assignments (title, description, course_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, assignment.Title, assignment.Description, assignment.CourseID, assignment.CreatedAt, assignment.UpdatedAt).Scan(&assignment.ID); err != nil {
		return wrapWriteErr("create assignment", err)
	}
	return nil
}

// Update persists title and description.
func (r *AssignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	assignment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE assignments SET title = $2, description = $3, updated_at = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, assignment.ID, assignment.Title, assignment.Description, assignment.UpdatedAt)
	if err != nil {
		return wrapWriteErr("update assignment", err)
	}
	return requireAffected(res, "update assignment")
}

// Delete removes an assignment.
func (r *AssignmentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return requireAffected(res, "delete assignment")
}

type courseAssignmentRow struct {
	CourseID int64 `db:"course_id"`
	models.AssignmentSummary
}

// SummariesByCourse returns the assignments of each of the given courses.
func (r *AssignmentRepository) SummariesByCourse(ctx context.Context, courseIDs []int64) (map[int64][]models.AssignmentSummary, error) {
	result := make(map[int64][]models.AssignmentSummary, len(courseIDs))
	if len(courseIDs) == 0 {
		return result, nil
	}

	query, args, err := buildQuery(psql.Select("course_id", "id", "title", "description").
		From("assignments").
		Where(squirrel.Eq{"course_id": courseIDs}).
		OrderBy("id ASC"))
	if err != nil {
		return nil, err
	}

	var rows []courseAssignmentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list course assignments: %w", err)
	}
	for _, row := range rows {
		result[row.CourseID] = append(result[row.CourseID], row.AssignmentSummary)
	}
	return result, nil
}
