package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/models"
	appErrors "github.com/noah-isme/coursehub-api/pkg/errors"
)

type memAssignments struct {
	nextID int64
	rows   map[int64]*models.Assignment
}

func (m *memAssignments) FindByID(ctx context.Context, id int64) (*models.Assignment, error) {
	a, ok := m.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *a
	return &clone, nil
}

func (m *memAssignments) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error) {
	var out []models.Assignment
	for _, a := range m.rows {
		if filter.CourseID != nil && a.CourseID != *filter.CourseID {
			continue
		}
		out = append(out, *a)
	}
	return out, len(out), nil
}

func (m *memAssignments) Create(ctx context.Context, assignment *models.Assignment) error {
	m.nextID++
	assignment.ID = m.nextID
	clone := *assignment
	m.rows[assignment.ID] = &clone
	return nil
}

func (m *memAssignments) Update(ctx context.Context, assignment *models.Assignment) error {
	if _, ok := m.rows[assignment.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *assignment
	m.rows[assignment.ID] = &clone
	return nil
}

func (m *memAssignments) Delete(ctx context.Context, id int64) error {
	if _, ok := m.rows[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.rows, id)
	return nil
}

func newAssignmentFixture(t *testing.T) (*AssignmentService, *memAssignments) {
	t.Helper()
	users := newMemUsers(models.User{ID: 1, Username: "teach", Role: models.RoleTeacher})
	courses := newMemCourses(users)
	require.NoError(t, courses.Create(context.Background(), &models.Course{Title: "Go", TeacherID: int64Ptr(1)}))
	repo := &memAssignments{rows: make(map[int64]*models.Assignment)}
	return NewAssignmentService(repo, courses, nil, nil, nil), repo
}

func TestAssignmentServiceCreate(t *testing.T) {
	svc, _ := newAssignmentFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CreateAssignmentRequest{Title: "hw1", CourseID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.CourseID)
	assert.Nil(t, created.Description)

	_, err = svc.Create(ctx, dto.CreateAssignmentRequest{Title: "hw1", CourseID: 9})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.Create(ctx, dto.CreateAssignmentRequest{CourseID: 1})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAssignmentServiceUpdateAndDelete(t *testing.T) {
	svc, repo := newAssignmentFixture(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, dto.CreateAssignmentRequest{Title: "hw1", Description: strPtr("read"), CourseID: 1})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, dto.UpdateAssignmentRequest{Title: strPtr("hw1b")})
	require.NoError(t, err)
	assert.Equal(t, "hw1b", updated.Title)
	assert.Equal(t, "read", *updated.Description)

	deleted, err := svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "hw1b", deleted.Title)
	assert.Empty(t, repo.rows)

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestAssignmentServiceListByCourse(t *testing.T) {
	svc, _ := newAssignmentFixture(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, dto.CreateAssignmentRequest{Title: "hw1", CourseID: 1})
	require.NoError(t, err)

	items, pagination, err := svc.List(ctx, models.AssignmentFilter{CourseID: int64Ptr(1)})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, pagination.Page)

	items, _, err = svc.List(ctx, models.AssignmentFilter{CourseID: int64Ptr(2)})
	require.NoError(t, err)
	assert.Empty(t, items)
}
