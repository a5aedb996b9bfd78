package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/models"
	appErrors "github.com/noah-isme/coursehub-api/pkg/errors"
)

func newCourseFixture(cache *CacheService) (*CourseService, *memCourses) {
	users := newMemUsers(
		models.User{ID: 1, Username: "teach", Email: "teach@example.com", Role: models.RoleTeacher},
		models.User{ID: 2, Username: "stud", Email: "stud@example.com", Role: models.RoleStudent},
	)
	courses := newMemCourses(users)
	return NewCourseService(courses, users, courses, courses, cache, time.Minute, nil, nil), courses
}

func TestCourseServiceCreate(t *testing.T) {
	svc, _ := newCourseFixture(nil)
	ctx := context.Background()

	course, err := svc.Create(ctx, dto.CreateCourseRequest{Title: "Go", Description: strPtr("intro"), TeacherID: 1})
	require.NoError(t, err)
	assert.NotZero(t, course.ID)
	require.NotNil(t, course.TeacherID)
	assert.Equal(t, int64(1), *course.TeacherID)

	_, err = svc.Create(ctx, dto.CreateCourseRequest{Title: "Go", TeacherID: 1})
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	_, err = svc.Create(ctx, dto.CreateCourseRequest{Title: "Rust", TeacherID: 42})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.Create(ctx, dto.CreateCourseRequest{TeacherID: 1})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestCourseServiceGetResolvesRelations(t *testing.T) {
	svc, courses := newCourseFixture(nil)
	ctx := context.Background()
	course, err := svc.Create(ctx, dto.CreateCourseRequest{Title: "Go", TeacherID: 1})
	require.NoError(t, err)
	courses.enroll(course.ID, 2)
	courses.assignments = append(courses.assignments, models.Assignment{ID: 7, Title: "hw1", CourseID: course.ID})

	detail, err := svc.Get(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, detail.Students, 1)
	assert.Equal(t, "stud", detail.Students[0].Username)
	require.Len(t, detail.Assignments, 1)
	assert.Equal(t, "hw1", detail.Assignments[0].Title)

	_, err = svc.Get(ctx, 99)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestCourseServiceUpdatePartial(t *testing.T) {
	svc, _ := newCourseFixture(nil)
	ctx := context.Background()
	course, err := svc.Create(ctx, dto.CreateCourseRequest{Title: "Go", Description: strPtr("intro"), TeacherID: 1})
	require.NoError(t, err)
	_, err = svc.Create(ctx, dto.CreateCourseRequest{Title: "Rust", TeacherID: 1})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, course.ID, dto.UpdateCourseRequest{Title: strPtr("Go 2")})
	require.NoError(t, err)
	assert.Equal(t, "Go 2", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "intro", *updated.Description)

	_, err = svc.Update(ctx, course.ID, dto.UpdateCourseRequest{Title: strPtr("Rust")})
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	_, err = svc.Update(ctx, 99, dto.UpdateCourseRequest{Title: strPtr("x")})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestCourseServiceDelete(t *testing.T) {
	svc, courses := newCourseFixture(nil)
	ctx := context.Background()
	course, err := svc.Create(ctx, dto.CreateCourseRequest{Title: "Go", TeacherID: 1})
	require.NoError(t, err)
	courses.enroll(course.ID, 2)

	deleted, err := svc.Delete(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go", deleted.Title)
	assert.Empty(t, courses.enrollments[course.ID])

	_, err = svc.Delete(ctx, course.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestCourseServiceListUsesCache(t *testing.T) {
	store := newMemCache()
	cache := NewCacheService(store, nil, time.Minute, nil, true)
	svc, courses := newCourseFixture(cache)
	ctx := context.Background()
	_, err := svc.Create(ctx, dto.CreateCourseRequest{Title: "Go", TeacherID: 1})
	require.NoError(t, err)

	filter := models.CourseFilter{Page: 1, PageSize: 20}
	first, _, err := svc.List(ctx, filter)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, pagination, err := svc.List(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, pagination.TotalCount)
	assert.Equal(t, 1, courses.listCalls)

	_, err = svc.Create(ctx, dto.CreateCourseRequest{Title: "Rust", TeacherID: 1})
	require.NoError(t, err)
	assert.Zero(t, store.size())

	third, _, err := svc.List(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, third, 2)
	assert.Equal(t, 2, courses.listCalls)
}

func TestCourseServiceListKeyDistinguishesFilters(t *testing.T) {
	teacher := int64(1)
	a := courseListKey(models.CourseFilter{Page: 1, PageSize: 20})
	b := courseListKey(models.CourseFilter{Page: 1, PageSize: 20, TeacherID: &teacher})
	c := courseListKey(models.CourseFilter{Page: 2, PageSize: 20})

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "courses:list:")
}
