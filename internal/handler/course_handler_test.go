package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coursehub-api/internal/dto"
	"github.com/noah-isme/coursehub-api/internal/models"
	"github.com/noah-isme/coursehub-api/internal/service"
	appErrors "github.com/noah-isme/coursehub-api/pkg/errors"
)

type courseServiceMock struct {
	lastFilter models.CourseFilter
	lastCreate dto.CreateCourseRequest
	createErr  error
	getErr     error
}

func (m *courseServiceMock) Create(ctx context.Context, req dto.CreateCourseRequest) (*models.Course, error) {
	m.lastCreate = req
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &models.Course{ID: 1, Title: req.Title, TeacherID: &req.TeacherID}, nil
}

func (m *courseServiceMock) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, *models.Pagination, error) {
	m.lastFilter = filter
	return []models.CourseDetail{}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (m *courseServiceMock) Get(ctx context.Context, id int64) (*models.CourseDetail, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &models.CourseDetail{Course: models.Course{ID: id}}, nil
}

func (m *courseServiceMock) Update(ctx context.Context, id int64, req dto.UpdateCourseRequest) (*models.Course, error) {
	return &models.Course{ID: id}, nil
}

func (m *courseServiceMock) Delete(ctx context.Context, id int64) (*models.Course, error) {
	return &models.Course{ID: id}, nil
}

type enrollmentServiceMock struct {
	courseID, userID int64
	err              error
}

func (m *enrollmentServiceMock) Enroll(ctx context.Context, courseID, userID int64) (*models.User, error) {
	m.courseID, m.userID = courseID, userID
	if m.err != nil {
		return nil, m.err
	}
	return &models.User{ID: userID}, nil
}

func (m *enrollmentServiceMock) Unenroll(ctx context.Context, courseID, userID int64) (*models.User, error) {
	m.courseID, m.userID = courseID, userID
	return &models.User{ID: userID}, m.err
}

type rosterExporterMock struct {
	format string
}

func (m *rosterExporterMock) Export(ctx context.Context, courseID int64, format string) (*service.ExportResult, error) {
	m.format = format
	return &service.ExportResult{Filename: "course-1-roster.csv", ContentType: "text/csv", Body: []byte("ID,Username,Email\n")}, nil
}

func newCourseContext(method, target string, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestCourseHandlerListParsesFilters(t *testing.T) {
	courses := &courseServiceMock{}
	h := NewCourseHandler(courses, nil, nil)

	c, w := newCourseContext(http.MethodGet, "/courses?title=go&teacher_id=7&student_username=ali&page=2&page_size=5", "")
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "go", courses.lastFilter.Title)
	require.NotNil(t, courses.lastFilter.TeacherID)
	assert.Equal(t, int64(7), *courses.lastFilter.TeacherID)
	assert.Equal(t, "ali", courses.lastFilter.StudentUsername)
	assert.Equal(t, 2, courses.lastFilter.Page)
	assert.Equal(t, 5, courses.lastFilter.PageSize)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestCourseHandlerListRejectsBadTeacherID(t *testing.T) {
	h := NewCourseHandler(&courseServiceMock{}, nil, nil)

	c, w := newCourseContext(http.MethodGet, "/courses?teacher_id=abc", "")
	h.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCourseHandlerCreate(t *testing.T) {
	courses := &courseServiceMock{}
	h := NewCourseHandler(courses, nil, nil)

	c, w := newCourseContext(http.MethodPost, "/courses", `{"title":"Go","teacher_id":3}`)
	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Go", courses.lastCreate.Title)
	assert.Equal(t, int64(3), courses.lastCreate.TeacherID)
}

func TestCourseHandlerCreateInvalidBody(t *testing.T) {
	h := NewCourseHandler(&courseServiceMock{}, nil, nil)

	c, w := newCourseContext(http.MethodPost, "/courses", `{"title":`)
	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCourseHandlerGetNotFound(t *testing.T) {
	h := NewCourseHandler(&courseServiceMock{getErr: appErrors.Clone(appErrors.ErrNotFound, "course not found")}, nil, nil)

	c, w := newCourseContext(http.MethodGet, "/courses/9", "")
	c.Params = gin.Params{{Key: "id", Value: "9"}}
	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCourseHandlerGetRejectsBadID(t *testing.T) {
	h := NewCourseHandler(&courseServiceMock{}, nil, nil)

	c, w := newCourseContext(http.MethodGet, "/courses/0", "")
	c.Params = gin.Params{{Key: "id", Value: "0"}}
	h.Get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCourseHandlerEnroll(t *testing.T) {
	enrollments := &enrollmentServiceMock{}
	h := NewCourseHandler(nil, enrollments, nil)

	c, w := newCourseContext(http.MethodPost, "/courses/4/enroll?user_id=8", "")
	c.Params = gin.Params{{Key: "id", Value: "4"}}
	h.Enroll(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(4), enrollments.courseID)
	assert.Equal(t, int64(8), enrollments.userID)
}

func TestCourseHandlerEnrollRequiresUserID(t *testing.T) {
	enrollments := &enrollmentServiceMock{}
	h := NewCourseHandler(nil, enrollments, nil)

	c, w := newCourseContext(http.MethodPost, "/courses/4/enroll", "")
	c.Params = gin.Params{{Key: "id", Value: "4"}}
	h.Enroll(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, enrollments.courseID)
}

func TestCourseHandlerEnrollConflict(t *testing.T) {
	h := NewCourseHandler(nil, &enrollmentServiceMock{err: appErrors.Clone(appErrors.ErrConflict, "already enrolled")}, nil)

	c, w := newCourseContext(http.MethodPost, "/courses/4/enroll?user_id=8", "")
	c.Params = gin.Params{{Key: "id", Value: "4"}}
	h.Enroll(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "CONFLICT")
}

func TestCourseHandlerRosterStreamsAttachment(t *testing.T) {
	roster := &rosterExporterMock{}
	h := NewCourseHandler(nil, nil, roster)

	c, w := newCourseContext(http.MethodGet, "/courses/1/roster?format=csv", "")
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	h.Roster(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", roster.format)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "course-1-roster.csv")
	assert.Equal(t, "ID,Username,Email\n", w.Body.String())
}
