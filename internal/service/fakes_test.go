package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/coursehub-api/internal/models"
	"github.com/noah-isme/coursehub-api/internal/repository"
	appErrors "github.com/noah-isme/coursehub-api/pkg/errors"
)

type memUsers struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*models.User
	err    error
}

func newMemUsers(users ...models.User) *memUsers {
	m := &memUsers{rows: make(map[int64]*models.User)}
	for i := range users {
		u := users[i]
		m.rows[u.ID] = &u
		if u.ID > m.nextID {
			m.nextID = u.ID
		}
	}
	return m
}

func (m *memUsers) FindByID(ctx context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *u
	return &clone, nil
}

func (m *memUsers) find(match func(*models.User) bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.rows {
		if match(u) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Username == username })
}

func (m *memUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Email == email })
}

func (m *memUsers) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]models.User, 0, len(m.rows))
	for _, u := range m.rows {
		if filter.Username != "" && !strings.Contains(u.Username, filter.Username) {
			continue
		}
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, len(users), nil
}

func (m *memUsers) Create(ctx context.Context, user *models.User) error {
	if _, err := m.FindByUsername(ctx, user.Username); err == nil {
		return repository.ErrDuplicate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	user.ID = m.nextID
	clone := *user
	m.rows[user.ID] = &clone
	return nil
}

func (m *memUsers) Update(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[user.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *user
	m.rows[user.ID] = &clone
	return nil
}

func (m *memUsers) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *memUsers) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.rows, id)
	return nil
}

type memLedger struct {
	mu        sync.Mutex
	nextID    int64
	rows      map[int64]*models.RefreshToken
	deleteErr error
}

func newMemLedger() *memLedger {
	return &memLedger{rows: make(map[int64]*models.RefreshToken)}
}

func (m *memLedger) Create(ctx context.Context, token *models.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	token.ID = m.nextID
	clone := *token
	m.rows[token.ID] = &clone
	return nil
}

func (m *memLedger) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Token == token {
			clone := *row
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memLedger) Rotate(ctx context.Context, oldID int64, next *models.RefreshToken) error {
	m.mu.Lock()
	if _, ok := m.rows[oldID]; !ok {
		m.mu.Unlock()
		return sql.ErrNoRows
	}
	delete(m.rows, oldID)
	m.mu.Unlock()
	return m.Create(ctx, next)
}

func (m *memLedger) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.rows, id)
	return nil
}

func (m *memLedger) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	var n int64
	for id, row := range m.rows {
		if row.UserID == userID {
			delete(m.rows, id)
			n++
		}
	}
	return n, nil
}

func (m *memLedger) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, row := range m.rows {
		if row.ExpiresAt.Before(before) {
			delete(m.rows, id)
			n++
		}
	}
	return n, nil
}

func (m *memLedger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type memCourses struct {
	nextID      int64
	rows        map[int64]*models.Course
	enrollments map[int64]map[int64]bool
	users       *memUsers
	assignments []models.Assignment
	listCalls   int
}

func newMemCourses(users *memUsers) *memCourses {
	return &memCourses{rows: make(map[int64]*models.Course), enrollments: make(map[int64]map[int64]bool), users: users}
}

func (m *memCourses) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	c, ok := m.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *c
	return &clone, nil
}

func (m *memCourses) ExistsByTitleAndTeacher(ctx context.Context, title string, teacherID int64) (bool, error) {
	for _, c := range m.rows {
		if c.Title == title && c.TeacherID != nil && *c.TeacherID == teacherID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memCourses) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	m.listCalls++
	courses := make([]models.Course, 0, len(m.rows))
	for _, c := range m.rows {
		if filter.TeacherID != nil && (c.TeacherID == nil || *c.TeacherID != *filter.TeacherID) {
			continue
		}
		courses = append(courses, *c)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, len(courses), nil
}

func (m *memCourses) Create(ctx context.Context, course *models.Course) error {
	m.nextID++
	course.ID = m.nextID
	clone := *course
	m.rows[course.ID] = &clone
	return nil
}

func (m *memCourses) Update(ctx context.Context, course *models.Course) error {
	if _, ok := m.rows[course.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *course
	m.rows[course.ID] = &clone
	return nil
}

func (m *memCourses) Delete(ctx context.Context, id int64) error {
	if _, ok := m.rows[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.rows, id)
	delete(m.enrollments, id)
	return nil
}

func (m *memCourses) SummariesByTeacher(ctx context.Context, teacherIDs []int64) (map[int64][]models.CourseSummary, error) {
	out := make(map[int64][]models.CourseSummary)
	for _, id := range teacherIDs {
		for _, c := range m.rows {
			if c.TeacherID != nil && *c.TeacherID == id {
				out[id] = append(out[id], models.CourseSummary{ID: c.ID, Title: c.Title, Description: c.Description})
			}
		}
	}
	return out, nil
}

func (m *memCourses) Exists(ctx context.Context, courseID, userID int64) (bool, error) {
	return m.enrollments[courseID][userID], nil
}

func (m *memCourses) enroll(courseID, userID int64) {
	if m.enrollments[courseID] == nil {
		m.enrollments[courseID] = make(map[int64]bool)
	}
	m.enrollments[courseID][userID] = true
}

func (m *memCourses) StudentsByCourse(ctx context.Context, courseIDs []int64) (map[int64][]models.UserSummary, error) {
	out := make(map[int64][]models.UserSummary)
	for _, cid := range courseIDs {
		for uid := range m.enrollments[cid] {
			u, err := m.users.FindByID(ctx, uid)
			if err != nil {
				continue
			}
			out[cid] = append(out[cid], models.UserSummary{ID: u.ID, Username: u.Username, Email: u.Email})
		}
		sort.Slice(out[cid], func(i, j int) bool { return out[cid][i].ID < out[cid][j].ID })
	}
	return out, nil
}

func (m *memCourses) CoursesByUser(ctx context.Context, userIDs []int64) (map[int64][]models.CourseSummary, error) {
	out := make(map[int64][]models.CourseSummary)
	for _, uid := range userIDs {
		for cid, members := range m.enrollments {
			if members[uid] {
				c := m.rows[cid]
				out[uid] = append(out[uid], models.CourseSummary{ID: c.ID, Title: c.Title, Description: c.Description})
			}
		}
	}
	return out, nil
}

func (m *memCourses) SummariesByCourse(ctx context.Context, courseIDs []int64) (map[int64][]models.AssignmentSummary, error) {
	out := make(map[int64][]models.AssignmentSummary)
	for _, cid := range courseIDs {
		for _, a := range m.assignments {
			if a.CourseID == cid {
				out[cid] = append(out[cid], models.AssignmentSummary{ID: a.ID, Title: a.Title, Description: a.Description})
			}
		}
	}
	return out, nil
}

// memEnrollments adapts memCourses to the enrollment repository shape.
type memEnrollments struct{ *memCourses }

func (m memEnrollments) Create(ctx context.Context, courseID, userID int64) error {
	if m.enrollments[courseID][userID] {
		return repository.ErrDuplicate
	}
	m.enroll(courseID, userID)
	return nil
}

func (m memEnrollments) Delete(ctx context.Context, courseID, userID int64) error {
	if !m.enrollments[courseID][userID] {
		return sql.ErrNoRows
	}
	delete(m.enrollments[courseID], userID)
	return nil
}

type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (m *memCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = raw
	m.sets++
	return nil
}

func (m *memCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if ok, err := path.Match(pattern, key); err != nil {
			return err
		} else if ok {
			delete(m.entries, key)
		}
	}
	return nil
}

func (m *memCache) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

var errBoom = errors.New("boom")

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }
