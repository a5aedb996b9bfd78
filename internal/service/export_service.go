package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/coursehub-api/internal/models"
	appErrors "github.com/noah-isme/coursehub-api/pkg/errors"
	"github.com/noah-isme/coursehub-api/pkg/export"
)

// ExportResult is a rendered file ready to be streamed to the client.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

// RosterExportService renders the enrolled students of a course as CSV or PDF.
type RosterExportService struct {
	courses  courseReader
	students courseStudentReader
	logger   *zap.Logger
}

// NewRosterExportService constructs a RosterExportService.
func NewRosterExportService(courses courseReader, students courseStudentReader, logger *zap.Logger) *RosterExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterExportService{courses: courses, students: students, logger: logger}
}

// Export renders the roster of courseID in the requested format.
func (s *RosterExportService) Export(ctx context.Context, courseID int64, rawFormat string) (*ExportResult, error) {
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, appErrors.Validation(err, "format must be csv or pdf")
	}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, lookupError(err, appErrors.ErrNotFound, "course")
	}

	byCourse, err := s.students.StudentsByCourse(ctx, []int64{courseID})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load course students")
	}

	body, err := export.Render(format, rosterDataset(course.Title, byCourse[courseID]))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render roster")
	}

	s.logger.Debug("roster exported", zap.Int64("course_id", courseID), zap.String("format", string(format)), zap.Int("students", len(byCourse[courseID])))
	return &ExportResult{
		Filename:    fmt.Sprintf("course-%d-roster.%s", courseID, format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

func rosterDataset(title string, students []models.UserSummary) export.Dataset {
	data := export.Dataset{Title: "Roster: " + title, Columns: []string{"ID", "Username", "Email"}}
	for _, st := range students {
		data.AddRow(strconv.FormatInt(st.ID, 10), st.Username, st.Email)
	}
	return data
}
