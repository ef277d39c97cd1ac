package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushub/timetable-api/internal/models"
	appErrors "github.com/campushub/timetable-api/pkg/errors"
)

type mockEnrollmentRepo struct {
	enrollments map[string]models.Enrollment
	created     *models.Enrollment
	deleted     []string
}

func (m *mockEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if e, ok := m.enrollments[id]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) ExistsPair(ctx context.Context, studentID, courseID string) (bool, error) {
	for _, e := range m.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockEnrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentWithCourse, error) {
	var list []models.EnrollmentWithCourse
	for _, e := range m.enrollments {
		if e.StudentID == studentID {
			list = append(list, models.EnrollmentWithCourse{Enrollment: e})
		}
	}
	return list, nil
}

func (m *mockEnrollmentRepo) ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentWithStudent, error) {
	var list []models.EnrollmentWithStudent
	for _, e := range m.enrollments {
		if e.CourseID == courseID {
			list = append(list, models.EnrollmentWithStudent{Enrollment: e})
		}
	}
	return list, nil
}

func (m *mockEnrollmentRepo) CourseIDsByStudent(ctx context.Context, studentID string) ([]string, error) {
	var ids []string
	for _, e := range m.enrollments {
		if e.StudentID == studentID {
			ids = append(ids, e.CourseID)
		}
	}
	return ids, nil
}

func (m *mockEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if m.enrollments == nil {
		m.enrollments = make(map[string]models.Enrollment)
	}
	if enrollment.ID == "" {
		enrollment.ID = "new-enrollment"
	}
	m.enrollments[enrollment.ID] = *enrollment
	m.created = enrollment
	return nil
}

func (m *mockEnrollmentRepo) Delete(ctx context.Context, id string) error {
	delete(m.enrollments, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockUserReader struct {
	users map[string]models.User
}

func (m *mockUserReader) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

func newEnrollmentService(repo *mockEnrollmentRepo, users map[string]models.User, courses map[string]bool) *EnrollmentService {
	return NewEnrollmentService(repo,
		&mockUserReader{users: users},
		&mockExistsRepo{existing: courses},
		NewValidator(), zap.NewNop())
}

func TestEnrollmentServiceCreateSuccess(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := newEnrollmentService(repo,
		map[string]models.User{"stu-1": {ID: "stu-1", Role: models.RoleStudent}},
		map[string]bool{"course-1": true})

	enrollment, err := svc.Create(context.Background(), CreateEnrollmentRequest{
		StudentID: "stu-1",
		CourseID:  "course-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "stu-1", enrollment.StudentID)
	require.NotNil(t, repo.created)
}

func TestEnrollmentServiceDuplicatePairRejected(t *testing.T) {
	repo := &mockEnrollmentRepo{enrollments: map[string]models.Enrollment{
		"e-1": {ID: "e-1", StudentID: "stu-1", CourseID: "course-1"},
	}}
	svc := newEnrollmentService(repo,
		map[string]models.User{"stu-1": {ID: "stu-1", Role: models.RoleStudent}},
		map[string]bool{"course-1": true})

	_, err := svc.Create(context.Background(), CreateEnrollmentRequest{
		StudentID: "stu-1",
		CourseID:  "course-1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceRejectsNonStudent(t *testing.T) {
	svc := newEnrollmentService(&mockEnrollmentRepo{},
		map[string]models.User{"fac-1": {ID: "fac-1", Role: models.RoleFaculty}},
		map[string]bool{"course-1": true})

	_, err := svc.Create(context.Background(), CreateEnrollmentRequest{
		StudentID: "fac-1",
		CourseID:  "course-1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceUnknownReferences(t *testing.T) {
	svc := newEnrollmentService(&mockEnrollmentRepo{},
		map[string]models.User{"stu-1": {ID: "stu-1", Role: models.RoleStudent}},
		map[string]bool{})

	_, err := svc.Create(context.Background(), CreateEnrollmentRequest{
		StudentID: "ghost",
		CourseID:  "course-1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrReferenceNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), CreateEnrollmentRequest{
		StudentID: "stu-1",
		CourseID:  "course-ghost",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrReferenceNotFound.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceDeleteNonexistentIs404(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := newEnrollmentService(repo, nil, nil)

	err := svc.Delete(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}
