package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushub/timetable-api/internal/models"
	"github.com/campushub/timetable-api/internal/service"
	"github.com/campushub/timetable-api/pkg/response"
)

type courseRepoStub struct {
	byID   map[string]*models.Course
	byCode map[string]*models.Course

	created *models.Course
}

func (s *courseRepoStub) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	out := make([]models.Course, 0, len(s.byID))
	for _, c := range s.byID {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (s *courseRepoStub) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := s.byID[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func (s *courseRepoStub) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	if c, ok := s.byCode[code]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func (s *courseRepoStub) Create(ctx context.Context, course *models.Course) error {
	course.ID = "course-new"
	s.created = course
	return nil
}

func (s *courseRepoStub) Update(ctx context.Context, course *models.Course) error { return nil }

func (s *courseRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := s.byID[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.byID, id)
	return nil
}

func newCourseHandlerFixture() (*CourseHandler, *courseRepoStub) {
	repo := &courseRepoStub{
		byID:   map[string]*models.Course{},
		byCode: map[string]*models.Course{},
	}
	svc := service.NewCourseService(repo, service.NewValidator(), zap.NewNop())
	return NewCourseHandler(svc), repo
}

func seedCourse(repo *courseRepoStub, id, code, name string) {
	c := &models.Course{ID: id, Code: code, Name: name}
	repo.byID[id] = c
	repo.byCode[code] = c
}

func TestCourseHandlerGetByCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, repo := newCourseHandlerFixture()
	seedCourse(repo, "7e9bb2ab-5b0e-4f0e-9c5a-0a9f6f8f2d11", "CS101", "Intro to Computing")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/courses/CS101", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "CS101"}}

	h.Get(c)
	require.Equal(t, http.StatusOK, w.Code)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Intro to Computing", data["name"])
}

func TestCourseHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _ := newCourseHandlerFixture()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/courses/NOPE", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "NOPE"}}

	h.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, "course not found", env.Error.Message)
}

func TestCourseHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, repo := newCourseHandlerFixture()

	body := `{"name":"Databases","code":"CS210","credits":3}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/courses", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, repo.created)
	assert.Equal(t, "CS210", repo.created.Code)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "Course created successfully", env.Message)
}

func TestCourseHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _ := newCourseHandlerFixture()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/courses", bytes.NewBufferString(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCourseHandlerCreateDuplicateCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, repo := newCourseHandlerFixture()
	seedCourse(repo, "7e9bb2ab-5b0e-4f0e-9c5a-0a9f6f8f2d11", "CS101", "Intro to Computing")

	body := `{"name":"Shadow Course","code":"CS101"}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/courses", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Create(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestCourseHandlerDeleteNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _ := newCourseHandlerFixture()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/courses/missing", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	h.Delete(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}
