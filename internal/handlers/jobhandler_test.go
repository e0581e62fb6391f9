package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/models"
	"github.com/justsurfingit/job-board/internal/services"
)

type MockJobRepository struct {
	ListJobsFunc    func(ctx context.Context, userID string) ([][]models.Job, error)
	GetJobFunc      func(ctx context.Context, userID, id string) (*models.Job, error)
	CreateJobFunc   func(ctx context.Context, userID string, req *dtos.JobCreationRequest) (*models.Job, error)
	EditJobFunc     func(ctx context.Context, userID, id string, patch dtos.JobPatch) (*models.Job, error)
	DeleteJobFunc   func(ctx context.Context, userID, id string) error
	UpdateOrderFunc func(ctx context.Context, userID string, changes []dtos.OrderChange) error
	EventsFunc      func(ctx context.Context, userID, id string) ([]models.JobEvent, error)
}

func (m *MockJobRepository) ListJobs(ctx context.Context, userID string) ([][]models.Job, error) {
	return m.ListJobsFunc(ctx, userID)
}

func (m *MockJobRepository) GetJob(ctx context.Context, userID, id string) (*models.Job, error) {
	return m.GetJobFunc(ctx, userID, id)
}

func (m *MockJobRepository) CreateJob(ctx context.Context, userID string, req *dtos.JobCreationRequest) (*models.Job, error) {
	return m.CreateJobFunc(ctx, userID, req)
}

func (m *MockJobRepository) EditJob(ctx context.Context, userID, id string, patch dtos.JobPatch) (*models.Job, error) {
	return m.EditJobFunc(ctx, userID, id, patch)
}

func (m *MockJobRepository) DeleteJob(ctx context.Context, userID, id string) error {
	return m.DeleteJobFunc(ctx, userID, id)
}

func (m *MockJobRepository) UpdateOrder(ctx context.Context, userID string, changes []dtos.OrderChange) error {
	return m.UpdateOrderFunc(ctx, userID, changes)
}

func (m *MockJobRepository) Events(ctx context.Context, userID, id string) ([]models.JobEvent, error) {
	return m.EventsFunc(ctx, userID, id)
}

type MockExtractor struct {
	ExtractFunc func(ctx context.Context, rawHTML, link string) (*dtos.JobDraft, error)
}

func (m *MockExtractor) ExtractJobDetails(ctx context.Context, rawHTML, link string) (*dtos.JobDraft, error) {
	return m.ExtractFunc(ctx, rawHTML, link)
}

func newRouter(repo JobRepository, ext JobExtractor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewJobHandler(ext, repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
	RegisterRoutes(r.Group("/api"), h, "default-user")
	return r
}

func do(r http.Handler, method, path, body string, header ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	w := do(newRouter(&MockJobRepository{}, &MockExtractor{}), http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestListJobs_PartitionedAndScoped(t *testing.T) {
	var gotUser string
	repo := &MockJobRepository{
		ListJobsFunc: func(_ context.Context, userID string) ([][]models.Job, error) {
			gotUser = userID
			parts := make([][]models.Job, models.NumStatuses)
			for i := range parts {
				parts[i] = []models.Job{}
			}
			parts[models.StatusApplied] = []models.Job{{ID: "a0", Status: models.StatusApplied}}
			return parts, nil
		},
	}
	r := newRouter(repo, &MockExtractor{})

	w := do(r, http.MethodGet, "/api/job", "", "X-User-ID", "u-7")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-7", gotUser)

	var parts [][]models.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parts))
	require.Len(t, parts, models.NumStatuses)
	assert.Equal(t, "a0", parts[1][0].ID)

	do(r, http.MethodGet, "/api/job", "")
	assert.Equal(t, "default-user", gotUser)
}

func TestUpdateOrder_BindsBatch(t *testing.T) {
	var got []dtos.OrderChange
	repo := &MockJobRepository{
		UpdateOrderFunc: func(_ context.Context, _ string, changes []dtos.OrderChange) error {
			got = changes
			return nil
		},
	}
	r := newRouter(repo, &MockExtractor{})

	w := do(r, http.MethodPatch, "/api/job/order",
		`{"jobs":[{"id":"J1","changes":{"order":0,"status":1}},{"id":"J2","changes":{"order":1,"status":1}}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []dtos.OrderChange{
		{ID: "J1", Changes: dtos.OrderChanges{Order: 0, Status: models.StatusApplied}},
		{ID: "J2", Changes: dtos.OrderChanges{Order: 1, Status: models.StatusApplied}},
	}, got)
}

func TestUpdateOrder_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"not found", services.ErrJobNotFound, http.StatusNotFound},
		{"invalid", services.ErrInvalidOrder, http.StatusBadRequest},
		{"inconsistent", services.ErrInconsistentOrder, http.StatusConflict},
		{"other", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &MockJobRepository{
				UpdateOrderFunc: func(context.Context, string, []dtos.OrderChange) error { return tc.err },
			}
			w := do(newRouter(repo, &MockExtractor{}), http.MethodPatch, "/api/job/order",
				`{"jobs":[{"id":"J1","changes":{"order":0,"status":0}}]}`)
			assert.Equal(t, tc.code, w.Code)
			assert.Contains(t, w.Body.String(), tc.err.Error())
		})
	}
}

func TestUpdateOrder_RejectsEmptyBatch(t *testing.T) {
	w := do(newRouter(&MockJobRepository{}, &MockExtractor{}), http.MethodPatch, "/api/job/order", `{"jobs":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetJob_NotFound(t *testing.T) {
	repo := &MockJobRepository{
		GetJobFunc: func(_ context.Context, _, id string) (*models.Job, error) {
			assert.Equal(t, "nope", id)
			return nil, services.ErrJobNotFound
		},
	}
	w := do(newRouter(repo, &MockExtractor{}), http.MethodGet, "/api/job/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateJob(t *testing.T) {
	repo := &MockJobRepository{
		CreateJobFunc: func(_ context.Context, userID string, req *dtos.JobCreationRequest) (*models.Job, error) {
			return &models.Job{ID: "new", UserID: userID, Position: req.Position, Status: req.Status, Order: 3}, nil
		},
	}
	r := newRouter(repo, &MockExtractor{})

	w := do(r, http.MethodPost, "/api/job",
		`{"position":"SRE","company":"Hooli","location":"Remote","description":"On call","link":"https://hooli.example/1","status":2}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var job models.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
	assert.Equal(t, "new", job.ID)
	assert.Equal(t, "default-user", job.UserID)
	assert.Equal(t, models.StatusInterview, job.Status)

	w = do(r, http.MethodPost, "/api/job", `{"position":"S","company":"Hooli"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/job",
		`{"position":"SRE","company":"Hooli","location":"Remote","description":"On call","link":"https://hooli.example/1","status":7}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEditAndDeleteJob(t *testing.T) {
	var deleted string
	repo := &MockJobRepository{
		EditJobFunc: func(_ context.Context, _, id string, patch dtos.JobPatch) (*models.Job, error) {
			job := &models.Job{ID: id, Company: "Old", Position: "SRE"}
			patch.Apply(job)
			return job, nil
		},
		DeleteJobFunc: func(_ context.Context, _, id string) error {
			deleted = id
			return nil
		},
	}
	r := newRouter(repo, &MockExtractor{})

	w := do(r, http.MethodPatch, "/api/job/j1", `{"company":"Initech"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"company":"Initech"`)

	w = do(r, http.MethodDelete, "/api/job/j1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "j1", deleted)
}

func TestListEvents(t *testing.T) {
	repo := &MockJobRepository{
		EventsFunc: func(context.Context, string, string) ([]models.JobEvent, error) {
			return []models.JobEvent{{ID: 1, JobID: "j1", EventType: models.EventStatusChange, Details: "Applied -> Offer"}}, nil
		},
	}
	w := do(newRouter(repo, &MockExtractor{}), http.MethodGet, "/api/job/j1/events", "")
	require.Equal(t, http.StatusOK, w.Code)

	var events []models.JobEvent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "Applied -> Offer", events[0].Details)
	assert.Equal(t, models.EventStatusChange, events[0].EventType)
}

func TestParseJob(t *testing.T) {
	ext := &MockExtractor{
		ExtractFunc: func(_ context.Context, rawHTML, link string) (*dtos.JobDraft, error) {
			assert.Equal(t, "<p>SRE</p>", rawHTML)
			return &dtos.JobDraft{Company: "Hooli", Position: "SRE", Link: link}, nil
		},
	}
	r := newRouter(&MockJobRepository{}, ext)

	w := do(r, http.MethodPost, "/api/job/extract", `{"raw_html":"<p>SRE</p>","url":"https://hooli.example"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"company_name":"Hooli","role_title":"SRE","location":"","description":"","tech_stack":null,"salary_range":"","link":"https://hooli.example"}}`, w.Body.String())

	w = do(r, http.MethodPost, "/api/job/extract", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseJob_Unavailable(t *testing.T) {
	ext := &MockExtractor{
		ExtractFunc: func(context.Context, string, string) (*dtos.JobDraft, error) {
			return nil, services.ErrLLMUnavailable
		},
	}
	w := do(newRouter(&MockJobRepository{}, ext), http.MethodPost, "/api/job/extract", `{"raw_html":"x"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestUserScope_RequiresUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", UserScope(""), func(c *gin.Context) { c.String(http.StatusOK, userID(c)) })

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/x", "").Code)

	w := do(r, http.MethodGet, "/x", "", "X-User-ID", " u1 ")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())
}
