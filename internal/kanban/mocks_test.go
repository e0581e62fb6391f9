package kanban_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/justsurfingit/job-board/internal/board"
	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/kanban"
	"github.com/justsurfingit/job-board/internal/models"
)

var errServer = errors.New("server unavailable")

// MockBackend records order updates and delegates every call to the
// matching func field when it is set.
type MockBackend struct {
	mu     sync.Mutex
	orders [][]dtos.OrderChange
	lists  int

	ListJobsFunc    func(ctx context.Context) ([]models.Job, error)
	UpdateOrderFunc func(ctx context.Context, changes []dtos.OrderChange) error
	CreateJobFunc   func(ctx context.Context, req dtos.JobCreationRequest) (*models.Job, error)
	EditJobFunc     func(ctx context.Context, id string, patch dtos.JobPatch) (*models.Job, error)
	DeleteJobFunc   func(ctx context.Context, id string) error
}

func (m *MockBackend) ListJobs(ctx context.Context) ([]models.Job, error) {
	m.mu.Lock()
	m.lists++
	m.mu.Unlock()
	if m.ListJobsFunc != nil {
		return m.ListJobsFunc(ctx)
	}
	return nil, nil
}

func (m *MockBackend) UpdateOrder(ctx context.Context, changes []dtos.OrderChange) error {
	m.mu.Lock()
	m.orders = append(m.orders, changes)
	m.mu.Unlock()
	if m.UpdateOrderFunc != nil {
		return m.UpdateOrderFunc(ctx, changes)
	}
	return nil
}

func (m *MockBackend) CreateJob(ctx context.Context, req dtos.JobCreationRequest) (*models.Job, error) {
	if m.CreateJobFunc != nil {
		return m.CreateJobFunc(ctx, req)
	}
	return nil, errors.New("CreateJob not expected")
}

func (m *MockBackend) EditJob(ctx context.Context, id string, patch dtos.JobPatch) (*models.Job, error) {
	if m.EditJobFunc != nil {
		return m.EditJobFunc(ctx, id, patch)
	}
	return nil, errors.New("EditJob not expected")
}

func (m *MockBackend) DeleteJob(ctx context.Context, id string) error {
	if m.DeleteJobFunc != nil {
		return m.DeleteJobFunc(ctx, id)
	}
	return errors.New("DeleteJob not expected")
}

func (m *MockBackend) OrderCalls() [][]dtos.OrderChange {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]dtos.OrderChange(nil), m.orders...)
}

func (m *MockBackend) ListCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lists
}

// serverEcho makes ListJobs return whatever the last UpdateOrder stored,
// starting from seed, so reconciliation sees the saved board.
func serverEcho(m *MockBackend, seed []models.Job) {
	var mu sync.Mutex
	jobs := append([]models.Job(nil), seed...)
	m.ListJobsFunc = func(context.Context) ([]models.Job, error) {
		mu.Lock()
		defer mu.Unlock()
		return append([]models.Job(nil), jobs...), nil
	}
	m.UpdateOrderFunc = func(_ context.Context, changes []dtos.OrderChange) error {
		mu.Lock()
		defer mu.Unlock()
		for _, ch := range changes {
			for i := range jobs {
				if jobs[i].ID == ch.ID {
					jobs[i].Order = ch.Changes.Order
					jobs[i].Status = ch.Changes.Status
				}
			}
		}
		return nil
	}
}

type recordedNote struct {
	message string
	err     error
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []recordedNote
}

func (n *recordingNotifier) Notify(message string, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, recordedNote{message: message, err: err})
}

func (n *recordingNotifier) Notes() []recordedNote {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]recordedNote(nil), n.notes...)
}

func testJob(id string, status models.Status, order int) models.Job {
	return models.Job{ID: id, UserID: "u1", Position: "Engineer", Company: "Acme " + id, Status: status, Order: order}
}

func newController(t *testing.T, backend *MockBackend, jobs ...models.Job) (*kanban.Controller, *board.Cache, *recordingNotifier) {
	t.Helper()
	b, err := board.New(jobs)
	require.NoError(t, err)
	cache := board.NewCache(b)
	notifier := &recordingNotifier{}
	c := kanban.NewController(cache, backend,
		kanban.WithNotifier(notifier),
		kanban.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return c, cache, notifier
}

func partitionIDs(b board.Board, s models.Status) []string {
	var out []string
	for _, j := range b.Partition(s) {
		out = append(out, j.ID)
	}
	return out
}
