// Package kanban drives the job board: it turns drag gestures into board
// moves, shows them immediately and saves them to the job API in the
// background, rolling the board back when the save fails.
package kanban

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/justsurfingit/job-board/internal/board"
	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/models"
)

var ErrJobNotFound = errors.New("kanban: job not on the board")

// Backend is the part of the job API the board needs.
type Backend interface {
	ListJobs(ctx context.Context) ([]models.Job, error)
	UpdateOrder(ctx context.Context, changes []dtos.OrderChange) error
	CreateJob(ctx context.Context, req dtos.JobCreationRequest) (*models.Job, error)
	EditJob(ctx context.Context, id string, patch dtos.JobPatch) (*models.Job, error)
	DeleteJob(ctx context.Context, id string) error
}

// Notifier shows non-blocking messages to the user.
type Notifier interface {
	Notify(message string, err error)
}

type NotifierFunc func(message string, err error)

func (f NotifierFunc) Notify(message string, err error) { f(message, err) }

type State int

const (
	StateIdle State = iota
	StateDragging
)

func (s State) String() string {
	if s == StateDragging {
		return "dragging"
	}
	return "idle"
}

// Origin is where the dragged job was when the gesture started.
type Origin struct {
	Job    models.Job
	Status models.Status
	Index  int
}

type Controller struct {
	cache    *board.Cache
	backend  Backend
	notifier Notifier
	logger   *slog.Logger
	timeout  time.Duration

	mu       sync.Mutex
	state    State
	origin   Origin
	snapshot board.Board
	// lastOver is the target of the previous over event of this gesture.
	lastOver Payload

	inflight sync.WaitGroup
}

type Option func(*Controller)

func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithTimeout bounds every background request. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

func NewController(cache *board.Cache, backend Backend, opts ...Option) *Controller {
	c := &Controller{
		cache:    cache,
		backend:  backend,
		notifier: NotifierFunc(func(string, error) {}),
		logger:   slog.Default(),
		timeout:  15 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Board() board.Board { return c.cache.Load() }

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dragging reports the origin of the gesture in progress.
func (c *Controller) Dragging() (Origin, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.origin, c.state == StateDragging
}

// OnDragStart begins a gesture. Only job cards are draggable; columns have a
// fixed order and a gesture that is already running is left alone.
func (c *Controller) OnDragStart(active Payload) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateDragging {
		c.logger.Debug("drag start ignored, gesture in progress", slog.String("job_id", c.origin.Job.ID))
		return
	}

	switch p := active.(type) {
	case JobPayload:
		b := c.cache.Load()
		pos, ok := b.Locate(p.ID).Get()
		if !ok {
			c.logger.Debug("drag start on unknown job", slog.String("job_id", p.ID))
			return
		}
		c.state = StateDragging
		c.snapshot = b
		c.lastOver = nil
		c.origin = Origin{
			Job:    b.Job(p.ID).MustGet(),
			Status: pos.Status,
			Index:  pos.Index,
		}
	case ColumnPayload:
		// column reordering is not supported
	}
}

// OnDragOver previews the move of the dragged card over the current target.
// It is called repeatedly while the pointer moves; an event repeating the
// previous target is ignored, as is one for a card other than the dragged one.
func (c *Controller) OnDragOver(active, over Payload) {
	a, ok := active.(JobPayload)
	if !ok || over == nil {
		return
	}

	c.mu.Lock()
	if c.state != StateDragging || a.ID != c.origin.Job.ID || over == c.lastOver {
		c.mu.Unlock()
		return
	}
	c.lastOver = over
	c.mu.Unlock()

	c.cache.Update(func(b board.Board) board.Board {
		from, ok := b.Locate(a.ID).Get()
		if !ok {
			return b
		}

		switch o := over.(type) {
		case JobPayload:
			if o.ID == a.ID {
				return b
			}
			to, ok := b.Locate(o.ID).Get()
			if !ok {
				return b
			}
			if from.Status == to.Status {
				return b.MovedWithinPartition(from.Status, from.Index, to.Index)
			}
			return b.MovedAcrossPartitions(from.Status, from.Index, to.Status, max(0, to.Index-1))
		case ColumnPayload:
			if !o.Status.Valid() || o.Status == from.Status {
				return b
			}
			return b.MovedAcrossPartitions(from.Status, from.Index, o.Status, board.End)
		}
		return b
	})
}

// OnDragEnd finishes the gesture. Without a drop target the board goes back
// to how it was before the drag. Otherwise the previewed board stays and the
// affected partitions are saved. The returned command is nil when nothing
// needs saving.
func (c *Controller) OnDragEnd(ctx context.Context, over Payload) *Command {
	c.mu.Lock()
	if c.state != StateDragging {
		c.mu.Unlock()
		return nil
	}
	origin, snapshot := c.origin, c.snapshot
	c.state, c.origin, c.snapshot, c.lastOver = StateIdle, Origin{}, board.Board{}, nil
	c.mu.Unlock()

	if over == nil {
		c.cache.Store(snapshot)
		c.logger.Debug("drag dropped outside the board", slog.String("job_id", origin.Job.ID))
		return nil
	}

	current := c.cache.Load()
	pos, ok := current.Locate(origin.Job.ID).Get()
	if !ok {
		return nil
	}

	var changed []models.Status
	switch {
	case pos.Status != origin.Status:
		changed = []models.Status{origin.Status, pos.Status}
	case pos.Index != origin.Index:
		changed = []models.Status{pos.Status}
	default:
		return nil
	}

	changes := orderChanges(current.Placements(changed...))
	c.logger.Info("job moved",
		slog.String("job_id", origin.Job.ID),
		slog.String("from", fmt.Sprintf("%s/%d", origin.Status, origin.Index)),
		slog.String("to", fmt.Sprintf("%s/%d", pos.Status, pos.Index)),
	)
	return c.dispatch(ctx, &Command{
		Name:    "new job order",
		Changes: changes,
		before:  snapshot,
		run: func(ctx context.Context) error {
			return c.backend.UpdateOrder(ctx, changes)
		},
	})
}

// OnDragCancel abandons the gesture and restores the pre-drag board.
func (c *Controller) OnDragCancel() {
	c.mu.Lock()
	if c.state != StateDragging {
		c.mu.Unlock()
		return
	}
	snapshot := c.snapshot
	c.state, c.origin, c.snapshot, c.lastOver = StateIdle, Origin{}, board.Board{}, nil
	c.mu.Unlock()

	c.cache.Store(snapshot)
}

// Wait blocks until every command issued so far has settled.
func (c *Controller) Wait() {
	c.inflight.Wait()
}
