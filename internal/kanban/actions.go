package kanban

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/justsurfingit/job-board/internal/board"
	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/models"
)

// Refresh replaces the board with the server's copy.
func (c *Controller) Refresh(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.reconcile(ctx)
}

func (c *Controller) reconcile(ctx context.Context) error {
	jobs, err := c.backend.ListJobs(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch jobs: %w", err)
	}
	b, err := board.New(jobs)
	if err != nil {
		return fmt.Errorf("failed to build board: %w", err)
	}
	c.cache.Store(b)
	return nil
}

// MoveToStatus puts a job at the bottom of another column without a drag, as
// the status picker on a job's detail view does. Both columns are saved.
func (c *Controller) MoveToStatus(ctx context.Context, id string, status models.Status) (*Command, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %d", board.ErrInvalidStatus, int(status))
	}

	var changes []dtos.OrderChange
	before, err := c.mutate(func(b board.Board) (board.Board, error) {
		pos, ok := b.Locate(id).Get()
		if !ok {
			return b, fmt.Errorf("%w: %s", ErrJobNotFound, id)
		}
		if pos.Status == status {
			return b, nil
		}
		next := b.MovedAcrossPartitions(pos.Status, pos.Index, status, board.End)
		changes = orderChanges(next.Placements(pos.Status, status))
		return next, nil
	})
	if err != nil || changes == nil {
		return nil, err
	}

	return c.dispatch(ctx, &Command{
		Name:    "status change",
		Changes: changes,
		before:  before,
		run: func(ctx context.Context) error {
			return c.backend.UpdateOrder(ctx, changes)
		},
	}), nil
}

// Edit applies patch to the job on the board right away and saves it.
func (c *Controller) Edit(ctx context.Context, id string, patch dtos.JobPatch) (*Command, error) {
	before, err := c.mutate(func(b board.Board) (board.Board, error) {
		job, ok := b.Job(id).Get()
		if !ok {
			return b, fmt.Errorf("%w: %s", ErrJobNotFound, id)
		}
		patch.Apply(&job)
		return b.Replaced(job), nil
	})
	if err != nil {
		return nil, err
	}

	return c.dispatch(ctx, &Command{
		Name:   "job changes",
		before: before,
		run: func(ctx context.Context) error {
			_, err := c.backend.EditJob(ctx, id, patch)
			return err
		},
	}), nil
}

// Remove takes the job off the board right away and deletes it on the server.
func (c *Controller) Remove(ctx context.Context, id string) (*Command, error) {
	before, err := c.mutate(func(b board.Board) (board.Board, error) {
		if b.Locate(id).IsAbsent() {
			return b, fmt.Errorf("%w: %s", ErrJobNotFound, id)
		}
		return b.Removed(id), nil
	})
	if err != nil {
		return nil, err
	}

	return c.dispatch(ctx, &Command{
		Name:   "job removal",
		before: before,
		run: func(ctx context.Context) error {
			return c.backend.DeleteJob(ctx, id)
		},
	}), nil
}

// Create saves a new job and adds it to the bottom of its column. The server
// picks the id, so there is nothing to show before it answers.
func (c *Controller) Create(ctx context.Context, req dtos.JobCreationRequest) (*models.Job, error) {
	if !req.Status.Valid() {
		return nil, fmt.Errorf("%w: %d", board.ErrInvalidStatus, int(req.Status))
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	job, err := c.backend.CreateJob(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	c.cache.Update(func(b board.Board) board.Board {
		if b.Locate(job.ID).IsPresent() || !job.Status.Valid() {
			return b
		}
		return b.AppendedToPartition(job.Status, *job)
	})
	c.logger.Info("job created", slog.String("job_id", job.ID), slog.String("status", job.Status.String()))
	return job, nil
}

// mutate applies fn to the cached board atomically. When fn fails the board
// is left as it was.
func (c *Controller) mutate(fn func(board.Board) (board.Board, error)) (board.Board, error) {
	var before board.Board
	var err error
	c.cache.Update(func(b board.Board) board.Board {
		before = b
		next, fnErr := fn(b)
		if fnErr != nil {
			err = fnErr
			return b
		}
		return next
	})
	return before, err
}
