package kanban

import (
	"context"
	"log/slog"

	"github.com/justsurfingit/job-board/internal/board"
	"github.com/justsurfingit/job-board/internal/dtos"
)

// Command is one optimistic mutation waiting for the server. It keeps the
// board as it was before the mutation until it settles.
type Command struct {
	Name    string
	Changes []dtos.OrderChange

	before board.Board
	run    func(ctx context.Context) error
	done   chan struct{}
	err    error
}

// Done is closed once the command has settled.
func (c *Command) Done() <-chan struct{} { return c.done }

// Err is the server error, if any. Only meaningful after Done is closed.
func (c *Command) Err() error {
	<-c.done
	return c.err
}

// dispatch runs cmd in the background. On success the cache is replaced with
// a fresh server read; on failure the pre-command board is restored whole.
func (c *Controller) dispatch(ctx context.Context, cmd *Command) *Command {
	cmd.done = make(chan struct{})
	ctx = context.WithoutCancel(ctx)

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		defer close(cmd.done)

		runCtx, cancel := c.withTimeout(ctx)
		defer cancel()

		if err := cmd.run(runCtx); err != nil {
			cmd.err = err
			c.cache.Store(cmd.before)
			c.logger.Warn("board change rolled back",
				slog.String("command", cmd.Name),
				slog.String("error", err.Error()),
			)
			c.notifier.Notify("Could not save "+cmd.Name, err)
			return
		}

		c.logger.Debug("board change saved", slog.String("command", cmd.Name), slog.Int("changes", len(cmd.Changes)))
		if err := c.reconcile(runCtx); err != nil {
			c.logger.Warn("refetch after save failed",
				slog.String("command", cmd.Name),
				slog.String("error", err.Error()),
			)
		}
	}()
	return cmd
}

func (c *Controller) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func orderChanges(ps []board.Placement) []dtos.OrderChange {
	out := make([]dtos.OrderChange, len(ps))
	for i, p := range ps {
		out[i] = dtos.OrderChange{
			ID:      p.ID,
			Changes: dtos.OrderChanges{Order: p.Order, Status: p.Status},
		}
	}
	return out
}
