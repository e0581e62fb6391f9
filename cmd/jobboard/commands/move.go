package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/justsurfingit/job-board/internal/kanban"
	"github.com/justsurfingit/job-board/internal/models"
)

// JobMoveAction drags a card onto another card or onto an empty spot of a
// column, the same way the board UI does.
func JobMoveAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	b := appCtx.Controller.Board()
	job, err := resolveJob(b, cmd.String("job"))
	if err != nil {
		return err
	}

	var target kanban.Payload
	switch {
	case cmd.String("over-job") != "":
		over, err := resolveJob(b, cmd.String("over-job"))
		if err != nil {
			return err
		}
		target = kanban.Job(over.ID)
	case cmd.String("to-status") != "":
		status, err := models.ParseStatus(cmd.String("to-status"))
		if err != nil {
			return err
		}
		target = kanban.Column(status)
	default:
		return fmt.Errorf("either --over-job or --to-status is required")
	}

	// --watch prints the preview, then the saved or rolled back board.
	if cmd.Bool("watch") {
		stop := watchBoard(appCtx.Cache, os.Stdout)
		defer stop()
	}

	if err := waitFor(ctx, drag(ctx, appCtx.Controller, job.ID, target)); err != nil {
		return err
	}
	if !cmd.Bool("watch") {
		renderBoard(os.Stdout, appCtx.Controller.Board().Partitions())
	}
	return nil
}

// JobStatusAction changes a job's status from its detail view: the job goes
// to the end of the new column.
func JobStatusAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	job, err := resolveJob(appCtx.Controller.Board(), cmd.String("id"))
	if err != nil {
		return err
	}
	status, err := models.ParseStatus(cmd.String("status"))
	if err != nil {
		return err
	}

	command, err := appCtx.Controller.MoveToStatus(ctx, job.ID, status)
	if err != nil {
		return err
	}
	if err := waitFor(ctx, command); err != nil {
		return err
	}
	renderJob(os.Stdout, appCtx.Controller.Board().Job(job.ID).OrElse(job))
	return nil
}

// drag runs one full gesture: pick up id, hover it over target, drop it there.
func drag(ctx context.Context, ctrl *kanban.Controller, id string, target kanban.Payload) *kanban.Command {
	active := kanban.Job(id)
	ctrl.OnDragStart(active)
	ctrl.OnDragOver(active, target)
	return ctrl.OnDragEnd(ctx, target)
}
