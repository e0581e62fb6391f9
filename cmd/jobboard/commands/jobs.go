package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/models"
)

// JobCreateAction adds a job at the end of its column.
func JobCreateAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	req, err := createRequestFromFlags(cmd)
	if err != nil {
		return err
	}

	job, err := appCtx.Controller.Create(ctx, req)
	if err != nil {
		return err
	}
	renderJob(os.Stdout, *job)
	return nil
}

// JobEditAction changes the given fields of a job.
func JobEditAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	job, err := resolveJob(appCtx.Controller.Board(), cmd.String("id"))
	if err != nil {
		return err
	}
	patch, err := patchFromFlags(cmd)
	if err != nil {
		return err
	}

	command, err := appCtx.Controller.Edit(ctx, job.ID, patch)
	if err != nil {
		return err
	}
	if err := waitFor(ctx, command); err != nil {
		return err
	}
	renderJob(os.Stdout, appCtx.Controller.Board().Job(job.ID).OrElse(job))
	return nil
}

// JobDeleteAction removes a job and closes the gap in its column.
func JobDeleteAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	job, err := resolveJob(appCtx.Controller.Board(), cmd.String("id"))
	if err != nil {
		return err
	}
	command, err := appCtx.Controller.Remove(ctx, job.ID)
	if err != nil {
		return err
	}
	if err := waitFor(ctx, command); err != nil {
		return err
	}
	fmt.Printf("Deleted %s @ %s\n", job.Position, job.Company)
	return nil
}

// JobExtractAction reads a saved job posting and prints what the API pulls
// out of it. With --create the draft is added to the wishlist.
func JobExtractAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	raw, err := os.ReadFile(cmd.String("file"))
	if err != nil {
		return fmt.Errorf("failed to read posting: %w", err)
	}
	draft, err := appCtx.Client.ExtractJob(ctx, string(raw), cmd.String("url"))
	if err != nil {
		return err
	}

	if !cmd.Bool("create") {
		renderDraft(os.Stdout, draft)
		return nil
	}
	job, err := appCtx.Controller.Create(ctx, draftRequest(draft))
	if err != nil {
		return err
	}
	renderJob(os.Stdout, *job)
	return nil
}

// createRequestFromFlags builds a new job from the create command's flags.
func createRequestFromFlags(cmd *cli.Command) (dtos.JobCreationRequest, error) {
	status, err := models.ParseStatus(cmd.String("status"))
	if err != nil {
		return dtos.JobCreationRequest{}, err
	}
	req := dtos.JobCreationRequest{
		Position:         cmd.String("position"),
		Company:          cmd.String("company"),
		Location:         cmd.String("location"),
		Description:      cmd.String("description"),
		Link:             cmd.String("link"),
		Salary:           cmd.String("salary"),
		Status:           status,
		ContractLink:     cmd.String("contract"),
		CustomResumeLink: cmd.String("resume"),
	}
	if cmd.IsSet("interview") {
		at, err := parseInterview(cmd.String("interview"))
		if err != nil {
			return req, err
		}
		req.InterviewDate = &at
	}
	return req, nil
}

func patchFromFlags(cmd *cli.Command) (dtos.JobPatch, error) {
	var patch dtos.JobPatch
	str := func(name string, dst **string) {
		if cmd.IsSet(name) {
			v := cmd.String(name)
			*dst = &v
		}
	}
	str("position", &patch.Position)
	str("company", &patch.Company)
	str("location", &patch.Location)
	str("description", &patch.Description)
	str("salary", &patch.Salary)
	str("link", &patch.Link)
	str("resume", &patch.CustomResumeLink)
	str("contract", &patch.ContractLink)

	if cmd.IsSet("interview") {
		at, err := parseInterview(cmd.String("interview"))
		if err != nil {
			return patch, err
		}
		patch.InterviewDate = &at
	}
	return patch, nil
}

func parseInterview(raw string) (time.Time, error) {
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("--interview wants RFC3339 (2025-01-02T15:04:05Z): %w", err)
	}
	return at, nil
}

func draftRequest(d *dtos.JobDraft) dtos.JobCreationRequest {
	return dtos.JobCreationRequest{
		Position:    d.Position,
		Company:     d.Company,
		Location:    d.Location,
		Description: d.Description,
		Link:        d.Link,
		Salary:      d.Salary,
		Status:      models.StatusWishlist,
	}
}
