package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/models"
)

// BoardShowAction prints the board, one column per status.
func BoardShowAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	b := appCtx.Controller.Board()
	parts := b.Partitions()
	if q := cmd.String("filter"); q != "" {
		parts = b.Filter(q)
	}
	renderBoard(os.Stdout, parts)
	return nil
}

// JobShowAction prints every field of one job.
func JobShowAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	job, err := resolveJob(appCtx.Controller.Board(), cmd.String("id"))
	if err != nil {
		return err
	}
	renderJob(os.Stdout, job)
	return nil
}

func renderBoard(w io.Writer, parts [][]models.Job) {
	table := tablewriter.NewWriter(w)

	header := make([]any, models.NumStatuses)
	rows := 0
	for _, s := range models.Statuses() {
		var n int
		if int(s) < len(parts) {
			n = len(parts[s])
		}
		header[s] = fmt.Sprintf("%s (%d)", s, n)
		rows = max(rows, n)
	}
	table.Header(header...)

	for i := 0; i < rows; i++ {
		row := make([]any, models.NumStatuses)
		for s := range row {
			row[s] = ""
			if s < len(parts) && i < len(parts[s]) {
				j := parts[s][i]
				row[s] = fmt.Sprintf("%s @ %s [%s]", j.Position, j.Company, shortID(j.ID))
			}
		}
		table.Append(row...)
	}

	table.Render()
}

func renderJob(w io.Writer, job models.Job) {
	table := tablewriter.NewWriter(w)
	table.Header("Field", "Value")

	table.Append("ID", job.ID)
	table.Append("Position", job.Position)
	table.Append("Company", job.Company)
	table.Append("Location", job.Location)
	table.Append("Status", job.Status.String())
	table.Append("Order", fmt.Sprintf("%d", job.Order))
	if job.Salary != "" {
		table.Append("Salary", job.Salary)
	}
	if job.Link != "" {
		table.Append("Link", job.Link)
	}
	if job.InterviewDate != nil {
		table.Append("Interview", job.InterviewDate.Format("2006-01-02 15:04"))
	}
	if job.ContractLink != "" {
		table.Append("Contract", job.ContractLink)
	}
	if job.CustomResumeLink != "" {
		table.Append("Resume", job.CustomResumeLink)
	}

	table.Render()
}

func renderDraft(w io.Writer, d *dtos.JobDraft) {
	table := tablewriter.NewWriter(w)
	table.Header("Field", "Value")

	table.Append("Company", d.Company)
	table.Append("Role", d.Position)
	table.Append("Location", d.Location)
	table.Append("Salary", d.Salary)
	table.Append("Tech stack", strings.Join(d.TechStack, ", "))
	table.Append("Link", d.Link)

	table.Render()
}
