package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/justsurfingit/job-board/cmd/jobboard/commands"
)

func envFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "env",
		Usage: "path to the environment file",
		Value: ".env",
	}
}

func idFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "id",
		Usage:    "job id or a unique prefix of it",
		Required: true,
	}
}

// editFlags are the job fields that can be set from the command line.
func editFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "position", Usage: "role title"},
		&cli.StringFlag{Name: "company", Usage: "company name"},
		&cli.StringFlag{Name: "location", Usage: "job location"},
		&cli.StringFlag{Name: "description", Usage: "job description"},
		&cli.StringFlag{Name: "salary", Usage: "salary range"},
		&cli.StringFlag{Name: "link", Usage: "posting URL"},
		&cli.StringFlag{Name: "resume", Usage: "link to the resume sent"},
		&cli.StringFlag{Name: "contract", Usage: "link to the contract"},
		&cli.StringFlag{Name: "interview", Usage: "interview date (RFC3339)"},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "jobboard",
		Usage: "kanban board for job applications",
		Commands: []*cli.Command{
			{
				Name:   "board",
				Usage:  "show the board",
				Flags:  []cli.Flag{envFlag(), &cli.StringFlag{Name: "filter", Usage: "only jobs whose position contains this text"}},
				Action: commands.BoardShowAction,
			},
			{
				Name:  "job",
				Usage: "job commands",
				Commands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "show one job",
						Flags:  []cli.Flag{envFlag(), idFlag()},
						Action: commands.JobShowAction,
					},
					{
						Name:  "move",
						Usage: "drag a job onto another job or onto a column",
						Flags: []cli.Flag{
							envFlag(),
							&cli.StringFlag{Name: "job", Usage: "job to move", Required: true},
							&cli.StringFlag{Name: "over-job", Usage: "job to drop it on"},
							&cli.StringFlag{Name: "to-status", Usage: "column to drop it on (name or number)"},
							&cli.BoolFlag{Name: "watch", Usage: "print the board after every change"},
						},
						Action: commands.JobMoveAction,
					},
					{
						Name:  "status",
						Usage: "change a job's status; it goes to the end of the new column",
						Flags: []cli.Flag{
							envFlag(),
							idFlag(),
							&cli.StringFlag{Name: "status", Usage: "new status (name or number)", Required: true},
						},
						Action: commands.JobStatusAction,
					},
					{
						Name:  "create",
						Usage: "add a job",
						Flags: append([]cli.Flag{
							envFlag(),
							&cli.StringFlag{Name: "status", Usage: "status (name or number)", Value: "wishlist"},
						}, editFlags()...),
						Action: commands.JobCreateAction,
					},
					{
						Name:   "edit",
						Usage:  "change fields of a job",
						Flags:  append([]cli.Flag{envFlag(), idFlag()}, editFlags()...),
						Action: commands.JobEditAction,
					},
					{
						Name:   "delete",
						Usage:  "delete a job",
						Flags:  []cli.Flag{envFlag(), idFlag()},
						Action: commands.JobDeleteAction,
					},
					{
						Name:  "extract",
						Usage: "read job details out of a saved posting",
						Flags: []cli.Flag{
							envFlag(),
							&cli.StringFlag{Name: "file", Usage: "HTML or text of the posting", Required: true},
							&cli.StringFlag{Name: "url", Usage: "where the posting came from"},
							&cli.BoolFlag{Name: "create", Usage: "add the result to the wishlist"},
						},
						Action: commands.JobExtractAction,
					},
				},
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
