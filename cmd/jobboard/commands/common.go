package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/justsurfingit/job-board/internal/board"
	"github.com/justsurfingit/job-board/internal/client"
	"github.com/justsurfingit/job-board/internal/config"
	"github.com/justsurfingit/job-board/internal/kanban"
	"github.com/justsurfingit/job-board/internal/logger"
	"github.com/justsurfingit/job-board/internal/models"
)

// AppContext holds what every board command needs.
type AppContext struct {
	Config     *config.Config
	Client     *client.Client
	Cache      *board.Cache
	Controller *kanban.Controller
	Logger     *slog.Logger
}

// NewAppContext loads the configuration and fetches the current board.
func NewAppContext(ctx context.Context, envFile string) (*AppContext, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.New(logger.Config{
		Level:   logger.ParseLevel(cfg.Log.Level),
		Format:  "text",
		Service: "jobboard",
		Output:  os.Stderr,
	})

	api := client.New(cfg.Board.APIURL,
		client.WithToken(cfg.Board.Token),
		client.WithUser(cfg.Board.UserID),
		client.WithLogger(appLogger),
	)

	appCtx := newAppContext(cfg, api, appLogger, os.Stderr)
	if err := appCtx.Controller.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("failed to load the board: %w", err)
	}
	return appCtx, nil
}

func newAppContext(cfg *config.Config, api *client.Client, l *slog.Logger, notices io.Writer) *AppContext {
	cache := board.NewCache(board.Board{})
	ctrl := kanban.NewController(cache, api,
		kanban.WithLogger(l),
		kanban.WithTimeout(cfg.Board.RequestTimeout),
		kanban.WithNotifier(writerNotifier(notices)),
	)
	return &AppContext{
		Config:     cfg,
		Client:     api,
		Cache:      cache,
		Controller: ctrl,
		Logger:     l,
	}
}

// Close waits for background saves to finish.
func (ac *AppContext) Close() {
	ac.Controller.Wait()
}

// watchBoard renders the board to w after every change until the returned
// func is called.
func watchBoard(cache *board.Cache, w io.Writer) func() {
	return cache.Subscribe(func(b board.Board) {
		renderBoard(w, b.Partitions())
	})
}

func writerNotifier(w io.Writer) kanban.Notifier {
	return kanban.NotifierFunc(func(message string, err error) {
		if err != nil {
			fmt.Fprintf(w, "⚠️  %s: %v\n", message, err)
			return
		}
		fmt.Fprintf(w, "%s\n", message)
	})
}

// resolveJob finds a job by its id or by an unambiguous id prefix.
func resolveJob(b board.Board, ref string) (models.Job, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Job{}, fmt.Errorf("job id is required")
	}
	if job, ok := b.Job(ref).Get(); ok {
		return job, nil
	}

	var matches []models.Job
	for _, part := range b.Partitions() {
		for _, j := range part {
			if strings.HasPrefix(j.ID, ref) {
				matches = append(matches, j)
			}
		}
	}
	switch len(matches) {
	case 0:
		return models.Job{}, fmt.Errorf("%w: %s", kanban.ErrJobNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return models.Job{}, fmt.Errorf("job id %q is ambiguous (%d matches)", ref, len(matches))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// waitFor blocks until cmd has been saved. A nil command means nothing changed.
func waitFor(ctx context.Context, cmd *kanban.Command) error {
	if cmd == nil {
		return nil
	}
	select {
	case <-cmd.Done():
		return cmd.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}
