// Package worker implements the discovery pipeline execution loop.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/willzeng274/HaystackDiet/internal/menu"
	"github.com/willzeng274/HaystackDiet/internal/metrics"
)

// MenuFinder runs the geo-fanout pipeline for one coordinate.
type MenuFinder interface {
	FindMenus(ctx context.Context, lat, lon float64, radius int) ([]menu.Restaurant, menu.JobCounters)
}

// Config controls Worker behavior.
type Config struct {
	Topic      string
	JobTimeout time.Duration
}

// Worker consumes queue items and executes the discovery pipeline.
type Worker struct {
	queue    menu.Queue
	jobStore menu.JobStore
	catalogs menu.CatalogStore
	pub      menu.Publisher
	finder   MenuFinder
	cfg      Config
	logger   *zap.Logger
}

// New constructs a Worker.
func New(
	queue menu.Queue,
	jobStore menu.JobStore,
	catalogs menu.CatalogStore,
	pub menu.Publisher,
	finder MenuFinder,
	cfg Config,
	logger *zap.Logger,
) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Topic == "" {
		cfg.Topic = "menu-discoveries"
	}
	return &Worker{
		queue:    queue,
		jobStore: jobStore,
		catalogs: catalogs,
		pub:      pub,
		finder:   finder,
		cfg:      cfg,
		logger:   logger,
	}
}

// CompletionEvent is the payload published when a job reaches a terminal
// state with a stored catalog.
type CompletionEvent struct {
	JobID       string    `json:"job_id"`
	Status      string    `json:"status"`
	Restaurants int       `json:"restaurants"`
	FinishedAt  time.Time `json:"finished_at"`
}

// Run blocks, consuming queue items until the context finishes.
func (w *Worker) Run(ctx context.Context) {
	for {
		item, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("queue dequeue failed", zap.Error(err))
			continue
		}
		w.logger.Debug("dequeued job", zap.String("job_id", item.JobID))
		w.processJob(ctx, item)
	}
}

func (w *Worker) processJob(ctx context.Context, item menu.QueueItem) {
	metrics.IncActiveWorkers()
	defer metrics.DecActiveWorkers()

	if err := w.jobStore.UpdateJobStatus(ctx, item.JobID, menu.JobStatusRunning, "", menu.JobCounters{}); err != nil {
		w.logger.Error("update job status failed", zap.String("job_id", item.JobID), zap.Error(err))
		return
	}

	jobCtx := ctx
	if w.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, w.cfg.JobTimeout)
		defer cancel()
	}

	catalog, counters := w.finder.FindMenus(jobCtx, item.Params.Latitude, item.Params.Longitude, item.Params.Radius)

	status := menu.JobStatusSucceeded
	errText := ""
	if err := w.catalogs.SaveCatalog(ctx, item.JobID, catalog); err != nil {
		status = menu.JobStatusFailed
		errText = "save catalog: " + err.Error()
		w.logger.Error("catalog save failed", zap.String("job_id", item.JobID), zap.Error(err))
	}
	if jobCtx.Err() != nil && ctx.Err() == nil {
		status = menu.JobStatusFailed
		errText = "job deadline exceeded"
	}
	if ctx.Err() != nil {
		status = menu.JobStatusCanceled
		errText = "shutdown before completion"
	}

	if err := w.jobStore.UpdateJobStatus(ctx, item.JobID, status, errText, counters); err != nil {
		w.logger.Error("final job status update failed", zap.String("job_id", item.JobID), zap.Error(err))
	}
	metrics.ObserveJob(string(status))

	if status == menu.JobStatusSucceeded {
		w.publishCompletion(ctx, item.JobID, status, len(catalog))
	}

	w.logger.Info("job finished",
		zap.String("job_id", item.JobID),
		zap.String("status", string(status)),
		zap.Int("restaurants", counters.RestaurantsKept),
	)
}

func (w *Worker) publishCompletion(ctx context.Context, jobID string, status menu.JobStatus, restaurants int) {
	if w.pub == nil {
		return
	}
	event := CompletionEvent{
		JobID:       jobID,
		Status:      string(status),
		Restaurants: restaurants,
		FinishedAt:  time.Now().UTC(),
	}
	if _, err := w.pub.Publish(ctx, w.cfg.Topic, event); err != nil {
		w.logger.Warn("completion publish failed", zap.String("job_id", jobID), zap.Error(err))
	}
}
