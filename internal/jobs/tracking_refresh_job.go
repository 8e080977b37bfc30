package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"buyback/internal/core/application/usecases/commands"
	"buyback/internal/core/application/usecases/queries"
	"buyback/internal/pkg/errs"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultTrackingSchedule polls every 30 minutes.
const DefaultTrackingSchedule = "@every 30m"

// TrackableOrdersLister lists the orders a poll should refresh.
type TrackableOrdersLister interface {
	Handle(ctx context.Context, query queries.GetTrackableOrdersQuery) ([]int64, error)
}

// TrackingRefresher refreshes a single order.
type TrackingRefresher interface {
	Handle(ctx context.Context, cmd commands.RefreshTrackingCommand) (commands.RefreshTrackingResult, error)
}

// PollSummary counts what one poll did.
type PollSummary struct {
	Listed    int
	Changed   int
	Unchanged int
	Skipped   int
	Failed    int
}

// TrackingRefreshJob refreshes every trackable order on a cron schedule.
// A failing order is logged and the batch moves on. Scheduled polls run on
// a context that Stop cancels.
type TrackingRefreshJob struct {
	lister    TrackableOrdersLister
	refresher TrackingRefresher
	schedule  string
	timeout   time.Duration
	cron      *cron.Cron
	logger    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewTrackingRefreshJob creates the job. An empty schedule falls back to
// DefaultTrackingSchedule; orderTimeout bounds each refresh when positive.
func NewTrackingRefreshJob(
	lister TrackableOrdersLister,
	refresher TrackingRefresher,
	schedule string,
	orderTimeout time.Duration,
	logger *zap.Logger,
) *TrackingRefreshJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	if schedule == "" {
		schedule = DefaultTrackingSchedule
	}
	logger = logger.With(zap.String("component", "tracking_refresh_job"))
	cl := cronLogger{logger: logger}
	ctx, cancel := context.WithCancel(context.Background())
	return &TrackingRefreshJob{
		lister:    lister,
		refresher: refresher,
		schedule:  schedule,
		timeout:   orderTimeout,
		cron:      cron.New(cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl), cron.Recover(cl))),
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start registers the poll and starts the scheduler.
func (j *TrackingRefreshJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		_, err := j.RunOnce(j.ctx)
		switch {
		case errors.Is(err, context.Canceled):
			j.logger.Info("tracking poll interrupted by shutdown")
		case err != nil:
			j.logger.Error("tracking poll failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", j.schedule, err)
	}

	j.cron.Start()
	j.logger.Info("tracking refresh job started", zap.String("schedule", j.schedule))
	return nil
}

// Stop cancels a running poll and waits for it to return.
func (j *TrackingRefreshJob) Stop() {
	j.cancel()
	<-j.cron.Stop().Done()
	j.logger.Info("tracking refresh job stopped")
}

// RunOnce polls every trackable order once. Only a failure to list the
// orders is returned; refresh failures are counted in the summary.
func (j *TrackingRefreshJob) RunOnce(ctx context.Context) (PollSummary, error) {
	var summary PollSummary

	query, err := queries.NewGetTrackableOrdersQuery(0)
	if err != nil {
		return summary, err
	}
	ids, err := j.lister.Handle(ctx, query)
	if err != nil {
		return summary, fmt.Errorf("list trackable orders: %w", err)
	}
	summary.Listed = len(ids)

	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		j.refreshOne(ctx, id, &summary)
	}

	j.logger.Info("tracking poll finished",
		zap.Int("listed", summary.Listed),
		zap.Int("changed", summary.Changed),
		zap.Int("unchanged", summary.Unchanged),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed))
	return summary, ctx.Err()
}

func (j *TrackingRefreshJob) refreshOne(ctx context.Context, id int64, summary *PollSummary) {
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	cmd, err := commands.NewRefreshTrackingCommand(id)
	if err != nil {
		summary.Failed++
		j.logger.Error("bad order id from store", zap.Int64("order_id", id), zap.Error(err))
		return
	}

	res, err := j.refresher.Handle(ctx, cmd)
	switch {
	case errors.Is(err, errs.ErrNoTrackingNumber):
		summary.Skipped++
		j.logger.Debug("order has no tracking number", zap.Int64("order_id", id))
	case err != nil:
		summary.Failed++
		j.logger.Warn("tracking refresh failed",
			zap.Int64("order_id", id),
			zap.String("status", res.PreviousStatus),
			zap.Error(err))
	case res.Changed:
		summary.Changed++
	default:
		summary.Unchanged++
	}
}

// cronLogger routes scheduler messages into zap.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
