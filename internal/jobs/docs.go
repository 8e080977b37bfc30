// Package jobs provides the scheduled background tasks of the buyback service.
//
// Jobs are cron-driven (github.com/robfig/cron/v3) and managed through
// JobManager:
//
//	job := jobs.NewTrackingRefreshJob(trackableOrders, &refreshHandler, cfg.TrackingPollSchedule, timeout, logger)
//	manager := jobs.NewJobManager(job)
//	if err := manager.StartAll(); err != nil {
//		return err
//	}
//	defer manager.StopAll()
//
// # Tracking poll
//
// TrackingRefreshJob lists orders in trackable statuses, legacy spellings
// included, and refreshes each of them against the carrier. Orders without a
// tracking number are skipped. Any other per-order failure is logged at warn
// level and does not stop the batch. A poll still running when the next tick
// fires causes that tick to be skipped.
package jobs
