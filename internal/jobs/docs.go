// Package jobs provides scheduled background tasks for the order service.
//
// Jobs use github.com/robfig/cron/v3 with seconds resolution. Runs of the
// same job never overlap and a panic inside a run is logged, not fatal.
//
// # Available Jobs
//
//  1. OrderTimeoutJob - applies the merchant workflow timeout action (cancel or escalate)
//     to orders that stayed in a status longer than allowed
//  2. DeliveryCodeExpiryJob - expires active delivery codes past their expiry time
//  3. WorkflowRulesRefreshJob - reloads merchant workflow rules from the database
//
// # Usage
//
//	jobManager := jobs.NewJobManager(
//		jobs.NewOrderTimeoutJob(timeoutsHandler, cfg.OrderTimeoutSchedule, 0, logger),
//		jobs.NewDeliveryCodeExpiryJob(expiryHandler, cfg.DCCExpirySchedule, 0, logger),
//		jobs.NewWorkflowRulesRefreshJob(registry, cfg.RulesRefreshSchedule, logger),
//	)
//	if err := jobManager.StartAll(); err != nil {
//		return err
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// Every run logs its failure and waits for the next tick. Nothing is retried
// within a run; the next batch picks up whatever was left behind.
package jobs
