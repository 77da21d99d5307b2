package jobs

import (
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskBillingOverdueScan reports invoices past their due date.
	TaskBillingOverdueScan = "billing:overdue_scan"
	// TaskReportsWarmup pre-computes the report datasets into the cache.
	TaskReportsWarmup = "reports:warmup"
)

// NewOverdueScanTask constructs the overdue-scan task. The scan takes
// no parameters; it always covers the whole invoice book.
func NewOverdueScanTask() *asynq.Task {
	return asynq.NewTask(TaskBillingOverdueScan, nil)
}

// NewReportsWarmupTask constructs the report-warmup task.
func NewReportsWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskReportsWarmup, nil)
}
