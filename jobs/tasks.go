package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionSweep removes registry records whose sessions have expired.
	TaskSessionSweep = "session:sweep"
	// TaskStatsWarmup refreshes the dashboard statistics cache.
	TaskStatsWarmup = "dashboard:warmup"
	// TaskAuditPrune trims audit entries past the retention window.
	TaskAuditPrune = "audit:prune"
)

// SessionSweepPayload carries scheduling metadata for the sweep.
type SessionSweepPayload struct {
	Batch int `json:"batch"`
}

// NewSessionSweepTask constructs the sweep task.
func NewSessionSweepTask(batch int) (*asynq.Task, error) {
	if batch <= 0 {
		batch = 500
	}
	body, err := json.Marshal(SessionSweepPayload{Batch: batch})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionSweep, body, asynq.Queue(QueueDefault)), nil
}

// NewStatsWarmupTask constructs the warmup task.
func NewStatsWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskStatsWarmup, nil, asynq.Queue(QueueDefault))
}

// AuditPrunePayload carries the retention window for the prune.
type AuditPrunePayload struct {
	Retention time.Duration `json:"retention"`
}

// NewAuditPruneTask constructs the prune task.
func NewAuditPruneTask(retention time.Duration) (*asynq.Task, error) {
	body, err := json.Marshal(AuditPrunePayload{Retention: retention})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditPrune, body, asynq.Queue(QueueDefault)), nil
}
