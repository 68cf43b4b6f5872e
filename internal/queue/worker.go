package queue

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

func (q *Queue) HandleFleetRunTask(ctx context.Context, task *asynq.Task) error {
	var payload FleetRunPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	run, err := q.fleet.RunFleet(ctx)
	if err != nil {
		// Enumeration failures are retryable; asynq backs off and retries.
		return err
	}

	slog.Info("scheduled fleet run finished",
		"run_id", run.RunID, "reason", payload.Reason,
		"succeeded", run.Succeeded, "failed", run.Failed)
	return nil
}
