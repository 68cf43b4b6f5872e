package queue

import (
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
)

// EnqueueFleetRun schedules one fleet batch. TaskID keeps a still-pending
// run from being queued twice by overlapping cron fires.
func EnqueueFleetRun(asynqClient *asynq.Client, payload FleetRunPayload) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeFleetRun, taskPayload)

	_, err = asynqClient.Enqueue(task, asynq.TaskID(TaskTypeFleetRun))
	if err != nil {
		return err
	}

	log.Printf("Fleet run enqueued: %+v", payload)
	return nil
}
