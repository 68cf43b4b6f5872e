package queue

import (
	"github.com/craftsites/autopost/internal/service"
)

type Queue struct {
	fleet service.FleetService
}

func NewQueue(fleet service.FleetService) *Queue {
	return &Queue{fleet: fleet}
}

const TaskTypeFleetRun = "fleet:run"

type FleetRunPayload struct {
	Reason string `json:"reason"`
}
