package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/craftsites/autopost/internal/models"
	"github.com/craftsites/autopost/internal/repository"
	"github.com/craftsites/autopost/pkg/utils"
)

// FleetService iterates all active tenants in bounded-concurrency batches.
// Groups run sequentially; tenants inside a group run concurrently, and a
// tenant failure never cancels its siblings.
type FleetService interface {
	RunFleet(ctx context.Context) (*models.BatchRun, error)
}

type fleetService struct {
	tenants   repository.TenantRepository
	pipeline  PipelineService
	notifier  NotifierService
	batchSize int
}

func NewFleetService(
	tenants repository.TenantRepository,
	pipeline PipelineService,
	notifier NotifierService,
	batchSize int) FleetService {
	if batchSize <= 0 {
		batchSize = 5
	}
	return &fleetService{
		tenants:   tenants,
		pipeline:  pipeline,
		notifier:  notifier,
		batchSize: batchSize,
	}
}

// RunFleet returns an error only when enumeration fails: a partial tenant
// list is never trusted. Per-tenant failures are reported data inside the
// returned BatchRun.
func (s *fleetService) RunFleet(ctx context.Context) (*models.BatchRun, error) {
	runID := utils.RunID()
	start := time.Now()

	active, err := s.tenants.LoadActive(ctx)
	if err != nil {
		slog.Error("fleet enumeration failed", "run_id", runID, "error", err.Error())
		return nil, err
	}

	run := &models.BatchRun{
		RunID:     runID,
		StartedAt: start,
		Total:     len(active),
		Outcomes:  make([]models.TenantOutcome, len(active)),
	}
	slog.Info("fleet run started", "run_id", runID, "tenants", run.Total, "batch_size", s.batchSize)

	for groupStart := 0; groupStart < len(active); groupStart += s.batchSize {
		groupEnd := groupStart + s.batchSize
		if groupEnd > len(active) {
			groupEnd = len(active)
		}

		var wg sync.WaitGroup
		for i := groupStart; i < groupEnd; i++ {
			wg.Add(1)
			go func(i int, tenant *models.Tenant) {
				defer wg.Done()
				run.Outcomes[i] = s.runOne(ctx, tenant)
			}(i, active[i])
		}
		wg.Wait()

		run.Succeeded = 0
		run.Failed = 0
		for _, o := range run.Outcomes[:groupEnd] {
			if o.Success {
				run.Succeeded++
			} else {
				run.Failed++
			}
		}
		slog.Info("fleet group finished", "run_id", runID, "done", groupEnd, "failed", run.Failed)
	}

	run.Duration = time.Since(start)
	run.Completed = true

	if run.Total > 0 && run.Failed == run.Total {
		slog.Error("fleet-wide failure: every tenant failed", "run_id", runID, "tenants", run.Total)
	}

	if s.notifier != nil {
		if err := s.notifier.SendRunDigest(ctx, run); err != nil {
			slog.Error("run digest delivery failed", "run_id", runID, "error", err.Error())
		}
	}

	slog.Info("fleet run finished", "run_id", runID,
		"succeeded", run.Succeeded, "failed", run.Failed, "duration", run.Duration.String())
	return run, nil
}

func (s *fleetService) runOne(ctx context.Context, tenant *models.Tenant) (outcome models.TenantOutcome) {
	outcome.Tenant = tenant.Domain

	// A panicking stage must not take the rest of the batch down.
	defer func() {
		if r := recover(); r != nil {
			outcome.Success = false
			outcome.Error = fmt.Sprintf("panic: %v", r)
			slog.Error("tenant pipeline panicked", "tenant", tenant.Domain, "panic", fmt.Sprint(r))
		}
	}()

	postID, err := s.pipeline.RunTenant(ctx, tenant)
	if err != nil {
		outcome.Error = err.Error()
		slog.Error("tenant pipeline failed", "tenant", tenant.Domain, "error", err.Error())
		return outcome
	}

	outcome.Success = true
	outcome.PostID = postID
	return outcome
}
