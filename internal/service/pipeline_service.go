package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/craftsites/autopost/internal/apperr"
	"github.com/craftsites/autopost/internal/models"
)

// PipelineService runs one tenant's posting pipeline end to end. Stages are
// strictly sequential; each depends on the previous stage's output.
type PipelineService interface {
	RunTenant(ctx context.Context, tenant *models.Tenant) (string, error)
}

type pipelineService struct {
	media     MediaService
	persister PersisterService
	research  ResearchService
	generator GeneratorService
	mirror    MirrorService
	cache     CacheService
}

func NewPipelineService(
	media MediaService,
	persister PersisterService,
	research ResearchService,
	generator GeneratorService,
	mirror MirrorService,
	cache CacheService) PipelineService {
	return &pipelineService{
		media:     media,
		persister: persister,
		research:  research,
		generator: generator,
		mirror:    mirror,
		cache:     cache,
	}
}

func (s *pipelineService) RunTenant(ctx context.Context, tenant *models.Tenant) (string, error) {
	stage := func(name string, err error) error {
		return &apperr.PipelineError{Stage: name, Tenant: tenant.Domain, Err: err}
	}

	folders, err := s.media.ListFolders(ctx, tenant)
	if err != nil {
		return "", stage("folders", err)
	}
	if len(folders) == 0 {
		return "", stage("folders", errors.New("no eligible content folders"))
	}

	lastUsed, err := s.persister.LastFolder(ctx, tenant)
	if err != nil {
		return "", stage("cursor", err)
	}
	folder := NextFolder(folders, lastUsed)
	slog.Info("selected content folder", "tenant", tenant.Domain, "folder", folder.Name, "last_used", lastUsed)

	images, err := s.media.FetchImages(ctx, folder.ID)
	if err != nil {
		return "", stage("images", err)
	}

	brief, err := s.research.Research(ctx, tenant)
	if err != nil {
		return "", stage("research", err)
	}

	post, err := s.generator.Generate(ctx, tenant, brief, images)
	if err != nil {
		return "", stage("generate", err)
	}

	imageURLs := s.mirror.MirrorImages(ctx, tenant.Domain, images)

	postID, err := s.persister.Upsert(ctx, tenant, post, folder.Name, imageURLs)
	if err != nil {
		return "", stage("persist", err)
	}

	if err := s.cache.InvalidatePage(ctx, tenant.Domain); err != nil {
		return postID, stage("invalidate", err)
	}
	return postID, nil
}
