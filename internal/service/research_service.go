package service

import (
	"context"
	"fmt"
	"time"

	"github.com/craftsites/autopost/internal/models"
)

// ResearchService produces a short market-context brief for a tenant. One
// call, no retry: a failed brief fails the tenant's run.
type ResearchService interface {
	Research(ctx context.Context, tenant *models.Tenant) (string, error)
}

type researchService struct {
	model TextModel
}

func NewResearchService(model TextModel) ResearchService {
	return &researchService{model: model}
}

func (s *researchService) Research(ctx context.Context, tenant *models.Tenant) (string, error) {
	language := tenant.Language
	if language == "" {
		language = "English"
	}

	prompt := fmt.Sprintf(
		"You are a market researcher. In %s, write a brief of at most 150 words on current "+
			"consumer trends and seasonal topics (as of %s) relevant to a small business in the "+
			"%s industry. Plain text only, no lists, no headings.",
		language, time.Now().Format("January 2006"), tenant.Industry,
	)

	return s.model.GenerateText(ctx, prompt)
}
