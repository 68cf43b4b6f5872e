package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/craftsites/autopost/internal/apperr"
	"github.com/craftsites/autopost/internal/models"
)

// GeneratorService turns a tenant, a research brief and a set of images into
// a structured post. All raw-text inspection of the model response is
// confined to this service.
type GeneratorService interface {
	Generate(ctx context.Context, tenant *models.Tenant, brief string, images []models.MediaImage) (*models.GeneratedPost, error)
}

type generatorService struct {
	model TextModel
}

func NewGeneratorService(model TextModel) GeneratorService {
	return &generatorService{model: model}
}

var bannedSuperlatives = []string{
	"best", "greatest", "ultimate", "world-class", "number one", "unbeatable", "perfect",
}

var bannedCredentials = []string{
	"award-winning", "certified", "licensed", "accredited", "officially recognized",
}

const (
	minParagraphsTextOnly = 3
	maxParagraphsTextOnly = 5
	minParagraphWords     = 120
	maxParagraphWords     = 220
	minNameMentions       = 2
)

func (s *generatorService) Generate(ctx context.Context, tenant *models.Tenant, brief string, images []models.MediaImage) (*models.GeneratedPost, error) {
	var raw string
	var err error

	if len(images) > 0 {
		raw, err = s.model.GenerateWithImages(ctx, imagePrompt(tenant, brief, len(images)), images)
	} else {
		raw, err = s.model.GenerateText(ctx, textPrompt(tenant, brief))
	}
	if err != nil {
		return nil, err
	}

	post, err := extractPost(raw)
	if err != nil {
		slog.Error("unparseable model response", "tenant", tenant.Domain, "raw", truncate(raw, 500))
		return nil, err
	}
	return post, nil
}

func promptRules(tenant *models.Tenant, brief string) string {
	language := tenant.Language
	if language == "" {
		language = "English"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You write a blog post for %s, a small business in the %s industry.\n", tenant.BusinessName, tenant.Industry)
	if tenant.Brief != "" {
		fmt.Fprintf(&sb, "About the business: %s\n", tenant.Brief)
	}
	if brief != "" {
		fmt.Fprintf(&sb, "Current market context: %s\n", brief)
	}
	// The model must not infer "now" from image metadata.
	fmt.Fprintf(&sb, "The current date is %s; anchor any seasonal or relative-time language to it.\n", time.Now().Format("January 2006"))
	fmt.Fprintf(&sb, "Write the entire post in %s.\n", language)
	fmt.Fprintf(&sb, "Each paragraph must be between %d and %d words.\n", minParagraphWords, maxParagraphWords)
	fmt.Fprintf(&sb, "Mention the business name %q at least %d times.\n", tenant.BusinessName, minNameMentions)
	fmt.Fprintf(&sb, "Never use these words: %s.\n", strings.Join(bannedSuperlatives, ", "))
	fmt.Fprintf(&sb, "Never claim credentials such as: %s.\n", strings.Join(bannedCredentials, ", "))
	sb.WriteString("Separate paragraphs with exactly one blank line.\n")
	sb.WriteString(`Respond with a single JSON object of the form {"title": "...", "body": "..."} and nothing else.`)
	sb.WriteString("\n")
	return sb.String()
}

func imagePrompt(tenant *models.Tenant, brief string, imageCount int) string {
	var sb strings.Builder
	sb.WriteString(promptRules(tenant, brief))
	fmt.Fprintf(&sb, "The post is grounded in the %d attached photos of the business's recent work.\n", imageCount)
	fmt.Fprintf(&sb, "Write exactly %d paragraphs, one per photo in order, each describing the work shown.\n", imageCount)
	return sb.String()
}

func textPrompt(tenant *models.Tenant, brief string) string {
	var sb strings.Builder
	sb.WriteString(promptRules(tenant, brief))
	fmt.Fprintf(&sb, "Write between %d and %d paragraphs about the business's services and expertise.\n", minParagraphsTextOnly, maxParagraphsTextOnly)
	return sb.String()
}

// extractPost pulls the post JSON out of free-form model text: code fences
// are stripped, then the first brace-balanced substring is decoded.
func extractPost(raw string) (*models.GeneratedPost, error) {
	candidate := extractJSON(stripFences(raw))
	if candidate == "" {
		return nil, apperr.NewGenerationParseError(raw)
	}

	var post models.GeneratedPost
	if err := json.Unmarshal([]byte(candidate), &post); err != nil {
		return nil, apperr.NewGenerationParseError(raw)
	}
	if post.Title == "" || post.Body == "" {
		return nil, apperr.NewGenerationParseError(raw)
	}
	return &post, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:] // drop the language tag line
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// extractJSON returns the first brace-balanced object in s, tracking string
// and escape state so braces inside values do not end the scan early.
func extractJSON(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
