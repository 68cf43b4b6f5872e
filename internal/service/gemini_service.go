package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	config "github.com/craftsites/autopost/configs"
	"github.com/craftsites/autopost/internal/models"
	"github.com/go-resty/resty/v2"
)

// TextModel is the generative endpoint the researcher and generator call.
// Both methods return the raw response text; structured extraction happens
// at a single boundary in the generator.
type TextModel interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateWithImages(ctx context.Context, prompt string, images []models.MediaImage) (string, error)
}

type geminiService struct {
	client *resty.Client
	cfg    config.Gemini
}

func NewGeminiService(cfg config.Gemini) TextModel {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.Endpoint, "/")).
		SetTimeout(cfg.Timeout)
	return &geminiService{client: client, cfg: cfg}
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *geminiService) GenerateText(ctx context.Context, prompt string) (string, error) {
	return s.generate(ctx, []geminiPart{{Text: prompt}})
}

func (s *geminiService) GenerateWithImages(ctx context.Context, prompt string, images []models.MediaImage) (string, error) {
	parts := make([]geminiPart, 0, len(images)+1)
	parts = append(parts, geminiPart{Text: prompt})
	for _, img := range images {
		parts = append(parts, geminiPart{
			InlineData: &geminiInlineData{MimeType: img.MimeType, Data: img.Data},
		})
	}
	return s.generate(ctx, parts)
}

func (s *geminiService) generate(ctx context.Context, parts []geminiPart) (string, error) {
	body := geminiRequest{Contents: []geminiContent{{Parts: parts}}}

	var parsed geminiResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("key", s.cfg.APIKey).
		SetBody(body).
		SetResult(&parsed).
		SetError(&parsed).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", s.cfg.Model))
	if err != nil {
		slog.Error(err.Error())
		return "", err
	}
	if resp.StatusCode() != 200 {
		if parsed.Error != nil {
			err = fmt.Errorf("model returned status %d: %s", resp.StatusCode(), parsed.Error.Message)
		} else {
			err = fmt.Errorf("model returned status %d", resp.StatusCode())
		}
		slog.Error(err.Error())
		return "", err
	}
	if len(parsed.Candidates) == 0 {
		err = errors.New("model returned no candidates")
		slog.Error(err.Error())
		return "", err
	}

	var sb strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}
