package service_test

import (
	"context"
	"testing"

	"github.com/craftsites/autopost/internal/apperr"
	"github.com/craftsites/autopost/internal/models"
	"github.com/craftsites/autopost/internal/service"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	response   string
	err        error
	lastPrompt string
	imagesSeen int
	multimodal bool
}

func (f *fakeModel) GenerateText(_ context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	return f.response, f.err
}

func (f *fakeModel) GenerateWithImages(_ context.Context, prompt string, images []models.MediaImage) (string, error) {
	f.lastPrompt = prompt
	f.multimodal = true
	f.imagesSeen = len(images)
	return f.response, f.err
}

var testTenant = &models.Tenant{
	Domain:       "1234",
	BusinessName: "River City Roofing",
	Industry:     "roofing",
	Language:     "English",
}

func TestGenerate_PlainJSON(t *testing.T) {
	model := &fakeModel{response: `{"title": "New roofs in town", "body": "First paragraph.\n\nSecond paragraph."}`}
	gen := service.NewGeneratorService(model)

	post, err := gen.Generate(context.Background(), testTenant, "brief", nil)
	require.NoError(t, err)
	require.Equal(t, "New roofs in town", post.Title)
	require.Contains(t, post.Body, "Second paragraph.")
	require.False(t, model.multimodal)
}

func TestGenerate_FencedJSON(t *testing.T) {
	model := &fakeModel{response: "```json\n{\"title\": \"T\", \"body\": \"B\"}\n```"}
	gen := service.NewGeneratorService(model)

	post, err := gen.Generate(context.Background(), testTenant, "", nil)
	require.NoError(t, err)
	require.Equal(t, "T", post.Title)
}

func TestGenerate_JSONBuriedInProse(t *testing.T) {
	model := &fakeModel{response: `Sure! Here is the post you asked for:
{"title": "A {quoted} title", "body": "Braces { inside } strings are fine."}
Let me know if you want changes.`}
	gen := service.NewGeneratorService(model)

	post, err := gen.Generate(context.Background(), testTenant, "", nil)
	require.NoError(t, err)
	require.Equal(t, "A {quoted} title", post.Title)
}

func TestGenerate_NotJSONAtAll(t *testing.T) {
	model := &fakeModel{response: "not json at all"}
	gen := service.NewGeneratorService(model)

	_, err := gen.Generate(context.Background(), testTenant, "", nil)

	var parseErr *apperr.GenerationParseError
	require.ErrorAs(t, err, &parseErr)
	require.Contains(t, parseErr.Raw, "not json at all")
}

func TestGenerate_MissingFieldsIsParseError(t *testing.T) {
	model := &fakeModel{response: `{"headline": "wrong shape"}`}
	gen := service.NewGeneratorService(model)

	_, err := gen.Generate(context.Background(), testTenant, "", nil)

	var parseErr *apperr.GenerationParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestGenerate_RawIsTruncatedInParseError(t *testing.T) {
	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'x'
	}
	model := &fakeModel{response: string(long)}
	gen := service.NewGeneratorService(model)

	_, err := gen.Generate(context.Background(), testTenant, "", nil)

	var parseErr *apperr.GenerationParseError
	require.ErrorAs(t, err, &parseErr)
	require.LessOrEqual(t, len(parseErr.Raw), 500)
}

func TestGenerate_ImageGroundedPrompt(t *testing.T) {
	model := &fakeModel{response: `{"title": "T", "body": "B"}`}
	gen := service.NewGeneratorService(model)

	images := []models.MediaImage{
		{SourceID: "f1", MimeType: "image/jpeg", Data: "aaa"},
		{SourceID: "f2", MimeType: "image/jpeg", Data: "bbb"},
	}
	_, err := gen.Generate(context.Background(), testTenant, "brief", images)
	require.NoError(t, err)
	require.True(t, model.multimodal)
	require.Equal(t, 2, model.imagesSeen)
	require.Contains(t, model.lastPrompt, "exactly 2 paragraphs")
	require.Contains(t, model.lastPrompt, "River City Roofing")
}

func TestGenerate_TextOnlyPromptCarriesConstraints(t *testing.T) {
	model := &fakeModel{response: `{"title": "T", "body": "B"}`}
	gen := service.NewGeneratorService(model)

	_, err := gen.Generate(context.Background(), testTenant, "market brief", nil)
	require.NoError(t, err)
	require.Contains(t, model.lastPrompt, "market brief")
	require.Contains(t, model.lastPrompt, "English")
	require.Contains(t, model.lastPrompt, "world-class")
	require.Contains(t, model.lastPrompt, "award-winning")
}
