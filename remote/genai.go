package remote

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// GenAIClient asks the Gemini API through the genai SDK.
type GenAIClient struct {
	client      *genai.Client
	modelName   string
	retryDelays []time.Duration
}

// NewGenAIClient creates a client for the Gemini API.
func NewGenAIClient(ctx context.Context, apiKey, modelName string) (*GenAIClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "initializing genai client")
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	return &GenAIClient{client: client, modelName: modelName}, nil
}

// WithRetries makes the client retry server-side failures once per delay.
func (c *GenAIClient) WithRetries(delays ...time.Duration) *GenAIClient {
	c.retryDelays = delays
	return c
}

// Model is the name of the model queried.
func (c *GenAIClient) Model() string {
	return c.modelName
}

func (c *GenAIClient) Ask(ctx context.Context, q Query) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(q.Prompt(), genai.RoleUser)}
	return withRetries(ctx, c.retryDelays, func() (string, error) {
		log.Debug().Str("model", c.modelName).Msg("generating content")
		response, err := c.client.Models.GenerateContent(ctx, c.modelName, contents, &genai.GenerateContentConfig{})
		if err != nil {
			return "", errors.Wrapf(err, "generating content with %s", c.modelName)
		}
		return firstText(response), nil
	})
}

// firstText returns the text of the first part of the first candidate.
func firstText(response *genai.GenerateContentResponse) string {
	if response == nil || len(response.Candidates) == 0 {
		return ""
	}
	content := response.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 || content.Parts[0] == nil {
		return ""
	}
	return content.Parts[0].Text
}
