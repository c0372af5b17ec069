package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"

	domai "github.com/bryanwahyu/genefit/internal/domain/ai"
	"github.com/bryanwahyu/genefit/internal/domain/samples"
	"github.com/bryanwahyu/genefit/internal/infra/ai/prompt"
)

const (
	DefaultBaseURL = "https://api.aimlapi.com/v1"
	DefaultModel   = "gpt-4o-mini"

	analysisMaxTokens = 4096
	dietMaxTokens     = 2048

	noAnalysisText = "No analysis result returned."
	noDietPlanText = "No diet plan generated."
)

// Client implements domain ai.Client over an OpenAI-compatible chat endpoint.
type Client struct {
	*openai.Client
	Model string
}

// NewClient points the SDK at baseURL; an empty apiKey is sent as-is.
func NewClient(apiKey, baseURL, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = DefaultBaseURL
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &Client{Client: openai.NewClientWithConfig(cfg), Model: model}
}

// AnalyzeSamples sends the analysis instruction plus one image part per sample.
func (c *Client) AnalyzeSamples(ctx context.Context, list []samples.Sample) (string, error) {
	if len(list) == 0 {
		return "", &domai.ValidationError{Message: domai.MsgNoSamples}
	}
	parts := make([]openai.ChatMessagePart, 0, len(list)+1)
	parts = append(parts, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeText,
		Text: prompt.GetAnalysisPrompt(),
	})
	for _, s := range list {
		parts = append(parts, openai.ChatMessagePart{
			Type:     openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{URL: s.Preview},
		})
	}

	req := c.request(analysisMaxTokens, openai.ChatCompletionMessage{
		Role:         openai.ChatMessageRoleUser,
		MultiContent: parts,
	})
	text, err := c.complete(ctx, req)
	if err != nil {
		return "", err
	}
	if text == "" {
		return noAnalysisText, nil
	}
	return text, nil
}

// GenerateDietPlan sends the interpolated diet instruction as plain text.
func (c *Client) GenerateDietPlan(ctx context.Context, profile domai.ProfileInput) (string, error) {
	if err := profile.Validate(); err != nil {
		return "", err
	}
	req := c.request(dietMaxTokens, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt.GetDietPrompt(profile.Age, profile.Weight, profile.Height),
	})
	text, err := c.complete(ctx, req)
	if err != nil {
		return "", err
	}
	if text == "" {
		return noDietPlanText, nil
	}
	return text, nil
}

func (c *Client) request(maxTokens int, msg openai.ChatCompletionMessage) openai.ChatCompletionRequest {
	model := c.Model
	if model == "" {
		model = DefaultModel
	}
	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: []openai.ChatCompletionMessage{msg},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}
	return req
}

func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", &domai.ParseError{Err: errors.New("missing choices[0].message")}
	}
	return resp.Choices[0].Message.Content, nil
}

// classify maps SDK errors onto the transport/parse taxonomy.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &domai.TransportError{StatusCode: apiErr.HTTPStatusCode, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &domai.TransportError{StatusCode: reqErr.HTTPStatusCode, Err: err}
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &domai.ParseError{Err: err}
	}
	return &domai.TransportError{Err: err}
}
