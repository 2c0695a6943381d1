package ai

import (
	"context"
	"fmt"

	"NetSentra/internal/config"
	"NetSentra/internal/model"

	"github.com/sashabaranov/go-openai"
)

const systemPrompt = `You are a network security analyst. Given the details of
a behavioral intrusion alert (port scan, protocol flood), explain in a short
markdown report what the activity likely is, how confident you are, and which
immediate actions the operator should take.`

// IncidentAnalyzer implements model.Analyzer over the OpenAI chat API.
type IncidentAnalyzer struct {
	cfg    *config.AIConfig
	client *openai.Client
}

var _ model.Analyzer = (*IncidentAnalyzer)(nil)

// NewIncidentAnalyzer creates a new instance of IncidentAnalyzer.
func NewIncidentAnalyzer(cfg *config.AIConfig) (*IncidentAnalyzer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("AI API key is not configured")
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &IncidentAnalyzer{cfg: cfg, client: openai.NewClientWithConfig(clientConfig)}, nil
}

// AnalyzeIncident asks the model for an assessment of one alert.
func (a *IncidentAnalyzer) AnalyzeIncident(ctx context.Context, input string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:     a.cfg.Model,
		MaxTokens: 1024,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: input},
		},
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}
