package geminiservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"FitPlanPro/internal/config"
	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// SDKClient uses the official Go SDK instead of raw HTTP.
type SDKClient struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	name    string
	timeout time.Duration
	logger  *zerolog.Logger
}

func NewSDKClient(ctx context.Context, cfg config.GeminiConfig, systemPrompt string, logger *zerolog.Logger) (*SDKClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.ResponseMIMEType = "text/plain"
	if systemPrompt != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(systemPrompt))
	}

	return &SDKClient{client: client, model: model, name: cfg.Model, timeout: cfg.Timeout, logger: logger}, nil
}

func (c *SDKClient) Describe() map[string]string {
	return map[string]string{"transport": config.TransportSDK, "model": c.name}
}

func (c *SDKClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.Debug().Str("model", c.name).Msg("Calling Gemini SDK...")

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("%w: %s", ErrBlocked, resp.PromptFeedback.BlockReason)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String(), nil
		}
	}

	return "", ErrEmptyResponse
}

// Close releases the underlying gRPC connection.
func (c *SDKClient) Close() error {
	return c.client.Close()
}
