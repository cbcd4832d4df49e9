// Package geminiservice talks to the Gemini text-generation API.
package geminiservice

import (
	"context"
	"errors"

	"FitPlanPro/internal/config"
	"github.com/rs/zerolog"
)

var (
	ErrNotConfigured = errors.New("server is not configured for AI plans")
	ErrEmptyResponse = errors.New("no content found in Gemini response")
	ErrBlocked       = errors.New("gemini blocked the request")
)

// Generator produces free text for a prompt.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	// Describe reports the transport and model for health checks.
	Describe() map[string]string
}

// NewFromConfig returns the Generator selected by cfg.Transport. Without an
// API key it returns a Generator that fails every call with ErrNotConfigured,
// so the server can still start and serve the form.
func NewFromConfig(ctx context.Context, cfg config.GeminiConfig, systemPrompt string, logger *zerolog.Logger) (Generator, error) {
	if cfg.APIKey == "" {
		logger.Error().Msg("GEMINI_API_KEY environment variable is not set; AI plans are disabled")
		return unconfigured{model: cfg.Model}, nil
	}

	switch cfg.Transport {
	case config.TransportSDK:
		return NewSDKClient(ctx, cfg, systemPrompt, logger)
	default:
		return NewRESTClient(cfg, systemPrompt, logger), nil
	}
}

type unconfigured struct {
	model string
}

func (u unconfigured) GenerateText(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}

func (u unconfigured) Describe() map[string]string {
	return map[string]string{"transport": "none", "model": u.model}
}
