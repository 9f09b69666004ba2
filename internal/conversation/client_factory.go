package conversation

import (
	"context"
	"fmt"

	"github.com/hafta3/tablebot/internal/config"
)

// NewLLMClient selects the gateway implementation from configuration.
func NewLLMClient(ctx context.Context, cfg *config.Config) (LLMClient, error) {
	switch cfg.LLMProvider {
	case "", "gemini":
		return NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case "openai", "openrouter":
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	default:
		return nil, fmt.Errorf("conversation: unknown LLM provider %q", cfg.LLMProvider)
	}
}
