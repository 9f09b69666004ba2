package conversation

import (
	"context"
	"errors"
)

const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ErrGatewayUnavailable marks gateway failures caused by the provider being
// unreachable, over quota, or timing out. All other gateway failures are
// returned as plain wrapped errors. Both classes are terminal for the
// current inbound message.
var ErrGatewayUnavailable = errors.New("conversation: generation gateway unavailable")

// ChatMessage is one role-tagged turn of dialogue history. The history sent
// to the gateway is the literal, ordered sequence of these.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

type LLMRequest struct {
	Messages    []ChatMessage
	MaxTokens   int32
	Temperature float32
}

type LLMResponse struct {
	Text       string
	Usage      TokenUsage
	StopReason string
}

// LLMClient is the generation gateway: ordered dialogue history in, one text
// completion out.
type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}
