// Package llm defines the external model client boundary the orchestrator
// invokes for non-CRITICAL turns, plus the concrete Bedrock and Gemini
// implementations and a primary/fallback wrapper between them.
package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of conversation history passed to the model.
type Message struct {
	Role    string
	Content string
}

// TokenUsage reports the model's accounting for a single completion.
type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

// Request is a single completion request: the system prompt (which names
// the role, forbids fabricated resources and victim-blaming, and instructs
// tool-call usage per the orchestrator's per-turn construction) plus the
// conversation history.
type Request struct {
	Model       string
	System      []string
	Messages    []Message
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

// Response is raw, unparsed model output: the orchestrator runs it through
// toolcall.Parse and classifier.PostScan before it ever reaches a user.
type Response struct {
	Text       string
	Usage      TokenUsage
	StopReason string
}

// Client is the boundary the orchestrator calls for step 4 of a turn. The
// only operation in the pipeline's hot path allowed to block on I/O.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}
