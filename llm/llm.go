// Package llm abstracts the upstream text generation service consumed
// by the chat relay. The relay only needs two capabilities: streaming a
// reply to a conversation and producing a short one-shot completion for
// titles.
package llm

import "context"

// Role values for conversation messages sent upstream.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of conversation history.
type Message struct {
	Role    string
	Content string
}

// Generator produces text from a conversation. StreamText calls fn for
// every chunk as it arrives; returning an error from fn aborts the
// stream. GenerateText returns a complete short response.
type Generator interface {
	StreamText(ctx context.Context, system string, messages []Message, fn func(chunk string) error) error
	GenerateText(ctx context.Context, prompt string) (string, error)
}
