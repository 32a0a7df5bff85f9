package llm

import "context"

// ChatModel is a minimal abstraction for chat-based LLMs used by the domain.
// Implementations send a single user prompt and return the model's text reply.
type ChatModel interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// Named is implemented by models that can report which underlying model
// answered.
type Named interface {
	ModelName() string
}

// Name returns m's model name, or "unknown" when m does not implement Named.
func Name(m ChatModel) string {
	if n, ok := m.(Named); ok && n.ModelName() != "" {
		return n.ModelName()
	}
	return "unknown"
}
