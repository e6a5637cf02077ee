package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Message is a minimal chat message passed to the model.
// Role must be one of: "system", "user", or "assistant".
type Message struct {
	Role    string
	Content string
}

// Client defines the completion interface the intake service depends on.
// Chat accepts the full message history (system + prior turns + latest user).
type Client interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// OllamaClient talks to a local Ollama server through its OpenAI-compatible
// endpoint. The service runs entirely against local inference; no data
// leaves the host.
type OllamaClient struct {
	client *openai.Client
	model  string
}

// NewOllamaClient constructs a client against the given Ollama base URL
// (e.g. http://localhost:11434/v1) using the given model.
func NewOllamaClient(baseURL, model string) *OllamaClient {
	cfg := openai.DefaultConfig("ollama") // Ollama ignores the API key but the client requires one
	cfg.BaseURL = baseURL

	return &OllamaClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Chat sends the message history to the model and returns the assistant's
// response text.
func (c *OllamaClient) Chat(ctx context.Context, messages []Message) (string, error) {
	if c.client == nil {
		return "", errors.New("llm client not initialized")
	}

	oaMsgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := m.Role
		if role != openai.ChatMessageRoleSystem && role != openai.ChatMessageRoleUser && role != openai.ChatMessageRoleAssistant {
			// coerce anything unknown to user
			role = openai.ChatMessageRoleUser
		}
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    oaMsgs,
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
