package translator

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const defaultModel = openai.GPT4oMini

// OpenAI translates text through a chat completion. The translation prompt
// is prepended to each segment the way the CLI's prompt file defines it.
type OpenAI struct {
	client *openai.Client
	model  string
	prompt string
}

func NewOpenAI(apiKey, model, prompt string) *OpenAI {
	if model == "" {
		model = defaultModel
	}
	return &OpenAI{
		client: openai.NewClient(apiKey),
		model:  model,
		prompt: prompt,
	}
}

func (t *OpenAI) Name() string { return "openai" }

func (t *OpenAI) Translate(ctx context.Context, text string) (string, error) {
	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: t.prompt + "\n---\n" + text,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("translation request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("translation: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
