// Package ai wraps the OpenAI API for the private-assistant commands.
//
// The engine talks to this package through its core.AIClient interface, so
// only the two calls it needs are exposed: Ask for chat completions and
// Paint for image generation.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/keepmind9/rosebot/internal/logger"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const systemPrompt = "You are Rose, a helpful Telegram assistant. " +
	"Answer concisely and stay friendly."

// Client is the OpenAI-backed assistant client
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates an assistant client. An empty model selects the default
// chat model.
func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}

	return &Client{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Ask sends a question to the chat model and returns the answer. The caller
// bounds the request through ctx.
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)

	logger.WithFields(logrus.Fields{
		"model":         c.model,
		"answer_length": len(answer),
	}).Debug("chat-completion-succeeded")

	return answer, nil
}

// Paint generates an image for the prompt and returns its URL
func (c *Client) Paint(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return "", fmt.Errorf("image generation: %w", err)
	}

	if len(resp.Data) == 0 {
		return "", fmt.Errorf("no image data")
	}

	logger.WithField("model", c.model).Debug("image-generation-succeeded")

	return resp.Data[0].URL, nil
}
