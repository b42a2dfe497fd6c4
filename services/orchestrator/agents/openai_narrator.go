// Copyright (C) 2026 Oselund Data (privmon@oselund.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agents

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

const narratorSystemPrompt = "You are a third-party privacy auditor writing " +
	"for a non-technical audience."

// OpenAINarrator generates narratives through an OpenAI-compatible chat
// completion API. Calls are rate-limited so a large batch of per-dataset
// summaries does not trip provider quotas.
type OpenAINarrator struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter
}

// NewOpenAINarrator builds a narrator from the environment: OPENAI_API_KEY
// (required), OPENAI_MODEL, and optionally OPENAI_BASE_URL for
// OpenAI-compatible local servers.
func NewOpenAINarrator() (*OpenAINarrator, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = openai.GPT4oMini
		slog.Warn("OPENAI_MODEL not set, defaulting", "model", model)
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); baseURL != "" {
		config.BaseURL = baseURL
	}

	slog.Info("Initializing OpenAI narrator", "model", model)
	return &OpenAINarrator{
		client:  openai.NewClientWithConfig(config),
		model:   model,
		limiter: rate.NewLimiter(rate.Limit(1), 2),
	}, nil
}

func (n *OpenAINarrator) Narrate(ctx context.Context, prompt string) (string, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for narrative rate limit: %w", err)
	}

	resp, err := n.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: n.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: narratorSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("narrative API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("narrative API returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
