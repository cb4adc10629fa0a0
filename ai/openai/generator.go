// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/poiesic/askit/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.Generator using OpenAI-compatible chat APIs.
type Generator struct {
	client llms.Model
	logger *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for chat/generation
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.GeneratorHost),
		openai.WithToken("none"),
		openai.WithModel(config.GeneratorModel),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client: client,
		logger: slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewGenerator creates a new answer generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// Generate performs one grounded model call. No retry: a failure here is the
// orchestrator's to classify.
func (g *Generator) Generate(ctx context.Context, query, docContext string) (string, error) {
	prompt := buildAnswerPrompt(query, docContext)

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(prompt),
			},
		},
	}

	g.logger.Debug("generating answer", "queryLength", len(query), "contextLength", len(docContext))

	response, err := g.client.GenerateContent(ctx, content, llms.WithTemperature(0.0))
	if err != nil {
		g.logger.Error("failed to generate answer", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		g.logger.Warn("no choices returned from model")
		return "", errors.New("model returned no choices")
	}

	return strings.TrimSpace(response.Choices[0].Content), nil
}
