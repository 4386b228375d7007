package chat

import (
	"context"
	"fmt"
	"strings"

	"ragchat/internal/llm"
)

// Condenser compresses conversation history into short textual
// summaries and rewrites follow-up questions into standalone queries.
// It uses a smaller, cheaper model than the answer generator.
type Condenser struct {
	provider    llm.Provider
	model       string
	temperature float32
}

// NewCondenser creates a condenser backed by the given provider and
// model.
func NewCondenser(provider llm.Provider, model string, temperature float32) *Condenser {
	return &Condenser{provider: provider, model: model, temperature: temperature}
}

// Summarize produces a short summary of the history. Histories of up
// to two turns are concatenated deterministically without a model
// call; longer histories are summarized by the model from their last
// ten turns.
func (c *Condenser) Summarize(ctx context.Context, history []Interaction) (string, error) {
	if len(history) == 0 {
		return "", nil
	}

	if len(history) <= 2 {
		var lines []string
		for _, turn := range history {
			lines = append(lines, "User asked: "+turn.Question)
			lines = append(lines, "Assistant answered: "+turn.Answer)
		}
		return strings.Join(lines, "\n"), nil
	}

	recent := history
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	var lines []string
	for _, turn := range recent {
		lines = append(lines, fmt.Sprintf("User: %s\nAssistant: %s", turn.Question, turn.Answer))
	}

	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		Model: c.model,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: summarizationPrompt(strings.Join(lines, "\n"))},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("summarizing history: %w", err)
	}
	return resp.Content, nil
}

// Reformulate rewrites a follow-up question into a standalone query
// using at most the last three turns as context. An empty history
// returns the question unchanged. A model failure or malformed output
// fails the call; no silent fallback to the original question.
func (c *Condenser) Reformulate(ctx context.Context, question string, history []Interaction) (string, error) {
	if len(history) == 0 {
		return question, nil
	}

	recent := history
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}
	var lines []string
	for _, turn := range recent {
		lines = append(lines, fmt.Sprintf("User: %s\nAssistant: %s", turn.Question, turn.Answer))
	}

	var out llm.ReformulatedOutput
	err := llm.CompleteJSON(ctx, c.provider, llm.CompletionRequest{
		Model: c.model,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: reformulationPrompt(strings.Join(lines, "\n"), question)},
		},
		Temperature: c.temperature,
	}, &out)
	if err != nil {
		return "", fmt.Errorf("reformulating question: %w", err)
	}
	if out.Question == "" {
		return "", fmt.Errorf("reformulating question: %w", llm.ErrMalformedOutput)
	}
	return out.Question, nil
}
