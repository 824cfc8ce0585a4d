package grader

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/adaptiq/assessment-engine/internal/generator"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIGrader evaluates answers semantically through chat completions.
// Spelling slips are forgiven; only the meaning of the answer is judged.
type OpenAIGrader struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

func NewOpenAIGrader(client *openai.Client, model string, timeout time.Duration, logger *slog.Logger) *OpenAIGrader {
	return &OpenAIGrader{
		client:  client,
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

func (g *OpenAIGrader) Grade(ctx context.Context, question, correctAnswer, userAnswer string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	prompt := buildGradingPrompt(question, correctAnswer, userAnswer)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
		},
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("grading request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: response had no choices", ErrUnusableVerdict)
	}

	raw := generator.ExtractJSONObject(resp.Choices[0].Message.Content)
	if raw == "" {
		g.logger.Warn("grading response contained no JSON object")
		return nil, ErrUnusableVerdict
	}

	var result Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		g.logger.Warn("grading response could not be decoded", "error", err)
		return nil, ErrUnusableVerdict
	}
	if !ValidScore(result.Score) {
		g.logger.Warn("grading verdict carried an out-of-set score", "score", result.Score)
		return nil, ErrUnusableVerdict
	}
	return &result, nil
}

func buildGradingPrompt(question, correctAnswer, userAnswer string) string {
	var b strings.Builder
	fmt.Fprintf(&b,
		"You are an expert teacher evaluating a student's answer. Your task is to perform a semantic comparison.\n"+
			"**Question:** %s\n"+
			"**Correct Answer:** %s\n"+
			"**Student's Answer:** %s\n\n",
		question, correctAnswer, userAnswer)
	b.WriteString(
		"**Instructions:**\n" +
			"1. Ignore minor spelling mistakes (e.g., 'sinee' instead of 'sine').\n" +
			"2. Focus on the core meaning. Is the student's understanding correct?\n" +
			"3. Determine a score: 1.0 for a correct or mostly correct answer, 0.5 for a partially correct answer " +
			"that shows some understanding but is incomplete, and 0.0 for an incorrect answer.\n" +
			"4. Provide one sentence of brief, encouraging feedback.\n\n" +
			"**CRITICAL**: Respond ONLY with a valid JSON object in the format: " +
			"{\"score\": [score], \"feedback\": \"[your feedback]\"}\n\n" +
			"**Example:**\n" +
			"{\"score\": 1.0, \"feedback\": \"Excellent! You've correctly identified the key concept.\"}")
	return b.String()
}
