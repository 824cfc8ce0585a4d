package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/adaptiq/assessment-engine/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIGenerator produces questions through chat completions. Responses are
// treated as untrusted: the JSON array is extracted from whatever text comes
// back, and every item passes boundary validation before it is returned.
type OpenAIGenerator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

func NewOpenAIGenerator(client *openai.Client, model string, timeout time.Duration, logger *slog.Logger) *OpenAIGenerator {
	return &OpenAIGenerator{
		client:  client,
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

// Generate runs one completion round plus at most one retry when the first
// round yields nothing usable.
func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) ([]models.Question, error) {
	prompt := buildPrompt(req)

	questions, err := g.generateOnce(ctx, prompt, req)
	if err == nil && len(questions) > 0 {
		return questions, nil
	}
	if err != nil {
		g.logger.Warn("question generation round failed, retrying once",
			"subject", req.Subject,
			"error", err)
	} else {
		g.logger.Warn("question generation produced no usable questions, retrying once",
			"subject", req.Subject)
	}

	questions, err = g.generateOnce(ctx, prompt, req)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	return questions, nil
}

func (g *OpenAIGenerator) generateOnce(ctx context.Context, prompt string, req Request) ([]models.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
		},
		Temperature: 0.5,
	})
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("generation response had no choices")
	}

	raw := ExtractJSONArray(resp.Choices[0].Message.Content)
	if raw == "" {
		return nil, fmt.Errorf("generation response contained no JSON array")
	}

	var questions []models.Question
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		return nil, fmt.Errorf("failed to decode generated questions: %w", err)
	}

	return g.sanitize(questions, req), nil
}

// sanitize drops malformed questions and duplicates, keeping at most
// req.Count items.
func (g *OpenAIGenerator) sanitize(questions []models.Question, req Request) []models.Question {
	seen := make(map[string]bool, len(questions))
	kept := make([]models.Question, 0, len(questions))
	for _, q := range questions {
		if !q.WellFormed() {
			g.logger.Debug("dropping malformed generated question", "text", q.Text)
			continue
		}
		key := strings.ToLower(strings.TrimSpace(q.Text))
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, q)
		if req.Count > 0 && len(kept) == req.Count {
			break
		}
	}
	return kept
}

func buildPrompt(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b,
		"You are an expert curriculum designer. Your task is to create a quiz for a student studying %s.\n"+
			"Generate exactly %d questions in a strict JSON format.\n",
		req.Subject, req.Count)

	switch len(req.Topics) {
	case 0:
		fmt.Fprintf(&b, "The quiz should cover a general range of important topics from the %s syllabus.\n", req.Subject)
	case 1:
		fmt.Fprintf(&b,
			"The quiz MUST focus exclusively on the topic: '%s'. "+
				"Ensure all questions are relevant to this specific topic as it appears in the %s syllabus.\n",
			req.Topics[0], req.Subject)
	default:
		fmt.Fprintf(&b,
			"This is a personalized test. Prioritize generating questions from these topics: %s. "+
				"You can also include 1-2 questions from other related areas to ensure variety.\n",
			strings.Join(req.Topics, ", "))
	}

	if len(req.TypeCounts) > 0 {
		b.WriteString("\nThe question distribution MUST be:\n")
		for _, t := range []models.QuestionType{models.MCQ, models.FillInBlank, models.ShortAnswer} {
			if n := req.TypeCounts[t]; n > 0 {
				fmt.Fprintf(&b, "- %d questions of type '%s'\n", n, t)
			}
		}
	} else {
		b.WriteString("\n**CRITICAL REQUIREMENT: All questions generated MUST be of the 'MCQ' type.**\n")
	}

	if len(req.DifficultyMix) > 0 {
		b.WriteString("The difficulty distribution SHOULD be:\n")
		for _, d := range []models.DifficultyLevel{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard} {
			if n := req.DifficultyMix[d]; n > 0 {
				fmt.Fprintf(&b, "- %d '%s' questions\n", n, d)
			}
		}
	}

	b.WriteString(
		"\nFor each question, you must:\n" +
			"1. Identify a specific, granular topic from the syllabus (e.g., 'Trigonometric Ratios', not just 'Trigonometry').\n" +
			"2. Assign a difficulty level: 'Easy', 'Medium', or 'Hard'.\n" +
			"3. Provide the correct answer and, for MCQs, three plausible but incorrect 'distractors'.\n" +
			"4. Provide a clear, step-by-step 'explanation' for how to arrive at the correct answer.\n\n" +
			"**ABSOLUTELY NO PLACEHOLDERS**: every question and option must be a specific, real example from the subject matter.\n" +
			"**Output MUST be a valid JSON array (`[]`) of objects (`{}`). Do not include any text, notes, or apologies outside the JSON structure.**\n" +
			"Each object must have the keys: `question_text`, `question_type` (one of 'MCQ', 'FillInBlank', 'ShortAnswer'), " +
			"`topic`, `difficulty`, `answer`, `distractors` (empty list for non-MCQ) and `explanation`.\n" +
			"Example format for a single MCQ object:\n" +
			"{\n" +
			"  \"question_text\": \"If a rectangle has a length of 8 cm and a width of 5 cm, what is its area?\",\n" +
			"  \"question_type\": \"MCQ\",\n" +
			"  \"topic\": \"Area and Perimeter\",\n" +
			"  \"difficulty\": \"Easy\",\n" +
			"  \"answer\": \"40 sq cm\",\n" +
			"  \"distractors\": [\"13 cm\", \"26 sq cm\", \"32 sq cm\"],\n" +
			"  \"explanation\": \"The formula for the area of a rectangle is Length x Width. Area = 8 cm x 5 cm = 40 sq cm.\"\n" +
			"}\n")

	return b.String()
}
