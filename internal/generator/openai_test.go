package generator

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/adaptiq/assessment-engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGenerator() *OpenAIGenerator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewOpenAIGenerator(nil, "test-model", time.Second, logger)
}

func validMCQ(text string) models.Question {
	return models.Question{
		Text:          text,
		Type:          models.MCQ,
		Topic:         "Algebra",
		Difficulty:    models.DifficultyEasy,
		CorrectAnswer: "4",
		Distractors:   []string{"3", "5", "6"},
	}
}

func TestSanitize_DropsMalformedQuestions(t *testing.T) {
	g := testGenerator()

	questions := []models.Question{
		validMCQ("What is 2+2?"),
		{Text: "", Type: models.MCQ, Topic: "Algebra", CorrectAnswer: "4", Distractors: []string{"3"}},
		{Text: "No answer", Type: models.ShortAnswer, Topic: "Algebra"},
		{Text: "No distractors", Type: models.MCQ, Topic: "Algebra", CorrectAnswer: "4"},
	}

	kept := g.sanitize(questions, Request{Count: 10})
	require.Len(t, kept, 1)
	assert.Equal(t, "What is 2+2?", kept[0].Text)
}

func TestSanitize_DropsAnswerLeakedIntoDistractors(t *testing.T) {
	g := testGenerator()

	q := validMCQ("What is 2+2?")
	q.Distractors = []string{"3", " 4 ", "5"}

	kept := g.sanitize([]models.Question{q}, Request{Count: 10})
	assert.Empty(t, kept)
}

func TestSanitize_DedupesByTextCaseInsensitive(t *testing.T) {
	g := testGenerator()

	questions := []models.Question{
		validMCQ("What is 2+2?"),
		validMCQ("what is 2+2?  "),
		validMCQ("What is 3+3?"),
	}

	kept := g.sanitize(questions, Request{Count: 10})
	assert.Len(t, kept, 2)
}

func TestSanitize_CapsAtRequestedCount(t *testing.T) {
	g := testGenerator()

	questions := []models.Question{
		validMCQ("Q1"), validMCQ("Q2"), validMCQ("Q3"), validMCQ("Q4"),
	}

	kept := g.sanitize(questions, Request{Count: 2})
	assert.Len(t, kept, 2)
}

func TestBuildPrompt_SingleTopicFocus(t *testing.T) {
	prompt := buildPrompt(Request{
		Subject: "Mathematics",
		Topics:  []string{"Trigonometry"},
		Count:   5,
	})

	assert.Contains(t, prompt, "Generate exactly 5 questions")
	assert.Contains(t, prompt, "'Trigonometry'")
	assert.Contains(t, prompt, "MUST focus exclusively")
	assert.Contains(t, prompt, "All questions generated MUST be of the 'MCQ' type")
}

func TestBuildPrompt_TypeDistribution(t *testing.T) {
	prompt := buildPrompt(Request{
		Subject: "Mathematics",
		Count:   10,
		TypeCounts: map[models.QuestionType]int{
			models.MCQ:         5,
			models.FillInBlank: 3,
			models.ShortAnswer: 2,
		},
	})

	assert.Contains(t, prompt, "5 questions of type 'MCQ'")
	assert.Contains(t, prompt, "3 questions of type 'FillInBlank'")
	assert.Contains(t, prompt, "2 questions of type 'ShortAnswer'")
	assert.NotContains(t, prompt, "All questions generated MUST be of the 'MCQ' type")
}

func TestMockGenerator_FabricatesRequestedShape(t *testing.T) {
	mock := &MockGenerator{}

	questions, err := mock.Generate(context.Background(), Request{
		Subject: "Physics",
		Topics:  []string{"Optics", "Waves"},
		Count:   4,
		TypeCounts: map[models.QuestionType]int{
			models.MCQ:         2,
			models.ShortAnswer: 2,
		},
	})
	require.NoError(t, err)
	require.Len(t, questions, 4)

	for _, q := range questions {
		assert.True(t, q.WellFormed(), "fabricated question must pass boundary validation: %+v", q)
	}
	assert.Equal(t, models.MCQ, questions[0].Type)
	assert.Equal(t, models.ShortAnswer, questions[3].Type)
}
