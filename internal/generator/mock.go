package generator

import (
	"context"
	"fmt"

	"github.com/adaptiq/assessment-engine/internal/models"
)

// MockGenerator is a deterministic Generator for tests. When Questions is
// set it is returned as-is; otherwise synthetic questions are fabricated to
// match the request.
type MockGenerator struct {
	Questions []models.Question
	Err       error
	// Requests records every request received, in order.
	Requests []Request
}

func (m *MockGenerator) Generate(ctx context.Context, req Request) ([]models.Question, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Questions != nil {
		return m.Questions, nil
	}
	return fabricate(req), nil
}

func fabricate(req Request) []models.Question {
	types := expandTypes(req)

	questions := make([]models.Question, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		topic := req.Subject
		if len(req.Topics) > 0 {
			topic = req.Topics[i%len(req.Topics)]
		}
		q := models.Question{
			Text:          fmt.Sprintf("Sample question %d on %s", i+1, topic),
			Type:          types[i],
			Topic:         topic,
			Difficulty:    models.DifficultyMedium,
			CorrectAnswer: fmt.Sprintf("answer %d", i+1),
			Explanation:   "Because that is the defined result.",
		}
		if q.Type == models.MCQ {
			q.Distractors = []string{"wrong A", "wrong B", "wrong C"}
		}
		questions = append(questions, q)
	}
	return questions
}

func expandTypes(req Request) []models.QuestionType {
	types := make([]models.QuestionType, 0, req.Count)
	for _, t := range []models.QuestionType{models.MCQ, models.FillInBlank, models.ShortAnswer} {
		for i := 0; i < req.TypeCounts[t]; i++ {
			types = append(types, t)
		}
	}
	for len(types) < req.Count {
		types = append(types, models.MCQ)
	}
	return types[:req.Count]
}
