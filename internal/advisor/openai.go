package advisor

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

// OpenAIAdvisor produces readiness forecasts through chat completions.
type OpenAIAdvisor struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

func NewOpenAIAdvisor(client *openai.Client, model string, timeout time.Duration, logger *slog.Logger) *OpenAIAdvisor {
	return &OpenAIAdvisor{
		client:  client,
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

func (a *OpenAIAdvisor) PredictReadiness(ctx context.Context, metrics Metrics) *Forecast {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildForecastPrompt(metrics)},
		},
		Temperature: 0.3,
	})
	if err != nil {
		a.logger.Warn("readiness forecast request failed", "subject", metrics.Subject, "error", err)
		return DefaultForecast()
	}
	if len(resp.Choices) == 0 {
		a.logger.Warn("readiness forecast response had no choices", "subject", metrics.Subject)
		return DefaultForecast()
	}

	raw := generator.ExtractJSONObject(resp.Choices[0].Message.Content)
	if raw == "" {
		a.logger.Warn("readiness forecast contained no JSON object", "subject", metrics.Subject)
		return DefaultForecast()
	}

	var forecast Forecast
	if err := json.Unmarshal([]byte(raw), &forecast); err != nil {
		a.logger.Warn("readiness forecast could not be decoded", "subject", metrics.Subject, "error", err)
		return DefaultForecast()
	}
	return &forecast
}

func buildForecastPrompt(metrics Metrics) string {
	topicSummary, _ := json.MarshalIndent(metrics.TopicAccuracy, "", "  ")

	targetScore := 85
	if metrics.TargetScore != nil {
		targetScore = *metrics.TargetScore
	}
	examDate := metrics.ExamDate
	if examDate == "" {
		examDate = "Not set"
	}

	var b strings.Builder
	fmt.Fprintf(&b,
		"You are an expert AI academic coach. Analyze the following student performance data for the subject '%s' "+
			"and provide a readiness forecast.\n\n"+
			"Student's Goal:\n"+
			"- Target Score: %d%%\n"+
			"- Exam Date: %s\n\n"+
			"Quantitative Metrics:\n"+
			"- Study Streak: %d days\n"+
			"- Average Accuracy: %.2f%%\n"+
			"- Syllabus Coverage (estimated): %.2f%%\n"+
			"- Performance by Topic:\n%s\n\n",
		metrics.Subject, targetScore, examDate,
		metrics.StreakDays, metrics.AverageAccuracy, metrics.CoveragePercent, topicSummary)
	b.WriteString(
		"Based on this data, provide your analysis in a structured JSON format. The JSON object must have the following keys:\n" +
			"- \"predicted_score\": Your integer prediction of the student's likely score if the exam were today.\n" +
			"- \"confidence_level\": Your confidence in this prediction ('Low', 'Medium', 'High').\n" +
			"- \"key_observations\": A list of 2-3 bullet points highlighting strengths or positive trends.\n" +
			"- \"key_risks\": A list of 2-3 bullet points identifying weaknesses, inconsistencies, or risks.\n" +
			"- \"recommendations\": A list of 2-3 actionable, personalized recommendations for the student to improve.\n\n" +
			"Respond ONLY with the raw JSON object, without any introductory text or code blocks.")
	return b.String()
}
