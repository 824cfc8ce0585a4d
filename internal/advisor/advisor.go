package advisor

import "context"

// Metrics is the quantitative summary handed to the advisor.
type Metrics struct {
	Subject         string
	StreakDays      int
	AverageAccuracy float64
	CoveragePercent float64
	TopicAccuracy   map[string]float64
	TargetScore     *int
	ExamDate        string
}

// Forecast is the advisor's qualitative readiness assessment.
type Forecast struct {
	PredictedScore  int      `json:"predicted_score"`
	ConfidenceLevel string   `json:"confidence_level"`
	KeyObservations []string `json:"key_observations"`
	KeyRisks        []string `json:"key_risks"`
	Recommendations []string `json:"recommendations"`
}

// Advisor turns performance metrics into a readiness forecast. Implementations
// never fail hard: when the backend is unreachable or unparseable they return
// DefaultForecast instead.
type Advisor interface {
	PredictReadiness(ctx context.Context, metrics Metrics) *Forecast
}

// DefaultForecast is the fail-soft result used when no forecast could be
// produced.
func DefaultForecast() *Forecast {
	return &Forecast{
		PredictedScore:  60,
		ConfidenceLevel: "Low",
		KeyObservations: []string{"Analysis could not be generated due to an error."},
		KeyRisks:        []string{"Please try again later."},
		Recommendations: []string{"Ensure the AI model is accessible and returning valid JSON."},
	}
}
