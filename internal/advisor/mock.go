package advisor

import "context"

// MockAdvisor returns a fixed forecast for tests.
type MockAdvisor struct {
	Forecast *Forecast
	// Received records every metrics payload seen.
	Received []Metrics
}

func (m *MockAdvisor) PredictReadiness(ctx context.Context, metrics Metrics) *Forecast {
	m.Received = append(m.Received, metrics)
	if m.Forecast != nil {
		return m.Forecast
	}
	return DefaultForecast()
}
