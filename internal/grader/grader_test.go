package grader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidScore(t *testing.T) {
	valid := []float64{0.0, 0.5, 1.0}
	for _, s := range valid {
		assert.True(t, ValidScore(s), "score %v", s)
	}

	invalid := []float64{-1, 0.3, 0.75, 1.5, 100}
	for _, s := range invalid {
		assert.False(t, ValidScore(s), "score %v", s)
	}
}

func TestMockGrader_FallsBackToExactMatch(t *testing.T) {
	mock := &MockGrader{}
	ctx := context.Background()

	result, err := mock.Grade(ctx, "Define inertia", "resistance to change in motion", "  Resistance to change in MOTION ")
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Score)

	result, err = mock.Grade(ctx, "Define inertia", "resistance to change in motion", "gravity")
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Score)

	assert.Len(t, mock.Calls, 2)
}
