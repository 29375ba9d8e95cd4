package prediction

import (
	"errors"
	"testing"

	"github.com/kartoza/lottery-analyst/internal/lottery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelParametersValidate(t *testing.T) {
	require.NoError(t, DefaultModelParameters().Validate())

	tests := []struct {
		name   string
		modify func(*ModelParameters)
	}{
		{"zero iterations", func(p *ModelParameters) { p.SimulationIterations = 0 }},
		{"negative epochs", func(p *ModelParameters) { p.TrainingEpochs = -1 }},
		{"weight too low", func(p *ModelParameters) { p.RecentDataWeight = 0.05 }},
		{"weight too high", func(p *ModelParameters) { p.RecentDataWeight = 1.01 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultModelParameters()
			tt.modify(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidParameters))
		})
	}

	p := DefaultModelParameters()
	p.RecentDataWeight = 0.1
	assert.NoError(t, p.Validate())
	p.RecentDataWeight = 1.0
	assert.NoError(t, p.Validate())
}

func TestNewRequestBoundsSample(t *testing.T) {
	history := make([]lottery.DrawRecord, 80)
	for i := range history {
		history[i] = lottery.DrawRecord{Issue: string(rune('A' + i%26))}
	}

	req := NewRequest(lottery.GameSSQ, history, DefaultModelParameters(), 0)
	assert.Len(t, req.HistorySample, DefaultSampleSize)
	assert.Equal(t, history[0].Issue, req.HistorySample[0].Issue)

	req = NewRequest(lottery.GameSSQ, history[:3], DefaultModelParameters(), 10)
	assert.Len(t, req.HistorySample, 3)

	req.HistorySample[0].Issue = "changed"
	assert.NotEqual(t, "changed", history[0].Issue)
}

func validPrediction() *Prediction {
	return &Prediction{
		Summary:              "summary",
		PrimaryProbabilities: []NumberProbability{{Number: 3, ProbabilityPercent: 12.5, DeviationScore: 0.4}},
		SuggestedCombinations: []Combination{
			{Primary: []int{1, 2, 3, 4, 5, 6}, Secondary: []int{7}, Reasoning: "hot numbers"},
		},
	}
}

func TestPredictionValidate(t *testing.T) {
	require.NoError(t, validPrediction().Validate())

	tests := []struct {
		name   string
		modify func(*Prediction)
	}{
		{"no summary", func(p *Prediction) { p.Summary = "" }},
		{"no primary probabilities", func(p *Prediction) { p.PrimaryProbabilities = nil }},
		{"probability above 100", func(p *Prediction) { p.PrimaryProbabilities[0].ProbabilityPercent = 120 }},
		{"negative secondary probability", func(p *Prediction) {
			p.SecondaryProbabilities = []NumberProbability{{Number: 1, ProbabilityPercent: -1}}
		}},
		{"no combinations", func(p *Prediction) { p.SuggestedCombinations = nil }},
		{"empty combination", func(p *Prediction) { p.SuggestedCombinations[0].Primary = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPrediction()
			tt.modify(p)
			err := p.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}
