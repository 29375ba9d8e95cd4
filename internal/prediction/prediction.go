// Package prediction defines the boundary to the external prediction service.
//
// The service is opaque: given a game, a bounded sample of its history and
// a set of model parameters it returns a structured prediction or fails.
// Nothing here runs a forecasting model; parameters are only forwarded.
package prediction

import (
	"context"
	"errors"
	"fmt"

	"github.com/kartoza/lottery-analyst/internal/lottery"
)

// DefaultSampleSize is how many history records are forwarded by default
const DefaultSampleSize = 50

var (
	// ErrMissingCredential means no API key was configured
	ErrMissingCredential = errors.New("prediction service credential is missing")
	// ErrServiceUnavailable covers network failures and non-success responses
	ErrServiceUnavailable = errors.New("prediction service unavailable")
	// ErrMalformedResponse means the response did not match the expected shape
	ErrMalformedResponse = errors.New("prediction service returned a malformed response")
	// ErrInvalidParameters means the model parameters are out of range
	ErrInvalidParameters = errors.New("invalid model parameters")
)

// ModelParameters are the user tunable options forwarded to the service
type ModelParameters struct {
	SimulationIterations int     `json:"simulationIterations"`
	TrainingEpochs       int     `json:"trainingEpochs"`
	RecentDataWeight     float64 `json:"recentDataWeight"`
	UseAdjacencyModel    bool    `json:"useAdjacencyModel"`
}

// DefaultModelParameters returns the parameters used when none are given
func DefaultModelParameters() ModelParameters {
	return ModelParameters{
		SimulationIterations: 10000,
		TrainingEpochs:       1000,
		RecentDataWeight:     0.8,
		UseAdjacencyModel:    true,
	}
}

// Validate checks parameter ranges
func (p ModelParameters) Validate() error {
	if p.SimulationIterations <= 0 {
		return fmt.Errorf("%w: simulationIterations must be positive", ErrInvalidParameters)
	}
	if p.TrainingEpochs <= 0 {
		return fmt.Errorf("%w: trainingEpochs must be positive", ErrInvalidParameters)
	}
	if p.RecentDataWeight < 0.1 || p.RecentDataWeight > 1.0 {
		return fmt.Errorf("%w: recentDataWeight must be within [0.1, 1.0]", ErrInvalidParameters)
	}
	return nil
}

// Request is what the service is called with
type Request struct {
	Game          lottery.GameType     `json:"game"`
	HistorySample []lottery.DrawRecord `json:"historySample"`
	Parameters    ModelParameters      `json:"parameters"`
}

// NewRequest builds a request from the full history, keeping only the first
// sampleSize records. sampleSize <= 0 uses DefaultSampleSize.
func NewRequest(game lottery.GameType, history []lottery.DrawRecord, params ModelParameters, sampleSize int) Request {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	if len(history) > sampleSize {
		history = history[:sampleSize]
	}
	sample := make([]lottery.DrawRecord, len(history))
	copy(sample, history)
	return Request{Game: game, HistorySample: sample, Parameters: params}
}

// NumberProbability is the service's estimate for one number
type NumberProbability struct {
	Number             int     `json:"number"`
	ProbabilityPercent float64 `json:"probability"`
	DeviationScore     float64 `json:"deviation"`
}

// Combination is one suggested set of numbers with its justification
type Combination struct {
	Primary   []int  `json:"primary"`
	Secondary []int  `json:"secondary,omitempty"`
	Reasoning string `json:"reasoning"`
}

// Prediction is the structured service response
type Prediction struct {
	Game                   lottery.GameType    `json:"game"`
	Summary                string              `json:"analysisSummary"`
	PrimaryProbabilities   []NumberProbability `json:"primaryProbabilities"`
	SecondaryProbabilities []NumberProbability `json:"secondaryProbabilities"`
	SuggestedCombinations  []Combination       `json:"suggestedCombinations"`
}

// Validate checks the response shape. Violations wrap ErrMalformedResponse.
func (p *Prediction) Validate() error {
	if p.Summary == "" {
		return fmt.Errorf("%w: empty analysis summary", ErrMalformedResponse)
	}
	if len(p.PrimaryProbabilities) == 0 {
		return fmt.Errorf("%w: no primary probabilities", ErrMalformedResponse)
	}
	for _, list := range [][]NumberProbability{p.PrimaryProbabilities, p.SecondaryProbabilities} {
		for _, np := range list {
			if np.ProbabilityPercent < 0 || np.ProbabilityPercent > 100 {
				return fmt.Errorf("%w: probability %.2f for number %d outside 0-100",
					ErrMalformedResponse, np.ProbabilityPercent, np.Number)
			}
		}
	}
	if len(p.SuggestedCombinations) == 0 {
		return fmt.Errorf("%w: no suggested combinations", ErrMalformedResponse)
	}
	for i, c := range p.SuggestedCombinations {
		if len(c.Primary) == 0 {
			return fmt.Errorf("%w: combination %d has no primary numbers", ErrMalformedResponse, i)
		}
	}
	return nil
}

// Predictor is the prediction service
type Predictor interface {
	Predict(ctx context.Context, req Request) (*Prediction, error)
}

// UserMessage is the single user-visible text for any prediction failure
const UserMessage = "analysis failed, check credential or retry"
