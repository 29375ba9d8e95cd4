package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kartoza/lottery-analyst/internal/lottery"
	"github.com/kartoza/lottery-analyst/internal/prediction"
	"github.com/kartoza/lottery-analyst/internal/reports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHistory struct {
	records map[lottery.GameType][]lottery.DrawRecord
	err     error
}

func (f *fakeHistory) List(ctx context.Context, game lottery.GameType, limit int) ([]lottery.DrawRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records[game], nil
}

// fakePredictor blocks until release is closed, when set
type fakePredictor struct {
	mu       sync.Mutex
	requests []prediction.Request
	release  chan struct{}
	err      error
}

func (f *fakePredictor) Predict(ctx context.Context, req prediction.Request) (*prediction.Prediction, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &prediction.Prediction{
		Game:                  req.Game,
		Summary:               "summary",
		PrimaryProbabilities:  []prediction.NumberProbability{{Number: 1, ProbabilityPercent: 10}},
		SuggestedCombinations: []prediction.Combination{{Primary: []int{1, 2, 3, 4, 5, 6}, Reasoning: "r"}},
	}, nil
}

func history(n int) *fakeHistory {
	records := make([]lottery.DrawRecord, n)
	for i := range records {
		records[i] = lottery.DrawRecord{
			Issue:            fmt.Sprintf("%05d", 24000+n-i),
			PrimaryNumbers:   []int{1, 2, 3, 4, 5, 6},
			SecondaryNumbers: []int{1 + i%16},
		}
	}
	return &fakeHistory{records: map[lottery.GameType][]lottery.DrawRecord{lottery.GameSSQ: records}}
}

func TestStatusIdle(t *testing.T) {
	svc := NewService(&fakePredictor{}, history(1), nil, Options{})
	defer svc.Close()

	run := svc.Status(lottery.GameDaletou)
	assert.Equal(t, StateIdle, run.State)
	assert.Equal(t, lottery.GameDaletou, run.Game)
	assert.Empty(t, run.ID)
}

func TestRunSucceedsAndSavesReport(t *testing.T) {
	store, err := reports.NewStore(t.TempDir())
	require.NoError(t, err)
	predictor := &fakePredictor{}
	svc := NewService(predictor, history(80), store, Options{SampleSize: 50})
	defer svc.Close()

	run, err := svc.Start(context.Background(), lottery.GameSSQ, prediction.DefaultModelParameters())
	require.NoError(t, err)
	assert.Equal(t, StateRunning, run.State)
	assert.Equal(t, 50, run.SampleSize)
	assert.NotEmpty(t, run.ID)

	svc.Wait()

	done := svc.Status(lottery.GameSSQ)
	assert.Equal(t, StateSucceeded, done.State)
	assert.Equal(t, run.ID, done.ID)
	require.NotNil(t, done.Prediction)
	assert.NotNil(t, done.FinishedAt)
	assert.Empty(t, done.Error)

	require.Len(t, predictor.requests, 1)
	assert.Len(t, predictor.requests[0].HistorySample, 50)
	assert.Equal(t, "24080", predictor.requests[0].HistorySample[0].Issue)

	require.NotEmpty(t, done.ReportID)
	report, err := store.Get(done.ReportID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, report.RunID)
	assert.Equal(t, 80*6, report.Statistics.TotalPrimary())
}

func TestRunFailureUsesUserMessage(t *testing.T) {
	predictor := &fakePredictor{err: fmt.Errorf("%w: status 500", prediction.ErrServiceUnavailable)}
	svc := NewService(predictor, history(3), nil, Options{})
	defer svc.Close()

	_, err := svc.Start(context.Background(), lottery.GameSSQ, prediction.DefaultModelParameters())
	require.NoError(t, err)
	svc.Wait()

	run := svc.Status(lottery.GameSSQ)
	assert.Equal(t, StateFailed, run.State)
	assert.Equal(t, prediction.UserMessage, run.Error)
	assert.Nil(t, run.Prediction)
}

func TestSecondRunRejectedWhileRunning(t *testing.T) {
	predictor := &fakePredictor{release: make(chan struct{})}
	svc := NewService(predictor, history(3), nil, Options{})
	defer svc.Close()

	first, err := svc.Start(context.Background(), lottery.GameSSQ, prediction.DefaultModelParameters())
	require.NoError(t, err)

	_, err = svc.Start(context.Background(), lottery.GameSSQ, prediction.DefaultModelParameters())
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(predictor.release)
	svc.Wait()

	second, err := svc.Start(context.Background(), lottery.GameSSQ, prediction.DefaultModelParameters())
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	svc.Wait()
	assert.Equal(t, StateSucceeded, svc.Status(lottery.GameSSQ).State)
}

func TestStartValidation(t *testing.T) {
	svc := NewService(&fakePredictor{}, history(3), nil, Options{})
	defer svc.Close()
	ctx := context.Background()

	_, err := svc.Start(ctx, lottery.GameType("pb"), prediction.DefaultModelParameters())
	assert.Error(t, err)

	params := prediction.DefaultModelParameters()
	params.TrainingEpochs = 0
	_, err = svc.Start(ctx, lottery.GameSSQ, params)
	assert.ErrorIs(t, err, prediction.ErrInvalidParameters)

	_, err = svc.Start(ctx, lottery.GameQXC, prediction.DefaultModelParameters())
	assert.ErrorIs(t, err, ErrNoHistory)

	assert.Equal(t, StateIdle, svc.Status(lottery.GameSSQ).State)
}

func TestStartHistoryError(t *testing.T) {
	svc := NewService(&fakePredictor{}, &fakeHistory{err: errors.New("disk gone")}, nil, Options{})
	defer svc.Close()

	_, err := svc.Start(context.Background(), lottery.GameSSQ, prediction.DefaultModelParameters())
	assert.ErrorContains(t, err, "disk gone")
}

func TestRunTimeout(t *testing.T) {
	predictor := &fakePredictor{release: make(chan struct{})}
	svc := NewService(predictor, history(3), nil, Options{RunTimeout: 20 * time.Millisecond})
	defer svc.Close()

	_, err := svc.Start(context.Background(), lottery.GameSSQ, prediction.DefaultModelParameters())
	require.NoError(t, err)
	svc.Wait()

	assert.Equal(t, StateFailed, svc.Status(lottery.GameSSQ).State)
}

func TestCloseCancelsRuns(t *testing.T) {
	predictor := &fakePredictor{release: make(chan struct{})}
	svc := NewService(predictor, history(3), nil, Options{})

	_, err := svc.Start(context.Background(), lottery.GameSSQ, prediction.DefaultModelParameters())
	require.NoError(t, err)

	svc.Close()
	assert.Equal(t, StateFailed, svc.Status(lottery.GameSSQ).State)

	_, err = svc.Start(context.Background(), lottery.GameSSQ, prediction.DefaultModelParameters())
	assert.ErrorIs(t, err, ErrClosed)
}
