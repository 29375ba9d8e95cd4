// Package analysis runs prediction requests and tracks their state.
//
// Each game has at most one run in flight. A run moves from idle to
// running and then to succeeded or failed; the latest run of every game
// stays queryable until the next one starts.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kartoza/lottery-analyst/internal/lottery"
	"github.com/kartoza/lottery-analyst/internal/metrics"
	"github.com/kartoza/lottery-analyst/internal/prediction"
	"github.com/kartoza/lottery-analyst/internal/reports"
	"github.com/kartoza/lottery-analyst/internal/stats"
	log "github.com/sirupsen/logrus"
)

// State is the lifecycle state of a run
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

var (
	// ErrRunInProgress is returned when a game already has a running analysis
	ErrRunInProgress = errors.New("an analysis is already running for this game")
	// ErrNoHistory is returned when a game has no stored draws
	ErrNoHistory = errors.New("no draw history available")
	// ErrClosed is returned after Close
	ErrClosed = errors.New("analysis service is closed")
)

// Run is a snapshot of one analysis run
type Run struct {
	ID         string                     `json:"id,omitempty"`
	Game       lottery.GameType           `json:"game"`
	State      State                      `json:"state"`
	Parameters prediction.ModelParameters `json:"parameters"`
	SampleSize int                        `json:"sampleSize,omitempty"`
	StartedAt  *time.Time                 `json:"startedAt,omitempty"`
	FinishedAt *time.Time                 `json:"finishedAt,omitempty"`
	Prediction *prediction.Prediction     `json:"prediction,omitempty"`
	Error      string                     `json:"error,omitempty"`
	ReportID   string                     `json:"reportId,omitempty"`
}

// HistorySource supplies stored draws, newest first
type HistorySource interface {
	List(ctx context.Context, game lottery.GameType, limit int) ([]lottery.DrawRecord, error)
}

// ReportSaver persists successful runs
type ReportSaver interface {
	Create(report *reports.Report) (*reports.Report, error)
}

// Options tune the service
type Options struct {
	SampleSize int
	RunTimeout time.Duration
}

// Service starts analysis runs and keeps the latest run per game
type Service struct {
	predictor prediction.Predictor
	history   HistorySource
	reports   ReportSaver
	opts      Options

	mu     sync.Mutex
	runs   map[lottery.GameType]*Run
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService creates an analysis service. saver may be nil.
func NewService(predictor prediction.Predictor, history HistorySource, saver ReportSaver, opts Options) *Service {
	if opts.SampleSize <= 0 {
		opts.SampleSize = prediction.DefaultSampleSize
	}
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = 2 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		predictor: predictor,
		history:   history,
		reports:   saver,
		opts:      opts,
		runs:      make(map[lottery.GameType]*Run),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start begins an analysis of game in the background and returns the
// running snapshot. ctx only bounds the history lookup.
func (s *Service) Start(ctx context.Context, game lottery.GameType, params prediction.ModelParameters) (Run, error) {
	if _, ok := lottery.Lookup(game); !ok {
		return Run{}, fmt.Errorf("unknown game: %q", game)
	}
	if err := params.Validate(); err != nil {
		return Run{}, err
	}

	records, err := s.history.List(ctx, game, 0)
	if err != nil {
		return Run{}, fmt.Errorf("failed to load %s history: %w", game, err)
	}
	if len(records) == 0 {
		return Run{}, ErrNoHistory
	}
	req := prediction.NewRequest(game, records, params, s.opts.SampleSize)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Run{}, ErrClosed
	}
	if current, ok := s.runs[game]; ok && current.State == StateRunning {
		s.mu.Unlock()
		return Run{}, ErrRunInProgress
	}
	now := time.Now().UTC()
	run := &Run{
		ID:         uuid.New().String(),
		Game:       game,
		State:      StateRunning,
		Parameters: params,
		SampleSize: len(req.HistorySample),
		StartedAt:  &now,
	}
	s.runs[game] = run
	snapshot := *run
	s.wg.Add(1)
	s.mu.Unlock()

	log.WithFields(log.Fields{
		"game":   game,
		"run":    run.ID,
		"sample": len(req.HistorySample),
	}).Info("Analysis started")

	go s.execute(run.ID, req, records)

	return snapshot, nil
}

// Status returns the latest run of game, or an idle run when none exists
func (s *Service) Status(game lottery.GameType) Run {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run, ok := s.runs[game]; ok {
		return *run
	}
	return Run{
		Game:       game,
		State:      StateIdle,
		Parameters: prediction.DefaultModelParameters(),
	}
}

// Wait blocks until every started run has finished
func (s *Service) Wait() {
	s.wg.Wait()
}

// Close cancels running analyses and waits for them to finish
func (s *Service) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

func (s *Service) execute(runID string, req prediction.Request, records []lottery.DrawRecord) {
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(s.ctx, s.opts.RunTimeout)
	defer cancel()

	start := time.Now()
	pred, err := s.predictor.Predict(ctx, req)
	duration := time.Since(start)

	if err != nil {
		log.WithFields(log.Fields{
			"game":     req.Game,
			"run":      runID,
			"duration": duration.Round(time.Millisecond),
		}).WithError(err).Error("Analysis failed")
		metrics.RecordAnalysisRun(string(req.Game), string(StateFailed), duration)
		s.finish(req.Game, runID, func(run *Run) {
			run.State = StateFailed
			run.Error = prediction.UserMessage
		})
		return
	}

	var reportID string
	if s.reports != nil {
		report, err := s.reports.Create(&reports.Report{
			Game:       req.Game,
			RunID:      runID,
			SampleSize: len(req.HistorySample),
			Parameters: req.Parameters,
			Statistics: stats.ComputeStatistics(records),
			Prediction: pred,
		})
		if err != nil {
			log.WithField("run", runID).Warnf("Could not save report: %v", err)
		} else {
			reportID = report.ID
		}
	}

	log.WithFields(log.Fields{
		"game":     req.Game,
		"run":      runID,
		"duration": duration.Round(time.Millisecond),
	}).Info("Analysis succeeded")
	metrics.RecordAnalysisRun(string(req.Game), string(StateSucceeded), duration)
	s.finish(req.Game, runID, func(run *Run) {
		run.State = StateSucceeded
		run.Prediction = pred
		run.ReportID = reportID
	})
}

// finish applies update to the run if it is still the current one
func (s *Service) finish(game lottery.GameType, runID string, update func(*Run)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[game]
	if !ok || run.ID != runID {
		return
	}
	now := time.Now().UTC()
	run.FinishedAt = &now
	update(run)
}
