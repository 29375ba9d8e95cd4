package reports

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kartoza/lottery-analyst/internal/lottery"
	"github.com/kartoza/lottery-analyst/internal/prediction"
	"github.com/kartoza/lottery-analyst/internal/stats"
)

// ErrNotFound is returned for an unknown or malformed report id
var ErrNotFound = errors.New("report not found")

// Report is a saved prediction together with the inputs that produced it
type Report struct {
	ID         string                     `json:"id"`
	Title      string                     `json:"title"`
	Notes      string                     `json:"notes,omitempty"`
	Game       lottery.GameType           `json:"game"`
	RunID      string                     `json:"runId,omitempty"`
	SampleSize int                        `json:"sampleSize"`
	Parameters prediction.ModelParameters `json:"parameters"`
	Statistics stats.Statistics           `json:"statistics"`
	Prediction *prediction.Prediction     `json:"prediction"`
	CreatedAt  string                     `json:"createdAt"`
	UpdatedAt  string                     `json:"updatedAt"`
}

// Summary is the listing form of a report
type Summary struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Game      lottery.GameType `json:"game"`
	CreatedAt string           `json:"createdAt"`
}

// Store handles report persistence, one JSON file per report
type Store struct {
	reportsDir string
}

// NewStore creates a new report store
func NewStore(reportsDir string) (*Store, error) {
	if err := os.MkdirAll(reportsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create reports directory: %w", err)
	}
	return &Store{reportsDir: reportsDir}, nil
}

// List returns all reports sorted by creation date (newest first),
// optionally restricted to one game
func (s *Store) List(game lottery.GameType) ([]Summary, error) {
	entries, err := os.ReadDir(s.reportsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read reports directory: %w", err)
	}

	summaries := []Summary{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		report, err := s.loadReport(entry.Name())
		if err != nil {
			continue // Skip invalid reports
		}
		if game != "" && report.Game != game {
			continue
		}
		summaries = append(summaries, Summary{
			ID:        report.ID,
			Title:     report.Title,
			Game:      report.Game,
			CreatedAt: report.CreatedAt,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CreatedAt != summaries[j].CreatedAt {
			return summaries[i].CreatedAt > summaries[j].CreatedAt
		}
		return summaries[i].ID < summaries[j].ID
	})

	return summaries, nil
}

// Get retrieves a report by ID
func (s *Store) Get(id string) (*Report, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	report, err := s.loadReport(id + ".json")
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return report, err
}

// Create assigns an ID and timestamps and saves the report
func (s *Store) Create(report *Report) (*Report, error) {
	if report.Prediction == nil {
		return nil, fmt.Errorf("report has no prediction")
	}

	report.ID = uuid.New().String()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	report.CreatedAt = now
	report.UpdatedAt = now

	if report.Title == "" {
		name := string(report.Game)
		if game, ok := lottery.Lookup(report.Game); ok {
			name = game.Name
		}
		report.Title = fmt.Sprintf("%s %s", name, time.Now().Format("2006-01-02 15:04"))
	}

	if err := s.saveReport(report); err != nil {
		return nil, err
	}
	return report, nil
}

// Update changes the title and notes of an existing report
func (s *Store) Update(id string, updates *Report) (*Report, error) {
	report, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if updates.Title != "" {
		report.Title = updates.Title
	}
	report.Notes = updates.Notes
	report.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)

	if err := s.saveReport(report); err != nil {
		return nil, err
	}
	return report, nil
}

// Delete removes a report
func (s *Store) Delete(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.reportsDir, id+".json")); err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return nil
}

func (s *Store) loadReport(filename string) (*Report, error) {
	data, err := os.ReadFile(filepath.Join(s.reportsDir, filename))
	if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

func (s *Store) saveReport(report *Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	filename := filepath.Join(s.reportsDir, report.ID+".json")
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}
