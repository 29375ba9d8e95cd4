package models

import (
	"github.com/kartoza/lottery-analyst/internal/history"
	"github.com/kartoza/lottery-analyst/internal/lottery"
	"github.com/kartoza/lottery-analyst/internal/stats"
)

// GameSummary is a game shape with the size of its stored history
type GameSummary struct {
	lottery.Game
	Draws int `json:"draws"`
}

// HistoryResponse contains the stored draws of a game, newest first
type HistoryResponse struct {
	Game  lottery.GameType     `json:"game"`
	Total int                  `json:"total"`
	Draws []lottery.DrawRecord `json:"draws"`
}

// StatisticsResponse contains the frequency statistics of a game
type StatisticsResponse struct {
	Game       lottery.GameType `json:"game"`
	Draws      int              `json:"draws"`
	Statistics stats.Statistics `json:"statistics"`
}

// ImportRequest asks the server to import a history file or pack
type ImportRequest struct {
	Path string `json:"path"`
}

// ImportResponse reports the result of an import
type ImportResponse struct {
	Imported []history.ImportRecord `json:"imported"`
	PackPath string                 `json:"packPath,omitempty"`
	Message  string                 `json:"message"`
}

// ReportUpdateRequest changes the editable fields of a report
type ReportUpdateRequest struct {
	Title string `json:"title"`
	Notes string `json:"notes"`
}
